package lexer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// redirectRegex matches "<", ">", "&" optionally followed by a descriptor number.
	redirectRegex = regexp.MustCompile(`^[<>&]\d*$`)
	// arrowsRegex matches runs made only of angle brackets, e.g. ">>".
	arrowsRegex = regexp.MustCompile(`^[<>]+$`)
	// operatorRegex matches command list operators.
	operatorRegex = regexp.MustCompile(`^(&&|\|\||;|&)$`)
)

// Tokenizer classifies the segments of a command line. It holds only the
// read-only known-command set, so one Tokenizer may be shared by any number
// of goroutines.
type Tokenizer struct {
	known map[string]struct{}
}

// TokenizerOption configures a Tokenizer.
type TokenizerOption func(*Tokenizer)

// WithKnownCommands replaces the known-command allow-list.
func WithKnownCommands(names ...string) TokenizerOption {
	return func(t *Tokenizer) {
		t.known = make(map[string]struct{}, len(names))
		for _, name := range names {
			t.known[name] = struct{}{}
		}
	}
}

// WithExtraCommands adds names to the known-command allow-list.
func WithExtraCommands(names ...string) TokenizerOption {
	return func(t *Tokenizer) {
		for _, name := range names {
			t.known[name] = struct{}{}
		}
	}
}

// New creates a Tokenizer seeded with DefaultKnownCommands.
func New(opts ...TokenizerOption) *Tokenizer {
	t := &Tokenizer{}
	WithKnownCommands(DefaultKnownCommands...)(t)
	for _, opt := range opts {
		opt(t)
	}
	return t
}

var defaultTokenizer = New()

// Tokenize splits input using the default known-command set.
func Tokenize(input string) []Token {
	return defaultTokenizer.Tokenize(input)
}

// IsKnown reports whether name is in the allow-list.
func (t *Tokenizer) IsKnown(name string) bool {
	_, ok := t.known[name]
	return ok
}

// Tokenize splits input into classified tokens in a single left-to-right
// pass. It never fails: fragments it cannot place become Argument tokens.
// Concatenating the Text of the result reproduces input exactly.
func (t *Tokenizer) Tokenize(input string) []Token {
	segments := splitKeepSpace(input)
	if len(segments) == 0 {
		return nil
	}

	tokens := make([]Token, 0, len(segments))
	expectCommand := true

	var (
		inQuote   bool
		quoteChar byte
		quoted    strings.Builder
	)

	for _, seg := range segments {
		if inQuote {
			quoted.WriteString(seg)
			if !isSpace(seg) && strings.IndexByte(seg, quoteChar) >= 0 {
				tokens = append(tokens, Token{Text: quoted.String(), Kind: Argument})
				quoted.Reset()
				inQuote = false
			}
			continue
		}

		if isSpace(seg) {
			tokens = append(tokens, Token{Text: seg, Kind: Whitespace})
			continue
		}

		if q := seg[0]; (q == '"' || q == '\'') && strings.IndexByte(seg[1:], q) < 0 {
			inQuote = true
			quoteChar = q
			quoted.WriteString(seg)
			expectCommand = false
			continue
		}

		kind := t.classify(seg, expectCommand)
		tokens = append(tokens, Token{Text: seg, Kind: kind})
		expectCommand = startsCommand(seg, kind)
	}

	// Unterminated quote: whatever was gathered becomes one argument.
	if inQuote {
		tokens = append(tokens, Token{Text: quoted.String(), Kind: Argument})
	}

	return tokens
}

// classify assigns a kind to a single non-whitespace segment outside quotes.
func (t *Tokenizer) classify(seg string, expectCommand bool) Kind {
	switch {
	case seg == "|":
		return Pipe
	case seg == "&":
		// Background operator; "&2" style descriptors fall to Redirect.
		return Operator
	case redirectRegex.MatchString(seg), arrowsRegex.MatchString(seg):
		return Redirect
	case strings.HasPrefix(seg, "-"):
		return Option
	case expectCommand && t.IsKnown(seg):
		return Command
	case operatorRegex.MatchString(seg):
		return Operator
	default:
		return Argument
	}
}

// startsCommand reports whether the segment after seg may be a Command.
func startsCommand(seg string, kind Kind) bool {
	switch kind {
	case Pipe:
		return true
	case Operator:
		return seg == ";" || seg == "&"
	default:
		return false
	}
}

// splitKeepSpace splits s into alternating runs of whitespace and
// non-whitespace, keeping both.
func splitKeepSpace(s string) []string {
	var (
		segments []string
		start    int
		inSpace  bool
	)
	for i, r := range s {
		space := unicode.IsSpace(r)
		if i == 0 {
			inSpace = space
			continue
		}
		if space != inSpace {
			segments = append(segments, s[start:i])
			start = i
			inSpace = space
		}
	}
	if start < len(s) {
		segments = append(segments, s[start:])
	}
	return segments
}

// isSpace reports whether seg is a whitespace run produced by splitKeepSpace.
func isSpace(seg string) bool {
	r, _ := utf8.DecodeRuneInString(seg)
	return unicode.IsSpace(r)
}
