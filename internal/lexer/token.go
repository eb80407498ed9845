// Package lexer splits shell command lines into classified tokens.
package lexer

import "fmt"

// Kind is the semantic class of a token.
type Kind int

const (
	// Argument is anything that is not one of the other kinds.
	// It is the zero value, so unknown fragments degrade to it.
	Argument Kind = iota
	// Command is a known utility name at the start of a command segment.
	Command
	// Option is a word starting with "-".
	Option
	// Pipe is the "|" separator.
	Pipe
	// Redirect is a redirection operator such as ">", ">>", "<" or "&2".
	Redirect
	// Operator is a list operator: "&&", "||", ";" or "&".
	Operator
	// Whitespace is a run of whitespace kept for lossless re-rendering.
	Whitespace
)

var kindNames = [...]string{
	Argument:   "argument",
	Command:    "command",
	Option:     "option",
	Pipe:       "pipe",
	Redirect:   "redirect",
	Operator:   "operator",
	Whitespace: "whitespace",
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseKind parses the string form produced by String.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}
	return Argument, fmt.Errorf("unknown token kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Token is a classified substring of a command line.
type Token struct {
	Text string `json:"text" yaml:"text"`
	Kind Kind   `json:"kind" yaml:"kind"`
}

// String renders the token as kind(text) for debugging.
func (t Token) String() string {
	return fmt.Sprintf("%s(%s)", t.Kind, t.Text)
}

// Join concatenates the text of every token. For any input s,
// Join(Tokenize(s)) == s.
func Join(tokens []Token) string {
	n := 0
	for _, t := range tokens {
		n += len(t.Text)
	}
	buf := make([]byte, 0, n)
	for _, t := range tokens {
		buf = append(buf, t.Text...)
	}
	return string(buf)
}
