package lexer

import (
	"reflect"
	"testing"
)

// significant drops whitespace tokens so expectations stay readable.
func significant(tokens []Token) []Token {
	var out []Token
	for _, tok := range tokens {
		if tok.Kind != Whitespace {
			out = append(out, tok)
		}
	}
	return out
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{Argument, "argument"},
		{Command, "command"},
		{Option, "option"},
		{Pipe, "pipe"},
		{Redirect, "redirect"},
		{Operator, "operator"},
		{Whitespace, "whitespace"},
		{Kind(42), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.expected {
				t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.expected)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, name := range kindNames {
		k, err := ParseKind(name)
		if err != nil {
			t.Fatalf("ParseKind(%q) error = %v", name, err)
		}
		if k.String() != name {
			t.Errorf("ParseKind(%q) = %v", name, k)
		}
	}
	if _, err := ParseKind("bogus"); err == nil {
		t.Error("ParseKind(\"bogus\") expected error")
	}
}

func TestTokenizePipeline(t *testing.T) {
	got := significant(Tokenize("ps aux | grep nginx | awk '{print $2}'"))
	want := []Token{
		{"ps", Command},
		{"aux", Argument},
		{"|", Pipe},
		{"grep", Command},
		{"nginx", Argument},
		{"|", Pipe},
		{"awk", Command},
		{"'{print $2}'", Argument},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenizeQuotedPattern(t *testing.T) {
	got := significant(Tokenize(`find . -name "*.js"`))
	want := []Token{
		{"find", Command},
		{".", Argument},
		{"-name", Option},
		{`"*.js"`, Argument},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenizeClassification(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "options short and long",
			input: "ls -la --color=auto",
			want:  []Token{{"ls", Command}, {"-la", Option}, {"--color=auto", Option}},
		},
		{
			name:  "redirects",
			input: "cat a.txt > b.txt 2>&1 >> c.log < in &2",
			want: []Token{
				{"cat", Command}, {"a.txt", Argument}, {">", Redirect}, {"b.txt", Argument},
				{"2>&1", Argument}, {">>", Redirect}, {"c.log", Argument}, {"<", Redirect},
				{"in", Argument}, {"&2", Redirect},
			},
		},
		{
			name:  "semicolon resets command expectation",
			input: "cd /tmp ; ls",
			want:  []Token{{"cd", Command}, {"/tmp", Argument}, {";", Operator}, {"ls", Command}},
		},
		{
			name:  "background operator resets command expectation",
			input: "make & git status",
			want:  []Token{{"make", Command}, {"&", Operator}, {"git", Command}, {"status", Argument}},
		},
		{
			name:  "and operator does not reset",
			input: "make && make",
			want:  []Token{{"make", Command}, {"&&", Operator}, {"make", Argument}},
		},
		{
			name:  "or operator",
			input: "true || false",
			want:  []Token{{"true", Argument}, {"||", Operator}, {"false", Argument}},
		},
		{
			name:  "unknown leading word is an argument",
			input: "sudo ls",
			want:  []Token{{"sudo", Argument}, {"ls", Argument}},
		},
		{
			name:  "known command later in segment is an argument",
			input: "echo grep",
			want:  []Token{{"echo", Argument}, {"grep", Argument}},
		},
		{
			name:  "url and path arguments",
			input: "curl -I https://example.com/x ./bin/tool",
			want: []Token{
				{"curl", Command}, {"-I", Option},
				{"https://example.com/x", Argument}, {"./bin/tool", Argument},
			},
		},
		{
			name:  "consecutive pipes and operators",
			input: "ls | | ; ;",
			want:  []Token{{"ls", Command}, {"|", Pipe}, {"|", Pipe}, {";", Operator}, {";", Operator}},
		},
		{
			name:  "unterminated quote swallows the rest",
			input: `grep "foo bar baz`,
			want:  []Token{{"grep", Command}, {`"foo bar baz`, Argument}},
		},
		{
			name:  "quoted span keeps inner whitespace",
			input: "echo 'a   b'",
			want:  []Token{{"echo", Argument}, {"'a   b'", Argument}},
		},
		{
			name:  "single quote inside double quoted span does not close it",
			input: `grep "it's here" f`,
			want:  []Token{{"grep", Command}, {`"it's here"`, Argument}, {"f", Argument}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := significant(Tokenize(tt.input))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenizeEmpty(t *testing.T) {
	if got := Tokenize(""); len(got) != 0 {
		t.Errorf("Tokenize(\"\") = %v, want empty", got)
	}
}

func TestTokenizeWhitespaceOnly(t *testing.T) {
	got := Tokenize(" \t ")
	want := []Token{{" \t ", Whitespace}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenizeLossless(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"ls -la",
		"  ps aux |  grep nginx\t| awk '{print $2}'  ",
		`find . -name "*.js"`,
		`echo "unterminated   quote  `,
		"rm -rf /var/log/*",
		"a\nb\r\nc",
		"echo 'x' \"y z\" 'w",
		"grep ünïcödé file",
		"\xff\xfe broken utf8",
	}

	for _, in := range inputs {
		if got := Join(Tokenize(in)); got != in {
			t.Errorf("Join(Tokenize(%q)) = %q", in, got)
		}
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	in := "ps aux | grep nginx | awk '{print $2}'"
	first := Tokenize(in)
	second := Tokenize(in)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Tokenize(%q) not deterministic: %v vs %v", in, first, second)
	}
}

func TestCustomKnownCommands(t *testing.T) {
	tok := New(WithKnownCommands("deploy"))
	got := significant(tok.Tokenize("deploy prod | ls"))
	want := []Token{{"deploy", Command}, {"prod", Argument}, {"|", Pipe}, {"ls", Argument}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}

	extended := New(WithExtraCommands("terraform"))
	if !extended.IsKnown("terraform") || !extended.IsKnown("ls") {
		t.Error("WithExtraCommands should keep defaults and add new names")
	}
}

func TestTokenizerOptionsKeepOptionKind(t *testing.T) {
	opts := []TokenizerOption{WithKnownCommands("deploy"), WithExtraCommands("rollout")}
	tok := New(opts...)

	got := significant(tok.Tokenize(`rollout --force "svc" ; deploy -n 3`))
	want := []Token{
		{"rollout", Command}, {"--force", Option}, {`"svc"`, Argument},
		{";", Operator}, {"deploy", Command}, {"-n", Option}, {"3", Argument},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
	if tok.IsKnown("ls") {
		t.Error("WithKnownCommands should replace the defaults")
	}
}

func FuzzTokenizeLossless(f *testing.F) {
	f.Add("ps aux | grep nginx")
	f.Add(`find . -name "*.js"`)
	f.Add("echo 'open")
	f.Fuzz(func(t *testing.T, in string) {
		if got := Join(Tokenize(in)); got != in {
			t.Errorf("Join(Tokenize(%q)) = %q", in, got)
		}
	})
}

func BenchmarkTokenize(b *testing.B) {
	in := "ps aux | grep nginx | awk '{print $2}' > out.txt"
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Tokenize(in)
	}
}
