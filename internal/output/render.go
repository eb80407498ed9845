package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/user/cmdlens/internal/explain"
	"github.com/user/cmdlens/internal/history"
	"github.com/user/cmdlens/internal/inspect"
	"github.com/user/cmdlens/internal/lexer"
	"github.com/user/cmdlens/internal/safety"
	"github.com/user/cmdlens/internal/templates"
)

// Report prints a full inspection report.
func (p *Printer) Report(r inspect.Report) error {
	if ok, err := p.encode(r); ok {
		return err
	}

	ew := &errWriter{w: p.w}
	ew.printf("%s\n\n", Highlight(r.Tokens, p.color))
	ew.printf("%s %s", bold("Risk:", p.color), RiskLabel(r.Analysis.RiskLevel, p.color))
	if r.Analysis.IsSafe {
		ew.printf(" (safe)\n")
	} else {
		ew.printf(" (unsafe)\n")
	}
	ew.printf("%s %s   %s %s\n", bold("Type:", p.color), r.CommandType, bold("Complexity:", p.color), r.Complexity)
	p.analysisBody(ew, r.Analysis)
	return ew.err
}

// Analysis prints only the safety verdict.
func (p *Printer) Analysis(a safety.CommandAnalysis) error {
	if ok, err := p.encode(a); ok {
		return err
	}

	ew := &errWriter{w: p.w}
	ew.printf("%s %s\n", bold("Risk:", p.color), RiskLabel(a.RiskLevel, p.color))
	ew.printf("%s %t\n", bold("Safe:", p.color), a.IsSafe)
	p.analysisBody(ew, a)
	return ew.err
}

func (p *Printer) analysisBody(ew *errWriter, a safety.CommandAnalysis) {
	if a.Explanation != "" {
		ew.printf("%s %s\n", bold("Explanation:", p.color), a.Explanation)
	}
	if len(a.Warnings) > 0 {
		ew.printf("\n%s\n", bold("Warnings:", p.color))
		for _, w := range a.Warnings {
			ew.printf("  %s %s\n", paint(riskStyles[safety.High], "!", p.color), w)
		}
	}
	if len(a.SafeFlags) > 0 {
		ew.printf("\n%s %s\n", bold("Safe flags:", p.color), strings.Join(a.SafeFlags, ", "))
	}
	if len(a.Alternatives) > 0 {
		ew.printf("\n%s\n", bold("Alternatives:", p.color))
		for i, alt := range a.Alternatives {
			ew.printf("  %d. %s\n", i+1, alt)
		}
	}
	if a.HasMockOutput() {
		ew.printf("\n%s\n", bold("Sample output:", p.color))
		for _, line := range strings.Split(a.MockOutput, "\n") {
			ew.printf("  %s\n", dim(line, p.color))
		}
	}
}

// Tokens prints one line per non-whitespace token.
func (p *Printer) Tokens(tokens []lexer.Token) error {
	if ok, err := p.encode(tokens); ok {
		return err
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	ew := &errWriter{w: tw}
	for _, t := range tokens {
		if t.Kind == lexer.Whitespace {
			continue
		}
		ew.printf("%s\t%s\n", t.Kind, paint(kindStyles[t.Kind], t.Text, p.color))
	}
	if ew.err != nil {
		return ew.err
	}
	return tw.Flush()
}

// Explanation prints a model explanation.
func (p *Printer) Explanation(e *explain.Explanation) error {
	if ok, err := p.encode(e); ok {
		return err
	}

	ew := &errWriter{w: p.w}
	if len(e.Parts) > 0 {
		tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
		pw := &errWriter{w: tw}
		for _, part := range e.Parts {
			style := kindStyles[kindOf(part.Type)]
			pw.printf("%s\t%s\t%s\n", paint(style, part.Text, p.color), dim(part.Type, p.color), part.Explanation)
		}
		if pw.err != nil {
			return pw.err
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		ew.printf("\n")
	}
	if e.OverallExplanation != "" {
		ew.printf("%s\n%s\n", bold("Overview:", p.color), e.OverallExplanation)
	}
	if e.SafetyNotes != "" {
		ew.printf("\n%s\n%s\n", bold("Safety:", p.color), e.SafetyNotes)
	}
	if len(e.Examples) > 0 {
		ew.printf("\n%s\n", bold("Examples:", p.color))
		for _, ex := range e.Examples {
			ew.printf("  %s\n      %s\n", ex.Command, dim(ex.Description, p.color))
		}
	}
	return ew.err
}

func kindOf(partType string) lexer.Kind {
	k, err := lexer.ParseKind(partType)
	if err != nil {
		return lexer.Argument
	}
	return k
}

// Entries prints history entries, newest first.
func (p *Printer) Entries(entries []history.Entry) error {
	if ok, err := p.encode(entries); ok {
		return err
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	ew := &errWriter{w: tw}
	for _, e := range entries {
		star := " "
		if e.IsFavorite {
			star = "*"
		}
		tags := ""
		if len(e.Tags) > 0 {
			tags = "[" + strings.Join(e.Tags, ",") + "]"
		}
		ew.printf("%s\t%s\t%s\t%s\t%s\t%s\n",
			star, e.ID, e.Timestamp.Local().Format(time.DateTime),
			RiskLabel(e.RiskLevel(), p.color), e.Command, dim(tags, p.color))
	}
	if ew.err != nil {
		return ew.err
	}
	return tw.Flush()
}

// Results prints ranked search results.
func (p *Printer) Results(results []history.Result) error {
	if ok, err := p.encode(results); ok {
		return err
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	ew := &errWriter{w: tw}
	for _, r := range results {
		ew.printf("%d\t%s\t%s\t%s\n", r.Score, r.Entry.ID, RiskLabel(r.Entry.RiskLevel(), p.color), r.Entry.Command)
	}
	if ew.err != nil {
		return ew.err
	}
	return tw.Flush()
}

// Templates prints a template listing.
func (p *Printer) Templates(list []templates.Template) error {
	if ok, err := p.encode(list); ok {
		return err
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	ew := &errWriter{w: tw}
	for _, t := range list {
		ew.printf("%s\t%s\t%s\t%s\n", bold(t.ID, p.color), t.Category, t.Command, dim(t.Description, p.color))
	}
	if ew.err != nil {
		return ew.err
	}
	return tw.Flush()
}

// Template prints one template with its parameters and examples.
func (p *Printer) Template(t templates.Template) error {
	if ok, err := p.encode(t); ok {
		return err
	}

	ew := &errWriter{w: p.w}
	ew.printf("%s (%s)\n%s\n\n", bold(t.Name, p.color), t.ID, t.Description)
	ew.printf("%s %s\n", bold("Command:", p.color), t.Command)
	ew.printf("%s %s   %s %s\n", bold("Category:", p.color), t.Category, bold("Complexity:", p.color), t.Complexity)
	if len(t.Tags) > 0 {
		ew.printf("%s %s\n", bold("Tags:", p.color), strings.Join(t.Tags, ", "))
	}
	if len(t.Parameters) > 0 {
		ew.printf("\n%s\n", bold("Parameters:", p.color))
		for _, param := range t.Parameters {
			req := "optional"
			if param.Required {
				req = "required"
			}
			ew.printf("  {%s} %s, %s", param.Name, req, param.Description)
			if param.Default != "" {
				ew.printf(" (default %q)", param.Default)
			}
			ew.printf("\n")
		}
	}
	if len(t.Examples) > 0 {
		ew.printf("\n%s\n", bold("Examples:", p.color))
		for _, ex := range t.Examples {
			ew.printf("  %s\n", ex)
		}
	}
	return ew.err
}

// errWriter keeps the first write error so rendering code can print freely.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
