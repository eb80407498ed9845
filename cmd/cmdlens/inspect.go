package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/cmdlens/internal/history"
	"github.com/user/cmdlens/internal/inspect"
	"github.com/user/cmdlens/internal/output"
	"github.com/user/cmdlens/internal/safety"
)

// inspectOptions are the flags of the root and inspect commands.
type inspectOptions struct {
	inputOptions
	copyIndex int
}

func (o *inspectOptions) bind(cmd *cobra.Command) {
	o.inputOptions.bind(cmd)
	cmd.Flags().IntVar(&o.copyIndex, "copy", 0, "Copy alternative N (1-based) to the clipboard")
}

func newInspectCmd(a *app) *cobra.Command {
	var opts inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect [command]",
		Short: "Tokenize and assess a command (default)",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(cmd, args, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func newTokensCmd(a *app) *cobra.Command {
	var opts inputOptions

	cmd := &cobra.Command{
		Use:   "tokens [command]",
		Short: "Show the classified tokens of a command",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := a.readCommand(cmd.Context(), args, opts)
			if err != nil {
				return err
			}
			return writeErr(a.printer.Tokens(a.inspector.Tokenize(command)))
		},
	}
	opts.bind(cmd)
	return cmd
}

func newAssessCmd(a *app) *cobra.Command {
	var opts inputOptions

	cmd := &cobra.Command{
		Use:   "assess [command]",
		Short: "Show only the safety verdict of a command",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			command, err := a.readCommand(cmd.Context(), args, opts)
			if err != nil {
				return err
			}
			analysis := a.inspector.Assess(command)
			if err := a.printer.Analysis(analysis); err != nil {
				return writeErr(err)
			}
			return a.verdict(analysis)
		},
	}
	opts.bind(cmd)
	return cmd
}

func (a *app) runInspect(cmd *cobra.Command, args []string, opts inspectOptions) error {
	command, err := a.readCommand(cmd.Context(), args, opts.inputOptions)
	if err != nil {
		return err
	}
	return a.inspectCommand(command, opts.copyIndex)
}

// inspectCommand prints the full report, copies a chosen alternative and
// records the command.
func (a *app) inspectCommand(command string, copyIndex int) error {
	report := a.inspector.Inspect(command)
	if err := a.printer.Report(report); err != nil {
		return writeErr(err)
	}

	if copyIndex != 0 {
		if err := a.copyAlternative(report.Analysis, copyIndex); err != nil {
			return err
		}
	}

	a.record(recordFor(report))
	return a.verdict(report.Analysis)
}

func (a *app) copyAlternative(analysis safety.CommandAnalysis, n int) error {
	if n < 1 || n > len(analysis.Alternatives) {
		return userError(fmt.Errorf("--copy %d: command has %d alternatives", n, len(analysis.Alternatives)))
	}
	copied, err := output.CopySuggestion(analysis.Alternatives[n-1])
	if err != nil {
		if errors.Is(err, output.ErrNoSuggestion) {
			return userError(fmt.Errorf("alternative %d has no command to copy", n))
		}
		return systemError(fmt.Errorf("copying alternative: %w", err))
	}
	a.logger.Debug("copied alternative", "command", copied)
	return nil
}

// verdict applies --strict.
func (a *app) verdict(analysis safety.CommandAnalysis) error {
	if a.strict && !analysis.IsSafe {
		a.logger.Debug("strict mode rejected command", "risk", analysis.RiskLevel.String())
		return errUnsafe
	}
	return nil
}

func recordFor(report inspect.Report) history.Record {
	analysis := report.Analysis
	return history.Record{
		Command:     report.Input,
		Analysis:    &analysis,
		CommandType: report.CommandType,
		Complexity:  string(report.Complexity),
	}
}

// writeErr classifies a rendering failure.
func writeErr(err error) error {
	if err == nil {
		return nil
	}
	return systemError(fmt.Errorf("output error: %w", err))
}
