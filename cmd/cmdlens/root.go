package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	var opts inspectOptions

	root := &cobra.Command{
		Use:   "cmdlens [flags] [command]",
		Short: "Break down and risk-assess shell commands",
		Long: `cmdlens decomposes a shell command into classified tokens and
judges how risky it is to run, with explanations, safer alternatives
and sample output.

The command is taken from the arguments, from stdin, or from your
editor (--editor). Quote it or put it after "--" so its flags are not
read as cmdlens flags:

  cmdlens 'rm -rf /var/log/*'
  cmdlens -- find . -name "*.go"
  pbpaste | cmdlens --strict

Exit codes: 0 ok, 1 usage or input error, 2 system error,
3 unsafe command under --strict.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(cmd, args, opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Config file path")
	pf.StringVarP(&a.format, "output", "o", "", "Output format: text|json|yaml (default from config)")
	pf.StringVar(&a.color, "color", "", "Color: auto|always|never (default from config)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "Verbose logging to stderr")
	pf.BoolVar(&a.strict, "strict", false, "Exit with code 3 when the command is unsafe")
	pf.BoolVar(&a.noHistory, "no-history", false, "Do not record the command in history")

	opts.bind(root)

	root.AddCommand(
		newInspectCmd(a),
		newTokensCmd(a),
		newAssessCmd(a),
		newExplainCmd(a),
		newHistoryCmd(a),
		newTemplatesCmd(a),
		newConfigCmd(a),
		newBackendsCmd(a),
		newVersionCmd(),
	)
	return root
}
