package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/cmdlens/internal/output"
	"github.com/user/cmdlens/internal/templates"
)

func newTemplatesCmd(a *app) *cobra.Command {
	list := newTemplatesListCmd(a)

	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"tpl"},
		Short:   "Browse and render parameterized command templates",
		Args:    cobra.NoArgs,
		RunE:    list.RunE,
	}
	cmd.Flags().AddFlagSet(list.Flags())

	cmd.AddCommand(
		list,
		newTemplatesShowCmd(a),
		newTemplatesRenderCmd(a),
		newTemplatesCategoriesCmd(a),
		newTemplatesTagsCmd(a),
	)
	return cmd
}

func newTemplatesListCmd(a *app) *cobra.Command {
	var category, tag, search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := a.catalog()
			if err != nil {
				return err
			}

			var list []templates.Template
			switch {
			case category != "":
				list = catalog.ByCategory(category)
			case tag != "":
				list = catalog.ByTag(tag)
			case search != "":
				list = catalog.Search(search)
			default:
				list = catalog.All()
			}
			return writeErr(a.printer.Templates(list))
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only templates in category")
	cmd.Flags().StringVar(&tag, "tag", "", "Only templates with tag")
	cmd.Flags().StringVar(&search, "search", "", "Only templates whose name, description or tags match")
	cmd.MarkFlagsMutuallyExclusive("category", "tag", "search")
	return cmd
}

func newTemplatesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a template with its parameters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.template(args[0])
			if err != nil {
				return err
			}
			return writeErr(a.printer.Template(t))
		},
	}
}

func newTemplatesRenderCmd(a *app) *cobra.Command {
	var (
		set       []string
		raw       bool
		clip      bool
		copyIndex int
	)

	cmd := &cobra.Command{
		Use:   "render <id>",
		Short: "Fill in a template and inspect the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.template(args[0])
			if err != nil {
				return err
			}

			params, err := parseParams(set)
			if err != nil {
				return userError(err)
			}
			if missing := t.Missing(params); len(missing) > 0 {
				return userError(fmt.Errorf("missing required parameters: %s (use --set name=value)", strings.Join(missing, ", ")))
			}

			command := t.Generate(params)
			if err := validateInput(command); err != nil {
				return userError(err)
			}
			if clip {
				if err := output.Copy(command); err != nil {
					return systemError(fmt.Errorf("copying command: %w", err))
				}
			}
			if raw {
				a.printf("%s\n", command)
				return nil
			}
			return a.inspectCommand(command, copyIndex)
		},
	}

	cmd.Flags().StringArrayVar(&set, "set", nil, "Parameter value as name=value (repeatable)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print only the generated command")
	cmd.Flags().BoolVar(&clip, "clipboard", false, "Copy the generated command to the clipboard")
	cmd.Flags().IntVar(&copyIndex, "copy", 0, "Copy alternative N (1-based) to the clipboard")
	return cmd
}

func newTemplatesCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List template categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := a.catalog()
			if err != nil {
				return err
			}
			return a.printLines(catalog.Categories())
		},
	}
}

func newTemplatesTagsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List template tags, most used first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := a.catalog()
			if err != nil {
				return err
			}
			return a.printLines(catalog.PopularTags())
		},
	}
}

func (a *app) template(id string) (templates.Template, error) {
	catalog, err := a.catalog()
	if err != nil {
		return templates.Template{}, err
	}
	t, err := catalog.Get(id)
	if errors.Is(err, templates.ErrNotFound) {
		return templates.Template{}, userError(err)
	}
	return t, err
}

func (a *app) printLines(lines []string) error {
	if a.printer.Format() != output.FormatText {
		return writeErr(a.printer.Value(lines))
	}
	for _, line := range lines {
		a.printf("%s\n", line)
	}
	return nil
}

// parseParams turns name=value pairs into a parameter map.
func parseParams(pairs []string) (map[string]string, error) {
	params := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q (want name=value)", pair)
		}
		params[name] = value
	}
	return params, nil
}
