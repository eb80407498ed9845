package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/cmdlens/internal/history"
	"github.com/user/cmdlens/internal/output"
	"github.com/user/cmdlens/internal/safety"
)

func newHistoryCmd(a *app) *cobra.Command {
	list := newHistoryListCmd(a)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, search and organize inspected commands",
		Args:  cobra.NoArgs,
		RunE:  list.RunE,
	}
	cmd.Flags().AddFlagSet(list.Flags())

	cmd.AddCommand(
		list,
		newHistorySearchCmd(a),
		newHistorySuggestCmd(a),
		newHistoryPopularCmd(a),
		newHistoryShowCmd(a),
		newHistoryFavCmd(a),
		newHistoryTagCmd(a),
		newHistoryUntagCmd(a),
		newHistoryClearCmd(a),
	)
	return cmd
}

func newHistoryListCmd(a *app) *cobra.Command {
	var (
		favorites bool
		tags      []string
		days      int
		grep      string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List history entries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.historyStore()
			if err != nil {
				return err
			}

			selected := 0
			for _, set := range []bool{favorites, len(tags) > 0, days > 0, grep != ""} {
				if set {
					selected++
				}
			}
			if selected > 1 {
				return userError(errors.New("use only one of --favorites, --tag, --days, --grep (history search combines filters)"))
			}

			var entries []history.Entry
			switch {
			case favorites:
				entries, err = store.Favorites()
			case len(tags) > 0:
				entries, err = store.FilterByTags(tags)
			case days > 0:
				entries, err = store.Recent(days)
			case grep != "":
				entries, err = store.Search(grep)
			default:
				entries, err = store.List()
			}
			if err != nil {
				return systemError(err)
			}
			return writeErr(a.printer.Entries(entries))
		},
	}

	cmd.Flags().BoolVar(&favorites, "favorites", false, "Only favorites")
	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Only entries with all of these tags")
	cmd.Flags().IntVar(&days, "days", 0, "Only entries from the last N days")
	cmd.Flags().StringVar(&grep, "grep", "", "Only entries whose command, explanation or tags contain text")
	return cmd
}

func newHistorySearchCmd(a *app) *cobra.Command {
	var (
		tags       []string
		risk       string
		favorite   bool
		days       int
		cmdType    string
		complexity string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Ranked word search with filters",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filters := history.Filters{
				Tags:        tags,
				CommandType: cmdType,
				Complexity:  complexity,
			}
			if risk != "" {
				level, err := safety.ParseRiskLevel(risk)
				if err != nil {
					return userError(err)
				}
				filters.RiskLevel = &level
			}
			if cmd.Flags().Changed("favorite") {
				filters.Favorite = &favorite
			}
			if days > 0 {
				filters.Since = time.Now().AddDate(0, 0, -days)
			}

			idx, err := a.historyIndex()
			if err != nil {
				return err
			}
			results := idx.Search(strings.Join(args, " "), filters, limit)
			return writeErr(a.printer.Results(results))
		},
	}

	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Require all of these tags")
	cmd.Flags().StringVar(&risk, "risk", "", "Require risk level (low|medium|high|critical)")
	cmd.Flags().BoolVar(&favorite, "favorite", false, "Require favorite (or --favorite=false for non-favorites)")
	cmd.Flags().IntVar(&days, "days", 0, "Only entries from the last N days")
	cmd.Flags().StringVar(&cmdType, "type", "", "Require command type, e.g. network")
	cmd.Flags().StringVar(&complexity, "complexity", "", "Require complexity (simple|moderate|complex)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum results")
	return cmd
}

func newHistorySuggestCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "suggest <prefix>",
		Short: "Suggest indexed words starting with or containing prefix",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.historyIndex()
			if err != nil {
				return err
			}
			words := idx.Suggestions(args[0], limit)
			if a.printer.Format() != output.FormatText {
				return writeErr(a.printer.Value(words))
			}
			for _, w := range words {
				a.printf("%s\n", w)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "Maximum suggestions")
	return cmd
}

func newHistoryPopularCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "popular",
		Short: "Show the words found in the most entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := a.historyIndex()
			if err != nil {
				return err
			}
			words := idx.PopularWords(limit)
			if a.printer.Format() != output.FormatText {
				return writeErr(a.printer.Value(words))
			}
			for _, w := range words {
				a.printf("%4d  %s\n", w.Entries, w.Word)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum words")
	return cmd
}

func newHistoryShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one entry with its analysis and explanation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.historyStore()
			if err != nil {
				return err
			}
			entry, err := store.Get(args[0])
			if err != nil {
				return lookupErr(err)
			}

			if a.printer.Format() != output.FormatText {
				return writeErr(a.printer.Value(entry))
			}
			if err := a.printer.Entries([]history.Entry{entry}); err != nil {
				return writeErr(err)
			}
			if entry.Analysis != nil {
				a.printf("\n")
				if err := a.printer.Analysis(*entry.Analysis); err != nil {
					return writeErr(err)
				}
			}
			if entry.Explanation != nil {
				a.printf("\n")
				return writeErr(a.printer.Explanation(entry.Explanation))
			}
			return nil
		},
	}
}

func newHistoryFavCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "fav <id>",
		Short: "Toggle the favorite flag of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.historyStore()
			if err != nil {
				return err
			}
			fav, err := store.ToggleFavorite(args[0])
			if err != nil {
				return lookupErr(err)
			}
			if fav {
				a.printf("%s marked as favorite\n", args[0])
			} else {
				a.printf("%s no longer a favorite\n", args[0])
			}
			return nil
		},
	}
}

func newHistoryTagCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <id> <tag>...",
		Short: "Add tags to an entry",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.historyStore()
			if err != nil {
				return err
			}
			for _, tag := range args[1:] {
				if err := store.AddTag(args[0], tag); err != nil {
					return lookupErr(err)
				}
			}
			return nil
		},
	}
}

func newHistoryUntagCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "untag <id> <tag>...",
		Short: "Remove tags from an entry",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.historyStore()
			if err != nil {
				return err
			}
			for _, tag := range args[1:] {
				if err := store.RemoveTag(args[0], tag); err != nil {
					return lookupErr(err)
				}
			}
			return nil
		},
	}
}

func newHistoryClearCmd(a *app) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all history entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return userError(errors.New("refusing to clear history without --force"))
			}
			store, err := a.historyStore()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return systemError(err)
			}
			fmt.Fprintf(a.stderr, "cmdlens: cleared %s\n", store.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Confirm clearing")
	return cmd
}

// historyIndex indexes the current history snapshot.
func (a *app) historyIndex() (*history.Index, error) {
	store, err := a.historyStore()
	if err != nil {
		return nil, err
	}
	entries, err := store.List()
	if err != nil {
		return nil, systemError(err)
	}
	return history.NewIndex(entries), nil
}

// lookupErr treats unknown or ambiguous IDs and bad tags as user errors.
func lookupErr(err error) error {
	if errors.Is(err, history.ErrNotFound) || errors.Is(err, history.ErrAmbiguousID) || errors.Is(err, history.ErrEmptyTag) {
		return userError(err)
	}
	return systemError(err)
}
