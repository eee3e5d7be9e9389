package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Vovarama1992/audioproc/internal/config"
	"github.com/Vovarama1992/audioproc/internal/textrules"
)

// === правила произношения ===

func newRulesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage letter and word replacements applied before speech synthesis",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List replacement rules",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			letters, err := a.rules.ListLetterRules(cmd.Context())
			if err != nil {
				return err
			}
			words, err := a.rules.ListWordRules(cmd.Context())
			if err != nil {
				return err
			}
			if len(letters) == 0 && len(words) == 0 {
				fmt.Fprintf(a.out, "No rules in %s\n", a.env.RulesFile)
				return nil
			}
			for _, l := range letters {
				fmt.Fprintf(a.out, "letter  %s → %s\n", l.From, l.To)
			}
			for _, w := range words {
				fmt.Fprintf(a.out, "word    %s → %s\n", w.From, w.To)
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <letter|word> <from> <to>",
		Short: "Add or replace a rule",
		Args:  exactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			switch args[0] {
			case "letter":
				err = a.rules.AddLetterRule(cmd.Context(), args[1], args[2])
			case "word":
				err = a.rules.AddWordRule(cmd.Context(), args[1], args[2])
			default:
				return fmt.Errorf("%w: rule kind must be letter or word, got %q", errUsage, args[0])
			}
			if err != nil {
				return rulesErr(err)
			}
			fmt.Fprintf(a.out, "%s rule %q → %q saved\n", args[0], args[1], args[2])
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <from>",
		Short: "Delete letter and word rules for the given text",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.rules.DeleteLetterRule(cmd.Context(), args[0]); err != nil {
				return err
			}
			if err := a.rules.DeleteWordRule(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "rules for %q deleted\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, add, del)
	return cmd
}

func rulesErr(err error) error {
	if errors.Is(err, textrules.ErrInvalidRule) {
		return fmt.Errorf("%w: %w", config.ErrInvalid, err)
	}
	return err
}
