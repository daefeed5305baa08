package main

import (
	"github.com/spf13/cobra"

	"markup-binder/options"
)

func newPolicyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Inspect and create binding policy files",
	}

	cmd.AddCommand(newPolicyShowCmd(), newPolicyInitCmd())

	return cmd
}

func newPolicyShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [file]",
		Short: "Print the effective policy, defaults filled in",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadPolicy(inputArg(args))
			if err != nil {
				return err
			}

			data, err := options.Marshal(p)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)

			return err
		},
	}
}

func newPolicyInitCmd() *cobra.Command {
	var (
		choice    string
		duplicate string
		lenient   []string
	)

	cmd := &cobra.Command{
		Use:   "init <file>",
		Short: "Write a policy file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := options.ParseChoiceEncode(choice)
			if err != nil {
				return err
			}

			d, err := options.ParseDuplicateChoice(duplicate)
			if err != nil {
				return err
			}

			l, err := options.ParseLeniency(lenient...)
			if err != nil {
				return err
			}

			p := options.New(options.WithChoiceEncode(c), options.WithDuplicateChoice(d), options.WithLeniency(l))

			return options.WriteFile(p, args[0])
		},
	}

	cmd.Flags().StringVar(&choice, "choice-encode", options.ChoiceStrict.String(), "Encoding of ambiguous choices: strict or first")
	cmd.Flags().StringVar(&duplicate, "duplicate-choice", options.DuplicateLastWins.String(), "Repeated choice members on decode: last-wins, first-wins or reject")
	cmd.Flags().StringSliceVar(&lenient, "lenient", nil, "Problems to warn about instead of failing")

	return cmd
}

// loadPolicy reads a policy file; an empty path yields the default policy.
func loadPolicy(path string) (options.Policy, error) {
	if path == "" {
		return options.Default(), nil
	}

	return options.LoadFile(path)
}
