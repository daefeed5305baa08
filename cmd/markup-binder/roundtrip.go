package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/untillpro/goutils/logger"

	"markup-binder/binding"
	"markup-binder/markup/xmlio"
	"markup-binder/store"
)

func newRoundtripCmd() *cobra.Command {
	var policyFile string

	cmd := &cobra.Command{
		Use:   "roundtrip [file]",
		Short: "Decode a store document into its bound types and encode it again",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadPolicy(policyFile)
			if err != nil {
				return err
			}

			reg, err := store.NewRegistry()
			if err != nil {
				return err
			}

			engine, err := binding.NewWithPolicy(reg, p)
			if err != nil {
				return err
			}

			in, err := openInput(cmd, inputArg(args))
			if err != nil {
				return err
			}
			defer in.Close()

			src, err := xmlio.NewReader(in)
			if err != nil {
				return err
			}

			v, diags, err := engine.DecodeSource(src)
			for _, d := range diags.Warnings {
				fmt.Fprintln(cmd.ErrOrStderr(), d)
			}

			if err != nil {
				return fmt.Errorf("decode: %w", err)
			}

			if logger.IsVerbose() {
				logger.Verbose(fmt.Sprintf("decoded %T", v))
			}

			data, err := engine.Marshal(v)
			if err != nil {
				return fmt.Errorf("encode: %w", err)
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))

			return err
		},
	}

	cmd.Flags().StringVar(&policyFile, "policy", "", "Policy file (YAML)")

	return cmd
}
