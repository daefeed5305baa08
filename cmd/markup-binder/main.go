// Package main provides the CLI entrypoint for markup-binder.
//
// markup-binder exercises the binding engine from the command line:
//   - canon re-emits any document through the generic node model
//   - policy prints or writes binding policy files
//   - roundtrip decodes a store document into its bound types and encodes it again
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/untillpro/goutils/logger"
)

var version = "0.1.0"

func main() {
	if err := execRootCmd(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func execRootCmd(args []string) error {
	rootCmd := prepareRootCmd(args,
		newCanonCmd(),
		newPolicyCmd(),
		newRoundtripCmd(),
	)

	return rootCmd.Execute()
}

func prepareRootCmd(args []string, cmds ...*cobra.Command) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "markup-binder",
		Short: "Bind markup documents to typed records",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if ok, _ := cmd.Flags().GetBool("verbose"); ok {
				logger.SetLogLevel(logger.LogLevelVerbose)
				logger.Verbose("Using logger.LogLevelVerbose...")
			}
		},
	}

	versionCmd := &cobra.Command{
		Use:     "version",
		Short:   "Print the current version",
		Aliases: []string{"ver"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", cmd.Root().Name(), version)
		},
	}

	rootCmd.SetArgs(args[1:])
	rootCmd.AddCommand(cmds...)
	rootCmd.AddCommand(versionCmd)
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	return rootCmd
}
