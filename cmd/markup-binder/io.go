package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
)

// openInput returns the named file, or stdin for "" and "-".
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}

	return os.Open(path)
}

func inputArg(args []string) string {
	if len(args) == 0 {
		return ""
	}

	return args[0]
}
