package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"markup-binder/markup"
	"markup-binder/markup/xmlio"
)

var errEmptyDocument = errors.New("document has no root element")

func newCanonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "canon [file]",
		Short: "Re-emit a document through the generic node model",
		Long: "canon captures the root element of a document as a generic node tree and writes it back: " +
			"namespace prefixes are regenerated, comments and processing instructions dropped.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(cmd, inputArg(args))
			if err != nil {
				return err
			}
			defer in.Close()

			return canonicalize(in, cmd.OutOrStdout())
		},
	}

	return cmd
}

// canonicalize reads one document from r and writes it to w.
func canonicalize(r io.Reader, w io.Writer) error {
	node, err := capture(r)
	if err != nil {
		return err
	}

	xw, err := xmlio.NewWriter(w)
	if err != nil {
		return err
	}

	if err := xw.Header(); err != nil {
		return err
	}

	if err := node.Emit(xw); err != nil {
		return err
	}

	if err := xw.Flush(); err != nil {
		return err
	}

	_, err = fmt.Fprintln(w)

	return err
}

func capture(r io.Reader) (*markup.Node, error) {
	src, err := xmlio.NewReader(r)
	if err != nil {
		return nil, err
	}

	var b *markup.NodeBuilder

	for {
		ev, err := src.Next()
		if err != nil {
			return nil, err
		}

		switch {
		case ev.Kind == markup.EventEndDocument:
			return nil, errEmptyDocument
		case b == nil && ev.Kind == markup.EventStartTag:
			b = markup.NewNodeBuilder(ev)
		case b != nil:
			done, err := b.Feed(ev)
			if err != nil {
				return nil, fmt.Errorf("capture document: %w", err)
			}

			if done {
				return b.Node(), nil
			}
		}
	}
}
