package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/relickit/relic/internal/archive"
)

// extractCmd represents the extract command.
var extractCmd = &cobra.Command{
	Use:   "extract <archive.afs> [outdir]",
	Short: "Unpack an AFS archive's entries to disk",
	Long:  `Unpack every entry of an AFS archive into outdir (default ".").`,
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	outdir := "."
	if len(args) == 2 {
		outdir = args[1]
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := archive.Open(f)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return err
	}

	for i, e := range r.Entries() {
		dstPath := filepath.Join(outdir, e.Name)
		dst, err := os.Create(dstPath)
		if err != nil {
			return err
		}
		if _, err := io.Copy(dst, r.Content(i)); err != nil {
			dst.Close()
			return errors.Wrapf(err, "extracting %q", e.Name)
		}
		dst.Close()
		fmt.Fprintf(cmd.OutOrStdout(), "extracted %s (%d bytes)\n", dstPath, e.Length)
	}

	return nil
}
