package main

import (
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/relickit/relic/internal/archive"
	"github.com/relickit/relic/internal/registry"
	"github.com/relickit/relic/internal/texture"
)

// inspectCmd represents the inspect command.
var inspectCmd = &cobra.Command{
	Use:   "inspect <file>...",
	Short: "Dump the structure of an AFS archive or texture file",
	Long: `Investigate and show the structure of the given files,
identifying each one by extension and signature and dumping its
decoded form.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	for _, filename := range args {
		fmt.Fprintln(cmd.OutOrStdout(), filename)
		if err := inspectFile(cmd, filename); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
	}
	return nil
}

func inspectFile(cmd *cobra.Command, filename string) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	var magic [4]byte
	if _, err := f.Read(magic[:]); err == nil && string(magic[:]) == "AFS\x00" {
		if _, err := f.Seek(0, 0); err != nil {
			return err
		}
		return explainArchive(cmd, f)
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}

	handler, err := registry.Identify(f, filename)
	if err != nil {
		return err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	if handler.Name == "pvr" || handler.Name == "gvr" {
		return explainTexture(cmd, f)
	}

	return fmt.Errorf("inspect: %s: unrecognized format", filename)
}

func explainArchive(cmd *cobra.Command, f *os.File) error {
	r, err := archive.Open(f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "AFS archive, layout version %d, %d entries\n", r.Version()+1, len(r.Entries()))
	for _, e := range r.Entries() {
		spew.Dump(e)
	}
	return nil
}

func explainTexture(cmd *cobra.Command, f *os.File) error {
	// OpenStream already runs Decode; a texture that only lacks its
	// external palette is still dumped with its parsed header fields.
	t, err := texture.OpenStream(f)
	if err != nil && err != texture.ErrNeedsExternalPalette {
		return err
	}
	spew.Dump(t)
	return nil
}
