package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/relickit/relic/internal/archive"
	"github.com/relickit/relic/internal/config"
)

// createCmd represents the create command.
var createCmd = &cobra.Command{
	Use:   "create <archive.afs> <path>...",
	Short: "Create an AFS archive from a set of paths",
	Long: `Create an AFS archive containing the given files.

example:

relic create bundle.afs a.bin b.bin`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().Uint32("block-size", 2048, "entry alignment in bytes")
	createCmd.Flags().Bool("v2", false, "use the V2 metadata layout (default is V1)")
}

func runCreate(cmd *cobra.Command, args []string) error {
	archiveName := args[0]
	paths := args[1:]

	settings := archive.DefaultSettings()
	if presetName, _ := cmd.Flags().GetString("preset"); presetName != "" {
		preset, err := loadPreset(presetName)
		if err != nil {
			return err
		}
		settings = preset.Archive
	}
	if v2, _ := cmd.Flags().GetBool("v2"); v2 {
		settings.Version = archive.V2
	}
	if bs, _ := cmd.Flags().GetUint32("block-size"); cmd.Flags().Changed("block-size") {
		settings.BlockSize = bs
	}

	var sources []archive.SourceEntry
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return err
		}

		sources = append(sources, archive.SourceEntry{
			Name:       filepath.Base(p),
			Content:    f,
			Length:     uint32(info.Size()),
			ModTime:    info.ModTime(),
			HasModTime: true,
		})
	}

	out, err := os.Create(archiveName)
	if err != nil {
		return err
	}
	defer out.Close()

	return archive.Write(out, sources, settings, func(e archive.Entry, digest [32]byte) {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %-24s offset=%-10d length=%-10d blake2b-256=%x\n",
			e.Name, e.Offset, e.Length, digest)
	})
}

func loadPreset(name string) (config.Preset, error) {
	f, err := os.Open("presets.cbor")
	if err != nil {
		return config.Preset{}, err
	}
	defer f.Close()

	presets, err := config.Load(f)
	if err != nil {
		return config.Preset{}, err
	}
	return config.Find(presets, name)
}
