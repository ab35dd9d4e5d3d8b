package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "relic",
	Short: "relic creates, unpacks and inspects AFS archives and inspects GBIX/PVRT/GVRT textures",
	Long: `relic is a demonstration CLI over this module's AFS archive engine
and texture container. It has no PRS command and does not write textures.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "accepted, but no subcommand changes its output for it")
	rootCmd.PersistentFlags().String("preset", "", "load archive settings from a named preset in ./presets.cbor (used by create)")
}
