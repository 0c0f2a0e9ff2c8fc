package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version of the build. This is injected at build-time.
	buildString = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "esmtool",
	Short: "Inspect and rewrite game master and plugin archives",
	Long: `esmtool reads Morrowind (TES3) and Skyrim (TES4) master and plugin
archives, resolves load orders and writes archives back.`,
	Version:           buildString,
	SilenceUsage:      true,
	PersistentPreRunE: initApp,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("config", "config.sample.toml", "Path to a config file to load.")
	f.String("app.log", "info", "Log level: info or debug.")
	f.String("data.dir", ".", "Game data directory.")
	f.String("data.game", "morrowind", "Game family: morrowind or skyrim.")
	f.StringSlice("data.files", nil, "Explicit load order.")
	f.String("data.ini", "", "Morrowind.ini to take the load order from when data.files is empty.")
	f.Bool("data.masters", true, "Add the base game masters to an explicit load order.")
	f.String("reader.unknown", "skip", "Unknown record policy: skip, keep or fail.")
	f.Uint32("reader.max_record_size", 1<<24, "Largest record payload accepted.")
}
