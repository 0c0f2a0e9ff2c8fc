package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mr-karan/esmkit/pkg/loadorder"
)

// depsCmd prints the resolved load order
var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Resolve and print the load order of the data directory",
	Long: `Resolve the load order from data.files, or from every master and
plugin in data.dir, sort it the way the game does and print it.

Example:
  esmtool deps --data.dir "Data Files" --manifest order.cbor`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			save, _   = cmd.Flags().GetString("manifest")
			verify, _ = cmd.Flags().GetString("verify")
			digest, _ = cmd.Flags().GetBool("digest")
		)

		if verify != "" {
			m, err := loadorder.LoadManifest(verify)
			if err != nil {
				return err
			}
			if err := m.Verify(ko.String("data.dir")); err != nil {
				return err
			}
			fmt.Printf("%s: %d archives unchanged\n", verify, len(m.Entries))
			return nil
		}

		s, err := initSession()
		if err != nil {
			return err
		}
		for i, f := range s.Order().Files() {
			kind := "plugin"
			if f.IsMaster() {
				kind = "master"
			}
			fmt.Printf("%3d  %-6s  %-40s %10s  %s\n", i, kind, f.Name,
				humanize.IBytes(uint64(max(f.Size, 0))), humanize.Time(f.Modified))
		}

		if save == "" {
			return nil
		}
		m, err := loadorder.NewManifest(ko.String("data.game"), s.Order(), s.Dir(), digest)
		if err != nil {
			return err
		}
		if err := m.Save(save); err != nil {
			return err
		}
		lo.Info("saved load order manifest", "path", save, "archives", len(m.Entries))
		return nil
	},
}

func init() {
	f := depsCmd.Flags()
	f.String("manifest", "", "Save the resolved load order to this file.")
	f.Bool("digest", false, "Record a BLAKE3 digest of every archive in the manifest.")
	f.String("verify", "", "Check a saved manifest against data.dir instead.")
	rootCmd.AddCommand(depsCmd)
}
