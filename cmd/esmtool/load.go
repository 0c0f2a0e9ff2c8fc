package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// loadCmd loads the whole load order
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load every archive of the load order into memory",
	Long: `Read the archives of the resolved load order one after the other.
Later archives override records of earlier ones. Prints how many records
each archive added or changed and the final size of every table.

Example:
  esmtool load --data.game skyrim --data.dir Data`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := initSession()
		if err != nil {
			return err
		}
		if err := s.Load(); err != nil {
			return err
		}

		var total int
		for _, res := range s.Results {
			fmt.Printf("%-40s %10s absorbed of %s\n", res.Path,
				humanize.Comma(int64(res.Absorbed)), humanize.Comma(int64(res.Records)))
			total += res.Absorbed
		}
		fmt.Printf("total: %s\n", humanize.Comma(int64(total)))
		for _, t := range s.DB().Registry().Tables() {
			fmt.Printf("  %s %10s\n", t.Tag(), humanize.Comma(int64(t.Len())))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
