package main

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mr-karan/esmkit/pkg/esm"
)

// countCmd counts records per type
var countCmd = &cobra.Command{
	Use:   "count <file>...",
	Short: "Count the records of each type in archives",
	Long: `Walk each archive by record length and print how many records of
each type it holds. Record contents are not decoded unless the type is known.

Example:
  esmtool count Skyrim.esm`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			res, err := countArchive(path)
			if err != nil {
				return err
			}

			fmt.Printf("%s: %s records, %s groups\n", path,
				humanize.Comma(int64(res.Records)), humanize.Comma(int64(res.Groups)))
			for _, tag := range sortedTags(res.Counts) {
				fmt.Printf("  %s %10s\n", tag, humanize.Comma(int64(res.Counts[tag])))
			}
		}
		return nil
	},
}

// openAll opens every group, whatever its label, so records of unregistered
// types are counted too.
func openAll(esm.GroupHeader, []esm.GroupHeader) bool {
	return true
}

// countArchive walks the archive at path and returns the per-type counts.
func countArchive(path string) (*esm.Result, error) {
	_, rd, err := openArchive(path, esm.WithGroupFilter(openAll))
	if err != nil {
		return nil, err
	}
	return rd.ReadFile(path)
}

func sortedTags(counts map[esm.FourCC]int) []esm.FourCC {
	tags := make([]esm.FourCC, 0, len(counts))
	for t := range counts {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		return bytes.Compare(tags[i][:], tags[j][:]) < 0
	})
	return tags
}

func init() {
	rootCmd.AddCommand(countCmd)
}
