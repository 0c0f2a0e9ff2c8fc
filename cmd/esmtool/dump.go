package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mr-karan/esmkit/pkg/esm"
)

type dumpEntry struct {
	Tag    esm.FourCC   `yaml:"tag"`
	Groups []esm.FourCC `yaml:"groups,omitempty"`
	Record esm.Record   `yaml:"record"`
}

// dumpCmd prints every record of an archive
var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Print the records of an archive as YAML",
	Long: `Decode an archive and print its records in file order. Records of
types without a codec are printed with their raw payload.

Example:
  esmtool dump --tag GLOB Morrowind.esm`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tags, _ := cmd.Flags().GetStringSlice("tag")
		want := make(map[esm.FourCC]bool, len(tags))
		for _, t := range tags {
			want[esm.Tag(strings.ToUpper(t))] = true
		}

		_, rd, err := openArchive(args[0], esm.WithCapture())
		if err != nil {
			return err
		}
		res, err := rd.ReadFile(args[0])
		if err != nil {
			return err
		}

		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()

		if len(want) == 0 || want[res.Header.Tag()] {
			if err := enc.Encode(dumpEntry{Tag: res.Header.Tag(), Record: res.Header}); err != nil {
				return err
			}
		}

		res.Document.Walk(func(rec esm.Record, groups []esm.GroupHeader) bool {
			if len(want) > 0 && !want[rec.Tag()] {
				return true
			}
			e := dumpEntry{Tag: rec.Tag(), Record: rec}
			for _, g := range groups {
				e.Groups = append(e.Groups, g.Label)
			}
			err = enc.Encode(e)
			return err == nil
		})
		return err
	},
}

func init() {
	dumpCmd.Flags().StringSlice("tag", nil, "Only print records of these types.")
	rootCmd.AddCommand(dumpCmd)
}
