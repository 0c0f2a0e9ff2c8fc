package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mr-karan/esmkit/internal/datafile"
	"github.com/mr-karan/esmkit/pkg/esm"
)

// roundtripCmd reads an archive and writes it back
var roundtripCmd = &cobra.Command{
	Use:   "roundtrip <file>",
	Short: "Read an archive and write it back out",
	Long: `Decode an archive completely and encode it again to the output
path, then compare both files. Archives with compressed records are
recompressed and so usually differ in bytes while holding equal records.

Example:
  esmtool roundtrip -o /tmp/Tribunal.esm Tribunal.esm`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			in      = args[0]
			out, _  = cmd.Flags().GetString("output")
			keep, _ = cmd.Flags().GetBool("keep-mtime")
		)

		db, rd, err := openArchive(in, esm.WithCapture())
		if err != nil {
			return err
		}
		res, err := rd.ReadFile(in)
		if err != nil {
			return err
		}

		var cfgs []esm.Config
		cfgs = append(cfgs, esm.WithLogger(lo))
		if keep {
			fi, err := os.Stat(in)
			if err != nil {
				return err
			}
			cfgs = append(cfgs, esm.WithModTime(fi.ModTime()))
		}
		if err := esm.WriteFile(out, db.Family(), res.Document, cfgs...); err != nil {
			return err
		}

		a, err := datafile.Digest(in)
		if err != nil {
			return err
		}
		b, err := datafile.Digest(out)
		if err != nil {
			return err
		}
		fi, err := os.Stat(out)
		if err != nil {
			return err
		}

		same := "differs"
		if a == b {
			same = "identical"
		}
		fmt.Printf("%s -> %s: %s records, %s, %s\n", in, out,
			humanize.Comma(int64(res.Records)), humanize.IBytes(uint64(fi.Size())), same)
		return nil
	},
}

func init() {
	f := roundtripCmd.Flags()
	f.StringP("output", "o", "", "Path of the archive to write.")
	f.Bool("keep-mtime", true, "Give the output the modification time of the input.")
	_ = roundtripCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(roundtripCmd)
}
