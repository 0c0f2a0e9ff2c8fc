package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mr-karan/esmkit/internal/datafile"
	"github.com/mr-karan/esmkit/pkg/esm"
)

type archiveInfo struct {
	Path     string            `yaml:"path"`
	Game     string            `yaml:"game"`
	Size     string            `yaml:"size"`
	Modified string            `yaml:"modified"`
	Master   bool              `yaml:"master"`
	Digest   string            `yaml:"digest,omitempty"`
	Header   esm.ArchiveHeader `yaml:"header"`
}

// infoCmd prints the header of archives
var infoCmd = &cobra.Command{
	Use:   "info <file>...",
	Short: "Print the header of archives",
	Long: `Print the header record of each archive: version, author or
company, description and dependencies.

Example:
  esmtool info Morrowind.esm Tribunal.esm`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		withDigest, _ := cmd.Flags().GetBool("digest")
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()

		for _, path := range args {
			db, rd, err := openArchive(path)
			if err != nil {
				return err
			}
			hdr, err := rd.ReadHeader(path)
			if err != nil {
				return err
			}
			fi, err := os.Stat(path)
			if err != nil {
				return err
			}

			info := archiveInfo{
				Path:     path,
				Game:     db.Family().Name,
				Size:     humanize.IBytes(uint64(fi.Size())),
				Modified: humanize.Time(fi.ModTime()),
				Master:   hdr.IsMaster(),
				Header:   hdr,
			}
			if withDigest {
				sum, err := datafile.Digest(path)
				if err != nil {
					return err
				}
				info.Digest = datafile.FormatDigest(sum)
			}
			if err := enc.Encode(info); err != nil {
				return fmt.Errorf("error rendering %s: %w", path, err)
			}
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().Bool("digest", false, "Also print the BLAKE3 digest of each file.")
	rootCmd.AddCommand(infoCmd)
}
