package main

import (
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/spf13/cobra"
	"github.com/zerodha/logf"

	"github.com/mr-karan/esmkit/internal/game"
	"github.com/mr-karan/esmkit/pkg/esm"
)

var (
	ko = koanf.New(".")
	lo logf.Logger
)

// initApp loads the config and sets up the logger before any subcommand runs.
// Precedence: flags set on the command line, then ESMKIT_ environment
// variables, then the config file, then flag defaults.
func initApp(cmd *cobra.Command, args []string) error {
	cfgPath, _ := cmd.Flags().GetString("config")
	if game.Exists(cfgPath) {
		if err := ko.Load(file.Provider(cfgPath), toml.Parser()); err != nil {
			return err
		}
	}
	err := ko.Load(env.Provider("ESMKIT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "ESMKIT_")), "__", ".", -1)
	}), nil)
	if err != nil {
		return err
	}
	if err := ko.Load(posflag.Provider(cmd.Flags(), ".", ko), nil); err != nil {
		return err
	}

	lo = initLogger(ko)
	return nil
}

// initLogger initializes logger instance.
func initLogger(ko *koanf.Koanf) logf.Logger {
	opts := logf.Opts{EnableCaller: true}
	if ko.String("app.log") == "debug" {
		opts.Level = logf.DebugLevel
		opts.EnableColor = true
	}
	return logf.New(opts)
}

func gameConfig() game.Config {
	return game.Config{
		Game:          ko.String("data.game"),
		Dir:           ko.String("data.dir"),
		Files:         ko.Strings("data.files"),
		Ini:           ko.String("data.ini"),
		Masters:       ko.Bool("data.masters"),
		Unknown:       ko.String("reader.unknown"),
		MaxRecordSize: uint32(ko.Int64("reader.max_record_size")),
	}
}

func initSession() (*game.Session, error) {
	return game.New(gameConfig(), lo)
}

// readerOptions returns the reader configuration from the config, plus extra.
func readerOptions(extra ...esm.Config) ([]esm.Config, error) {
	cfg := gameConfig()
	u, err := esm.ParseUnknown(strings.ToLower(cfg.Unknown))
	if err != nil {
		return nil, err
	}
	cfgs := []esm.Config{esm.WithUnknown(u), esm.WithLogger(lo)}
	if cfg.MaxRecordSize > 0 {
		cfgs = append(cfgs, esm.WithMaxRecordSize(cfg.MaxRecordSize))
	}
	return append(cfgs, extra...), nil
}

// openArchive detects the game of the archive at path and returns a reader
// over a fresh database for it.
func openArchive(path string, extra ...esm.Config) (game.Database, *esm.Reader, error) {
	fam, err := esm.Detect(path)
	if err != nil {
		return nil, nil, err
	}
	cfgs, err := readerOptions(extra...)
	if err != nil {
		return nil, nil, err
	}

	db := game.ForFamily(fam)
	rd, err := db.Reader(cfgs...)
	if err != nil {
		return nil, nil, err
	}
	return db, rd, nil
}
