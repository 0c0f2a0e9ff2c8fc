package main

import (
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/zerodha/logf"

	"github.com/mr-karan/esmkit/internal/game"
)

// initLogger initializes logger instance.
func initLogger(ko *koanf.Koanf) logf.Logger {
	opts := logf.Opts{EnableCaller: true}
	if ko.String("app.log") == "debug" {
		opts.Level = logf.DebugLevel
		opts.EnableColor = true
	}
	return logf.New(opts)
}

// initConfig loads config to `ko` object.
func initConfig() (*koanf.Koanf, error) {
	var (
		ko = koanf.New(".")
		f  = flag.NewFlagSet("esmserve", flag.ContinueOnError)
	)

	// Configure Flags.
	f.Usage = func() {
		fmt.Println(f.FlagUsages())
		os.Exit(0)
	}

	// Register `--config` flag.
	cfgPath := f.String("config", "config.sample.toml", "Path to a config file to load.")
	f.String("app.address", ":6380", "Address to listen on.")
	f.String("data.dir", "", "Game data directory.")
	f.String("data.game", "", "Game family: morrowind or skyrim.")
	f.String("data.ini", "", "Morrowind.ini to take the load order from.")

	// Parse and Load Flags.
	err := f.Parse(os.Args[1:])
	if err != nil {
		return nil, err
	}

	if game.Exists(*cfgPath) {
		if err := ko.Load(file.Provider(*cfgPath), toml.Parser()); err != nil {
			return nil, err
		}
	}
	err = ko.Load(env.Provider("ESMKIT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "ESMKIT_")), "__", ".", -1)
	}), nil)
	if err != nil {
		return nil, err
	}
	// Flags set on the command line win over file and environment.
	if err := ko.Load(posflag.Provider(f, ".", ko), nil); err != nil {
		return nil, err
	}
	return ko, nil
}

// initSession builds the load session described by the config.
func initSession(ko *koanf.Koanf, lo logf.Logger) (*game.Session, error) {
	return game.New(game.Config{
		Game:          ko.String("data.game"),
		Dir:           ko.String("data.dir"),
		Files:         ko.Strings("data.files"),
		Ini:           ko.String("data.ini"),
		Masters:       ko.Bool("data.masters"),
		Unknown:       ko.String("reader.unknown"),
		MaxRecordSize: uint32(ko.Int64("reader.max_record_size")),
	}, lo)
}
