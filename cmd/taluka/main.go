package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/idilsaglam/taluka/internal/api"
	"github.com/idilsaglam/taluka/internal/cli"
	"github.com/idilsaglam/taluka/internal/config"
	"github.com/idilsaglam/taluka/internal/logging"
	"github.com/idilsaglam/taluka/internal/ui"
)

func main() {
	// Root flags (apply to every subcommand)
	cfgPath := flag.String("config", "", "config file (default ~/.taluka/config.yaml)")
	apiURL := flag.String("api", "", "backend base URL")
	theme := flag.String("theme", "", "colour theme: classic, neon or mono")
	noColor := flag.Bool("no-color", false, "disable colours")
	flag.Usage = func() { cli.PrintHelp(os.Stderr) }
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		ui.Fail(os.Stderr, err.Error())
		os.Exit(2)
	}
	if *apiURL != "" {
		cfg.APIURL = *apiURL
	}
	if *theme != "" {
		cfg.Theme = *theme
	}
	if *noColor {
		cfg.NoColor = true
	}
	if err := cfg.Validate(); err != nil {
		ui.Fail(os.Stderr, err.Error())
		os.Exit(2)
	}

	ui.SetTheme(cfg.Theme)
	if cfg.NoColor {
		ui.SetColorForcing(false, true)
	}

	// Hand the remaining args to the CLI runner.
	args := flag.Args()
	log, closer, err := openLog(cfg, len(args) == 0 || args[0] == "ui")
	if err != nil {
		ui.Fail(os.Stderr, "log: "+err.Error())
		os.Exit(2)
	}

	client := api.NewClient(cfg.APIURL, api.WithTimeout(cfg.Timeout), api.WithLogger(log))
	code := cli.Run(args, cli.Options{
		Service:    client,
		Timeout:    cfg.Timeout,
		Logger:     log,
		Config:     cfg,
		ConfigPath: *cfgPath,
	})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	closer.Close()
	os.Exit(code)
}

// openLog writes to the configured file. The interactive screen owns the
// terminal, so it falls back to ~/.taluka/taluka.log; one-shot commands log
// warnings and up to stderr.
func openLog(cfg config.Config, interactive bool) (*logrus.Logger, io.Closer, error) {
	path := cfg.LogFile
	if path == "" && interactive {
		p, err := config.DefaultLogFile()
		if err != nil {
			return nil, nil, err
		}
		path = p
	}
	if path != "" {
		return logging.Open(cfg.LogLevel, path)
	}

	level := cfg.LogLevel
	if level == "info" {
		level = "warn"
	}
	l, err := logging.New(level, os.Stderr)
	return l, io.NopCloser(nil), err
}
