package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/taskflow/internal/api"
	"github.com/idilsaglam/taskflow/internal/auth"
	"github.com/idilsaglam/taskflow/internal/cli"
	"github.com/idilsaglam/taskflow/internal/config"
	"github.com/idilsaglam/taskflow/internal/logging"
	"github.com/idilsaglam/taskflow/internal/tui"
	"github.com/idilsaglam/taskflow/internal/ui"
)

const userAgent = "taskflow/1.0"

func main() {
	// Root flags (apply to every subcommand)
	groupPending := flag.Bool("group", false, "group output by pending/done")
	apiURL := flag.String("api", "", "server base URL")
	configPath := flag.String("config", "", "config file")
	logLevel := flag.String("log-level", "", "debug, info, warn or error")
	theme := flag.String("theme", "", "classic, neon or mono")
	flag.Usage = cli.PrintHelp
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintHelp()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		ui.Fail(err.Error())
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "group":
			cfg.Group = *groupPending
		case "api":
			cfg.APIURL = *apiURL
		case "log-level":
			cfg.LogLevel = *logLevel
		case "theme":
			cfg.Theme = *theme
		}
	})
	if err := cfg.Validate(); err != nil {
		ui.Fail(err.Error())
		os.Exit(2)
	}
	if !ui.SetTheme(cfg.Theme) {
		ui.Hint("unknown theme " + cfg.Theme + ", using classic")
	}

	// The TUI owns the terminal, so it only logs to a file.
	logOpts := logging.Options{
		Level:           cfg.LogLevel,
		File:            cfg.LogFile,
		ReportTimestamp: logging.ParseLevel(cfg.LogLevel) == log.DebugLevel,
		Prefix:          "taskflow",
	}
	var logOut io.Writer = os.Stderr
	if args[0] == "tui" {
		logOut = io.Discard
		logOpts.Prefix = "taskflow-tui"
	}
	logger, closer, err := logging.New(logOut, logOpts)
	if err != nil {
		ui.Fail("open log: " + err.Error())
		os.Exit(1)
	}

	code := run(args, cfg, logger)
	_ = closer.Close()
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}

func run(args []string, cfg *config.Config, logger *log.Logger) int {
	dir, err := config.Dir()
	if err != nil {
		ui.Fail(err.Error())
		return 1
	}
	store := auth.Store{Dir: dir}

	opts := []api.Option{api.WithLogger(logger), api.WithUserAgent(userAgent)}
	if ti, err := store.Get(); err != nil {
		logger.Warn("reading saved token", "err", err)
	} else if ti != nil {
		opts = append(opts, api.WithToken(ti.Token))
	}
	repo := api.New(cfg.APIURL, opts...)
	logger.Debug("starting", "api", repo.BaseURL(), "cmd", args[0])

	return cli.Run(args, cli.Options{
		Group:  cfg.Group,
		Repo:   repo,
		Logger: logger,
		Auth:   store,
		Interactive: func() error {
			return tui.Run(tui.Options{Repo: repo, Logger: logger})
		},
	})
}
