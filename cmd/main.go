package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brettbedarf/vshell/config"
	"github.com/brettbedarf/vshell/internal/console"
	"github.com/brettbedarf/vshell/internal/util"
	"github.com/brettbedarf/vshell/session"
	"github.com/brettbedarf/vshell/shell"
	"github.com/brettbedarf/vshell/world"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const scriptBuffer = 64

func main() {
	configPath := pflag.StringP("config", "c", "", "Path to a YAML or JSON config file")
	worldPath := pflag.StringP("world", "w", "", "Path to a world definition (built-in world when empty)")
	verbose := pflag.IntP("verbose", "v", config.InfoVerbose, "Log verbosity level between 1 (error) and 5 (trace)")
	unrestricted := pflag.BoolP("unrestricted", "U", false, "Allow every command from the start")
	jsonOut := pflag.BoolP("json", "j", false, "Print results as JSON lines (script mode only)")
	metricsAddr := pflag.String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	script := pflag.BoolP("script", "s", false, "Read commands from stdin line by line even on a terminal")
	logFile := pflag.String("log-file", "", "Write logs to this file in interactive mode")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "A small virtual shell game. Commands unlock as you explore.")
		fmt.Fprintln(os.Stderr, "Flags:")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	// defaults < config file < environment < flags
	cfg := config.NewDefaultConfig()
	if *configPath != "" {
		override, err := config.LoadConfigOverrideFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", *configPath, err)
			os.Exit(2)
		}
		cfg.Merge(override)
	}
	envOverride, err := config.LoadEnvOverride()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	cfg.Merge(envOverride)

	var flagOverride config.ConfigOverride
	pflag.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "verbose":
			flagOverride.LogLvl = util.Pointer(*verbose)
		case "world":
			flagOverride.WorldFile = util.Pointer(*worldPath)
		case "unrestricted":
			flagOverride.Unrestricted = util.Pointer(*unrestricted)
		case "json":
			flagOverride.JSON = util.Pointer(*jsonOut)
		case "metrics-addr":
			flagOverride.MetricsAddr = util.Pointer(*metricsAddr)
		}
	})
	cfg.Merge(&flagOverride)

	interactive := !*script &&
		term.IsTerminal(int(os.Stdin.Fd())) &&
		term.IsTerminal(int(os.Stdout.Fd()))

	// Initialize logger. The interactive screen owns the terminal, so logs
	// go to a file or nowhere.
	var logOut io.Writer = os.Stderr
	if interactive {
		logOut = io.Discard
		if *logFile != "" {
			f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
				os.Exit(2)
			}
			defer f.Close()
			logOut = f
		}
	}
	util.InitializeLoggerTo(logOut, cfg.LogLvl)
	logger := util.GetLogger("main")

	w, err := loadWorld(cfg.WorldFile)
	if err != nil {
		logger.Fatal().Err(err).Str("world", cfg.WorldFile).Msg("Failed to load world")
	}
	s, err := session.New(cfg, w)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build session")
	}
	if cfg.MetricsAddr != "" {
		if err := s.ServeMetrics(cfg.MetricsAddr); err != nil {
			logger.Fatal().Err(err).Str("addr", cfg.MetricsAddr).Msg("Failed to serve metrics")
		}
	}

	// Setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	logger.Info().Bool("interactive", interactive).Bool("unrestricted", cfg.Unrestricted).Msg("Shell starting")
	if interactive {
		err = runInteractive(ctx, s, cfg)
	} else {
		err = runScript(ctx, s, cfg)
	}
	if err != nil {
		logger.Error().Err(err).Msg("Shell stopped with error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Failed to stop metrics server")
	}
	logger.Info().Msg("Shell stopped")
}

func loadWorld(path string) (*world.World, error) {
	if path == "" {
		return world.Default()
	}
	return world.Load(path)
}

// runScript feeds stdin to the session one line at a time and prints results
// as they are published
func runScript(ctx context.Context, s *session.Session, cfg *config.Config) error {
	logger := util.GetLogger("main.runScript")

	printer := console.NewPrinter(os.Stdout, cfg.JSON)
	s.OnMilestone(printer.QueueNarrative)
	s.Subscribe(printer.Handle)

	ser := shell.NewSerializer(s, scriptBuffer)
	go func() {
		defer ser.Close()
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			if err := ser.Submit(ctx, scanner.Text()); err != nil {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			logger.Error().Err(err).Msg("Failed to read input")
		}
	}()

	if err := ser.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runInteractive(ctx context.Context, s *session.Session, cfg *config.Config) error {
	feed := console.NewFeed()
	s.OnMilestone(feed.QueueNarrative)
	s.Subscribe(feed.Handle)

	m := console.NewModel(s, feed, s.Stage(), console.Options{
		Prompt:      cfg.Prompt,
		CursorChar:  cfg.CursorChar,
		CursorBlink: cfg.CursorBlink,
		Scrollback:  cfg.Scrollback,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
