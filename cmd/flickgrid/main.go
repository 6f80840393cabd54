package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/flickgrid/internal/adapter"
	"github.com/mmcdole/flickgrid/internal/fixture"
	"github.com/mmcdole/flickgrid/internal/flickr"
	"github.com/mmcdole/flickgrid/internal/service"
	"github.com/mmcdole/flickgrid/internal/store"
	"github.com/mmcdole/flickgrid/internal/tui"
	"github.com/mmcdole/flickgrid/internal/tui/styles"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var (
		showVersion bool
		configDir   string
		tag         string
		printOnly   bool
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&configDir, "config", "", "config directory (default: user config dir)")
	flag.StringVar(&tag, "tag", "", "search this tag on startup instead of showing the bundled results")
	flag.BoolVar(&printOnly, "print", false, "print the results for -tag and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("flickgrid %s\n", Version)
		return
	}

	if printOnly && tag == "" {
		fmt.Fprintln(os.Stderr, "Error: -print requires -tag")
		os.Exit(2)
	}

	if err := run(configDir, tag, printOnly); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configDir, tag string, printOnly bool) error {
	// Load configuration
	var searchPaths []string
	if configDir != "" {
		searchPaths = append(searchPaths, configDir)
	}
	cfg, err := adapter.LoadConfig(searchPaths...)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, closeLog, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		defer closeLog()
	}
	slog.SetDefault(logger)

	logger.Info("starting flickgrid", "version", Version)

	// Check if configured
	if !cfg.IsConfigured() && !printOnly {
		if err := runSetupFlow(cfg, configDir, logger); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := flickr.NewClient(flickr.Options{
		BaseURL:             cfg.Flickr.BaseURL,
		APIKey:              cfg.Flickr.APIKey,
		Method:              cfg.Flickr.Method,
		Timeout:             cfg.Flickr.Timeout,
		MaxConcurrentImages: cfg.Flickr.MaxConcurrentImages,
	}, logger)

	if printOnly {
		return runHeadless(ctx, client, tag, os.Stdout, logger)
	}

	exec := tui.NewProgramExecutor()
	events := tui.NewSessionEvents()
	session := service.NewSession(client, store.NewResultCache(), exec,
		service.WithListener(events),
		service.WithLogger(logger),
		service.WithContext(ctx),
		service.WithKeepResultsOnFailure(cfg.Search.KeepResultsOnFailure),
	)
	defer session.Close()

	if tag != "" {
		session.Search(tag)
	} else {
		items, err := fixture.Load(cfg.Search.Fixture)
		if err != nil {
			return fmt.Errorf("failed to load startup results: %w", err)
		}
		initial := cfg.Search.InitialTag
		if initial == "" && cfg.Search.Fixture == "" {
			initial = fixture.DefaultTag
		}
		session.Install(initial, items)
	}

	opener := adapter.NewOpener(cfg.UI.Viewer, cfg.UI.ViewerArgs, logger)
	model := tui.NewModel(session, events, tui.Options{
		Columns: cfg.UI.GridColumns,
		MaxTags: cfg.UI.MaxTags,
		Opener:  opener,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	exec.Attach(p)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down", "stats", session.Stats())
	return nil
}

// runSetupFlow asks for a Flickr API key and saves it. An empty answer
// continues with the bundled results only.
func runSetupFlow(cfg *adapter.Config, configDir string, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println(styles.AccentStyle.Render("Welcome to flickgrid!"))
	fmt.Println()
	fmt.Println("Tag searches need a Flickr API key (https://www.flickr.com/services/apps/create/).")
	fmt.Print("API key (leave empty to browse the bundled results): ")

	key, err := readSecret()
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if key == "" {
		logger.Info("setup skipped, no api key")
		return nil
	}

	cfg.Flickr.APIKey = key
	if err := adapter.SaveConfig(cfg, configDir); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println("✓ Saved")
	logger.Info("setup complete")
	return nil
}

// readSecret reads a line without echo when stdin is a terminal
func readSecret() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
