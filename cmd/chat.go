package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/atharv2823/BaatCheet/internal/chat"
	"github.com/atharv2823/BaatCheet/internal/config"
	"github.com/atharv2823/BaatCheet/internal/logging"
	"github.com/atharv2823/BaatCheet/internal/storage"
	"github.com/atharv2823/BaatCheet/internal/tui"
)

// runChat starts the interactive chat mode.
func runChat() error {
	cfg := initConfig()

	p, err := buildProvider(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if cfg.Model == "" {
		cfg.Model = p.DefaultModel()
	}

	dataDir, err := resolveDataDir(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "data dir:", err)
		os.Exit(1)
	}

	st, err := buildStorage(cfg, dataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open history store:", err)
		os.Exit(1)
	}
	defer st.Close()

	logPath := cfg.LogFile
	if logPath == "" {
		logPath = filepath.Join(dataDir, "baatcheet.log")
	}
	logger, closeLog := logging.New(logPath)
	defer closeLog.Close()

	store := chat.NewStore(st)
	dispatcher := chat.NewDispatcher(store, p, cfg.Model, cfg.RequestTimeout(), logger)

	if useTUI {
		return tui.Run(store, dispatcher, tui.TUIConfig{
			Version:  appVersion,
			Provider: cfg.Provider,
			Model:    dispatcher.Model(),
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	repl := tui.NewPlainREPL(store, dispatcher, os.Stdin, os.Stdout)
	return repl.Run(ctx)
}

// resolveDataDir returns the history directory, creating it if needed.
func resolveDataDir(cfg *config.Config) (string, error) {
	dir := cfg.DataDir
	if dir == "" {
		d, err := storage.DefaultDataDir()
		if err != nil {
			return "", err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// buildStorage opens the configured history backend.
func buildStorage(cfg *config.Config, dataDir string) (storage.Storage, error) {
	switch cfg.Storage {
	case "", "file":
		return storage.NewFileStorage(dataDir), nil
	case "sqlite":
		return storage.NewSQLiteStorage(filepath.Join(dataDir, "baatcheet.db"))
	default:
		return nil, fmt.Errorf("unknown storage backend %q (use file or sqlite)", cfg.Storage)
	}
}
