// LinguaTax TUI - a terminal interface for document-assisted tax help.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/linguatax/linguatax-tui/internal/api"
	"github.com/linguatax/linguatax-tui/internal/config"
	"github.com/linguatax/linguatax-tui/internal/ingest"
	"github.com/linguatax/linguatax-tui/internal/logging"
	"github.com/linguatax/linguatax-tui/internal/model"
	"github.com/linguatax/linguatax-tui/internal/overlay"
	"github.com/linguatax/linguatax-tui/internal/speech"
	"github.com/linguatax/linguatax-tui/internal/storage"
	"github.com/linguatax/linguatax-tui/internal/ui/chat"
	"github.com/linguatax/linguatax-tui/internal/ui/viewer"
	"github.com/linguatax/linguatax-tui/internal/util"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Global program reference for async streaming
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

func sendToProgram(msg tea.Msg) {
	programMu.Lock()
	p := programRef
	programMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func main() {
	var (
		docID       = flag.String("doc", "", "document id to chat about (empty for general help)")
		docTitle    = flag.String("title", "", "document title shown in the viewer")
		docPages    = flag.Int("pages", 1, "page count of the document")
		configPath  = flag.String("config", "", "config file path (default ~/.linguatax/config.toml)")
		listStored  = flag.Bool("sessions", false, "list locally stored sessions and exit")
		forgetID    = flag.String("forget", "", "delete a locally stored session by id and exit")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("linguatax %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if *listStored || *forgetID != "" {
		if err := runHistoryCommand(*listStored, *forgetID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "linguatax needs an interactive terminal")
		os.Exit(1)
	}

	cfgPath := resolveConfigPath(*configPath)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(logging.Options{
		FilePath: cfg.Log.FilePath,
		Debug:    cfg.Log.Debug,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, cfgPath, logger, *docID, *docTitle, *docPages); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// resolveConfigPath picks the file the watcher follows: an explicit
// -config flag wins over the default location.
func resolveConfigPath(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	path, err := config.Path()
	if err != nil {
		return ""
	}
	return path
}

func run(cfg *config.Config, cfgPath string, logger *zap.Logger, docID, docTitle string, docPages int) error {
	client := api.NewClient(&api.ClientConfig{
		BaseURL:            cfg.Backend.BaseURL,
		Timeout:            cfg.Backend.Timeout,
		MaxAttachments:     cfg.Chat.MaxAttachments,
		MaxAttachmentBytes: cfg.Chat.MaxAttachmentBytes,
	}, logger)

	history := openHistory(logger)
	if history != nil {
		defer history.Close()
	}

	session := seedSession(history, docID, logger)
	if docTitle != "" {
		session.Title = docTitle
	}

	var gate *ingest.Gate
	bus := overlay.NewBus()

	var viewerPane *viewer.Model
	if docID != "" {
		status, err := fetchInitialStatus(client, docID)
		if err != nil {
			return fmt.Errorf("document %s: %w", docID, err)
		}
		gate = ingest.NewGate(client, docID, status, cfg.Ingest.PollInterval, logger)
		viewerPane = viewer.New(docID, docTitle, docPages, cfg.Viewer.PageGap)
	}

	voice := speech.NewUnsupported(speech.Callbacks{
		OnResult: func(text string, final bool) {
			sendToProgram(chat.SpeechResultMsg{Text: text, Final: final})
		},
		OnError: func(err error) {
			sendToProgram(chat.SpeechErrorMsg{Err: err})
		},
	})

	chatPane := chat.New(chat.Options{
		Client:  client,
		Config:  cfg,
		Session: session,
		Gate:    gate,
		History: history,
		Bus:     bus,
		Speech:  voice,
		Send:    sendToProgram,
		Logger:  logger,
	})

	app := newApp(cfg, logger, chatPane, viewerPane)

	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	programMu.Lock()
	programRef = p
	programMu.Unlock()

	var unsubscribe func()
	if viewerPane != nil {
		unsubscribe = viewer.Subscribe(bus, sendToProgram)
		defer unsubscribe()
	}

	watcher := watchConfig(cfgPath, logger)
	if watcher != nil {
		defer watcher.Close()
	}

	_, err := p.Run()
	return err
}

// openHistory opens the local session mirror. History is a convenience,
// not a requirement: failures degrade to a memory-only session.
func openHistory(logger *zap.Logger) *storage.History {
	path, err := storage.DefaultPath()
	if err != nil {
		logger.Warn("no home directory, history disabled", zap.Error(err))
		return nil
	}
	h, err := storage.Open(path)
	if err != nil {
		logger.Warn("failed to open history, continuing without", zap.Error(err))
		return nil
	}
	return h
}

// fetchInitialStatus reads the document's ingestion status once at
// startup, triggering the pipeline for a document the server has not
// started on yet.
func fetchInitialStatus(client *api.Client, docID string) (model.IngestStatus, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	rec, err := client.DocumentStatus(ctx, docID)
	if err != nil {
		return "", err
	}
	if rec.Status == model.IngestPending {
		if err := client.TriggerIngest(ctx, docID); err != nil {
			return "", err
		}
	}
	return rec.Status, nil
}

// watchConfig hot-reloads the config file and forwards changes into
// the program. Reload failures keep the running config.
func watchConfig(path string, logger *zap.Logger) *config.Watcher {
	if path == "" {
		return nil
	}
	w, err := config.NewWatcher(path, func(cfg *config.Config) {
		sendToProgram(ConfigReloadedMsg{Config: cfg})
	}, logger)
	if err != nil {
		logger.Warn("config watcher unavailable", zap.Error(err))
		return nil
	}
	return w
}

// seedSession restores the most recent mirrored conversation for the
// document so past turns show before the server lookup answers. The
// server's copy still wins once the lookup returns.
func seedSession(history *storage.History, docID string, logger *zap.Logger) *model.ChatSession {
	if history == nil || docID == "" {
		return model.NewSession(docID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	prior, err := history.SessionForDocument(ctx, docID)
	if err != nil {
		if !errors.Is(err, storage.ErrSessionNotFound) {
			logger.Warn("failed to restore session from history", zap.Error(err))
		}
		return model.NewSession(docID)
	}
	logger.Info("restored session from history",
		zap.String("session", prior.ID), zap.Int("messages", prior.Len()))
	return prior
}

// runHistoryCommand serves the offline history surface without
// starting the TUI: list stored sessions, or delete one.
func runHistoryCommand(list bool, forgetID string) error {
	path, err := storage.DefaultPath()
	if err != nil {
		return err
	}
	h, err := storage.Open(path)
	if err != nil {
		return err
	}
	defer h.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if forgetID != "" {
		if err := h.DeleteSession(ctx, forgetID); err != nil {
			return err
		}
		fmt.Printf("deleted session %s\n", forgetID)
		return nil
	}

	metas, err := h.ListSessions(ctx)
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		fmt.Println("no stored sessions")
		return nil
	}
	for _, meta := range metas {
		title := meta.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%s  %s  %3d messages  %s\n",
			meta.ID, util.PadRight(util.TruncateWidth(title, 30), 30),
			meta.MessageCount, meta.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
