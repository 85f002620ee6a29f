// Command mdpreview is the live markdown preview daemon. It renders a
// markdown file into a browser page, keeps the page's scroll position in
// sync with the editor cursor, and exposes a loopback control API editor
// plugins drive.
//
// Usage:
//
//	mdpreview -file README.md                 # preview with defaults
//	mdpreview -file README.md -addr :7806    # custom control API address
//	mdpreview -config mdpreview.yaml         # full configuration
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ReneLombard/MarkdownEditor2022/config"
	"github.com/ReneLombard/MarkdownEditor2022/preview"
	"github.com/ReneLombard/MarkdownEditor2022/render"
	"github.com/ReneLombard/MarkdownEditor2022/rodview"
	"github.com/ReneLombard/MarkdownEditor2022/server"
	"github.com/ReneLombard/MarkdownEditor2022/statestore"
)

func main() {
	filePath := flag.String("file", "", "markdown file to preview")
	configPath := flag.String("config", "", "path to mdpreview.yaml config file")
	addr := flag.String("addr", "", "control API listen address (overrides config)")
	headless := flag.Bool("headless", false, "run the browser headless")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	var level slog.Level
	switch *logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, *filePath, *configPath, *addr, *headless); err != nil {
		logger.Error("mdpreview: fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, filePath, configPath, addr string, headless bool) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if filePath != "" {
		cfg.File = filePath
	}
	if addr != "" {
		cfg.Listen = addr
	}
	if headless {
		cfg.Browser.Headless = true
	}
	if cfg.File == "" {
		return errors.New("no file to preview; use -file or the config's file key")
	}
	docPath, err := filepath.Abs(cfg.File)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", cfg.File, err)
	}

	source, err := os.ReadFile(docPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", docPath, err)
	}
	renderer := render.New()
	renderer.SetSource(source)

	var template string
	if cfg.Template != "" {
		data, err := os.ReadFile(cfg.Template)
		if err != nil {
			return fmt.Errorf("read template %s: %w", cfg.Template, err)
		}
		template = string(data)
	}

	surface, err := rodview.New(ctx, rodview.Config{
		RemoteURL: cfg.Browser.Remote,
		Headless:  cfg.Browser.Headless,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	runtime := config.NewRuntime(cfg)
	title := cfg.Title
	if title == "" {
		title = filepath.Base(docPath)
	}

	ctrl := preview.NewController(preview.ControllerConfig{
		View:       surface,
		Renderer:   renderer,
		Resolver:   renderer,
		ScrollSync: runtime.ScrollSyncEnabled,
		FileOpener: osOpener{},
		URLOpener:  osOpener{},
		Zoom:       surface,
		Template:   template,
		Title:      title,
		BaseDir:    filepath.Dir(docPath),
		Logger:     logger,
	})
	surface.SetListener(ctrl)

	var store *statestore.Store
	if cfg.StateDB != "" {
		store, err = statestore.Open(cfg.StateDB)
		if err != nil {
			logger.Warn("mdpreview: state store unavailable", "error", err)
		} else {
			defer store.Close()
			if pos, ok, err := store.Load(ctx, docPath); err != nil {
				logger.Warn("mdpreview: load scroll state", "error", err)
			} else if ok {
				ctrl.SeedScroll(pos.Percentage, pos.Line)
			}
		}
	}

	ctrl.Start(ctx)
	ctrl.SetZoom(cfg.Zoom)

	go func() {
		if err := watchFile(ctx, logger, docPath, func() {
			data, err := os.ReadFile(docPath)
			if err != nil {
				logger.Warn("mdpreview: re-read source", "error", err)
				return
			}
			renderer.SetSource(data)
			ctrl.OnDocumentChanged()
		}); err != nil {
			logger.Warn("mdpreview: file watch stopped", "error", err)
		}
	}()

	api := server.New(ctrl, runtime, surface, logger)
	httpSrv := &http.Server{Addr: cfg.Listen, Handler: api.Router()}
	go func() {
		logger.Info("mdpreview: control API listening", "addr", cfg.Listen)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("mdpreview: control API", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("mdpreview: API shutdown", "error", err)
	}

	if store != nil {
		state := ctrl.ScrollState()
		if err := store.Save(shutdownCtx, docPath, statestore.Position{
			Percentage: state.Percentage,
			Line:       state.CurrentLine,
		}); err != nil {
			logger.Warn("mdpreview: save scroll state", "error", err)
		}
	}
	ctrl.Dispose()
	return nil
}
