package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/pflag"

	"github.com/ritzau/meetmap/pkg/config"
	"github.com/ritzau/meetmap/pkg/export"
	"github.com/ritzau/meetmap/pkg/logging"
	"github.com/ritzau/meetmap/pkg/model"
	"github.com/ritzau/meetmap/pkg/output"
	"github.com/ritzau/meetmap/pkg/render"
	"github.com/ritzau/meetmap/pkg/tui"
	"github.com/ritzau/meetmap/pkg/view"
	"github.com/ritzau/meetmap/pkg/watcher"
	"github.com/ritzau/meetmap/pkg/web"
)

// Debounce tuning for document watching: editors save in bursts of
// writes and renames, one reload per burst is plenty.
const (
	debounceQuiet   = 250 * time.Millisecond
	debounceMaxWait = time.Second
)

func main() {
	flags := pflag.NewFlagSet("meetmap", pflag.ExitOnError)
	flags.String("document", "", "Path to the mindmap document (JSON)")
	flags.Bool("serve", false, "Start the preview server instead of the TUI")
	flags.Int("port", 8080, "Preview server port")
	flags.Bool("watch", false, "Reload when the document changes on disk")
	flags.Bool("open", true, "Open the browser in serve mode")
	flags.String("export", "", "One-shot export: png, pdf, json, or all")
	flags.String("out", ".", "Directory for exported files")
	flags.String("log-file", "", "Write logs to a file instead of stderr")
	flags.String("verbosity", "", "Log level: trace, debug, info, warn, or error")
	flags.CountP("verbose", "v", "Increase log verbosity (-v debug, -vv trace)")
	flags.Float64("min-zoom", 0.25, "Lower zoom bound")
	flags.Float64("max-zoom", 4.0, "Upper zoom bound")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	// The document can also be given as the first positional argument
	if cfg.Document == "" && flags.NArg() > 0 {
		cfg.Document = flags.Arg(0)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := setupLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var runErr error
	switch cfg.Mode() {
	case "export":
		runErr = runExport(cfg)
	case "serve":
		runErr = runServe(cfg)
	default:
		runErr = runTUI(cfg)
	}
	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) error {
	logging.SetLevel(logLevel(cfg))
	if cfg.LogFile == "" {
		return nil
	}
	if _, err := logging.SetFile(cfg.LogFile); err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	return nil
}

// logLevel picks the log level: an explicit --verbosity wins, then
// repeated -v flags raise the level from the info default.
func logLevel(cfg *config.Config) slog.Level {
	switch cfg.Verbosity {
	case "trace":
		return logging.LevelTrace
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	switch {
	case cfg.VerboseCnt >= 2:
		return logging.LevelTrace
	case cfg.VerboseCnt == 1:
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// runExport loads the document, runs the pipeline once, and writes the
// requested formats. Failing formats do not stop the others.
func runExport(cfg *config.Config) error {
	if cfg.Document == "" {
		return fmt.Errorf("export needs a document path")
	}
	doc, err := model.Load(cfg.Document)
	if err != nil {
		return err
	}

	v := view.New()
	v.SetDocument(doc)
	if req := v.Rebuild(); req != nil {
		v.Apply(v.Execute(context.Background(), req))
	}
	vg, res := v.Current()
	if res == nil {
		return fmt.Errorf("layout produced no result")
	}
	scene := render.BuildScene(doc, vg, res, render.DefaultTheme())

	output.PrintDocumentReport(cfg.Document, doc, v.Diagnostics())

	if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	formats := []string{cfg.Export}
	if cfg.Export == "all" {
		formats = []string{"json", "png", "pdf"}
	}
	failures := 0
	for _, format := range formats {
		if err := writeExport(cfg, doc, scene, format); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s export: %v\n", format, err)
			failures++
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d exports failed", failures, len(formats))
	}
	return nil
}

func writeExport(cfg *config.Config, doc *model.Document, scene *render.Scene, format string) error {
	start := time.Now()

	var buf bytes.Buffer
	var err error
	switch format {
	case "json":
		err = export.JSON(doc, &buf)
	case "png":
		err = export.PNG(scene, &buf)
	case "pdf":
		err = export.PDF(scene, &buf)
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.OutDir, export.Filename(doc.Title(), format))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	output.PrintExportResult(path, int64(buf.Len()), time.Since(start))
	return nil
}

// runServe starts the preview server, then keeps feeding it document
// reloads while watching is on.
func runServe(cfg *config.Config) error {
	server := web.NewServer()

	if cfg.Document != "" {
		if doc, err := model.Load(cfg.Document); err != nil {
			logging.Warn("Initial document load failed", "error", err)
			server.NotifyLoadFailed(err.Error())
		} else {
			server.SetDocument(doc)
		}
	}

	url := fmt.Sprintf("http://localhost:%d", cfg.Port)
	fmt.Printf("Serving mindmap preview on %s\n", url)

	go func() {
		if err := server.Start(cfg.Port); err != nil {
			logging.Fatal("Server failed", "error", err)
		}
	}()

	if cfg.OpenBrowser {
		// Give the listener a moment before pointing a browser at it
		time.Sleep(500 * time.Millisecond)
		openBrowser(url)
	}

	if cfg.Watch && cfg.Document != "" {
		return watchServe(server, cfg.Document)
	}
	select {}
}

// watchServe blocks, pushing debounced document changes into the server
func watchServe(server *web.Server, document string) error {
	ctx := context.Background()

	fw, err := watcher.NewFileWatcher(document)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}
	defer fw.Stop()

	debouncer := watcher.NewDebouncer(fw.Events(), debounceQuiet, debounceMaxWait)
	debouncer.Start(ctx)

	for event := range debouncer.Output() {
		plan := watcher.PlanReload(event)
		if !plan.Reload {
			server.NotifyRemoved(plan.Reason)
			continue
		}
		doc, err := model.Load(document)
		if err != nil {
			logging.Warn("Reload failed", "path", document, "error", err)
			server.NotifyLoadFailed(err.Error())
			continue
		}
		server.SetDocument(doc)
	}
	return nil
}

func runTUI(cfg *config.Config) error {
	var doc *model.Document
	if cfg.Document != "" {
		loaded, err := model.Load(cfg.Document)
		if err != nil {
			return err
		}
		doc = loaded
	}

	opts := tui.Options{
		Document:     doc,
		DocumentPath: cfg.Document,
		OutDir:       cfg.OutDir,
		MinZoom:      cfg.MinZoom,
		MaxZoom:      cfg.MaxZoom,
	}

	if cfg.Watch && cfg.Document != "" {
		ctx := context.Background()
		fw, err := watcher.NewFileWatcher(cfg.Document)
		if err != nil {
			return err
		}
		if err := fw.Start(ctx); err != nil {
			return err
		}
		defer fw.Stop()

		debouncer := watcher.NewDebouncer(fw.Events(), debounceQuiet, debounceMaxWait)
		debouncer.Start(ctx)
		opts.Changes = debouncer.Output()
	}

	return tui.Run(opts)
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "linux":
		cmd = "xdg-open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		logging.Warn("Cannot open browser on this platform", "platform", runtime.GOOS)
		return
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		logging.Warn("Failed to open browser", "error", err)
	}
}
