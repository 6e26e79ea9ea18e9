// Command scanfield runs a single website scan from the terminal, or serves
// the scan gateway with -serve.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peternemser-ui/font-scanner-sub013/internal/analyzers"
	"github.com/peternemser-ui/font-scanner-sub013/internal/apiclient"
	"github.com/peternemser-ui/font-scanner-sub013/internal/cli"
	"github.com/peternemser-ui/font-scanner-sub013/internal/config"
	"github.com/peternemser-ui/font-scanner-sub013/internal/export"
	"github.com/peternemser-ui/font-scanner-sub013/internal/interfaces"
	"github.com/peternemser-ui/font-scanner-sub013/internal/lifecycle"
	"github.com/peternemser-ui/font-scanner-sub013/internal/logging"
	"github.com/peternemser-ui/font-scanner-sub013/internal/model"
	"github.com/peternemser-ui/font-scanner-sub013/internal/render"
	"github.com/peternemser-ui/font-scanner-sub013/internal/server"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	a, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return err
	}
	if a.Timeout > 0 {
		cfg.Timeout = config.DurationFrom(a.Timeout)
	}

	// Logs go to stderr so report output on stdout stays clean.
	logger := logging.NewLoggerTo(os.Stderr, logging.ParseLevel(cfg.LogLevel), "cli")

	analyzers.RegisterBuiltins()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.Serve {
		return serve(ctx, cfg, logger)
	}
	return scan(ctx, a, cfg, logger)
}

func serve(ctx context.Context, cfg *config.Config, logger interfaces.Logger) error {
	srv, err := server.NewServer(&server.Config{
		Addr:            cfg.Addr,
		AnalyzerBaseURL: cfg.AnalyzerBaseURL,
		Timeout:         cfg.Timeout.Duration,
		StepInterval:    cfg.StepInterval.Duration,
		StorageDir:      cfg.StorageDir,
		Paywall:         cfg.Paywall,
		Logger:          logger.With(interfaces.F("component", "server")),
	})
	if err != nil {
		return err
	}
	defer srv.Close()

	httpSrv := srv.HTTPServer()
	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	logger.Info("gateway listening", interfaces.F("addr", cfg.Addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}

func scan(ctx context.Context, a *cli.Args, cfg *config.Config, logger interfaces.Logger) error {
	def, err := analyzers.Get(a.Analyzer)
	if err != nil {
		return err
	}

	var inner interfaces.Renderer
	switch a.Output {
	case "json":
		inner = &render.JSONRenderer{Out: os.Stdout, Indent: true}
	default:
		inner = &render.TerminalRenderer{Out: os.Stdout}
	}

	// Keep the rendered report around for -export.
	var captured *model.ReportContext
	renderer := interfaces.RendererFunc(func(rc *model.ReportContext) error {
		captured = rc
		return inner.Render(rc)
	})

	plan := def.Plan(def.DefaultOptions)
	ctrl, err := lifecycle.New(lifecycle.Config{
		Definition:   def,
		Client:       apiclient.New(cfg.AnalyzerBaseURL, cfg.Timeout.Duration, logger),
		Renderer:     renderer,
		Sink:         &render.StepPrinter{Out: os.Stderr, Total: plan.Len()},
		Logger:       logger,
		StepInterval: cfg.StepInterval.Duration,
	})
	if err != nil {
		return err
	}

	_, err = ctrl.Analyze(ctx, &model.ScanRequest{URL: a.URL})
	if err != nil {
		return err
	}

	if a.Export != "" && captured != nil {
		return writeExport(a.Export, captured)
	}
	return nil
}

func writeExport(path string, rc *model.ReportContext) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if strings.HasSuffix(path, ".csv") {
		return export.CSV(rc, f)
	}
	return export.PDF(rc, f)
}
