// Command svdoc generates Markdown documentation from the doc blocks of
// SystemVerilog sources.
//
// Usage:
//
//	svdoc [flags] [generate|index|html|serve]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/svdoc/internal/api"
	"github.com/dgallion1/svdoc/internal/config"
	"github.com/dgallion1/svdoc/internal/gitinfo"
	"github.com/dgallion1/svdoc/internal/index"
	"github.com/dgallion1/svdoc/internal/pipeline"
	"github.com/dgallion1/svdoc/internal/render"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (overrides SVDOC_CONFIG)")
		srcDir     = flag.String("src", "", "source directory")
		outDir     = flag.String("out", "", "output directory")
		workers    = flag.Int("workers", 0, "parse workers")
		pairing    = flag.String("pairing", "", "block pairing: nearest or positional")
		noHTML     = flag.Bool("no-html", false, "skip HTML conversion")
		withDOCX   = flag.Bool("docx", false, "also write a .docx per definition")
		watch      = flag.Bool("watch", false, "regenerate on source changes (generate, serve)")
		port       = flag.String("port", "", "preview server port")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: svdoc [flags] [generate|index|html|serve]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *configPath != "" {
		os.Setenv("SVDOC_CONFIG", *configPath)
	}
	cfg, err := config.Load()
	if err != nil {
		fatal(slog.Default(), "failed to load config", err)
	}
	if *srcDir != "" {
		cfg.SrcDir = *srcDir
	}
	if *outDir != "" {
		cfg.OutDir = *outDir
	}
	if *workers > 0 {
		cfg.Workers = *workers
	}
	if *pairing != "" {
		cfg.Pairing = *pairing
	}
	if *noHTML {
		cfg.HTML = false
	}
	if *withDOCX {
		cfg.DOCX = true
	}
	if *port != "" {
		cfg.Port = *port
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		fatal(slog.Default(), "invalid configuration", err)
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	if err := cfg.Validate(); err != nil {
		fatal(log, "invalid configuration", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gen := pipeline.NewGenerator(cfg, resolveRepo(ctx, cfg), log)

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "generate"
	}
	switch cmd {
	case "generate":
		err = generate(ctx, gen, log, *watch)
	case "index":
		err = index.WriteFile(gen.ManifestPath(), gen.IndexPath(), gen.IndexOptions())
		if err == nil {
			log.Info("index written", "path", gen.IndexPath())
		}
	case "html":
		var n int
		n, err = pipeline.ConvertTree(ctx, cfg.OutDir, render.NewHTMLRenderer())
		if err == nil {
			log.Info("html written", "pages", n)
		}
	case "serve":
		err = serve(ctx, gen, log, cfg, *watch)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(log, cmd+" failed", err)
	}
}

// resolveRepo uses the configured repository, filling gaps from git.
func resolveRepo(ctx context.Context, cfg config.Config) gitinfo.Repo {
	repo := gitinfo.Repo{URL: cfg.RepoURL, Branch: cfg.Branch}
	if repo.URL != "" && repo.Branch != "" {
		return repo
	}
	found := gitinfo.Resolve(ctx, ".")
	if repo.URL == "" {
		repo.URL = found.URL
	}
	if repo.Branch == "" {
		repo.Branch = found.Branch
	}
	return repo
}

func generate(ctx context.Context, gen *pipeline.Generator, log *slog.Logger, watch bool) error {
	if _, err := gen.Run(ctx); err != nil {
		return err
	}
	if !watch {
		return nil
	}
	log.Info("watching for changes")
	return gen.Watch(ctx, nil)
}

func serve(ctx context.Context, gen *pipeline.Generator, log *slog.Logger, cfg config.Config, watch bool) error {
	if watch {
		go func() {
			if _, err := gen.Run(ctx); err != nil {
				log.Error("initial run failed", "error", err)
			}
			if err := gen.Watch(ctx, nil); err != nil {
				log.Error("watch stopped", "error", err)
			}
		}()
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      api.NewServer(gen, log, cfg),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		<-ctx.Done()
		log.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting svdoc", "port", cfg.Port, "out_dir", cfg.OutDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func fatal(log *slog.Logger, msg string, err error) {
	log.Error(msg, "error", err)
	os.Exit(1)
}
