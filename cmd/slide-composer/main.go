// cmd/slide-composer/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"slide-composer/internal/common/config"
	"slide-composer/internal/common/logger"
	"slide-composer/internal/common/observability"
	"slide-composer/internal/composer/engine"
	"slide-composer/internal/composer/imageres"
	"slide-composer/internal/models"
	"slide-composer/internal/store"
)

type options struct {
	configPath   string
	recordsPath  string
	imagesDir    string
	templatePath string
	skeletonPath string
	format       string
	title        string
	outputDir    string
	logLevel     string
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to a config file (default: configs/config.yaml when present)")
	flag.StringVar(&opts.recordsPath, "records", "", "Slide records JSON: an array or an object with a slides array (required)")
	flag.StringVar(&opts.imagesDir, "images", "", "Directory of images, numbered img_01, img_02... in name order")
	flag.StringVar(&opts.templatePath, "template", "", "Template definition JSON (overrides config)")
	flag.StringVar(&opts.skeletonPath, "skeleton", "", "Deck skeleton JSON; enables skeleton mode (overrides config)")
	flag.StringVar(&opts.format, "format", "", "Output format: markup, deck or both (overrides config)")
	flag.StringVar(&opts.title, "title", "", "Document title for markup output")
	flag.StringVar(&opts.outputDir, "out", "", "Output directory for the file store (overrides config)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (overrides config)")
	flag.Parse()

	if opts.recordsPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -records is required.")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summaries, err := run(ctx, cfg, opts, log)
	if err != nil {
		zapLog.Error("composition failed", zap.Error(err))
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summaries); err != nil {
		zapLog.Error("write summary failed", zap.Error(err))
		os.Exit(1)
	}

	for _, s := range summaries {
		if s.Status == "failed" {
			os.Exit(3)
		}
	}
}

func loadConfig(opts options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFromFile(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if opts.templatePath != "" {
		cfg.Composer.TemplatePath = opts.templatePath
	}
	if opts.skeletonPath != "" {
		cfg.Composer.SkeletonPath = opts.skeletonPath
	}
	if opts.format != "" {
		cfg.Composer.OutputFormat = opts.format
	}
	if opts.outputDir != "" {
		cfg.Store.Kind = "file"
		cfg.Store.OutputDir = opts.outputDir
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	return cfg, nil
}

type summary struct {
	*engine.Result
	Status string   `json:"status"`
	Keys   []string `json:"keys"`
}

func run(ctx context.Context, cfg *config.Config, opts options, log logger.Logger) ([]summary, error) {
	data, err := os.ReadFile(opts.recordsPath)
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	presentation, err := models.ParsePresentation(data)
	if err != nil {
		return nil, err
	}

	var images models.ImageMetadata
	if opts.imagesDir != "" {
		images, err = imageres.ScanDirectory(opts.imagesDir)
		if err != nil {
			return nil, err
		}
		log.Info("images indexed", map[string]interface{}{
			"dir":   opts.imagesDir,
			"count": len(images),
		})
	}

	eng, err := engine.FromConfig(cfg.Composer, observability.NewNoop(), log)
	if err != nil {
		return nil, err
	}

	sink, err := store.New(cfg.Store, cfg.Database.Redis)
	if err != nil {
		return nil, err
	}
	if rs, ok := sink.(*store.RedisSink); ok {
		defer rs.Close()
	}

	title := opts.title
	if title == "" {
		title = presentation.Title
	}
	in := &engine.Input{Records: presentation.Slides, Images: images, Title: title}

	var backends []func(context.Context, *engine.Input) (*engine.Result, error)
	switch cfg.Composer.OutputFormat {
	case "markup":
		backends = append(backends, eng.ComposeMarkup)
	case "deck":
		backends = append(backends, eng.ComposeDeck)
	case "both":
		backends = append(backends, eng.ComposeMarkup, eng.ComposeDeck)
	default:
		return nil, fmt.Errorf("unknown output format %q", cfg.Composer.OutputFormat)
	}

	summaries := make([]summary, 0, len(backends))
	for _, compose := range backends {
		res, err := compose(ctx, in)
		if err != nil {
			return summaries, err
		}
		keys, err := store.Persist(ctx, sink, res)
		if err != nil {
			return summaries, err
		}
		summaries = append(summaries, summary{Result: res, Status: res.Status(), Keys: keys})
	}
	return summaries, nil
}
