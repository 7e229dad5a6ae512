package main

import (
	"crypto/tls"
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/dragmap/internal/catalog"
	"github.com/woozymasta/dragmap/internal/config"
	"github.com/woozymasta/dragmap/internal/logger"
	"github.com/woozymasta/dragmap/internal/processor"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile   string `short:"c" long:"config"        env:"CONFIG_FILE"  description:"Path to configuration file" default:"config.yaml"`
	Concurrency  int    `short:"p" long:"concurrency"   env:"CONCURRENCY"  description:"Preview rendering workers" default:"8"`
	PreviewSize  int    `short:"s" long:"preview-size"  env:"PREVIEW_SIZE" description:"Override preview size in pixels"`
	CatalogOnly  bool   `short:"g" long:"catalog-only"  description:"Download the catalog only"`
	PreviewsOnly bool   `short:"t" long:"previews-only" description:"Render previews only"`
	Force        bool   `short:"f" long:"force"         description:"Force overwrite of existing files"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	processCatalog := true
	processPreviews := true
	if opts.CatalogOnly && !opts.PreviewsOnly {
		processPreviews = false
	} else if opts.PreviewsOnly && !opts.CatalogOnly {
		processCatalog = false
	}

	if opts.Concurrency <= 0 {
		opts.Concurrency = 8
	}
	if opts.PreviewSize > 0 {
		cfg.PreviewSize = opts.PreviewSize
	}

	client := &http.Client{
		Transport: &http.Transport{
			TLSNextProto: make(map[string]func(string, *tls.Conn) http.RoundTripper),
		},
		Timeout: 60 * time.Second,
	}

	log.Info().
		Str("catalog", cfg.Catalog).
		Bool("catalog_step", processCatalog).
		Bool("previews_step", processPreviews).
		Msg("Starting loader")

	if processCatalog {
		if err := processor.ProcessCatalog(client, cfg, opts.Force); err != nil {
			log.Fatal().Err(err).Msg("Failed to process catalog")
		}
	}

	if processPreviews {
		cat, err := catalog.Load(cfg.Catalog)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.Catalog).Msg("Failed to load catalog")
		}

		if _, err := processor.ProcessPreviews(cat, cfg.PreviewDir, opts.Concurrency, cfg.PreviewSize, opts.Force); err != nil {
			log.Fatal().Err(err).Msg("Failed to render previews")
		}
	}

	log.Info().Msg("Loader finished successfully")
}
