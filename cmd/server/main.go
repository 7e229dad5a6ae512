package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/dragmap/internal/catalog"
	"github.com/woozymasta/dragmap/internal/config"
	"github.com/woozymasta/dragmap/internal/logger"
	"github.com/woozymasta/dragmap/internal/server"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile string `short:"c" long:"config"  env:"CONFIG_FILE"    description:"Path to configuration file" default:"config.yaml"`
	Catalog    string `short:"C" long:"catalog" env:"CATALOG_FILE"   description:"Override path to the countries GeoJSON"`
	Addr       string `short:"a" long:"addr"    env:"LISTEN_ADDRESS" description:"Address to listen on"       default:"0.0.0.0"`
	Port       int    `short:"p" long:"port"    env:"LISTEN_PORT"    description:"Port to listen on"          default:"8080"`
	Scaling    string `short:"s" long:"scaling" env:"DRAG_SCALING"   description:"Override latitude scaling of dragged features" choice:"on" choice:"off"`
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

	// Setup Logging
	opts.Logger.Setup()

	// Load Config
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if opts.Catalog != "" {
		cfg.Catalog = opts.Catalog
	}
	if opts.Scaling != "" {
		cfg.Drag.Scaling = opts.Scaling == "on"
	}

	cat, err := catalog.Load(cfg.Catalog)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Catalog).Msg("Failed to load catalog")
	}

	srvCtx := server.NewServerContext(cfg, cat)

	listenAddr := fmt.Sprintf("%s:%d", opts.Addr, opts.Port)
	srv := &http.Server{
		Addr:              listenAddr,
		Handler:           srvCtx.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().
		Str("addr", listenAddr).
		Int("features", cat.Len()).
		Bool("scaling", cfg.Drag.Scaling).
		Msg("Web server started")

	if err := srv.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}
