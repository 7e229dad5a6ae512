package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/dragmap/internal/catalog"
	"github.com/woozymasta/dragmap/internal/geo"
	"github.com/woozymasta/dragmap/internal/logger"
	"github.com/woozymasta/dragmap/internal/session"

	"github.com/jessevdk/go-flags"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input       string     `short:"i" long:"in"           description:"Input GeoJSON FeatureCollection. Reads from stdin if empty"`
	Output      string     `short:"o" long:"out"          description:"Output file path. Writes to stdout if empty"`
	Format      string     `short:"f" long:"format"       description:"Output format" choice:"json" choice:"yaml" default:"json"`
	IDs         []string   `short:"I" long:"id"           description:"Only move features with these ids (all if empty)"`
	From        geo.LatLng `short:"F" long:"from"         description:"Drag start as lat,lng" required:"true"`
	To          geo.LatLng `short:"T" long:"to"           description:"Drag end as lat,lng" required:"true"`
	Snap        bool       `short:"S" long:"snap"         description:"Keep latitude unchanged"`
	Scaling     bool       `short:"s" long:"scaling"      description:"Stretch longitudes with latitude"`
	MaxLatitude float64    `short:"m" long:"max-latitude" description:"Latitude clamp for scaling" default:"85"`
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

	// Read Input
	var inputData []byte
	var err error

	if opts.Input != "" {
		inputData, err = os.ReadFile(opts.Input)
	} else {
		inputData, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read input")
	}

	cat, err := catalog.Parse(inputData)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse input")
	}

	fc, moved := shift(cat, opts)

	outputData, err := marshal(fc, opts.Format)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to marshal output")
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, outputData, 0644); err != nil {
			log.Fatal().Err(err).Str("path", opts.Output).Msg("Failed to write output")
		}
		log.Info().
			Int("features", cat.Len()).
			Int("moved", moved).
			Str("path", opts.Output).
			Str("format", opts.Format).
			Msg("Features shifted")
	} else {
		fmt.Println(string(outputData))
	}
}

// shift applies the drag to the selected features, leaving the rest in place.
func shift(cat *catalog.Catalog, opts Options) (*geojson.FeatureCollection, int) {
	dragOpts := session.Options{
		Scaler:         geo.Scaler{MaxLatitude: opts.MaxLatitude},
		Scaling:        opts.Scaling,
		SnapToLatitude: opts.Snap,
	}

	only := make(map[string]bool, len(opts.IDs))
	for _, id := range opts.IDs {
		only[id] = true
	}

	fc := geojson.NewFeatureCollection()
	moved := 0
	for _, f := range cat.Features() {
		g := f.Geometry
		if len(only) == 0 || only[f.ID] {
			g = session.Displace(g, opts.From, opts.To, dragOpts)
			moved++
		}
		fc.Append(f.GeoJSONWith(g))
	}

	return fc, moved
}

func marshal(fc *geojson.FeatureCollection, format string) ([]byte, error) {
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil || format != "yaml" {
		return data, err
	}

	// go through a generic tree so yaml sees the GeoJSON layout
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return yaml.Marshal(tree)
}
