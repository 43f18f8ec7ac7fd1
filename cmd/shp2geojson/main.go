package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"

	"github.com/LyMot/geogee"
)

type Options struct {
	Input  string `short:"i" long:"in" description:"Input shapefile path (.shp)" required:"true"`
	Output string `short:"o" long:"out" description:"Output file path. Writes to stdout if empty"`
	Format string `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" default:"json"`
	Pretty bool   `short:"P" long:"pretty" description:"Indent JSON output"`
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

	// Compact JSON to a file is exactly what the converter writes itself
	if opts.Format == "json" && !opts.Pretty && opts.Output != "" {
		fc, err := geogee.ShapefileToGeoJSON(opts.Input, opts.Output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error converting shapefile: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Successfully converted %d features to %s\n", len(fc.Features), opts.Output)
		return
	}

	fc, err := geogee.ShapefileToGeoJSON(opts.Input, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error converting shapefile: %v\n", err)
		os.Exit(1)
	}

	var outputData []byte
	switch {
	case opts.Format == "yaml":
		// round-trip through JSON so the YAML mirrors the GeoJSON encoding
		var jsonData []byte
		var generic any
		jsonData, err = json.Marshal(fc)
		if err == nil {
			err = json.Unmarshal(jsonData, &generic)
		}
		if err == nil {
			outputData, err = yaml.Marshal(generic)
		}

	case opts.Pretty:
		outputData, err = json.MarshalIndent(fc, "", "  ")

	default:
		outputData, err = json.Marshal(fc)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, outputData, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Successfully converted %d features to %s (format: %s)\n",
			len(fc.Features), opts.Output, opts.Format)
	} else {
		fmt.Println(string(outputData))
	}
}
