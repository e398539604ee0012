// Command genartifacts writes the reference artifact bundle (metadata,
// encoders, scaler and model JSON) used for local runs and tests.
//
// Usage:
//
//	go run ./cmd/genartifacts -out data/artifacts
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/couchcryptid/lfb-response-predictor/internal/adapter/artifact"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/artifacts", "output directory for the bundle")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	files := artifact.DefaultFiles()
	bundle := artifact.ReferenceBundle()
	if err := artifact.Write(*out, files, bundle); err != nil {
		return err
	}

	// Load it back so a broken bundle never lands on disk unnoticed.
	if _, err := artifact.Load(*out, files); err != nil {
		return fmt.Errorf("reload written bundle: %w", err)
	}

	fmt.Printf("Wrote %d model columns, %d trees to %s\n",
		len(bundle.Metadata.ModelColumns), len(bundle.Model.Trees), *out)
	return nil
}
