// Command schema regenerates the JSON schema embedded by pkg/config for
// soft validation of user config files. Run via go generate.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/floe-dev/floectl/pkg/config"
)

type options struct {
	Output string `short:"o" long:"output" default:"schema.json" description:"schema output file"`
}

func main() {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		os.Exit(1)
	}
	if err := run(opts.Output); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	fmt.Printf("schema written to %s\n", opts.Output)
}

func run(output string) error {
	schema, err := config.GenerateSchema()
	if err != nil {
		return fmt.Errorf("reflect config schema: %w", err)
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	if err := os.WriteFile(output, data, 0o600); err != nil { //nolint:gosec // schema file is not sensitive
		return fmt.Errorf("write %s: %w", output, err)
	}
	return nil
}
