package main

import (
	"fmt"
	"log"
	"os"

	"github.com/careerdeck/jobfeed/pkg/config"
)

func main() {
	outputPath := "schema.json"
	if len(os.Args) > 1 {
		outputPath = os.Args[1]
	}

	if err := writeSchema(outputPath); err != nil {
		log.Fatalf("failed to write schema: %v", err)
	}

	fmt.Printf("Schema generated successfully at %s\n", outputPath)
}

// writeSchema generates the config schema and writes it to path
func writeSchema(path string) error {
	data, err := config.GenerateSchema()
	if err != nil {
		return fmt.Errorf("generate schema: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil { //nolint:gosec // schema file is not sensitive
		return fmt.Errorf("write schema file: %w", err)
	}
	return nil
}
