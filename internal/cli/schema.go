package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/NikitaCOEUR/cmdtree/internal/config"
)

// Schema displays or exports the JSON Schema for grammar files
func Schema(outputPath string, out io.Writer) error {
	schemaJSON, err := config.GetSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	// If output path is provided, write to file
	if outputPath != "" {
		if err := os.WriteFile(outputPath, schemaJSON, 0o644); err != nil {
			return fmt.Errorf("failed to write schema to %s: %w", outputPath, err)
		}
		fmt.Fprintf(out, "JSON Schema written to: %s\n", outputPath)
		return nil
	}

	// Otherwise, print to out
	fmt.Fprintln(out, string(schemaJSON))
	return nil
}
