package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// printStructured renders v as JSON or YAML per the --output flag.
// Returns false when the caller should fall back to its table rendering.
func printStructured(v any) (bool, error) {
	switch outFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		return true, enc.Encode(v)
	case "table":
		return false, nil
	default:
		return false, fmt.Errorf("unknown output format %q (accepted: table, json, yaml)", outFormat)
	}
}

// newTable returns a tabwriter for aligned table output.
func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}
