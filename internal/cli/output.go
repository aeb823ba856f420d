package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/therealgamblelab/gln-setup/internal/errors"
)

// writeFormatted encodes v as JSON or YAML.
func writeFormatted(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Unknown output format '%s'", format),
			"Use table, json or yaml")
	}
}
