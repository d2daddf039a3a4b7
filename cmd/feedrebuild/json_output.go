package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// writeJSON prints v indented on stdout. Feed URLs keep their '&' unescaped.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
