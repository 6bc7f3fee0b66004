package batch

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// FormatText is the default tab-separated output format.
	FormatText = "text"
	// FormatJSON renders the full result objects as indented JSON.
	FormatJSON = "json"
	// FormatYAML renders the full result objects as YAML.
	FormatYAML = "yaml"
)

// ValidFormats lists the supported output formats.
func ValidFormats() []string {
	return []string{FormatText, FormatJSON, FormatYAML}
}

// formatBatchResults formats the batch results in the specified format.
func formatBatchResults(results []FileResult, format string, precision int) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(results)
	case FormatYAML:
		return formatYAML(results)
	default: // text
		return formatText(results, precision), nil
	}
}

// formatJSON formats results as JSON.
func formatJSON(results []FileResult) (string, error) {
	bts, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(bts) + "\n", nil
}

// formatYAML formats results as YAML.
func formatYAML(results []FileResult) (string, error) {
	bts, err := yaml.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return string(bts), nil
}

// formatText formats results as plain text, one line per file.
func formatText(results []FileResult, precision int) string {
	var output strings.Builder
	for _, r := range results {
		if r.Error != "" {
			fmt.Fprintf(&output, "%s:\terror: %s\n", r.File, r.Error)
			continue
		}
		fmt.Fprintf(&output, "%s:\t%q\t%.*f\n", r.File, r.Text, precision, r.Score)
	}
	return output.String()
}
