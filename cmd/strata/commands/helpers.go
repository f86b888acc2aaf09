package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"github.com/strata-io/strata-client/internal/constants"
	"github.com/strata-io/strata-client/pkg/strata"
	"gopkg.in/yaml.v3"
)

// Common static errors used throughout the commands package.
var (
	ErrInvalidLabelFormat   = errors.New("invalid label format, expected key=value")
	ErrClusterNameRequired  = errors.New("cluster name is required")
	ErrTemplateIDRequired   = errors.New("template ID is required")
	ErrPolicyIDRequired     = errors.New("policy ID is required")
	ErrTemplateFileRequired = errors.New("a template file is required (--from-file)")
)

// renderEncoded writes a value as indented JSON or YAML to stdout.
func renderEncoded(value interface{}, format string) error {
	switch format {
	case constants.FormatJSON:
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")

		err := encoder.Encode(value)
		if err != nil {
			return fmt.Errorf("encoding to JSON: %w", err)
		}

		return nil
	case constants.FormatYAML:
		encoder := yaml.NewEncoder(os.Stdout)

		err := encoder.Encode(value)
		if err != nil {
			return fmt.Errorf("encoding to YAML: %w", err)
		}

		return nil
	default:
		return nil
	}
}

// isStructuredOutput reports whether the selected format is JSON or YAML.
func isStructuredOutput() (string, bool) {
	output := viper.GetString("output")

	return output, output == constants.FormatJSON || output == constants.FormatYAML
}

// formatTime formats a timestamp for table output.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return constants.NotAvailable
	}

	return t.Format("2006-01-02 15:04:05")
}

// formatValue substitutes N/A for empty table cells.
func formatValue(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}

// buildListParams assembles query parameters from common list flags.
func buildListParams(pageSize int, filter, labelSelector string) *strata.QueryParams {
	params := strata.NewQueryParams()

	if pageSize > 0 {
		params.WithPageSize(pageSize)
	}

	if filter != "" {
		params.WithFilter(filter)
	}

	if labelSelector != "" {
		params.WithLabelSelector(labelSelector)
	}

	return params
}

// reportOperation prints the operation reference for an async mutation.
func reportOperation(operation *strata.Operation, action string) {
	fmt.Printf("%s... (operation: %s)\n", action, operation.Name)
	fmt.Printf("Monitor with: strata operations get %s\n", operation.Name)
}
