package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/dolibarr-client/internal/constants"
	"github.com/fivetwenty-io/dolibarr-client/pkg/doli"
)

// Columns shown for each resource in table output.
var (
	invoiceColumns    = []string{"id", "ref", "socid", "total_ttc", "statut"}
	thirdPartyColumns = []string{"id", "name", "email", "client"}
)

// parseParams turns repeated key=value flags into query parameters.
// Repeating a key sends it several times.
func parseParams(pairs []string) (doli.Params, error) {
	params := doli.Params{}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidParam, pair)
		}

		switch existing := params[key].(type) {
		case nil:
			params[key] = value
		case string:
			params[key] = []string{existing, value}
		case []string:
			params[key] = append(existing, value)
		}
	}

	return params, nil
}

// parseBody decodes a JSON object given on the command line.
func parseBody(body string) (map[string]interface{}, error) {
	if body == "" {
		return nil, nil
	}

	var out map[string]interface{}

	err := json.Unmarshal([]byte(body), &out)
	if err != nil || out == nil {
		return nil, fmt.Errorf("%w: %q", constants.ErrInvalidBody, body)
	}

	return out, nil
}

func checkOutputFormat(format string) error {
	switch format {
	case constants.FormatTable, constants.FormatJSON, constants.FormatYAML:
		return nil
	default:
		return fmt.Errorf("%w: %q", constants.ErrUnknownOutputFormat, format)
	}
}

// renderResponse writes resp in format. Table output expects a list of
// records and shows columns, or every field when columns is empty; other
// payloads fall back to JSON.
func renderResponse(w io.Writer, format string, resp *doli.Response, columns []string, noun string) error {
	if len(resp.Body) == 0 {
		return nil
	}

	var payload interface{}

	err := resp.Decode(&payload)
	if err != nil {
		return err
	}

	switch format {
	case constants.FormatJSON:
		return StandardJSONRenderer(w, payload)
	case constants.FormatYAML:
		return StandardYAMLRenderer(w, payload)
	}

	records, err := resp.Records()
	if err != nil {
		return StandardJSONRenderer(w, payload)
	}

	return renderRecordsTable(w, records, columns, noun)
}

func renderRecordsTable(w io.Writer, records []map[string]interface{}, columns []string, noun string) error {
	if len(records) == 0 {
		_, _ = fmt.Fprintf(w, "No %s found\n", noun)

		return nil
	}

	if len(columns) == 0 {
		columns = recordKeys(records)
	}

	header := make([]any, len(columns))
	for i, column := range columns {
		header[i] = column
	}

	table := tablewriter.NewWriter(w)
	table.Header(header...)

	for _, record := range records {
		row := make([]string, len(columns))
		for i, column := range columns {
			row[i] = cellValue(record[column])
		}

		err := table.Append(row)
		if err != nil {
			return fmt.Errorf("failed to append table row: %w", err)
		}
	}

	err := table.Render()
	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// recordKeys returns the sorted union of the records' fields.
func recordKeys(records []map[string]interface{}) []string {
	seen := map[string]bool{}

	var keys []string

	for _, record := range records {
		for key := range record {
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	}

	sort.Strings(keys)

	return keys
}

func cellValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return constants.NotAvailable
	case map[string]interface{}, []interface{}:
		encoded, err := json.Marshal(v)
		if err != nil {
			return constants.NotAvailable
		}

		return string(encoded)
	default:
		return cast.ToString(v)
	}
}

// StandardJSONRenderer writes indented JSON.
func StandardJSONRenderer[T any](w io.Writer, data T) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", strings.Repeat(" ", constants.JSONIndentSize))

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer writes YAML.
func StandardYAMLRenderer[T any](w io.Writer, data T) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(constants.JSONIndentSize)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return encoder.Close()
}

func maskSecret(secret string) string {
	if secret == "" {
		return constants.NotAvailable
	}

	return constants.MaskedSecret
}
