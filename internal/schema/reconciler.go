package schema

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/transitstack/exosift/internal/models"
)

// Result holds the outcome of reconciling one input file against the feature
// contract.
type Result struct {
	Records  []models.Record
	Warnings []string
	// Missing lists contract features absent from the input header, in
	// canonical order.
	Missing []string
}

// Validate reports the fatal missing-column condition. Zero-filled features
// are tolerated during parsing but must fail validation before any
// classification step.
func (r *Result) Validate() error {
	if len(r.Missing) > 0 {
		return &models.MissingColumnsError{Columns: append([]string(nil), r.Missing...)}
	}
	return nil
}

// Reconciler parses delimiter-separated text into typed records ordered by
// the canonical feature contract.
type Reconciler struct {
	logger *slog.Logger
}

// NewReconciler constructs a reconciler.
func NewReconciler(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{logger: logger}
}

// Parse reads comma-separated text with a mandatory header row and produces
// records in canonical feature order, whatever the input column order was.
// Tolerated irregularities: rows with the wrong token count are dropped,
// unparseable numerics are coerced to 0, and contract features missing from
// the header are zero-filled with a warning. An input with no data rows is a
// fatal ingestion error.
func (r *Reconciler) Parse(rawText string) (*Result, error) {
	reader := csv.NewReader(strings.NewReader(rawText))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, &models.IngestionError{Reason: "no header row found"}
	}
	for i, token := range header {
		header[i] = cleanToken(token)
	}

	// Map header position -> contract slot, and spot the ground-truth column.
	positions := make(map[string]int, len(header))
	for i, name := range header {
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	truthField := ""
	truthPos := -1
	for _, alias := range models.GroundTruthAliases {
		if pos, ok := positions[alias]; ok {
			truthField = alias
			truthPos = pos
			break
		}
	}

	result := &Result{}
	for _, feature := range models.FeatureOrder {
		if _, ok := positions[feature]; !ok {
			result.Missing = append(result.Missing, feature)
			result.Warnings = append(result.Warnings, fmt.Sprintf("feature %s not in input; filled with 0", feature))
		}
	}

	rowNum := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d dropped: %v", rowNum, err))
			continue
		}
		if len(row) != len(header) {
			result.Warnings = append(result.Warnings, fmt.Sprintf("row %d dropped: expected %d columns, got %d", rowNum, len(header), len(row)))
			continue
		}

		rec := models.Record{Row: len(result.Records)}
		for _, feature := range models.FeatureOrder {
			pos, ok := positions[feature]
			if !ok {
				continue // zero-filled
			}
			rec.SetFeature(feature, parseValue(row[pos]))
		}
		if truthPos >= 0 {
			rec.TruthField = truthField
			rec.TruthValue = cleanToken(row[truthPos])
		}
		result.Records = append(result.Records, rec)
	}

	if len(result.Records) == 0 {
		return nil, &models.IngestionError{Reason: "no data found"}
	}

	for _, w := range result.Warnings {
		r.logger.Warn("schema reconciliation", slog.String("detail", w))
	}

	return result, nil
}

// parseValue coerces a token to a float; unparseable tokens become 0 rather
// than failing the row.
func parseValue(token string) float64 {
	v, err := strconv.ParseFloat(cleanToken(token), 64)
	if err != nil {
		return 0
	}
	return v
}

// cleanToken trims whitespace and one layer of surrounding quotes.
func cleanToken(token string) string {
	token = strings.TrimSpace(token)
	if len(token) >= 2 {
		first, last := token[0], token[len(token)-1]
		if first == last && (first == '"' || first == '\'') {
			token = token[1 : len(token)-1]
		}
	}
	return strings.TrimSpace(token)
}
