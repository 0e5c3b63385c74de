package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"equipviz/internal/models"
)

// DuplicatePolicy controls how rows sharing an equipment name are handled.
type DuplicatePolicy string

const (
	// KeepFirst stores the first occurrence and warns about later ones.
	KeepFirst DuplicatePolicy = "keep_first"
	// KeepLast overwrites earlier occurrences with the latest values.
	KeepLast DuplicatePolicy = "keep_last"
	// Reject skips every repeated occurrence as an invalid row.
	Reject DuplicatePolicy = "reject"
)

// Options tune dataset building.
type Options struct {
	Duplicates DuplicatePolicy
}

// Result is a creation-ready dataset candidate. IDs and timestamps are
// assigned at persistence time, not here.
type Result struct {
	Name     string
	Records  []models.Equipment
	Skipped  []SkippedRow
	Warnings []string
}

// Builder assembles datasets from CSV streams.
type Builder struct {
	dup DuplicatePolicy
}

// NewBuilder returns a builder with the given options applied.
func NewBuilder(opts Options) *Builder {
	dup := opts.Duplicates
	switch dup {
	case KeepFirst, KeepLast, Reject:
	default:
		dup = KeepFirst
	}
	return &Builder{dup: dup}
}

// Build reads CSV content from r and assembles a dataset candidate named
// name. Rows that fail validation are collected in Result.Skipped with
// their 1-based data row index; valid rows keep source order. The error,
// when non-nil, is a *BuildError wrapping ErrMalformedInput or
// ErrEmptyResult.
func (b *Builder) Build(r io.Reader, name string) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ingest: read input: %w", err)
	}

	var warnings []string
	if !utf8.Valid(data) {
		decoded, decErr := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if decErr != nil {
			return nil, &BuildError{Err: ErrMalformedInput, Detail: "undecodable file content"}
		}
		data = decoded
		warnings = append(warnings, "file was not UTF-8 encoded, decoded as latin-1")
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, &BuildError{Err: ErrMalformedInput, Detail: "the uploaded file is empty", Warnings: warnings}
	}
	if err != nil {
		return nil, &BuildError{Err: ErrMalformedInput, Detail: fmt.Sprintf("unreadable CSV: %v", err), Warnings: warnings}
	}

	fieldIndex, missing := matchHeader(header)
	if len(missing) > 0 {
		return nil, &BuildError{
			Err:      ErrMalformedInput,
			Detail:   fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
			Warnings: warnings,
		}
	}

	result := &Result{Name: strings.TrimSpace(name), Warnings: warnings}
	byName := make(map[string]int)

	for rowIdx := 1; ; rowIdx++ {
		cells, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &BuildError{
				Err:      ErrMalformedInput,
				Detail:   fmt.Sprintf("unreadable CSV at data row %d: %v", rowIdx, err),
				Skipped:  result.Skipped,
				Warnings: result.Warnings,
			}
		}

		if blankRow(cells) {
			continue
		}

		row := make(map[string]string, len(fieldIndex))
		for field, idx := range fieldIndex {
			if idx < len(cells) {
				row[field] = cells[idx]
			}
		}

		record, err := NormalizeRow(row)
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedRow{Row: rowIdx, Reason: err.(*FieldError)})
			continue
		}

		if prev, seen := byName[record.Name]; seen {
			switch b.dup {
			case KeepLast:
				record.Position = result.Records[prev].Position
				result.Records[prev] = record
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("duplicate equipment name %q at row %d replaced the earlier occurrence", record.Name, rowIdx))
			case Reject:
				result.Skipped = append(result.Skipped, SkippedRow{
					Row:    rowIdx,
					Reason: &FieldError{Kind: KindDuplicateName, Column: FieldName, Value: record.Name},
				})
			default:
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("duplicate equipment name %q at row %d ignored, keeping the first occurrence", record.Name, rowIdx))
			}
			continue
		}

		record.Position = len(result.Records)
		byName[record.Name] = len(result.Records)
		result.Records = append(result.Records, record)
	}

	if len(result.Records) == 0 {
		return nil, &BuildError{
			Err:      ErrEmptyResult,
			Detail:   "no valid data rows found in the file",
			Skipped:  result.Skipped,
			Warnings: result.Warnings,
		}
	}

	result.Warnings = append(result.Warnings, negativeValueWarnings(result.Records)...)
	return result, nil
}

// matchHeader resolves required columns against the header row, ignoring
// case and surrounding whitespace. Extra columns are ignored. It returns
// the model field -> cell index mapping and the labels still missing.
func matchHeader(header []string) (map[string]int, []string) {
	fieldIndex := make(map[string]int, 5)
	var missing []string

	for _, col := range requiredColumns() {
		found := -1
		for i, cell := range header {
			if strings.EqualFold(strings.TrimSpace(cell), col.Header) {
				found = i
				break
			}
		}
		if found < 0 {
			missing = append(missing, col.Header)
			continue
		}
		fieldIndex[col.Field] = found
	}
	return fieldIndex, missing
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func negativeValueWarnings(records []models.Equipment) []string {
	negative := map[string]bool{}
	for _, rec := range records {
		if rec.Flowrate < 0 {
			negative[ColumnFlowrate] = true
		}
		if rec.Pressure < 0 {
			negative[ColumnPressure] = true
		}
		if rec.Temperature < 0 {
			negative[ColumnTemperature] = true
		}
	}

	var warnings []string
	for _, col := range []string{ColumnFlowrate, ColumnPressure, ColumnTemperature} {
		if negative[col] {
			warnings = append(warnings, fmt.Sprintf("column %q contains negative values", col))
		}
	}
	return warnings
}
