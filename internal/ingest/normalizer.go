package ingest

import (
	"math"
	"strconv"
	"strings"

	"equipviz/internal/models"
)

// CSV header labels and the model fields they map onto.
const (
	ColumnName        = "Equipment Name"
	ColumnType        = "Type"
	ColumnFlowrate    = "Flowrate"
	ColumnPressure    = "Pressure"
	ColumnTemperature = "Temperature"

	FieldName        = "name"
	FieldType        = "type"
	FieldFlowrate    = "flowrate"
	FieldPressure    = "pressure"
	FieldTemperature = "temperature"
)

type column struct {
	Header string
	Field  string
}

func requiredColumns() []column {
	return []column{
		{ColumnName, FieldName},
		{ColumnType, FieldType},
		{ColumnFlowrate, FieldFlowrate},
		{ColumnPressure, FieldPressure},
		{ColumnTemperature, FieldTemperature},
	}
}

// RequiredHeaders lists the CSV columns an upload must contain.
func RequiredHeaders() []string {
	cols := requiredColumns()
	headers := make([]string, 0, len(cols))
	for _, c := range cols {
		headers = append(headers, c.Header)
	}
	return headers
}

// NormalizeRow validates one raw row, keyed by model field name, and
// produces an equipment record. It is pure: same input, same output.
// The returned error is always a *FieldError describing the first
// offending cell in column order.
func NormalizeRow(row map[string]string) (models.Equipment, error) {
	name := strings.TrimSpace(row[FieldName])
	if name == "" {
		return models.Equipment{}, &FieldError{Kind: KindMissingField, Column: FieldName}
	}

	rawType := strings.TrimSpace(row[FieldType])
	if rawType == "" {
		return models.Equipment{}, &FieldError{Kind: KindMissingField, Column: FieldType}
	}

	flowrate, err := parseParameter(row, FieldFlowrate)
	if err != nil {
		return models.Equipment{}, err
	}
	pressure, err := parseParameter(row, FieldPressure)
	if err != nil {
		return models.Equipment{}, err
	}
	temperature, err := parseParameter(row, FieldTemperature)
	if err != nil {
		return models.Equipment{}, err
	}

	return models.Equipment{
		Name:        name,
		Type:        models.NormalizeEquipmentType(rawType),
		Flowrate:    flowrate,
		Pressure:    pressure,
		Temperature: temperature,
	}, nil
}

func parseParameter(row map[string]string, field string) (float64, error) {
	raw := strings.TrimSpace(row[field])
	if raw == "" {
		return 0, &FieldError{Kind: KindMissingField, Column: field}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &FieldError{Kind: KindInvalidNumber, Column: field, Value: raw}
	}
	return v, nil
}
