package ingest

import (
	"errors"
	"testing"

	"equipviz/internal/models"
)

func validRow() map[string]string {
	return map[string]string{
		FieldName:        "P-101",
		FieldType:        "Pump",
		FieldFlowrate:    "120.5",
		FieldPressure:    "4.2",
		FieldTemperature: "65",
	}
}

func TestNormalizeRowValid(t *testing.T) {
	rec, err := NormalizeRow(validRow())
	if err != nil {
		t.Fatalf("normalize valid row: %v", err)
	}
	if rec.Name != "P-101" {
		t.Errorf("name = %q, want P-101", rec.Name)
	}
	if rec.Type != models.TypePump {
		t.Errorf("type = %s, want Pump", rec.Type)
	}
	if rec.Flowrate != 120.5 || rec.Pressure != 4.2 || rec.Temperature != 65 {
		t.Errorf("parameters = %v/%v/%v, want 120.5/4.2/65", rec.Flowrate, rec.Pressure, rec.Temperature)
	}
}

func TestNormalizeRowTrimsAndMapsType(t *testing.T) {
	row := validRow()
	row[FieldName] = "  C-7  "
	row[FieldType] = " heat exchanger "

	rec, err := NormalizeRow(row)
	if err != nil {
		t.Fatalf("normalize row: %v", err)
	}
	if rec.Name != "C-7" {
		t.Errorf("name = %q, want C-7", rec.Name)
	}
	if rec.Type != models.TypeHeatExchanger {
		t.Errorf("type = %s, want HeatExchanger", rec.Type)
	}
}

func TestNormalizeRowUnknownTypeFallsBack(t *testing.T) {
	row := validRow()
	row[FieldType] = "Centrifuge"

	rec, err := NormalizeRow(row)
	if err != nil {
		t.Fatalf("normalize row: %v", err)
	}
	if rec.Type != models.TypeOther {
		t.Errorf("type = %s, want Other", rec.Type)
	}
}

func TestNormalizeRowNegativeValuesAccepted(t *testing.T) {
	row := validRow()
	row[FieldTemperature] = "-40"

	rec, err := NormalizeRow(row)
	if err != nil {
		t.Fatalf("normalize row: %v", err)
	}
	if rec.Temperature != -40 {
		t.Errorf("temperature = %v, want -40", rec.Temperature)
	}
}

func TestNormalizeRowRejections(t *testing.T) {
	cases := []struct {
		name       string
		mutate     func(map[string]string)
		wantKind   ErrorKind
		wantColumn string
	}{
		{
			name:       "missing name",
			mutate:     func(r map[string]string) { r[FieldName] = "   " },
			wantKind:   KindMissingField,
			wantColumn: FieldName,
		},
		{
			name:       "missing type",
			mutate:     func(r map[string]string) { r[FieldType] = "" },
			wantKind:   KindMissingField,
			wantColumn: FieldType,
		},
		{
			name:       "missing flowrate",
			mutate:     func(r map[string]string) { r[FieldFlowrate] = "" },
			wantKind:   KindMissingField,
			wantColumn: FieldFlowrate,
		},
		{
			name:       "unparseable flowrate",
			mutate:     func(r map[string]string) { r[FieldFlowrate] = "abc" },
			wantKind:   KindInvalidNumber,
			wantColumn: FieldFlowrate,
		},
		{
			name:       "nan pressure",
			mutate:     func(r map[string]string) { r[FieldPressure] = "NaN" },
			wantKind:   KindInvalidNumber,
			wantColumn: FieldPressure,
		},
		{
			name:       "infinite temperature",
			mutate:     func(r map[string]string) { r[FieldTemperature] = "+Inf" },
			wantKind:   KindInvalidNumber,
			wantColumn: FieldTemperature,
		},
		{
			name:       "comma decimal separator",
			mutate:     func(r map[string]string) { r[FieldPressure] = "4,2" },
			wantKind:   KindInvalidNumber,
			wantColumn: FieldPressure,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := validRow()
			tc.mutate(row)

			_, err := NormalizeRow(row)
			if err == nil {
				t.Fatalf("expected error, got none")
			}
			var fieldErr *FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("expected *FieldError, got %T", err)
			}
			if fieldErr.Kind != tc.wantKind {
				t.Errorf("kind = %s, want %s", fieldErr.Kind, tc.wantKind)
			}
			if fieldErr.Column != tc.wantColumn {
				t.Errorf("column = %s, want %s", fieldErr.Column, tc.wantColumn)
			}
		})
	}
}

func TestNormalizeRowDeterministic(t *testing.T) {
	row := validRow()
	first, err := NormalizeRow(row)
	if err != nil {
		t.Fatalf("normalize row: %v", err)
	}
	second, err := NormalizeRow(row)
	if err != nil {
		t.Fatalf("normalize row again: %v", err)
	}
	if first != second {
		t.Fatalf("same input produced different records: %+v vs %+v", first, second)
	}
}
