package models

import "testing"

func TestNormalizeEquipmentType(t *testing.T) {
	cases := []struct {
		raw  string
		want EquipmentType
	}{
		{"Pump", TypePump},
		{"pump", TypePump},
		{"  PUMP  ", TypePump},
		{"Compressor", TypeCompressor},
		{"Valve", TypeValve},
		{"HeatExchanger", TypeHeatExchanger},
		{"Heat Exchanger", TypeHeatExchanger},
		{"heat-exchanger", TypeHeatExchanger},
		{"HEAT_EXCHANGER", TypeHeatExchanger},
		{"Reactor", TypeReactor},
		{"Condenser", TypeCondenser},
		{"Other", TypeOther},
		{"Centrifuge", TypeOther},
		{"", TypeOther},
		{"pumps", TypeOther},
	}

	for _, tc := range cases {
		if got := NormalizeEquipmentType(tc.raw); got != tc.want {
			t.Errorf("NormalizeEquipmentType(%q) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestEquipmentTypesStableOrder(t *testing.T) {
	first := EquipmentTypes()
	second := EquipmentTypes()

	if len(first) != 7 {
		t.Fatalf("expected 7 categories, got %d", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("category order not stable at %d: %s vs %s", i, first[i], second[i])
		}
	}
	if first[0] != TypePump || first[len(first)-1] != TypeOther {
		t.Fatalf("unexpected category order: %v", first)
	}
}
