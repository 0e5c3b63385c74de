package models

import "strings"

// EquipmentType is the canonical category of a piece of process equipment.
type EquipmentType string

const (
	TypePump          EquipmentType = "Pump"
	TypeCompressor    EquipmentType = "Compressor"
	TypeValve         EquipmentType = "Valve"
	TypeHeatExchanger EquipmentType = "HeatExchanger"
	TypeReactor       EquipmentType = "Reactor"
	TypeCondenser     EquipmentType = "Condenser"
	TypeOther         EquipmentType = "Other"
)

// EquipmentTypes returns every category in canonical order. The order is
// stable so aggregations keyed by category come out deterministic.
func EquipmentTypes() []EquipmentType {
	return []EquipmentType{
		TypePump,
		TypeCompressor,
		TypeValve,
		TypeHeatExchanger,
		TypeReactor,
		TypeCondenser,
		TypeOther,
	}
}

// NormalizeEquipmentType maps a free-form type label onto a canonical
// category. Matching ignores case and separator characters, so
// "heat exchanger", "Heat-Exchanger" and "HEATEXCHANGER" all resolve to
// TypeHeatExchanger. Anything unrecognized resolves to TypeOther.
func NormalizeEquipmentType(raw string) EquipmentType {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, key)

	switch key {
	case "pump":
		return TypePump
	case "compressor":
		return TypeCompressor
	case "valve":
		return TypeValve
	case "heatexchanger":
		return TypeHeatExchanger
	case "reactor":
		return TypeReactor
	case "condenser":
		return TypeCondenser
	default:
		return TypeOther
	}
}

// Equipment is a single row of a dataset: one piece of equipment with its
// measured operating parameters.
type Equipment struct {
	ID          int64         `db:"id" json:"id"`
	DatasetID   int64         `db:"dataset_id" json:"dataset_id"`
	Position    int           `db:"position" json:"-"`
	Name        string        `db:"name" json:"name"`
	Type        EquipmentType `db:"type" json:"type"`
	Flowrate    float64       `db:"flowrate" json:"flowrate"`
	Pressure    float64       `db:"pressure" json:"pressure"`
	Temperature float64       `db:"temperature" json:"temperature"`
}
