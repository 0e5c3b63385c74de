package analytics

import (
	"math"

	"equipviz/internal/models"
)

// Averages carries per-parameter means rounded for presentation.
type Averages struct {
	Flowrate    float64 `json:"flowrate"`
	Pressure    float64 `json:"pressure"`
	Temperature float64 `json:"temperature"`
}

// Range is a closed min/max interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Ranges carries per-parameter observed intervals.
type Ranges struct {
	Flowrate    Range `json:"flowrate"`
	Pressure    Range `json:"pressure"`
	Temperature Range `json:"temperature"`
}

// SummaryResponse is the API shape of a Summary. Averages and Ranges are
// null when there are no records; numeric values are rounded to 2 decimals.
type SummaryResponse struct {
	TotalCount       int                                `json:"total_count"`
	EquipmentTypes   []models.EquipmentType             `json:"equipment_types"`
	Averages         *Averages                          `json:"averages"`
	Ranges           *Ranges                            `json:"ranges"`
	TypeDistribution map[models.EquipmentType]int       `json:"type_distribution"`
	StatsByType      map[models.EquipmentType]TypeStats `json:"stats_by_type"`
}

// Response formats the summary for API consumers.
func (s Summary) Response() SummaryResponse {
	resp := SummaryResponse{
		TotalCount:       s.TotalCount,
		EquipmentTypes:   append([]models.EquipmentType{}, s.PresentTypes...),
		TypeDistribution: s.TypeDistribution,
		StatsByType:      s.StatsByType,
	}
	if s.TotalCount == 0 {
		return resp
	}

	resp.Averages = &Averages{
		Flowrate:    Round2(s.Flowrate.Avg),
		Pressure:    Round2(s.Pressure.Avg),
		Temperature: Round2(s.Temperature.Avg),
	}
	resp.Ranges = &Ranges{
		Flowrate:    Range{Min: Round2(s.Flowrate.Min), Max: Round2(s.Flowrate.Max)},
		Pressure:    Range{Min: Round2(s.Pressure.Min), Max: Round2(s.Pressure.Max)},
		Temperature: Range{Min: Round2(s.Temperature.Min), Max: Round2(s.Temperature.Max)},
	}
	return resp
}

// Round2 rounds to 2 decimal places for presentation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
