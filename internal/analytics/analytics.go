package analytics

import (
	"math"
	"sort"

	"equipviz/internal/models"
)

// ParamStats holds aggregate statistics for one numeric parameter.
// Std is the sample standard deviation, 0 for fewer than two values.
type ParamStats struct {
	Avg float64 `json:"avg"`
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Std float64 `json:"std"`
}

// TypeStats aggregates the parameters of one equipment category.
type TypeStats struct {
	Count       int        `json:"count"`
	Flowrate    ParamStats `json:"flowrate"`
	Pressure    ParamStats `json:"pressure"`
	Temperature ParamStats `json:"temperature"`
}

// Summary is the complete set of aggregates for a collection of equipment
// records. TypeDistribution always carries every category, zero-filled;
// StatsByType and PresentTypes cover only categories that occur.
type Summary struct {
	TotalCount       int
	Flowrate         ParamStats
	Pressure         ParamStats
	Temperature      ParamStats
	TypeDistribution map[models.EquipmentType]int
	StatsByType      map[models.EquipmentType]TypeStats
	PresentTypes     []models.EquipmentType
}

// Summarize computes aggregates over records. Records from several
// datasets are summarized by flattening them into one slice first; there
// is no per-dataset weighting. The input is re-ordered canonically before
// accumulation, so any permutation of the same records yields identical
// output. Empty input yields a zero summary, never NaN or Inf.
func Summarize(records []models.Equipment) Summary {
	recs := make([]models.Equipment, len(records))
	copy(recs, records)
	sort.Slice(recs, func(i, j int) bool {
		return lessCanonical(recs[i], recs[j])
	})

	summary := Summary{
		TotalCount:       len(recs),
		TypeDistribution: make(map[models.EquipmentType]int, 7),
		StatsByType:      make(map[models.EquipmentType]TypeStats),
	}
	for _, t := range models.EquipmentTypes() {
		summary.TypeDistribution[t] = 0
	}
	if len(recs) == 0 {
		return summary
	}

	var flow, pres, temp accumulator
	byType := make(map[models.EquipmentType]*typeAccumulator)

	for _, rec := range recs {
		flow.add(rec.Flowrate)
		pres.add(rec.Pressure)
		temp.add(rec.Temperature)

		summary.TypeDistribution[rec.Type]++
		acc, ok := byType[rec.Type]
		if !ok {
			acc = &typeAccumulator{}
			byType[rec.Type] = acc
		}
		acc.add(rec)
	}

	summary.Flowrate = flow.stats()
	summary.Pressure = pres.stats()
	summary.Temperature = temp.stats()

	for _, t := range models.EquipmentTypes() {
		acc, ok := byType[t]
		if !ok {
			continue
		}
		summary.PresentTypes = append(summary.PresentTypes, t)
		summary.StatsByType[t] = TypeStats{
			Count:       acc.count,
			Flowrate:    acc.flow.stats(),
			Pressure:    acc.pres.stats(),
			Temperature: acc.temp.stats(),
		}
	}

	return summary
}

func lessCanonical(a, b models.Equipment) bool {
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	if a.Flowrate != b.Flowrate {
		return a.Flowrate < b.Flowrate
	}
	if a.Pressure != b.Pressure {
		return a.Pressure < b.Pressure
	}
	return a.Temperature < b.Temperature
}

// accumulator tracks running statistics for one parameter using Welford's
// online algorithm, which stays numerically stable on long streams.
type accumulator struct {
	n    int
	mean float64
	m2   float64
	min  float64
	max  float64
}

func (a *accumulator) add(x float64) {
	a.n++
	if a.n == 1 {
		a.min, a.max = x, x
	} else {
		if x < a.min {
			a.min = x
		}
		if x > a.max {
			a.max = x
		}
	}
	delta := x - a.mean
	a.mean += delta / float64(a.n)
	a.m2 += delta * (x - a.mean)
}

func (a *accumulator) stats() ParamStats {
	if a.n == 0 {
		return ParamStats{}
	}
	var std float64
	if a.n > 1 {
		std = math.Sqrt(a.m2 / float64(a.n-1))
	}
	return ParamStats{Avg: a.mean, Min: a.min, Max: a.max, Std: std}
}

type typeAccumulator struct {
	count int
	flow  accumulator
	pres  accumulator
	temp  accumulator
}

func (t *typeAccumulator) add(rec models.Equipment) {
	t.count++
	t.flow.add(rec.Flowrate)
	t.pres.add(rec.Pressure)
	t.temp.add(rec.Temperature)
}
