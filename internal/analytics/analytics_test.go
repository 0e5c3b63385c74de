package analytics

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"equipviz/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func specRecords() []models.Equipment {
	return []models.Equipment{
		{Name: "P-1", Type: models.TypePump, Flowrate: 100, Pressure: 5, Temperature: 60},
		{Name: "R-1", Type: models.TypeReactor, Flowrate: 50, Pressure: 10, Temperature: 200},
	}
}

func TestSummarizeKnownValues(t *testing.T) {
	summary := Summarize(specRecords())

	if summary.TotalCount != 2 {
		t.Fatalf("total = %d, want 2", summary.TotalCount)
	}
	if !almostEqual(summary.Flowrate.Avg, 75) {
		t.Errorf("flowrate avg = %v, want 75", summary.Flowrate.Avg)
	}
	if summary.Flowrate.Min != 50 || summary.Flowrate.Max != 100 {
		t.Errorf("flowrate range = %v..%v, want 50..100", summary.Flowrate.Min, summary.Flowrate.Max)
	}
	// sample std of {50, 100} = sqrt(1250)
	if !almostEqual(summary.Flowrate.Std, math.Sqrt(1250)) {
		t.Errorf("flowrate std = %v, want %v", summary.Flowrate.Std, math.Sqrt(1250))
	}
	if !almostEqual(summary.Pressure.Avg, 7.5) {
		t.Errorf("pressure avg = %v, want 7.5", summary.Pressure.Avg)
	}
	if !almostEqual(summary.Temperature.Avg, 130) {
		t.Errorf("temperature avg = %v, want 130", summary.Temperature.Avg)
	}

	if summary.TypeDistribution[models.TypePump] != 1 || summary.TypeDistribution[models.TypeReactor] != 1 {
		t.Errorf("type distribution = %v", summary.TypeDistribution)
	}
	if summary.TypeDistribution[models.TypeValve] != 0 {
		t.Errorf("absent type must be zero, got %d", summary.TypeDistribution[models.TypeValve])
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)

	if summary.TotalCount != 0 {
		t.Fatalf("total = %d, want 0", summary.TotalCount)
	}
	if len(summary.TypeDistribution) != 7 {
		t.Errorf("distribution must carry every category, got %d keys", len(summary.TypeDistribution))
	}
	for typ, n := range summary.TypeDistribution {
		if n != 0 {
			t.Errorf("distribution[%s] = %d, want 0", typ, n)
		}
	}
	if len(summary.StatsByType) != 0 {
		t.Errorf("stats by type must be empty, got %v", summary.StatsByType)
	}
	if len(summary.PresentTypes) != 0 {
		t.Errorf("present types must be empty, got %v", summary.PresentTypes)
	}
	if math.IsNaN(summary.Flowrate.Avg) || math.IsInf(summary.Flowrate.Avg, 0) {
		t.Errorf("empty summary produced non-finite average: %v", summary.Flowrate.Avg)
	}
}

func TestSummarizeSingleRecord(t *testing.T) {
	summary := Summarize([]models.Equipment{
		{Name: "V-1", Type: models.TypeValve, Flowrate: 10, Pressure: 2, Temperature: 30},
	})

	if summary.Flowrate.Std != 0 {
		t.Errorf("std of one value = %v, want 0", summary.Flowrate.Std)
	}
	if summary.Flowrate.Avg != 10 || summary.Flowrate.Min != 10 || summary.Flowrate.Max != 10 {
		t.Errorf("flowrate stats = %+v, want all 10", summary.Flowrate)
	}
}

func TestSummarizeOrderIndependent(t *testing.T) {
	records := []models.Equipment{
		{Name: "P-1", Type: models.TypePump, Flowrate: 0.1, Pressure: 1.7, Temperature: 33.3},
		{Name: "P-2", Type: models.TypePump, Flowrate: 0.2, Pressure: 2.9, Temperature: 31.1},
		{Name: "P-3", Type: models.TypePump, Flowrate: 0.3, Pressure: 0.3, Temperature: 35.5},
		{Name: "C-1", Type: models.TypeCompressor, Flowrate: 12.5, Pressure: 8.1, Temperature: 90},
		{Name: "R-1", Type: models.TypeReactor, Flowrate: 55.5, Pressure: 10.01, Temperature: 210.7},
		{Name: "X-1", Type: models.TypeOther, Flowrate: 7.77, Pressure: 0.07, Temperature: -5},
		{Name: "H-1", Type: models.TypeHeatExchanger, Flowrate: 31.4, Pressure: 2.72, Temperature: 161.8},
	}

	baseline := Summarize(records)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]models.Equipment, len(records))
		copy(shuffled, records)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got := Summarize(shuffled)
		if !reflect.DeepEqual(baseline, got) {
			t.Fatalf("permutation %d changed the summary:\nbaseline %+v\ngot      %+v", i, baseline, got)
		}
	}
}

func TestSummarizeDoesNotMutateInput(t *testing.T) {
	records := []models.Equipment{
		{Name: "B", Type: models.TypeReactor, Flowrate: 2},
		{Name: "A", Type: models.TypePump, Flowrate: 1},
	}

	Summarize(records)

	if records[0].Name != "B" || records[1].Name != "A" {
		t.Fatalf("input order mutated: %s, %s", records[0].Name, records[1].Name)
	}
}

func TestSummarizePresentTypesCanonicalOrder(t *testing.T) {
	summary := Summarize([]models.Equipment{
		{Name: "X-1", Type: models.TypeOther, Flowrate: 1, Pressure: 1, Temperature: 1},
		{Name: "R-1", Type: models.TypeReactor, Flowrate: 1, Pressure: 1, Temperature: 1},
		{Name: "P-1", Type: models.TypePump, Flowrate: 1, Pressure: 1, Temperature: 1},
	})

	want := []models.EquipmentType{models.TypePump, models.TypeReactor, models.TypeOther}
	if !reflect.DeepEqual(summary.PresentTypes, want) {
		t.Errorf("present types = %v, want %v", summary.PresentTypes, want)
	}
	if len(summary.StatsByType) != 3 {
		t.Errorf("stats by type keys = %d, want 3", len(summary.StatsByType))
	}
}

func TestSummarizeStatsByType(t *testing.T) {
	summary := Summarize([]models.Equipment{
		{Name: "P-1", Type: models.TypePump, Flowrate: 10, Pressure: 1, Temperature: 50},
		{Name: "P-2", Type: models.TypePump, Flowrate: 20, Pressure: 3, Temperature: 70},
		{Name: "R-1", Type: models.TypeReactor, Flowrate: 5, Pressure: 9, Temperature: 300},
	})

	pump := summary.StatsByType[models.TypePump]
	if pump.Count != 2 {
		t.Fatalf("pump count = %d, want 2", pump.Count)
	}
	if !almostEqual(pump.Flowrate.Avg, 15) || pump.Flowrate.Min != 10 || pump.Flowrate.Max != 20 {
		t.Errorf("pump flowrate = %+v", pump.Flowrate)
	}
	// sample std of {10, 20} = sqrt(50)
	if !almostEqual(pump.Flowrate.Std, math.Sqrt(50)) {
		t.Errorf("pump flowrate std = %v, want %v", pump.Flowrate.Std, math.Sqrt(50))
	}

	reactor := summary.StatsByType[models.TypeReactor]
	if reactor.Count != 1 || reactor.Temperature.Avg != 300 || reactor.Temperature.Std != 0 {
		t.Errorf("reactor stats = %+v", reactor)
	}
}

func TestResponseRoundsForPresentation(t *testing.T) {
	summary := Summarize([]models.Equipment{
		{Name: "P-1", Type: models.TypePump, Flowrate: 100.123456, Pressure: 1.005, Temperature: 60.4567},
		{Name: "P-2", Type: models.TypePump, Flowrate: 200.654321, Pressure: 2.015, Temperature: 61.5433},
	})

	resp := summary.Response()

	if resp.Averages == nil || resp.Ranges == nil {
		t.Fatalf("averages/ranges must be set for non-empty data")
	}
	if resp.Averages.Flowrate != 150.39 {
		t.Errorf("rounded flowrate avg = %v, want 150.39", resp.Averages.Flowrate)
	}
	if resp.Ranges.Flowrate.Min != 100.12 || resp.Ranges.Flowrate.Max != 200.65 {
		t.Errorf("rounded flowrate range = %+v", resp.Ranges.Flowrate)
	}

	// per-type statistics pass through at full precision
	raw := summary.StatsByType[models.TypePump].Flowrate.Avg
	if resp.StatsByType[models.TypePump].Flowrate.Avg != raw {
		t.Errorf("stats_by_type was rounded: %v vs %v", resp.StatsByType[models.TypePump].Flowrate.Avg, raw)
	}
	if raw == 150.39 {
		t.Errorf("raw average unexpectedly equals the rounded value")
	}
}

func TestResponseEmptySummary(t *testing.T) {
	resp := Summarize(nil).Response()

	if resp.TotalCount != 0 {
		t.Fatalf("total = %d, want 0", resp.TotalCount)
	}
	if resp.Averages != nil || resp.Ranges != nil {
		t.Errorf("averages/ranges must be null for empty data")
	}
	if len(resp.EquipmentTypes) != 0 {
		t.Errorf("equipment types = %v, want empty", resp.EquipmentTypes)
	}
	if len(resp.TypeDistribution) != 7 {
		t.Errorf("distribution must stay zero-filled, got %d keys", len(resp.TypeDistribution))
	}
}

func TestChartsShape(t *testing.T) {
	summary := Summarize([]models.Equipment{
		{Name: "P-1", Type: models.TypePump, Flowrate: 10, Pressure: 1, Temperature: 50},
		{Name: "P-2", Type: models.TypePump, Flowrate: 20, Pressure: 3, Temperature: 70},
		{Name: "R-1", Type: models.TypeReactor, Flowrate: 5, Pressure: 9, Temperature: 300},
	})

	charts := summary.Charts()

	wantLabels := []models.EquipmentType{models.TypePump, models.TypeReactor}
	if !reflect.DeepEqual(charts.Bar.Labels, wantLabels) {
		t.Errorf("bar labels = %v, want %v", charts.Bar.Labels, wantLabels)
	}
	if !reflect.DeepEqual(charts.Pie.Labels, wantLabels) {
		t.Errorf("pie labels = %v, want %v", charts.Pie.Labels, wantLabels)
	}

	if len(charts.Bar.Datasets) != 3 {
		t.Fatalf("bar datasets = %d, want 3", len(charts.Bar.Datasets))
	}
	if charts.Bar.Datasets[0].Label != "Avg Flowrate" ||
		charts.Bar.Datasets[1].Label != "Avg Pressure" ||
		charts.Bar.Datasets[2].Label != "Avg Temperature" {
		t.Errorf("dataset labels = %v", []string{
			charts.Bar.Datasets[0].Label, charts.Bar.Datasets[1].Label, charts.Bar.Datasets[2].Label,
		})
	}
	if !almostEqual(charts.Bar.Datasets[0].Data[0], 15) {
		t.Errorf("pump avg flowrate = %v, want 15", charts.Bar.Datasets[0].Data[0])
	}
	if !reflect.DeepEqual(charts.Pie.Data, []int{2, 1}) {
		t.Errorf("pie data = %v, want [2 1]", charts.Pie.Data)
	}
}

func TestChartsEmpty(t *testing.T) {
	charts := Summarize(nil).Charts()

	if len(charts.Bar.Labels) != 0 || len(charts.Pie.Labels) != 0 {
		t.Errorf("empty data must produce empty chart labels: %+v", charts)
	}
	if len(charts.Bar.Datasets) != 3 {
		t.Fatalf("bar datasets = %d, want 3", len(charts.Bar.Datasets))
	}
	for _, series := range charts.Bar.Datasets {
		if len(series.Data) != 0 {
			t.Errorf("series %q has data for empty input", series.Label)
		}
	}
}
