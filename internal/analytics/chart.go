package analytics

import "equipviz/internal/models"

// ChartSeries is one labelled series of a grouped bar chart.
type ChartSeries struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// BarChart groups per-category parameter averages, one bar group per
// category present in the data.
type BarChart struct {
	Labels   []models.EquipmentType `json:"labels"`
	Datasets []ChartSeries          `json:"datasets"`
}

// PieChart carries the category distribution over present categories.
type PieChart struct {
	Labels []models.EquipmentType `json:"labels"`
	Data   []int                  `json:"data"`
}

// ChartData bundles chart-ready projections of a Summary.
type ChartData struct {
	Bar BarChart `json:"bar_chart"`
	Pie PieChart `json:"pie_chart"`
}

// Charts shapes the summary for chart rendering. Labels follow the
// canonical category order and include only categories with records, so
// the same data always produces the same chart.
func (s Summary) Charts() ChartData {
	labels := append([]models.EquipmentType{}, s.PresentTypes...)

	flow := make([]float64, 0, len(labels))
	pres := make([]float64, 0, len(labels))
	temp := make([]float64, 0, len(labels))
	counts := make([]int, 0, len(labels))
	for _, t := range labels {
		stats := s.StatsByType[t]
		flow = append(flow, stats.Flowrate.Avg)
		pres = append(pres, stats.Pressure.Avg)
		temp = append(temp, stats.Temperature.Avg)
		counts = append(counts, stats.Count)
	}

	return ChartData{
		Bar: BarChart{
			Labels: labels,
			Datasets: []ChartSeries{
				{Label: "Avg Flowrate", Data: flow},
				{Label: "Avg Pressure", Data: pres},
				{Label: "Avg Temperature", Data: temp},
			},
		},
		Pie: PieChart{
			Labels: labels,
			Data:   counts,
		},
	}
}
