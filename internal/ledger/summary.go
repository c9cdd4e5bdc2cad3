package ledger

// SpeciesGroup 是某一树种的汇总。
type SpeciesGroup struct {
	Species string             `json:"species"`
	Count   int                `json:"count"`
	Total   float64            `json:"total"`
	Entries []MeasurementEntry `json:"entries"`
}

// Summary 是按树种分组的只读投影。
type Summary struct {
	Truck      string         `json:"truck,omitempty"`
	Groups     []SpeciesGroup `json:"groups"`
	GrandTotal float64        `json:"grand_total"`
	Count      int            `json:"count"`
}

// Summarize 按树种分组（按首次出现顺序），truck 非空时只统计该车辆的条目。
// GrandTotal 是各组 Total 之和。
func Summarize(entries []MeasurementEntry, truck string) Summary {
	summary := Summary{Truck: truck, Groups: []SpeciesGroup{}}
	positions := make(map[string]int)

	for _, e := range entries {
		if truck != "" && e.Truck != truck {
			continue
		}
		idx, ok := positions[e.Species]
		if !ok {
			idx = len(summary.Groups)
			positions[e.Species] = idx
			summary.Groups = append(summary.Groups, SpeciesGroup{Species: e.Species})
		}
		group := &summary.Groups[idx]
		group.Entries = append(group.Entries, e)
		group.Count++
		group.Total += e.Volume
		summary.Count++
	}

	for _, group := range summary.Groups {
		summary.GrandTotal += group.Total
	}
	return summary
}
