package ledger

import "testing"

func TestSummarizeTotals(t *testing.T) {
	entries := []MeasurementEntry{
		{Species: "Teak", Volume: 0.45, Truck: "KA-01"},
		{Species: "Sal", Volume: 0.1611, Truck: "KA-02"},
		{Species: "Teak", Volume: 0.7162, Truck: "KA-02"},
		{Species: "Pine", Volume: 0.000001},
		{Species: "Sal", Volume: 1.25, Truck: "KA-01"},
	}

	summary := Summarize(entries, "")
	if len(summary.Groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(summary.Groups))
	}
	order := []string{"Teak", "Sal", "Pine"}
	var grand float64
	for i, group := range summary.Groups {
		if group.Species != order[i] {
			t.Fatalf("groups should follow first appearance, got %s at %d", group.Species, i)
		}
		var sum float64
		for _, e := range group.Entries {
			if e.Species != group.Species {
				t.Fatalf("entry %v in wrong group %s", e, group.Species)
			}
			sum += e.Volume
		}
		if sum != group.Total || group.Count != len(group.Entries) {
			t.Fatalf("group %s total %v != sum %v", group.Species, group.Total, sum)
		}
		grand += group.Total
	}
	if grand != summary.GrandTotal || summary.Count != len(entries) {
		t.Fatalf("grand total %v != %v", summary.GrandTotal, grand)
	}
}

func TestSummarizeFiltersByTruck(t *testing.T) {
	entries := []MeasurementEntry{
		{Species: "Teak", Volume: 0.5, Truck: "KA-01"},
		{Species: "Sal", Volume: 0.25, Truck: "KA-02"},
		{Species: "Teak", Volume: 0.25, Truck: "KA-01"},
	}
	summary := Summarize(entries, "KA-01")
	if len(summary.Groups) != 1 || summary.Groups[0].Count != 2 || summary.GrandTotal != 0.75 {
		t.Fatalf("unexpected filtered summary: %+v", summary)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil, "")
	if summary.Groups == nil || len(summary.Groups) != 0 || summary.GrandTotal != 0 {
		t.Fatalf("empty summary should have no groups: %+v", summary)
	}
}
