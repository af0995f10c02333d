package analysis

import "github.com/KaramelBytes/dataclinic-cli/internal/table"

// Insights is the dataset overview shown after an upload and sent to the chat service.
type Insights struct {
	TotalRows          int        `json:"totalRows"`
	TotalColumns       int        `json:"totalColumns"`
	NumericColumns     int        `json:"numericColumns"`
	CategoricalColumns int        `json:"categoricalColumns"`
	DatetimeColumns    int        `json:"datetimeColumns"`
	MissingValues      int        `json:"missingValues"`
	DuplicateRows      int        `json:"duplicateRows"`
	BasicStats         BasicStats `json:"basicStats"`
}

// BasicStats condenses the descriptive statistics into two figures.
type BasicStats struct {
	// AverageMean is the mean of the per-column means.
	AverageMean        float64 `json:"averageMean"`
	TotalNumericValues int     `json:"totalNumericValues"`
}

// ComputeInsights summarizes t; stats should come from DescriptiveStats(t).
func ComputeInsights(t *table.Table, stats Stats) Insights {
	types := ClassifyAll(t)
	in := Insights{
		TotalRows:          t.Len(),
		TotalColumns:       len(t.Columns),
		NumericColumns:     len(ColumnsOfType(t, types, Numeric)),
		CategoricalColumns: len(ColumnsOfType(t, types, Categorical)),
		DatetimeColumns:    len(ColumnsOfType(t, types, Datetime)),
		DuplicateRows:      CountDuplicates(t),
	}
	for _, c := range t.Columns {
		in.MissingValues += countMissing(t, c)
	}
	var sum float64
	for _, c := range stats.Columns {
		cs := stats.ByColumn[c]
		sum += cs.Mean
		in.BasicStats.TotalNumericValues += cs.Count
	}
	if n := len(stats.Columns); n > 0 {
		in.BasicStats.AverageMean = sum / float64(n)
	}
	return in
}
