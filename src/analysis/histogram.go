package analysis

import (
	"github.com/shopspring/decimal"

	"github.com/iafilius/WormChart/src/types"
)

// Bin is one donation-size bucket [Lower, Upper). Upper is nil for the open-ended last bin.
type Bin struct {
	Label string           `json:"label"`
	Lower decimal.Decimal  `json:"lower"`
	Upper *decimal.Decimal `json:"upper,omitempty"`
	Count int              `json:"count"`
	Total decimal.Decimal  `json:"total"`
}

// DefaultBinEdges are the bucket boundaries for donation sizes.
var DefaultBinEdges = []int64{0, 10, 100, 500, 1000, 5000, 10000, 100000}

var defaultBinLabels = []string{"0-10", "10-100", "100-500", "500-1000", "1000-5000", "5000-10,000", "10,000-100,000", "100,000+"}

// Histogram totals the positive increments of series per size bin.
func Histogram(series types.Series) []Bin {
	bins := make([]Bin, len(DefaultBinEdges))
	for i, lo := range DefaultBinEdges {
		bins[i].Label = defaultBinLabels[i]
		bins[i].Lower = decimal.NewFromInt(lo)
		if i+1 < len(DefaultBinEdges) {
			up := decimal.NewFromInt(DefaultBinEdges[i+1])
			bins[i].Upper = &up
		}
	}
	for _, v := range positiveAmounts(Increments(series)) {
		for i := range bins {
			b := &bins[i]
			if v.LessThan(b.Lower) {
				continue
			}
			if b.Upper != nil && !v.LessThan(*b.Upper) {
				continue
			}
			b.Count++
			b.Total = b.Total.Add(v)
			break
		}
	}
	return bins
}

// HistogramTotal sums every bin.
func HistogramTotal(bins []Bin) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bins {
		total = total.Add(b.Total)
	}
	return total
}
