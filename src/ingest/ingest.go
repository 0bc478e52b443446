// Package ingest turns the progress CSV into a validated, time-sorted Series.
//
// Rows are dropped silently when the timestamp does not parse under
// TimestampLayout (including impossible calendar dates) or when the amount is
// not a number. Only the aggregate "nothing left" condition is reported as an
// error, via ErrNoValidData.
package ingest

import (
	"encoding/csv"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/iafilius/WormChart/src/types"
)

// TimestampLayout is the fixed lexical pattern of the timestamp column (YYYY-MM-DD HH:MM:SS).
const TimestampLayout = "2006-01-02 15:04:05"

const (
	ColumnTimestamp = "timestamp"
	ColumnAmount    = "amount"
)

var (
	// ErrNoValidData is returned when no row survives validation (including header-only input).
	ErrNoValidData = errors.New("no valid data")
	// ErrMissingColumn is returned when the header lacks timestamp or amount.
	ErrMissingColumn = errors.New("missing required column")
)

// Report counts what happened to the rows of one parse.
type Report struct {
	Rows             int `json:"rows"`
	Kept             int `json:"kept"`
	DroppedTimestamp int `json:"dropped_timestamp"`
	DroppedAmount    int `json:"dropped_amount"`
	DroppedMalformed int `json:"dropped_malformed"`
}

// Dropped is the number of rows excluded from the series.
func (r Report) Dropped() int { return r.DroppedTimestamp + r.DroppedAmount + r.DroppedMalformed }

// Parse reads a CSV with a header row and returns the valid samples sorted by timestamp.
// Timestamps are interpreted in loc (UTC when nil). The returned Report is filled even
// when an error is returned.
func Parse(r io.Reader, loc *time.Location) (types.Series, Report, error) {
	if loc == nil {
		loc = time.UTC
	}
	var rep Report
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, rep, ErrNoValidData
	}
	if err != nil {
		return nil, rep, errors.Wrap(err, "read header")
	}
	tsIdx, amtIdx := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))) {
		case ColumnTimestamp:
			tsIdx = i
		case ColumnAmount:
			amtIdx = i
		}
	}
	if tsIdx < 0 {
		return nil, rep, errors.Wrap(ErrMissingColumn, ColumnTimestamp)
	}
	if amtIdx < 0 {
		return nil, rep, errors.Wrap(ErrMissingColumn, ColumnAmount)
	}

	var series types.Series
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// a malformed line (e.g. stray quote) is a row-level failure; keep going
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				rep.Rows++
				rep.DroppedMalformed++
				continue
			}
			return nil, rep, errors.Wrap(err, "read row")
		}
		rep.Rows++
		ts, ok := parseTimestamp(field(rec, tsIdx), loc)
		if !ok {
			rep.DroppedTimestamp++
			continue
		}
		amt, ok := parseAmount(field(rec, amtIdx))
		if !ok {
			rep.DroppedAmount++
			continue
		}
		series = append(series, types.Sample{Timestamp: ts, Amount: amt})
	}
	rep.Kept = len(series)
	SortSeries(series)
	if len(series) == 0 {
		return series, rep, ErrNoValidData
	}
	return series, rep, nil
}

// SortSeries orders samples by timestamp in place. The sort is stable so duplicate
// timestamps keep their input order.
func SortSeries(s types.Series) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Timestamp.Before(s[j].Timestamp) })
}

func field(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

func parseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
