// Package dataset turns raw rows into the cleaned, immutable ratings dataset.
//
// Cleaning is a fixed chain of filter modules:
//
//  1. drop rows with a missing value in any column
//  2. coerce Released_Year (whole numbers) and IMDB_Rating to numbers; failures become missing
//  3. drop rows whose year or rating is now missing
//  4. derive Decade
//
// Cleaning never reports data-quality problems as errors; offending rows are
// dropped and counted in ratings.CleanStats.
package dataset

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/modules/filter"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

// Cleaner runs the cleaning chain.
type Cleaner struct {
	dropMissing filter.Module
	coerce      filter.Module
	dropInvalid filter.Module
	decade      filter.Module
}

// NewCleaner builds the cleaning chain for the ratings columns.
func NewCleaner() *Cleaner {
	coerce, err := filter.NewNumericFromConfig(filter.NumericConfig{
		Fields:  []string{ratings.FieldIMDBRating},
		Integer: []string{ratings.FieldReleasedYear},
	})
	if err != nil {
		// static configuration
		panic(err)
	}
	return &Cleaner{
		dropMissing: filter.NewDropMissingFromConfig(filter.DropMissingConfig{}),
		coerce:      coerce,
		dropInvalid: filter.NewDropMissingFromConfig(filter.DropMissingConfig{
			Fields: []string{ratings.FieldReleasedYear, ratings.FieldIMDBRating},
		}),
		decade: filter.NewDecadeFromConfig(filter.DecadeConfig{}),
	}
}

// Clean runs the chain over rows. The only possible error is context cancellation.
// rows are not modified.
func (c *Cleaner) Clean(ctx context.Context, rows []map[string]interface{}) (ratings.Dataset, ratings.CleanStats, error) {
	stats := ratings.CleanStats{RowsIn: len(rows)}

	complete, err := c.dropMissing.Process(ctx, rows)
	if err != nil {
		return ratings.Dataset{}, stats, err
	}
	stats.DroppedMissing = len(rows) - len(complete)

	coerced, err := c.coerce.Process(ctx, complete)
	if err != nil {
		return ratings.Dataset{}, stats, err
	}
	valid, err := c.dropInvalid.Process(ctx, coerced)
	if err != nil {
		return ratings.Dataset{}, stats, err
	}
	stats.DroppedNonNumeric = len(complete) - len(valid)

	annotated, err := c.decade.Process(ctx, valid)
	if err != nil {
		return ratings.Dataset{}, stats, fmt.Errorf("deriving decade: %w", err)
	}

	records := make([]ratings.Record, 0, len(annotated))
	for _, row := range annotated {
		records = append(records, toRecord(row))
	}
	stats.RowsOut = len(records)

	return ratings.NewDataset(records), stats, nil
}

// Clean cleans rows with a background context.
func Clean(rows []map[string]interface{}) (ratings.Dataset, ratings.CleanStats) {
	ds, stats, err := NewCleaner().Clean(context.Background(), rows)
	if err != nil {
		// unreachable without cancellation
		panic(err)
	}
	return ds, stats
}

// toRecord converts a cleaned row. Numeric columns are stored in Fields in
// canonical text form; Decade is derived and never stored.
func toRecord(row map[string]interface{}) ratings.Record {
	year, _ := filter.ToFloat(row[ratings.FieldReleasedYear])
	rating, _ := filter.ToFloat(row[ratings.FieldIMDBRating])

	rec := ratings.Record{
		Title:        text(row[ratings.FieldTitle]),
		ReleasedYear: int(year),
		IMDBRating:   rating,
		Genre:        text(row[ratings.FieldGenre]),
		Fields:       make(map[string]string, len(row)),
	}
	for k, v := range row {
		if k == ratings.FieldDecade {
			continue
		}
		rec.Fields[k] = text(v)
	}
	rec.Fields[ratings.FieldReleasedYear] = strconv.Itoa(rec.ReleasedYear)
	rec.Fields[ratings.FieldIMDBRating] = strconv.FormatFloat(rec.IMDBRating, 'f', -1, 64)
	return rec
}

func text(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
