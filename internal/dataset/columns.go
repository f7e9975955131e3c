package dataset

import (
	"fmt"
	"strings"

	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/internal/errhandling"
	"github.com/mkim101-spec/Imdb-Rating-Analysis-Visualization-and-statistical-analysis/pkg/ratings"
)

// RequiredColumns are the columns every analysis reads.
var RequiredColumns = []string{ratings.FieldReleasedYear, ratings.FieldIMDBRating, ratings.FieldGenre}

// RequireColumns returns a source error when rows is non-empty and no row carries
// one of the required columns. Gaps in individual rows are left to cleaning.
func RequireColumns(rows []map[string]interface{}) error {
	if len(rows) == 0 {
		return nil
	}

	var absent []string
	for _, col := range RequiredColumns {
		found := false
		for _, row := range rows {
			if _, ok := row[col]; ok {
				found = true
				break
			}
		}
		if !found {
			absent = append(absent, col)
		}
	}
	if len(absent) == 0 {
		return nil
	}
	return errhandling.NewSourceError("checking columns",
		fmt.Errorf("missing required column(s): %s", strings.Join(absent, ", ")))
}
