package ratings

import (
	"sort"
	"strings"
)

// Record is one cleaned movie.
type Record struct {
	Title        string  `json:"title,omitempty"`
	ReleasedYear int     `json:"releasedYear"`
	IMDBRating   float64 `json:"imdbRating"`
	Genre        string  `json:"genre"`

	// Fields holds every source column as text, numeric columns in their
	// canonical form. It never contains FieldDecade.
	Fields map[string]string `json:"-"`
}

// Decade returns floor(year/10)*10.
func (r Record) Decade() int {
	return FloorDecade(r.ReleasedYear)
}

// FloorDecade buckets a year into its decade, flooring toward minus infinity.
func FloorDecade(year int) int {
	d := year / 10
	if year%10 != 0 && year < 0 {
		d--
	}
	return d * 10
}

// Dataset is an ordered collection of cleaned records.
// It is immutable once constructed; accessors return copies.
type Dataset struct {
	records []Record
}

// NewDataset builds a dataset from records, copying the slice and field maps.
func NewDataset(records []Record) Dataset {
	out := make([]Record, len(records))
	for i, r := range records {
		out[i] = r
		if r.Fields != nil {
			fields := make(map[string]string, len(r.Fields))
			for k, v := range r.Fields {
				fields[k] = v
			}
			out[i].Fields = fields
		}
	}
	return Dataset{records: out}
}

// Len returns the number of records.
func (d Dataset) Len() int {
	return len(d.records)
}

// Records returns a copy of the records.
func (d Dataset) Records() []Record {
	out := make([]Record, len(d.records))
	copy(out, d.records)
	return out
}

// Years returns the release years as floats, in record order.
func (d Dataset) Years() []float64 {
	out := make([]float64, len(d.records))
	for i, r := range d.records {
		out[i] = float64(r.ReleasedYear)
	}
	return out
}

// Ratings returns the ratings in record order.
func (d Dataset) Ratings() []float64 {
	out := make([]float64, len(d.records))
	for i, r := range d.records {
		out[i] = r.IMDBRating
	}
	return out
}

// ByDecade groups ratings by decade.
func (d Dataset) ByDecade() map[int][]float64 {
	groups := make(map[int][]float64)
	for _, r := range d.records {
		dec := r.Decade()
		groups[dec] = append(groups[dec], r.IMDBRating)
	}
	return groups
}

// Decades returns the distinct decades in ascending order.
func (d Dataset) Decades() []int {
	groups := d.ByDecade()
	out := make([]int, 0, len(groups))
	for dec := range groups {
		out = append(out, dec)
	}
	sort.Ints(out)
	return out
}

// GenreRatings returns the ratings of records whose genre text contains name.
// Matching is case-sensitive and a record may belong to several genres.
func (d Dataset) GenreRatings(name string) []float64 {
	var out []float64
	for _, r := range d.records {
		if strings.Contains(r.Genre, name) {
			out = append(out, r.IMDBRating)
		}
	}
	return out
}

// ExactGenreRatings returns the ratings of records whose genre text equals name.
func (d Dataset) ExactGenreRatings(name string) []float64 {
	var out []float64
	for _, r := range d.records {
		if r.Genre == name {
			out = append(out, r.IMDBRating)
		}
	}
	return out
}

// Rows converts the dataset back to raw rows holding the source text of every field.
// Cleaning the returned rows yields an equal dataset.
func (d Dataset) Rows() []map[string]interface{} {
	rows := make([]map[string]interface{}, len(d.records))
	for i, r := range d.records {
		row := make(map[string]interface{}, len(r.Fields))
		for k, v := range r.Fields {
			row[k] = v
		}
		rows[i] = row
	}
	return rows
}
