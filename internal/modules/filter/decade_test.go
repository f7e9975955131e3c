package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecade_Process(t *testing.T) {
	records := []map[string]interface{}{
		{"Released_Year": 1994},
		{"Released_Year": 2000},
		{"Released_Year": 2019.0},
		{"Released_Year": -5},
	}

	out, err := NewDecadeFromConfig(DecadeConfig{}).Process(context.Background(), records)
	require.NoError(t, err)

	want := []int{1990, 2000, 2010, -10}
	for i, w := range want {
		assert.Equal(t, w, out[i]["Decade"])
		year, _ := ToFloat(out[i]["Released_Year"])
		assert.LessOrEqual(t, float64(w), year)
	}
	_, present := records[0]["Decade"]
	assert.False(t, present, "input rows are not modified")
}

func TestDecade_CustomColumns(t *testing.T) {
	m := NewDecadeFromConfig(ParseDecadeConfig(map[string]interface{}{"source": "year", "target": "bucket"}))
	out, err := m.Process(context.Background(), []map[string]interface{}{{"year": "1957"}})
	require.NoError(t, err)
	assert.Equal(t, 1950, out[0]["bucket"])
}

func TestDecade_RejectsNonWholeYear(t *testing.T) {
	_, err := NewDecadeFromConfig(DecadeConfig{}).Process(context.Background(), []map[string]interface{}{
		{"Released_Year": "PG"},
	})
	assert.Error(t, err)
}
