package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRemoveConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  map[string]interface{}
		wantErr bool
	}{
		{"missing target and targets", map[string]interface{}{}, true},
		{"empty target", map[string]interface{}{"target": ""}, true},
		{"target is not a string", map[string]interface{}{"target": 123}, true},
		{"targets with only empty strings", map[string]interface{}{"targets": []interface{}{"", ""}}, true},
		{"single target", map[string]interface{}{"target": "Gross"}, false},
		{"targets array", map[string]interface{}{"targets": []interface{}{"Gross", "Meta_score"}}, false},
		{"both", map[string]interface{}{"target": "Gross", "targets": []interface{}{"Certificate"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRemoveConfig(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRemove_DedupesTargets(t *testing.T) {
	m, err := NewRemoveFromConfig(RemoveConfig{Target: "Gross", Targets: []string{"Gross", "", "Meta_score"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gross", "Meta_score"}, m.targets)

	_, err = NewRemoveFromConfig(RemoveConfig{})
	assert.Error(t, err)
}

// Removing sparse columns before missing-value cleaning keeps rows whose only
// gaps are in those columns.
func TestRemove_BeforeDropMissing(t *testing.T) {
	records := []map[string]interface{}{
		{"Genre": "Drama", "IMDB_Rating": "9.3", "Gross": nil},
		{"Genre": "Crime", "IMDB_Rating": "9.2", "Gross": "134,966,411"},
	}

	m, err := NewRemoveFromConfig(RemoveConfig{Target: "Gross"})
	require.NoError(t, err)

	out, err := m.Process(context.Background(), records)
	require.NoError(t, err)
	out, err = NewDropMissingFromConfig(DropMissingConfig{}).Process(context.Background(), out)
	require.NoError(t, err)

	assert.Len(t, out, 2)
	assert.NotContains(t, out[0], "Gross")
	assert.Contains(t, records[0], "Gross", "input rows are not modified")
}

func TestRemove_MissingColumnIsNoop(t *testing.T) {
	m, err := NewRemoveFromConfig(RemoveConfig{Target: "Absent"})
	require.NoError(t, err)

	out, err := m.Process(context.Background(), []map[string]interface{}{{"Genre": "Drama"}, nil})
	require.NoError(t, err)
	assert.Equal(t, []map[string]interface{}{{"Genre": "Drama"}, nil}, out)
}
