package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movieRows() []map[string]interface{} {
	return []map[string]interface{}{
		{"Series_Title": "The Shawshank Redemption", "Released_Year": "1994", "IMDB_Rating": "9.3", "Genre": "Drama"},
		{"Series_Title": "The Dark Knight", "Released_Year": "2008", "IMDB_Rating": "9.0", "Genre": "Action, Crime, Drama"},
		{"Series_Title": "Spirited Away", "Released_Year": "2001", "IMDB_Rating": "8.6", "Genre": "Animation, Adventure, Family"},
		{"Series_Title": "Unknown", "Released_Year": nil, "IMDB_Rating": "7.9", "Genre": "Drama"},
	}
}

func titles(records []map[string]interface{}) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r["Series_Title"].(string))
	}
	return out
}

func TestNewConditionFromConfig(t *testing.T) {
	_, err := NewConditionFromConfig(ConditionConfig{Expression: "   "})
	assert.ErrorIs(t, err, ErrEmptyExpression)

	_, err = NewConditionFromConfig(ConditionConfig{Expression: "Genre =="})
	assert.ErrorIs(t, err, ErrInvalidExpression)

	m, err := NewConditionFromConfig(ConditionConfig{Expression: "true", OnError: "explode"})
	require.NoError(t, err)
	assert.Equal(t, OnErrorFail, m.onError)
}

func TestParseConditionConfig(t *testing.T) {
	_, err := ParseConditionConfig(map[string]interface{}{"expression": 42})
	assert.Error(t, err)

	cfg, err := ParseConditionConfig(map[string]interface{}{
		"expression": `Genre contains "Drama"`,
		"negate":     true,
		"onError":    "skip",
	})
	require.NoError(t, err)
	assert.True(t, cfg.Negate)
	assert.Equal(t, OnErrorSkip, cfg.OnError)
}

func TestCondition_Process(t *testing.T) {
	tests := []struct {
		name   string
		config ConditionConfig
		want   []string
	}{
		{
			name:   "substring match",
			config: ConditionConfig{Expression: `Genre contains "Drama"`},
			want:   []string{"The Shawshank Redemption", "The Dark Knight", "Unknown"},
		},
		{
			name:   "negated",
			config: ConditionConfig{Expression: `Genre contains "Animation"`, Negate: true},
			want:   []string{"The Shawshank Redemption", "The Dark Knight", "Unknown"},
		},
		{
			name:   "nil check on missing value",
			config: ConditionConfig{Expression: `Released_Year != nil`},
			want:   []string{"The Shawshank Redemption", "The Dark Knight", "Spirited Away"},
		},
		{
			name:   "undefined column is nil",
			config: ConditionConfig{Expression: `Runtime == nil`},
			want:   []string{"The Shawshank Redemption", "The Dark Knight", "Spirited Away", "Unknown"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewConditionFromConfig(tt.config)
			require.NoError(t, err)

			out, err := m.Process(context.Background(), movieRows())
			require.NoError(t, err)
			assert.Equal(t, tt.want, titles(out))
		})
	}
}

func TestCondition_OnError(t *testing.T) {
	expression := `int(Released_Year) >= 2000`

	t.Run("fail", func(t *testing.T) {
		m, err := NewConditionFromConfig(ConditionConfig{Expression: expression})
		require.NoError(t, err)

		_, err = m.Process(context.Background(), movieRows())
		var condErr *ConditionError
		require.True(t, errors.As(err, &condErr))
		assert.Equal(t, ErrCodeEvaluationFailed, condErr.Code)
		assert.Equal(t, 3, condErr.RecordIndex)
	})

	t.Run("skip", func(t *testing.T) {
		m, err := NewConditionFromConfig(ConditionConfig{Expression: expression, OnError: OnErrorSkip})
		require.NoError(t, err)

		out, err := m.Process(context.Background(), movieRows())
		require.NoError(t, err)
		assert.Equal(t, []string{"The Dark Knight", "Spirited Away"}, titles(out))
	})

	t.Run("log keeps the record", func(t *testing.T) {
		m, err := NewConditionFromConfig(ConditionConfig{Expression: expression, OnError: OnErrorLog})
		require.NoError(t, err)

		out, err := m.Process(context.Background(), movieRows())
		require.NoError(t, err)
		assert.Equal(t, []string{"The Dark Knight", "Spirited Away", "Unknown"}, titles(out))
	})
}

func TestToBool(t *testing.T) {
	assert.False(t, toBool(nil))
	assert.False(t, toBool(0))
	assert.False(t, toBool(""))
	assert.True(t, toBool("x"))
	assert.True(t, toBool(1.5))
	assert.True(t, toBool([]int{}))
}
