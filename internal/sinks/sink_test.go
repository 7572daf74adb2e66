package sinks_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/secretseed/internal/sinks"
)

// TestNewBatch validates batch construction from names and values
func TestNewBatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		names     []string
		values    map[string]string
		wantNames []string
		wantLen   int
	}{
		{
			name:      "all_names_present",
			names:     []string{"db_password", "api_key"},
			values:    map[string]string{"db_password": "a", "api_key": "b"},
			wantNames: []string{"db_password", "api_key"},
			wantLen:   2,
		},
		{
			name:      "missing_value_dropped",
			names:     []string{"db_password", "ghost"},
			values:    map[string]string{"db_password": "a"},
			wantNames: []string{"db_password"},
			wantLen:   1,
		},
		{
			name:      "empty_batch",
			names:     nil,
			values:    map[string]string{},
			wantNames: []string{},
			wantLen:   0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			batch := sinks.NewBatch(tt.names, tt.values)
			assert.Equal(t, tt.wantNames, batch.Names)
			assert.Equal(t, tt.wantLen, batch.Len())
		})
	}
}

// TestBatchPreservesOrder validates that batch order follows the input
// name order, not map iteration order
func TestBatchPreservesOrder(t *testing.T) {
	t.Parallel()

	names := []string{"zebra", "alpha", "middle"}
	values := map[string]string{
		"alpha":  "1",
		"middle": "2",
		"zebra":  "3",
	}

	batch := sinks.NewBatch(names, values)
	assert.Equal(t, []string{"zebra", "alpha", "middle"}, batch.Names)
}

// TestBatchCombinedJSON validates the single-document rendering
func TestBatchCombinedJSON(t *testing.T) {
	t.Parallel()

	batch := sinks.NewBatch(
		[]string{"db_password", "api_key"},
		map[string]string{
			"db_password": "p@ss",
			"api_key":     "key123",
		},
	)

	data, err := batch.CombinedJSON()
	require.NoError(t, err)

	var doc map[string]string
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "p@ss", doc["db_password"])
	assert.Equal(t, "key123", doc["api_key"])
	assert.Len(t, doc, 2)
}

// TestBatchCombinedJSONEmpty validates an empty batch renders as an
// empty JSON object
func TestBatchCombinedJSONEmpty(t *testing.T) {
	t.Parallel()

	batch := sinks.NewBatch(nil, nil)
	data, err := batch.CombinedJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}
