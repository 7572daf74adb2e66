package secretgen

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeTemplate(t *testing.T) {
	t.Parallel()

	merged := MergeTemplate(`{"username":"admin"}`, "password", "s3cret")

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(merged), &decoded))
	assert.Equal(t, "admin", decoded["username"])
	assert.Equal(t, "s3cret", decoded["password"])
}

func TestMergeTemplateOverwritesExistingKey(t *testing.T) {
	t.Parallel()

	merged := MergeTemplate(`{"password":"placeholder","host":"db"}`, "password", "fresh")

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(merged), &decoded))
	assert.Equal(t, "fresh", decoded["password"])
	assert.Equal(t, "db", decoded["host"])
}

func TestMergeTemplateFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		template string
		key      string
	}{
		{"malformed_json", "{not json", "password"},
		{"json_array", "[1,2,3]", "password"},
		{"json_string", `"just a string"`, "password"},
		{"json_null", "null", "password"},
		{"empty_template", "", "password"},
		{"empty_key", `{"username":"admin"}`, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// Degrades to the raw value, never errors.
			assert.Equal(t, "raw-value", MergeTemplate(tt.template, tt.key, "raw-value"))
		})
	}
}

func TestMergeTemplateNestedValuesPreserved(t *testing.T) {
	t.Parallel()

	merged := MergeTemplate(`{"engine":"postgres","port":5432,"opts":{"ssl":true}}`, "password", "pw")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(merged), &decoded))
	assert.Equal(t, "postgres", decoded["engine"])
	assert.Equal(t, float64(5432), decoded["port"])
	assert.Equal(t, map[string]interface{}{"ssl": true}, decoded["opts"])
	assert.Equal(t, "pw", decoded["password"])
}
