package secretgen

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBatch(t *testing.T) {
	t.Parallel()

	requests := []Request{
		{Name: "db_password", Length: 24, Policy: Policy{ExcludePunctuation: true}, RequireEachIncludedType: true},
		{Name: "api_key", Length: 40},
		{Name: "session_secret", Length: 64, Policy: Policy{ExcludeCharacters: "'\"\\"}},
	}

	values, err := GenerateBatch(requests)
	require.NoError(t, err)
	require.Len(t, values, 3)

	assert.Len(t, values["db_password"], 24)
	assert.Len(t, values["api_key"], 40)
	assert.Len(t, values["session_secret"], 64)

	// Each entry honors its own policy.
	for _, r := range values["db_password"] {
		assert.False(t, strings.ContainsRune(PunctuationChars, r))
	}
	for _, r := range "'\"\\" {
		assert.NotContains(t, values["session_secret"], string(r))
	}
}

func TestGenerateBatchFirstErrorAborts(t *testing.T) {
	t.Parallel()

	requests := []Request{
		{Name: "good", Length: 16},
		{Name: "bad", Length: -1},
		{Name: "never_reached", Length: 16},
	}

	values, err := GenerateBatch(requests)
	require.Error(t, err)
	assert.Nil(t, values)
	assert.Contains(t, err.Error(), `"bad"`)

	var lengthErr InvalidLengthError
	assert.True(t, errors.As(err, &lengthErr))
}

func TestGenerateBatchDuplicateName(t *testing.T) {
	t.Parallel()

	requests := []Request{
		{Name: "token", Length: 16},
		{Name: "token", Length: 32},
	}

	values, err := GenerateBatch(requests)
	require.Error(t, err)
	assert.Nil(t, values)

	var dupErr DuplicateNameError
	require.True(t, errors.As(err, &dupErr))
	assert.Equal(t, "token", dupErr.Name)
}

func TestGenerateBatchMissingName(t *testing.T) {
	t.Parallel()

	values, err := GenerateBatch([]Request{{Length: 16}})
	require.Error(t, err)
	assert.Nil(t, values)
	assert.Contains(t, err.Error(), "name is required")
}

func TestGenerateBatchEmpty(t *testing.T) {
	t.Parallel()

	values, err := GenerateBatch(nil)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestGenerateBatchTemplateMerge(t *testing.T) {
	t.Parallel()

	requests := []Request{
		{
			Name:                 "rds_credentials",
			Length:               20,
			SecretStringTemplate: `{"username":"admin"}`,
			GenerateStringKey:    "password",
		},
	}

	values, err := GenerateBatch(requests)
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(values["rds_credentials"]), &decoded))
	assert.Equal(t, "admin", decoded["username"])
	assert.Len(t, decoded["password"], 20)
}

func TestGenerateBatchMalformedTemplateDegrades(t *testing.T) {
	t.Parallel()

	requests := []Request{
		{
			Name:                 "broken_template",
			Length:               18,
			SecretStringTemplate: "{not json",
			GenerateStringKey:    "password",
		},
		{Name: "plain", Length: 12},
	}

	values, err := GenerateBatch(requests)
	require.NoError(t, err)
	require.Len(t, values, 2)

	// The malformed template falls back to the raw 18 character value
	// instead of failing the batch. A merged result would be longer than
	// the raw value.
	assert.Len(t, values["broken_template"], 18)
	assert.Len(t, values["plain"], 12)
}
