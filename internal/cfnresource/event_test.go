package cfnresource_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/secretseed/internal/cfnresource"
)

// TestParseRequests validates property extraction from a full event
func TestParseRequests(t *testing.T) {
	t.Parallel()

	props := map[string]interface{}{
		"SecretArn": "arn:aws:secretsmanager:us-east-1:123456789012:secret:app/prod",
		"SecretKeys": []interface{}{
			map[string]interface{}{
				"name":                    "db_password",
				"length":                  float64(24),
				"excludeCharacters":       `"'\`,
				"excludePunctuation":      true,
				"requireEachIncludedType": true,
			},
			map[string]interface{}{
				"name":                 "api_credentials",
				"secretStringTemplate": `{"username":"admin"}`,
				"generateStringKey":    "password",
			},
		},
	}

	secretArn, requests, err := cfnresource.ParseRequests(props)
	require.NoError(t, err)

	assert.Equal(t, "arn:aws:secretsmanager:us-east-1:123456789012:secret:app/prod", secretArn)
	require.Len(t, requests, 2)

	assert.Equal(t, "db_password", requests[0].Name)
	assert.Equal(t, 24, requests[0].Length)
	assert.Equal(t, `"'\`, requests[0].Policy.ExcludeCharacters)
	assert.True(t, requests[0].Policy.ExcludePunctuation)
	assert.True(t, requests[0].RequireEachIncludedType)

	assert.Equal(t, "api_credentials", requests[1].Name)
	assert.Zero(t, requests[1].Length)
	assert.Equal(t, `{"username":"admin"}`, requests[1].SecretStringTemplate)
	assert.Equal(t, "password", requests[1].GenerateStringKey)
}

// TestParseRequestsStringifiedScalars validates the CloudFormation quirk
// of numbers and booleans arriving as strings
func TestParseRequestsStringifiedScalars(t *testing.T) {
	t.Parallel()

	props := map[string]interface{}{
		"SecretArn": "arn:aws:secretsmanager:us-east-1:123456789012:secret:app",
		"SecretKeys": []interface{}{
			map[string]interface{}{
				"name":                    "db_password",
				"length":                  "16",
				"excludeLowercase":        "false",
				"excludeNumbers":          "true",
				"includeSpace":            "true",
				"requireEachIncludedType": "true",
			},
		},
	}

	_, requests, err := cfnresource.ParseRequests(props)
	require.NoError(t, err)
	require.Len(t, requests, 1)

	assert.Equal(t, 16, requests[0].Length)
	assert.False(t, requests[0].Policy.ExcludeLowercase)
	assert.True(t, requests[0].Policy.ExcludeNumbers)
	assert.True(t, requests[0].Policy.IncludeSpace)
	assert.True(t, requests[0].RequireEachIncludedType)
}

// TestParseRequestsLengthAlias validates that length wins over its
// passwordLength alias when both are present
func TestParseRequestsLengthAlias(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		keyConfig  map[string]interface{}
		wantLength int
	}{
		{
			name:       "password_length_only",
			keyConfig:  map[string]interface{}{"name": "k", "passwordLength": float64(20)},
			wantLength: 20,
		},
		{
			name:       "length_wins_over_alias",
			keyConfig:  map[string]interface{}{"name": "k", "passwordLength": float64(20), "length": float64(12)},
			wantLength: 12,
		},
		{
			name:       "neither_defaults_to_zero",
			keyConfig:  map[string]interface{}{"name": "k"},
			wantLength: 0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			props := map[string]interface{}{
				"SecretArn":  "arn:aws:secretsmanager:us-east-1:123456789012:secret:app",
				"SecretKeys": []interface{}{tt.keyConfig},
			}

			_, requests, err := cfnresource.ParseRequests(props)
			require.NoError(t, err)
			require.Len(t, requests, 1)
			assert.Equal(t, tt.wantLength, requests[0].Length)
		})
	}
}

// TestParseRequestsInvalid validates rejection of malformed properties
func TestParseRequestsInvalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		props   map[string]interface{}
		wantErr string
	}{
		{
			name: "missing_secret_arn",
			props: map[string]interface{}{
				"SecretKeys": []interface{}{map[string]interface{}{"name": "k"}},
			},
			wantErr: "SecretArn",
		},
		{
			name: "missing_secret_keys",
			props: map[string]interface{}{
				"SecretArn": "arn:x",
			},
			wantErr: "SecretKeys",
		},
		{
			name: "empty_secret_keys",
			props: map[string]interface{}{
				"SecretArn":  "arn:x",
				"SecretKeys": []interface{}{},
			},
			wantErr: "SecretKeys",
		},
		{
			name: "key_entry_not_an_object",
			props: map[string]interface{}{
				"SecretArn":  "arn:x",
				"SecretKeys": []interface{}{"db_password"},
			},
			wantErr: "SecretKeys[0]",
		},
		{
			name: "key_without_name",
			props: map[string]interface{}{
				"SecretArn":  "arn:x",
				"SecretKeys": []interface{}{map[string]interface{}{"length": float64(8)}},
			},
			wantErr: "name is required",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := cfnresource.ParseRequests(tt.props)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
