package cfnresource

import (
	"fmt"
	"strconv"

	"github.com/systmms/secretseed/pkg/secretgen"
)

// ParseRequests extracts the target secret ARN and the per-key generation
// requests from a custom resource event's ResourceProperties.
//
// Properties arrive as the untyped JSON CloudFormation sends: SecretArn is
// a string, SecretKeys a list of objects with camelCase fields. Scalar
// values inside SecretKeys are coerced leniently because CloudFormation
// stringifies numbers and booleans ("32", "true") on their way through a
// template, while direct invocations carry JSON-native types.
func ParseRequests(props map[string]interface{}) (string, []secretgen.Request, error) {
	secretArn, _ := coerceString(props["SecretArn"])
	if secretArn == "" {
		return "", nil, fmt.Errorf("ResourceProperties.SecretArn is required")
	}

	rawKeys, ok := props["SecretKeys"].([]interface{})
	if !ok {
		return "", nil, fmt.Errorf("ResourceProperties.SecretKeys must be a list")
	}
	if len(rawKeys) == 0 {
		return "", nil, fmt.Errorf("ResourceProperties.SecretKeys must not be empty")
	}

	requests := make([]secretgen.Request, 0, len(rawKeys))
	for i, rawKey := range rawKeys {
		keyConfig, ok := rawKey.(map[string]interface{})
		if !ok {
			return "", nil, fmt.Errorf("SecretKeys[%d] must be an object", i)
		}

		req, err := parseKeyConfig(keyConfig)
		if err != nil {
			return "", nil, fmt.Errorf("SecretKeys[%d]: %w", i, err)
		}
		requests = append(requests, req)
	}

	return secretArn, requests, nil
}

func parseKeyConfig(keyConfig map[string]interface{}) (secretgen.Request, error) {
	name, _ := coerceString(keyConfig["name"])
	if name == "" {
		return secretgen.Request{}, fmt.Errorf("name is required")
	}

	req := secretgen.Request{Name: name}

	// passwordLength is the documented alias; length wins when both are set.
	if length, ok := coerceInt(keyConfig["passwordLength"]); ok {
		req.Length = length
	}
	if length, ok := coerceInt(keyConfig["length"]); ok {
		req.Length = length
	}

	req.Policy.ExcludeCharacters, _ = coerceString(keyConfig["excludeCharacters"])
	req.Policy.ExcludeLowercase, _ = coerceBool(keyConfig["excludeLowercase"])
	req.Policy.ExcludeUppercase, _ = coerceBool(keyConfig["excludeUppercase"])
	req.Policy.ExcludeNumbers, _ = coerceBool(keyConfig["excludeNumbers"])
	req.Policy.ExcludePunctuation, _ = coerceBool(keyConfig["excludePunctuation"])
	req.Policy.IncludeSpace, _ = coerceBool(keyConfig["includeSpace"])
	req.RequireEachIncludedType, _ = coerceBool(keyConfig["requireEachIncludedType"])
	req.SecretStringTemplate, _ = coerceString(keyConfig["secretStringTemplate"])
	req.GenerateStringKey, _ = coerceString(keyConfig["generateStringKey"])

	return req, nil
}

func coerceString(v interface{}) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func coerceInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func coerceBool(v interface{}) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}
