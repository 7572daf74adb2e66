package secretgen

import "encoding/json"

// MergeTemplate injects value into the JSON object encoded by templateJSON
// under key and returns the re-serialized object. When templateJSON or key
// is empty, or the template does not decode to a JSON object, the raw value
// is returned unchanged: a broken template degrades one entry, it never
// fails a batch.
func MergeTemplate(templateJSON, key, value string) string {
	if templateJSON == "" || key == "" {
		return value
	}

	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(templateJSON), &obj); err != nil {
		return value
	}
	// "null" decodes into a nil map without error.
	if obj == nil {
		return value
	}

	obj[key] = value

	merged, err := json.Marshal(obj)
	if err != nil {
		return value
	}
	return string(merged)
}
