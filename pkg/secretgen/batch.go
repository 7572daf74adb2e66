package secretgen

import "fmt"

// GenerateBatch produces a value for every request, in order, and returns
// the name to value mapping. The first failure aborts the whole batch and
// no partial mapping is returned, so a caller can treat a non-nil result as
// complete. Requests sharing a name fail with DuplicateNameError rather
// than overwriting each other.
func GenerateBatch(requests []Request) (map[string]string, error) {
	values := make(map[string]string, len(requests))

	for i, req := range requests {
		if req.Name == "" {
			return nil, fmt.Errorf("request %d: name is required", i)
		}
		if _, exists := values[req.Name]; exists {
			return nil, DuplicateNameError{Name: req.Name}
		}

		value, err := Generate(req)
		if err != nil {
			return nil, fmt.Errorf("generating %q: %w", req.Name, err)
		}

		values[req.Name] = MergeTemplate(req.SecretStringTemplate, req.GenerateStringKey, value)
	}

	return values, nil
}
