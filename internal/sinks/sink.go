package sinks

import (
	"context"
	"encoding/json"
	"fmt"
)

// Batch carries the output of one generation run. Names preserves the
// configuration order so per-key sinks write deterministically; Values
// maps each secret name to its final payload, either the raw generated
// string or the template-merged JSON document.
type Batch struct {
	Names  []string
	Values map[string]string
}

// NewBatch builds a batch from an ordered name list and the generated
// values. Names missing from values are dropped.
func NewBatch(names []string, values map[string]string) Batch {
	kept := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := values[name]; ok {
			kept = append(kept, name)
		}
	}
	return Batch{Names: kept, Values: values}
}

// Len returns the number of secrets in the batch.
func (b Batch) Len() int {
	return len(b.Names)
}

// CombinedJSON renders the whole batch as a single JSON object mapping
// secret names to payload strings. Keys are emitted in sorted order.
func (b Batch) CombinedJSON() ([]byte, error) {
	doc := make(map[string]string, len(b.Names))
	for _, name := range b.Names {
		doc[name] = b.Values[name]
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding batch: %w", err)
	}
	return data, nil
}

// Sink is one configured destination for generated secrets.
type Sink interface {
	// Name returns the configuration name of the sink, e.g. "prod".
	Name() string

	// Type returns the registered sink type, e.g. "aws.secretsmanager".
	Type() string

	// Write delivers the batch to the destination.
	Write(ctx context.Context, batch Batch) error

	// Check probes connectivity and credentials without writing any
	// secret material.
	Check(ctx context.Context) error
}
