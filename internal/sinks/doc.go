// Package sinks delivers generated secret values to their destinations.
//
// A sink is one configured destination: an AWS Secrets Manager secret, an
// SSM parameter path, a GCP or Azure secret store, an Akeyless path, the
// OS keyring, a database role, or a local file. Sinks are created from
// configuration through the Registry and share two operations:
//
//   - Write delivers a full generation batch. Batch orchestration
//     guarantees every value was generated before any sink sees it, so a
//     Write failure never leaves the run half-generated, only
//     half-delivered.
//   - Check probes connectivity and credentials without writing secret
//     material. The doctor command runs Check across all configured sinks.
//
// Combined versus per-key layout differs by destination. AWS Secrets
// Manager and JSON files store the whole batch as one JSON document;
// SSM, GCP, Azure, Akeyless, and the keyring store one entry per secret
// name. The database sink is a consumer rather than a store: it applies
// configured SQL statements with the generated values.
package sinks
