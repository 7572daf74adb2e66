// Package fakes provides test doubles for secretseed sink client interfaces.
//
// This package contains fake implementations of external client interfaces
// that allow unit testing of sinks without real service dependencies.
// Fakes are manually implemented (not generated) to provide precise control
// over test behavior.
//
// Usage:
//
//	fake := fakes.NewFakeSecretsManagerClient()
//	fake.AddSecret("myapp/secrets")
//	sink, err := sinks.NewAWSSecretsManagerSink("prod", cfg,
//	    sinks.WithSecretsManagerClient(fake))
//	// Test sink methods, then inspect fake.UpdateCalls...
package fakes
