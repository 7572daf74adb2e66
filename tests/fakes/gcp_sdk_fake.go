package fakes

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// GCPSecretManagerAPI defines the interface for GCP Secret Manager operations
// This matches the subset of methods used by GCPSecretManagerSink
type GCPSecretManagerAPI interface {
	AddSecretVersion(ctx context.Context, req *secretmanagerpb.AddSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.SecretVersion, error)
	CreateSecret(ctx context.Context, req *secretmanagerpb.CreateSecretRequest, opts ...gax.CallOption) (*secretmanagerpb.Secret, error)
}

// FakeGCPSecretManagerClient is a mock implementation of GCPSecretManagerAPI
type FakeGCPSecretManagerClient struct {
	// Secrets maps full resource names (projects/X/secrets/Y) to their data
	Secrets map[string]*GCPSecretData
	// Errors maps resource names to errors to return
	Errors map[string]error
	// AddVersionCalls records every AddSecretVersion invocation in order
	AddVersionCalls []*secretmanagerpb.AddSecretVersionRequest
	// CreateCalls records every CreateSecret invocation in order
	CreateCalls []*secretmanagerpb.CreateSecretRequest
	// AddSecretVersionFunc allows custom behavior for AddSecretVersion
	AddSecretVersionFunc func(ctx context.Context, req *secretmanagerpb.AddSecretVersionRequest) (*secretmanagerpb.SecretVersion, error)
	// CreateSecretFunc allows custom behavior for CreateSecret
	CreateSecretFunc func(ctx context.Context, req *secretmanagerpb.CreateSecretRequest) (*secretmanagerpb.Secret, error)
}

// GCPSecretData holds the data for a mock GCP secret
type GCPSecretData struct {
	Name       string
	CreateTime *timestamppb.Timestamp
	Labels     map[string]string
	// Payloads holds every version payload added, oldest first
	Payloads [][]byte
}

// NewFakeGCPSecretManagerClient creates a new mock GCP Secret Manager client
func NewFakeGCPSecretManagerClient() *FakeGCPSecretManagerClient {
	return &FakeGCPSecretManagerClient{
		Secrets: make(map[string]*GCPSecretData),
		Errors:  make(map[string]error),
	}
}

// AddSecret registers an existing secret so AddSecretVersion succeeds
func (f *FakeGCPSecretManagerClient) AddSecret(projectID, secretName string) {
	fullName := fmt.Sprintf("projects/%s/secrets/%s", projectID, secretName)
	f.Secrets[fullName] = &GCPSecretData{
		Name:       fullName,
		CreateTime: timestamppb.New(time.Now()),
		Labels:     make(map[string]string),
	}
}

// AddError configures the mock to return an error for a specific resource
func (f *FakeGCPSecretManagerClient) AddError(resourceName string, err error) {
	f.Errors[resourceName] = err
}

// LatestPayload returns the most recently added payload for a secret, or nil
func (f *FakeGCPSecretManagerClient) LatestPayload(projectID, secretName string) []byte {
	fullName := fmt.Sprintf("projects/%s/secrets/%s", projectID, secretName)
	data, exists := f.Secrets[fullName]
	if !exists || len(data.Payloads) == 0 {
		return nil
	}
	return data.Payloads[len(data.Payloads)-1]
}

// AddSecretVersion mocks the AddSecretVersion operation
func (f *FakeGCPSecretManagerClient) AddSecretVersion(ctx context.Context, req *secretmanagerpb.AddSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.SecretVersion, error) {
	if f.AddSecretVersionFunc != nil {
		return f.AddSecretVersionFunc(ctx, req)
	}

	f.AddVersionCalls = append(f.AddVersionCalls, req)

	// Check for configured errors
	if err, exists := f.Errors[req.Parent]; exists {
		return nil, err
	}

	// Ensure secret exists
	data, exists := f.Secrets[req.Parent]
	if !exists {
		return nil, status.Errorf(codes.NotFound, "Secret %s not found", req.Parent)
	}

	data.Payloads = append(data.Payloads, req.Payload.Data)

	return &secretmanagerpb.SecretVersion{
		Name:       fmt.Sprintf("%s/versions/%d", req.Parent, len(data.Payloads)),
		CreateTime: timestamppb.New(time.Now()),
		State:      secretmanagerpb.SecretVersion_ENABLED,
	}, nil
}

// CreateSecret mocks the CreateSecret operation
func (f *FakeGCPSecretManagerClient) CreateSecret(ctx context.Context, req *secretmanagerpb.CreateSecretRequest, opts ...gax.CallOption) (*secretmanagerpb.Secret, error) {
	if f.CreateSecretFunc != nil {
		return f.CreateSecretFunc(ctx, req)
	}

	f.CreateCalls = append(f.CreateCalls, req)

	fullName := fmt.Sprintf("%s/secrets/%s", req.Parent, req.SecretId)

	// Check for configured errors
	if err, exists := f.Errors[fullName]; exists {
		return nil, err
	}

	if _, exists := f.Secrets[fullName]; exists {
		return nil, status.Errorf(codes.AlreadyExists, "Secret %s already exists", fullName)
	}

	data := &GCPSecretData{
		Name:       fullName,
		CreateTime: timestamppb.New(time.Now()),
		Labels:     make(map[string]string),
	}
	if req.Secret != nil {
		for k, v := range req.Secret.Labels {
			data.Labels[k] = v
		}
	}
	f.Secrets[fullName] = data

	return &secretmanagerpb.Secret{
		Name:       fullName,
		CreateTime: data.CreateTime,
		Labels:     data.Labels,
	}, nil
}

// GCP error helpers

// GCPNotFoundError creates a mock GCP not found error
func GCPNotFoundError(resourceName string) error {
	return status.Errorf(codes.NotFound, "Resource %s not found", resourceName)
}

// GCPPermissionDeniedError creates a mock GCP permission denied error
func GCPPermissionDeniedError(message string) error {
	return status.Error(codes.PermissionDenied, message)
}

// GCPUnauthenticatedError creates a mock GCP unauthenticated error
func GCPUnauthenticatedError(message string) error {
	return status.Error(codes.Unauthenticated, message)
}

// GCPResourceExhaustedError creates a mock GCP resource exhausted (throttled) error
func GCPResourceExhaustedError() error {
	return status.Errorf(codes.ResourceExhausted, "Quota exceeded")
}
