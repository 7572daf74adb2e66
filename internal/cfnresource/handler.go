// Package cfnresource implements the CloudFormation custom resource that
// populates an existing AWS Secrets Manager secret with freshly generated
// values.
//
// Create and Update events generate one value per configured key and write
// the whole mapping as a single JSON document through UpdateSecret. Delete
// events acknowledge without touching the store; the secret itself belongs
// to the stack and is cleaned up by CloudFormation, not by this resource.
package cfnresource

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/cfn"

	"github.com/systmms/secretseed/internal/logging"
	"github.com/systmms/secretseed/internal/sinks"
	"github.com/systmms/secretseed/pkg/secretgen"
)

// physicalResourceIDPrefix namespaces the populator's resource ID so it can
// never collide with the secret's own ID in the same stack.
const physicalResourceIDPrefix = "secret-populator-"

// Handler processes custom resource events for one Lambda process.
type Handler struct {
	logger *logging.Logger
	client sinks.SecretsManagerClientAPI
	region string
}

// Option is a functional option for configuring the handler.
type Option func(*Handler)

// WithSecretsManagerClient sets the Secrets Manager client. The Lambda
// entrypoint injects a process-wide client built at cold start; tests
// inject fakes.
func WithSecretsManagerClient(client sinks.SecretsManagerClientAPI) Option {
	return func(h *Handler) {
		h.client = client
	}
}

// WithRegion overrides the region for the store client when no client is
// injected.
func WithRegion(region string) Option {
	return func(h *Handler) {
		h.region = region
	}
}

// New creates a handler.
func New(logger *logging.Logger, opts ...Option) *Handler {
	h := &Handler{logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle is the cfn.CustomResourceFunction for the populator. Errors
// surface to CloudFormation as a FAILED response; generated values appear
// in neither the response nor the logs.
func (h *Handler) Handle(ctx context.Context, event cfn.Event) (string, map[string]interface{}, error) {
	h.logger.Debug("Handling %s for %s", event.RequestType, event.LogicalResourceID)

	switch event.RequestType {
	case cfn.RequestCreate, cfn.RequestUpdate:
		return h.populate(ctx, event)

	case cfn.RequestDelete:
		// Nothing to clean up; echo the ID so CloudFormation does not
		// mistake the response for a replacement.
		return event.PhysicalResourceID, nil, nil

	default:
		return event.PhysicalResourceID, nil, fmt.Errorf("unknown request type: %s", event.RequestType)
	}
}

func (h *Handler) populate(ctx context.Context, event cfn.Event) (string, map[string]interface{}, error) {
	secretArn, requests, err := ParseRequests(event.ResourceProperties)
	if err != nil {
		return "", nil, err
	}

	// Generation happens entirely before the store write, so a failing
	// key leaves the existing secret value untouched.
	values, err := secretgen.GenerateBatch(requests)
	if err != nil {
		return "", nil, err
	}

	names := make([]string, 0, len(requests))
	for _, req := range requests {
		names = append(names, req.Name)
	}

	sink, err := h.newSink(secretArn)
	if err != nil {
		return "", nil, err
	}

	if err := sink.Write(ctx, sinks.NewBatch(names, values)); err != nil {
		return "", nil, err
	}

	h.logger.Info("Populated %d values into secret", len(names))

	return physicalResourceIDPrefix + secretArn, map[string]interface{}{
		"SecretArn": secretArn,
		"Success":   true,
	}, nil
}

func (h *Handler) newSink(secretArn string) (sinks.Sink, error) {
	sinkConfig := map[string]interface{}{"secret_id": secretArn}
	if h.region != "" {
		sinkConfig["region"] = h.region
	}

	var opts []sinks.SecretsManagerSinkOption
	if h.client != nil {
		opts = append(opts, sinks.WithSecretsManagerClient(h.client))
	}
	return sinks.NewAWSSecretsManagerSink("secretsmanager", sinkConfig, opts...)
}
