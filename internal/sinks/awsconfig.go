package sinks

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// awsClientConfig holds the connection options shared by the AWS
// Secrets Manager and SSM sinks.
type awsClientConfig struct {
	Region          string
	Profile         string
	AssumeRole      string
	RoleSessionName string
	ExternalID      string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// parseAWSClientConfig extracts the shared AWS options from a sink
// configuration map.
func parseAWSClientConfig(configMap map[string]interface{}) awsClientConfig {
	cfg := awsClientConfig{
		RoleSessionName: "secretseed",
	}

	if region, ok := configMap["region"].(string); ok {
		cfg.Region = region
	}
	if profile, ok := configMap["profile"].(string); ok {
		cfg.Profile = profile
	}
	if role, ok := configMap["assume_role"].(string); ok {
		cfg.AssumeRole = role
	}
	if sessionName, ok := configMap["role_session_name"].(string); ok && sessionName != "" {
		cfg.RoleSessionName = sessionName
	}
	if externalID, ok := configMap["external_id"].(string); ok {
		cfg.ExternalID = externalID
	}
	if endpoint, ok := configMap["endpoint"].(string); ok {
		cfg.Endpoint = endpoint
	}
	if accessKey, ok := configMap["access_key_id"].(string); ok {
		cfg.AccessKeyID = accessKey
	}
	if secretKey, ok := configMap["secret_access_key"].(string); ok {
		cfg.SecretAccessKey = secretKey
	}

	return cfg
}

// loadAWSConfig builds an aws.Config from the sink options. When
// assume_role is set the returned config carries STS-derived temporary
// credentials for that role.
func loadAWSConfig(ctx context.Context, cfg awsClientConfig) (aws.Config, error) {
	var configOpts []func(*awsconfig.LoadOptions) error

	if cfg.Region != "" {
		configOpts = append(configOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		configOpts = append(configOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	// Static credentials are for LocalStack and testing only.
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		configOpts = append(configOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if cfg.AssumeRole != "" {
		stsClient := sts.NewFromConfig(awsCfg)
		provider := stscreds.NewAssumeRoleProvider(stsClient, cfg.AssumeRole, func(o *stscreds.AssumeRoleOptions) {
			o.RoleSessionName = cfg.RoleSessionName
			if cfg.ExternalID != "" {
				o.ExternalID = aws.String(cfg.ExternalID)
			}
		})
		awsCfg.Credentials = aws.NewCredentialsCache(provider)
	}

	return awsCfg, nil
}
