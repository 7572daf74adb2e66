package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/systmms/secretseed/internal/cfnresource"
	"github.com/systmms/secretseed/internal/logging"
)

func main() {
	// CloudWatch Logs strips no ANSI codes, so color is always off.
	logger := logging.New(os.Getenv("SECRETSEED_DEBUG") == "true", true)

	// One client per container, built at cold start. The Lambda runtime
	// supplies region and credentials through the environment.
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Error("Loading AWS configuration: %v", err)
		os.Exit(1)
	}

	handler := cfnresource.New(
		logger,
		cfnresource.WithSecretsManagerClient(secretsmanager.NewFromConfig(awsCfg)),
	)

	lambda.Start(cfn.LambdaWrap(handler.Handle))
}
