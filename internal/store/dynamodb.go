package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/MKhiriev/go-secret-keeper/internal/config"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
)

// NewConnectDynamoDB builds a client from the default AWS credential chain.
// The table must already exist with "pk" (S) as partition key and "sk" (B)
// as sort key.
func NewConnectDynamoDB(ctx context.Context, cfg config.DynamoDB, log *logger.Logger) (*dynamodb.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		log.Err(err).Str("func", "NewConnectDynamoDB").Msg("error loading aws config")
		return nil, fmt.Errorf("error loading aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	// check the table is reachable
	if _, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(cfg.Table)}); err != nil {
		log.Err(err).Str("func", "NewConnectDynamoDB").Str("table", cfg.Table).Msg("error describing table")
		return nil, fmt.Errorf("error connecting dynamodb: %w", err)
	}
	log.Info().Str("func", "NewConnectDynamoDB").Str("table", cfg.Table).Msg("connected to dynamodb successfully")

	return client, nil
}
