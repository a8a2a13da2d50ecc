package infra

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/rs/zerolog/log"
)

// LoadAWSConfig loads the default AWS credential chain for region. When endpoint
// is set (LocalStack in development) clients built by this package target it.
func LoadAWSConfig(ctx context.Context, region string) (sdkaws.Config, error) {
	opts := []func(*config.LoadOptions) error{}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return cfg, fmt.Errorf("aws: load config: %w", err)
	}
	log.Debug().Str("region", cfg.Region).Msg("aws config loaded")
	return cfg, nil
}
