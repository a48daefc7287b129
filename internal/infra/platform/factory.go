// Where: cli/internal/infra/platform/factory.go
// What: Management API client factory.
// Why: Encapsulate SDK configuration for the function platform endpoint.
package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awscredentials "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/poruru/bsam-cli/internal/domain/function"
	"github.com/poruru/bsam-cli/internal/infra/credentials"
	log "github.com/sirupsen/logrus"
)

// DefaultRegion is used when neither the config nor the credential store names one.
const DefaultRegion = "bj"

var errEndpointRequired = errors.New("platform endpoint is required")

// Settings carry the non-secret client configuration.
type Settings struct {
	Endpoint string
	Region   string
	Role     string
}

// Factory builds platform clients from a credential source.
type Factory struct {
	Credentials credentials.Source
	Settings    Settings
}

// NewFactory constructs a Factory.
func NewFactory(source credentials.Source, settings Settings) Factory {
	return Factory{Credentials: source, Settings: settings}
}

// Region resolves the region: explicit settings win, then the credential
// store's config file, then DefaultRegion.
func (f Factory) Region() (string, error) {
	if region := strings.TrimSpace(f.Settings.Region); region != "" {
		return region, nil
	}
	if f.Credentials != nil {
		region, err := f.Credentials.Region()
		switch {
		case err == nil && region != "":
			return region, nil
		case err != nil && !errors.Is(err, function.ErrCredentialStoreMissing):
			return "", err
		}
	}
	return DefaultRegion, nil
}

// New builds a Client. Credential problems surface here, before any request.
func (f Factory) New(ctx context.Context) (*Client, error) {
	endpoint := strings.TrimSpace(f.Settings.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("%w: %w", function.ErrConfiguration, errEndpointRequired)
	}
	if f.Credentials == nil {
		return nil, fmt.Errorf("%w: credential source is not configured", function.ErrConfiguration)
	}
	record, err := f.Credentials.Credentials()
	if err != nil {
		return nil, err
	}
	region, err := f.Region()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(awscredentials.NewStaticCredentialsProvider(
			record.Key,
			record.Secret,
			record.SessionToken,
		)),
		config.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: load client config: %w", function.ErrConfiguration, err)
	}
	log.Debugf("platform client endpoint=%s region=%s", endpoint, region)
	api := lambda.NewFromConfig(cfg, func(options *lambda.Options) {
		options.BaseEndpoint = aws.String(endpoint)
	})
	return NewClient(api, f.Settings.Role), nil
}
