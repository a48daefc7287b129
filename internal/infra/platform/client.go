// Where: cli/internal/infra/platform/client.go
// What: Management API adapter for the deploy reconciler.
// Why: Map reconciler inputs and error kinds to SDK types.
package platform

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/aws/smithy-go"
	"github.com/poruru/bsam-cli/internal/domain/function"
	"github.com/poruru/bsam-cli/internal/usecase/deploy"
)

var errDryRunUnsupported = errors.New("dry-run create is not supported")

// API is the SDK surface the adapter needs.
type API interface {
	GetFunction(ctx context.Context, in *lambda.GetFunctionInput, optFns ...func(*lambda.Options)) (*lambda.GetFunctionOutput, error)
	CreateFunction(ctx context.Context, in *lambda.CreateFunctionInput, optFns ...func(*lambda.Options)) (*lambda.CreateFunctionOutput, error)
	UpdateFunctionCode(ctx context.Context, in *lambda.UpdateFunctionCodeInput, optFns ...func(*lambda.Options)) (*lambda.UpdateFunctionCodeOutput, error)
}

// Client implements deploy.Platform.
type Client struct {
	api  API
	role string
}

var _ deploy.Platform = (*Client)(nil)

// NewClient wraps an SDK client.
func NewClient(api API, role string) *Client {
	return &Client{api: api, role: role}
}

func (c *Client) GetFunction(ctx context.Context, name string) (deploy.RemoteFunction, error) {
	out, err := c.api.GetFunction(ctx, &lambda.GetFunctionInput{FunctionName: aws.String(name)})
	if err != nil {
		if isNotFound(err) {
			return deploy.RemoteFunction{}, fmt.Errorf("%w: %s", deploy.ErrRemoteNotFound, name)
		}
		return deploy.RemoteFunction{}, fmt.Errorf("%w: get function %s: %w", function.ErrPlatform, name, err)
	}
	if out == nil || out.Configuration == nil {
		return deploy.RemoteFunction{Raw: out}, nil
	}
	remote := fromConfiguration(
		out.Configuration.FunctionName,
		out.Configuration.Runtime,
		out.Configuration.FunctionArn,
		out.Configuration.Version,
		out.Configuration.CodeSha256,
	)
	remote.Raw = out
	return remote, nil
}

func (c *Client) CreateFunction(ctx context.Context, in deploy.CreateInput) (deploy.RemoteFunction, error) {
	if in.DryRun {
		return deploy.RemoteFunction{}, fmt.Errorf("%w: %w", function.ErrConfiguration, errDryRunUnsupported)
	}
	zip, err := decodeZip(in.ZipBase64)
	if err != nil {
		return deploy.RemoteFunction{}, err
	}
	input := &lambda.CreateFunctionInput{
		FunctionName: aws.String(in.Name),
		Description:  aws.String(in.Description),
		Handler:      aws.String(in.Handler),
		MemorySize:   aws.Int32(int32(in.Memory)),
		Timeout:      aws.Int32(int32(in.Timeout)),
		Runtime:      types.Runtime(in.Runtime),
		Publish:      in.Publish,
		Code:         &types.FunctionCode{ZipFile: zip},
	}
	if c.role != "" {
		input.Role = aws.String(c.role)
	}
	out, err := c.api.CreateFunction(ctx, input, withRegion(in.Region)...)
	if err != nil {
		return deploy.RemoteFunction{}, fmt.Errorf("%w: create function %s: %w", function.ErrPlatform, in.Name, err)
	}
	remote := fromConfiguration(out.FunctionName, out.Runtime, out.FunctionArn, out.Version, out.CodeSha256)
	remote.Raw = out
	return remote, nil
}

func (c *Client) UpdateFunctionCode(ctx context.Context, in deploy.UpdateCodeInput) (deploy.RemoteFunction, error) {
	zip, err := decodeZip(in.ZipBase64)
	if err != nil {
		return deploy.RemoteFunction{}, err
	}
	out, err := c.api.UpdateFunctionCode(ctx, &lambda.UpdateFunctionCodeInput{
		FunctionName: aws.String(in.Name),
		ZipFile:      zip,
		Publish:      in.Publish,
	})
	if err != nil {
		return deploy.RemoteFunction{}, fmt.Errorf("%w: update function code %s: %w", function.ErrPlatform, in.Name, err)
	}
	remote := fromConfiguration(out.FunctionName, out.Runtime, out.FunctionArn, out.Version, out.CodeSha256)
	remote.Raw = out
	return remote, nil
}

func fromConfiguration(name *string, runtime types.Runtime, arn, version, sha *string) deploy.RemoteFunction {
	return deploy.RemoteFunction{
		Name:       aws.ToString(name),
		Runtime:    string(runtime),
		Arn:        aws.ToString(arn),
		Version:    aws.ToString(version),
		CodeSHA256: aws.ToString(sha),
	}
}

func decodeZip(text string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("%w: archive is not valid base64: %w", function.ErrConfiguration, err)
	}
	return data, nil
}

func withRegion(region string) []func(*lambda.Options) {
	if region == "" {
		return nil
	}
	return []func(*lambda.Options){func(options *lambda.Options) { options.Region = region }}
}

func isNotFound(err error) bool {
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ResourceNotFoundException" {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}
