// Package secrets resolves secretsmanager:// references in configuration
// values, so DSNs and API keys never live in the config file.
package secrets

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Prefix marks a config value as a Secrets Manager reference. Everything
// after it is the secret name.
const Prefix = "secretsmanager://"

// API is the subset of the Secrets Manager client used by Resolver.
type API interface {
	GetSecretValue(ctx context.Context, input *secretsmanager.GetSecretValueInput, opts ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Resolver fetches secret values for prefixed references.
type Resolver struct {
	client API
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClient sets a custom Secrets Manager client (useful for testing).
func WithClient(c API) Option {
	return func(r *Resolver) { r.client = c }
}

// NewResolver creates a Resolver backed by the default AWS config chain.
func NewResolver(opts ...Option) (*Resolver, error) {
	r := &Resolver{}
	for _, o := range opts {
		o(r)
	}
	if r.client == nil {
		cfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		r.client = secretsmanager.NewFromConfig(cfg)
	}
	return r, nil
}

// IsRef reports whether value is a secretsmanager:// reference.
func IsRef(value string) bool {
	return strings.HasPrefix(value, Prefix)
}

// Resolve returns value unchanged unless it carries the reference prefix, in
// which case the named secret's string value is fetched.
func (r *Resolver) Resolve(ctx context.Context, value string) (string, error) {
	if !IsRef(value) {
		return value, nil
	}
	name := strings.TrimPrefix(value, Prefix)
	if name == "" {
		return "", fmt.Errorf("empty secret name in %q", value)
	}
	out, err := r.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		return "", fmt.Errorf("fetching secret %q: %w", name, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %q has no string value", name)
	}
	return *out.SecretString, nil
}
