package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	values map[string]string
	err    error
}

func (f *fakeAPI) GetSecretValue(_ context.Context, input *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	v, ok := f.values[aws.ToString(input.SecretId)]
	if !ok {
		return nil, errors.New("ResourceNotFoundException")
	}
	return &secretsmanager.GetSecretValueOutput{SecretString: aws.String(v)}, nil
}

func TestResolve_PassthroughWithoutPrefix(t *testing.T) {
	r, err := NewResolver(WithClient(&fakeAPI{}))
	require.NoError(t, err)

	got, err := r.Resolve(context.Background(), "postgres://localhost/clientsync")
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/clientsync", got)
}

func TestResolve_FetchesReference(t *testing.T) {
	api := &fakeAPI{values: map[string]string{"prod/clientsync/dsn": "postgres://real"}}
	r, err := NewResolver(WithClient(api))
	require.NoError(t, err)

	got, err := r.Resolve(context.Background(), "secretsmanager://prod/clientsync/dsn")
	require.NoError(t, err)
	assert.Equal(t, "postgres://real", got)
}

func TestResolve_UnknownSecret(t *testing.T) {
	r, err := NewResolver(WithClient(&fakeAPI{}))
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), "secretsmanager://missing")
	assert.Error(t, err)
}

func TestResolve_EmptyName(t *testing.T) {
	r, err := NewResolver(WithClient(&fakeAPI{}))
	require.NoError(t, err)

	_, err = r.Resolve(context.Background(), "secretsmanager://")
	assert.Error(t, err)
}

func TestIsRef(t *testing.T) {
	assert.True(t, IsRef("secretsmanager://name"))
	assert.False(t, IsRef("postgres://host/db"))
}
