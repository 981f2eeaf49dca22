package credentials

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSecretsAPI struct {
	getSecretValueFunc func(context.Context, *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error)
}

func (m *mockSecretsAPI) GetSecretValue(
	ctx context.Context,
	params *secretsmanager.GetSecretValueInput,
	_ ...func(*secretsmanager.Options),
) (*secretsmanager.GetSecretValueOutput, error) {
	return m.getSecretValueFunc(ctx, params)
}

func secretReturning(value *string, binary []byte, err error) *mockSecretsAPI {
	return &mockSecretsAPI{
		getSecretValueFunc: func(_ context.Context, _ *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error) {
			if err != nil {
				return nil, err
			}
			return &secretsmanager.GetSecretValueOutput{SecretString: value, SecretBinary: binary}, nil
		},
	}
}

// TestResolver_Resolve tests decoding and error mapping.
func TestResolver_Resolve(t *testing.T) {
	tests := []struct {
		name    string
		api     *mockSecretsAPI
		want    Static
		wantErr error
		errText string
	}{
		{
			name: "string secret",
			api:  secretReturning(aws.String(`{"accessKeyId":"AKIA1","secretKey":"s3cr3t"}`), nil, nil),
			want: Static{AccessKeyID: "AKIA1", SecretKey: "s3cr3t"},
		},
		{
			name: "binary secret",
			api:  secretReturning(nil, []byte(`{"accessKeyId":"AKIA2","secretKey":"k"}`), nil),
			want: Static{AccessKeyID: "AKIA2", SecretKey: "k"},
		},
		{
			name:    "not found",
			api:     secretReturning(nil, nil, &smithy.GenericAPIError{Code: ResourceNotFoundException, Message: "Secret not found"}),
			wantErr: ErrSecretNotFound,
		},
		{
			name:    "access denied",
			api:     secretReturning(nil, nil, &smithy.GenericAPIError{Code: AccessDeniedException, Message: "Access denied"}),
			wantErr: ErrAccessDenied,
		},
		{
			name:    "empty secret",
			api:     secretReturning(nil, nil, nil),
			wantErr: ErrSecretEmpty,
		},
		{
			name:    "not json",
			api:     secretReturning(aws.String("plain"), nil, nil),
			wantErr: ErrMalformedSecret,
		},
		{
			name:    "missing secret key",
			api:     secretReturning(aws.String(`{"accessKeyId":"AKIA1"}`), nil, nil),
			wantErr: ErrMalformedSecret,
		},
		{
			name:    "other api error",
			api:     secretReturning(nil, nil, &smithy.GenericAPIError{Code: "InternalServiceError", Message: "try later"}),
			errText: "InternalServiceError: try later",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewResolver(tt.api, nil).Resolve(context.Background(), "objectstore/creds")
			if tt.wantErr == nil && tt.errText == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			}
			if tt.errText != "" {
				assert.Contains(t, err.Error(), tt.errText)
			}
			assert.NotContains(t, err.Error(), "s3cr3t")
		})
	}
}

// TestResolver_Resolve_EmptyName tests input validation.
func TestResolver_Resolve_EmptyName(t *testing.T) {
	_, err := NewResolver(&mockSecretsAPI{}, nil).Resolve(context.Background(), "")
	assert.Error(t, err)
}

// TestResolver_Resolve_PassesSecretID tests the request parameters.
func TestResolver_Resolve_PassesSecretID(t *testing.T) {
	api := &mockSecretsAPI{
		getSecretValueFunc: func(_ context.Context, in *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error) {
			assert.Equal(t, "prod/objectstore", aws.ToString(in.SecretId))
			return &secretsmanager.GetSecretValueOutput{
				SecretString: aws.String(`{"accessKeyId":"a","secretKey":"b"}`),
			}, nil
		},
	}

	_, err := NewResolver(api, nil).Resolve(context.Background(), "prod/objectstore")
	assert.NoError(t, err)
}
