// Package credentials resolves static object store credentials from an AWS
// Secrets Manager secret.
//
// The secret must hold a JSON document:
//
//	{"accessKeyId": "AKIA...", "secretKey": "..."}
//
// Secret values are never logged; only the secret name is.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"
)

// Secrets Manager error codes handled explicitly.
const (
	ResourceNotFoundException = "ResourceNotFoundException"
	AccessDeniedException     = "AccessDeniedException"
)

var (
	// ErrSecretNotFound is returned when the named secret does not exist.
	ErrSecretNotFound = errors.New("secret not found")

	// ErrSecretEmpty is returned when the secret exists but has no value.
	ErrSecretEmpty = errors.New("secret value is empty")

	// ErrAccessDenied is returned when the caller may not read the secret.
	ErrAccessDenied = errors.New("access denied to secret")

	// ErrMalformedSecret is returned when the secret is not a credentials document.
	ErrMalformedSecret = errors.New("secret is not a credentials document")
)

// SecretsAPI is the subset of the Secrets Manager client used here.
type SecretsAPI interface {
	GetSecretValue(
		ctx context.Context,
		params *secretsmanager.GetSecretValueInput,
		optFns ...func(*secretsmanager.Options),
	) (*secretsmanager.GetSecretValueOutput, error)
}

var _ SecretsAPI = (*secretsmanager.Client)(nil)

// Static is a resolved access key pair.
type Static struct {
	AccessKeyID string `json:"accessKeyId"`
	SecretKey   string `json:"secretKey"`
}

// Resolver reads credentials documents from Secrets Manager.
type Resolver struct {
	api    SecretsAPI
	logger *slog.Logger
}

// NewResolver creates a Resolver. A nil logger disables logging.
func NewResolver(api SecretsAPI, logger *slog.Logger) *Resolver {
	return &Resolver{api: api, logger: logger}
}

// NewResolverFromConfig creates a Resolver backed by a Secrets Manager client.
func NewResolverFromConfig(cfg aws.Config, logger *slog.Logger) *Resolver {
	return NewResolver(secretsmanager.NewFromConfig(cfg), logger)
}

// Resolve fetches and decodes the named secret.
func (r *Resolver) Resolve(ctx context.Context, secretName string) (Static, error) {
	if secretName == "" {
		return Static{}, fmt.Errorf("secret name cannot be empty")
	}

	if r.logger != nil {
		r.logger.InfoContext(ctx, "resolving object store credentials",
			"secret_name", secretName)
	}

	output, err := r.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case ResourceNotFoundException:
				return Static{}, handleError(ErrSecretNotFound)
			case AccessDeniedException:
				return Static{}, handleError(ErrAccessDenied)
			}
		}
		if r.logger != nil {
			r.logger.ErrorContext(ctx, "failed to resolve object store credentials",
				"secret_name", secretName,
				"error", err)
		}
		return Static{}, handleError(err)
	}

	var raw []byte
	switch {
	case output.SecretString != nil:
		raw = []byte(*output.SecretString)
	case output.SecretBinary != nil:
		raw = output.SecretBinary
	default:
		return Static{}, handleError(ErrSecretEmpty)
	}

	var creds Static
	if err := json.Unmarshal(raw, &creds); err != nil {
		return Static{}, handleError(ErrMalformedSecret)
	}
	if creds.AccessKeyID == "" || creds.SecretKey == "" {
		return Static{}, handleError(ErrMalformedSecret)
	}

	if r.logger != nil {
		r.logger.InfoContext(ctx, "object store credentials resolved",
			"secret_name", secretName)
	}
	return creds, nil
}

// handleError keeps package errors intact and wraps everything else with
// operation context. API errors are flattened to code and message so the
// SDK's request details stay out of logs.
func handleError(err error) error {
	if errors.Is(err, ErrSecretNotFound) ||
		errors.Is(err, ErrSecretEmpty) ||
		errors.Is(err, ErrAccessDenied) ||
		errors.Is(err, ErrMalformedSecret) {
		return fmt.Errorf("resolve credentials: %w", err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("resolve credentials: %s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return fmt.Errorf("resolve credentials: %w", err)
}
