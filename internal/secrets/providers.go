package secrets

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"

	"github.com/JonMunkholm/tweetpipe/internal/config"
	"github.com/JonMunkholm/tweetpipe/internal/core"
)

// Provider names accepted by SECRETS_PROVIDER.
const (
	ProviderEnv  = "env"
	ProviderFile = "file"
	ProviderAWS  = "aws"
)

// New returns the provider selected by cfg.Secrets.Provider. awsCfg is only
// used by the aws provider.
func New(cfg *config.Config, awsCfg aws.Config) (Provider, error) {
	switch strings.ToLower(cfg.Secrets.Provider) {
	case ProviderEnv, "":
		return NewEnvProvider(cfg.Database), nil
	case ProviderFile:
		return NewFileProvider(cfg.Secrets.File), nil
	case ProviderAWS:
		return NewSecretsManagerProvider(secretsmanager.NewFromConfig(awsCfg), cfg.Secrets.SecretID), nil
	default:
		return nil, fmt.Errorf("%w: unknown secrets provider %q", core.ErrConfig, cfg.Secrets.Provider)
	}
}

// EnvProvider serves credentials from DB_* environment settings.
type EnvProvider struct {
	db config.DatabaseConfig
}

// NewEnvProvider creates a provider over already loaded settings.
func NewEnvProvider(db config.DatabaseConfig) *EnvProvider {
	return &EnvProvider{db: db}
}

// Credentials implements Provider.
func (p *EnvProvider) Credentials(_ context.Context) (Credentials, error) {
	creds := Credentials{
		Host:     p.db.Host,
		Port:     p.db.Port,
		DBName:   p.db.Name,
		Username: p.db.User,
		Password: p.db.Password,
	}
	if err := creds.Validate(); err != nil {
		return Credentials{}, fmt.Errorf("%w: environment credentials: %w", core.ErrConfig, err)
	}
	return creds, nil
}

// FileProvider reads a YAML or JSON bundle from disk on every call.
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider for path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Credentials implements Provider.
func (p *FileProvider) Credentials(_ context.Context) (Credentials, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: read credential file: %w", core.ErrConfig, err)
	}
	return Decode(data)
}

// SecretsManagerAPI is the subset of *secretsmanager.Client used here.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerProvider fetches the bundle from AWS Secrets Manager.
type SecretsManagerProvider struct {
	client   SecretsManagerAPI
	secretID string
}

// NewSecretsManagerProvider creates a provider for secretID (name or ARN).
func NewSecretsManagerProvider(client SecretsManagerAPI, secretID string) *SecretsManagerProvider {
	return &SecretsManagerProvider{client: client, secretID: secretID}
}

// Credentials implements Provider.
func (p *SecretsManagerProvider) Credentials(ctx context.Context) (Credentials, error) {
	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(p.secretID),
	})
	if err != nil {
		return Credentials{}, fmt.Errorf("%w: get secret %s: %w", core.ErrConfig, p.secretID, err)
	}

	switch {
	case out.SecretString != nil:
		return Decode([]byte(aws.ToString(out.SecretString)))
	case len(out.SecretBinary) > 0:
		return Decode(out.SecretBinary)
	default:
		return Credentials{}, fmt.Errorf("%w: secret %s has no value", core.ErrConfig, p.secretID)
	}
}
