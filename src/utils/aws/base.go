package aws_handler

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/secretsmanager"
)

var ErrMissingRegion = errors.New("aws region is required")

type AWSHandler struct {
	SecretManager *SecretManager
}

// NewAWSHandler opens a session in region. Credentials resolve lazily from
// the environment on the first call. A non-empty endpoint points the
// secrets client at a local Secrets Manager.
func NewAWSHandler(region, endpoint string) (*AWSHandler, error) {
	if region == "" {
		return nil, ErrMissingRegion
	}
	cfg := aws.NewConfig().WithRegion(region)
	if endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open aws session in %s: %w", region, err)
	}
	return &AWSHandler{SecretManager: NewSecretManager(secretsmanager.New(sess))}, nil
}
