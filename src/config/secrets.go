package config

import (
	aws_handler "assetmanager/src/utils/aws"
)

// secretDocument is the JSON layout of the secret referenced by
// secrets.awsSecretId. Empty fields leave the file configuration untouched.
type secretDocument struct {
	JWTSecret     string `json:"jwt_secret"`
	PolygonAPIKey string `json:"polygon_api_key"`
	SQLPassword   string `json:"sql_password"`
	RedisPassword string `json:"redis_password"`
}

type secretReader interface {
	GetSecretJSON(secretId string, out interface{}) error
}

func applySecrets(cfg *Config) error {
	handler, err := aws_handler.NewAWSHandler(cfg.Secrets.AWSRegion, cfg.Secrets.AWSEndpoint)
	if err != nil {
		return err
	}
	return overlaySecrets(cfg, handler.SecretManager)
}

func overlaySecrets(cfg *Config, reader secretReader) error {
	var doc secretDocument
	if err := reader.GetSecretJSON(cfg.Secrets.AWSSecretID, &doc); err != nil {
		return err
	}
	if doc.JWTSecret != "" {
		cfg.Auth.JWTSecret = doc.JWTSecret
	}
	if doc.PolygonAPIKey != "" {
		cfg.ExternalClients.Polygon.APIKey = doc.PolygonAPIKey
	}
	if doc.SQLPassword != "" {
		cfg.Databases.SQL.Password = doc.SQLPassword
	}
	if doc.RedisPassword != "" {
		cfg.Databases.Redis.Password = doc.RedisPassword
	}
	return nil
}
