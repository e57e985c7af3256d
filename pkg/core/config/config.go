// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and Gardener contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package config provides the configuration file of the bindings.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// ErrNoConfigVersion error is returned when the configuration does not specify
// config format version.
var ErrNoConfigVersion = errors.New("config format version not specified")

// ErrUnsupportedVersion is an error, which is returned when the config file
// uses an incompatible version format.
var ErrUnsupportedVersion = errors.New("unsupported config format version")

// ConfigFormatVersion represents the supported config format version.
const ConfigFormatVersion = "v1alpha1"

// DefaultQueueName is the name of the default queue, if none was configured.
const DefaultQueueName = "default"

const (
	// DefaultAWSTokenRetriever is the name of the default token retriever,
	// which loads credentials from the shared config and environment only.
	DefaultAWSTokenRetriever = "none"

	// DefaultMetricsPath is the default HTTP path for serving metrics.
	DefaultMetricsPath = "/metrics"
)

// Supported authentication methods for OpenStack named credentials.
const (
	OpenStackAuthenticationMethodPassword       = "password"
	OpenStackAuthenticationMethodAppCredentials = "app_credentials"
	OpenStackAuthenticationMethodVaultSecret    = "vault_secret"
)

// Kinds of OpenStack credentials, which may be stored in a Vault secret.
const (
	OpenStackVaultSecretKindV3Password              = "v3password"
	OpenStackVaultSecretKindV3ApplicationCredential = "v3applicationcredential"
)

// Supported authentication methods for Vault servers.
const (
	VaultAuthMethodToken = "token"
	VaultAuthMethodJWT   = "jwt"
)

// Config represents the configuration of the bindings.
type Config struct {
	// Version is the version of the config file.
	Version string `yaml:"version"`

	// Debug configures debug mode, if set to true.
	Debug bool `yaml:"debug"`

	// Logging provides the logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Redis represents the Redis configuration
	Redis RedisConfig `yaml:"redis"`

	// Database represents the database configuration.
	Database DatabaseConfig `yaml:"database"`

	// Worker represents the worker configuration.
	Worker WorkerConfig `yaml:"worker"`

	// Scheduler represents the scheduler configuration.
	Scheduler SchedulerConfig `yaml:"scheduler"`

	// Dashboard represents the dashboard configuration.
	Dashboard DashboardConfig `yaml:"dashboard"`

	// AWS represents the AWS specific configuration settings.
	AWS AWSConfig `yaml:"aws"`

	// OpenStack represents the OpenStack specific configuration settings.
	OpenStack OpenStackConfig `yaml:"openstack"`

	// Vault represents the Vault servers, from which secrets are read.
	Vault VaultConfig `yaml:"vault"`
}

// LoggingConfig provides the logging specific configuration settings.
type LoggingConfig struct {
	// Level specifies the log level, e.g. info, warn, error or debug.
	Level string `yaml:"level"`

	// Format specifies the format of log events, e.g. text or json.
	Format string `yaml:"format"`

	// AddSource adds the source code position to log events, if set.
	AddSource bool `yaml:"add_source"`

	// Attributes specifies attributes, which are added to each log event.
	Attributes map[string]string `yaml:"attributes"`
}

// RedisConfig provides Redis specific configuration settings.
type RedisConfig struct {
	// Endpoint is the endpoint of the Redis service.
	Endpoint string `yaml:"endpoint"`

	// Username to authenticate with.
	Username string `yaml:"username"`

	// PasswordFile is the path to a file containing the password.
	PasswordFile string `yaml:"password_file"`
}

// DatabaseConfig provides database specific configuration settings.
type DatabaseConfig struct {
	// DSN is the Data Source Name to connect to.
	DSN string `yaml:"dsn"`

	// MigrationDirectory specifies an alternate location with migration
	// files.
	MigrationDirectory string `yaml:"migration_dir"`
}

// WorkerConfig provides worker specific configuration settings.
type WorkerConfig struct {
	// Concurrency specifies the concurrency level for workers.
	Concurrency int `yaml:"concurrency"`

	// Queues specifies the queues and their priority.
	Queues map[string]int `yaml:"queues"`

	// StrictPriority specifies whether queue priority is treated strictly.
	StrictPriority bool `yaml:"strict_priority"`

	// Metrics provides the metrics server settings of the workers.
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig provides the settings of a metrics server.
type MetricsConfig struct {
	// Address specifies the address on which the metrics are served.
	Address string `yaml:"address"`

	// Path specifies the HTTP path on which the metrics are served.
	Path string `yaml:"path"`
}

// SchedulerConfig provides scheduler specific configuration settings.
type SchedulerConfig struct {
	// DefaultQueue specifies the queue for periodic jobs, which do not
	// specify one.
	DefaultQueue string `yaml:"default_queue"`

	// Jobs represents the periodic jobs managed by the scheduler.
	Jobs []*PeriodicJob `yaml:"jobs"`
}

// PeriodicJob represents a task, which is enqueued periodically.
type PeriodicJob struct {
	// Name is the name of the task.
	Name string `yaml:"name"`

	// Spec is the cron spec of the job.
	Spec string `yaml:"spec"`

	// Desc is an optional description of the job.
	Desc string `yaml:"desc"`

	// Payload is an optional payload for the task.
	Payload string `yaml:"payload"`

	// Queue is the queue to which the task is enqueued.
	Queue string `yaml:"queue"`
}

// DashboardConfig provides the dashboard specific configuration settings.
type DashboardConfig struct {
	// Address specifies the address on which the dashboard is served.
	Address string `yaml:"address"`

	// ReadOnly configures the dashboard in read-only mode.
	ReadOnly bool `yaml:"read_only"`

	// PrometheusEndpoint specifies the Prometheus endpoint used for
	// displaying queue metrics.
	PrometheusEndpoint string `yaml:"prometheus_endpoint"`
}

// AWSConfig provides the AWS specific configuration settings.
type AWSConfig struct {
	// IsEnabled specifies whether the AWS collection is enabled or not.
	IsEnabled bool `yaml:"is_enabled"`

	// Region is the region to use when creating AWS clients.
	Region string `yaml:"region"`

	// DefaultRegion is the region used, when no region was configured
	// otherwise.
	DefaultRegion string `yaml:"default_region"`

	// AppID is an optional application specific identifier.
	AppID string `yaml:"app_id"`

	// Services provides the service specific configuration settings.
	Services AWSServices `yaml:"services"`

	// Credentials specifies the named credentials.
	Credentials map[string]AWSCredentialsConfig `yaml:"credentials"`
}

// AWSServices provides the AWS service specific configuration settings.
type AWSServices struct {
	// CloudWatch provides the CloudWatch service configuration.
	CloudWatch AWSServiceConfig `yaml:"cloudwatch"`
}

// AWSServiceConfig provides the configuration of an AWS service.
type AWSServiceConfig struct {
	// UseCredentials specifies the named credentials for the service.
	UseCredentials []string `yaml:"use_credentials"`
}

// AWSCredentialsConfig provides the named credentials configuration.
type AWSCredentialsConfig struct {
	// TokenRetriever specifies the name of the token retriever.
	TokenRetriever string `yaml:"token_retriever"`

	// TokenFileRetriever provides the settings of the token_file
	// retriever.
	TokenFileRetriever AWSTokenFileRetrieverConfig `yaml:"token_file"`

	// KubeSATokenRetriever provides the settings of the kube_sa_token
	// retriever.
	KubeSATokenRetriever AWSKubeSATokenRetrieverConfig `yaml:"kube_sa_token"`
}

// AWSKubeSATokenRetrieverConfig provides the settings for exchanging a
// Kubernetes service account token for temporary credentials.
type AWSKubeSATokenRetrieverConfig struct {
	// Kubeconfig is the path to the kubeconfig file. In-cluster
	// configuration is used, if empty.
	Kubeconfig string `yaml:"kubeconfig"`

	// ServiceAccount is the name of the service account to issue tokens
	// for.
	ServiceAccount string `yaml:"service_account"`

	// Namespace of the service account.
	Namespace string `yaml:"namespace"`

	// Audiences of the issued tokens.
	Audiences []string `yaml:"audiences"`

	// Duration specifies the validity of the issued tokens and of the
	// temporary credentials.
	Duration time.Duration `yaml:"duration"`

	// RoleARN is the ARN of the role to assume.
	RoleARN string `yaml:"role_arn"`

	// RoleSessionName is the name of the session.
	RoleSessionName string `yaml:"role_session_name"`
}

// AWSTokenFileRetrieverConfig provides the settings for exchanging a token
// read from a file for temporary credentials.
type AWSTokenFileRetrieverConfig struct {
	// Path is the path to the identity token file.
	Path string `yaml:"path"`

	// Duration specifies the duration of the temporary credentials.
	Duration time.Duration `yaml:"duration"`

	// RoleARN is the ARN of the role to assume.
	RoleARN string `yaml:"role_arn"`

	// RoleSessionName is the name of the session.
	RoleSessionName string `yaml:"role_session_name"`
}

// OpenStackConfig provides the OpenStack specific configuration settings.
type OpenStackConfig struct {
	// IsEnabled specifies whether the OpenStack collection is enabled.
	IsEnabled bool `yaml:"is_enabled"`

	// Services provides the service specific configuration settings.
	Services OpenStackServices `yaml:"services"`

	// Credentials specifies the named credentials.
	Credentials map[string]OpenStackCredentialsConfig `yaml:"credentials"`
}

// OpenStackServices provides the OpenStack service specific configuration.
type OpenStackServices struct {
	// Image provides the Image (Glance) service configuration.
	Image OpenStackServiceConfig `yaml:"image"`
}

// OpenStackServiceConfig provides the configuration of an OpenStack service.
type OpenStackServiceConfig struct {
	// UseCredentials specifies the named credentials for the service.
	UseCredentials []string `yaml:"use_credentials"`

	// PageSize is the number of items requested per page.
	PageSize int `yaml:"page_size"`
}

// OpenStackCredentialsConfig provides the named credentials configuration.
type OpenStackCredentialsConfig struct {
	// Authentication is the authentication method, either password or
	// app_credentials.
	Authentication string `yaml:"authentication"`

	// Authority is the Keystone endpoint.
	Authority string `yaml:"authority"`

	// Domain is the domain of the project.
	Domain string `yaml:"domain"`

	// Project is the name of the project.
	Project string `yaml:"project"`

	// Region is the region of the project.
	Region string `yaml:"region"`

	// Password provides the settings for password authentication.
	Password OpenStackPasswordConfig `yaml:"password"`

	// AppCredentials provides the settings for application credentials.
	AppCredentials OpenStackAppCredentialsConfig `yaml:"app_credentials"`

	// VaultSecret refers to a Vault secret holding the credentials.
	VaultSecret OpenStackVaultSecretConfig `yaml:"vault_secret"`
}

// OpenStackVaultSecretConfig refers to a KV v2 secret, which holds OpenStack
// credentials.
type OpenStackVaultSecretConfig struct {
	// Server is the name of the Vault server in [VaultConfig].
	Server string `yaml:"server"`

	// SecretEngine is the mount path of the KV v2 secret engine.
	SecretEngine string `yaml:"secret_engine"`

	// SecretPath is the path of the secret within the secret engine.
	SecretPath string `yaml:"secret_path"`
}

// OpenStackPasswordConfig provides username and password settings.
type OpenStackPasswordConfig struct {
	Username     string `yaml:"username"`
	PasswordFile string `yaml:"password_file"`
}

// OpenStackAppCredentialsConfig provides application credentials settings.
type OpenStackAppCredentialsConfig struct {
	AppCredentialsID         string `yaml:"app_credentials_id"`
	AppCredentialsName       string `yaml:"app_credentials_name"`
	AppCredentialsSecretFile string `yaml:"app_credentials_secret_file"`
}

// VaultConfig provides the Vault specific configuration settings.
type VaultConfig struct {
	// IsEnabled specifies whether Vault clients are created.
	IsEnabled bool `yaml:"is_enabled"`

	// Servers specifies the named Vault servers.
	Servers map[string]VaultServerConfig `yaml:"servers"`
}

// VaultServerConfig provides the settings for connecting to a Vault server.
type VaultServerConfig struct {
	// Endpoint is the address of the Vault server.
	Endpoint string `yaml:"endpoint"`

	// TLSConfig provides the TLS settings of the client.
	TLSConfig VaultTLSConfig `yaml:"tls"`

	// AuthMethod is the authentication method, either token or jwt.
	AuthMethod string `yaml:"auth_method"`

	// TokenAuth provides the settings of the token auth method.
	TokenAuth VaultTokenAuthConfig `yaml:"token_auth"`

	// JWTAuth provides the settings of the jwt auth method.
	JWTAuth VaultJWTAuthConfig `yaml:"jwt_auth"`
}

// VaultTLSConfig provides the TLS settings for a Vault server.
type VaultTLSConfig struct {
	CACert        string `yaml:"ca_cert"`
	CAPath        string `yaml:"ca_path"`
	ClientCert    string `yaml:"client_cert"`
	ClientKey     string `yaml:"client_key"`
	TLSServerName string `yaml:"tls_server_name"`
	Insecure      bool   `yaml:"insecure"`
}

// VaultTokenAuthConfig provides the settings for authenticating with a
// token.
type VaultTokenAuthConfig struct {
	// TokenPath is the path to a file containing the token.
	TokenPath string `yaml:"token_path"`
}

// VaultJWTAuthConfig provides the settings for the JWT auth method.
type VaultJWTAuthConfig struct {
	// MountPath is the mount path of the auth method.
	MountPath string `yaml:"mount_path"`

	// RoleName is the role to log in as.
	RoleName string `yaml:"role_name"`

	// TokenPath is the path to a file containing the JWT.
	TokenPath string `yaml:"token_path"`
}

// Parse parses the config from the given path.
func Parse(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return ParseBytes(data)
}

// ParseBytes parses the config from the given data.
func ParseBytes(data []byte) (*Config, error) {
	var conf Config
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, err
	}

	if conf.Version == "" {
		return nil, ErrNoConfigVersion
	}

	if conf.Version != ConfigFormatVersion {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedVersion, conf.Version)
	}

	return &conf, nil
}

// MustParse parses the config from the given path, or panics in case of errors.
func MustParse(path string) *Config {
	config, err := Parse(path)
	if err != nil {
		panic(err)
	}

	return config
}
