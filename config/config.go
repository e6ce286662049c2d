/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT            = "5004"
	DEFAULT_SCHEMA_DIR      = "schemas"
	DEFAULT_MAX_WORKERS     = 10
	DEFAULT_RULE_CACHE_TTL  = 300
	DEFAULT_PROCESS_QUEUE   = "document_process"
	DEFAULT_WEBHOOK_QUEUE   = "document_webhook"
	DEFAULT_MONITORING_PORT = "5005"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"DOCFLOW_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"DOCFLOW_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"DOCFLOW_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"DOCFLOW_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"DOCFLOW_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"DOCFLOW_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"DOCFLOW_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns           string `json:"dns" envconfig:"DOCFLOW_REDIS_DNS"`
	SkipTLSVerify bool   `json:"skip_tls_verify" envconfig:"DOCFLOW_REDIS_SKIP_TLS_VERIFY"`
}

type QueueConfig struct {
	ProcessQueue   string `json:"process_queue" envconfig:"DOCFLOW_QUEUE_PROCESS"`
	WebhookQueue   string `json:"webhook_queue" envconfig:"DOCFLOW_QUEUE_WEBHOOK"`
	NumberOfQueues int    `json:"number_of_queues" envconfig:"DOCFLOW_QUEUE_NUMBER_OF_QUEUES"`
	MaxRetry       int    `json:"max_retry" envconfig:"DOCFLOW_QUEUE_MAX_RETRY"`
	MonitoringPort string `json:"monitoring_port" envconfig:"DOCFLOW_QUEUE_MONITORING_PORT"`
}

type ProcessingConfig struct {
	MaxWorkers      int    `json:"max_workers" envconfig:"DOCFLOW_PROCESSING_MAX_WORKERS"`
	SchemaDir       string `json:"schema_dir" envconfig:"DOCFLOW_PROCESSING_SCHEMA_DIR"`
	RuleCacheTTLSec int    `json:"rule_cache_ttl_sec" envconfig:"DOCFLOW_PROCESSING_RULE_CACHE_TTL_SEC"`
	MaxDocumentSize int64  `json:"max_document_size" envconfig:"DOCFLOW_PROCESSING_MAX_DOCUMENT_SIZE"`
	GenericFallback bool   `json:"generic_fallback" envconfig:"DOCFLOW_PROCESSING_GENERIC_FALLBACK"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"DOCFLOW_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"DOCFLOW_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"DOCFLOW_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url" envconfig:"DOCFLOW_SLACK_WEBHOOK_URL"`
}

type WebhookConfig struct {
	Url        string            `json:"url" envconfig:"DOCFLOW_WEBHOOK_URL"`
	Headers    map[string]string `json:"headers"`
	MaxElapsed int               `json:"max_elapsed_sec" envconfig:"DOCFLOW_WEBHOOK_MAX_ELAPSED_SEC"`
}

type Notification struct {
	Slack   SlackWebhook  `json:"slack"`
	Webhook WebhookConfig `json:"webhook"`
}

type Configuration struct {
	ProjectName     string           `json:"project_name" envconfig:"DOCFLOW_PROJECT_NAME"`
	EnableTelemetry bool             `json:"enable_telemetry" envconfig:"DOCFLOW_ENABLE_TELEMETRY"`
	Server          ServerConfig     `json:"server"`
	DataSource      DataSourceConfig `json:"data_source"`
	Redis           RedisConfig      `json:"redis"`
	Queue           QueueConfig      `json:"queue"`
	Processing      ProcessingConfig `json:"processing"`
	Notification    Notification     `json:"notification"`
	RateLimit       RateLimitConfig  `json:"rate_limit"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("docflow", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return nil
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called docflow.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Docflow Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)

	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	cnf.setQueueDefaults()
	cnf.setProcessingDefaults()

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
	}

	return nil
}

func (cnf *Configuration) setQueueDefaults() {
	if cnf.Queue.ProcessQueue == "" {
		cnf.Queue.ProcessQueue = DEFAULT_PROCESS_QUEUE
	}
	if cnf.Queue.WebhookQueue == "" {
		cnf.Queue.WebhookQueue = DEFAULT_WEBHOOK_QUEUE
	}
	if cnf.Queue.NumberOfQueues <= 0 {
		cnf.Queue.NumberOfQueues = 5
	}
	if cnf.Queue.MaxRetry <= 0 {
		cnf.Queue.MaxRetry = 3
	}
	if cnf.Queue.MonitoringPort == "" {
		cnf.Queue.MonitoringPort = DEFAULT_MONITORING_PORT
	}
}

func (cnf *Configuration) setProcessingDefaults() {
	if cnf.Processing.MaxWorkers <= 0 {
		cnf.Processing.MaxWorkers = DEFAULT_MAX_WORKERS
	}
	if strings.TrimSpace(cnf.Processing.SchemaDir) == "" {
		cnf.Processing.SchemaDir = DEFAULT_SCHEMA_DIR
	}
	if cnf.Processing.RuleCacheTTLSec <= 0 {
		cnf.Processing.RuleCacheTTLSec = DEFAULT_RULE_CACHE_TTL
	}
	if cnf.Processing.MaxDocumentSize <= 0 {
		cnf.Processing.MaxDocumentSize = 10 << 20 // 10 MiB
	}
	if cnf.Notification.Webhook.MaxElapsed <= 0 {
		cnf.Notification.Webhook.MaxElapsed = 60
	}
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
