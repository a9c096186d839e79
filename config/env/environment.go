package env

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/blogdesk/search-service/helper"
)

// Env model
type Env struct {
	ServiceName string
	// Environment deployment tier, one search index per tier
	Environment string
	DebugMode   bool

	// HTTPPort config
	HTTPPort uint16

	// RabbitMQ environment
	RabbitMQ struct {
		Broker             string
		ExchangeName       string
		QueueName          string
		DeadLetterExchange string
	}

	// Meilisearch environment
	Meilisearch struct {
		Host         string
		APIKey       string
		IndexName    string
		MaxTotalHits int64
	}

	// DbMongoHost default mongo host, per tenant override via MONGODB_TENANT_<ID>
	DbMongoHost string

	// ContentServiceBaseURL source of truth accessor base url
	ContentServiceBaseURL string
	// FetchTimeout bounded timeout for the canonical fetch call
	FetchTimeout time.Duration

	// DefaultTenantID fallback when no tenant can be derived from request context
	DefaultTenantID string

	// JaegerTracingHost env
	JaegerTracingHost string

	StartAt string
}

var env Env

// BaseEnv get global basic environment
func BaseEnv() Env {
	return env
}

// SetEnv set env for mocking data env
func SetEnv(newEnv Env) {
	env = newEnv
}

// Load environment from .env file and os environment
func Load(serviceName string) {
	env.ServiceName = serviceName

	if err := godotenv.Load(os.Getenv(helper.WORKDIR) + ".env"); err != nil {
		fmt.Printf("Warning: load env, %v\n", err)
	}

	mErrs := helper.NewMultiError()

	env.Environment = os.Getenv("ENVIRONMENT")
	if env.Environment == "" {
		env.Environment = "development"
	}
	var err error
	env.DebugMode, err = strconv.ParseBool(os.Getenv("DEBUG_MODE"))
	if err != nil {
		env.DebugMode = true
	}

	httpPort, _ := strconv.Atoi(os.Getenv("HTTP_PORT"))
	if httpPort <= 0 {
		httpPort = 8080
	}
	env.HTTPPort = uint16(httpPort)

	parseBrokerEnv(mErrs)
	parseMeilisearchEnv(mErrs)

	env.DbMongoHost = os.Getenv("MONGODB_HOST")
	if env.DbMongoHost == "" {
		mErrs.Append("MONGODB_HOST", errors.New("missing MONGODB_HOST environment"))
	}

	env.ContentServiceBaseURL = strings.TrimSuffix(os.Getenv("CONTENT_SERVICE_BASE_URL"), "/")
	if env.ContentServiceBaseURL == "" {
		mErrs.Append("CONTENT_SERVICE_BASE_URL", errors.New("missing CONTENT_SERVICE_BASE_URL environment"))
	}
	if env.FetchTimeout, err = time.ParseDuration(os.Getenv("FETCH_TIMEOUT")); err != nil {
		env.FetchTimeout = 10 * time.Second // default value
	}

	env.DefaultTenantID = os.Getenv("DEFAULT_TENANT_ID")
	env.JaegerTracingHost = os.Getenv("JAEGER_TRACING_HOST")

	env.StartAt = time.Now().Format(time.RFC3339)

	if mErrs.HasError() {
		panic("Basic environment error: \n" + mErrs.Error())
	}
}

func parseBrokerEnv(mErrs helper.MultiError) {
	env.RabbitMQ.Broker = os.Getenv("RABBITMQ_BROKER")
	if env.RabbitMQ.Broker == "" {
		mErrs.Append("RABBITMQ_BROKER", errors.New("missing RABBITMQ_BROKER environment"))
	}
	env.RabbitMQ.ExchangeName = os.Getenv("RABBITMQ_EXCHANGE_NAME")
	if env.RabbitMQ.ExchangeName == "" {
		mErrs.Append("RABBITMQ_EXCHANGE_NAME", errors.New("missing RABBITMQ_EXCHANGE_NAME environment"))
	}
	env.RabbitMQ.QueueName = os.Getenv("RABBITMQ_QUEUE_NAME")
	if env.RabbitMQ.QueueName == "" {
		env.RabbitMQ.QueueName = env.ServiceName
	}
	env.RabbitMQ.DeadLetterExchange = os.Getenv("RABBITMQ_DEAD_LETTER_EXCHANGE")
	if env.RabbitMQ.DeadLetterExchange == "" {
		env.RabbitMQ.DeadLetterExchange = env.RabbitMQ.ExchangeName + ".dlx"
	}
}

func parseMeilisearchEnv(mErrs helper.MultiError) {
	env.Meilisearch.Host = os.Getenv("MEILISEARCH_HOST")
	if env.Meilisearch.Host == "" {
		mErrs.Append("MEILISEARCH_HOST", errors.New("missing MEILISEARCH_HOST environment"))
	}
	env.Meilisearch.APIKey = os.Getenv("MEILISEARCH_API_KEY")
	env.Meilisearch.IndexName = os.Getenv("MEILISEARCH_INDEX_NAME")
	if env.Meilisearch.IndexName == "" {
		// one index per deployment environment tier, tenants share it
		env.Meilisearch.IndexName = "posts-" + env.Environment
	}
	maxTotalHits, err := strconv.Atoi(os.Getenv("MEILISEARCH_MAX_TOTAL_HITS"))
	if err != nil || maxTotalHits <= 0 {
		maxTotalHits = 1000 // index engine default retrievable hits cap
	}
	env.Meilisearch.MaxTotalHits = int64(maxTotalHits)
}
