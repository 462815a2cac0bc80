package ddblocal

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/giantswarm/ddbenv/internal/logging"
)

// placeholderCredential doubles as access key id and secret key for probe
// requests. The engine accepts any syntactically valid credential pair; a
// fixed all-zero account id keeps probes independent of real credential
// stores.
const placeholderCredential = "000000000000"

// probeRegion is the signing region for probe requests. The engine ignores
// it but the SDK requires one to sign.
const probeRegion = "us-east-1"

// probeHTTPTimeout bounds a single probe request on the wire.
const probeHTTPTimeout = 5 * time.Second

// HealthChecker reports whether a DynamoDB Local engine answers requests on
// its endpoint. Construct with NewHealthChecker; the zero value has no
// client.
type HealthChecker struct {
	client *dynamodb.Client
	log    *slog.Logger
}

// NewHealthChecker builds a checker for the engine at endpoint, e.g.
// "http://localhost:8000".
//
// SDK retries are disabled so each Probe maps to exactly one request, and
// keep-alives are off so failed attempts during startup do not accumulate
// idle connections across rapid polling.
func NewHealthChecker(endpoint string, logger *slog.Logger) *HealthChecker {
	if logger == nil {
		logger = logging.Logger()
	}
	client := dynamodb.New(dynamodb.Options{
		Region:       probeRegion,
		BaseEndpoint: aws.String(endpoint),
		Credentials:  credentials.NewStaticCredentialsProvider(placeholderCredential, placeholderCredential, ""),
		Retryer:      aws.NopRetryer{},
		HTTPClient: &http.Client{
			Transport: &http.Transport{DisableKeepAlives: true},
			Timeout:   probeHTTPTimeout,
		},
	})
	return &HealthChecker{client: client, log: logger}
}

// Probe issues a single ListTables call against the engine and reports
// whether it served a structurally valid response. Connection failures,
// error statuses and malformed responses all mean the engine is not up yet;
// they are logged at debug level and never returned as errors.
func (h *HealthChecker) Probe(ctx context.Context) (bool, error) {
	_, err := h.client.ListTables(ctx, &dynamodb.ListTablesInput{Limit: aws.Int32(1)})
	if err == nil {
		return true, nil
	}
	if h.log.Enabled(ctx, slog.LevelDebug) {
		h.log.Debug("health probe failed", "error", err)
	}
	return false, nil
}
