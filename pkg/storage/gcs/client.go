package gcs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/aarav-aiphi/Backend/pkg/logger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	scope       = "https://www.googleapis.com/auth/devstorage.read_write"
	pingTimeout = 5 * time.Second
	apiBase     = "https://storage.googleapis.com/storage/v1"
	uploadBase  = "https://storage.googleapis.com/upload/storage/v1"
	publicHost  = "https://storage.googleapis.com"
)

// Client stores agent assets in a single Cloud Storage bucket through the
// JSON API.
type Client struct {
	httpClient *http.Client
	bucket     string
	tokens     oauth2.TokenSource
	publicBase string
}

// NewClient resolves credentials (inline JSON, a key file, or the ambient
// default chain), then checks the bucket is reachable.
func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BucketName) == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	tokens, err := tokenSource(ctx, gcp)
	if err != nil {
		return nil, err
	}

	client := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		bucket:     cfg.BucketName,
		tokens:     oauth2.ReuseTokenSource(nil, tokens),
		publicBase: publicHost + "/" + cfg.BucketName,
	}
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}
	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", cfg.BucketName), "gcs client initialized")
	}
	return client, nil
}

func tokenSource(ctx context.Context, gcp config.GCPConfig) (oauth2.TokenSource, error) {
	raw := []byte(gcp.CredentialsJSON)
	if len(raw) == 0 && gcp.ApplicationCredentials != "" {
		b, err := os.ReadFile(gcp.ApplicationCredentials)
		if err != nil {
			return nil, fmt.Errorf("reading credentials file: %w", err)
		}
		raw = b
	}
	if len(raw) > 0 {
		creds, err := google.CredentialsFromJSON(ctx, raw, scope)
		if err != nil {
			return nil, fmt.Errorf("parsing gcs credentials: %w", err)
		}
		return creds.TokenSource, nil
	}
	ts, err := google.DefaultTokenSource(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("default gcs credentials: %w", err)
	}
	return ts, nil
}

func (c *Client) Bucket() string {
	if c == nil {
		return ""
	}
	return c.bucket
}

func (c *Client) Close() error {
	return nil
}

// Ping lists at most one object to prove the credentials can read the bucket.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.tokens == nil {
		return errors.New("gcs client not initialized")
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	u := fmt.Sprintf("%s/b/%s/o?maxResults=1&fields=kind", apiBase, url.PathEscape(c.bucket))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("gcs bucket check: %w", err)
	}
	return nil
}
