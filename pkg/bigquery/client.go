package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/aarav-aiphi/Backend/pkg/logger"
	"go.uber.org/multierr"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	metadataCheckTimeout = 10 * time.Second
	// Streaming inserts above this size are split into several Put calls.
	maxInsertBatch = 500
)

var (
	errProjectIDRequired    = errors.New("gcp project id is required")
	errDatasetRequired      = errors.New("bigquery dataset is required")
	errTableNameRequired    = errors.New("bigquery table name is required")
	errClientNotInitialized = errors.New("bigquery client not initialized")
)

// Client streams analytics rows into one dataset. The engagement table is
// checked at startup so a misconfigured deployment fails fast.
type Client struct {
	bq         *bigquery.Client
	dataset    *bigquery.Dataset
	engagement string
}

func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.BigQueryConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	datasetID := strings.TrimSpace(cfg.Dataset)
	table := strings.TrimSpace(cfg.EngagementTable)
	if err := multierr.Combine(
		required(projectID, errProjectIDRequired),
		required(datasetID, errDatasetRequired),
		required(table, errTableNameRequired),
	); err != nil {
		return nil, err
	}

	bq, err := bigquery.NewClient(ctx, projectID, clientOptions(gcp)...)
	if err != nil {
		return nil, fmt.Errorf("creating bigquery client: %w", err)
	}
	client := &Client{bq: bq, dataset: bq.Dataset(datasetID), engagement: table}
	if err := client.Ping(ctx); err != nil {
		_ = bq.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"dataset": datasetID,
			"table":   table,
		}), "bigquery.ready")
	}
	return client, nil
}

func clientOptions(gcp config.GCPConfig) []option.ClientOption {
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(gcp.CredentialsJSON))}
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		return []option.ClientOption{option.WithCredentialsFile(gcp.ApplicationCredentials)}
	}
	return nil
}

// Ping confirms the dataset and engagement table exist and are readable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.dataset == nil {
		return errClientNotInitialized
	}
	ctx, cancel := context.WithTimeout(ctx, metadataCheckTimeout)
	defer cancel()

	if _, err := c.dataset.Metadata(ctx); err != nil {
		return describe(err, "dataset", c.dataset.DatasetID)
	}
	if _, err := c.dataset.Table(c.engagement).Metadata(ctx); err != nil {
		return describe(err, "table", c.engagement)
	}
	return nil
}

// InsertRows streams rows into table, splitting large slices into chunks.
// A failed chunk stops the insert; earlier chunks stay written.
func (c *Client) InsertRows(ctx context.Context, table string, rows []any) error {
	if c == nil || c.dataset == nil {
		return errClientNotInitialized
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return errTableNameRequired
	}

	inserter := c.dataset.Table(table).Inserter()
	for _, chunk := range chunks(rows, maxInsertBatch) {
		if err := inserter.Put(ctx, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) EngagementTable() string {
	if c == nil {
		return ""
	}
	return c.engagement
}

func (c *Client) Close() error {
	if c == nil || c.bq == nil {
		return nil
	}
	return c.bq.Close()
}

func chunks(rows []any, size int) [][]any {
	return slices.Collect(slices.Chunk(rows, size))
}

func required(v string, missing error) error {
	if v == "" {
		return missing
	}
	return nil
}

func describe(err error, kind, name string) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return fmt.Errorf("%s %q does not exist", kind, name)
	}
	return fmt.Errorf("checking %s %q: %w", kind, name, err)
}
