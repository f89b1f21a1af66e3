package gcs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/assets"
	"google.golang.org/api/googleapi"
)

type objectResource struct {
	Name    string `json:"name"`
	Size    string `json:"size"`
	Updated string `json:"updated"`
}

type listResponse struct {
	Items         []objectResource `json:"items"`
	NextPageToken string           `json:"nextPageToken"`
}

type rewriteResponse struct {
	Done         bool   `json:"done"`
	RewriteToken string `json:"rewriteToken"`
}

// Upload performs a simple media upload of body to key.
func (c *Client) Upload(ctx context.Context, key, contentType string, body io.Reader) (assets.Asset, error) {
	u := fmt.Sprintf("%s/b/%s/o?uploadType=media&name=%s", uploadBase, url.PathEscape(c.bucket), url.QueryEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return assets.Asset{}, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if err := c.do(req, nil); err != nil {
		return assets.Asset{}, fmt.Errorf("gcs upload %s: %w", key, err)
	}
	return assets.Asset{PublicID: key, URL: c.publicURL(key)}, nil
}

// Copy rewrites srcKey into dstKey, following rewrite tokens for large objects.
func (c *Client) Copy(ctx context.Context, srcKey, dstKey string) (assets.Asset, error) {
	bucket := url.PathEscape(c.bucket)
	token := ""
	for {
		u := fmt.Sprintf("%s/b/%s/o/%s/rewriteTo/b/%s/o/%s", apiBase, bucket, url.PathEscape(srcKey), bucket, url.PathEscape(dstKey))
		if token != "" {
			u += "?rewriteToken=" + url.QueryEscape(token)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
		if err != nil {
			return assets.Asset{}, err
		}
		var resp rewriteResponse
		if err := c.do(req, &resp); err != nil {
			return assets.Asset{}, fmt.Errorf("gcs rewrite %s -> %s: %w", srcKey, dstKey, err)
		}
		if resp.Done {
			return assets.Asset{PublicID: dstKey, URL: c.publicURL(dstKey)}, nil
		}
		if resp.RewriteToken == "" {
			return assets.Asset{}, fmt.Errorf("gcs rewrite %s: incomplete without token", srcKey)
		}
		token = resp.RewriteToken
	}
}

// Destroy deletes the object. A 404 counts as success.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	u := fmt.Sprintf("%s/b/%s/o/%s", apiBase, url.PathEscape(c.bucket), url.PathEscape(publicID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
			return nil
		}
		return fmt.Errorf("gcs delete %s: %w", publicID, err)
	}
	return nil
}

// List returns every object whose name starts with prefix.
func (c *Client) List(ctx context.Context, prefix string) ([]assets.Object, error) {
	var (
		out   []assets.Object
		token string
	)
	for {
		q := url.Values{}
		q.Set("prefix", prefix)
		q.Set("fields", "items(name,size,updated),nextPageToken")
		if token != "" {
			q.Set("pageToken", token)
		}
		u := fmt.Sprintf("%s/b/%s/o?%s", apiBase, url.PathEscape(c.bucket), q.Encode())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		var page listResponse
		if err := c.do(req, &page); err != nil {
			return nil, fmt.Errorf("gcs list %s: %w", prefix, err)
		}
		for _, item := range page.Items {
			obj := assets.Object{Key: item.Name}
			obj.Size, _ = strconv.ParseInt(item.Size, 10, 64)
			obj.LastModified, _ = time.Parse(time.RFC3339Nano, item.Updated)
			out = append(out, obj)
		}
		if page.NextPageToken == "" {
			return out, nil
		}
		token = page.NextPageToken
	}
}

func (c *Client) do(req *http.Request, dest any) error {
	if c == nil || c.tokens == nil {
		return errors.New("gcs client not initialized")
	}
	token, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("gcs token: %w", err)
	}
	token.SetAuthHeader(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := googleapi.CheckResponse(resp); err != nil {
		return err
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

func (c *Client) publicURL(key string) string {
	base := c.publicBase
	if base == "" {
		base = publicHost + "/" + c.bucket
	}
	return base + "/" + key
}
