package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aarav-aiphi/Backend/pkg/assets"
	"github.com/aarav-aiphi/Backend/pkg/config"
	"github.com/aarav-aiphi/Backend/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const uploadPartSize = 5 * 1024 * 1024

type api interface {
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Client stores directory images in a single S3 bucket.
type Client struct {
	api      api
	uploader uploader
	bucket   string
	baseURL  string
}

// New builds an S3 client from static keys when configured, otherwise the default credential chain.
func New(ctx context.Context, cfg config.S3Config, logg *logger.Logger) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	} else if logg != nil {
		logg.Warn(ctx, "s3 client using default credential chain")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	up := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = uploadPartSize
	})

	baseURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, map[string]any{"bucket": cfg.Bucket, "region": cfg.Region})
		logg.Info(ctx, "s3 asset store initialized")
	}

	return &Client{api: client, uploader: up, bucket: cfg.Bucket, baseURL: baseURL}, nil
}

// Upload streams body to key and returns its public URL.
func (c *Client) Upload(ctx context.Context, key, contentType string, body io.Reader) (assets.Asset, error) {
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return assets.Asset{}, fmt.Errorf("s3 upload %s: %w", key, err)
	}
	return assets.Asset{PublicID: key, URL: c.publicURL(key)}, nil
}

// Copy duplicates srcKey to dstKey, overwriting any existing object.
func (c *Client) Copy(ctx context.Context, srcKey, dstKey string) (assets.Asset, error) {
	_, err := c.api.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(c.bucket),
		CopySource: aws.String(c.bucket + "/" + url.PathEscape(srcKey)),
		Key:        aws.String(dstKey),
	})
	if err != nil {
		return assets.Asset{}, fmt.Errorf("s3 copy %s -> %s: %w", srcKey, dstKey, err)
	}
	return assets.Asset{PublicID: dstKey, URL: c.publicURL(dstKey)}, nil
}

// Destroy removes the object. Missing objects are not an error.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		var missing *types.NoSuchKey
		if errors.As(err, &missing) {
			return nil
		}
		return fmt.Errorf("s3 delete %s: %w", publicID, err)
	}
	return nil
}

// List pages through every object under prefix.
func (c *Client) List(ctx context.Context, prefix string) ([]assets.Object, error) {
	var (
		out   []assets.Object
		token *string
	)
	for {
		page, err := c.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(c.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			o := assets.Object{Key: aws.ToString(obj.Key), Size: aws.ToInt64(obj.Size)}
			if obj.LastModified != nil {
				o.LastModified = *obj.LastModified
			}
			out = append(out, o)
		}
		if !aws.ToBool(page.IsTruncated) || page.NextContinuationToken == nil {
			return out, nil
		}
		token = page.NextContinuationToken
	}
}

func (c *Client) publicURL(key string) string {
	return c.baseURL + "/" + key
}
