package assets

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/google/uuid"
)

const (
	FolderAgents         = "agents"
	FolderAgentsTemp     = "agents/temp"
	FolderBlogImages     = "blog_images"
	FolderBlogMainImages = "blog_main_images"

	defaultTimeout = 20 * time.Second
)

// Asset identifies an uploaded object. PublicID is the object key inside the bucket.
type Asset struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// Object is a listing entry returned by List.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// File is an upload received from a client.
type File struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// UploadFile stores f under a fresh key in folder.
func UploadFile(ctx context.Context, store Store, folder string, f File) (Asset, error) {
	return store.Upload(ctx, NewKey(folder, f.Filename, f.ContentType), f.ContentType, f.Body)
}

// Store is the object store surface used by the directory.
type Store interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (Asset, error)
	Copy(ctx context.Context, srcKey, dstKey string) (Asset, error)
	Destroy(ctx context.Context, publicID string) error
	List(ctx context.Context, prefix string) ([]Object, error)
}

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// NewKey returns a unique object key under folder, keeping the file's extension.
func NewKey(folder, filename, contentType string) string {
	return path.Join(strings.Trim(folder, "/"), uuid.NewString()+extensionFor(filename, contentType))
}

// PromotedKey returns the permanent key for a promoted temp asset. The temp object's
// name is kept, so every staged upload lands on a key no live listing references.
func PromotedKey(listingID uuid.UUID, kind, tempKey string) string {
	return path.Join(FolderAgents, listingID.String(), kind+"-"+path.Base(tempKey))
}

// IsTemp reports whether key lives in the temporary upload namespace.
func IsTemp(key string) bool {
	return strings.HasPrefix(strings.TrimPrefix(key, "/"), FolderAgentsTemp+"/")
}

func extensionFor(filename, contentType string) string {
	if ext := strings.ToLower(path.Ext(filename)); ext != "" {
		return ext
	}
	if ext, ok := imageExtensions[strings.ToLower(contentType)]; ok {
		return ext
	}
	return ""
}


// WithTimeout bounds every call on store. Deadline overruns and backend failures surface as
// retryable dependency errors.
func WithTimeout(store Store, timeout time.Duration) Store {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &boundedStore{inner: store, timeout: timeout}
}

type boundedStore struct {
	inner   Store
	timeout time.Duration
}

func (b *boundedStore) Upload(ctx context.Context, key, contentType string, body io.Reader) (Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	asset, err := b.inner.Upload(ctx, key, contentType, body)
	return asset, wrapDependency(err, "upload asset")
}

func (b *boundedStore) Copy(ctx context.Context, srcKey, dstKey string) (Asset, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	asset, err := b.inner.Copy(ctx, srcKey, dstKey)
	return asset, wrapDependency(err, "copy asset")
}

func (b *boundedStore) Destroy(ctx context.Context, publicID string) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	return wrapDependency(b.inner.Destroy(ctx, publicID), "destroy asset")
}

func (b *boundedStore) List(ctx context.Context, prefix string) ([]Object, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	objects, err := b.inner.List(ctx, prefix)
	return objects, wrapDependency(err, "list assets")
}

func wrapDependency(err error, op string) error {
	if err == nil {
		return nil
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s failed", op))
}
