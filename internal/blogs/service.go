package blogs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aarav-aiphi/Backend/pkg/assets"
	"github.com/aarav-aiphi/Backend/pkg/db/models"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultMaxImageBytes int64 = 5 << 20

	msgNotFound      = "Blog not found"
	msgRemoved       = "Blog removed"
	msgNoImage       = "No image uploaded"
	msgImageType     = "Only JPEG, PNG, and GIF images are allowed"
	msgImageTooLarge = "Image size should not exceed 5MB"
)

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
}

// Service manages blog posts and their images.
type Service interface {
	List(ctx context.Context) ([]BlogDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*BlogDTO, error)
	Create(ctx context.Context, input Input) (*BlogDTO, error)
	Update(ctx context.Context, id uuid.UUID, input Input) (*BlogDTO, error)
	Delete(ctx context.Context, id uuid.UUID) (string, error)
	UploadImage(ctx context.Context, file *assets.File) (*UploadResult, error)
}

type ServiceParams struct {
	Repo          *Repository
	Assets        assets.Store
	Logger        *logger.Logger
	MaxImageBytes int64
}

type service struct {
	repo     *Repository
	assets   assets.Store
	logg     *logger.Logger
	maxBytes int64
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("blog repo is required")
	}
	if params.Assets == nil {
		return nil, fmt.Errorf("asset store is required")
	}
	maxBytes := params.MaxImageBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxImageBytes
	}
	return &service{repo: params.Repo, assets: params.Assets, logg: params.Logger, maxBytes: maxBytes}, nil
}

func (s *service) List(ctx context.Context) ([]BlogDTO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list blogs")
	}
	out := make([]BlogDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*BlogDTO, error) {
	blog, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(blog), nil
}

func (s *service) Create(ctx context.Context, input Input) (*BlogDTO, error) {
	blog := &models.Blog{Tags: []string{}}
	applyText(blog, input)
	if blog.Title == "" || blog.Content == "" || blog.Category == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title, content and category are required")
	}

	up := &uploads{store: s.assets}
	if err := s.stage(ctx, blog, nil, input, up); err != nil {
		s.destroy(ctx, up.keys)
		return nil, err
	}
	if err := s.repo.Create(ctx, blog); err != nil {
		s.destroy(ctx, up.keys)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create blog")
	}
	return FromModel(blog), nil
}

// Update replaces the fields present in input. Images no longer referenced
// by the post are destroyed once the new version is stored.
func (s *service) Update(ctx context.Context, id uuid.UUID, input Input) (*BlogDTO, error) {
	blog, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	before := imageIDs(blog)
	previous := indexImages(blog)

	applyText(blog, input)
	up := &uploads{store: s.assets}
	if err := s.stage(ctx, blog, previous, input, up); err != nil {
		s.destroy(ctx, up.keys)
		return nil, err
	}
	if err := s.repo.Save(ctx, blog); err != nil {
		s.destroy(ctx, up.keys)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update blog")
	}

	after := imageIDs(blog)
	var orphaned []string
	for _, key := range before {
		if _, kept := after[key]; !kept {
			orphaned = append(orphaned, key)
		}
	}
	s.destroy(ctx, orphaned)
	return FromModel(blog), nil
}

// Delete removes the post. Image removal is best effort.
func (s *service) Delete(ctx context.Context, id uuid.UUID) (string, error) {
	blog, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", pkgerrors.New(pkgerrors.CodeNotFound, msgNotFound)
		}
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete blog")
	}
	keys := make([]string, 0)
	for key := range imageIDs(blog) {
		keys = append(keys, key)
	}
	s.destroy(ctx, keys)
	return msgRemoved, nil
}

func (s *service) UploadImage(ctx context.Context, file *assets.File) (*UploadResult, error) {
	if file == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgNoImage)
	}
	if err := s.checkImage(*file); err != nil {
		return nil, err
	}
	asset, err := assets.UploadFile(ctx, s.assets, assets.FolderBlogImages, *file)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Image upload failed. Please try again.")
	}
	return &UploadResult{URL: asset.URL}, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Blog, error) {
	blog, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, msgNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load blog")
	}
	return blog, nil
}

func (s *service) checkImage(f assets.File) error {
	if _, ok := allowedImageTypes[strings.ToLower(f.ContentType)]; !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, msgImageType)
	}
	if f.Size > s.maxBytes {
		return pkgerrors.New(pkgerrors.CodeValidation, msgImageTooLarge)
	}
	return nil
}

// stage uploads new images and rebuilds sections and the main image on blog.
// previous maps already stored public ids to their images.
func (s *service) stage(ctx context.Context, blog *models.Blog, previous map[string]models.BlogImage, input Input, up *uploads) error {
	for _, files := range input.SectionFiles {
		for _, f := range files {
			if err := s.checkImage(f); err != nil {
				return err
			}
		}
	}
	if input.MainImage != nil {
		if err := s.checkImage(*input.MainImage); err != nil {
			return err
		}
	}

	if input.Sections != nil {
		sections := make([]models.BlogSection, 0, len(input.Sections))
		for _, in := range input.Sections {
			section := models.BlogSection{Title: in.Title, Content: in.Content}
			for _, publicID := range in.Images {
				if img, ok := previous[publicID]; ok {
					section.Images = append(section.Images, img)
				}
			}
			for _, f := range input.SectionFiles[in.ID] {
				asset, err := up.add(ctx, assets.FolderBlogImages, f)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to upload section images.")
				}
				section.Images = append(section.Images, models.BlogImage{PublicID: asset.PublicID, URL: asset.URL})
			}
			sections = append(sections, section)
		}
		blog.Sections = datatypes.JSONSlice[models.BlogSection](sections)
	}

	if input.MainImage != nil {
		asset, err := up.add(ctx, assets.FolderBlogMainImages, *input.MainImage)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "Failed to upload main image.")
		}
		blog.Image = datatypes.NewJSONType(models.BlogImage{PublicID: asset.PublicID, URL: asset.URL})
	}
	return nil
}

func (s *service) destroy(ctx context.Context, keys []string) {
	var errs error
	for _, key := range keys {
		errs = multierr.Append(errs, s.assets.Destroy(ctx, key))
	}
	if errs != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "public_ids", keys), "blog image cleanup failed", errs)
	}
}

func applyText(blog *models.Blog, input Input) {
	if v := trimmed(input.Title); v != "" {
		blog.Title = v
	}
	if v := trimmed(input.Content); v != "" {
		blog.Content = v
	}
	if v := trimmed(input.Category); v != "" {
		blog.Category = v
	}
	if input.Tags != nil && strings.TrimSpace(*input.Tags) != "" {
		blog.Tags = ParseTags(*input.Tags)
	}
}

func trimmed(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}

func indexImages(blog *models.Blog) map[string]models.BlogImage {
	out := map[string]models.BlogImage{}
	for _, section := range blog.Sections {
		for _, img := range section.Images {
			if img.PublicID != "" {
				out[img.PublicID] = img
			}
		}
	}
	return out
}

func imageIDs(blog *models.Blog) map[string]struct{} {
	out := map[string]struct{}{}
	for id := range indexImages(blog) {
		out[id] = struct{}{}
	}
	if main := blog.Image.Data(); main.PublicID != "" {
		out[main.PublicID] = struct{}{}
	}
	return out
}

// uploads remembers what a request stored so a failed request can undo it.
type uploads struct {
	store assets.Store
	keys  []string
}

func (u *uploads) add(ctx context.Context, folder string, f assets.File) (assets.Asset, error) {
	asset, err := assets.UploadFile(ctx, u.store, folder, f)
	if err != nil {
		return assets.Asset{}, err
	}
	u.keys = append(u.keys, asset.PublicID)
	return asset, nil
}
