package blogs

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/aarav-aiphi/Backend/pkg/assets"
	"github.com/aarav-aiphi/Backend/pkg/db/models"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/google/uuid"
)

// BlogDTO is the public representation of a post.
type BlogDTO struct {
	ID        uuid.UUID            `json:"id"`
	Title     string               `json:"title"`
	Content   string               `json:"content"`
	Tags      []string             `json:"tags"`
	Category  string               `json:"category"`
	Sections  []models.BlogSection `json:"sections"`
	Image     *models.BlogImage    `json:"image,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

func FromModel(b *models.Blog) *BlogDTO {
	if b == nil {
		return nil
	}
	dto := &BlogDTO{
		ID:        b.ID,
		Title:     b.Title,
		Content:   b.Content,
		Tags:      append([]string{}, b.Tags...),
		Category:  b.Category,
		Sections:  append([]models.BlogSection{}, b.Sections...),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if img := b.Image.Data(); img.PublicID != "" || img.URL != "" {
		dto.Image = &img
	}
	return dto
}

// SectionInput is one section as sent by the editor. Images lists the
// public ids of already stored images the section keeps; new files are
// matched to the section by ID.
type SectionInput struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Images  []string `json:"images"`
}

// ParseSections decodes the sections form field.
func ParseSections(raw string) ([]SectionInput, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var sections []SectionInput
	if err := json.Unmarshal([]byte(raw), &sections); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "sections must be a JSON array")
	}
	return sections, nil
}

// ParseTags splits a comma separated tag list.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// SectionFileField is the multipart field carrying new images for a section.
func SectionFileField(sectionID string) string {
	return "sections[" + sectionID + "].newImages"
}

// Input carries a create or update request. Nil pointers leave the stored
// value untouched on update. Sections is nil when the field was absent.
type Input struct {
	Title        *string
	Content      *string
	Category     *string
	Tags         *string
	Sections     []SectionInput
	SectionFiles map[string][]assets.File
	MainImage    *assets.File
}

// UploadResult answers a standalone image upload.
type UploadResult struct {
	URL string `json:"url"`
}
