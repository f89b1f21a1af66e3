package validators

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/aarav-aiphi/Backend/pkg/assets"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
)

// ParseMultipart parses a multipart/form-data body, keeping up to maxMemory
// bytes of file parts in memory.
func ParseMultipart(r *http.Request, maxMemory int64) error {
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "request body too large")
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	return nil
}

// FormValue returns a pointer to the trimmed form value, or nil when the
// field was not sent.
func FormValue(r *http.Request, key string) *string {
	if r.MultipartForm != nil {
		if values, ok := r.MultipartForm.Value[key]; ok && len(values) > 0 {
			v := strings.TrimSpace(values[0])
			return &v
		}
	}
	if r.PostForm != nil {
		if values, ok := r.PostForm[key]; ok && len(values) > 0 {
			v := strings.TrimSpace(values[0])
			return &v
		}
	}
	return nil
}

// FormFile loads the first file part under field. A missing part returns nil
// without error. The content type is sniffed from the bytes, not taken from
// the client.
func FormFile(r *http.Request, field string) (*assets.File, error) {
	files, err := FormFiles(r, field)
	if err != nil || len(files) == 0 {
		return nil, err
	}
	return &files[0], nil
}

// FormFiles loads every file part under field.
func FormFiles(r *http.Request, field string) ([]assets.File, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	headers := r.MultipartForm.File[field]
	out := make([]assets.File, 0, len(headers))
	for _, header := range headers {
		file, err := readPart(header)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read uploaded file").WithDetails(map[string]any{"field": field})
		}
		out = append(out, file)
	}
	return out, nil
}

func readPart(header *multipart.FileHeader) (assets.File, error) {
	src, err := header.Open()
	if err != nil {
		return assets.File{}, err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return assets.File{}, err
	}
	return assets.File{
		Filename:    header.Filename,
		ContentType: mimetype.Detect(data).String(),
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	}, nil
}
