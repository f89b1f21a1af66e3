package controllers

import (
	"net/http"

	"github.com/aarav-aiphi/Backend/api/responses"
	"github.com/aarav-aiphi/Backend/api/validators"
	"github.com/aarav-aiphi/Backend/internal/blogs"
	"github.com/aarav-aiphi/Backend/pkg/assets"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
	"github.com/aarav-aiphi/Backend/pkg/logger"
)

func BlogsList(svc blogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, posts)
	}
}

func BlogsGet(svc blogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		post, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}

func BlogsCreate(svc blogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, err := blogInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		post, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, post)
	}
}

func BlogsUpdate(svc blogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := blogInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		post, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, post)
	}
}

func BlogsDelete(svc blogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		msg, err := svc.Delete(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": msg})
	}
}

// BlogsUploadImage stores a single inline image from the "image" field.
func BlogsUploadImage(svc blogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := validators.ParseMultipart(r, multipartMemory); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		file, err := validators.FormFile(r, "image")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.UploadImage(r.Context(), file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func blogInput(r *http.Request) (blogs.Input, error) {
	if !isMultipart(r) {
		return blogs.Input{}, pkgerrors.New(pkgerrors.CodeValidation, "expected multipart/form-data body")
	}
	if err := validators.ParseMultipart(r, multipartMemory); err != nil {
		return blogs.Input{}, err
	}

	input := blogs.Input{
		Title:    validators.FormValue(r, "title"),
		Content:  validators.FormValue(r, "content"),
		Category: validators.FormValue(r, "category"),
		Tags:     validators.FormValue(r, "tags"),
	}
	if raw := validators.FormValue(r, "sections"); raw != nil {
		sections, err := blogs.ParseSections(*raw)
		if err != nil {
			return blogs.Input{}, err
		}
		input.Sections = sections
	}

	input.SectionFiles = map[string][]assets.File{}
	for _, section := range input.Sections {
		files, err := validators.FormFiles(r, blogs.SectionFileField(section.ID))
		if err != nil {
			return blogs.Input{}, err
		}
		if len(files) > 0 {
			input.SectionFiles[section.ID] = files
		}
	}

	mainImage, err := validators.FormFile(r, "mainImage")
	if err != nil {
		return blogs.Input{}, err
	}
	input.MainImage = mainImage
	return input, nil
}
