package validators

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func multipartRequest(t *testing.T, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for name, data := range files {
		part, err := mw.CreateFormFile(name, name+".bin")
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestFormFileSniffsContentType(t *testing.T) {
	req := multipartRequest(t, map[string]string{"name": "  Scribe "}, map[string][]byte{"logo": pngHeader})
	if err := ParseMultipart(req, 1<<20); err != nil {
		t.Fatalf("parse: %v", err)
	}

	file, err := FormFile(req, "logo")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if file == nil {
		t.Fatal("expected logo file")
	}
	if file.ContentType != "image/png" {
		t.Fatalf("expected image/png got %s", file.ContentType)
	}
	if file.Size != int64(len(pngHeader)) || file.Filename != "logo.bin" {
		t.Fatalf("unexpected file %+v", file)
	}
	data, _ := io.ReadAll(file.Body)
	if !bytes.Equal(data, pngHeader) {
		t.Fatal("expected body to round trip")
	}

	if name := FormValue(req, "name"); name == nil || *name != "Scribe" {
		t.Fatalf("expected trimmed name, got %v", name)
	}
	if FormValue(req, "missing") != nil {
		t.Fatal("expected nil for absent field")
	}
}

func TestFormFileMissingPart(t *testing.T) {
	req := multipartRequest(t, map[string]string{"name": "x"}, nil)
	if err := ParseMultipart(req, 1<<20); err != nil {
		t.Fatalf("parse: %v", err)
	}
	file, err := FormFile(req, "logo")
	if err != nil || file != nil {
		t.Fatalf("expected nil file, got %v %v", file, err)
	}
}

func TestParseMultipartRejectsPlainBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"a":1}`))
	req.Header.Set("Content-Type", "application/json")
	if err := ParseMultipart(req, 1<<20); err == nil {
		t.Fatal("expected error for non-multipart body")
	}
}
