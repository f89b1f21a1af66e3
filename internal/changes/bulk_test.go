package changes

import (
	"strings"
	"testing"

	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
)

const bulkHeader = "name,websiteUrl,accessModel,pricingModel,category,industry,tags\n"

func TestParseBulkCSVReportsFailedRows(t *testing.T) {
	csv := bulkHeader +
		"Scribe,https://scribe.example,API,Free,Writing,Media,\"ai, writing\"\n" +
		"Missing,,API,Free,Writing,Media,\n" +
		"\n" +
		"Painter,https://painter.example,Shareware,Free,Art,Media,\n" +
		"  Closer , https://closer.example ,Closed Source,Paid,Sales,Retail,\n"

	rows, failures, err := parseBulkCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected two valid rows, got %d", len(rows))
	}
	if *rows[0].payload.Name != "Scribe" || len(*rows[0].payload.Tags) != 2 {
		t.Fatalf("unexpected first row %+v", rows[0].payload.Fields)
	}
	if *rows[1].payload.Name != "Closer" || rows[1].row != 5 {
		t.Fatalf("expected trimmed second row at line 5, got %q at %d", *rows[1].payload.Name, rows[1].row)
	}

	if len(failures) != 2 {
		t.Fatalf("expected two failures, got %+v", failures)
	}
	if failures[0].Row != 3 || failures[0].Message != "Missing required fields." {
		t.Fatalf("unexpected first failure %+v", failures[0])
	}
	if failures[1].Row != 4 {
		t.Fatalf("expected invalid access model on row 4, got %+v", failures[1])
	}
}

func TestParseBulkCSVEmpty(t *testing.T) {
	if _, _, err := parseBulkCSV(strings.NewReader("")); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	rows, failures, err := parseBulkCSV(strings.NewReader(bulkHeader))
	if err != nil || len(rows) != 0 || len(failures) != 0 {
		t.Fatalf("expected header only to yield nothing, got %v %v %v", rows, failures, err)
	}
}
