package changes

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/aarav-aiphi/Backend/internal/listings"
	pkgerrors "github.com/aarav-aiphi/Backend/pkg/errors"
)

// RequiredCSVColumns must be non-empty on every bulk upload row.
var RequiredCSVColumns = []string{"name", "websiteUrl", "accessModel", "pricingModel", "category", "industry"}

type bulkRow struct {
	row     int
	payload CreatePayload
}

// parseBulkCSV reads a header row followed by one listing per row. Rows that
// fail validation are reported with their 1-based line number.
func parseBulkCSV(r io.Reader) ([]bulkRow, []BulkFailure, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "No CSV data provided.")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "CSV could not be parsed")
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var (
		rows     []bulkRow
		failures []BulkFailure
		index    int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "CSV could not be parsed")
		}
		if blankRecord(record) {
			continue
		}
		line := index + 2
		index++

		values := make(map[string]string, len(header))
		for i, column := range header {
			if i < len(record) {
				values[column] = strings.TrimSpace(record[i])
			}
		}
		if !hasRequired(values) {
			failures = append(failures, BulkFailure{Row: line, Message: "Missing required fields."})
			continue
		}

		fields, err := listings.FieldsFromRecord(values)
		if err == nil {
			err = fields.ValidateCreate()
		}
		if err != nil {
			failures = append(failures, BulkFailure{Row: line, Message: failureMessage(err)})
			continue
		}
		rows = append(rows, bulkRow{row: line, payload: CreatePayload{Fields: fields}})
	}
	return rows, failures, nil
}

func hasRequired(values map[string]string) bool {
	for _, column := range RequiredCSVColumns {
		if values[column] == "" {
			return false
		}
	}
	return true
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func failureMessage(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Message()
	}
	return err.Error()
}
