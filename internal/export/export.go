// Package export writes validated contacts as csv, json, yaml or xlsx.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/outreach-cli/internal/apperr"
	"github.com/sells-group/outreach-cli/internal/model"
)

// Format is an output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// SheetName is the worksheet used for xlsx exports.
const SheetName = "Leads"

// Header is the column order for tabular formats.
var Header = []string{"apollo_id", "email", "first_name", "last_name", "title", "company", "linkedin_url"}

// ParseFormat accepts a format name or a file extension. Empty means csv.
func ParseFormat(s string) (Format, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")
	switch s {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xlsx":
		return FormatXLSX, nil
	}
	return "", apperr.Validation("Unsupported export format: " + s)
}

// Write encodes contacts to w.
func Write(w io.Writer, format Format, contacts []model.ValidatedContact) error {
	if contacts == nil {
		contacts = []model.ValidatedContact{}
	}
	switch format {
	case FormatCSV:
		return writeCSV(w, contacts)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(contacts), "export: encode json")
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(contacts); err != nil {
			return eris.Wrap(err, "export: encode yaml")
		}
		return eris.Wrap(enc.Close(), "export: close yaml")
	case FormatXLSX:
		return writeXLSX(w, contacts)
	}
	return apperr.Validation("Unsupported export format: " + string(format))
}

func row(c model.ValidatedContact) []string {
	return []string{c.ApolloID, c.Email, c.FirstName, c.LastName, c.Title, c.Company, c.LinkedInURL}
}

func writeCSV(w io.Writer, contacts []model.ValidatedContact) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, c := range contacts {
		if err := cw.Write(row(c)); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

func writeXLSX(w io.Writer, contacts []model.ValidatedContact) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	addRow := func(cells []string) {
		r := sheet.AddRow()
		for _, v := range cells {
			r.AddCell().SetString(v)
		}
	}
	addRow(Header)
	for _, c := range contacts {
		addRow(row(c))
	}

	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write xlsx")
	}
	return nil
}
