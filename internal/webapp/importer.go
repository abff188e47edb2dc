package webapp

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/phillip-england/hrpulse/internal/apiclient"
)

const (
	importField      = "roster_file"
	maxImportBytes   = 10 << 20
	maxImportRows    = 100000
	uploadTypeFailed = "Please upload a CSV file"
)

var (
	errUnsupportedUpload = errors.New(uploadTypeFailed)
	errEmptyUpload       = errors.New("uploaded file is empty")
	errMissingNameColumn = errors.New("missing Name column")
)

// importColumns are the headers the upload page documents, in order.
var importColumns = []string{
	"Name",
	"Department",
	"Position",
	"Email",
	"Salary",
	"Performance Score",
	"Projects (comma-separated)",
	"Skills (comma-separated)",
}

// headerFields maps a normalized header to the employee field it fills.
var headerFields = map[string]string{
	"name":                       "name",
	"first name":                 "first_name",
	"first_name":                 "first_name",
	"last name":                  "last_name",
	"last_name":                  "last_name",
	"department":                 "department",
	"position":                   "position",
	"email":                      "email",
	"salary":                     "salary",
	"performance score":          "performance_score",
	"performance_score":          "performance_score",
	"projects":                   "projects",
	"projects (comma-separated)": "projects",
	"skills":                     "skills",
	"skills (comma-separated)":   "skills",
	"risk level":                 "risk_level",
	"risk_level":                 "risk_level",
	"hire date":                  "hire_date",
	"hire_date":                  "hire_date",
}

func (s *server) importPage(w http.ResponseWriter, r *http.Request) {
	data := s.newPage(r, "Upload Employee Data", "import")
	data.ImportColumns = importColumns
	s.render(w, r, s.importTmpl, http.StatusOK, data)
}

func (s *server) importEmployeesProxy(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes+(2<<20))
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		redirectWith(w, r, "/employees/import", "error", "Invalid upload form")
		return
	}
	file, header, err := r.FormFile(importField)
	if err != nil {
		redirectWith(w, r, "/employees/import", "error", "Please choose a file to upload")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxImportBytes))
	if err != nil {
		redirectWith(w, r, "/employees/import", "error", "Unable to read uploaded file")
		return
	}

	rows, err := readRoster(raw, header.Filename)
	if err != nil {
		s.logger.Info("import rejected", "filename", header.Filename, "error", err)
		redirectWith(w, r, "/employees/import", "error", err.Error())
		return
	}
	imported, err := employeesFromRows(rows)
	if err != nil {
		redirectWith(w, r, "/employees/import", "error", err.Error())
		return
	}

	token := s.token(r)
	api := s.api.WithToken(token)
	created := 0
	for _, row := range imported {
		if _, err := api.CreateEmployee(r.Context(), row.Employee); err != nil {
			s.logger.Error("import row failed", "row", row.Line, "created", created, "error", err)
			s.roster.Reload(token)
			redirectWith(w, r, "/employees/import", "error",
				fmt.Sprintf("Import stopped at row %d (%s). %d employees were created.", row.Line, row.Name, created))
			return
		}
		created++
	}
	s.roster.Reload(token)
	s.logger.Info("import finished", "filename", header.Filename, "created", created)
	redirectWith(w, r, "/employees", "message", fmt.Sprintf("Imported %d employees", created))
}

// readRoster returns the rows of an uploaded CSV, XLSX or XLS file. The
// type comes from the extension and must agree with the sniffed content.
func readRoster(data []byte, filename string) ([][]string, error) {
	if len(data) == 0 {
		return nil, errEmptyUpload
	}
	detected := http.DetectContentType(data)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		if !strings.HasPrefix(detected, "text/plain") {
			return nil, errUnsupportedUpload
		}
		reader := csv.NewReader(bytes.NewReader(data))
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("unable to read CSV: %w", err)
		}
		return nonEmpty(rows)
	case ".xlsx":
		if detected != "application/zip" {
			return nil, errUnsupportedUpload
		}
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("unable to read workbook: %w", err)
		}
		defer func() { _ = file.Close() }()

		sheetName := file.GetSheetName(0)
		if sheetName == "" {
			return nil, errors.New("no worksheet found")
		}
		rows, err := file.GetRows(sheetName)
		if err != nil {
			return nil, fmt.Errorf("unable to read worksheet: %w", err)
		}
		return nonEmpty(rows)
	case ".xls":
		if detected != "application/octet-stream" {
			return nil, errUnsupportedUpload
		}
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, fmt.Errorf("unable to read workbook: %w", err)
		}
		if workbook.NumSheets() == 0 {
			return nil, errors.New("no worksheet found")
		}
		if workbook.NumSheets() > 1 {
			return nil, errors.New("multiple worksheets found; please upload a file with a single sheet")
		}
		return nonEmpty(workbook.ReadAllCells(maxImportRows))
	default:
		return nil, errUnsupportedUpload
	}
}

func nonEmpty(rows [][]string) ([][]string, error) {
	if len(rows) == 0 {
		return nil, errors.New("worksheet is empty")
	}
	return rows, nil
}

// importRow is one employee read from an upload. Line is the 1-based row in
// the sheet, counting the header and any blank rows.
type importRow struct {
	Line int
	apiclient.Employee
}

// employeesFromRows reads the first row as headers and every later non-blank
// row as one employee. Unknown columns are ignored.
func employeesFromRows(rows [][]string) ([]importRow, error) {
	index := map[string]int{}
	for i, h := range rows[0] {
		if field, ok := headerFields[normalizeHeader(h)]; ok {
			if _, seen := index[field]; !seen {
				index[field] = i
			}
		}
	}
	if _, ok := index["name"]; !ok {
		if _, first := index["first_name"]; !first {
			return nil, errMissingNameColumn
		}
	}

	col := func(row []string, field string) string {
		i, ok := index[field]
		if !ok {
			return ""
		}
		return cellValue(row, i)
	}

	var out []importRow
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		form := employeeForm{
			Name:             col(row, "name"),
			FirstName:        col(row, "first_name"),
			LastName:         col(row, "last_name"),
			Department:       col(row, "department"),
			Position:         col(row, "position"),
			Email:            col(row, "email"),
			Salary:           col(row, "salary"),
			PerformanceScore: col(row, "performance_score"),
			Projects:         col(row, "projects"),
			Skills:           col(row, "skills"),
			RiskLevel:        col(row, "risk_level"),
			HireDate:         col(row, "hire_date"),
		}
		out = append(out, importRow{Line: i + 2, Employee: form.employee()})
	}
	if len(out) == 0 {
		return nil, errors.New("no employee rows found")
	}
	return out, nil
}

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header, "\ufeff")))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
