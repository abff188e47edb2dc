package devapi

import (
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"

	"github.com/phillip-england/hrpulse/internal/apiclient"
)

const (
	excelContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType   = "application/pdf"
	exportSheet      = "Employees"
)

var exportHeaders = []string{"Name", "Department", "Position", "Email", "Risk Level", "Turnover Probability", "Salary", "Performance Score"}

type exportRow struct {
	Values         []any
	Recommendation string
}

func exportRows(list []apiclient.Employee) []exportRow {
	out := make([]exportRow, 0, len(list))
	for _, e := range list {
		level := levelFor(e)
		out = append(out, exportRow{
			Values: []any{
				e.Name, e.Department, e.Position, e.Email, level.BackendLabel(),
				e.TurnoverProbability, e.Salary, e.PerformanceScore,
			},
			Recommendation: recommendation(level),
		})
	}
	return out
}

func writeExcel(w io.Writer, list []apiclient.Employee, withRecommendations bool) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return err
	}

	headers := make([]any, 0, len(exportHeaders)+1)
	for _, h := range exportHeaders {
		headers = append(headers, h)
	}
	if withRecommendations {
		headers = append(headers, "Recommendation")
	}
	if err := f.SetSheetRow(exportSheet, "A1", &headers); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(exportSheet, "A1", lastCol+"1", bold); err != nil {
		return err
	}

	for i, row := range exportRows(list) {
		values := row.Values
		if withRecommendations {
			values = append(values, row.Recommendation)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return err
		}
	}
	return f.Write(w)
}

var (
	pdfHeaders         = []string{"Name", "Department", "Position", "Risk Level", "Probability"}
	pdfWidths          = []float64{70, 60, 62, 40, 45}
	pdfRecommendWidths = []float64{48, 38, 40, 28, 26, 97}
)

const (
	pdfLineHeight = 7
	pdfMargin     = 10
)

// writePDF renders the roster as a landscape A4 table. The header row repeats
// on every page.
func writePDF(w io.Writer, list []apiclient.Employee, withRecommendations bool) error {
	doc := buildPDF(list, withRecommendations)
	if err := doc.Error(); err != nil {
		return err
	}
	return doc.Output(w)
}

func buildPDF(list []apiclient.Employee, withRecommendations bool) *fpdf.Fpdf {
	title := "Employee Report"
	headers := pdfHeaders
	widths := pdfWidths
	if withRecommendations {
		title = "Employee Report with Recommendations"
		headers = append(slices.Clone(pdfHeaders), "Recommendation")
		widths = pdfRecommendWidths
	}

	doc := fpdf.New("L", "mm", "A4", "")
	doc.SetTitle(title, true)
	doc.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	doc.SetAutoPageBreak(true, pdfMargin)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetHeaderFunc(func() {
		if doc.PageNo() == 1 {
			doc.SetFont("Helvetica", "B", 14)
			doc.CellFormat(0, 10, tr(title), "", 1, "L", false, 0, "")
		}
		doc.SetFont("Helvetica", "B", 9)
		doc.SetFillColor(230, 230, 230)
		for i, h := range headers {
			doc.CellFormat(widths[i], pdfLineHeight, tr(h), "1", 0, "L", true, 0, "")
		}
		doc.Ln(-1)
		doc.SetFont("Helvetica", "", 9)
	})
	doc.AddPage()

	rows := exportRows(list)
	if len(rows) == 0 {
		doc.CellFormat(0, pdfLineHeight, "No employees", "", 1, "L", false, 0, "")
	}
	for _, row := range rows {
		cells := []string{
			fmt.Sprint(row.Values[0]),
			fmt.Sprint(row.Values[1]),
			fmt.Sprint(row.Values[2]),
			fmt.Sprint(row.Values[4]),
			strconv.FormatFloat(row.Values[5].(float64)*100, 'f', 1, 64) + "%",
		}
		if withRecommendations {
			cells = append(cells, row.Recommendation)
		}
		for i, cell := range cells {
			doc.CellFormat(widths[i], pdfLineHeight, fitCell(doc, tr(cell), widths[i]), "1", 0, "L", false, 0, "")
		}
		doc.Ln(-1)
	}
	return doc
}

// fitCell shortens s with a trailing "..." until it fits inside width, less
// the cell's padding. s is already translated to the single-byte core font
// encoding.
func fitCell(doc *fpdf.Fpdf, s string, width float64) string {
	limit := width - 2*doc.GetCellMargin()
	if doc.GetStringWidth(s) <= limit {
		return s
	}
	for len(s) > 0 && doc.GetStringWidth(s+"...") > limit {
		s = s[:len(s)-1]
	}
	return s + "..."
}
