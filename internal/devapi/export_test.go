package devapi

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/phillip-england/hrpulse/internal/apiclient"
)

var exportFixture = []apiclient.Employee{
	{Name: "Ada (Countess)", Department: "Engineering", RiskLevel: "High Risk", TurnoverProbability: 0.82, Salary: 120000},
	{Name: "Grace", Department: "Research", RiskLevel: "low", TurnoverProbability: 0.1, Salary: 95000},
}

func TestWriteExcelWithRecommendations(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeExcel(&buf, exportFixture, true))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Recommendation", rows[0][len(rows[0])-1])
	assert.Equal(t, "Ada (Countess)", rows[1][0])
	assert.Equal(t, "Low Risk", rows[2][4])
	assert.Equal(t, "Maintain current engagement", rows[2][8])
}

func TestWriteExcelBasic(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeExcel(&buf, exportFixture, false))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	assert.Len(t, rows[0], len(exportHeaders))
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writePDF(&buf, exportFixture, false))

	assert.True(t, strings.HasPrefix(buf.String(), "%PDF-1."))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(buf.String()), "%%EOF"))
}

func TestBuildPDFTable(t *testing.T) {
	list := append(slices.Clone(exportFixture), apiclient.Employee{Name: "José Núñez", Department: "Ops", RiskLevel: "Medium Risk", TurnoverProbability: 0.4})

	doc := buildPDF(list, true)
	doc.SetCompression(false)
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	out := buf.String()

	assert.Contains(t, out, `(Ada \(Countess\))`)
	assert.Contains(t, out, "(82.0%)")
	assert.Contains(t, out, "(Recommendation)")
	assert.Contains(t, out, "(Jos\xe9 N\xfa\xf1ez)", "non-ASCII names keep their accents")
	assert.NotContains(t, out, "Jos?")
}

func TestBuildPDFBasicHasNoRecommendations(t *testing.T) {
	doc := buildPDF(exportFixture, false)
	doc.SetCompression(false)
	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	assert.NotContains(t, buf.String(), "Recommendation")
}

func TestBuildPDFPaginates(t *testing.T) {
	list := make([]apiclient.Employee, 60)
	for i := range list {
		list[i] = apiclient.Employee{Name: "row", RiskLevel: "Low Risk"}
	}
	doc := buildPDF(list, false)
	require.NoError(t, doc.Error())
	assert.GreaterOrEqual(t, doc.PageCount(), 2)

	assert.Equal(t, 1, buildPDF(nil, false).PageCount())
}

func TestFitCellTruncates(t *testing.T) {
	doc := buildPDF(nil, false)
	long := strings.Repeat("Engineering ", 20)

	fitted := fitCell(doc, long, 40)
	assert.True(t, strings.HasSuffix(fitted, "..."))
	assert.LessOrEqual(t, doc.GetStringWidth(fitted), 40-2*doc.GetCellMargin())
	assert.Equal(t, "Ops", fitCell(doc, "Ops", 40))
}
