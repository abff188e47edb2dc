package webapp

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phillip-england/hrpulse/internal/apiclient"
)

func TestParseEmployeeForm(t *testing.T) {
	values := url.Values{
		"first_name":           {"Ada"},
		"last_name":            {"Lovelace"},
		"department":           {" Engineering "},
		"risk_level":           {"High Risk"},
		"salary":               {"$120,000"},
		"turnover_probability": {"0.82"},
		"projects":             {"Apollo, , Gemini"},
		"skills":               {""},
		"age":                  {"abc"},
		"return":               {"/employees?page=1"},
	}
	req := httptest.NewRequest(http.MethodPost, "/employees/new", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	require.NoError(t, req.ParseForm())

	form := parseEmployeeForm(req)
	assert.Equal(t, "/employees?page=1", form.ReturnTo)

	e := form.employee()
	assert.Equal(t, "Ada Lovelace", e.Name)
	assert.Equal(t, "Engineering", e.Department)
	assert.Equal(t, "High Risk", e.RiskLevel)
	assert.Equal(t, 120000.0, e.Salary)
	assert.Equal(t, 0.82, e.TurnoverProbability)
	assert.Equal(t, []string{"Apollo", "Gemini"}, e.Projects)
	assert.Equal(t, []string{}, e.Skills)
	assert.Zero(t, e.Age)
}

func TestFormFromEmployeeRoundTrip(t *testing.T) {
	e := apiclient.Employee{
		ID:         "abc123",
		Name:       "Grace Hopper",
		Department: "Research",
		RiskLevel:  "Low Risk",
		Salary:     95000.5,
		Projects:   []string{"COBOL"},
	}
	form := formFromEmployee(e)
	assert.True(t, form.Editing())
	assert.Equal(t, "/employees/abc123/edit", form.Action)
	assert.Equal(t, "95000.5", form.Salary)
	assert.Empty(t, form.Age)

	back := form.employee()
	assert.Equal(t, e.ID, back.ID)
	assert.Equal(t, e.Salary, back.Salary)
	assert.Equal(t, e.Projects, back.Projects)
}

func TestRiskOptionsKeepUnknownLabel(t *testing.T) {
	form := newEmployeeForm()
	var selected []string
	for _, opt := range form.RiskOptions() {
		if opt.Selected {
			selected = append(selected, opt.Value)
		}
	}
	assert.Equal(t, []string{"Low Risk"}, selected)

	form.RiskLevel = "Critical"
	opts := form.RiskOptions()
	require.Len(t, opts, 4)
	assert.Equal(t, "Critical", opts[0].Value)
	assert.True(t, opts[0].Selected)
}
