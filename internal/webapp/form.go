package webapp

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/phillip-england/hrpulse/internal/apiclient"
	"github.com/phillip-england/hrpulse/internal/risk"
)

// employeeForm holds the add and edit dialog fields as the browser sent
// them, so a failed submit can be re-rendered without losing input.
type employeeForm struct {
	ID       string
	Action   string
	Heading  string
	ReturnTo string

	Name                string
	FirstName           string
	LastName            string
	Department          string
	Position            string
	Email               string
	RiskLevel           string
	TurnoverProbability string
	HireDate            string
	Salary              string
	PerformanceScore    string
	LastEvaluationDate  string
	Projects            string
	Skills              string
	Age                 string
	YearsOfExperience   string
	WorkHours           string
	TrainingHours       string
}

func newEmployeeForm() employeeForm {
	return employeeForm{
		Action:    "/employees/new",
		Heading:   "Add Employee",
		ReturnTo:  "/employees",
		RiskLevel: risk.Low.BackendLabel(),
	}
}

func formFromEmployee(e apiclient.Employee) employeeForm {
	return employeeForm{
		ID:                  e.ID,
		Action:              "/employees/" + url.PathEscape(e.ID) + "/edit",
		Heading:             "Edit Employee",
		ReturnTo:            "/employees",
		Name:                e.Name,
		FirstName:           e.FirstName,
		LastName:            e.LastName,
		Department:          e.Department,
		Position:            e.Position,
		Email:               e.Email,
		RiskLevel:           e.RiskLevel,
		TurnoverProbability: formatNumber(e.TurnoverProbability, true),
		HireDate:            e.HireDate,
		Salary:              formatNumber(e.Salary, true),
		PerformanceScore:    formatNumber(e.PerformanceScore, true),
		LastEvaluationDate:  e.LastEvaluationDate,
		Projects:            strings.Join(e.Projects, ", "),
		Skills:              strings.Join(e.Skills, ", "),
		Age:                 formatNumber(e.Age, false),
		YearsOfExperience:   formatNumber(e.YearsOfExperience, false),
		WorkHours:           formatNumber(e.WorkHours, false),
		TrainingHours:       formatNumber(e.TrainingHours, false),
	}
}

func parseEmployeeForm(r *http.Request) employeeForm {
	get := func(key string) string { return strings.TrimSpace(r.PostFormValue(key)) }
	f := newEmployeeForm()
	f.ReturnTo = safeReturn(r.PostFormValue("return"))
	f.Name = get("name")
	f.FirstName = get("first_name")
	f.LastName = get("last_name")
	f.Department = get("department")
	f.Position = get("position")
	f.Email = get("email")
	if level := get("risk_level"); level != "" {
		f.RiskLevel = level
	}
	f.TurnoverProbability = get("turnover_probability")
	f.HireDate = get("hire_date")
	f.Salary = get("salary")
	f.PerformanceScore = get("performance_score")
	f.LastEvaluationDate = get("last_evaluation_date")
	f.Projects = get("projects")
	f.Skills = get("skills")
	f.Age = get("age")
	f.YearsOfExperience = get("years_of_experience")
	f.WorkHours = get("work_hours")
	f.TrainingHours = get("training_hours")
	return f
}

// employee converts the form to the backend document. Numbers that do not
// parse are sent as 0 and the backend is left to reject them.
func (f employeeForm) employee() apiclient.Employee {
	name := f.Name
	if name == "" {
		name = strings.TrimSpace(f.FirstName + " " + f.LastName)
	}
	return apiclient.Employee{
		ID:                  f.ID,
		Name:                name,
		FirstName:           f.FirstName,
		LastName:            f.LastName,
		Department:          f.Department,
		Position:            f.Position,
		Email:               f.Email,
		RiskLevel:           f.RiskLevel,
		TurnoverProbability: parseNumber(f.TurnoverProbability),
		HireDate:            f.HireDate,
		Salary:              parseNumber(f.Salary),
		PerformanceScore:    parseNumber(f.PerformanceScore),
		LastEvaluationDate:  f.LastEvaluationDate,
		Projects:            splitList(f.Projects),
		Skills:              splitList(f.Skills),
		Age:                 parseNumber(f.Age),
		YearsOfExperience:   parseNumber(f.YearsOfExperience),
		WorkHours:           parseNumber(f.WorkHours),
		TrainingHours:       parseNumber(f.TrainingHours),
	}
}

// RiskOptions lists the backend labels for the risk select. A label the
// backend sent that is not one of the three is kept as the first option so
// saving an untouched form does not rewrite it.
func (f employeeForm) RiskOptions() []optionView {
	var out []optionView
	known := false
	for _, level := range risk.Levels() {
		label := level.BackendLabel()
		selected := f.RiskLevel == label
		known = known || selected
		out = append(out, optionView{Value: label, Label: label, Selected: selected})
	}
	if !known && f.RiskLevel != "" {
		out = append([]optionView{{Value: f.RiskLevel, Label: f.RiskLevel, Selected: true}}, out...)
	}
	return out
}

func (f employeeForm) Editing() bool {
	return f.ID != ""
}

func parseNumber(raw string) float64 {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	raw = strings.TrimPrefix(raw, "$")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

func formatNumber(v float64, keepZero bool) string {
	if v == 0 && !keepZero {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// splitList reads a comma-separated field, dropping blanks.
func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
