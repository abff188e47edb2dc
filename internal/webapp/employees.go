package webapp

import (
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/phillip-england/hrpulse/internal/apiclient"
	"github.com/phillip-england/hrpulse/internal/risk"
	"github.com/phillip-england/hrpulse/internal/roster"
)

const (
	fetchEmployeesFailedMessage = "Failed to fetch employees"
	createEmployeeFailedMessage = "Failed to create employee"
	updateEmployeeFailedMessage = "Failed to update employee"
	exportFailedMessage         = "Export failed"
	employeeNotFoundMessage     = "Employee not found"
)

type tableView struct {
	Query       roster.Query
	Result      roster.Result
	Rows        []rowView
	Headers     []headerView
	PageSizes   []linkView
	RiskFilters []optionView
	PrevURL     string
	NextURL     string
	ReturnTo    string
	Exports     []exportMenu
}

type rowView struct {
	ID         string
	Name       string
	Department string
	Position   string
	Email      string
	Salary     string
	Risk       risk.Display
	EditURL    string
	DeleteURL  string
}

type headerView struct {
	Label  string
	URL    string
	Active bool
	Order  string
}

type linkView struct {
	Label  string
	URL    string
	Active bool
}

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

type exportMenu struct {
	Label string
	Links []linkView
}

var sortHeaders = []struct{ field, label string }{
	{roster.SortName, "Name"},
	{roster.SortDepartment, "Department"},
	{roster.SortPosition, "Position"},
	{roster.SortRiskLevel, "Risk Level"},
	{roster.SortSalary, "Salary"},
}

func tableURL(q roster.Query) string {
	if enc := q.Encode(); enc != "" {
		return "/employees?" + enc
	}
	return "/employees"
}

func buildTable(list []apiclient.Employee, q roster.Query) *tableView {
	res := roster.Apply(list, q)
	q.Page = res.Page
	self := tableURL(q)

	t := &tableView{Query: q, Result: res, ReturnTo: self}
	for _, h := range sortHeaders {
		t.Headers = append(t.Headers, headerView{
			Label:  h.label,
			URL:    tableURL(q.ToggleSort(h.field)),
			Active: q.Sort == h.field,
			Order:  q.Order,
		})
	}
	for _, size := range roster.PageSizes {
		t.PageSizes = append(t.PageSizes, linkView{
			Label:  strconv.Itoa(size),
			URL:    tableURL(q.WithPageSize(size)),
			Active: q.PageSize == size,
		})
	}
	t.RiskFilters = append(t.RiskFilters, optionView{Value: "all", Label: "All", Selected: q.Risk == "all"})
	for _, level := range []risk.Level{risk.Low, risk.Medium, risk.High} {
		value := strings.ToLower(level.String())
		t.RiskFilters = append(t.RiskFilters, optionView{Value: value, Label: level.String(), Selected: q.Risk == value})
	}
	if res.HasPrev {
		t.PrevURL = tableURL(q.WithPage(res.Page - 1))
	}
	if res.HasNext {
		t.NextURL = tableURL(q.WithPage(res.Page + 1))
	}

	ret := url.QueryEscape(self)
	for _, format := range []struct{ value, label string }{{apiclient.FormatExcel, "Export Excel"}, {apiclient.FormatPDF, "Export PDF"}} {
		t.Exports = append(t.Exports, exportMenu{
			Label: format.label,
			Links: []linkView{
				{Label: "Basic Export", URL: "/employees/export?format=" + format.value + "&kind=basic&return=" + ret},
				{Label: "With Recommendations", URL: "/employees/export?format=" + format.value + "&kind=recommendations&return=" + ret},
			},
		})
	}

	for _, e := range res.Rows {
		id := url.PathEscape(e.ID)
		t.Rows = append(t.Rows, rowView{
			ID:         e.ID,
			Name:       e.Name,
			Department: e.Department,
			Position:   e.Position,
			Email:      e.Email,
			Salary:     formatMoney(e.Salary),
			Risk:       risk.TableLabel(e.RiskLevel),
			EditURL:    "/employees/" + id + "/edit?return=" + ret,
			DeleteURL:  "/employees/" + id + "/delete?return=" + ret,
		})
	}
	return t
}

func (s *server) employeesPage(w http.ResponseWriter, r *http.Request) {
	data := s.newPage(r, "Employees", "employees")
	q := roster.ParseQuery(r.URL.Query())

	list, err := s.roster.Employees(r.Context(), s.token(r))
	if err != nil {
		s.logger.Error("list employees failed", "error", err)
		data.Error = fetchEmployeesFailedMessage
	}
	data.Table = buildTable(list, q)
	s.render(w, r, s.employeesTmpl, http.StatusOK, data)
}

func (s *server) newEmployeePage(w http.ResponseWriter, r *http.Request) {
	data := s.newPage(r, "Add Employee", "employees")
	form := newEmployeeForm()
	form.ReturnTo = safeReturn(r.URL.Query().Get("return"))
	data.Form = &form
	s.render(w, r, s.employeeFormTmpl, http.StatusOK, data)
}

func (s *server) createEmployeeProxy(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirectWith(w, r, "/employees/new", "error", "Invalid form submission")
		return
	}
	form := parseEmployeeForm(r)

	if _, err := s.roster.Create(r.Context(), s.token(r), form.employee()); err != nil {
		s.logger.Error("create employee failed", "error", err)
		data := s.newPage(r, "Add Employee", "employees")
		data.Error = createEmployeeFailedMessage
		data.Form = &form
		s.render(w, r, s.employeeFormTmpl, http.StatusBadGateway, data)
		return
	}
	redirectWith(w, r, form.ReturnTo, "message", "Employee added")
}

func (s *server) editEmployeePage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ret := safeReturn(r.URL.Query().Get("return"))

	employee, err := s.roster.Find(r.Context(), s.token(r), id)
	if err != nil {
		s.logger.Error("load employee failed", "id", id, "error", err)
		redirectWith(w, r, ret, "error", fetchEmployeesFailedMessage)
		return
	}
	if employee == nil {
		redirectWith(w, r, ret, "error", employeeNotFoundMessage)
		return
	}

	data := s.newPage(r, "Edit Employee", "employees")
	form := formFromEmployee(*employee)
	form.ReturnTo = ret
	data.Form = &form
	s.render(w, r, s.employeeFormTmpl, http.StatusOK, data)
}

func (s *server) updateEmployeeProxy(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := r.ParseForm(); err != nil {
		redirectWith(w, r, "/employees/"+url.PathEscape(id)+"/edit", "error", "Invalid form submission")
		return
	}
	form := parseEmployeeForm(r)
	form.ID = id
	form.Action = "/employees/" + url.PathEscape(id) + "/edit"
	form.Heading = "Edit Employee"

	if _, err := s.roster.Update(r.Context(), s.token(r), form.employee()); err != nil {
		s.logger.Error("update employee failed", "id", id, "error", err)
		data := s.newPage(r, "Edit Employee", "employees")
		data.Error = updateEmployeeFailedMessage
		data.Form = &form
		s.render(w, r, s.employeeFormTmpl, http.StatusBadGateway, data)
		return
	}
	redirectWith(w, r, form.ReturnTo, "message", "Employee updated")
}

type employeeSummary struct {
	ID         string
	Name       string
	Department string
	Action     string
}

func (s *server) deleteEmployeePage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ret := safeReturn(r.URL.Query().Get("return"))

	employee, err := s.roster.Find(r.Context(), s.token(r), id)
	if err != nil {
		s.logger.Error("load employee failed", "id", id, "error", err)
		redirectWith(w, r, ret, "error", fetchEmployeesFailedMessage)
		return
	}
	if employee == nil {
		redirectWith(w, r, ret, "error", employeeNotFoundMessage)
		return
	}

	data := s.newPage(r, "Delete Employee", "employees")
	data.Employee = &employeeSummary{
		ID:         employee.ID,
		Name:       employee.Name,
		Department: employee.Department,
		Action:     "/employees/" + url.PathEscape(employee.ID) + "/delete",
	}
	data.ReturnTo = ret
	s.render(w, r, s.deleteTmpl, http.StatusOK, data)
}

// deleteEmployeeProxy removes the row from the session's list on success. A
// failed delete is logged by the roster and the user lands back on the table
// with no banner.
func (s *server) deleteEmployeeProxy(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	_ = r.ParseForm()
	ret := safeReturn(r.FormValue("return"))

	_ = s.roster.Delete(r.Context(), s.token(r), id)
	http.Redirect(w, r, ret, http.StatusFound)
}

func (s *server) exportProxy(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := q.Get("format")
	ret := safeReturn(q.Get("return"))
	api := s.api.WithToken(s.token(r))

	var (
		dl  *apiclient.Download
		err error
	)
	if q.Get("kind") == "recommendations" {
		dl, err = api.ExportWithRecommendations(r.Context(), format)
	} else {
		dl, err = api.Export(r.Context(), format)
	}
	if err != nil {
		s.logger.Error("export failed", "format", format, "kind", q.Get("kind"), "error", err)
		redirectWith(w, r, ret, "error", exportFailedMessage)
		return
	}

	w.Header().Set("Content-Type", dl.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Data)))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(dl.Data)
}
