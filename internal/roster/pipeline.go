// Package roster is the employee table: the filter, sort and paginate
// pipeline, and the per-session employee list it runs over.
package roster

import (
	"cmp"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/phillip-england/hrpulse/internal/apiclient"
	"github.com/phillip-england/hrpulse/internal/risk"
)

type Employee = apiclient.Employee

// Result is one rendered page of the table.
type Result struct {
	Rows      []Employee
	Total     int
	Page      int
	PageSize  int
	PageCount int
	From      int
	To        int
	HasPrev   bool
	HasNext   bool
}

// Apply runs filter, sort and paginate over list. list is not modified.
func Apply(list []Employee, q Query) Result {
	filtered := Filter(list, q.Search, q.Risk)
	Sort(filtered, q.Sort, q.Order)
	return Paginate(filtered, q.Page, q.PageSize)
}

// Filter keeps employees whose name, first name, last name, department,
// position or email contains search (case-insensitive) and whose risk level
// matches riskFilter. riskFilter "all" or "" keeps every level. Employees
// whose label is empty or outside the known table rank below Low when
// sorting, so they only show under "all". The result is a new slice.
func Filter(list []Employee, search, riskFilter string) []Employee {
	needle := strings.ToLower(strings.TrimSpace(search))
	want, filterRisk := risk.ParseFilter(riskFilter)

	out := make([]Employee, 0, len(list))
	for _, e := range list {
		if needle != "" && !matchesSearch(e, needle) {
			continue
		}
		if filterRisk {
			if level, ok := risk.Lookup(e.RiskLevel); !ok || level != want {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

func matchesSearch(e Employee, needle string) bool {
	for _, field := range []string{e.Name, e.FirstName, e.LastName, e.Department, e.Position, e.Email} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Sort orders list in place by field. Strings use locale-aware collation,
// salary compares numerically.
//
// risk_level compares severity with High first before the direction flip, so
// OrderAsc puts High at the top and OrderDesc puts Low at the top. Labels
// outside the known table rank below Low.
func Sort(list []Employee, field, order string) {
	col := collate.New(language.English)
	compare := func(a, b Employee) int {
		switch field {
		case SortDepartment:
			return col.CompareString(a.Department, b.Department)
		case SortPosition:
			return col.CompareString(a.Position, b.Position)
		case SortRiskLevel:
			return risk.RawRank(b.RiskLevel) - risk.RawRank(a.RiskLevel)
		case SortSalary:
			return cmp.Compare(a.Salary, b.Salary)
		default:
			return col.CompareString(a.Name, b.Name)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		c := compare(list[i], list[j])
		if order == OrderDesc {
			c = -c
		}
		return c < 0
	})
}

// Paginate slices list into zero-based pages of size. A page past the end is
// clamped to the last page.
func Paginate(list []Employee, page, size int) Result {
	if !validPageSize(size) {
		size = DefaultPageSize
	}
	total := len(list)
	pageCount := (total + size - 1) / size
	if page < 0 {
		page = 0
	}
	if pageCount > 0 && page >= pageCount {
		page = pageCount - 1
	}
	if pageCount == 0 {
		page = 0
	}

	start := page * size
	end := min(start+size, total)
	rows := []Employee{}
	if start < end {
		rows = list[start:end]
	}

	res := Result{
		Rows:      rows,
		Total:     total,
		Page:      page,
		PageSize:  size,
		PageCount: pageCount,
		HasPrev:   page > 0,
		HasNext:   page+1 < pageCount,
	}
	if len(rows) > 0 {
		res.From = start + 1
		res.To = end
	}
	return res
}
