package roster

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	SortName       = "name"
	SortDepartment = "department"
	SortPosition   = "position"
	SortRiskLevel  = "risk_level"
	SortSalary     = "salary"

	OrderAsc  = "asc"
	OrderDesc = "desc"

	DefaultPageSize = 10
)

// PageSizes are the rows-per-page choices offered by the table.
var PageSizes = []int{5, 10, 25}

// Query is the table state carried in the URL. Nothing here is persisted;
// a fresh visit starts from the defaults.
type Query struct {
	Search   string
	Risk     string
	Sort     string
	Order    string
	Page     int
	PageSize int
}

func DefaultQuery() Query {
	return Query{Risk: "all", Sort: SortName, Order: OrderAsc, PageSize: DefaultPageSize}
}

// ParseQuery reads table state from URL values, falling back to defaults for
// anything missing or invalid.
func ParseQuery(values url.Values) Query {
	q := DefaultQuery()
	q.Search = strings.TrimSpace(values.Get("q"))

	if risk := strings.ToLower(strings.TrimSpace(values.Get("risk"))); risk != "" {
		switch risk {
		case "all", "low", "medium", "high":
			q.Risk = risk
		}
	}
	if field := strings.TrimSpace(values.Get("sort")); validSortField(field) {
		q.Sort = field
	}
	if order := strings.ToLower(strings.TrimSpace(values.Get("order"))); order == OrderDesc {
		q.Order = OrderDesc
	}
	if page, err := strconv.Atoi(strings.TrimSpace(values.Get("page"))); err == nil && page > 0 {
		q.Page = page
	}
	if size, err := strconv.Atoi(strings.TrimSpace(values.Get("rows"))); err == nil && validPageSize(size) {
		q.PageSize = size
	}
	return q
}

func validSortField(field string) bool {
	switch field {
	case SortName, SortDepartment, SortPosition, SortRiskLevel, SortSalary:
		return true
	default:
		return false
	}
}

func validPageSize(size int) bool {
	for _, allowed := range PageSizes {
		if size == allowed {
			return true
		}
	}
	return false
}

// Values encodes q back into URL values, leaving defaults out.
func (q Query) Values() url.Values {
	values := url.Values{}
	if q.Search != "" {
		values.Set("q", q.Search)
	}
	if q.Risk != "" && q.Risk != "all" {
		values.Set("risk", q.Risk)
	}
	if q.Sort != "" && q.Sort != SortName {
		values.Set("sort", q.Sort)
	}
	if q.Order == OrderDesc {
		values.Set("order", OrderDesc)
	}
	if q.Page > 0 {
		values.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize != 0 && q.PageSize != DefaultPageSize {
		values.Set("rows", strconv.Itoa(q.PageSize))
	}
	return values
}

// Encode returns the query string, without the leading "?".
func (q Query) Encode() string {
	return q.Values().Encode()
}

// ToggleSort is the state after clicking a column header: the active column
// flips direction, any other column becomes active ascending.
func (q Query) ToggleSort(field string) Query {
	if !validSortField(field) {
		return q
	}
	if q.Sort == field {
		if q.Order == OrderAsc {
			q.Order = OrderDesc
		} else {
			q.Order = OrderAsc
		}
		return q
	}
	q.Sort = field
	q.Order = OrderAsc
	return q
}

func (q Query) WithPage(page int) Query {
	if page < 0 {
		page = 0
	}
	q.Page = page
	return q
}

// WithPageSize changes rows per page and goes back to the first page.
func (q Query) WithPageSize(size int) Query {
	if !validPageSize(size) {
		return q
	}
	q.PageSize = size
	q.Page = 0
	return q
}
