package search

import (
	"net/url"
	"strconv"
	"strings"
)

// Query holds the optional constraints of one job search. A nil numeric
// bound or an empty string means "no constraint on that dimension".
type Query struct {
	Text           string
	Category       string
	Location       string
	WorkMode       string
	EmploymentType string

	SalaryMin        *int
	SalaryMax        *int
	ExperienceMin    *int
	ExperienceMax    *int
	PostedWithinDays *int

	Page     int
	PageSize int
}

// ParseQuery builds a Query from URL query parameters.
//
// Numeric bounds parse fail-open: a value that is not a valid integer is
// treated as absent rather than rejecting the whole request. This matches
// the permissive search form on the frontend, which submits whatever the
// user typed.
func ParseQuery(values url.Values) Query {
	q := Query{
		Text:           strings.TrimSpace(values.Get("search")),
		Category:       strings.TrimSpace(values.Get("category")),
		Location:       strings.TrimSpace(values.Get("location")),
		WorkMode:       strings.TrimSpace(values.Get("workMode")),
		EmploymentType: strings.TrimSpace(values.Get("employmentType")),

		SalaryMin:        parseBound(values.Get("salaryMin")),
		SalaryMax:        parseBound(values.Get("salaryMax")),
		ExperienceMin:    parseBound(values.Get("experienceMin")),
		ExperienceMax:    parseBound(values.Get("experienceMax")),
		PostedWithinDays: parseBound(values.Get("postedWithinDays")),

		Page:     1,
		PageSize: 0,
	}

	if page := parseBound(values.Get("page")); page != nil && *page >= 1 {
		q.Page = *page
	}
	if size := parseBound(values.Get("pageSize")); size != nil && *size > 0 {
		q.PageSize = *size
	}

	return q
}

// parseBound returns nil for empty or malformed input.
func parseBound(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}
