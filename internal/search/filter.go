package search

import (
	"encoding/json"
	"strings"
	"time"

	"teztech/internal/database"
)

// Filter returns the candidates satisfying every constraint set on q.
// Unset fields impose no constraint; constraints combine with logical AND.
// now anchors the postedWithinDays check so results are reproducible.
func Filter(candidates []database.Job, q Query, now time.Time) []database.Job {
	matched := make([]database.Job, 0, len(candidates))
	for _, job := range candidates {
		if Matches(job, q, now) {
			matched = append(matched, job)
		}
	}
	return matched
}

// Matches reports whether a single job satisfies every constraint set on q.
func Matches(job database.Job, q Query, now time.Time) bool {
	if q.Text != "" && !matchesText(job, q.Text) {
		return false
	}
	if q.Category != "" && job.Category != q.Category {
		return false
	}
	if q.WorkMode != "" && job.WorkMode != q.WorkMode {
		return false
	}
	if q.EmploymentType != "" && job.EmploymentType != q.EmploymentType {
		return false
	}
	if q.Location != "" && !matchesLocation(job, q.Location) {
		return false
	}
	// Range bounds use overlap semantics: the listing's range must
	// intersect the requested interval.
	if q.SalaryMin != nil && job.SalaryMax < *q.SalaryMin {
		return false
	}
	if q.SalaryMax != nil && job.SalaryMin > *q.SalaryMax {
		return false
	}
	if q.ExperienceMin != nil && job.ExperienceMax < *q.ExperienceMin {
		return false
	}
	if q.ExperienceMax != nil && job.ExperienceMin > *q.ExperienceMax {
		return false
	}
	if q.PostedWithinDays != nil {
		cutoff := now.Add(-time.Duration(*q.PostedWithinDays) * 24 * time.Hour)
		if job.CreatedAt.Before(cutoff) {
			return false
		}
	}
	return true
}

// matchesText does a case-insensitive substring match against the title,
// the company name, or any one skill.
func matchesText(job database.Job, text string) bool {
	needle := strings.ToLower(text)
	if strings.Contains(strings.ToLower(job.Title), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(job.CompanyName), needle) {
		return true
	}
	for _, skill := range SkillList(job) {
		if strings.Contains(strings.ToLower(skill), needle) {
			return true
		}
	}
	return false
}

// matchesLocation does a case-insensitive substring match against city or state.
func matchesLocation(job database.Job, location string) bool {
	needle := strings.ToLower(location)
	return strings.Contains(strings.ToLower(job.City), needle) ||
		strings.Contains(strings.ToLower(job.State), needle)
}

// SkillList decodes the JSONB skills column. Malformed or empty content
// yields an empty list.
func SkillList(job database.Job) []string {
	if len(job.Skills) == 0 {
		return nil
	}
	var skills []string
	if err := json.Unmarshal(job.Skills, &skills); err != nil {
		return nil
	}
	return skills
}
