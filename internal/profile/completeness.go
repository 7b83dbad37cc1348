package profile

import (
	"encoding/json"
	"strings"

	"teztech/internal/database"
)

// Criterion is one weighted item of the profile checklist.
type Criterion struct {
	Name   string
	Weight int
}

// Outstanding is an unmet criterion plus its weight, so the UI can tell the
// user how many points completing it is worth.
type Outstanding struct {
	Name   string `json:"name"`
	Weight int    `json:"weight"`
}

// Report is the derived completeness score for one profile. It is computed
// on demand and never persisted.
type Report struct {
	Percentage  int           `json:"percentage"`
	Satisfied   []string      `json:"satisfied"`
	Outstanding []Outstanding `json:"outstanding"`
}

// DefaultAvatarKey is the placeholder every new account starts with; it
// does not count as a profile photo.
const DefaultAvatarKey = "defaults/avatar.png"

// checklist weights sum to 100. Order here fixes the order of the
// satisfied/outstanding partitions in the report.
var checklist = []Criterion{
	{"Basic Info", 10},
	{"Phone Number", 10},
	{"Profile Photo", 10},
	{"Location", 10},
	{"Bio", 15},
	{"Skills", 15},
	{"Resume", 15},
	{"Experience", 10},
	{"Education", 15},
}

// Checklist returns a copy of the weighted criteria.
func Checklist() []Criterion {
	out := make([]Criterion, len(checklist))
	copy(out, checklist)
	return out
}

// Completeness scores a profile against the fixed checklist.
func Completeness(user database.User) Report {
	report := Report{
		Satisfied:   []string{},
		Outstanding: []Outstanding{},
	}

	total := 0
	for _, c := range checklist {
		if satisfies(user, c.Name) {
			total += c.Weight
			report.Satisfied = append(report.Satisfied, c.Name)
		} else {
			report.Outstanding = append(report.Outstanding, Outstanding{Name: c.Name, Weight: c.Weight})
		}
	}

	// The weights sum to 100, so the cap only matters if the table is
	// ever edited. Keep it.
	if total > 100 {
		total = 100
	}
	report.Percentage = total
	return report
}

func satisfies(user database.User, criterion string) bool {
	switch criterion {
	case "Basic Info":
		return filled(user.Name) && filled(user.Email)
	case "Phone Number":
		return filled(user.Phone)
	case "Profile Photo":
		return filled(user.AvatarKey) && user.AvatarKey != DefaultAvatarKey
	case "Location":
		return filled(user.City)
	case "Bio":
		return filled(user.Bio)
	case "Skills":
		return len(decodeStrings(user.Skills)) > 0
	case "Resume":
		return filled(user.ResumeKey)
	case "Experience":
		return len(decodeEntries(user.Experience)) > 0
	case "Education":
		return len(decodeEntries(user.Education)) > 0
	default:
		return false
	}
}

func filled(s string) bool {
	return strings.TrimSpace(s) != ""
}

func decodeStrings(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func decodeEntries(raw []byte) []database.ProfileEntry {
	if len(raw) == 0 {
		return nil
	}
	var out []database.ProfileEntry
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
