package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User roles. Role gates which API groups an account may call.
const (
	RoleSeeker   = "seeker"
	RoleEmployer = "employer"
	RoleAdmin    = "admin"
)

// Application statuses, in the order an employer normally moves them.
const (
	ApplicationApplied     = "applied"
	ApplicationShortlisted = "shortlisted"
	ApplicationRejected    = "rejected"
	ApplicationHired       = "hired"
)

// Job statuses.
const (
	JobOpen   = "open"
	JobClosed = "closed"
)

// User is an account plus its seeker profile fields. Employers and admins
// leave the profile fields empty.
type User struct {
	gorm.Model
	Email              string `gorm:"uniqueIndex;size:255"`
	PasswordHash       string `gorm:"size:255"`
	Role               string `gorm:"size:16;index"`
	MustChangePassword bool   `gorm:"default:false"`

	Name      string         `gorm:"size:128"`
	Phone     string         `gorm:"size:32"`
	AvatarKey string         `gorm:"size:512"`
	Bio       string         `gorm:"type:text"`
	City      string         `gorm:"size:128"`
	Skills    datatypes.JSON `gorm:"type:jsonb"` // []string
	ResumeKey string         `gorm:"size:512"`
	// Experience and Education hold []ProfileEntry.
	Experience datatypes.JSON `gorm:"type:jsonb"`
	Education  datatypes.JSON `gorm:"type:jsonb"`

	// Job-alert preferences; empty means no alerts for that dimension.
	AlertCategory string `gorm:"size:64"`
	AlertLocation string `gorm:"size:128"`
}

// ProfileEntry is one experience or education item inside a User profile.
type ProfileEntry struct {
	Title        string `json:"title"`
	Organization string `json:"organization"`
	StartYear    int    `json:"start_year"`
	EndYear      int    `json:"end_year,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Company is an employer-owned organization that jobs are posted under.
type Company struct {
	gorm.Model
	Name    string `gorm:"size:255;index"`
	Website string `gorm:"size:512"`
	LogoKey string `gorm:"size:512"`
	OwnerID uint   `gorm:"index"`
	Owner   User   `gorm:"constraint:OnDelete:CASCADE"`
}

// Job is a posted listing. CompanyName is denormalized from Company so the
// search text match does not need a join.
type Job struct {
	gorm.Model
	Title       string  `gorm:"size:255"`
	CompanyID   uint    `gorm:"index"`
	Company     Company `gorm:"constraint:OnDelete:CASCADE"`
	CompanyName string  `gorm:"size:255"`

	Category       string `gorm:"size:64;index"`
	City           string `gorm:"size:128"`
	State          string `gorm:"size:128"`
	Country        string `gorm:"size:128"`
	WorkMode       string `gorm:"size:16"`
	EmploymentType string `gorm:"size:16"`

	SalaryMin     int            `gorm:"default:0"`
	SalaryMax     int            `gorm:"default:0"`
	ExperienceMin int            `gorm:"default:0"`
	ExperienceMax int            `gorm:"default:0"`
	Skills        datatypes.JSON `gorm:"type:jsonb"` // []string
	Description   string         `gorm:"type:text"`

	Featured bool   `gorm:"default:false;index"`
	Status   string `gorm:"size:16;default:open;index"`
}

// Application links a seeker to a job exactly once.
type Application struct {
	gorm.Model
	JobID     uint `gorm:"uniqueIndex:idx_job_seeker"`
	Job       Job  `gorm:"constraint:OnDelete:CASCADE"`
	SeekerID  uint `gorm:"uniqueIndex:idx_job_seeker"`
	Seeker    User `gorm:"constraint:OnDelete:CASCADE"`
	ResumeKey string `gorm:"size:512"`
	CoverNote string `gorm:"type:text"`
	Status    string `gorm:"size:16;default:applied;index"`
}

// Notification is a per-user message shown in the notification center.
// ReadAt nil means unread.
type Notification struct {
	gorm.Model
	UserID uint   `gorm:"index"`
	Kind   string `gorm:"size:32"`
	Title  string `gorm:"size:255"`
	Body   string `gorm:"type:text"`
	ReadAt *time.Time
}

// SiteSettings is the singleton site configuration row. ID is always
// SiteSettingsID; the unique primary key is what makes concurrent creation
// attempts collapse into one surviving row.
type SiteSettings struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Header      datatypes.JSON `gorm:"type:jsonb"`
	Footer      datatypes.JSON `gorm:"type:jsonb"`
	SocialMedia datatypes.JSON `gorm:"type:jsonb"`
	Contact     datatypes.JSON `gorm:"type:jsonb"`
	Hero        datatypes.JSON `gorm:"type:jsonb"`
	Theme       datatypes.JSON `gorm:"type:jsonb"`
	Maintenance datatypes.JSON `gorm:"type:jsonb"`
}

// SiteSettingsID is the fixed primary key of the singleton settings row.
const SiteSettingsID uint = 1

// Asset records an object uploaded by a user so count limits can be
// enforced without listing the bucket.
type Asset struct {
	gorm.Model
	UserID    uint   `gorm:"index"`
	ObjectKey string `gorm:"uniqueIndex;size:512"`
	Kind      string `gorm:"size:16"` // resume | logo | avatar
	Size      int64
}
