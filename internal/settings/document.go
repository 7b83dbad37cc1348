package settings

// Document is the site-wide configuration shown to every visitor. It is
// stored as a single row; see Store for the singleton discipline.
type Document struct {
	Header      HeaderSection      `json:"header"`
	Footer      FooterSection      `json:"footer"`
	SocialMedia SocialMediaSection `json:"socialMedia"`
	Contact     ContactSection     `json:"contact"`
	Hero        HeroSection        `json:"hero"`
	Theme       ThemeSection       `json:"theme"`
	Maintenance MaintenanceSection `json:"maintenance"`
}

// Link is a labelled URL used in header and footer navigation.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type HeaderSection struct {
	SiteName     string `json:"siteName"`
	LogoKey      string `json:"logoKey"`
	Tagline      string `json:"tagline"`
	NavLinks     []Link `json:"navLinks"`
	Announcement string `json:"announcement"`
}

type FooterSection struct {
	AboutText  string `json:"aboutText"`
	Copyright  string `json:"copyright"`
	QuickLinks []Link `json:"quickLinks"`
	ShowSocial bool   `json:"showSocial"`
}

type SocialMediaSection struct {
	Facebook  string `json:"facebook"`
	Twitter   string `json:"twitter"`
	LinkedIn  string `json:"linkedin"`
	Instagram string `json:"instagram"`
	YouTube   string `json:"youtube"`
}

type ContactSection struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	MapURL  string `json:"mapUrl"`
}

type HeroSection struct {
	Heading           string   `json:"heading"`
	Subheading        string   `json:"subheading"`
	ImageKey          string   `json:"imageKey"`
	SearchPlaceholder string   `json:"searchPlaceholder"`
	PopularSearches   []string `json:"popularSearches"`
}

type ThemeSection struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	FontFamily     string `json:"fontFamily"`
	DarkMode       bool   `json:"darkMode"`
}

type MaintenanceSection struct {
	Enabled bool   `json:"enabled"`
	Message string `json:"message"`
}

// Defaults is the document seeded on first access.
func Defaults() Document {
	return Document{
		Header: HeaderSection{
			SiteName: "Teztech",
			Tagline:  "Find your next role",
			NavLinks: []Link{
				{Label: "Jobs", URL: "/jobs"},
				{Label: "Companies", URL: "/companies"},
			},
		},
		Footer: FooterSection{
			AboutText:  "Teztech connects job seekers with employers.",
			Copyright:  "© Teztech",
			ShowSocial: true,
		},
		Contact: ContactSection{
			Email: "support@teztech.example",
		},
		Hero: HeroSection{
			Heading:           "Your career starts here",
			Subheading:        "Search thousands of openings",
			SearchPlaceholder: "Job title, skill or company",
			PopularSearches:   []string{"Engineering", "Design", "Marketing"},
		},
		Theme: ThemeSection{
			PrimaryColor:   "#2563EB",
			SecondaryColor: "#1E293B",
			FontFamily:     "Inter",
		},
		Maintenance: MaintenanceSection{
			Message: "We are performing scheduled maintenance. Please check back soon.",
		},
	}
}
