package settings

// Patch is a partial settings update. A nil section leaves that section
// untouched; inside a present section, nil fields are preserved and
// non-nil fields overwrite. Slices replace wholesale, never element-wise.
//
// The section set is enumerated on purpose: merging arbitrary nested maps
// by reflection would silently merge into non-object fields and splice
// arrays, which is exactly what we do not want from an admin update.
type Patch struct {
	Header      *HeaderPatch      `json:"header"`
	Footer      *FooterPatch      `json:"footer"`
	SocialMedia *SocialMediaPatch `json:"socialMedia"`
	Contact     *ContactPatch     `json:"contact"`
	Hero        *HeroPatch        `json:"hero"`
	Theme       *ThemePatch       `json:"theme"`
	Maintenance *MaintenancePatch `json:"maintenance"`
}

type HeaderPatch struct {
	SiteName     *string `json:"siteName"`
	LogoKey      *string `json:"logoKey"`
	Tagline      *string `json:"tagline"`
	NavLinks     *[]Link `json:"navLinks"`
	Announcement *string `json:"announcement"`
}

type FooterPatch struct {
	AboutText  *string `json:"aboutText"`
	Copyright  *string `json:"copyright"`
	QuickLinks *[]Link `json:"quickLinks"`
	ShowSocial *bool   `json:"showSocial"`
}

type SocialMediaPatch struct {
	Facebook  *string `json:"facebook"`
	Twitter   *string `json:"twitter"`
	LinkedIn  *string `json:"linkedin"`
	Instagram *string `json:"instagram"`
	YouTube   *string `json:"youtube"`
}

type ContactPatch struct {
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	MapURL  *string `json:"mapUrl"`
}

type HeroPatch struct {
	Heading           *string   `json:"heading"`
	Subheading        *string   `json:"subheading"`
	ImageKey          *string   `json:"imageKey"`
	SearchPlaceholder *string   `json:"searchPlaceholder"`
	PopularSearches   *[]string `json:"popularSearches"`
}

type ThemePatch struct {
	PrimaryColor   *string `json:"primaryColor"`
	SecondaryColor *string `json:"secondaryColor"`
	FontFamily     *string `json:"fontFamily"`
	DarkMode       *bool   `json:"darkMode"`
}

type MaintenancePatch struct {
	Enabled *bool   `json:"enabled"`
	Message *string `json:"message"`
}

// Merge applies a patch onto a document and returns the result. Applying
// the same patch twice yields the same document as applying it once.
func Merge(doc Document, patch Patch) Document {
	if p := patch.Header; p != nil {
		setString(&doc.Header.SiteName, p.SiteName)
		setString(&doc.Header.LogoKey, p.LogoKey)
		setString(&doc.Header.Tagline, p.Tagline)
		setSlice(&doc.Header.NavLinks, p.NavLinks)
		setString(&doc.Header.Announcement, p.Announcement)
	}
	if p := patch.Footer; p != nil {
		setString(&doc.Footer.AboutText, p.AboutText)
		setString(&doc.Footer.Copyright, p.Copyright)
		setSlice(&doc.Footer.QuickLinks, p.QuickLinks)
		setBool(&doc.Footer.ShowSocial, p.ShowSocial)
	}
	if p := patch.SocialMedia; p != nil {
		setString(&doc.SocialMedia.Facebook, p.Facebook)
		setString(&doc.SocialMedia.Twitter, p.Twitter)
		setString(&doc.SocialMedia.LinkedIn, p.LinkedIn)
		setString(&doc.SocialMedia.Instagram, p.Instagram)
		setString(&doc.SocialMedia.YouTube, p.YouTube)
	}
	if p := patch.Contact; p != nil {
		setString(&doc.Contact.Email, p.Email)
		setString(&doc.Contact.Phone, p.Phone)
		setString(&doc.Contact.Address, p.Address)
		setString(&doc.Contact.MapURL, p.MapURL)
	}
	if p := patch.Hero; p != nil {
		setString(&doc.Hero.Heading, p.Heading)
		setString(&doc.Hero.Subheading, p.Subheading)
		setString(&doc.Hero.ImageKey, p.ImageKey)
		setString(&doc.Hero.SearchPlaceholder, p.SearchPlaceholder)
		setSlice(&doc.Hero.PopularSearches, p.PopularSearches)
	}
	if p := patch.Theme; p != nil {
		setString(&doc.Theme.PrimaryColor, p.PrimaryColor)
		setString(&doc.Theme.SecondaryColor, p.SecondaryColor)
		setString(&doc.Theme.FontFamily, p.FontFamily)
		setBool(&doc.Theme.DarkMode, p.DarkMode)
	}
	if p := patch.Maintenance; p != nil {
		setBool(&doc.Maintenance.Enabled, p.Enabled)
		setString(&doc.Maintenance.Message, p.Message)
	}
	return doc
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setSlice[T any](dst *[]T, src *[]T) {
	if src != nil {
		copied := make([]T, len(*src))
		copy(copied, *src)
		*dst = copied
	}
}
