package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"teztech/internal/database"
)

// Store persists the singleton settings document. The row always has the
// fixed primary key database.SiteSettingsID, so two racing creation
// attempts collapse into one row: the loser's insert is dropped by
// ON CONFLICT DO NOTHING and its read proceeds against the winner's row.
type Store struct {
	db *gorm.DB
}

// NewStore wraps a gorm connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// GetOrCreate returns the settings document, seeding defaults if no row
// exists yet.
func (s *Store) GetOrCreate(ctx context.Context) (Document, error) {
	var row database.SiteSettings
	err := s.db.WithContext(ctx).First(&row, database.SiteSettingsID).Error
	if err == nil {
		return decodeRow(row)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Document{}, fmt.Errorf("load settings: %w", err)
	}

	seeded, err := encodeRow(Defaults())
	if err != nil {
		return Document{}, err
	}
	seeded.ID = database.SiteSettingsID

	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&seeded).Error; err != nil {
		return Document{}, fmt.Errorf("seed settings: %w", err)
	}

	// Re-read so a concurrent winner's row is what we return.
	if err := s.db.WithContext(ctx).First(&row, database.SiteSettingsID).Error; err != nil {
		return Document{}, fmt.Errorf("reload settings: %w", err)
	}
	return decodeRow(row)
}

// Apply merges a partial update onto the current document and persists the
// result. Concurrent updates are last-writer-wins at section granularity.
func (s *Store) Apply(ctx context.Context, patch Patch) (Document, error) {
	current, err := s.GetOrCreate(ctx)
	if err != nil {
		return Document{}, err
	}

	merged := Merge(current, patch)

	row, err := encodeRow(merged)
	if err != nil {
		return Document{}, err
	}
	row.ID = database.SiteSettingsID

	if err := s.db.WithContext(ctx).
		Model(&database.SiteSettings{}).
		Where("id = ?", database.SiteSettingsID).
		Updates(map[string]any{
			"header":       row.Header,
			"footer":       row.Footer,
			"social_media": row.SocialMedia,
			"contact":      row.Contact,
			"hero":         row.Hero,
			"theme":        row.Theme,
			"maintenance":  row.Maintenance,
		}).Error; err != nil {
		return Document{}, fmt.Errorf("save settings: %w", err)
	}

	return merged, nil
}

func encodeRow(doc Document) (database.SiteSettings, error) {
	row := database.SiteSettings{}
	sections := []struct {
		name  string
		value any
		dst   *datatypes.JSON
	}{
		{"header", doc.Header, &row.Header},
		{"footer", doc.Footer, &row.Footer},
		{"socialMedia", doc.SocialMedia, &row.SocialMedia},
		{"contact", doc.Contact, &row.Contact},
		{"hero", doc.Hero, &row.Hero},
		{"theme", doc.Theme, &row.Theme},
		{"maintenance", doc.Maintenance, &row.Maintenance},
	}
	for _, s := range sections {
		data, err := json.Marshal(s.value)
		if err != nil {
			return database.SiteSettings{}, fmt.Errorf("encode settings section %s: %w", s.name, err)
		}
		*s.dst = datatypes.JSON(data)
	}
	return row, nil
}

func decodeRow(row database.SiteSettings) (Document, error) {
	doc := Defaults()
	sections := []struct {
		name string
		src  datatypes.JSON
		dst  any
	}{
		{"header", row.Header, &doc.Header},
		{"footer", row.Footer, &doc.Footer},
		{"socialMedia", row.SocialMedia, &doc.SocialMedia},
		{"contact", row.Contact, &doc.Contact},
		{"hero", row.Hero, &doc.Hero},
		{"theme", row.Theme, &doc.Theme},
		{"maintenance", row.Maintenance, &doc.Maintenance},
	}
	for _, s := range sections {
		if len(s.src) == 0 {
			continue
		}
		if err := json.Unmarshal(s.src, s.dst); err != nil {
			return Document{}, fmt.Errorf("decode settings section %s: %w", s.name, err)
		}
	}
	return doc, nil
}
