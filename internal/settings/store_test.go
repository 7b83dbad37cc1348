package settings

import (
	"context"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"teztech/internal/database"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:settings_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&database.SiteSettings{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	db.Exec("DELETE FROM site_settings")
	return NewStore(db)
}

func TestGetOrCreateSeedsDefaults(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	doc, err := store.GetOrCreate(ctx)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if doc.Header.SiteName != Defaults().Header.SiteName {
		t.Fatalf("seeded site name = %q", doc.Header.SiteName)
	}

	var count int64
	store.db.Model(&database.SiteSettings{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one settings row, got %d", count)
	}
}

func TestApplyPersistsMerge(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	updated, err := store.Apply(ctx, Patch{
		Theme: &ThemePatch{PrimaryColor: strPtr("#FF0000")},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if updated.Theme.PrimaryColor != "#FF0000" {
		t.Fatalf("primary color = %q", updated.Theme.PrimaryColor)
	}

	// Apply again: idempotent end to end.
	again, err := store.Apply(ctx, Patch{
		Theme: &ThemePatch{PrimaryColor: strPtr("#FF0000")},
	})
	if err != nil {
		t.Fatalf("apply twice: %v", err)
	}
	if again.Theme.PrimaryColor != "#FF0000" || again.Theme.SecondaryColor != Defaults().Theme.SecondaryColor {
		t.Fatalf("second apply drifted: %+v", again.Theme)
	}

	reloaded, err := store.GetOrCreate(ctx)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Theme.PrimaryColor != "#FF0000" {
		t.Fatalf("persisted color = %q", reloaded.Theme.PrimaryColor)
	}
}

func TestConcurrentCreationLeavesOneRow(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.GetOrCreate(ctx); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent get or create: %v", err)
	}

	var count int64
	store.db.Model(&database.SiteSettings{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one settings row, got %d", count)
	}
}
