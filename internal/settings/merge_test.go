package settings

import (
	"encoding/json"
	"reflect"
	"testing"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestMergeIsIdempotent(t *testing.T) {
	patch := Patch{
		Theme: &ThemePatch{PrimaryColor: strPtr("#FF0000")},
	}

	start := Defaults()
	once := Merge(start, patch)
	twice := Merge(once, patch)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("applying the same patch twice changed the document:\nonce:  %+v\ntwice: %+v", once, twice)
	}
	if once.Theme.PrimaryColor != "#FF0000" {
		t.Fatalf("primary color = %q, want #FF0000", once.Theme.PrimaryColor)
	}
	if once.Theme.SecondaryColor != Defaults().Theme.SecondaryColor {
		t.Fatalf("untouched secondary color changed: %q", once.Theme.SecondaryColor)
	}
}

func TestMergePreservesAbsentKeys(t *testing.T) {
	doc := Defaults()
	doc.Contact.Email = "admin@teztech.example"
	doc.Contact.Phone = "+91 99999 00000"

	merged := Merge(doc, Patch{
		Contact: &ContactPatch{Phone: strPtr("+91 11111 22222")},
	})

	if merged.Contact.Phone != "+91 11111 22222" {
		t.Fatalf("phone not updated: %q", merged.Contact.Phone)
	}
	if merged.Contact.Email != "admin@teztech.example" {
		t.Fatalf("email should be preserved, got %q", merged.Contact.Email)
	}
}

func TestMergeReplacesSlicesWholesale(t *testing.T) {
	doc := Defaults()
	doc.Hero.PopularSearches = []string{"A", "B", "C"}

	merged := Merge(doc, Patch{
		Hero: &HeroPatch{PopularSearches: &[]string{"Z"}},
	})

	if !reflect.DeepEqual(merged.Hero.PopularSearches, []string{"Z"}) {
		t.Fatalf("slice should be replaced, not merged: %v", merged.Hero.PopularSearches)
	}
}

func TestMergeUntouchedSectionsUnchanged(t *testing.T) {
	doc := Defaults()
	merged := Merge(doc, Patch{
		Maintenance: &MaintenancePatch{Enabled: boolPtr(true)},
	})

	if !merged.Maintenance.Enabled {
		t.Fatal("maintenance should be enabled")
	}
	if !reflect.DeepEqual(merged.Header, doc.Header) {
		t.Fatalf("header section changed without a patch: %+v", merged.Header)
	}
	if !reflect.DeepEqual(merged.Hero, doc.Hero) {
		t.Fatalf("hero section changed without a patch: %+v", merged.Hero)
	}
}

// A patch decoded from JSON must distinguish absent keys from zero values.
func TestPatchJSONDecoding(t *testing.T) {
	raw := `{"theme":{"primaryColor":"#FF0000"},"maintenance":{"enabled":false}}`

	var patch Patch
	if err := json.Unmarshal([]byte(raw), &patch); err != nil {
		t.Fatalf("unmarshal patch: %v", err)
	}

	if patch.Theme == nil || patch.Theme.PrimaryColor == nil {
		t.Fatal("theme.primaryColor should be present")
	}
	if patch.Theme.SecondaryColor != nil {
		t.Fatal("absent secondaryColor should decode as nil")
	}
	if patch.Maintenance == nil || patch.Maintenance.Enabled == nil || *patch.Maintenance.Enabled {
		t.Fatal("maintenance.enabled should decode as explicit false")
	}
	if patch.Header != nil {
		t.Fatal("absent header section should decode as nil")
	}
}
