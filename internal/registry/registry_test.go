package registry

import (
	"os"
	"path/filepath"
	"testing"

	"glucofeed/internal/model"
)

func TestBuiltinRegistryIsWellFormed(t *testing.T) {
	r := New()
	feeds := r.Feeds()
	if len(feeds) == 0 {
		t.Fatal("expected built-in feeds")
	}
	seen := map[string]bool{}
	for _, fd := range feeds {
		if fd.Name == "" {
			t.Error("feed with empty name")
		}
		if seen[fd.Name] {
			t.Errorf("duplicate feed name %q", fd.Name)
		}
		seen[fd.Name] = true
		if !ValidURL(fd.URL) {
			t.Errorf("feed %q has invalid URL %q", fd.Name, fd.URL)
		}
	}
}

func TestByPriorityExcludesInactive(t *testing.T) {
	r := New()
	fd := r.Feeds()[0]
	prio := fd.Priority
	fd.Status = model.FeedInactive
	for _, got := range r.ByPriority(prio) {
		if got.Name == fd.Name {
			t.Errorf("inactive feed %q returned by ByPriority", fd.Name)
		}
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feeds.yaml")
	content := `
- name: r/diabetes
  url: https://example.com/custom.rss
  category: diabetes
  priority: low
- name: Local Clinic Blog
  url: https://clinic.example.com/feed
  category: regional
  priority: high
- name: Paused Feed
  url: https://paused.example.com/rss
  inactive: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	// Override replaces the built-in entry.
	fd := r.Find("r/diabetes")
	if fd == nil {
		t.Fatal("r/diabetes missing")
	}
	if fd.URL != "https://example.com/custom.rss" || fd.Priority != model.PriorityLow {
		t.Errorf("override not applied: %+v", fd)
	}

	// New entry appended.
	if r.Find("Local Clinic Blog") == nil {
		t.Error("appended feed missing")
	}

	// Inactive entry registered but out of rotation.
	paused := r.Find("Paused Feed")
	if paused == nil || paused.Status != model.FeedInactive {
		t.Errorf("expected inactive paused feed, got %+v", paused)
	}
}

func TestLoadRejectsUnknownPriority(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "feeds.yaml")
	if err := os.WriteFile(path, []byte("- name: x\n  url: https://x.example.com\n  priority: urgent\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown priority")
	}
}

func TestLoadEmptyPathUsesBuiltins(t *testing.T) {
	r, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if len(r.Feeds()) == 0 {
		t.Error("expected built-in feeds")
	}
}

func TestValidURL(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"https://example.com/feed", true},
		{"http://example.com", true},
		{"", false},
		{"   ", false},
		{"not a url", false},
		{"ftp://example.com/feed", false},
		{"https://", false},
	}
	for _, tc := range tests {
		if got := ValidURL(tc.raw); got != tc.want {
			t.Errorf("ValidURL(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
