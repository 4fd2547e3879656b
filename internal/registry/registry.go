// Package registry holds the static list of feed descriptors the
// service fetches from. Built-in feeds can be extended or overridden by
// an optional YAML file at startup; the registry never changes shape at
// runtime, only feed status and last-fetched times do.
package registry

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"glucofeed/internal/model"
)

// builtin is the default feed set. Reddit communities carry a secondary
// JSON listing URL which the fetcher prefers over the RSS rendering.
func builtin() []*model.FeedDescriptor {
	return []*model.FeedDescriptor{
		{Name: "r/diabetes", URL: "https://www.reddit.com/r/diabetes/.rss", JSONURL: "https://www.reddit.com/r/diabetes/hot.json", Category: model.CategoryDiabetes, Priority: model.PriorityHigh, Status: model.FeedActive},
		{Name: "r/Type1Diabetes", URL: "https://www.reddit.com/r/Type1Diabetes/.rss", JSONURL: "https://www.reddit.com/r/Type1Diabetes/hot.json", Category: model.CategoryDiabetes, Priority: model.PriorityHigh, Status: model.FeedActive},
		{Name: "r/diabetes_t2", URL: "https://www.reddit.com/r/diabetes_t2/.rss", JSONURL: "https://www.reddit.com/r/diabetes_t2/hot.json", Category: model.CategoryDiabetes, Priority: model.PriorityMedium, Status: model.FeedActive},
		{Name: "diaTribe", URL: "https://diatribe.org/rss.xml", Category: model.CategoryMedical, Priority: model.PriorityHigh, Status: model.FeedActive},
		{Name: "JDRF Blog", URL: "https://www.jdrf.org/blog/feed/", Category: model.CategoryResearch, Priority: model.PriorityHigh, Status: model.FeedActive},
		{Name: "Diabetes Daily", URL: "https://www.diabetesdaily.com/feed/", Category: model.CategoryLifestyle, Priority: model.PriorityMedium, Status: model.FeedActive},
		{Name: "Dexcom Newsroom", URL: "https://www.dexcom.com/news/rss.xml", Category: model.CategoryTechnology, Priority: model.PriorityHigh, Status: model.FeedActive},
		{Name: "Medtronic Diabetes", URL: "https://www.medtronicdiabetes.com/loop-blog/feed/", Category: model.CategoryTechnology, Priority: model.PriorityMedium, Status: model.FeedActive},
		{Name: "NIDDK News", URL: "https://www.niddk.nih.gov/rss/news.xml", Category: model.CategoryResearch, Priority: model.PriorityMedium, Status: model.FeedActive},
		{Name: "Diabetes UK", URL: "https://www.diabetes.org.uk/about_us/news/rss", Category: model.CategoryRegional, Priority: model.PriorityMedium, Status: model.FeedActive},
		{Name: "Beyond Type 1", URL: "https://beyondtype1.org/feed/", Category: model.CategoryLifestyle, Priority: model.PriorityLow, Status: model.FeedActive},
		{Name: "Medical News Today Diabetes", URL: "https://www.medicalnewstoday.com/categories/diabetes/rss", Category: model.CategoryMedical, Priority: model.PriorityLow, Status: model.FeedActive},
	}
}

// fileFeed is the YAML override shape.
type fileFeed struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	JSONURL  string `yaml:"json_url"`
	Category string `yaml:"category"`
	Priority string `yaml:"priority"`
	Inactive bool   `yaml:"inactive"`
}

// Registry owns the feed descriptor set for the process lifetime.
type Registry struct {
	mu    sync.RWMutex
	feeds []*model.FeedDescriptor
}

// New builds a registry from the built-in feed set.
func New() *Registry {
	return &Registry{feeds: builtin()}
}

// Load builds a registry from the built-ins plus overrides read from
// path. An override with a known name replaces the built-in entry; an
// unknown name appends a new feed.
func Load(path string) (*Registry, error) {
	r := New()
	if strings.TrimSpace(path) == "" {
		return r, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read feed registry: %w", err)
	}
	var overrides []fileFeed
	if err := yaml.Unmarshal(b, &overrides); err != nil {
		return nil, fmt.Errorf("parse feed registry: %w", err)
	}
	for _, f := range overrides {
		fd, err := descriptorFromFile(f)
		if err != nil {
			return nil, err
		}
		r.upsert(fd)
	}
	return r, nil
}

func descriptorFromFile(f fileFeed) (*model.FeedDescriptor, error) {
	if strings.TrimSpace(f.Name) == "" {
		return nil, fmt.Errorf("feed registry: entry with empty name")
	}
	status := model.FeedActive
	if f.Inactive {
		status = model.FeedInactive
	}
	cat := model.Category(strings.ToLower(f.Category))
	if cat == "" {
		cat = model.CategoryGeneral
	}
	prio := model.Priority(strings.ToLower(f.Priority))
	if prio == "" {
		prio = model.PriorityMedium
	}
	switch prio {
	case model.PriorityHigh, model.PriorityMedium, model.PriorityLow:
	default:
		return nil, fmt.Errorf("feed registry: %s: unknown priority %q", f.Name, f.Priority)
	}
	return &model.FeedDescriptor{
		Name:     f.Name,
		URL:      f.URL,
		JSONURL:  f.JSONURL,
		Category: cat,
		Priority: prio,
		Status:   status,
	}, nil
}

func (r *Registry) upsert(fd *model.FeedDescriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.feeds {
		if existing.Name == fd.Name {
			r.feeds[i] = fd
			return
		}
	}
	r.feeds = append(r.feeds, fd)
}

// Feeds returns the descriptors. Callers share the underlying pointers
// so fetcher status updates are visible everywhere.
func (r *Registry) Feeds() []*model.FeedDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*model.FeedDescriptor, len(r.feeds))
	copy(out, r.feeds)
	return out
}

// ByPriority returns the non-inactive feeds of one priority tier.
func (r *Registry) ByPriority(p model.Priority) []*model.FeedDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return FilterByPriority(r.feeds, p)
}

// FilterByPriority selects the feeds of one tier, excluding inactive
// ones. It is the single tier-selection rule; the fetcher applies it to
// whatever descriptor set it is handed.
func FilterByPriority(feeds []*model.FeedDescriptor, p model.Priority) []*model.FeedDescriptor {
	var out []*model.FeedDescriptor
	for _, fd := range feeds {
		if fd.Priority == p && fd.Status != model.FeedInactive {
			out = append(out, fd)
		}
	}
	return out
}

// Find returns the descriptor with the given name, or nil.
func (r *Registry) Find(name string) *model.FeedDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, fd := range r.feeds {
		if fd.Name == name {
			return fd
		}
	}
	return nil
}

// ValidURL reports whether raw is a usable http(s) URL.
func ValidURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
