// Package catalog maps milestone video ids to display names, age bands and
// developmental areas.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"

	"devdash/pkg/models"
	"devdash/pkg/utils"
)

//go:embed videos.yaml
var embeddedVideos []byte

// Entry is one video of the table
type Entry struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	AgeGroup string `yaml:"age_group,omitempty"`
	Language string `yaml:"language,omitempty"`
}

type document struct {
	Videos []Entry `yaml:"videos"`
}

// Catalog is an immutable video table plus the classification rules
type Catalog struct {
	entries  []Entry
	byID     map[string]Entry
	ageRules []Rule
	devRules []Rule
}

// New builds a catalog from entries. Later duplicates replace earlier ones.
func New(entries []Entry) *Catalog {
	c := &Catalog{
		byID:     make(map[string]Entry, len(entries)),
		ageRules: AgeBandRules,
		devRules: DevelopmentalRules,
	}
	index := make(map[string]int, len(entries))
	for _, e := range entries {
		if i, dup := index[e.ID]; dup {
			c.entries[i] = e
		} else {
			index[e.ID] = len(c.entries)
			c.entries = append(c.entries, e)
		}
		c.byID[e.ID] = e
	}
	return c
}

// Parse decodes a videos YAML document
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse video catalog: %w", err)
	}
	for i, e := range doc.Videos {
		if e.ID == "" || e.Name == "" {
			return nil, fmt.Errorf("parse video catalog: entry %d needs id and name", i)
		}
	}
	return New(doc.Videos), nil
}

// Load reads the table at path, or the embedded table when path is empty
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read video catalog: %w", err)
	}
	return Parse(data)
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the catalog compiled into the binary
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(embeddedVideos)
		if err != nil {
			panic(err)
		}
		defaultCat = c
	})
	return defaultCat
}

// Entries returns the table in file order
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len is the number of known videos
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Lookup returns the entry for an exact id
func (c *Catalog) Lookup(videoID string) (Entry, bool) {
	e, ok := c.byID[videoID]
	return e, ok
}

// NameOf returns the display name, or "Video <first 8 chars>..." for unknown ids
func (c *Catalog) NameOf(videoID string) string {
	if e, ok := c.byID[videoID]; ok {
		return e.Name
	}
	return "Video " + utils.TruncateRunes(videoID, 8) + "..."
}

// AgeCategoryOf resolves a video id or YouTube URL to an age band
func (c *Catalog) AgeCategoryOf(videoIDOrURL string) string {
	id, ok := ExtractYouTubeID(videoIDOrURL)
	if !ok {
		id = videoIDOrURL
	}
	if e, ok := c.byID[id]; ok && e.AgeGroup != "" {
		return e.AgeGroup
	}
	return Classify(c.ageRules, c.NameOf(id))
}

// DevelopmentalCategoryOf classifies a display name into a skill area
func (c *Catalog) DevelopmentalCategoryOf(videoName string) string {
	return Classify(c.devRules, videoName)
}

// CategoryOfID is DevelopmentalCategoryOf applied to the id's display name
func (c *Catalog) CategoryOfID(videoID string) string {
	return c.DevelopmentalCategoryOf(c.NameOf(videoID))
}

// Metadata assembles the display record for a video
func (c *Catalog) Metadata(videoID string) models.VideoMetadata {
	return models.VideoMetadata{
		VideoID:   videoID,
		VideoName: c.NameOf(videoID),
		Category:  c.CategoryOfID(videoID),
		AgeGroup:  c.AgeCategoryOf(videoID),
	}
}

var youTubeID = regexp.MustCompile(`^.*(youtu.be/|v/|e/|u/\w+/|embed/|shorts/|v=)([^#&?]*).*`)

// ExtractYouTubeID pulls the 11 character video id out of a YouTube URL
func ExtractYouTubeID(url string) (string, bool) {
	if url == "" {
		return "", false
	}
	m := youTubeID.FindStringSubmatch(url)
	if m == nil || len(m[2]) != 11 {
		return "", false
	}
	return m[2], true
}
