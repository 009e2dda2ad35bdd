package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/calebshay/trellis/pkg/models"
	"gopkg.in/yaml.v3"
)

// LayoutFile represents the top-level structure of layouts.yaml: the most
// recent layout per garden.
type LayoutFile struct {
	Version string                   `yaml:"version"`
	Layouts map[string]models.Layout `yaml:"layouts"`
}

// LayoutManager persists the last computed layout per garden. A stored
// layout is served only while its source hash matches the current garden
// and it is younger than the freshness window.
type LayoutManager interface {
	PutLayout(layout models.Layout) error
	// GetFresh returns the stored layout for gardenID if its source hash
	// matches and it is younger than maxAge as of now.
	GetFresh(gardenID, sourceHash string, now time.Time, maxAge time.Duration) (*models.Layout, bool)
	RemoveLayout(gardenID string) error
	Load() error
	Save() error
}

type fileLayoutManager struct {
	basePath string
	data     LayoutFile
}

// NewLayoutManager creates a LayoutManager backed by a layouts.yaml file in
// the given base directory.
func NewLayoutManager(basePath string) LayoutManager {
	return &fileLayoutManager{
		basePath: basePath,
		data: LayoutFile{
			Version: "1.0",
			Layouts: make(map[string]models.Layout),
		},
	}
}

func (m *fileLayoutManager) filePath() string {
	return filepath.Join(m.basePath, "layouts.yaml")
}

func (m *fileLayoutManager) PutLayout(layout models.Layout) error {
	if layout.GardenID == "" {
		return fmt.Errorf("storing layout: garden ID must not be empty")
	}
	m.data.Layouts[layout.GardenID] = layout
	return nil
}

func (m *fileLayoutManager) GetFresh(gardenID, sourceHash string, now time.Time, maxAge time.Duration) (*models.Layout, bool) {
	layout, exists := m.data.Layouts[gardenID]
	if !exists {
		return nil, false
	}
	if layout.SourceHash == "" || layout.SourceHash != sourceHash {
		return nil, false
	}
	if now.Sub(layout.GeneratedAt) > maxAge {
		return nil, false
	}
	return &layout, true
}

func (m *fileLayoutManager) RemoveLayout(gardenID string) error {
	if _, exists := m.data.Layouts[gardenID]; !exists {
		return fmt.Errorf("removing layout: no layout stored for garden %s", gardenID)
	}
	delete(m.data.Layouts, gardenID)
	return nil
}

// Load reads layouts.yaml from disk. A missing file leaves the store empty.
func (m *fileLayoutManager) Load() error {
	data, err := os.ReadFile(m.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading layouts.yaml: %w", err)
	}

	var file LayoutFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing layouts.yaml: %w", err)
	}
	if file.Layouts == nil {
		file.Layouts = make(map[string]models.Layout)
	}
	m.data = file
	return nil
}

// Save writes the store back to layouts.yaml.
func (m *fileLayoutManager) Save() error {
	data, err := yaml.Marshal(m.data)
	if err != nil {
		return fmt.Errorf("marshalling layouts.yaml: %w", err)
	}
	if err := os.WriteFile(m.filePath(), data, 0o600); err != nil {
		return fmt.Errorf("writing layouts.yaml: %w", err)
	}
	return nil
}
