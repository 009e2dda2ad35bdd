// Package storage provides the YAML file stores that persist gardens,
// care-task schedules, and cached layouts for the Trellis core.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/calebshay/trellis/pkg/models"
	"gopkg.in/yaml.v3"
)

// GardenFile represents the top-level structure of gardens.yaml.
type GardenFile struct {
	Version string                   `yaml:"version"`
	Gardens map[string]models.Garden `yaml:"gardens"`
}

// GardenManager defines the interface for the garden registry.
type GardenManager interface {
	AddGarden(garden models.Garden) error
	UpdateGarden(garden models.Garden) error
	RemoveGarden(gardenID string) error
	GetGarden(gardenID string) (*models.Garden, error)
	GetAllGardens() ([]models.Garden, error)
	Load() error
	Save() error
}

type fileGardenManager struct {
	basePath string
	data     GardenFile
}

// NewGardenManager creates a GardenManager backed by a gardens.yaml file in
// the given base directory.
func NewGardenManager(basePath string) GardenManager {
	return &fileGardenManager{
		basePath: basePath,
		data: GardenFile{
			Version: "1.0",
			Gardens: make(map[string]models.Garden),
		},
	}
}

func (m *fileGardenManager) filePath() string {
	return filepath.Join(m.basePath, "gardens.yaml")
}

func (m *fileGardenManager) AddGarden(garden models.Garden) error {
	if garden.ID == "" {
		return fmt.Errorf("adding garden: ID must not be empty")
	}
	if _, exists := m.data.Gardens[garden.ID]; exists {
		return fmt.Errorf("adding garden: garden %s already exists", garden.ID)
	}
	if err := m.checkPlantIDs(garden); err != nil {
		return fmt.Errorf("adding garden: %w", err)
	}
	m.data.Gardens[garden.ID] = garden
	return nil
}

func (m *fileGardenManager) UpdateGarden(garden models.Garden) error {
	if _, exists := m.data.Gardens[garden.ID]; !exists {
		return fmt.Errorf("updating garden: garden %s not found", garden.ID)
	}
	if err := m.checkPlantIDs(garden); err != nil {
		return fmt.Errorf("updating garden: %w", err)
	}
	m.data.Gardens[garden.ID] = garden
	return nil
}

// checkPlantIDs rejects plant IDs already claimed by another garden. Care
// tasks reference plants by ID alone, so a plant ID must identify exactly one
// plant across the whole registry.
func (m *fileGardenManager) checkPlantIDs(garden models.Garden) error {
	for _, p := range garden.Plants {
		for otherID, other := range m.data.Gardens {
			if otherID == garden.ID {
				continue
			}
			if other.PlantByID(p.ID) != nil {
				return fmt.Errorf("plant %s already belongs to garden %s", p.ID, otherID)
			}
		}
	}
	return nil
}

func (m *fileGardenManager) RemoveGarden(gardenID string) error {
	if _, exists := m.data.Gardens[gardenID]; !exists {
		return fmt.Errorf("removing garden: garden %s not found", gardenID)
	}
	delete(m.data.Gardens, gardenID)
	return nil
}

func (m *fileGardenManager) GetGarden(gardenID string) (*models.Garden, error) {
	garden, exists := m.data.Gardens[gardenID]
	if !exists {
		return nil, fmt.Errorf("getting garden: garden %s not found", gardenID)
	}
	return &garden, nil
}

// GetAllGardens returns all gardens sorted by ID for stable output.
func (m *fileGardenManager) GetAllGardens() ([]models.Garden, error) {
	gardens := make([]models.Garden, 0, len(m.data.Gardens))
	for _, g := range m.data.Gardens {
		gardens = append(gardens, g)
	}
	sort.Slice(gardens, func(i, j int) bool { return gardens[i].ID < gardens[j].ID })
	return gardens, nil
}

// Load reads gardens.yaml from disk. A missing file leaves the store empty.
func (m *fileGardenManager) Load() error {
	data, err := os.ReadFile(m.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading gardens.yaml: %w", err)
	}

	var file GardenFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing gardens.yaml: %w", err)
	}
	if file.Gardens == nil {
		file.Gardens = make(map[string]models.Garden)
	}
	m.data = file
	return nil
}

// Save writes the store back to gardens.yaml.
func (m *fileGardenManager) Save() error {
	data, err := yaml.Marshal(m.data)
	if err != nil {
		return fmt.Errorf("marshalling gardens.yaml: %w", err)
	}
	if err := os.WriteFile(m.filePath(), data, 0o600); err != nil {
		return fmt.Errorf("writing gardens.yaml: %w", err)
	}
	return nil
}
