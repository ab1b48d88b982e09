package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Branch represents a warehouse branch and its shelf layout
type Branch struct {
	ID             string      `bson:"_id"`
	Name           string      `bson:"name"`
	Address        string      `bson:"address,omitempty"`
	TotalShelves   int         `bson:"totalShelves"`
	TotalSections  int         `bson:"totalSections"`
	CustomSections map[int]int `bson:"customSections,omitempty"`
	CreatedAt      time.Time   `bson:"createdAt"`
	UpdatedAt      time.Time   `bson:"updatedAt"`
}

// NewBranch creates a branch with a validated layout
func NewBranch(name, address string, totalShelves, totalSections int) (*Branch, error) {
	if name == "" {
		return nil, fmt.Errorf("branch name cannot be empty")
	}
	if totalShelves < 1 {
		return nil, fmt.Errorf("total shelves must be at least 1")
	}
	if totalSections < 1 {
		return nil, fmt.Errorf("total sections must be at least 1")
	}

	now := time.Now().UTC()
	return &Branch{
		ID:            uuid.New().String(),
		Name:          name,
		Address:       address,
		TotalShelves:  totalShelves,
		TotalSections: totalSections,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// EffectiveSectionCount returns the number of sections on a shelf, honoring
// per-shelf overrides. Falls back to the branch default, then to 1.
func (b *Branch) EffectiveSectionCount(shelf int) int {
	if count, ok := b.CustomSections[shelf]; ok && count > 0 {
		return count
	}
	if b.TotalSections > 0 {
		return b.TotalSections
	}
	return 1
}

// ClampSection returns section unchanged when it fits the shelf, and resets
// it to 1 when it does not. Out-of-range sections reset rather than truncate
// so relocated stock lands at the start of the shelf.
func (b *Branch) ClampSection(shelf, section int) int {
	if section >= 1 && section <= b.EffectiveSectionCount(shelf) {
		return section
	}
	return 1
}

// Contains reports whether the placement falls inside the branch layout
func (b *Branch) Contains(shelf, section int) bool {
	if shelf < 1 || shelf > b.TotalShelves {
		return false
	}
	return section >= 1 && section <= b.EffectiveSectionCount(shelf)
}

// SetCustomSections overrides the section count for a single shelf
func (b *Branch) SetCustomSections(shelf, sections int) error {
	if shelf < 1 || shelf > b.TotalShelves {
		return fmt.Errorf("shelf %d is outside branch layout (1-%d)", shelf, b.TotalShelves)
	}
	if sections < 1 {
		return fmt.Errorf("section count must be at least 1")
	}

	if b.CustomSections == nil {
		b.CustomSections = make(map[int]int)
	}
	b.CustomSections[shelf] = sections
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// ClearCustomSections removes the override for a shelf
func (b *Branch) ClearCustomSections(shelf int) {
	delete(b.CustomSections, shelf)
	b.UpdatedAt = time.Now().UTC()
}

// Resize changes the branch layout and prunes overrides for removed shelves
func (b *Branch) Resize(totalShelves, totalSections int) error {
	if totalShelves < 1 {
		return fmt.Errorf("total shelves must be at least 1")
	}
	if totalSections < 1 {
		return fmt.Errorf("total sections must be at least 1")
	}

	b.TotalShelves = totalShelves
	b.TotalSections = totalSections
	for shelf := range b.CustomSections {
		if shelf > totalShelves {
			delete(b.CustomSections, shelf)
		}
	}
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// ShelfLayout describes one shelf of the branch
type ShelfLayout struct {
	Shelf    int    `json:"shelf"`
	Label    string `json:"label"`
	Sections int    `json:"sections"`
}

// Layout returns the full shelf layout with labels and effective section counts
func (b *Branch) Layout() []ShelfLayout {
	layout := make([]ShelfLayout, 0, b.TotalShelves)
	for shelf := 1; shelf <= b.TotalShelves; shelf++ {
		layout = append(layout, ShelfLayout{
			Shelf:    shelf,
			Label:    ShelfLabel(shelf),
			Sections: b.EffectiveSectionCount(shelf),
		})
	}
	return layout
}
