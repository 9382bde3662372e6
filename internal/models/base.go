package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base is the base model for all entities.
// ID is a UUID string so row identity survives slug and title edits.
type Base struct {
	ID        string         `json:"id"       gorm:"type:char(36);primaryKey"`
	CreatedAt time.Time      `json:"created"`
	UpdatedAt time.Time      `json:"modified"`
	DeletedAt gorm.DeletedAt `json:"-"        gorm:"index"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// Content status values shared by pages, articles and projects.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Project visibility pools. Visibility filters one shared slug space;
// it is not a second namespace.
const (
	VisibilityPublic = "public"
	VisibilityAdmin  = "admin"
)

// JSONMap is an opaque structured blob (hero configs, SEO, metadata).
// The storage core persists it verbatim; interpretation belongs to the
// rendering and editor layers.
type JSONMap map[string]interface{}

// BlockList is an ordered list of opaque content blocks.
type BlockList []map[string]interface{}
