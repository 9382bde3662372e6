package models

// SiteModel is one tenant: one logical website. Every other entity is
// scoped to exactly one site. The human-chosen slug is the tenant key.
type SiteModel struct {
	Base
	Slug        string  `json:"slug"        gorm:"uniqueIndex;not null"`
	Name        string  `json:"name"`
	Metadata    JSONMap `json:"metadata"    gorm:"type:longtext;serializer:json"`
	Typography  JSONMap `json:"typography"  gorm:"type:longtext;serializer:json"`
	Spacing     JSONMap `json:"spacing"     gorm:"type:longtext;serializer:json"`
	Palette     JSONMap `json:"palette"     gorm:"type:longtext;serializer:json"`
	Transitions JSONMap `json:"transitions" gorm:"type:longtext;serializer:json"`
}

func (SiteModel) TableName() string { return "sites" }

// SiteMetadata is the read shape of a site's configuration blobs.
type SiteMetadata struct {
	Site        string  `json:"site"`
	Name        string  `json:"name"`
	Metadata    JSONMap `json:"metadata"`
	Typography  JSONMap `json:"typography"`
	Spacing     JSONMap `json:"spacing"`
	Palette     JSONMap `json:"palette"`
	Transitions JSONMap `json:"transitions"`
}

// Metadata assembles the read shape from a site row.
func (s *SiteModel) SiteMetadata() *SiteMetadata {
	return &SiteMetadata{
		Site:        s.Slug,
		Name:        s.Name,
		Metadata:    s.Metadata,
		Typography:  s.Typography,
		Spacing:     s.Spacing,
		Palette:     s.Palette,
		Transitions: s.Transitions,
	}
}
