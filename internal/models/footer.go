package models

// FooterModel holds a site's footer configuration. At most one row per
// site (classic upsert keyed by site id alone).
type FooterModel struct {
	Base
	SiteID      string    `json:"-"           gorm:"uniqueIndex;not null"`
	Content     string    `json:"content"     gorm:"type:text"`
	SocialLinks BlockList `json:"socialLinks" gorm:"type:longtext;serializer:json"`
	Columns     JSONMap   `json:"columns,omitempty" gorm:"type:longtext;serializer:json"`
}

func (FooterModel) TableName() string { return "footers" }
