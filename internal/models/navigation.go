package models

// NavigationItemModel is one entry of a site's ordered navigation. The
// full list is replaced atomically on every write; there is no per-item
// upsert. OrderIndex is best-effort, not enforced unique.
type NavigationItemModel struct {
	Base
	SiteID     string `json:"-"          gorm:"index;not null"`
	Label      string `json:"label"`
	URL        string `json:"url"`
	IsExternal bool   `json:"isExternal" gorm:"default:false"`
	OrderIndex int    `json:"order"      gorm:"default:0"`
}

func (NavigationItemModel) TableName() string { return "navigation_items" }
