package models

import "time"

// ProjectModel is a portfolio project. Identity is the (site, slug)
// pair regardless of visibility: public and admin share one slug space.
type ProjectModel struct {
	Base
	SiteID      string     `json:"-"            gorm:"index:idx_projects_site_slug,unique;not null"`
	Slug        string     `json:"slug"         gorm:"index:idx_projects_site_slug,unique;not null"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"      gorm:"type:text"`
	CoverImage  string     `json:"coverImage"`
	Body        string     `json:"body"         gorm:"type:longtext"`
	Blocks      BlockList  `json:"blocks"       gorm:"type:longtext;serializer:json"`
	SEO         JSONMap    `json:"seo,omitempty" gorm:"type:longtext;serializer:json"`
	Category    string     `json:"category"     gorm:"index"`
	Featured    bool       `json:"featured"     gorm:"default:false;index"`
	Visibility  string     `json:"visibility"   gorm:"default:'public';index"`
	Status      string     `json:"status"       gorm:"default:'draft';index"`
	PublishedAt *time.Time `json:"publishedAt"  gorm:"index"`
}

func (ProjectModel) TableName() string { return "projects" }
