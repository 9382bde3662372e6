package models

// Core page slugs that always exist for every site. They are stored as
// named sections in the flat document backend; every other slug is a
// custom page kept in a nested array.
var CorePageSlugs = []string{"home", "contact", "studio", "work", "blog"}

// IsCorePageSlug reports whether slug names one of the fixed core pages.
func IsCorePageSlug(slug string) bool {
	for _, s := range CorePageSlugs {
		if s == slug {
			return true
		}
	}
	return false
}

// PageModel is one page of a site. Identity is the (site, slug) pair.
// Pages are never hard-deleted by the storage core.
type PageModel struct {
	Base
	SiteID      string    `json:"-"           gorm:"index:idx_pages_site_slug,unique;not null"`
	Slug        string    `json:"slug"        gorm:"index:idx_pages_site_slug,unique;not null"`
	Title       string    `json:"title"`
	Description string    `json:"description" gorm:"type:text"`
	Hero        JSONMap   `json:"hero,omitempty"   gorm:"type:longtext;serializer:json"`
	Blocks      BlockList `json:"blocks"      gorm:"type:longtext;serializer:json"`
	SEO         JSONMap   `json:"seo,omitempty"    gorm:"type:longtext;serializer:json"`
	Status      string    `json:"status"      gorm:"default:'draft';index"`
}

func (PageModel) TableName() string { return "pages" }
