package models

import "time"

// ArticleModel is a blog article. Identity is the (site, slug) pair;
// listings are keyset-ordered by (published_at, id) descending.
// A nil PublishedAt means the article has not been published yet; under
// descending order MySQL sorts those rows last.
type ArticleModel struct {
	Base
	SiteID      string     `json:"-"            gorm:"index:idx_articles_site_slug,unique;not null"`
	Slug        string     `json:"slug"         gorm:"index:idx_articles_site_slug,unique;not null"`
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"      gorm:"type:text"`
	CoverImage  string     `json:"coverImage"`
	Body        string     `json:"body"         gorm:"type:longtext"`
	Blocks      BlockList  `json:"blocks"       gorm:"type:longtext;serializer:json"`
	SEO         JSONMap    `json:"seo,omitempty" gorm:"type:longtext;serializer:json"`
	Status      string     `json:"status"       gorm:"default:'draft';index"`
	PublishedAt *time.Time `json:"publishedAt"  gorm:"index"`
}

func (ArticleModel) TableName() string { return "articles" }
