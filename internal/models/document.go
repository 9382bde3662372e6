package models

// SiteDocument is the denormalized, whole-site content tree: the wire
// shape of a full-document write and the on-disk shape of the flat
// document backend.
type SiteDocument struct {
	Metadata    JSONMap               `json:"metadata,omitempty"`
	Name        string                `json:"name,omitempty"`
	Typography  JSONMap               `json:"typography,omitempty"`
	Spacing     JSONMap               `json:"spacing,omitempty"`
	Palette     JSONMap               `json:"palette,omitempty"`
	Transitions JSONMap               `json:"transitions,omitempty"`
	Pages       PagesSection          `json:"pages"`
	Articles    []ArticleModel        `json:"articles"`
	Projects    []ProjectModel        `json:"projects"`
	Navigation  []NavigationItemModel `json:"navigation"`
	Footer      *FooterModel          `json:"footer,omitempty"`
}

// PagesSection stores the fixed core pages as named sections and every
// other page in the custom array. Callers must not assume a uniform
// storage shape across slugs.
type PagesSection struct {
	Home    *PageModel  `json:"home,omitempty"`
	Contact *PageModel  `json:"contact,omitempty"`
	Studio  *PageModel  `json:"studio,omitempty"`
	Work    *PageModel  `json:"work,omitempty"`
	Blog    *PageModel  `json:"blog,omitempty"`
	Custom  []PageModel `json:"custom"`
}

// coreSection returns the pointer cell for a core slug, or nil.
func (p *PagesSection) coreSection(slug string) **PageModel {
	switch slug {
	case "home":
		return &p.Home
	case "contact":
		return &p.Contact
	case "studio":
		return &p.Studio
	case "work":
		return &p.Work
	case "blog":
		return &p.Blog
	}
	return nil
}

// Core returns the named core section for slug, or nil when slug is
// not a core slug or the section is empty.
func (p *PagesSection) Core(slug string) *PageModel {
	if cell := p.coreSection(slug); cell != nil {
		return *cell
	}
	return nil
}

// Find returns the page stored under slug, core or custom, or nil.
func (p *PagesSection) Find(slug string) *PageModel {
	if cell := p.coreSection(slug); cell != nil {
		return *cell
	}
	for i := range p.Custom {
		if p.Custom[i].Slug == slug {
			return &p.Custom[i]
		}
	}
	return nil
}

// Put stores page under its slug, replacing any page already there.
func (p *PagesSection) Put(page *PageModel) {
	if cell := p.coreSection(page.Slug); cell != nil {
		*cell = page
		return
	}
	for i := range p.Custom {
		if p.Custom[i].Slug == page.Slug {
			p.Custom[i] = *page
			return
		}
	}
	p.Custom = append(p.Custom, *page)
}

// All returns every page in the section, core sections first.
func (p *PagesSection) All() []PageModel {
	out := make([]PageModel, 0, len(p.Custom)+5)
	for _, slug := range CorePageSlugs {
		if page := *p.coreSection(slug); page != nil {
			out = append(out, *page)
		}
	}
	out = append(out, p.Custom...)
	return out
}
