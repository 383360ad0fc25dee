package model

import (
	"sort"
	"strings"
)

// PageType groups the page directory.
type PageType string

const (
	PageAdmin        PageType = "ADMIN"
	PageOrganization PageType = "ORGANIZATION"
	PageFederation   PageType = "FEDERATION"
	PageAcademic     PageType = "ACADEMIC"
	PageInterest     PageType = "INTEREST"
)

// PageTypes lists the types in directory display order.
var PageTypes = []PageType{PageAdmin, PageOrganization, PageFederation, PageAcademic, PageInterest}

// Page is a social-media page of an affiliated organization. Name is unique.
type Page struct {
	Name  string   `json:"name" validate:"notblank"`
	URL   string   `json:"url" validate:"required,url"`
	Image string   `json:"image,omitempty"`
	Type  PageType `json:"type" validate:"oneof=ADMIN ORGANIZATION FEDERATION ACADEMIC INTEREST"`
}

// Validate cleans p in place and checks it. A missing type means INTEREST.
func (p *Page) Validate() error {
	p.Name = cleanString(p.Name)
	p.URL = strings.TrimSpace(p.URL)
	p.Image = strings.TrimSpace(p.Image)
	p.Type = PageType(strings.ToUpper(strings.TrimSpace(string(p.Type))))
	if p.Type == "" {
		p.Type = PageInterest
	}
	return Validate.Struct(p)
}

// PageGroup is one section of the page directory.
type PageGroup struct {
	Type  PageType `json:"type"`
	Pages []Page   `json:"pages"`
}

// GroupPages splits pages by type in PageTypes order, each group sorted by
// name. Empty groups are left out.
func GroupPages(pages []Page) []PageGroup {
	byType := make(map[PageType][]Page)
	for _, p := range pages {
		byType[p.Type] = append(byType[p.Type], p)
	}
	var out []PageGroup
	for _, typ := range PageTypes {
		ps := byType[typ]
		if len(ps) == 0 {
			continue
		}
		sort.Slice(ps, func(i, j int) bool {
			return strings.ToLower(ps[i].Name) < strings.ToLower(ps[j].Name)
		})
		out = append(out, PageGroup{Type: typ, Pages: ps})
	}
	return out
}
