package view

import (
	"fmt"
	"slices"

	"RetailPulse/internal/model"
)

// Category is one entry of the forecast catalog.
type Category struct {
	Name          string   `json:"name"`
	SubCategories []string `json:"sub_categories"`
}

// Catalog lists the categories and sub-categories the forecast view can be
// scoped to. It is read-only once built.
type Catalog struct {
	categories []Category
}

func NewCatalog(categories []Category) (*Catalog, error) {
	if len(categories) == 0 {
		return nil, fmt.Errorf("catalog: no categories")
	}
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		if c.Name == "" {
			return nil, fmt.Errorf("catalog: empty category name")
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("catalog: duplicate category %q", c.Name)
		}
		if len(c.SubCategories) == 0 {
			return nil, fmt.Errorf("catalog: category %q has no sub-categories", c.Name)
		}
		seen[c.Name] = true
	}
	return &Catalog{categories: slices.Clone(categories)}, nil
}

// DefaultCatalog is the product hierarchy of the retail dataset.
func DefaultCatalog() *Catalog {
	c, _ := NewCatalog([]Category{
		{Name: "Furniture", SubCategories: []string{"Bookcases", "Chairs", "Tables"}},
		{Name: "Office Supplies", SubCategories: []string{"Binders", "Paper", "Storage"}},
		{Name: "Technology", SubCategories: []string{"Phones", "Accessories", "Machines"}},
	})
	return c
}

// Categories returns a copy of the catalog entries in display order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		out[i] = Category{Name: cat.Name, SubCategories: slices.Clone(cat.SubCategories)}
	}
	return out
}

func (c *Catalog) subCategories(category string) ([]string, bool) {
	for _, cat := range c.categories {
		if cat.Name == category {
			return cat.SubCategories, true
		}
	}
	return nil, false
}

// Resolve validates a controls change against the catalog. An empty
// subCategory keeps the current one when the category still lists it and
// otherwise falls back to the category's first sub-category.
func (c *Catalog) Resolve(current model.ForecastControls, category, subCategory string) (model.ForecastControls, error) {
	subs, ok := c.subCategories(category)
	if !ok {
		return current, fmt.Errorf("unknown category %q", category)
	}
	if subCategory == "" {
		if slices.Contains(subs, current.SubCategory) {
			return model.ForecastControls{Category: category, SubCategory: current.SubCategory}, nil
		}
		return model.ForecastControls{Category: category, SubCategory: subs[0]}, nil
	}
	if !slices.Contains(subs, subCategory) {
		return current, fmt.Errorf("unknown sub-category %q for category %q", subCategory, category)
	}
	return model.ForecastControls{Category: category, SubCategory: subCategory}, nil
}
