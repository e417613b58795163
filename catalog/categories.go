package catalog

import (
	"slices"

	"github.com/sirupsen/logrus"

	"linkvault/common"
	"linkvault/models"
)

// Categories returns the raw category list, in stored order.
func (s *Service) Categories() ([]models.Category, error) {
	catalog, err := s.store.LoadCatalog()
	if err != nil {
		return nil, err
	}
	return catalog.Categories, nil
}

// Category returns one category, or a not-found error.
func (s *Service) Category(id string) (*models.Category, error) {
	catalog, err := s.store.LoadCatalog()
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(catalog.Categories, func(c models.Category) bool { return c.ID == id })
	if i < 0 {
		return nil, common.NotFound("category not found")
	}
	return &catalog.Categories[i], nil
}

// ListCategories annotates every category with its live resource count.
func (s *Service) ListCategories() ([]models.CategoryCount, error) {
	catalog, err := s.store.LoadCatalog()
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, r := range catalog.Resources {
		counts[r.Category]++
	}

	out := make([]models.CategoryCount, 0, len(catalog.Categories))
	for _, c := range catalog.Categories {
		out = append(out, models.CategoryCount{Category: c, Count: counts[c.ID]})
	}
	return out, nil
}

// CreateCategory requires a name. A missing id is generated; a taken id is a conflict.
func (s *Service) CreateCategory(in CategoryInput) (*models.Category, error) {
	name := trimmed(in.Name)
	if name == "" {
		return nil, common.Invalid("category name is required")
	}

	icon := models.DefaultCategoryIcon
	if in.Icon != nil {
		icon = *in.Icon
	}
	category := models.Category{Name: name, Icon: icon}

	err := s.store.UpdateCatalog(func(c *models.Catalog) error {
		taken := func(id string) bool {
			return slices.ContainsFunc(c.Categories, func(cat models.Category) bool { return cat.ID == id })
		}

		category.ID = trimmed(in.ID)
		if category.ID == "" {
			category.ID = uniqueID("cat_", 6, taken)
		} else if taken(category.ID) {
			return common.Conflict("category id %q already exists", category.ID)
		}

		c.Categories = append(c.Categories, category)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithField("category_id", category.ID).Info("category created")
	return &category, nil
}

// UpdateCategory changes name and icon. The id is immutable.
func (s *Service) UpdateCategory(id string, in CategoryInput) (*models.Category, error) {
	var updated models.Category
	err := s.store.UpdateCatalog(func(c *models.Catalog) error {
		i := slices.IndexFunc(c.Categories, func(cat models.Category) bool { return cat.ID == id })
		if i < 0 {
			return common.NotFound("category not found")
		}

		cat := &c.Categories[i]
		if in.Name != nil {
			cat.Name = trimmed(in.Name)
		}
		if in.Icon != nil {
			cat.Icon = *in.Icon
		}
		updated = *cat
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteCategory refuses while any resource still points at the category.
func (s *Service) DeleteCategory(id string) error {
	err := s.store.UpdateCatalog(func(c *models.Catalog) error {
		inUse := 0
		for _, r := range c.Resources {
			if r.Category == id {
				inUse++
			}
		}
		if inUse > 0 {
			return common.Conflict("category is used by %d resource(s), delete or move them first", inUse)
		}

		before := len(c.Categories)
		c.Categories = slices.DeleteFunc(c.Categories, func(cat models.Category) bool { return cat.ID == id })
		if len(c.Categories) == before {
			return common.NotFound("category not found")
		}
		return nil
	})
	if err == nil {
		logrus.WithField("category_id", id).Info("category deleted")
	}
	return err
}
