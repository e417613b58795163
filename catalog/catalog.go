package catalog

import (
	"cmp"
	"slices"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"linkvault/common"
	"linkvault/models"
	"linkvault/query"
	"linkvault/store"
)

// ResourceInput is the body of resource create/update requests.
// Nil fields were absent from the request.
type ResourceInput struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Link        *string   `json:"link"`
	Size        *string   `json:"size"`
	Tags        *[]string `json:"tags"`
}

type CategoryInput struct {
	ID   *string `json:"id"`
	Name *string `json:"name"`
	Icon *string `json:"icon"`
}

type BatchDeleteInput struct {
	IDs []string `json:"ids" binding:"required"`
}

type Stats struct {
	TotalResources  int               `json:"total_resources"`
	TotalCategories int               `json:"total_categories"`
	TotalClicks     int               `json:"total_clicks"`
	Popular         []models.Resource `json:"popular_resources"`
}

// Service owns every catalog mutation. Each call is one load-mutate-save cycle.
type Service struct {
	store *store.Store
	now   func() time.Time
}

// NewService builds a catalog service over st.
func NewService(st *store.Store) *Service {
	return &Service{store: st, now: time.Now}
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func newToken(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

// Resources

// ListResources runs the public listing over the current catalog.
func (s *Service) ListResources(p query.Params) (query.Result, error) {
	catalog, err := s.store.LoadCatalog()
	if err != nil {
		return query.Result{}, err
	}
	return query.List(catalog.Resources, catalog.Categories, p), nil
}

// AdminListResources lists newest first, filtered by search only.
func (s *Service) AdminListResources(page, limit int, search string) (query.Result, error) {
	catalog, err := s.store.LoadCatalog()
	if err != nil {
		return query.Result{}, err
	}
	return query.AdminList(catalog.Resources, catalog.Categories, page, limit, search), nil
}

// Resource returns one resource, or a not-found error.
func (s *Service) Resource(id string) (*models.Resource, error) {
	catalog, err := s.store.LoadCatalog()
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(catalog.Resources, func(r models.Resource) bool { return r.ID == id })
	if i < 0 {
		return nil, common.NotFound("resource not found")
	}
	return &catalog.Resources[i], nil
}

// CreateResource requires a title and a link; a missing category falls back to "other".
func (s *Service) CreateResource(in ResourceInput) (*models.Resource, error) {
	title := trimmed(in.Title)
	link := trimmed(in.Link)
	if title == "" {
		return nil, common.Invalid("title is required")
	}
	if link == "" {
		return nil, common.Invalid("link is required")
	}

	category := models.DefaultCategoryID
	if in.Category != nil {
		category = trimmed(in.Category)
	}
	tags := []string{}
	if in.Tags != nil && *in.Tags != nil {
		tags = *in.Tags
	}

	now := models.Timestamp(s.now())
	resource := models.Resource{
		Title:       title,
		Description: trimmed(in.Description),
		Category:    category,
		Link:        link,
		Size:        trimmed(in.Size),
		Tags:        tags,
		Clicks:      0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.store.UpdateCatalog(func(c *models.Catalog) error {
		resource.ID = uniqueID("res_", 8, func(id string) bool {
			return slices.ContainsFunc(c.Resources, func(r models.Resource) bool { return r.ID == id })
		})
		c.Resources = append(c.Resources, resource)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithField("resource_id", resource.ID).Info("resource created")
	return &resource, nil
}

func uniqueID(prefix string, n int, taken func(string) bool) string {
	for {
		id := prefix + newToken(n)
		if !taken(id) {
			return id
		}
	}
}

// UpdateResource overwrites only the fields present in the request.
func (s *Service) UpdateResource(id string, in ResourceInput) (*models.Resource, error) {
	var updated models.Resource
	err := s.store.UpdateCatalog(func(c *models.Catalog) error {
		i := slices.IndexFunc(c.Resources, func(r models.Resource) bool { return r.ID == id })
		if i < 0 {
			return common.NotFound("resource not found")
		}

		r := &c.Resources[i]
		if in.Title != nil {
			r.Title = trimmed(in.Title)
		}
		if in.Description != nil {
			r.Description = trimmed(in.Description)
		}
		if in.Category != nil {
			r.Category = trimmed(in.Category)
		}
		if in.Link != nil {
			r.Link = trimmed(in.Link)
		}
		if in.Size != nil {
			r.Size = trimmed(in.Size)
		}
		if in.Tags != nil {
			r.Tags = *in.Tags
			if r.Tags == nil {
				r.Tags = []string{}
			}
		}
		r.UpdatedAt = models.Timestamp(s.now())

		updated = *r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteResource removes one resource, or fails with a not-found error.
func (s *Service) DeleteResource(id string) error {
	err := s.store.UpdateCatalog(func(c *models.Catalog) error {
		before := len(c.Resources)
		c.Resources = slices.DeleteFunc(c.Resources, func(r models.Resource) bool { return r.ID == id })
		if len(c.Resources) == before {
			return common.NotFound("resource not found")
		}
		return nil
	})
	if err == nil {
		logrus.WithField("resource_id", id).Info("resource deleted")
	}
	return err
}

// BatchDelete removes every resource whose id is in ids and returns how many went.
func (s *Service) BatchDelete(ids []string) (int, error) {
	set := mapset.NewSet(ids...)

	deleted := 0
	err := s.store.UpdateCatalog(func(c *models.Catalog) error {
		before := len(c.Resources)
		c.Resources = slices.DeleteFunc(c.Resources, func(r models.Resource) bool { return set.Contains(r.ID) })
		deleted = before - len(c.Resources)
		return nil
	})
	if err != nil {
		return 0, err
	}

	logrus.WithField("deleted", deleted).Info("resources batch deleted")
	return deleted, nil
}

// RecordClick increments the click counter and returns the new value.
func (s *Service) RecordClick(id string) (int, error) {
	clicks := 0
	err := s.store.UpdateCatalog(func(c *models.Catalog) error {
		i := slices.IndexFunc(c.Resources, func(r models.Resource) bool { return r.ID == id })
		if i < 0 {
			return common.NotFound("resource not found")
		}
		c.Resources[i].Clicks++
		clicks = c.Resources[i].Clicks
		return nil
	})
	return clicks, err
}

// Stats feeds the dashboard.
func (s *Service) Stats() (Stats, error) {
	catalog, err := s.store.LoadCatalog()
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		TotalResources:  len(catalog.Resources),
		TotalCategories: len(catalog.Categories),
	}
	for _, r := range catalog.Resources {
		stats.TotalClicks += r.Clicks
	}

	popular := slices.Clone(catalog.Resources)
	slices.SortStableFunc(popular, func(a, b models.Resource) int {
		return cmp.Compare(b.Clicks, a.Clicks)
	})
	stats.Popular = popular[:min(5, len(popular))]

	return stats, nil
}

// Titles maps resource ids to titles.
func (s *Service) Titles() (map[string]string, error) {
	catalog, err := s.store.LoadCatalog()
	if err != nil {
		return nil, err
	}

	titles := make(map[string]string, len(catalog.Resources))
	for _, r := range catalog.Resources {
		titles[r.ID] = r.Title
	}
	return titles, nil
}
