// Package query filters, sorts, paginates and enriches the resource list.
package query

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"linkvault/models"
)

const (
	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortPopular = "popular"
	SortName    = "name"

	// DefaultAdminLimit is the page size of the admin listing.
	DefaultAdminLimit = 20
)

type Params struct {
	Page     int
	Limit    int
	Category string
	Search   string
	Sort     string
}

type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

type Result struct {
	Resources  []models.ResourceView `json:"resources"`
	Pagination Pagination            `json:"pagination"`
}

// List runs the public listing: category filter, search, sort, paginate, enrich.
// The input slice is not modified.
func List(resources []models.Resource, categories []models.Category, p Params) Result {
	filtered := make([]models.Resource, 0, len(resources))
	for _, r := range resources {
		if p.Category != "" && r.Category != p.Category {
			continue
		}
		if !matches(r, p.Search) {
			continue
		}
		filtered = append(filtered, r)
	}

	sortResources(filtered, p.Sort)
	return paginate(filtered, categories, p.Page, p.Limit)
}

// AdminList ignores category and sort: results are always newest first.
func AdminList(resources []models.Resource, categories []models.Category, page, limit int, search string) Result {
	return List(resources, categories, Params{
		Page:   page,
		Limit:  limit,
		Search: search,
		Sort:   SortNewest,
	})
}

func matches(r models.Resource, search string) bool {
	if search == "" {
		return true
	}
	q := strings.ToLower(search)
	return strings.Contains(strings.ToLower(r.Title), q) ||
		strings.Contains(strings.ToLower(r.Description), q)
}

// sortResources sorts in place. The sort is stable so ties keep file order.
func sortResources(resources []models.Resource, order string) {
	switch order {
	case SortOldest:
		slices.SortStableFunc(resources, func(a, b models.Resource) int {
			return cmp.Compare(a.CreatedAt, b.CreatedAt)
		})
	case SortPopular:
		slices.SortStableFunc(resources, func(a, b models.Resource) int {
			return cmp.Compare(b.Clicks, a.Clicks)
		})
	case SortName:
		slices.SortStableFunc(resources, func(a, b models.Resource) int {
			return cmp.Compare(a.Title, b.Title)
		})
	default:
		slices.SortStableFunc(resources, func(a, b models.Resource) int {
			return cmp.Compare(b.CreatedAt, a.CreatedAt)
		})
	}
}

// TotalPages is ceil(total/limit), or 1 when limit is not positive.
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 1
	}
	if total == 0 {
		return 0
	}
	return (total-1)/limit + 1
}

func paginate(resources []models.Resource, categories []models.Category, page, limit int) Result {
	if page < 1 {
		page = 1
	}

	total := len(resources)
	totalPages := TotalPages(total, limit)

	// page <= totalPages keeps (page-1)*limit below total, so it cannot overflow
	var pageItems []models.Resource
	if limit > 0 && page <= totalPages {
		start := (page - 1) * limit
		end := start + min(limit, total-start)
		pageItems = resources[start:end]
	}

	byID := make(map[string]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	views := make([]models.ResourceView, 0, len(pageItems))
	for _, r := range pageItems {
		view := models.ResourceView{Resource: r}
		if c, ok := byID[r.Category]; ok {
			view.CategoryInfo = &c
		}
		views = append(views, view)
	}

	return Result{
		Resources: views,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasPrev:    page > 1,
			HasNext:    page < totalPages,
		},
	}
}

// IntParam parses a query value, falling back when it is missing or malformed.
func IntParam(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
