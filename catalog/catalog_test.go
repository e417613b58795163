package catalog

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkvault/common"
	"linkvault/models"
	"linkvault/query"
	"linkvault/store"
)

func setupTestService(t *testing.T) (*Service, *store.Store) {
	dir := t.TempDir()
	st := store.New(filepath.Join(dir, "data"), filepath.Join(dir, "config.json"))
	return NewService(st), st
}

func ptr[T any](v T) *T { return &v }

func createTestResource(t *testing.T, svc *Service, title, category string) *models.Resource {
	r, err := svc.CreateResource(ResourceInput{
		Title:    ptr(title),
		Link:     ptr("http://example.com/" + title),
		Category: ptr(category),
	})
	require.NoError(t, err)
	return r
}

func TestCreateResourceDefaults(t *testing.T) {
	svc, st := setupTestService(t)

	r, err := svc.CreateResource(ResourceInput{
		Title: ptr("  Foo  "),
		Link:  ptr(" http://x "),
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(r.ID, "res_"))
	assert.Len(t, r.ID, len("res_")+8)
	assert.Equal(t, "Foo", r.Title)
	assert.Equal(t, "http://x", r.Link)
	assert.Equal(t, "", r.Description)
	assert.Equal(t, "other", r.Category)
	assert.Equal(t, "", r.Size)
	assert.Equal(t, []string{}, r.Tags)
	assert.Equal(t, 0, r.Clicks)
	assert.Equal(t, r.CreatedAt, r.UpdatedAt)

	catalog, err := st.LoadCatalog()
	require.NoError(t, err)
	require.Len(t, catalog.Resources, 1)
	assert.Equal(t, *r, catalog.Resources[0])
}

func TestCreateResourceValidation(t *testing.T) {
	svc, st := setupTestService(t)

	_, err := svc.CreateResource(ResourceInput{Title: ptr("   "), Link: ptr("http://x")})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.CreateResource(ResourceInput{Title: ptr("t")})
	assert.ErrorIs(t, err, common.ErrValidation)

	catalog, err := st.LoadCatalog()
	require.NoError(t, err)
	assert.Empty(t, catalog.Resources)
}

func TestCreateResourceIDsAreUnique(t *testing.T) {
	svc, _ := setupTestService(t)

	seen := map[string]bool{}
	for i := 0; i < 30; i++ {
		r := createTestResource(t, svc, "t", "")
		assert.False(t, seen[r.ID])
		seen[r.ID] = true
	}
}

func TestUpdateResourceOnlyTouchesPresentFields(t *testing.T) {
	svc, _ := setupTestService(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	svc.now = func() time.Time { return base }
	r, err := svc.CreateResource(ResourceInput{
		Title:       ptr("Title"),
		Link:        ptr("http://x"),
		Description: ptr("desc"),
		Tags:        &[]string{"a"},
	})
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(time.Hour) }
	updated, err := svc.UpdateResource(r.ID, ResourceInput{
		Title: ptr("  New  "),
		Tags:  &[]string{"b", "c"},
	})
	require.NoError(t, err)

	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "desc", updated.Description)
	assert.Equal(t, "http://x", updated.Link)
	assert.Equal(t, []string{"b", "c"}, updated.Tags)
	assert.Equal(t, r.CreatedAt, updated.CreatedAt)
	assert.Greater(t, updated.UpdatedAt, r.UpdatedAt)
	assert.Equal(t, r.ID, updated.ID)
}

func TestUpdateResourceNotFound(t *testing.T) {
	svc, _ := setupTestService(t)

	_, err := svc.UpdateResource("res_missing", ResourceInput{Title: ptr("x")})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestLookupByID(t *testing.T) {
	svc, _ := setupTestService(t)
	r := createTestResource(t, svc, "Foo", "")
	_, err := svc.CreateCategory(CategoryInput{ID: ptr("books"), Name: ptr("Books")})
	require.NoError(t, err)

	found, err := svc.Resource(r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Foo", found.Title)
	_, err = svc.Resource("res_missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	cat, err := svc.Category("books")
	require.NoError(t, err)
	assert.Equal(t, "Books", cat.Name)
	_, err = svc.Category("missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteResource(t *testing.T) {
	svc, st := setupTestService(t)
	r := createTestResource(t, svc, "a", "")

	require.NoError(t, svc.DeleteResource(r.ID))
	assert.ErrorIs(t, svc.DeleteResource(r.ID), common.ErrNotFound)

	catalog, err := st.LoadCatalog()
	require.NoError(t, err)
	assert.Empty(t, catalog.Resources)
}

func TestBatchDelete(t *testing.T) {
	svc, st := setupTestService(t)
	a := createTestResource(t, svc, "a", "")
	b := createTestResource(t, svc, "b", "")
	c := createTestResource(t, svc, "c", "")

	n, err := svc.BatchDelete([]string{a.ID, c.ID, a.ID, "res_unknown"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = svc.BatchDelete([]string{"res_unknown"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	catalog, err := st.LoadCatalog()
	require.NoError(t, err)
	require.Len(t, catalog.Resources, 1)
	assert.Equal(t, b.ID, catalog.Resources[0].ID)
}

func TestRecordClickPersists(t *testing.T) {
	svc, st := setupTestService(t)
	r := createTestResource(t, svc, "a", "")

	clicks, err := svc.RecordClick(r.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, clicks)

	clicks, err = svc.RecordClick(r.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, clicks)

	catalog, err := st.LoadCatalog()
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.Resources[0].Clicks)

	_, err = svc.RecordClick("res_missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreateCategory(t *testing.T) {
	svc, _ := setupTestService(t)

	c, err := svc.CreateCategory(CategoryInput{ID: ptr(" books "), Name: ptr(" Books ")})
	require.NoError(t, err)
	assert.Equal(t, "books", c.ID)
	assert.Equal(t, "Books", c.Name)
	assert.Equal(t, models.DefaultCategoryIcon, c.Icon)

	_, err = svc.CreateCategory(CategoryInput{ID: ptr("books"), Name: ptr("Again")})
	assert.ErrorIs(t, err, common.ErrConflict)

	generated, err := svc.CreateCategory(CategoryInput{Name: ptr("Music"), Icon: ptr("🎵")})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(generated.ID, "cat_"))
	assert.Len(t, generated.ID, len("cat_")+6)
	assert.Equal(t, "🎵", generated.Icon)

	_, err = svc.CreateCategory(CategoryInput{ID: ptr("x"), Name: ptr("  ")})
	assert.ErrorIs(t, err, common.ErrValidation)

	categories, err := svc.Categories()
	require.NoError(t, err)
	assert.Len(t, categories, 2)
}

func TestUpdateCategory(t *testing.T) {
	svc, _ := setupTestService(t)
	_, err := svc.CreateCategory(CategoryInput{ID: ptr("books"), Name: ptr("Books")})
	require.NoError(t, err)

	c, err := svc.UpdateCategory("books", CategoryInput{Icon: ptr("📖")})
	require.NoError(t, err)
	assert.Equal(t, "Books", c.Name)
	assert.Equal(t, "📖", c.Icon)

	_, err = svc.UpdateCategory("nope", CategoryInput{Name: ptr("x")})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteCategoryInUse(t *testing.T) {
	svc, _ := setupTestService(t)
	_, err := svc.CreateCategory(CategoryInput{ID: ptr("books"), Name: ptr("Books")})
	require.NoError(t, err)
	createTestResource(t, svc, "a", "books")
	createTestResource(t, svc, "b", "books")

	err = svc.DeleteCategory("books")
	assert.ErrorIs(t, err, common.ErrConflict)
	assert.Contains(t, err.Error(), "2")

	categories, err := svc.Categories()
	require.NoError(t, err)
	assert.Len(t, categories, 1)
}

func TestDeleteCategory(t *testing.T) {
	svc, _ := setupTestService(t)
	_, err := svc.CreateCategory(CategoryInput{ID: ptr("books"), Name: ptr("Books")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteCategory("books"))
	assert.ErrorIs(t, svc.DeleteCategory("books"), common.ErrNotFound)

	categories, err := svc.Categories()
	require.NoError(t, err)
	assert.Empty(t, categories)
}

func TestListCategoriesCounts(t *testing.T) {
	svc, _ := setupTestService(t)
	_, err := svc.CreateCategory(CategoryInput{ID: ptr("books"), Name: ptr("Books")})
	require.NoError(t, err)
	_, err = svc.CreateCategory(CategoryInput{ID: ptr("music"), Name: ptr("Music")})
	require.NoError(t, err)
	createTestResource(t, svc, "a", "books")
	createTestResource(t, svc, "b", "books")

	counts, err := svc.ListCategories()
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, 2, counts[0].Count)
	assert.Equal(t, 0, counts[1].Count)
}

func TestListResourcesByCategory(t *testing.T) {
	svc, _ := setupTestService(t)
	_, err := svc.CreateCategory(CategoryInput{ID: ptr("books"), Name: ptr("Books")})
	require.NoError(t, err)
	foo := createTestResource(t, svc, "Foo", "books")
	createTestResource(t, svc, "Bar", "music")

	result, err := svc.ListResources(query.Params{Page: 1, Limit: 12, Category: "books"})
	require.NoError(t, err)
	require.Len(t, result.Resources, 1)
	assert.Equal(t, foo.ID, result.Resources[0].ID)
	assert.Equal(t, "Books", result.Resources[0].CategoryInfo.Name)
}

func TestStats(t *testing.T) {
	svc, _ := setupTestService(t)
	ids := []string{}
	for _, title := range []string{"a", "b", "c", "d", "e", "f"} {
		ids = append(ids, createTestResource(t, svc, title, "").ID)
	}
	for i, id := range ids {
		for j := 0; j < i; j++ {
			_, err := svc.RecordClick(id)
			require.NoError(t, err)
		}
	}

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, 6, stats.TotalResources)
	assert.Equal(t, 15, stats.TotalClicks)
	require.Len(t, stats.Popular, 5)
	assert.Equal(t, ids[5], stats.Popular[0].ID)
	assert.Equal(t, ids[1], stats.Popular[4].ID)
}
