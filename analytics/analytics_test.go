package analytics

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"linkvault/database"
	"linkvault/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "analytics.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	return db
}

func clickContext(ip, ua string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request, _ = http.NewRequest("POST", "/api/resources/res_1/click", nil)
	c.Request.Header.Set("X-Forwarded-For", ip)
	c.Request.Header.Set("User-Agent", ua)
	c.Request.Header.Set("Accept-Language", "pt-BR,pt;q=0.9")
	return c
}

func TestNilModuleIsDisabled(t *testing.T) {
	a := NewAnalyticsModule(nil)
	assert.Nil(t, a)
	assert.False(t, a.Enabled())

	a.TrackClick(clickContext("1.1.1.1", "x"), "res_1")
	assert.Empty(t, a.GetClicksByDay(7))
	assert.Empty(t, a.GetTopResources(30, 5))
}

func TestTrackClick(t *testing.T) {
	db := setupTestDB(t)
	a := NewAnalyticsModule(db)
	require.True(t, a.Enabled())

	a.TrackClick(clickContext("9.9.9.9, 10.0.0.1", "Mozilla/5.0 Firefox/120.0"), "res_1")

	var events []models.ClickEvent
	require.NoError(t, db.Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, "res_1", events[0].ResourceID)
	assert.Equal(t, "9.9.9.9", events[0].IP)
	require.NotNil(t, events[0].Browser)
	assert.Equal(t, "Firefox", *events[0].Browser)
	require.NotNil(t, events[0].Language)
	assert.Equal(t, "pt-BR", *events[0].Language)
}

func TestClicksByDayAndTopResources(t *testing.T) {
	db := setupTestDB(t)
	a := NewAnalyticsModule(db)

	for i := 0; i < 3; i++ {
		a.TrackClick(clickContext("1.1.1.1", "ua"), "res_a")
	}
	a.TrackClick(clickContext("1.1.1.1", "ua"), "res_b")

	days := a.GetClicksByDay(15)
	require.Len(t, days, 15)
	var total int64
	for _, d := range days {
		total += d.Count
	}
	assert.Equal(t, int64(4), total)

	top := a.GetTopResources(30, 10)
	require.Len(t, top, 2)
	assert.Equal(t, "res_a", top[0].ResourceID)
	assert.Equal(t, int64(3), top[0].Count)
}
