package analytics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"linkvault/common"
	"linkvault/models"
)

// AnalyticsModule records resource clicks in a separate database.
// A nil *AnalyticsModule is valid and does nothing.
type AnalyticsModule struct {
	db *gorm.DB
}

// NewAnalyticsModule returns nil when db is nil; a nil module is a valid, disabled one.
func NewAnalyticsModule(db *gorm.DB) *AnalyticsModule {
	if db == nil {
		logrus.Info("analytics DB is nil, click analytics will be disabled")
		return nil
	}

	logrus.Info("analytics module initialized successfully")
	return &AnalyticsModule{db: db}
}

func (a *AnalyticsModule) Enabled() bool {
	return a != nil && a.db != nil
}

// TrackClick stores one click event for resourceID. Failures are logged only:
// the click counter in the catalog is the source of truth.
func (a *AnalyticsModule) TrackClick(c *gin.Context, resourceID string) {
	if !a.Enabled() {
		return
	}

	event := models.ClickEvent{
		ResourceID: resourceID,
		IP:         common.ClientIP(c),
		Browser:    common.ExtractBrowser(c.Request.UserAgent()),
		Language:   common.ExtractLanguage(c.GetHeader("Accept-Language")),
		CreatedAt:  time.Now().UTC(),
	}

	if err := a.db.Create(&event).Error; err != nil {
		logrus.WithField("resource_id", resourceID).Errorf("error saving click event: %v", err)
	}
}

type DayClicks struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type ResourceClicks struct {
	ResourceID string `json:"resource_id"`
	Title      string `json:"title"`
	Count      int64  `json:"count"`
}

// GetClicksByDay returns one entry per day for the last N days, oldest first.
func (a *AnalyticsModule) GetClicksByDay(days int) []DayClicks {
	if !a.Enabled() || days <= 0 {
		return []DayClicks{}
	}

	// events are stored in UTC so DATE() buckets match the keys below
	now := time.Now().UTC()
	startDate := now.AddDate(0, 0, -days)

	var results []struct {
		Date  string
		Count int64
	}

	a.db.Model(&models.ClickEvent{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at >= ?", startDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&results)

	dayClicks := make([]DayClicks, days)
	for i := 0; i < days; i++ {
		date := now.AddDate(0, 0, -(days - 1 - i))
		dayClicks[i] = DayClicks{Date: date.Format("2006-01-02")}
	}

	for _, result := range results {
		for i := range dayClicks {
			if dayClicks[i].Date == result.Date {
				dayClicks[i].Count = result.Count
				break
			}
		}
	}

	return dayClicks
}

// GetTopResources returns the most clicked resources of the last N days.
func (a *AnalyticsModule) GetTopResources(days int, limit int) []ResourceClicks {
	if !a.Enabled() {
		return []ResourceClicks{}
	}

	startDate := time.Now().UTC().AddDate(0, 0, -days)

	var results []ResourceClicks
	a.db.Model(&models.ClickEvent{}).
		Select("resource_id as resource_id, COUNT(*) as count").
		Where("created_at >= ?", startDate).
		Group("resource_id").
		Order("count DESC").
		Limit(limit).
		Scan(&results)

	if results == nil {
		results = []ResourceClicks{}
	}
	return results
}
