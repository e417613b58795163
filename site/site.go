package site

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"linkvault/analytics"
	"linkvault/catalog"
	"linkvault/common"
	"linkvault/etag"
	"linkvault/models"
	"linkvault/query"
	"linkvault/settings"
)

type SiteModule struct {
	catalog   *catalog.Service
	settings  *settings.Service
	analytics *analytics.AnalyticsModule
}

func NewSiteModule(catalogService *catalog.Service, settingsService *settings.Service, analyticsModule *analytics.AnalyticsModule) *SiteModule {
	return &SiteModule{
		catalog:   catalogService,
		settings:  settingsService,
		analytics: analyticsModule,
	}
}

// RegisterRoutes mounts the public pages and API, and the catch-all 404.
func (s *SiteModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/", s.index)

	api := router.Group("/api")
	{
		cached := api.Group("", etag.Middleware())
		cached.GET("/resources", s.listResources)
		cached.GET("/categories", s.listCategories)
		cached.GET("/announcement", s.announcement)

		api.POST("/resources/:id/click", s.click)
	}

	router.NoRoute(s.notFound)
}

func (s *SiteModule) index(c *gin.Context) {
	config, err := s.settings.Config()
	if err != nil {
		s.serverError(c, err)
		return
	}

	categories, err := s.catalog.ListCategories()
	if err != nil {
		s.serverError(c, err)
		return
	}

	announcement, err := s.settings.PublicAnnouncement()
	if err != nil {
		s.serverError(c, err)
		return
	}

	c.HTML(http.StatusOK, "site_index.html", gin.H{
		"config":       config,
		"categories":   categories,
		"announcement": announcement,
	})
}

func (s *SiteModule) listResources(c *gin.Context) {
	config, err := s.settings.Config()
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	params := query.Params{
		Page:     query.IntParam(c.Query("page"), 1),
		Limit:    query.IntParam(c.Query("limit"), config.ItemsPerPage),
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Sort:     c.DefaultQuery("sort", query.SortNewest),
	}

	result, err := s.catalog.ListResources(params)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *SiteModule) listCategories(c *gin.Context) {
	categories, err := s.catalog.ListCategories()
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (s *SiteModule) announcement(c *gin.Context) {
	announcement, err := s.settings.PublicAnnouncement()
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	if announcement == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}

	c.JSON(http.StatusOK, announcement)
}

func (s *SiteModule) click(c *gin.Context) {
	id := c.Param("id")

	clicks, err := s.catalog.RecordClick(id)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			logrus.WithField("resource_id", id).Errorf("error recording click: %v", err)
		}
		common.AbortWithError(c, err)
		return
	}

	s.analytics.TrackClick(c, id)

	c.JSON(http.StatusOK, gin.H{"success": true, "clicks": clicks})
}

func (s *SiteModule) notFound(c *gin.Context) {
	if common.WantsJSON(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
		return
	}

	c.HTML(http.StatusNotFound, "site_404.html", gin.H{
		"config": s.configOrDefault(),
	})
}

func (s *SiteModule) serverError(c *gin.Context, err error) {
	logrus.WithField("path", c.Request.URL.Path).Errorf("page failed: %v", err)
	c.HTML(http.StatusInternalServerError, "site_500.html", gin.H{
		"config": s.configOrDefault(),
	})
}

// Recovery turns panics into the 500 page, or a JSON body on API paths.
func (s *SiteModule) Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logrus.WithFields(logrus.Fields{
			"path":  c.Request.URL.Path,
			"error": recovered,
		}).Error("panic while serving request")

		if common.WantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.HTML(http.StatusInternalServerError, "site_500.html", gin.H{
			"config": s.configOrDefault(),
		})
		c.Abort()
	})
}

// configOrDefault keeps the error pages renderable when the config document is broken.
func (s *SiteModule) configOrDefault() *models.Config {
	config, err := s.settings.Config()
	if err != nil {
		return models.DefaultConfig()
	}
	return config
}
