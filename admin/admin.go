package admin

import (
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"linkvault/analytics"
	"linkvault/catalog"
	"linkvault/common"
	emailpkg "linkvault/email"
	"linkvault/settings"
)

const (
	sessionKey      = "admin_logged_in"
	sessionEpochKey = "admin_epoch"
)

type AdminModule struct {
	catalog   *catalog.Service
	settings  *settings.Service
	analytics *analytics.AnalyticsModule
	alerts    *emailpkg.EmailService
}

func NewAdminModule(catalogService *catalog.Service, settingsService *settings.Service, analyticsModule *analytics.AnalyticsModule, alerts *emailpkg.EmailService) *AdminModule {
	return &AdminModule{
		catalog:   catalogService,
		settings:  settingsService,
		analytics: analyticsModule,
		alerts:    alerts,
	}
}

// RegisterRoutes mounts login/logout and the guarded admin pages and API.
func (a *AdminModule) RegisterRoutes(router *gin.Engine) {
	router.GET("/admin/login", a.loginPage)
	router.POST("/admin/login", a.loginPost)
	router.GET("/admin/logout", a.logout)

	pages := router.Group("/admin")
	pages.Use(a.requireAuth)
	{
		pages.GET("", a.dashboard)
		pages.GET("/resources", a.resourcesPage)
		pages.GET("/categories", a.categoriesPage)
		pages.GET("/settings", a.settingsPage)
		pages.GET("/announcement", a.announcementPage)
		pages.GET("/logs", a.logsPage)
	}

	api := router.Group("/api/admin")
	api.Use(a.requireAuth)
	{
		api.GET("/resources", a.listResources)
		api.POST("/resources", a.createResource)
		api.POST("/resources/batch-delete", a.batchDeleteResources)
		api.PUT("/resources/:id", a.updateResource)
		api.DELETE("/resources/:id", a.deleteResource)
		api.GET("/categories", a.listCategories)
		api.POST("/categories", a.createCategory)
		api.PUT("/categories/:id", a.updateCategory)
		api.DELETE("/categories/:id", a.deleteCategory)
		api.PUT("/password", a.changePassword)
		api.PUT("/settings", a.updateSettings)
		api.GET("/announcement", a.getAnnouncement)
		api.PUT("/announcement", a.updateAnnouncement)
		api.GET("/stats", a.stats)
	}
}

// loggedIn reports whether the session belongs to the admin and was issued
// after the last logout.
func (a *AdminModule) loggedIn(session sessions.Session) (bool, error) {
	if ok, _ := session.Get(sessionKey).(bool); !ok {
		return false, nil
	}
	epoch, err := a.settings.SessionEpoch()
	if err != nil {
		return false, err
	}
	sessionEpoch, ok := session.Get(sessionEpochKey).(int)
	return ok && sessionEpoch == epoch, nil
}

// requireAuth rejects requests without an admin session: API callers get a
// 401 body, browsers are sent to the login form.
func (a *AdminModule) requireAuth(c *gin.Context) {
	loggedIn, err := a.loggedIn(sessions.Default(c))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}
	if !loggedIn {
		if common.WantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Redirect(http.StatusFound, "/admin/login")
		c.Abort()
		return
	}

	c.Next()
}

func (a *AdminModule) renderError(c *gin.Context, status int, err error) {
	logrus.WithField("path", c.Request.URL.Path).Errorf("admin page failed: %v", err)
	c.HTML(status, "admin_error.html", gin.H{
		"error": "Something went wrong, please try again.",
	})
}

func (a *AdminModule) loginPage(c *gin.Context) {
	if loggedIn, _ := a.loggedIn(sessions.Default(c)); loggedIn {
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	config, err := a.settings.Config()
	if err != nil {
		a.renderError(c, http.StatusInternalServerError, err)
		return
	}

	c.HTML(http.StatusOK, "admin_login.html", gin.H{
		"config": config,
	})
}

func (a *AdminModule) loginPost(c *gin.Context) {
	password := c.PostForm("password")
	ip := common.ClientIP(c)
	userAgent := c.Request.UserAgent()

	config, err := a.settings.Config()
	if err != nil {
		a.renderError(c, http.StatusInternalServerError, err)
		return
	}

	ok, err := a.settings.VerifyPassword(password)
	if err != nil {
		a.renderError(c, http.StatusInternalServerError, err)
		return
	}

	if err := a.settings.RecordLogin(ip, userAgent, ok); err != nil {
		logrus.Errorf("error recording login attempt: %v", err)
	}
	log := logrus.WithFields(logrus.Fields{"ip": ip, "success": ok})

	if !ok {
		log.Warn("admin login failed")
		if err := a.alerts.SendLoginAlert(config.SiteTitle, ip, userAgent, time.Now()); err != nil {
			logrus.Errorf("error sending login alert: %v", err)
		}
		c.HTML(http.StatusUnauthorized, "admin_login.html", gin.H{
			"config": config,
			"error":  "Invalid password",
		})
		return
	}

	epoch, err := a.settings.SessionEpoch()
	if err != nil {
		a.renderError(c, http.StatusInternalServerError, err)
		return
	}

	session := sessions.Default(c)
	session.Set(sessionKey, true)
	session.Set(sessionEpochKey, epoch)
	if err := session.Save(); err != nil {
		a.renderError(c, http.StatusInternalServerError, err)
		return
	}

	log.Info("admin logged in")
	c.Redirect(http.StatusFound, "/admin")
}

// logout also revokes copies of the cookie, but only when the caller holds a valid session.
func (a *AdminModule) logout(c *gin.Context) {
	session := sessions.Default(c)
	if loggedIn, _ := a.loggedIn(session); loggedIn {
		if err := a.settings.RevokeSessions(); err != nil {
			logrus.Errorf("error revoking sessions: %v", err)
		}
	}

	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		logrus.Errorf("error clearing session: %v", err)
	}

	c.Redirect(http.StatusFound, "/")
}

// Chart rows with percentages precomputed for the template.
type DayClickChart struct {
	Date       string
	Count      int64
	Percentage float64
}

type ResourceClickChart struct {
	ResourceID string
	Title      string
	Count      int64
	Percentage float64
}

func (a *AdminModule) clickCharts() ([]DayClickChart, []ResourceClickChart, error) {
	clicksByDay := a.analytics.GetClicksByDay(15)
	topResources := a.analytics.GetTopResources(30, 10)

	titles, err := a.catalog.Titles()
	if err != nil {
		return nil, nil, err
	}

	maxPerDay := int64(1)
	for _, day := range clicksByDay {
		maxPerDay = max(maxPerDay, day.Count)
	}
	maxPerResource := int64(1)
	for _, r := range topResources {
		maxPerResource = max(maxPerResource, r.Count)
	}

	dayCharts := make([]DayClickChart, len(clicksByDay))
	for i, day := range clicksByDay {
		dayCharts[i] = DayClickChart{
			Date:       day.Date,
			Count:      day.Count,
			Percentage: float64(day.Count) / float64(maxPerDay) * 100,
		}
	}

	resourceCharts := make([]ResourceClickChart, len(topResources))
	for i, r := range topResources {
		title, ok := titles[r.ResourceID]
		if !ok {
			title = "(deleted resource)"
		}
		resourceCharts[i] = ResourceClickChart{
			ResourceID: r.ResourceID,
			Title:      title,
			Count:      r.Count,
			Percentage: float64(r.Count) / float64(maxPerResource) * 100,
		}
	}

	return dayCharts, resourceCharts, nil
}

func (a *AdminModule) dashboard(c *gin.Context) {
	config, err := a.settings.Config()
	if err != nil {
		a.renderError(c, http.StatusInternalServerError, err)
		return
	}

	stats, err := a.catalog.Stats()
	if err != nil {
		a.renderError(c, http.StatusInternalServerError, err)
		return
	}

	data := gin.H{
		"config":           config,
		"stats":            stats,
		"analyticsEnabled": a.analytics.Enabled(),
	}

	if a.analytics.Enabled() {
		dayCharts, resourceCharts, err := a.clickCharts()
		if err != nil {
			a.renderError(c, http.StatusInternalServerError, err)
			return
		}
		data["clicksByDay"] = dayCharts
		data["topClicked"] = resourceCharts
	}

	c.HTML(http.StatusOK, "admin_dashboard.html", data)
}

func (a *AdminModule) resourcesPage(c *gin.Context) {
	a.renderWithCategories(c, "admin_resources.html")
}

func (a *AdminModule) categoriesPage(c *gin.Context) {
	a.renderWithCategories(c, "admin_categories.html")
}

func (a *AdminModule) renderWithCategories(c *gin.Context, name string) {
	config, err := a.settings.Config()
	if err != nil {
		a.renderError(c, http.StatusInternalServerError, err)
		return
	}

	categories, err := a.catalog.ListCategories()
	if err != nil {
		a.renderError(c, http.StatusInternalServerError, err)
		return
	}

	c.HTML(http.StatusOK, name, gin.H{
		"config":     config,
		"categories": categories,
	})
}

func (a *AdminModule) settingsPage(c *gin.Context) {
	config, err := a.settings.Config()
	if err != nil {
		a.renderError(c, http.StatusInternalServerError, err)
		return
	}

	c.HTML(http.StatusOK, "admin_settings.html", gin.H{
		"config": config,
	})
}

func (a *AdminModule) announcementPage(c *gin.Context) {
	config, err := a.settings.Config()
	if err != nil {
		a.renderError(c, http.StatusInternalServerError, err)
		return
	}

	announcement, err := a.settings.Announcement()
	if err != nil {
		a.renderError(c, http.StatusInternalServerError, err)
		return
	}

	c.HTML(http.StatusOK, "admin_announcement.html", gin.H{
		"config":       config,
		"announcement": announcement,
	})
}

func (a *AdminModule) logsPage(c *gin.Context) {
	config, err := a.settings.Config()
	if err != nil {
		a.renderError(c, http.StatusInternalServerError, err)
		return
	}

	logs, err := a.settings.LoginLogs()
	if err != nil {
		a.renderError(c, http.StatusInternalServerError, err)
		return
	}

	c.HTML(http.StatusOK, "admin_logs.html", gin.H{
		"config": config,
		"logs":   logs,
	})
}
