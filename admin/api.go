package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"linkvault/catalog"
	"linkvault/common"
	"linkvault/query"
	"linkvault/settings"
)

func (a *AdminModule) listResources(c *gin.Context) {
	page := query.IntParam(c.Query("page"), 1)
	limit := query.IntParam(c.Query("limit"), query.DefaultAdminLimit)

	result, err := a.catalog.AdminListResources(page, limit, c.Query("search"))
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (a *AdminModule) createResource(c *gin.Context) {
	var req catalog.ResourceInput
	if err := common.BindJSON(c, &req); err != nil {
		common.AbortWithError(c, err)
		return
	}

	resource, err := a.catalog.CreateResource(req)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "resource": resource})
}

func (a *AdminModule) updateResource(c *gin.Context) {
	if _, err := a.catalog.Resource(c.Param("id")); err != nil {
		common.AbortWithError(c, err)
		return
	}

	var req catalog.ResourceInput
	if err := common.BindJSON(c, &req); err != nil {
		common.AbortWithError(c, err)
		return
	}

	resource, err := a.catalog.UpdateResource(c.Param("id"), req)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "resource": resource})
}

func (a *AdminModule) deleteResource(c *gin.Context) {
	if err := a.catalog.DeleteResource(c.Param("id")); err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (a *AdminModule) batchDeleteResources(c *gin.Context) {
	var req catalog.BatchDeleteInput
	if err := common.BindJSON(c, &req); err != nil {
		common.AbortWithError(c, err)
		return
	}

	deleted, err := a.catalog.BatchDelete(req.IDs)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "deleted_count": deleted})
}

func (a *AdminModule) listCategories(c *gin.Context) {
	categories, err := a.catalog.ListCategories()
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (a *AdminModule) createCategory(c *gin.Context) {
	var req catalog.CategoryInput
	if err := common.BindJSON(c, &req); err != nil {
		common.AbortWithError(c, err)
		return
	}

	category, err := a.catalog.CreateCategory(req)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "category": category})
}

func (a *AdminModule) updateCategory(c *gin.Context) {
	if _, err := a.catalog.Category(c.Param("id")); err != nil {
		common.AbortWithError(c, err)
		return
	}

	var req catalog.CategoryInput
	if err := common.BindJSON(c, &req); err != nil {
		common.AbortWithError(c, err)
		return
	}

	category, err := a.catalog.UpdateCategory(c.Param("id"), req)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "category": category})
}

func (a *AdminModule) deleteCategory(c *gin.Context) {
	if err := a.catalog.DeleteCategory(c.Param("id")); err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (a *AdminModule) changePassword(c *gin.Context) {
	var req settings.PasswordInput
	if err := common.BindJSON(c, &req); err != nil {
		common.AbortWithError(c, err)
		return
	}

	if err := a.settings.ChangePassword(req); err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (a *AdminModule) updateSettings(c *gin.Context) {
	var req settings.SiteInput
	if err := common.BindJSON(c, &req); err != nil {
		common.AbortWithError(c, err)
		return
	}

	site, err := a.settings.UpdateSite(req)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "config": site})
}

func (a *AdminModule) getAnnouncement(c *gin.Context) {
	announcement, err := a.settings.Announcement()
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, announcement)
}

func (a *AdminModule) updateAnnouncement(c *gin.Context) {
	var req settings.AnnouncementInput
	if err := common.BindJSON(c, &req); err != nil {
		common.AbortWithError(c, err)
		return
	}

	announcement, err := a.settings.UpdateAnnouncement(req)
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "announcement": announcement})
}

func (a *AdminModule) stats(c *gin.Context) {
	stats, err := a.catalog.Stats()
	if err != nil {
		common.AbortWithError(c, err)
		return
	}

	resp := gin.H{
		"stats":             stats,
		"analytics_enabled": a.analytics.Enabled(),
	}
	if a.analytics.Enabled() {
		resp["clicks_by_day"] = a.analytics.GetClicksByDay(15)
		resp["top_clicked"] = a.analytics.GetTopResources(30, 10)
	}

	c.JSON(http.StatusOK, resp)
}
