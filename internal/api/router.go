package api

import (
	"domain-locker/internal/conf"

	"github.com/gin-gonic/gin"
)

// Handlers groups everything the router mounts. A nil PgExec leaves
// /api/pg-executer unmounted.
type Handlers struct {
	Domains       *DomainHandler
	Tags          *TagHandler
	Notifications *NotificationHandler
	Preferences   *PreferenceHandler
	PgExec        *PgExecHandler
	Jobs          *JobHandler
	Tools         *ToolHandler
	Health        *HealthHandler
	Metrics       *Metrics
}

func NewRouter(cfg *conf.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	if h.Metrics != nil {
		r.Use(h.Metrics.Middleware())
		r.GET("/metrics", h.Metrics.Handler())
	}

	// Front end and API are served from different origins
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	r.GET("/health", h.Health.Health)
	r.GET("/ready", h.Health.Ready)

	api := r.Group("/api")
	api.Use(AuthMiddleware(cfg))
	{
		api.GET("/domains", h.Domains.GetDomains)
		api.POST("/domains", h.Domains.CreateDomain)
		api.GET("/domains/export", h.Domains.ExportDomains)
		api.GET("/domains/name/:name", h.Domains.GetDomainByName)
		api.POST("/domains/import/cloudflare", h.Domains.ImportCloudflare)
		api.GET("/domains/:id", h.Domains.GetDomain)
		api.PUT("/domains/:id", h.Domains.UpdateDomain)
		api.DELETE("/domains/:id", h.Domains.DeleteDomain)
		api.GET("/domains/:id/history", h.Domains.GetHistory)
		api.GET("/domain-info", h.Domains.GetDomainInfo)
		api.GET("/registrars", h.Domains.GetRegistrars)
		api.GET("/stats", h.Domains.GetStats)

		api.GET("/tags", h.Tags.ListTags)
		api.POST("/tags", h.Tags.CreateTag)
		api.GET("/tags/name/:name", h.Tags.GetTag)
		api.PUT("/tags/:id", h.Tags.UpdateTag)
		api.DELETE("/tags/:id", h.Tags.DeleteTag)
		api.PUT("/tags/:id/domains", h.Tags.SetTagDomains)

		api.GET("/notifications", h.Notifications.ListNotifications)
		api.GET("/notifications/unread-count", h.Notifications.UnreadCount)
		api.POST("/notifications/read-all", h.Notifications.MarkAllRead)
		api.PATCH("/notifications/:id", h.Notifications.SetRead)
		api.DELETE("/notifications/:id", h.Notifications.DeleteNotification)

		api.GET("/preferences", h.Preferences.GetPreferences)
		api.PUT("/preferences", h.Preferences.SavePreferences)
		api.POST("/preferences/test", h.Preferences.TestNotification)

		api.POST("/jobs/:name", h.Jobs.TriggerJob)
		api.POST("/tools/decode-cert", h.Tools.DecodeCertificate)

		if h.PgExec != nil {
			api.POST("/pg-executer", h.PgExec.Execute)
		}
	}

	return r
}
