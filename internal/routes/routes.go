package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/estatelink/backend/internal/handlers"
	"github.com/estatelink/backend/internal/middleware"
	"github.com/estatelink/backend/internal/models"
)

// Handlers bundles everything RegisterRoutes wires up.
type Handlers struct {
	Ambassadors *handlers.AmbassadorHandler
	Leads       *handlers.LeadHandler
	Developers  *handlers.DeveloperHandler
	Deals       *handlers.DealHandler
	Referrals   *handlers.ReferralHandler
	Dashboard   *handlers.DashboardHandler
	Users       *handlers.UserHandler
	Exports     *handlers.ExportHandler
	Files       *handlers.FileHandler
	Portal      *handlers.PortalHandler
}

// RegisterRoutes configures all API routes
func RegisterRoutes(router *gin.Engine, db *gorm.DB, h Handlers, rateLimiter *middleware.RateLimiter, publicAPIKey string) {
	// Public referral endpoints, API-key guarded and rate limited
	publicGroup := router.Group("/api/referral")
	publicGroup.Use(rateLimiter.IPRateLimiterMiddleware(), middleware.APIKeyMiddleware(publicAPIKey))
	{
		publicGroup.GET("/:code", h.Referrals.Lookup)
		publicGroup.POST("/submit", h.Referrals.Submit)
	}

	authenticated := router.Group("/api")
	authenticated.Use(middleware.AuthMiddleware(db))

	staff := authenticated.Group("")
	staff.Use(middleware.RequireRole(models.RoleAdmin, models.RoleAgent))
	{
		staff.GET("/ambassadors", h.Ambassadors.List)
		staff.POST("/ambassadors", h.Ambassadors.Create)
		staff.GET("/ambassadors/:id", h.Ambassadors.Get)
		staff.DELETE("/ambassadors/:id", h.Ambassadors.Delete)

		staff.GET("/leads", h.Leads.List)
		staff.POST("/leads", h.Leads.Create)
		staff.GET("/leads/:id", h.Leads.Get)
		staff.DELETE("/leads/:id", h.Leads.Delete)
		staff.PUT("/leads/:id/status", h.Leads.UpdateStatus)
		staff.PUT("/leads/:id/deal-type", h.Leads.UpdateDealType)
		staff.PUT("/leads/:id/ambassador", h.Leads.AssignAmbassador)
		staff.POST("/leads/:id/convert", h.Leads.Convert)
		staff.GET("/leads/:id/notes", h.Leads.ListNotes)
		staff.POST("/leads/:id/notes", h.Leads.AddNote)
		staff.GET("/leads/:id/tasks", h.Leads.ListTasks)
		staff.POST("/leads/:id/tasks", h.Leads.CreateTask)
		staff.PUT("/tasks/:task_id/toggle", h.Leads.ToggleTask)

		staff.GET("/leads/:id/suggestions", h.Deals.Suggestions)
		staff.POST("/leads/:id/match", h.Deals.Match)
		staff.GET("/deals/:id", h.Deals.Get)
		staff.PUT("/deals/:id/stage", h.Deals.UpdateStage)

		staff.GET("/developers", h.Developers.List)
		staff.POST("/developers", h.Developers.Create)
		staff.GET("/developers/:id", h.Developers.Get)
		staff.DELETE("/developers/:id", h.Developers.Delete)

		staff.GET("/dashboard", h.Dashboard.Dashboard)
		staff.GET("/directory/ambassadors", h.Dashboard.AmbassadorDirectory)
		staff.GET("/directory/developers", h.Dashboard.DeveloperDirectory)

		staff.GET("/export/leads", h.Exports.Leads)
		staff.GET("/export/ambassadors", h.Exports.Ambassadors)
		staff.GET("/export/developers", h.Exports.Developers)
	}

	adminGroup := authenticated.Group("/admin")
	adminGroup.Use(middleware.RequireRole(models.RoleAdmin))
	{
		adminGroup.GET("/users", h.Users.List)
		adminGroup.POST("/users", h.Users.Invite)
		adminGroup.PUT("/users/:id/role", h.Users.UpdateRole)
		adminGroup.PUT("/users/:id/active", h.Users.ToggleActive)
		adminGroup.PUT("/users/:id/password", h.Users.ResetPassword)

		adminGroup.POST("/files/:owner_type/:id", h.Files.Upload)
		adminGroup.GET("/files/:owner_type/:id", h.Files.List)
	}

	portalGroup := authenticated.Group("/portal")
	portalGroup.Use(middleware.RequireRole(models.RoleAmbassador))
	{
		portalGroup.GET("/me", h.Portal.Me)
		portalGroup.GET("/leads", h.Portal.MyLeads)
		portalGroup.GET("/deals", h.Portal.MyDeals)
	}
}
