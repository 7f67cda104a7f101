package server

import (
	"time"

	"alfreds-toolbox/domain/model"
	httpHandler "alfreds-toolbox/interfaces/http"
	"alfreds-toolbox/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// AjaxPath is where the admin screens and widgets post their actions.
const AjaxPath = "/wp-admin/admin-ajax.php"

func InitiateRouter(
	secretKey string,
	allowOrigins []string,
	ajaxHandler httpHandler.IAjaxHandler,
	adminHandler httpHandler.IAdminHandler,
	widgetHandler httpHandler.IWidgetHandler,
	healthHandler httpHandler.IHealthHandler,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	} else {
		corsConfig.AllowOrigins = allowOrigins
	}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", healthHandler.Healthz)

	ajax := router.Group(AjaxPath)
	ajax.Use(middleware.Identify(secretKey))
	ajax.GET("", ajaxHandler.Handle)
	ajax.POST("", ajaxHandler.Handle)

	router.GET("/widgets/spotify_podcast", widgetHandler.RenderSpotifyPodcast)

	api := router.Group("api")
	api.GET("/nonce", middleware.Identify(secretKey), adminHandler.Nonce)

	admin := api.Group("")
	admin.Use(middleware.Auth(secretKey, model.CapabilityManageOptions))
	{
		admin.GET("/admin/notice", adminHandler.Notice)
		admin.GET("/widgets", adminHandler.Widgets)
		admin.GET("/settings", adminHandler.Settings)
		admin.GET("/license", adminHandler.License)
	}

	return router
}
