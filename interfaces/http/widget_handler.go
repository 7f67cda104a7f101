package http

import (
	"net/http"

	"alfreds-toolbox/infrastructure/logger"
	"alfreds-toolbox/infrastructure/utils"
	"alfreds-toolbox/usecase"

	"github.com/gin-gonic/gin"
)

type IWidgetHandler interface {
	RenderSpotifyPodcast(ctx *gin.Context)
}

type WidgetHandler struct {
	secretKey string
	renderer  usecase.IWidgetRenderer
	settings  usecase.ISettingsUsecase
}

func NewWidgetHandler(secretKey string, renderer usecase.IWidgetRenderer, settings usecase.ISettingsUsecase) IWidgetHandler {
	return &WidgetHandler{secretKey: secretKey, renderer: renderer, settings: settings}
}

// RenderSpotifyPodcast returns the podcast widget fragment for the query's widget settings.
func (h *WidgetHandler) RenderSpotifyPodcast(ctx *gin.Context) {
	if !h.settings.IsWidgetActive(ctx.Request.Context(), usecase.SpotifyPodcastWidget.ID) {
		ctx.Status(http.StatusNotFound)
		return
	}
	settings := usecase.DefaultWidgetSettings()
	if err := ctx.ShouldBindQuery(&settings); err != nil {
		ctx.String(http.StatusBadRequest, err.Error())
		return
	}

	nonce := ""
	if settings.Pagination == "load_more" {
		var err error
		if nonce, err = utils.CreateNonce(usecase.LoadMoreNonceAction, h.secretKey); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Rendering load more button without nonce")
		}
	}
	html, err := h.renderer.Render(ctx.Request.Context(), settings, nonce)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Rendering podcast widget failed")
		ctx.Status(http.StatusInternalServerError)
		return
	}
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
