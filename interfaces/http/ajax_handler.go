package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"alfreds-toolbox/domain/dto"
	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/infrastructure/logger"
	"alfreds-toolbox/infrastructure/utils"
	"alfreds-toolbox/interfaces/middleware"
	"alfreds-toolbox/usecase"

	"github.com/gin-gonic/gin"
)

// Nonce actions. Every admin screen action shares AdminNonceAction except the
// Spotify cache button, which carries its own nonce.
const (
	AdminNonceAction        = "alfreds_toolbox_nonce"
	ClearSpotifyNonceAction = "clear_spotify_cache"
)

const msgInsufficientPermissions = "Insufficient permissions"

type IAjaxHandler interface {
	Handle(ctx *gin.Context)
}

type ajaxAction struct {
	nonceAction string
	// public actions skip the capability check.
	public bool
	run    func(h *AjaxHandler, ctx *gin.Context)
}

type AjaxHandler struct {
	secretKey  string
	spotify    usecase.ISpotifyUsecase
	analytics  usecase.IAnalyticsUsecase
	settings   usecase.ISettingsUsecase
	license    usecase.ILicenseUsecase
	newsletter usecase.INewsletterUsecase
	widgets    usecase.IWidgetRenderer
	actions    map[string]ajaxAction
}

func NewAjaxHandler(
	secretKey string,
	spotify usecase.ISpotifyUsecase,
	analytics usecase.IAnalyticsUsecase,
	settings usecase.ISettingsUsecase,
	license usecase.ILicenseUsecase,
	newsletter usecase.INewsletterUsecase,
	widgets usecase.IWidgetRenderer,
) IAjaxHandler {
	return &AjaxHandler{
		secretKey:  secretKey,
		spotify:    spotify,
		analytics:  analytics,
		settings:   settings,
		license:    license,
		newsletter: newsletter,
		widgets:    widgets,
		actions: map[string]ajaxAction{
			"clear_spotify_cache":           {nonceAction: ClearSpotifyNonceAction, run: (*AjaxHandler).clearSpotifyCache},
			"clear_analytics_cache":         {nonceAction: AdminNonceAction, run: (*AjaxHandler).clearAnalyticsCache},
			"get_analytics_data":            {nonceAction: AdminNonceAction, run: (*AjaxHandler).getAnalyticsData},
			"validate_against_ga":           {nonceAction: AdminNonceAction, run: (*AjaxHandler).validateAgainstGA},
			"save_alfreds_toolbox_settings": {nonceAction: AdminNonceAction, run: (*AjaxHandler).saveSettings},
			"load_more_episodes":            {nonceAction: usecase.LoadMoreNonceAction, public: true, run: (*AjaxHandler).loadMoreEpisodes},
			"newsletter_signup":             {nonceAction: AdminNonceAction, run: (*AjaxHandler).newsletterSignup},
			"validate_license":              {nonceAction: AdminNonceAction, run: (*AjaxHandler).validateLicense},
			"validate_property":             {nonceAction: AdminNonceAction, run: (*AjaxHandler).validateProperty},
		},
	}
}

// Handle dispatches admin-ajax.php requests by their action parameter.
func (h *AjaxHandler) Handle(ctx *gin.Context) {
	name := param(ctx, "action")
	action, ok := h.actions[name]
	if !ok {
		ctx.JSON(http.StatusBadRequest, dto.AjaxResponse{Success: false, Data: dto.ErrorData{Error: "unknown_action"}})
		return
	}

	if err := utils.VerifyNonce(param(ctx, "nonce"), action.nonceAction, h.secretKey); err != nil {
		logger.GetLogger().WithField("error", err).WithField("action", name).Warn("Rejected AJAX request")
		ctx.JSON(http.StatusForbidden, dto.AjaxResponse{Success: false, Data: dto.ErrorData{Error: "invalid_nonce"}})
		return
	}
	if !action.public {
		claims, ok := middleware.Claims(ctx)
		if !ok || !claims.Can(model.CapabilityManageOptions) {
			ctx.JSON(http.StatusForbidden, dto.AjaxResponse{Success: false, Data: msgInsufficientPermissions})
			return
		}
	}

	action.run(h, ctx)
}

func (h *AjaxHandler) requestContext(ctx *gin.Context) context.Context {
	return usecase.WithInteractive(ctx.Request.Context())
}

func (h *AjaxHandler) clearSpotifyCache(ctx *gin.Context) {
	removed, err := h.spotify.ClearCache(h.requestContext(ctx), param(ctx, "show_id"))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.AjaxResponse{Success: false, Data: dto.ErrorData{Error: "cache_error", Message: err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, dto.AjaxResponse{Success: true, Data: gin.H{"removed": removed}})
}

func (h *AjaxHandler) clearAnalyticsCache(ctx *gin.Context) {
	removed, err := h.analytics.ClearCache(h.requestContext(ctx))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.AjaxResponse{Success: false, Data: dto.ErrorData{Error: "cache_error", Message: err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, dto.AjaxResponse{Success: true, Data: gin.H{"removed": removed}})
}

func (h *AjaxHandler) getAnalyticsData(ctx *gin.Context) {
	fromCacheOnly, _ := strconv.ParseBool(param(ctx, "from_cache_only"))
	report, err := h.analytics.GetAnalyticsData(h.requestContext(ctx), param(ctx, "date_range"), fromCacheOnly)
	if err != nil {
		ctx.JSON(http.StatusOK, dto.AjaxResponse{Success: false, Data: analyticsFailure(err)})
		return
	}
	ctx.JSON(http.StatusOK, dto.AjaxResponse{Success: true, Data: report})
}

func (h *AjaxHandler) validateAgainstGA(ctx *gin.Context) {
	validation, err := h.analytics.ValidateAgainstGA(h.requestContext(ctx), param(ctx, "date_range"))
	if err != nil {
		ctx.JSON(http.StatusOK, dto.AjaxResponse{Success: false, Data: analyticsFailure(err)})
		return
	}
	ctx.JSON(http.StatusOK, dto.AjaxResponse{Success: true, Data: validation})
}

func analyticsFailure(err error) interface{} {
	var analyticsErr *model.AnalyticsError
	if errors.As(err, &analyticsErr) {
		return analyticsErr
	}
	return dto.ErrorData{Error: string(model.AnalyticsAPIError), Message: err.Error()}
}

func (h *AjaxHandler) saveSettings(ctx *gin.Context) {
	fields := ctx.PostFormMap("settings")
	if len(fields) == 0 {
		fields = ctx.QueryMap("settings")
	}
	saved, err := h.settings.SaveSettings(h.requestContext(ctx), fields)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrInvalidInput) {
			status = http.StatusBadRequest
		}
		ctx.JSON(status, dto.AjaxResponse{Success: false, Data: dto.ErrorData{Error: "invalid_settings", Message: err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, dto.AjaxResponse{Success: true, Data: gin.H{"saved": saved}})
}

func (h *AjaxHandler) loadMoreEpisodes(ctx *gin.Context) {
	settings := usecase.DefaultWidgetSettings()
	if err := ctx.ShouldBind(&settings); err != nil {
		logger.GetLogger().WithField("error", err).Debug("Using default widget settings for load more")
	}
	showID := param(ctx, "show_id")
	offset, _ := strconv.Atoi(param(ctx, "offset"))

	episodes, err := h.spotify.GetShowEpisodes(h.requestContext(ctx), showID, usecase.LoadMorePageSize, offset)
	if err != nil {
		ctx.JSON(http.StatusOK, dto.AjaxResponse{Success: false})
		return
	}
	html, err := h.widgets.RenderEpisodes(episodes, settings)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Rendering episodes failed")
		ctx.JSON(http.StatusInternalServerError, dto.AjaxResponse{Success: false})
		return
	}
	ctx.JSON(http.StatusOK, dto.AjaxResponse{Success: true, Data: dto.LoadMoreEpisodesResponse{
		Episodes: episodes,
		HTML:     html,
		Offset:   max(offset, 0) + len(episodes),
	}})
}

func (h *AjaxHandler) newsletterSignup(ctx *gin.Context) {
	var signup model.NewsletterSignup
	if ctx.ContentType() == gin.MIMEJSON {
		if err := ctx.ShouldBindJSON(&signup); err != nil {
			ctx.JSON(http.StatusBadRequest, dto.AjaxResponse{Success: false, Data: dto.ErrorData{Error: "invalid_request", Message: err.Error()}})
			return
		}
	} else {
		signup.Email = param(ctx, "email")
		signup.PrivacyAccepted, _ = strconv.ParseBool(param(ctx, "privacy_accepted"))
		signup.Domain = param(ctx, "domain")
		signup.Language = param(ctx, "language")
	}

	if err := h.newsletter.Subscribe(h.requestContext(ctx), signup); err != nil {
		status := http.StatusBadGateway
		switch {
		case errors.Is(err, model.ErrInvalidInput):
			status = http.StatusBadRequest
		case errors.Is(err, model.ErrConfigurationMissing):
			status = http.StatusServiceUnavailable
		}
		ctx.JSON(status, dto.AjaxResponse{Success: false, Data: dto.ErrorData{Error: "newsletter_failed", Message: err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, dto.AjaxResponse{Success: true})
}

func (h *AjaxHandler) validateLicense(ctx *gin.Context) {
	var key *string
	if raw, ok := lookupParam(ctx, "license_key"); ok {
		key = &raw
	}
	result := h.license.ValidateLicense(h.requestContext(ctx), key)
	ctx.JSON(http.StatusOK, dto.AjaxResponse{Success: result.Success, Data: result})
}

func (h *AjaxHandler) validateProperty(ctx *gin.Context) {
	status := h.analytics.ValidateProperty(h.requestContext(ctx))
	ctx.JSON(http.StatusOK, dto.AjaxResponse{Success: status == model.PropertySuccess, Data: gin.H{"status": status}})
}

func lookupParam(ctx *gin.Context, name string) (string, bool) {
	if v, ok := ctx.GetPostForm(name); ok {
		return v, true
	}
	return ctx.GetQuery(name)
}

func param(ctx *gin.Context, name string) string {
	v, _ := lookupParam(ctx, name)
	return v
}
