package http

import (
	"net/http"

	"alfreds-toolbox/domain/dto"
	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/infrastructure/logger"
	"alfreds-toolbox/infrastructure/utils"
	"alfreds-toolbox/interfaces/middleware"
	"alfreds-toolbox/usecase"

	"github.com/gin-gonic/gin"
)

type IAdminHandler interface {
	Nonce(ctx *gin.Context)
	Notice(ctx *gin.Context)
	Widgets(ctx *gin.Context)
	Settings(ctx *gin.Context)
	License(ctx *gin.Context)
}

type AdminHandler struct {
	secretKey string
	settings  usecase.ISettingsUsecase
	license   usecase.ILicenseUsecase
	analytics usecase.IAnalyticsUsecase
}

func NewAdminHandler(secretKey string, settings usecase.ISettingsUsecase, license usecase.ILicenseUsecase, analytics usecase.IAnalyticsUsecase) IAdminHandler {
	return &AdminHandler{secretKey: secretKey, settings: settings, license: license, analytics: analytics}
}

// Nonce issues a nonce for ?action=. Only the public widget action is
// available without an admin token.
func (h *AdminHandler) Nonce(ctx *gin.Context) {
	action := ctx.DefaultQuery("action", AdminNonceAction)
	public := action == usecase.LoadMoreNonceAction
	if !public {
		claims, ok := middleware.Claims(ctx)
		if !ok || !claims.Can(model.CapabilityManageOptions) {
			ctx.JSON(http.StatusForbidden, dto.Res{ResponseCode: "403", ResponseMessage: msgInsufficientPermissions})
			return
		}
	}

	nonce, err := utils.CreateNonce(action, h.secretKey)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error creating nonce")
		ctx.JSON(http.StatusInternalServerError, dto.Res{ResponseCode: "500", ResponseMessage: "Nonce unavailable"})
		return
	}
	ctx.JSON(http.StatusOK, dto.NonceResponse{Action: action, Nonce: nonce, ExpiresIn: int(utils.NonceLifetime.Seconds())})
}

// Notice returns and clears the last license API failure.
func (h *AdminHandler) Notice(ctx *gin.Context) {
	notice, ok := h.license.PopNotice(ctx.Request.Context())
	if !ok {
		ctx.JSON(http.StatusOK, dto.AjaxResponse{Success: false})
		return
	}
	ctx.JSON(http.StatusOK, dto.AjaxResponse{Success: true, Data: notice})
}

func (h *AdminHandler) Widgets(ctx *gin.Context) {
	available, active := h.settings.Widgets(ctx.Request.Context())
	ctx.JSON(http.StatusOK, dto.AjaxResponse{Success: true, Data: gin.H{"available": available, "active": active}})
}

// Settings serves the settings page data and warms the analytics cache in the background.
func (h *AdminHandler) Settings(ctx *gin.Context) {
	settings, err := h.settings.GetSettings(ctx.Request.Context())
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error loading settings")
		ctx.JSON(http.StatusInternalServerError, dto.AjaxResponse{Success: false, Data: dto.ErrorData{Error: "settings_unavailable"}})
		return
	}
	h.analytics.MaybePreloadRanges(ctx.Request.Context())
	ctx.JSON(http.StatusOK, dto.AjaxResponse{Success: true, Data: settings})
}

func (h *AdminHandler) License(ctx *gin.Context) {
	info, err := h.license.GetLicenseInfo(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusOK, dto.AjaxResponse{Success: false, Data: dto.ErrorData{Error: "license_unavailable", Message: err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, dto.AjaxResponse{Success: true, Data: info})
}
