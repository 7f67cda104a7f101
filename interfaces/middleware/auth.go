package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"alfreds-toolbox/domain/dto"
	"alfreds-toolbox/domain/model"
	"alfreds-toolbox/infrastructure/logger"
	"alfreds-toolbox/infrastructure/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// ClaimsKey is the gin context key holding *model.AdminClaims.
const ClaimsKey = "admin_claims"

// Auth rejects requests without a valid bearer token carrying capability.
func Auth(secretKey, capability string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res := dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"}
		raw, ok := bearer(ctx)
		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		claims, err := utils.ParseAdminToken(raw, secretKey)
		if err != nil {
			res.ResponseMessage = describe(err)
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}
		if capability != "" && !claims.Can(capability) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, dto.Res{ResponseCode: "403", ResponseMessage: "Insufficient permissions"})
			return
		}
		ctx.Set(ClaimsKey, claims)
		ctx.Next()
	}
}

// Identify attaches the admin claims when a valid bearer token is present and
// lets anonymous requests through.
func Identify(secretKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if raw, ok := bearer(ctx); ok {
			claims, err := utils.ParseAdminToken(raw, secretKey)
			if err == nil {
				ctx.Set(ClaimsKey, claims)
			} else {
				logger.GetLogger().WithField("error", err).Debug("Ignoring invalid bearer token")
			}
		}
		ctx.Next()
	}
}

// Claims returns the authenticated admin, if any.
func Claims(ctx *gin.Context) (*model.AdminClaims, bool) {
	v, ok := ctx.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*model.AdminClaims)
	return claims, ok
}

func bearer(ctx *gin.Context) (string, bool) {
	authorization := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(authorization, "Bearer ") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authorization, "Bearer "))
	return raw, raw != ""
}

func describe(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		if ve.Errors&jwt.ValidationErrorMalformed != 0 {
			return "That's not even a token"
		} else if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			// Token is either expired or not active yet
			return "Timing is everything"
		}
	}
	return fmt.Sprintf("Couldn't handle this token:%v", err)
}
