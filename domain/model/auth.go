package model

import "github.com/golang-jwt/jwt"

// CapabilityManageOptions guards every admin action.
const CapabilityManageOptions = "manage_options"

// AdminClaims is the bearer token of a dashboard user.
type AdminClaims struct {
	UserName     string   `json:"user_name"`
	Capabilities []string `json:"capabilities"`
	jwt.StandardClaims
}

func (c AdminClaims) Can(capability string) bool {
	for _, have := range c.Capabilities {
		if have == capability {
			return true
		}
	}
	return false
}

// NonceClaims binds a short-lived token to one AJAX action.
type NonceClaims struct {
	Action string `json:"action"`
	jwt.StandardClaims
}
