package model

import "time"

// Token defaults
const (
	DefaultTokenMaxAge = 15 * 24 * time.Hour
	AuthCookieName     = "jwt"
)

// Token errors
var (
	ErrMissingToken = NewError(ErrAuthentication, "unauthorized: no token provided")
	ErrTokenInvalid = NewError(ErrAuthentication, "unauthorized: invalid token")
	ErrTokenExpired = NewError(ErrAuthentication, "unauthorized: token expired")
	ErrTokenRevoked = NewError(ErrAuthentication, "unauthorized: token revoked")
)
