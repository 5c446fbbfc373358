package testutil

import (
	"net/http"

	"asnode/internal/platform/middleware"
)

// WithAdminToken sets the management token header.
func WithAdminToken(req *http.Request, token string) *http.Request {
	req.Header.Set(middleware.AdminTokenHeader, token)
	return req
}
