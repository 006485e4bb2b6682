package middleware

import (
	"net/http"
	"strings"

	"github.com/2beens/workoutfines/internal/telemetry/tracing"
	"github.com/2beens/workoutfines/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const (
	AdminTokenHeader = "X-Admin-Token"
	adminPathPrefix  = "/admin/"
)

// AdminAuthMiddlewareHandler guards the administrative routes with a token
// that is compared against a bcrypt hash. All other paths pass through.
type AdminAuthMiddlewareHandler struct {
	adminTokenHash string
	checkHash      func(token, hash string) bool
}

func NewAdminAuthMiddlewareHandler(adminTokenHash string) *AdminAuthMiddlewareHandler {
	return &AdminAuthMiddlewareHandler{
		adminTokenHash: adminTokenHash,
		checkHash:      pkg.CheckPasswordHash,
	}
}

func (h *AdminAuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasPrefix(r.URL.Path, adminPathPrefix) {
				next.ServeHTTP(w, r)
				return
			}

			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.admin-auth")
			defer span.End()

			if h.adminTokenHash == "" {
				log.Warnf("[admin auth] no admin token configured, rejecting %s", r.URL.Path)
				pkg.WriteJSONError(w, http.StatusUnauthorized, "unauthorized", "no can do")
				span.SetStatus(codes.Error, "admin-disabled")
				return
			}

			authToken := r.Header.Get(AdminTokenHeader)
			if authToken == "" {
				log.Tracef("[missing token] [admin auth] unauthorized => %s", r.URL.Path)
				pkg.WriteJSONError(w, http.StatusUnauthorized, "unauthorized", "no can do")
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			if !h.checkHash(authToken, h.adminTokenHash) {
				log.Warnf("[invalid token] [admin auth] unauthorized => %s", r.URL.Path)
				pkg.WriteJSONError(w, http.StatusUnauthorized, "unauthorized", "no can do")
				span.SetStatus(codes.Error, "invalid-auth-token")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}
