package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/otpauth/internal/pkg/goerror"
	"github.com/shandysiswandi/otpauth/internal/pkg/router"
)

type healthResponse struct {
	Database string `json:"database" example:"up"`
	Cache    string `json:"cache" example:"up"`
}

func (healthResponse) Message() string { return "Service healthy" }

// health reports whether the database and redis answer a ping.
//
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} router.successResponse{data=healthResponse} "Service healthy"
// @Failure 500 {object} router.errorResponse "Dependency down"
// @Router /api/health [get]
func (a *App) health(r *router.Request) (any, error) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.dbConn.Ping(ctx); err != nil {
		slog.WarnContext(ctx, "health check database ping failed", "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := a.cacheConn.Ping(ctx).Err(); err != nil {
		slog.WarnContext(ctx, "health check redis ping failed", "error", err)
		return nil, goerror.NewServer(err)
	}

	return healthResponse{Database: "up", Cache: "up"}, nil
}
