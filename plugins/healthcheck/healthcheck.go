package healthcheck

import (
	"context"
	"net/http"
	"time"

	"github.com/shaurya/recordkit/framework"
)

var bootTime = time.Now()

// Plugin serves liveness and readiness endpoints for a recordkit app.
type Plugin struct {
	app *framework.App

	// PingTimeout bounds the database ping; one second when zero.
	PingTimeout time.Duration
}

func (p *Plugin) Name() string    { return "healthcheck" }
func (p *Plugin) Version() string { return "1.0.0" }

func (p *Plugin) Boot(app *framework.App) error {
	p.app = app
	return nil
}

func (p *Plugin) Routes(r *framework.Router) {
	r.GET("/health", p.healthHandler)
	r.GET("/health/ready", p.readyHandler)
}

func (p *Plugin) healthHandler(ctx *framework.Context) error {
	data := framework.H{
		"status": "ok",
		"db":     p.dbStatus(ctx.Request.Context()),
		"uptime": time.Since(bootTime).Round(time.Second).String(),
	}
	if p.app != nil {
		data["locales"] = p.app.Translator.AvailableLocales()
	}
	return ctx.JSON(http.StatusOK, data)
}

func (p *Plugin) readyHandler(ctx *framework.Context) error {
	db := p.dbStatus(ctx.Request.Context())
	if db != "ok" {
		return ctx.JSON(http.StatusServiceUnavailable, framework.H{
			"status": "not ready",
			"checks": framework.H{"db": db},
		})
	}
	return ctx.JSON(http.StatusOK, framework.H{
		"status": "ready",
		"checks": framework.H{"db": db},
	})
}

func (p *Plugin) dbStatus(ctx context.Context) string {
	if p.app == nil || p.app.DB == nil {
		return "not configured"
	}
	sqlDB, err := p.app.DB.DB()
	if err != nil {
		return "error: " + err.Error()
	}

	timeout := p.PingTimeout
	if timeout == 0 {
		timeout = time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
