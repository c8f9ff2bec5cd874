package framework

import (
	"fmt"

	"go.uber.org/zap"
)

// Plugin extends an App with services and routes. Plugins are booted in
// registration order during App.Boot, after logging and translations.
type Plugin interface {
	Name() string
	Version() string
	Boot(app *App) error
	Routes(r *Router)
}

// Register adds a plugin to the application.
func (a *App) Register(p Plugin) {
	a.Plugins = append(a.Plugins, p)
}

func (a *App) bootPlugins() error {
	for _, p := range a.Plugins {
		a.Log.Info("booting plugin", zap.String("name", p.Name()), zap.String("version", p.Version()))
		if err := p.Boot(a); err != nil {
			return fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		p.Routes(a.Router)
	}
	return nil
}
