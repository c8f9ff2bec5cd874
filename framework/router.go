package framework

import (
	"fmt"
	"net/http"
	"reflect"
	"runtime"
	"strings"

	"github.com/go-chi/chi/v5"
)

// IDParam is the URL parameter resource routes use for the record key.
const IDParam = "id"

// RouteInfo stores metadata about a registered route.
type RouteInfo struct {
	Method  string
	Path    string
	Handler string
}

// Router wraps chi.Mux with Rails-like conventions.
type Router struct {
	Mux    *chi.Mux
	app    *App
	routes []RouteInfo
}

// NewRouter creates a new Router.
func NewRouter() *Router {
	return &Router{Mux: chi.NewRouter()}
}

// Use adds middleware to the router. chi requires it before the first route,
// and New mounts /metrics, so applications pass middleware to New instead.
func (r *Router) Use(mw func(http.Handler) http.Handler) {
	r.Mux.Use(mw)
}

func (r *Router) handle(method, path string, action Action, name string) {
	if name == "" {
		name = actionName(action)
	}
	r.routes = append(r.routes, RouteInfo{Method: method, Path: path, Handler: name})
	r.Mux.Method(method, path, ActionHandler(action, r.app))
}

// GET registers a GET route.
func (r *Router) GET(path string, action Action) { r.handle(http.MethodGet, path, action, "") }

// POST registers a POST route.
func (r *Router) POST(path string, action Action) { r.handle(http.MethodPost, path, action, "") }

// PUT registers a PUT route.
func (r *Router) PUT(path string, action Action) { r.handle(http.MethodPut, path, action, "") }

// PATCH registers a PATCH route.
func (r *Router) PATCH(path string, action Action) { r.handle(http.MethodPatch, path, action, "") }

// DELETE registers a DELETE route.
func (r *Router) DELETE(path string, action Action) { r.handle(http.MethodDelete, path, action, "") }

// Resources registers RESTful routes for a controller. Only the actions the
// controller implements are routed; member routes use the {id} parameter.
func (r *Router) Resources(name string, controller any) {
	prefix := "/" + strings.Trim(name, "/")
	member := prefix + "/{" + IDParam + "}"
	ctrl := reflect.Indirect(reflect.ValueOf(controller)).Type().Name()

	type route struct {
		method, path, action string
	}
	routes := []route{
		{http.MethodGet, prefix, "Index"},
		{http.MethodPost, prefix, "Create"},
		{http.MethodGet, member, "Show"},
		{http.MethodPut, member, "Update"},
		{http.MethodPatch, member, "Update"},
		{http.MethodDelete, member, "Destroy"},
	}
	for _, rt := range routes {
		m := reflect.ValueOf(controller).MethodByName(rt.action)
		if !m.IsValid() {
			continue
		}
		action, ok := m.Interface().(func(*Context) error)
		if !ok {
			continue
		}
		r.handle(rt.method, rt.path, action, ctrl+"#"+rt.action)
	}
}

// Inspect returns all registered routes, one per line.
func (r *Router) Inspect() string {
	var sb strings.Builder
	for _, route := range r.routes {
		fmt.Fprintf(&sb, "%-7s %-30s %s\n", route.Method, route.Path, route.Handler)
	}
	fmt.Fprintf(&sb, "Total: %d routes\n", len(r.routes))
	return sb.String()
}

// GetRoutes returns all registered route info.
func (r *Router) GetRoutes() []RouteInfo {
	return append([]RouteInfo(nil), r.routes...)
}

func actionName(action Action) string {
	fn := runtime.FuncForPC(reflect.ValueOf(action).Pointer())
	if fn == nil {
		return "Action"
	}
	name := fn.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return strings.TrimSuffix(name, "-fm")
}
