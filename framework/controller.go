package framework

import (
	"errors"
	"net/http"

	"github.com/shaurya/recordkit/framework/httperr"
	"go.uber.org/zap"
)

// Controller is the base type for all controllers. Embed it in your controllers.
type Controller struct{}

// Action is a controller action handler signature.
type Action func(ctx *Context) error

// ActionHandler converts an Action into an http.HandlerFunc.
// It creates a Context, calls the action, and handles errors with correct HTTP status codes.
func ActionHandler(action Action, app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := NewContext(w, r, app)

		defer func() {
			if rec := recover(); rec != nil {
				FromContext(r.Context()).Error("panic in action", zap.Any("panic", rec), zap.Stack("stack"))
				if !ctx.written {
					ctx.JSON(http.StatusInternalServerError, H{"error": "Internal Server Error"})
				}
			}
		}()

		if err := action(ctx); err != nil {
			handleActionError(ctx, err)
		}
	}
}

// handleActionError maps errors to the correct HTTP status codes.
func handleActionError(ctx *Context, err error) {
	if ctx.written {
		return
	}

	var httpErr *httperr.HTTPError
	if errors.As(err, &httpErr) {
		response := H{"error": httpErr.Message}
		if httpErr.Errors != nil {
			response = H{"errors": httpErr.Errors}
		}
		ctx.JSON(httpErr.Code, response)
		return
	}

	FromContext(ctx.Request.Context()).Error("unhandled controller error", zap.Error(err))
	ctx.JSON(http.StatusInternalServerError, H{"error": "Internal Server Error"})
}

// Wrap is a convenience alias for ActionHandler without an app reference.
func Wrap(action Action) http.HandlerFunc {
	return ActionHandler(action, nil)
}
