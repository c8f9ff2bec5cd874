package framework

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/shaurya/recordkit/framework/httperr"
	"github.com/shaurya/recordkit/framework/i18n"
	"github.com/shaurya/recordkit/orm"
)

// H is a shorthand for map[string]any, used for JSON responses.
type H map[string]any

// HTTPError represents a typed error with an HTTP status code.
type HTTPError = httperr.HTTPError

// Context wraps http.Request and http.ResponseWriter, providing convenience methods.
type Context struct {
	Response   http.ResponseWriter
	Request    *http.Request
	app        *App
	statusCode int
	written    bool
}

// NewContext creates a new Context for a request.
func NewContext(w http.ResponseWriter, r *http.Request, app *App) *Context {
	return &Context{
		Response: w,
		Request:  r,
		app:      app,
	}
}

// App returns the application serving the request, if any.
func (c *Context) App() *App {
	return c.app
}

// --- URL Parameters ---

// Param returns a URL route parameter by name.
func (c *Context) Param(key string) string {
	return chi.URLParam(c.Request, key)
}

// Query returns a query string parameter by name.
func (c *Context) Query(key string) string {
	return c.Request.URL.Query().Get(key)
}

// --- Request Binding ---

var validate = validator.New()

// Bind decodes the request body (JSON or form) into v and runs validation.
// Returns an UnprocessableEntity error if validation fails.
func (c *Context) Bind(v any) error {
	values, err := c.Values()
	if err != nil {
		return c.BadRequest(err)
	}
	data, err := json.Marshal(values)
	if err != nil {
		return c.BadRequest(err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return c.BadRequest(err)
	}

	if valErr := validate.Struct(v); valErr != nil {
		var verrs validator.ValidationErrors
		if !errors.As(valErr, &verrs) {
			return c.BadRequest(valErr)
		}
		errs := make(map[string][]string)
		for _, e := range verrs {
			field := e.Field()
			msg := fmt.Sprintf("%s is invalid (%s)", field, e.Tag())
			if e.Param() != "" {
				msg = fmt.Sprintf("%s must be %s %s", field, e.Tag(), e.Param())
			}
			errs[field] = append(errs[field], msg)
		}
		return c.UnprocessableEntity(errs)
	}

	return nil
}

// Values decodes the request body into a map: a JSON object for JSON
// requests, form values otherwise (single values as strings, repeated keys
// as []string).
func (c *Context) Values() (map[string]any, error) {
	values := make(map[string]any)

	if c.IsJSON() {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return nil, err
		}
		defer c.Request.Body.Close()
		if len(body) == 0 {
			return values, nil
		}
		if err := json.Unmarshal(body, &values); err != nil {
			return nil, err
		}
		return values, nil
	}

	if err := c.Request.ParseForm(); err != nil {
		return nil, err
	}
	for key, vals := range c.Request.Form {
		if len(vals) == 1 {
			values[key] = vals[0]
		} else {
			values[key] = vals
		}
	}
	return values, nil
}

// BindAttributes mass-assigns the request body onto model through
// orm.SetAttributes with the safe-attribute allowlist on. Pre-set attributes
// of model win over the request.
func (c *Context) BindAttributes(model any) error {
	values, err := c.Values()
	if err != nil {
		return c.BadRequest(err)
	}
	if err := orm.SetAttributes(model, values, true); err != nil {
		if errors.Is(err, orm.ErrUnknownAttribute) || errors.Is(err, orm.ErrNotStruct) {
			return err
		}
		return c.BadRequest(err)
	}
	return nil
}

// Translator returns the app translator bound to the request locale. It is
// nil when the context has no app.
func (c *Context) Translator() *i18n.Translator {
	if c.app == nil || c.app.Translator == nil {
		return nil
	}
	return c.app.Translator.ForLocale(i18n.LocaleFromContext(c.Request.Context()))
}

// RepoFor returns the app repository for T bound to the request: its
// context and its locale. The context must belong to an app.
func RepoFor[T any](c *Context) *orm.Repository[T] {
	repo := Repo[T](c.app)
	if tr := c.Translator(); tr != nil {
		repo.Translator = tr
	}
	return repo.WithContext(c.Request.Context())
}

// Load fetches one T for the request through RepoFor. A miss is a 404
// HTTPError carrying the not-found message in the request locale.
func Load[T any](c *Context, id any, with ...string) (*T, error) {
	if c.app == nil || c.app.DB == nil {
		return nil, c.InternalError(errors.New("database not configured"))
	}
	record, err := RepoFor[T](c).Load(id, with...)
	RecordLoad(modelName[T](), loadOutcome(err))
	return record, err
}

func modelName[T any]() string {
	return reflect.TypeFor[T]().Name()
}

func loadOutcome(err error) string {
	switch {
	case err == nil:
		return LoadFound
	case httperr.IsNotFound(err):
		return LoadNotFound
	default:
		return LoadError
	}
}

// --- Response ---

// JSON writes a JSON response with the given status code.
func (c *Context) JSON(status int, v any) error {
	c.Response.Header().Set("Content-Type", "application/json")
	c.Response.WriteHeader(status)
	c.statusCode = status
	c.written = true
	return json.NewEncoder(c.Response).Encode(v)
}

// Status writes a status code with no body.
func (c *Context) Status(code int) error {
	c.Response.WriteHeader(code)
	c.statusCode = code
	c.written = true
	return nil
}

// --- Request Info ---

// RequestID returns the request ID from the chi middleware or the X-Request-ID header.
func (c *Context) RequestID() string {
	if id := middleware.GetReqID(c.Request.Context()); id != "" {
		return id
	}
	return c.Request.Header.Get("X-Request-ID")
}

// IsJSON returns true if the request Content-Type is application/json.
func (c *Context) IsJSON() bool {
	ct := c.Request.Header.Get("Content-Type")
	return strings.Contains(ct, "application/json")
}

// --- Error Responses ---

// BadRequest returns a 400 error.
func (c *Context) BadRequest(err error) error {
	return httperr.New(http.StatusBadRequest, err.Error())
}

// NotFound returns a 404 error.
func (c *Context) NotFound(msg string) error {
	return httperr.NotFound(msg)
}

// Forbidden returns a 403 error.
func (c *Context) Forbidden(msg string) error {
	return httperr.New(http.StatusForbidden, msg)
}

// UnprocessableEntity returns a 422 error with field-level validation errors.
func (c *Context) UnprocessableEntity(errors map[string][]string) error {
	return httperr.UnprocessableEntity(errors)
}

// InternalError returns a 500 error.
func (c *Context) InternalError(err error) error {
	return httperr.New(http.StatusInternalServerError, err.Error())
}
