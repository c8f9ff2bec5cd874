package orm

import (
	"context"

	"github.com/shaurya/recordkit/framework/httperr"
	"gorm.io/gorm"
)

// Repository bundles the collaborators record helpers need for one model
// type: the database handle, the translator and the not-found defaults.
type Repository[T any] struct {
	DB         *gorm.DB
	Translator Translator
	Category   string
	Message    string
}

// NewRepository creates a Repository with the default not-found message.
func NewRepository[T any](db *gorm.DB, translator Translator) *Repository[T] {
	return &Repository[T]{
		DB:         db,
		Translator: translator,
		Category:   DefaultNotFoundCategory,
		Message:    DefaultNotFoundMessage,
	}
}

// WithContext returns a copy bound to ctx.
func (r *Repository[T]) WithContext(ctx context.Context) *Repository[T] {
	clone := *r
	clone.DB = r.DB.WithContext(ctx)
	return &clone
}

// Load fetches one T by primary key or attribute map, eager-loading with.
func (r *Repository[T]) Load(id any, with ...string) (*T, error) {
	return Load[T](r.DB, id, r.loadOptions(with)...)
}

// Query starts a QueryBuilder on the repository's database.
func (r *Repository[T]) Query() *QueryBuilder[T] {
	q := Query[T](r.DB)
	q.loadOpts = r.loadOptions(nil)
	return q
}

// LastCreated returns the most recently created T matching criteria.
func (r *Repository[T]) LastCreated(criteria Criteria) (*T, error) {
	return r.Query().Merge(criteria).LastCreated().Take()
}

// Save validates model and writes it. Validation failures and unique
// constraint violations are recorded on the model and returned as a 422
// error.
func (r *Repository[T]) Save(model *T) error {
	if errs := Validate(model, r.Translator); len(errs) > 0 {
		return httperr.UnprocessableEntity(errs)
	}
	if err := r.DB.Save(model).Error; err != nil {
		errs := HandleDBError(err, r.Translator)
		if _, unmapped := errs[baseErrorKey]; unmapped {
			return err
		}
		if c, ok := any(model).(ErrorCollector); ok {
			c.AddErrors(errs)
		}
		return httperr.UnprocessableEntity(errs)
	}
	return nil
}

// Delete removes model.
func (r *Repository[T]) Delete(model *T) error {
	return r.DB.Delete(model).Error
}

func (r *Repository[T]) loadOptions(with []string) []LoadOption {
	opts := []LoadOption{NotFoundMessage(r.Category, r.Message)}
	if r.Translator != nil {
		opts = append(opts, WithTranslator(r.Translator))
	}
	if len(with) > 0 {
		opts = append(opts, With(with...))
	}
	return opts
}
