// Package masters implements the generic master screen: a paged, sortable,
// searchable list with a create form, bound to one remote entity.
package masters

import (
	"context"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/finoracle/backoffice/internal/gateway"
)

// Screen declares everything that varies between master screens. T is the
// entity decoded from the remote service, F the validated create form.
type Screen[T any, F any] struct {
	Slug     string
	Title    string
	Singular string
	Resource *gateway.Resource[T]
	Columns  []Column[T]
	Fields   []Field
	// References are the refdata lists loaded alongside the list and the form.
	References []string
	Defaults   url.Values
	Decode     func(values url.Values) F
	Body       func(form F) any
	// Precheck runs after validation and before the create request.
	Precheck func(ctx context.Context, form F) map[string]string
	// Rules registers struct-level validation for F.
	Rules    func(v *validator.Validate)
	Messages map[string]string
}

// Module is a mountable screen.
type Module interface {
	Slug() string
	Title() string
	Path() string
	MountRoutes(r chi.Router)
}

// PathFor returns the list path of a screen slug.
func PathFor(slug string) string {
	return "/masters/" + slug
}

func (s Screen[T, F]) sortable(field string) bool {
	for _, col := range s.Columns {
		if col.Key == field {
			return col.Sortable
		}
	}
	return false
}
