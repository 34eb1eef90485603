// Package roles is the Role master screen, backed by the remote UserRole resource.
package roles

import (
	"net/url"
	"strings"

	"github.com/finoracle/backoffice/internal/gateway"
	"github.com/finoracle/backoffice/internal/masters"
	"github.com/finoracle/backoffice/internal/refdata"
)

const Slug = "roles"

// Role is a user role.
type Role struct {
	ID          int    `json:"id"`
	RoleName    string `json:"roleName"`
	Description string `json:"description"`
}

type Form struct {
	RoleName    string `form:"roleName" json:"roleName" validate:"required,max=50"`
	Description string `form:"description" json:"description" validate:"max=250"`
}

func Decode(values url.Values) Form {
	return Form{
		RoleName:    strings.TrimSpace(values.Get("roleName")),
		Description: strings.TrimSpace(values.Get("description")),
	}
}

func Screen(client *gateway.Client) masters.Screen[Role, Form] {
	return masters.Screen[Role, Form]{
		Slug:     Slug,
		Title:    "Role Master",
		Singular: "Role",
		Resource: gateway.NewResource[Role](client, masters.EntityRole),
		Columns: []masters.Column[Role]{
			{Key: "id", Title: "ID", Sortable: true, Value: func(r Role, _ refdata.Set) string { return masters.Int(r.ID) }},
			{Key: "roleName", Sortable: true, Value: func(r Role, _ refdata.Set) string { return r.RoleName }},
			{Key: "description", Value: func(r Role, _ refdata.Set) string { return r.Description }},
		},
		Fields: []masters.Field{
			{Name: "roleName", Label: "Role Name", Kind: masters.FieldText, Required: true, Placeholder: "Enter Role Name"},
			{Name: "description", Label: "Description", Kind: masters.FieldTextarea},
		},
		Decode: Decode,
		Body:   func(f Form) any { return f },
	}
}

// New builds the Role master handler.
func New(client *gateway.Client, deps masters.Deps) *masters.Handler[Role, Form] {
	return masters.NewHandler(Screen(client), deps)
}
