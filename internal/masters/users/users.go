// Package users is the User list screen.
package users

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/finoracle/backoffice/internal/gateway"
	"github.com/finoracle/backoffice/internal/masters"
	"github.com/finoracle/backoffice/internal/refdata"
)

const Slug = "users"

// User is a back-office account.
type User struct {
	ID       int    `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	RoleID   int    `json:"roleId"`
	Status   int    `json:"status"`
}

type Form struct {
	UserName string `form:"userName" validate:"required,min=3,max=50"`
	Email    string `form:"email" validate:"required,email"`
	Mobile   string `form:"mobile" validate:"omitempty,numeric,min=10,max=15"`
	RoleID   *int   `form:"roleId" validate:"required,min=1"`
	Status   string `form:"status" validate:"required,oneof=0 1"`
}

type body struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	RoleID   int    `json:"roleId"`
	Status   int    `json:"status"`
}

func Decode(values url.Values) Form {
	return Form{
		UserName: strings.TrimSpace(values.Get("userName")),
		Email:    strings.TrimSpace(values.Get("email")),
		Mobile:   strings.TrimSpace(values.Get("mobile")),
		RoleID:   masters.IntPtr(values.Get("roleId")),
		Status:   strings.TrimSpace(values.Get("status")),
	}
}

func Body(f Form) any {
	status, _ := strconv.Atoi(f.Status)
	return body{UserName: f.UserName, Email: f.Email, Mobile: f.Mobile, RoleID: *f.RoleID, Status: status}
}

func Screen(client *gateway.Client) masters.Screen[User, Form] {
	return masters.Screen[User, Form]{
		Slug:     Slug,
		Title:    "User List",
		Singular: "User",
		Resource: gateway.NewResource[User](client, masters.EntityUser),
		Columns: []masters.Column[User]{
			{Key: "id", Title: "ID", Sortable: true, Value: func(u User, _ refdata.Set) string { return masters.Int(u.ID) }},
			{Key: "userName", Sortable: true, Value: func(u User, _ refdata.Set) string { return u.UserName }},
			{Key: "email", Sortable: true, Value: func(u User, _ refdata.Set) string { return u.Email }},
			{Key: "mobile", Value: func(u User, _ refdata.Set) string { return u.Mobile }},
			{Key: "roleId", Title: "Role", Sortable: true, Value: func(u User, refs refdata.Set) string {
				return refs.Label(masters.ListRoles, masters.Int(u.RoleID))
			}},
			{Key: "status", Sortable: true, Value: func(u User, _ refdata.Set) string { return masters.Status(u.Status) }},
		},
		Fields: []masters.Field{
			{Name: "userName", Label: "User Name", Kind: masters.FieldText, Required: true, Placeholder: "Enter User Name"},
			{Name: "email", Label: "Email", Kind: masters.FieldText, Required: true, Placeholder: "name@example.com"},
			{Name: "mobile", Label: "Mobile", Kind: masters.FieldText},
			{Name: "roleId", Label: "Role", Kind: masters.FieldSelect, List: masters.ListRoles, Required: true},
			{Name: "status", Label: "Status", Kind: masters.FieldSelect, Options: masters.StatusOptions, Required: true},
		},
		References: []string{masters.ListRoles},
		Defaults:   url.Values{"status": {"1"}},
		Decode:     Decode,
		Body:       Body,
		Messages:   map[string]string{"roleId.required": "Select a role"},
	}
}

// New builds the User list handler.
func New(client *gateway.Client, deps masters.Deps) *masters.Handler[User, Form] {
	return masters.NewHandler(Screen(client), deps)
}
