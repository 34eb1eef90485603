// Package mappings is the Menu-Role mapping screen.
package mappings

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/finoracle/backoffice/internal/gateway"
	"github.com/finoracle/backoffice/internal/masters"
	"github.com/finoracle/backoffice/internal/refdata"
)

const Slug = "menu-roles"

// DuplicateMessage is reported when the menu is already mapped to the role.
const DuplicateMessage = "This menu is already mapped to the selected role"

// Mapping grants a role its capabilities on one menu.
type Mapping struct {
	ID         int     `json:"id"`
	MenuID     int     `json:"menuId"`
	RoleID     int     `json:"roleId"`
	Read       bool    `json:"read"`
	Edit       bool    `json:"edit"`
	View       bool    `json:"view"`
	Delete     bool    `json:"delete"`
	Approve    bool    `json:"approve"`
	Status     *int    `json:"status"`
	CreateDate *string `json:"createDate"`
	UpdateDate *string `json:"updateDate"`
	CreatedBy  *int    `json:"createdBy"`
	UpdatedBy  *int    `json:"updatedBy"`
}

type Form struct {
	MenuID  *int   `form:"menuId" validate:"required,min=1"`
	RoleID  *int   `form:"roleId" validate:"required,min=1"`
	Read    bool   `form:"read"`
	Edit    bool   `form:"edit"`
	View    bool   `form:"view"`
	Delete  bool   `form:"delete"`
	Approve bool   `form:"approve"`
	Status  string `form:"status" validate:"required,oneof=0 1"`
}

type body struct {
	MenuID  int  `json:"menuId"`
	RoleID  int  `json:"roleId"`
	Read    bool `json:"read"`
	Edit    bool `json:"edit"`
	View    bool `json:"view"`
	Delete  bool `json:"delete"`
	Approve bool `json:"approve"`
	Status  int  `json:"status"`
}

func Decode(values url.Values) Form {
	return Form{
		MenuID:  masters.IntPtr(values.Get("menuId")),
		RoleID:  masters.IntPtr(values.Get("roleId")),
		Read:    masters.Checked(values, "read"),
		Edit:    masters.Checked(values, "edit"),
		View:    masters.Checked(values, "view"),
		Delete:  masters.Checked(values, "delete"),
		Approve: masters.Checked(values, "approve"),
		Status:  strings.TrimSpace(values.Get("status")),
	}
}

// Body converts the Active/InActive choice into the remote 1/0 flag.
func Body(f Form) any {
	status, _ := strconv.Atoi(f.Status)
	return body{
		MenuID:  *f.MenuID,
		RoleID:  *f.RoleID,
		Read:    f.Read,
		Edit:    f.Edit,
		View:    f.View,
		Delete:  f.Delete,
		Approve: f.Approve,
		Status:  status,
	}
}

// Precheck rejects a (menu, role) pair that is already mapped. When the
// existing mappings cannot be listed the check is skipped.
func Precheck(resource *gateway.Resource[Mapping], logger *slog.Logger) func(context.Context, Form) map[string]string {
	return func(ctx context.Context, f Form) map[string]string {
		existing, err := resource.All(ctx)
		if err != nil {
			if logger != nil {
				logger.Warn("mapping uniqueness check skipped", slog.Any("error", err))
			}
			return nil
		}
		for _, m := range existing {
			if m.MenuID == *f.MenuID && m.RoleID == *f.RoleID {
				return map[string]string{"roleId": DuplicateMessage}
			}
		}
		return nil
	}
}

func Screen(client *gateway.Client, logger *slog.Logger) masters.Screen[Mapping, Form] {
	resource := gateway.NewResource[Mapping](client, masters.EntityMapping)
	flag := func(get func(Mapping) bool) func(Mapping, refdata.Set) string {
		return func(m Mapping, _ refdata.Set) string { return masters.YesNo(get(m)) }
	}
	return masters.Screen[Mapping, Form]{
		Slug:     Slug,
		Title:    "Menu Role Mapping",
		Singular: "Menu role mapping",
		Resource: resource,
		Columns: []masters.Column[Mapping]{
			{Key: "id", Title: "ID", Sortable: true, Value: func(m Mapping, _ refdata.Set) string { return masters.Int(m.ID) }},
			{Key: "menuId", Title: "Menu", Sortable: true, Value: func(m Mapping, refs refdata.Set) string {
				return refs.Label(masters.ListMenus, masters.Int(m.MenuID))
			}},
			{Key: "roleId", Title: "Role", Sortable: true, Value: func(m Mapping, refs refdata.Set) string {
				return refs.Label(masters.ListRoles, masters.Int(m.RoleID))
			}},
			{Key: "read", Value: flag(func(m Mapping) bool { return m.Read })},
			{Key: "edit", Value: flag(func(m Mapping) bool { return m.Edit })},
			{Key: "view", Value: flag(func(m Mapping) bool { return m.View })},
			{Key: "delete", Value: flag(func(m Mapping) bool { return m.Delete })},
			{Key: "approve", Value: flag(func(m Mapping) bool { return m.Approve })},
			{Key: "status", Sortable: true, Value: func(m Mapping, _ refdata.Set) string { return masters.OptionalStatus(m.Status) }},
			{Key: "createDate", Sortable: true, Value: func(m Mapping, _ refdata.Set) string { return masters.Timestamp(m.CreateDate) }},
		},
		Fields: []masters.Field{
			{Name: "menuId", Label: "Menu", Kind: masters.FieldSelect, List: masters.ListMenus, Required: true},
			{Name: "roleId", Label: "Role", Kind: masters.FieldSelect, List: masters.ListRoles, Required: true},
			{Name: "read", Label: "Read", Kind: masters.FieldCheckbox},
			{Name: "edit", Label: "Edit", Kind: masters.FieldCheckbox},
			{Name: "view", Label: "View", Kind: masters.FieldCheckbox},
			{Name: "delete", Label: "Delete", Kind: masters.FieldCheckbox},
			{Name: "approve", Label: "Approve", Kind: masters.FieldCheckbox},
			{Name: "status", Label: "Status", Kind: masters.FieldSelect, Options: masters.StatusOptions, Required: true},
		},
		References: []string{masters.ListMenus, masters.ListRoles},
		Defaults:   url.Values{"status": {"1"}, "read": {"on"}, "view": {"on"}},
		Decode:     Decode,
		Body:       Body,
		Precheck:   Precheck(resource, logger),
		Messages: map[string]string{
			"menuId.required": "Select a menu",
			"roleId.required": "Select a role",
		},
	}
}

// New builds the mapping screen handler.
func New(client *gateway.Client, deps masters.Deps) *masters.Handler[Mapping, Form] {
	return masters.NewHandler(Screen(client, deps.Logger), deps)
}
