// Package menus is the Menu master screen.
package menus

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/finoracle/backoffice/internal/gateway"
	"github.com/finoracle/backoffice/internal/masters"
	"github.com/finoracle/backoffice/internal/refdata"
)

// Slug is the route segment of the screen.
const Slug = "menus"

// Menu is a navigation entry as served by the remote Menu resource.
type Menu struct {
	ID         int     `json:"id"`
	Label      string  `json:"label"`
	Icon       string  `json:"icon"`
	Link       string  `json:"link"`
	ParentID   int     `json:"parentId"`
	ChildID    int     `json:"childId"`
	IsTitle    bool    `json:"isTitle"`
	IsAccess   bool    `json:"isAccess"`
	Status     int     `json:"status"`
	CreateDate *string `json:"createDate"`
	UpdateDate *string `json:"updateDate"`
	CreatedBy  *int    `json:"createdBy"`
	UpdatedBy  *int    `json:"updatedBy"`
	SubItems   []Menu  `json:"subItems,omitempty"`
}

// Form is the create form. Title entries carry no link; a menu with
// sub-menus needs at least one sub-item.
type Form struct {
	Label      string    `form:"label" validate:"required,max=100"`
	Icon       string    `form:"icon" validate:"max=100"`
	Link       string    `form:"link" validate:"omitempty,menulink"`
	ParentID   *int      `form:"parentId" validate:"required,min=0"`
	ChildID    *int      `form:"childId" validate:"required,min=0"`
	IsTitle    bool      `form:"isTitle"`
	IsAccess   bool      `form:"isAccess"`
	Status     string    `form:"status" validate:"required,oneof=0 1"`
	HasSubmenu bool      `form:"hasSubmenu"`
	SubItems   []SubItem `form:"subItems" validate:"dive"`
}

// SubItem is one child entry posted with its parent.
type SubItem struct {
	Label string `form:"label" validate:"required,max=100"`
	Link  string `form:"link" validate:"required,menulink"`
	Icon  string `form:"icon" validate:"max=100"`
}

type body struct {
	Label    string    `json:"label"`
	Icon     string    `json:"icon"`
	Link     string    `json:"link"`
	ParentID int       `json:"parentId"`
	ChildID  int       `json:"childId"`
	IsTitle  bool      `json:"isTitle"`
	IsAccess bool      `json:"isAccess"`
	Status   int       `json:"status"`
	SubItems []subBody `json:"subItems,omitempty"`
}

type subBody struct {
	Label    string `json:"label"`
	Icon     string `json:"icon"`
	Link     string `json:"link"`
	IsAccess bool   `json:"isAccess"`
	Status   int    `json:"status"`
}

// Decode reads the posted form.
func Decode(values url.Values) Form {
	form := Form{
		Label:      strings.TrimSpace(values.Get("label")),
		Icon:       strings.TrimSpace(values.Get("icon")),
		Link:       strings.TrimSpace(values.Get("link")),
		ParentID:   masters.IntPtr(values.Get("parentId")),
		ChildID:    masters.IntPtr(values.Get("childId")),
		IsTitle:    masters.Checked(values, "isTitle"),
		IsAccess:   masters.Checked(values, "isAccess"),
		Status:     strings.TrimSpace(values.Get("status")),
		HasSubmenu: masters.Checked(values, "hasSubmenu"),
	}
	if form.HasSubmenu {
		for _, row := range masters.Rows(values, "subItems") {
			form.SubItems = append(form.SubItems, SubItem{Label: row["label"], Link: row["link"], Icon: row["icon"]})
		}
	}
	return form
}

// Body maps a valid form onto the remote create payload.
func Body(form Form) any {
	status, _ := strconv.Atoi(form.Status)
	out := body{
		Label:    form.Label,
		Icon:     form.Icon,
		Link:     form.Link,
		IsTitle:  form.IsTitle,
		IsAccess: form.IsAccess,
		Status:   status,
	}
	if form.ParentID != nil {
		out.ParentID = *form.ParentID
	}
	if form.ChildID != nil {
		out.ChildID = *form.ChildID
	}
	for _, sub := range form.SubItems {
		out.SubItems = append(out.SubItems, subBody{Label: sub.Label, Icon: sub.Icon, Link: sub.Link, IsAccess: form.IsAccess, Status: status})
	}
	return out
}

// Rules registers the cross-field checks.
func Rules(v *validator.Validate) {
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		form := sl.Current().Interface().(Form)
		switch {
		case form.IsTitle && form.Link != "":
			sl.ReportError(form.Link, "link", "Link", "titlelink", "")
		case !form.IsTitle && !form.HasSubmenu && form.Link == "":
			sl.ReportError(form.Link, "link", "Link", "required", "")
		}
		if form.HasSubmenu && len(form.SubItems) == 0 {
			sl.ReportError(form.SubItems, "subItems", "SubItems", "subitems", "")
		}
	}, Form{})
}

// Screen declares the Menu master.
func Screen(client *gateway.Client) masters.Screen[Menu, Form] {
	return masters.Screen[Menu, Form]{
		Slug:     Slug,
		Title:    "Menu Master",
		Singular: "Menu",
		Resource: gateway.NewResource[Menu](client, masters.EntityMenu),
		Columns: []masters.Column[Menu]{
			{Key: "id", Title: "ID", Sortable: true, Value: func(m Menu, _ refdata.Set) string { return masters.Int(m.ID) }},
			{Key: "label", Sortable: true, Value: func(m Menu, _ refdata.Set) string { return m.Label }},
			{Key: "icon", Value: func(m Menu, _ refdata.Set) string { return m.Icon }},
			{Key: "link", Sortable: true, Value: func(m Menu, _ refdata.Set) string { return m.Link }},
			{Key: "parentId", Title: "Parent", Sortable: true, Value: func(m Menu, refs refdata.Set) string {
				if m.ParentID == 0 {
					return "-"
				}
				return refs.Label(masters.ListMenus, masters.Int(m.ParentID))
			}},
			{Key: "childId", Sortable: true, Value: func(m Menu, _ refdata.Set) string { return masters.Int(m.ChildID) }},
			{Key: "isTitle", Value: func(m Menu, _ refdata.Set) string { return masters.YesNo(m.IsTitle) }},
			{Key: "isAccess", Value: func(m Menu, _ refdata.Set) string { return masters.YesNo(m.IsAccess) }},
			{Key: "status", Sortable: true, Value: func(m Menu, _ refdata.Set) string { return masters.Status(m.Status) }},
			{Key: "createDate", Sortable: true, Value: func(m Menu, _ refdata.Set) string { return masters.Timestamp(m.CreateDate) }},
			{Key: "updateDate", Value: func(m Menu, _ refdata.Set) string { return masters.Timestamp(m.UpdateDate) }},
		},
		Fields: []masters.Field{
			{Name: "label", Label: "Label", Kind: masters.FieldText, Required: true, Placeholder: "Enter Label"},
			{Name: "icon", Label: "Icon", Kind: masters.FieldText, Placeholder: "Enter Icon"},
			{Name: "isTitle", Label: "Is Title", Kind: masters.FieldCheckbox},
			{Name: "link", Label: "Link", Kind: masters.FieldText, Placeholder: "/path or https://..."},
			{Name: "parentId", Label: "Parent ID", Kind: masters.FieldNumber, Required: true},
			{Name: "childId", Label: "Child ID", Kind: masters.FieldNumber, Required: true},
			{Name: "isAccess", Label: "Is Access", Kind: masters.FieldCheckbox},
			{Name: "status", Label: "Status", Kind: masters.FieldSelect, Options: masters.StatusOptions, Required: true},
			{Name: "hasSubmenu", Label: "Has Sub Menu", Kind: masters.FieldCheckbox},
			{Name: "subItems", Label: "Sub Menus", Kind: masters.FieldRows, ShowWhen: "hasSubmenu", Rows: []masters.Field{
				{Name: "label", Label: "Label", Kind: masters.FieldText, Required: true},
				{Name: "link", Label: "Link", Kind: masters.FieldText, Required: true},
				{Name: "icon", Label: "Icon", Kind: masters.FieldText},
			}},
		},
		References: []string{masters.ListMenus},
		Defaults:   url.Values{"parentId": {"0"}, "childId": {"0"}, "status": {"1"}, "isAccess": {"on"}},
		Decode:     Decode,
		Body:       Body,
		Rules:      Rules,
		Messages: map[string]string{
			"titlelink": "A title entry cannot have a link",
			"subitems":  "Add at least one sub menu",
		},
	}
}

// New builds the Menu master handler.
func New(client *gateway.Client, deps masters.Deps) *masters.Handler[Menu, Form] {
	return masters.NewHandler(Screen(client), deps)
}
