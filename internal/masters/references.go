package masters

import (
	"github.com/finoracle/backoffice/internal/gateway"
	"github.com/finoracle/backoffice/internal/refdata"
)

// Reference list names.
const (
	ListMenus = "menus"
	ListRoles = "roles"
	ListUsers = "users"
)

// Remote entities behind the screens.
const (
	EntityMenu    = "Menu"
	EntityRole    = "UserRole"
	EntityMapping = "MenuRoleMapping"
	EntityUser    = "User"
)

// ReferenceLists declares the select sources loaded from the remote service.
func ReferenceLists(client *gateway.Client) []refdata.List {
	menus := gateway.NewResource[map[string]any](client, EntityMenu)
	roles := gateway.NewResource[map[string]any](client, EntityRole)
	users := gateway.NewResource[map[string]any](client, EntityUser)
	return []refdata.List{
		{Name: ListMenus, Fetch: menus.All, ValueKey: "id", LabelKey: "label"},
		{Name: ListRoles, Fetch: roles.All, ValueKey: "id", LabelKey: "roleName"},
		{Name: ListUsers, Fetch: users.All, ValueKey: "id", LabelKey: "userName"},
	}
}
