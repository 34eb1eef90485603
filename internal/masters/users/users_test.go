package users_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finoracle/backoffice/internal/gateway"
	"github.com/finoracle/backoffice/internal/masters"
	"github.com/finoracle/backoffice/internal/masters/masterstest"
	"github.com/finoracle/backoffice/internal/masters/users"
)

func build(gw *gateway.Client, deps masters.Deps) masters.Module {
	return users.New(gw, deps)
}

func TestCreateUser(t *testing.T) {
	h := masterstest.New(t, build, masterstest.Options{})
	h.Remote.SetList(masters.EntityRole, []map[string]any{{"id": 2, "roleName": "Accountant"}})

	values := masterstest.Merge(h.OpenForm(), map[string]string{
		"userName": "asha",
		"email":    "asha@example.com",
		"mobile":   "9876543210",
		"roleId":   "2",
		"status":   "1",
	})
	resp := h.Post(values)
	require.Equal(t, http.StatusSeeOther, resp.Status)

	created := h.Remote.Created(masters.EntityUser)
	require.Len(t, created, 1)
	assert.JSONEq(t, `{"userName":"asha","email":"asha@example.com","mobile":"9876543210","roleId":2,"status":1}`, string(created[0]))
	assert.Contains(t, h.Get("").Body, "User created successfully")
}

func TestCreateUserValidation(t *testing.T) {
	h := masterstest.New(t, build, masterstest.Options{})
	values := masterstest.Merge(h.OpenForm(), map[string]string{
		"userName": "as",
		"email":    "not-an-email",
		"mobile":   "12ab",
		"status":   "1",
	})

	resp := h.Post(values)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Status)
	assert.Contains(t, resp.Body, "Must be at least 3 characters")
	assert.Contains(t, resp.Body, "Enter a valid email address")
	assert.Contains(t, resp.Body, "Must be a number")
	assert.Contains(t, resp.Body, "Select a role")
}

func TestListShowsRoleName(t *testing.T) {
	h := masterstest.New(t, build, masterstest.Options{})
	h.Remote.SetList(masters.EntityRole, []map[string]any{{"id": 2, "roleName": "Accountant"}})
	h.Remote.SetPage(masters.EntityUser, []users.User{{ID: 5, UserName: "asha", Email: "asha@example.com", RoleID: 2, Status: 0}}, 1)

	resp := h.Get("/table")
	require.Equal(t, http.StatusOK, resp.Status)
	assert.Contains(t, resp.Body, "<td>Accountant</td>")
	assert.Contains(t, resp.Body, "<td>InActive</td>")
}
