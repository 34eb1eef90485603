package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreferencesDefaults(t *testing.T) {
	prefs := NewPreferences(&Session{ID: "s"})
	assert.Equal(t, DefaultPageTitle, prefs.PageTitle())
	assert.False(t, prefs.SidebarCollapsed())
	assert.Equal(t, ThemeLight, prefs.Theme())
}

func TestPreferencesAccessors(t *testing.T) {
	sess := &Session{ID: "s"}
	prefs := NewPreferences(sess)

	prefs.SetPageTitle("Menu Master")
	assert.Equal(t, "Menu Master", NewPreferences(sess).PageTitle())

	assert.True(t, prefs.ToggleSidebar())
	assert.True(t, prefs.SidebarCollapsed())
	assert.False(t, prefs.ToggleSidebar())
	assert.False(t, prefs.ToggleSidebar(), "nothing was stored by the first toggle")
	assert.False(t, prefs.SidebarCollapsed())
	assert.Equal(t, "", sess.Get(prefSidebar))

	prefs.SetTheme(ThemeDark)
	assert.Equal(t, ThemeDark, prefs.Theme())
	prefs.SetTheme("neon")
	assert.Equal(t, ThemeLight, prefs.Theme())
}

func TestPreferencesWithoutSession(t *testing.T) {
	prefs := NewPreferences(nil)
	prefs.SetPageTitle("ignored")
	prefs.SetTheme(ThemeDark)
	assert.False(t, prefs.ToggleSidebar())
	assert.False(t, prefs.ToggleSidebar(), "nothing was stored by the first toggle")
	assert.False(t, prefs.SidebarCollapsed())
	assert.Equal(t, DefaultPageTitle, prefs.PageTitle())
	assert.Equal(t, ThemeLight, prefs.Theme())
}

func TestPaginationSummary(t *testing.T) {
	p := NewPagination(2, 10, 41, 10)
	assert.Equal(t, "Showing 11 to 20 of 41 entries", p.Summary())
	assert.Equal(t, 5, p.TotalPages)
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, p.Window(5))

	last := NewPagination(5, 10, 41, 1)
	assert.Equal(t, "Showing 41 to 41 of 41 entries", last.Summary())
	assert.False(t, last.HasNext())

	outOfRange := NewPagination(11, 10, 100, 0)
	assert.Equal(t, "Showing 0 to 0 of 100 entries", outOfRange.Summary())
	assert.Equal(t, []int{6, 7, 8, 9, 10}, outOfRange.Window(5))

	empty := NewPagination(1, 10, 0, 0)
	assert.Nil(t, empty.Window(5))
}
