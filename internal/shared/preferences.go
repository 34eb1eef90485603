package shared

import "context"

const (
	prefPageTitle = "pref:page_title"
	prefSidebar   = "pref:sidebar_collapsed"
	prefTheme     = "pref:theme"
)

// Themes accepted by SetTheme.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// DefaultPageTitle is shown until a screen sets its own title.
const DefaultPageTitle = "Finoracle Back Office"

// Preferences is the per-session UI configuration: page title, sidebar
// collapse flag and theme. Writes are last-writer-wins.
type Preferences struct {
	sess *Session
}

// NewPreferences binds a Preferences store to sess. A nil session yields
// defaults and ignores writes.
func NewPreferences(sess *Session) Preferences {
	return Preferences{sess: sess}
}

// PageTitle returns the title of the last visited screen.
func (p Preferences) PageTitle() string {
	if p.sess == nil {
		return DefaultPageTitle
	}
	if title := p.sess.Get(prefPageTitle); title != "" {
		return title
	}
	return DefaultPageTitle
}

// SetPageTitle records the title of the current screen.
func (p Preferences) SetPageTitle(title string) {
	if p.sess == nil || title == "" || p.sess.Get(prefPageTitle) == title {
		return
	}
	p.sess.Set(prefPageTitle, title)
}

// SidebarCollapsed reports whether the sidebar is collapsed.
func (p Preferences) SidebarCollapsed() bool {
	return p.sess != nil && p.sess.Get(prefSidebar) == "1"
}

// SetSidebarCollapsed stores the collapse flag.
func (p Preferences) SetSidebarCollapsed(collapsed bool) {
	if p.sess == nil {
		return
	}
	if collapsed {
		p.sess.Set(prefSidebar, "1")
		return
	}
	p.sess.Delete(prefSidebar)
}

// ToggleSidebar flips the collapse flag and returns the new value. Without a
// session nothing is stored and the flag stays false.
func (p Preferences) ToggleSidebar() bool {
	if p.sess == nil {
		return false
	}
	next := !p.SidebarCollapsed()
	p.SetSidebarCollapsed(next)
	return next
}

// Theme returns "light" or "dark".
func (p Preferences) Theme() string {
	if p.sess != nil && p.sess.Get(prefTheme) == ThemeDark {
		return ThemeDark
	}
	return ThemeLight
}

// SetTheme stores theme; unknown values reset to light.
func (p Preferences) SetTheme(theme string) {
	if p.sess == nil {
		return
	}
	if theme != ThemeDark {
		theme = ThemeLight
	}
	p.sess.Set(prefTheme, theme)
}

// PreferencesFromContext wraps the request session in a Preferences store.
func PreferencesFromContext(ctx context.Context) Preferences {
	return NewPreferences(SessionFromContext(ctx))
}
