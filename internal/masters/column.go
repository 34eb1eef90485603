package masters

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/finoracle/backoffice/internal/refdata"
)

// Column describes one table column of a master list.
type Column[T any] struct {
	Key      string
	Title    string
	Sortable bool
	Value    func(row T, refs refdata.Set) string
}

// Header returns the column title, deriving it from the key when unset
// ("roleName" becomes "Role Name").
func (c Column[T]) Header() string {
	if c.Title != "" {
		return c.Title
	}
	return cases.Title(language.English).String(splitWords(c.Key))
}

func splitWords(key string) string {
	var b strings.Builder
	for i, r := range key {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Status renders a 0/1 status flag.
func Status(v int) string {
	if v == 1 {
		return "Active"
	}
	return "InActive"
}

// OptionalStatus renders a nullable status flag.
func OptionalStatus(v *int) string {
	if v == nil {
		return ""
	}
	return Status(*v)
}

// YesNo renders a capability flag.
func YesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

// Int renders an id.
func Int(v int) string {
	return strconv.Itoa(v)
}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02"}

// Timestamp formats the remote audit timestamps; unknown layouts are shown raw.
func Timestamp(v *string) string {
	if v == nil || *v == "" {
		return ""
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, *v); err == nil {
			return t.Format("02 Jan 2006 15:04")
		}
	}
	return *v
}
