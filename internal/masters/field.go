package masters

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/finoracle/backoffice/internal/refdata"
)

// FieldKind selects the input widget.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldNumber   FieldKind = "number"
	FieldCheckbox FieldKind = "checkbox"
	FieldSelect   FieldKind = "select"
	FieldTextarea FieldKind = "textarea"
	// FieldRows is a repeatable group of sub-fields posted as name.N.sub.
	FieldRows FieldKind = "rows"
)

// Field describes one input of a create form.
type Field struct {
	Name        string
	Label       string
	Kind        FieldKind
	List        string
	Options     []refdata.Option
	Required    bool
	Placeholder string
	// ShowWhen names a checkbox that reveals this field.
	ShowWhen string
	Rows     []Field
}

// StatusOptions is the Active/InActive select used by every screen.
var StatusOptions = []refdata.Option{{Value: "1", Label: "Active"}, {Value: "0", Label: "InActive"}}

// Checked reports whether a checkbox value was posted as on.
func Checked(values url.Values, name string) bool {
	switch strings.ToLower(values.Get(name)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// Rows collects the name.N.sub keys of a FieldRows input, ordered by N.
// Rows with every cell blank are dropped.
func Rows(values url.Values, name string) []map[string]string {
	prefix := name + "."
	byIndex := map[int]map[string]string{}
	for key, vals := range values {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok || len(vals) == 0 {
			continue
		}
		idxText, sub, ok := strings.Cut(rest, ".")
		if !ok || sub == "" {
			continue
		}
		idx, err := strconv.Atoi(idxText)
		if err != nil || idx < 0 {
			continue
		}
		if byIndex[idx] == nil {
			byIndex[idx] = map[string]string{}
		}
		byIndex[idx][sub] = strings.TrimSpace(vals[0])
	}
	indexes := make([]int, 0, len(byIndex))
	for idx, row := range byIndex {
		blank := true
		for _, v := range row {
			if v != "" {
				blank = false
				break
			}
		}
		if !blank {
			indexes = append(indexes, idx)
		}
	}
	sort.Ints(indexes)
	rows := make([]map[string]string, 0, len(indexes))
	for _, idx := range indexes {
		rows = append(rows, byIndex[idx])
	}
	return rows
}

// IntPtr parses an optional integer input; blank or malformed input yields nil.
func IntPtr(raw string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return nil
	}
	return &n
}
