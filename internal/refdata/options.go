package refdata

import (
	"strings"

	"github.com/spf13/cast"
)

// OptionsFrom converts loosely typed JSON records into options. Records whose
// value is missing are skipped; an empty label falls back to the value.
func OptionsFrom(records []map[string]any, valueKey, labelKey string) []Option {
	opts := make([]Option, 0, len(records))
	for _, rec := range records {
		raw, ok := rec[valueKey]
		if !ok || raw == nil {
			continue
		}
		value, err := cast.ToStringE(raw)
		if err != nil || value == "" {
			continue
		}
		label := strings.TrimSpace(cast.ToString(rec[labelKey]))
		if label == "" {
			label = value
		}
		opts = append(opts, Option{Value: value, Label: label})
	}
	return opts
}
