package gateway

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
)

//go:embed fixtures/*.json
var embeddedFixtures embed.FS

// Fixtures resolves offline datasets by entity name. Files are read on every
// call so an override directory can be edited while the server runs.
type Fixtures struct {
	override fs.FS
	bundled  fs.FS
}

// NewFixtures returns the bundled fixtures, consulting dir first when non-empty.
func NewFixtures(dir string) *Fixtures {
	bundled, err := fs.Sub(embeddedFixtures, "fixtures")
	if err != nil {
		panic(fmt.Sprintf("gateway: bundled fixtures: %v", err))
	}
	f := &Fixtures{bundled: bundled}
	if dir != "" {
		f.override = os.DirFS(dir)
	}
	return f
}

// Raw returns the fixture document for entity.
func (f *Fixtures) Raw(entity string) ([]byte, error) {
	if f == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoFixture, entity)
	}
	name := path.Clean(entity) + ".json"
	if f.override != nil {
		data, err := fs.ReadFile(f.override, name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("gateway: read fixture %s: %w", name, err)
		}
	}
	data, err := fs.ReadFile(f.bundled, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoFixture, entity)
		}
		return nil, fmt.Errorf("gateway: read fixture %s: %w", name, err)
	}
	return data, nil
}
