// Package nav loads the sidebar navigation tree.
package nav

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed nav.yml
var defaultTree []byte

// Item is a sidebar entry. Items with sub-items render as collapsible groups.
type Item struct {
	Label    string `yaml:"label"`
	Icon     string `yaml:"icon"`
	Link     string `yaml:"link"`
	SubItems []Item `yaml:"subItems"`
}

// Section groups items under a title header.
type Section struct {
	Title string `yaml:"title"`
	Items []Item `yaml:"items"`
}

// Tree is the whole sidebar.
type Tree struct {
	Sections []Section `yaml:"sections"`
}

// Load parses the bundled navigation.
func Load() (Tree, error) {
	return Parse(defaultTree)
}

// Parse decodes and checks a navigation document.
func Parse(raw []byte) (Tree, error) {
	var tree Tree
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return Tree{}, fmt.Errorf("nav: decode: %w", err)
	}
	if len(tree.Sections) == 0 {
		return Tree{}, errors.New("nav: no sections")
	}
	for _, section := range tree.Sections {
		for _, item := range section.Items {
			if err := item.check(); err != nil {
				return Tree{}, fmt.Errorf("nav: section %q: %w", section.Title, err)
			}
		}
	}
	return tree, nil
}

func (i Item) check() error {
	if strings.TrimSpace(i.Label) == "" {
		return errors.New("item without label")
	}
	if i.Link == "" && len(i.SubItems) == 0 {
		return fmt.Errorf("item %q needs a link or sub-items", i.Label)
	}
	for _, sub := range i.SubItems {
		if err := sub.check(); err != nil {
			return err
		}
	}
	return nil
}

// Active reports whether the item, or one of its sub-items, matches path.
func (i Item) Active(path string) bool {
	if matches(i.Link, path) {
		return true
	}
	for _, sub := range i.SubItems {
		if sub.Active(path) {
			return true
		}
	}
	return false
}

func matches(link, path string) bool {
	if link == "" {
		return false
	}
	if link == "/" {
		return path == "/"
	}
	return path == link || strings.HasPrefix(path, link+"/")
}

// Links returns every leaf link in display order.
func (t Tree) Links() []string {
	var links []string
	var walk func(items []Item)
	walk = func(items []Item) {
		for _, item := range items {
			if item.Link != "" {
				links = append(links, item.Link)
			}
			walk(item.SubItems)
		}
	}
	for _, section := range t.Sections {
		walk(section.Items)
	}
	return links
}
