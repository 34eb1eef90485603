// Package refdata loads the auxiliary lists that feed select inputs on create
// forms (menus, roles, users).
package refdata

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Option is one entry of a select input.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Fetcher returns raw records of a remote collection.
type Fetcher func(ctx context.Context) ([]map[string]any, error)

// List describes a reference list and how to turn its records into options.
type List struct {
	Name     string
	Fetch    Fetcher
	ValueKey string
	LabelKey string
}

// Recorder receives load outcomes (hit, miss, error).
type Recorder interface {
	IncRefdataLoad(list, result string)
}

// Loader resolves reference lists through the cache, collapsing concurrent
// loads of the same list.
type Loader struct {
	lists    map[string]List
	cache    *Cache
	group    singleflight.Group
	logger   *slog.Logger
	recorder Recorder
}

// NewLoader builds a Loader over lists.
func NewLoader(cache *Cache, logger *slog.Logger, recorder Recorder, lists ...List) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{lists: make(map[string]List, len(lists)), cache: cache, logger: logger, recorder: recorder}
	for _, list := range lists {
		l.lists[list.Name] = list
	}
	return l
}

// Names lists the registered reference lists in stable order.
func (l *Loader) Names() []string {
	names := make([]string, 0, len(l.lists))
	for name := range l.lists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load returns the options of one list. The cache version is read once up
// front and keys both the cache entry and the in-flight fetch, so a Load
// issued after Invalidate never joins or stores a pre-bump fetch.
func (l *Loader) Load(ctx context.Context, name string) ([]Option, error) {
	list, ok := l.lists[name]
	if !ok {
		return nil, fmt.Errorf("refdata: unknown list %q", name)
	}
	ver, err := l.cache.Version(ctx)
	cacheable := err == nil
	if err != nil {
		l.logger.Warn("refdata cache version", slog.String("list", name), slog.Any("error", err))
	} else if opts, hit, err := l.cache.GetVersion(ctx, name, ver); err != nil {
		l.logger.Warn("refdata cache read", slog.String("list", name), slog.Any("error", err))
	} else if hit {
		l.record(name, "hit")
		return opts, nil
	}

	flightKey := fmt.Sprintf("%s@%d", name, ver)
	if !cacheable {
		flightKey = name + "@nocache"
	}
	ch := l.group.DoChan(flightKey, func() (any, error) {
		return l.fetch(context.WithoutCancel(ctx), list, ver, cacheable)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			l.record(name, "error")
			return nil, res.Err
		}
		l.record(name, "miss")
		return res.Val.([]Option), nil
	}
}

func (l *Loader) fetch(ctx context.Context, list List, ver int64, store bool) ([]Option, error) {
	records, err := list.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("refdata: load %s: %w", list.Name, err)
	}
	opts := OptionsFrom(records, list.ValueKey, list.LabelKey)
	if !store {
		return opts, nil
	}
	if err := l.cache.SetVersion(ctx, list.Name, ver, opts); err != nil {
		l.logger.Warn("refdata cache write", slog.String("list", list.Name), slog.Any("error", err))
	}
	return opts, nil
}

// LoadAll loads names concurrently. A list that fails to load is returned
// empty and logged; LoadAll itself never fails.
func (l *Loader) LoadAll(ctx context.Context, names ...string) Set {
	results := make([][]Option, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			opts, err := l.Load(gctx, name)
			if err != nil {
				l.logger.Warn("reference list unavailable", slog.String("list", name), slog.Any("error", err))
				return nil
			}
			results[i] = opts
			return nil
		})
	}
	_ = g.Wait()

	set := make(Set, len(names))
	for i, name := range names {
		if results[i] == nil {
			set[name] = []Option{}
			continue
		}
		set[name] = results[i]
	}
	return set
}

// Warm fetches names (every list when empty) bypassing cached copies and
// stores the result. The returned map holds the failures by list name.
func (l *Loader) Warm(ctx context.Context, names ...string) map[string]error {
	if len(names) == 0 {
		names = l.Names()
	}
	failures := map[string]error{}
	for _, name := range names {
		list, ok := l.lists[name]
		if !ok {
			failures[name] = fmt.Errorf("refdata: unknown list %q", name)
			continue
		}
		ver, verErr := l.cache.Version(ctx)
		if _, err := l.fetch(ctx, list, ver, verErr == nil); err != nil {
			failures[name] = err
		}
	}
	return failures
}

// Invalidate drops every cached list.
func (l *Loader) Invalidate(ctx context.Context) error {
	return l.cache.Bump(ctx)
}

func (l *Loader) record(name, result string) {
	if l.recorder != nil {
		l.recorder.IncRefdataLoad(name, result)
	}
}

// Set holds loaded lists by name.
type Set map[string][]Option

// Get returns the list or an empty slice.
func (s Set) Get(name string) []Option {
	if opts, ok := s[name]; ok {
		return opts
	}
	return []Option{}
}

// Label finds the label for value in list, falling back to value itself.
func (s Set) Label(name, value string) string {
	idx := slices.IndexFunc(s[name], func(o Option) bool { return o.Value == value })
	if idx < 0 {
		return value
	}
	return s[name][idx].Label
}
