package metrics

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// DefaultPalette is the ordered entity color cycle, matching the chart
// theme in display/tui. Once more entities than palette entries exist,
// colors repeat; that is an accepted visual limitation.
var DefaultPalette = []string{
	"#3399FF", // blue
	"#FF6633", // orange
	"#33CC66", // green
	"#CC33CC", // purple
	"#FFCC33", // yellow
	"#33CCCC", // cyan
	"#FF99CC", // pink
	"#99CC33", // lime
}

// Registry tracks the dynamic set of live entities and exclusively owns
// their rolling series for the process lifetime. Entities are added lazily
// on first observation and never removed mid-session.
//
// Concurrency model: single writer, multiple readers. Only the sampling
// loop calls Ensure/Append; the display side reads through Snapshot, which
// copies under a read lock so renders never hold up appends.
type Registry struct {
	mu       sync.RWMutex
	logger   *slog.Logger
	palette  []string
	caps     map[Class]int
	entities map[string]*Entity
	order    []string // entity keys in first-observation order
	now      func() time.Time
}

// NewRegistry creates a registry with the given color palette and
// per-class series capacities. A nil or empty palette falls back to
// DefaultPalette; missing class capacities fall back to DefaultCapacity.
func NewRegistry(palette []string, caps map[Class]int, logger *slog.Logger) *Registry {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Registry{
		logger:   logger,
		palette:  palette,
		caps:     caps,
		entities: make(map[string]*Entity),
		now:      time.Now,
	}
}

// Ensure returns the entity for key, creating it on first observation.
// New entities get the next palette color (observation order modulo palette
// size) and one empty series per class channel. Repeated calls never change
// an existing entity's color or buffers.
func (r *Registry) Ensure(key string, class Class) *Entity {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entities[key]; ok {
		return e
	}

	e := &Entity{
		Key:     key,
		Class:   class,
		Color:   r.palette[len(r.order)%len(r.palette)],
		Created: r.now(),
		series:  make(map[string]*Series),
	}
	for _, ch := range class.Channels() {
		e.series[ch] = NewSeries(r.caps[class])
	}

	r.entities[key] = e
	r.order = append(r.order, key)

	r.logger.Debug("registered entity",
		"key", key,
		"class", class.String(),
		"color", e.Color,
	)
	return e
}

// Append records a rate point on the entity's channel series.
// Appending to an unknown entity or channel is a sequencing bug in the
// caller (Ensure must come first) and is surfaced as an error.
func (r *Registry) Append(key, channel string, p RatePoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entities[key]
	if !ok {
		return fmt.Errorf("metrics: append to unknown entity %q", key)
	}
	s, ok := e.series[channel]
	if !ok {
		return fmt.Errorf("metrics: entity %q has no channel %q", key, channel)
	}
	s.Append(p)
	return nil
}

// Entities returns the keys of all entities of a class, sorted.
func (r *Registry) Entities(class Class) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var keys []string
	for k, e := range r.entities {
		if e.Class == class {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Latest returns the most recent rate for (entity, channel), or ok=false
// when the entity is unknown or its series is empty.
func (r *Registry) Latest(key, channel string) (RatePoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entities[key]
	if !ok {
		return RatePoint{}, false
	}
	s, ok := e.series[channel]
	if !ok {
		return RatePoint{}, false
	}
	return s.Latest()
}

// Snapshot builds read-only copies of every series the chart subscribes to,
// ordered by entity key (first-observation ties broken alphabetically) and
// then by the chart's channel order. The result is internally consistent
// and safe to render while the sampling loop keeps appending.
func (r *Registry) Snapshot(cfg ChartConfig) []SeriesView {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var keys []string
	for k, e := range r.entities {
		if e.Class == cfg.Class {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var views []SeriesView
	for _, k := range keys {
		e := r.entities[k]
		for _, ch := range cfg.channels() {
			s, ok := e.series[ch]
			if !ok {
				continue
			}
			view := SeriesView{
				EntityKey: e.Key,
				Channel:   ch,
				Color:     e.Color,
				Dashed:    Dashed(ch),
				Points:    s.Points(),
			}
			if latest, ok := s.Latest(); ok {
				view.Current = latest.Value
			}
			views = append(views, view)
		}
	}
	return views
}
