package timezone

import (
	"errors"
	"log/slog"
	"sync"

	"davcal/src-server/ical/utils"
)

// A source of time zone definitions. Fetch fails for unknown identifiers.
type Provider interface {
	Fetch(tzid string) (*Definition, error)
}

type ProviderFunc func(tzid string) (*Definition, error)

func (f ProviderFunc) Fetch(tzid string) (*Definition, error) {
	return f(tzid)
}

// Registry caches definitions per identifier. It is safe for concurrent use
// so one registry can serve many documents.
type Registry struct {
	provider Provider
	reorder  bool

	mu    sync.Mutex
	cache map[string]*Definition
}

type Option func(*Registry)

// List observances without RRULE before rule-based ones
func WithObservanceReordering(enabled bool) Option {
	return func(r *Registry) {
		r.reorder = enabled
	}
}

func NewRegistry(provider Provider, opts ...Option) *Registry {
	r := &Registry{
		provider: provider,
		cache:    make(map[string]*Definition),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve an IANA identifier to its definition
func (r *Registry) Lookup(tzid string) (*Definition, error) {
	if tzid == "" {
		return nil, utils.LookupFailure("empty time zone identifier", nil)
	}
	if r == nil || r.provider == nil {
		return nil, utils.LookupFailure("no time zone provider configured", map[string]any{"tzid": tzid})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if def, ok := r.cache[tzid]; ok {
		return def, nil
	}

	def, err := r.provider.Fetch(tzid)
	if err != nil {
		if errors.Is(err, utils.ErrLookupFailure) {
			return nil, err
		}
		return nil, utils.LookupFailure("can't fetch time zone: "+err.Error(), map[string]any{"tzid": tzid})
	}
	if def == nil || def.TZID() != tzid {
		return nil, utils.LookupFailure("the found time zone ID does not match the given ID", map[string]any{"tzid": tzid})
	}
	if r.reorder {
		def = def.withRulesLast()
	}
	r.cache[tzid] = def
	slog.Debug("time zone loaded", "tzid", tzid, "observances", len(def.observances))
	return def, nil
}

// Build the usual provider: definition files from dir when given, falling
// back to the tzdata rules compiled into the binary
func DefaultProvider(dir string) Provider {
	if dir == "" {
		return NewTzdataProvider()
	}
	return ChainProvider{NewDirProvider(dir), NewTzdataProvider()}
}
