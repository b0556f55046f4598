package draw

import "errors"

// Settings mirrors the draw section of the application configuration.
type Settings struct {
	Strategy  string
	Seed      int64
	LogEvents bool
}

// Options translates settings into engine options. A zero seed gives each
// engine its own clock-seeded source.
func (s Settings) Options() ([]Option, error) {
	strategy, err := ParseStrategy(s.Strategy)
	if err != nil {
		return nil, err
	}
	return []Option{
		WithStrategy(strategy),
		WithRand(NewRandSource(s.Seed)),
		WithEventMirroring(s.LogEvents),
	}, nil
}

// NewStoreEngine builds an engine that reads its roster from store and
// records every run in the store's audit log.
func NewStoreEngine(store *SQLStore, settings Settings) (*Engine, error) {
	if store == nil {
		return nil, errors.New("draw engine requires a store")
	}
	opts, err := settings.Options()
	if err != nil {
		return nil, err
	}
	opts = append(opts, WithAuditSink(store))
	return NewEngine(store, opts...)
}
