package factory

import (
	"context"
	"fmt"
	"sync"

	"github.com/warp/punchclock/attendance"
)

// =============================================================================
// CONFIG PROVIDER - Versioned labor config with snapshot reads
// =============================================================================

// ConfigRecordStore persists labor config documents. Each save appends a new
// version; version 0 means nothing was ever saved.
type ConfigRecordStore interface {
	LatestLaborConfig(ctx context.Context) (configJSON string, version int, err error)
	SaveLaborConfig(ctx context.Context, configJSON string) (version int, err error)
}

// ConfigProvider serves LaborConfig snapshots from a ConfigRecordStore.
// It implements attendance.ConfigSource.
//
// The parsed config is cached per stored version. Readers receive a copy,
// so an update that lands mid-computation is only seen by the next read.
type ConfigProvider struct {
	store   ConfigRecordStore
	factory *ConfigFactory

	mu      sync.RWMutex
	cached  attendance.LaborConfig
	version int
	loaded  bool
}

func NewConfigProvider(store ConfigRecordStore, factory *ConfigFactory) *ConfigProvider {
	if factory == nil {
		factory = NewConfigFactory()
	}
	return &ConfigProvider{store: store, factory: factory}
}

// LaborConfig returns the configuration of the newest stored version, or the
// defaults when none is stored.
func (p *ConfigProvider) LaborConfig(ctx context.Context) (attendance.LaborConfig, error) {
	cfg, _, err := p.Current(ctx)
	return cfg, err
}

// Current returns the config in force and its version.
func (p *ConfigProvider) Current(ctx context.Context) (attendance.LaborConfig, int, error) {
	doc, version, err := p.store.LatestLaborConfig(ctx)
	if err != nil {
		return attendance.LaborConfig{}, 0, fmt.Errorf("load labor config: %w", err)
	}

	p.mu.RLock()
	if p.loaded && p.version == version {
		cfg := p.cached
		p.mu.RUnlock()
		return cfg, version, nil
	}
	p.mu.RUnlock()

	cfg, err := p.factory.Build(doc)
	if err != nil {
		return attendance.LaborConfig{}, 0, fmt.Errorf("labor config version %d: %w", version, err)
	}

	p.mu.Lock()
	p.cached, p.version, p.loaded = cfg, version, true
	p.mu.Unlock()
	return cfg, version, nil
}

// Update validates patch, merges it over the defaults and stores the result
// as a new version. Keys missing from patch revert to their defaults.
func (p *ConfigProvider) Update(ctx context.Context, patch LaborConfigJSON) (attendance.LaborConfig, int, error) {
	if err := p.factory.Validate(patch); err != nil {
		return attendance.LaborConfig{}, 0, err
	}
	return p.save(ctx, Merge(attendance.DefaultLaborConfig(), patch))
}

// Reset stores the defaults as a new version.
func (p *ConfigProvider) Reset(ctx context.Context) (attendance.LaborConfig, int, error) {
	return p.save(ctx, attendance.DefaultLaborConfig())
}

func (p *ConfigProvider) save(ctx context.Context, cfg attendance.LaborConfig) (attendance.LaborConfig, int, error) {
	doc, err := Marshal(cfg)
	if err != nil {
		return attendance.LaborConfig{}, 0, fmt.Errorf("encode labor config: %w", err)
	}
	version, err := p.store.SaveLaborConfig(ctx, doc)
	if err != nil {
		return attendance.LaborConfig{}, 0, fmt.Errorf("save labor config: %w", err)
	}

	p.mu.Lock()
	p.cached, p.version, p.loaded = cfg, version, true
	p.mu.Unlock()
	return cfg, version, nil
}
