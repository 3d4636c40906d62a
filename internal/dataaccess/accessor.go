// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package dataaccess

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Accessor materializes the datasets of one series under a filter. The
// returned map is keyed by dataset id; datasets the filter eliminated
// entirely are absent. Implementations return ErrEmptyDataSeries when the
// series holds zero datasets and ErrNoData when the filter matched no
// rows in any dataset.
type Accessor interface {
	GetSeries(ctx context.Context, filter Filter) (map[uint64]DataSetSeries, error)
}

// AccessorFactory builds an accessor for one provider/series pair.
type AccessorFactory func(provider *DataProvider, series *DataSeries) (Accessor, error)

// AccessorRegistry maps provider kinds to accessor factories. It is
// injected wherever series access happens; there is no process-global
// registry.
type AccessorRegistry struct {
	mu        sync.RWMutex
	factories map[string]AccessorFactory
}

// NewAccessorRegistry creates an empty registry.
func NewAccessorRegistry() *AccessorRegistry {
	return &AccessorRegistry{factories: make(map[string]AccessorFactory)}
}

// Register binds a provider kind to a factory. Later registrations for
// the same kind replace earlier ones.
func (r *AccessorRegistry) Register(kind string, f AccessorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToUpper(kind)] = f
}

// Make builds an accessor for the series using the factory registered
// for its provider's kind.
func (r *AccessorRegistry) Make(provider *DataProvider, series *DataSeries) (Accessor, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: series %q has no provider", ErrInvalidDataSeries, series.Name)
	}
	r.mu.RLock()
	f, ok := r.factories[strings.ToUpper(provider.Kind)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no accessor registered for provider kind %q", provider.Kind)
	}
	return f(provider, series)
}

// Kinds returns the registered provider kinds, sorted.
func (r *AccessorRegistry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
