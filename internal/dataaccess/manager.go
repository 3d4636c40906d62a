// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

package dataaccess

import (
	"fmt"
	"sync"
)

// DataManager resolves series and providers by id or name. The service
// layer owns one manager; operators reach it through the run context.
type DataManager interface {
	DataSeries(id uint64) (*DataSeries, error)
	DataSeriesByName(name string) (*DataSeries, error)
	DataProvider(id uint64) (*DataProvider, error)
}

// MemoryDataManager is a mutex-guarded in-memory DataManager. Production
// deployments load it from the configuration store at startup; tests
// populate it directly.
type MemoryDataManager struct {
	mu        sync.RWMutex
	series    map[uint64]*DataSeries
	byName    map[string]*DataSeries
	providers map[uint64]*DataProvider
}

// NewMemoryDataManager creates an empty manager.
func NewMemoryDataManager() *MemoryDataManager {
	return &MemoryDataManager{
		series:    make(map[uint64]*DataSeries),
		byName:    make(map[string]*DataSeries),
		providers: make(map[uint64]*DataProvider),
	}
}

// AddDataSeries registers a series, replacing any series with the same id.
func (m *MemoryDataManager) AddDataSeries(s *DataSeries) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.series[s.ID] = s
	m.byName[s.Name] = s
}

// AddDataProvider registers a provider.
func (m *MemoryDataManager) AddDataProvider(p *DataProvider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[p.ID] = p
}

// DataSeries returns the series with the given id.
func (m *MemoryDataManager) DataSeries(id uint64) (*DataSeries, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.series[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrInvalidDataSeries, id)
	}
	return s, nil
}

// DataSeriesByName returns the series with the given name.
func (m *MemoryDataManager) DataSeriesByName(name string) (*DataSeries, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: name %q", ErrInvalidDataSeries, name)
	}
	return s, nil
}

// DataProvider returns the provider with the given id.
func (m *MemoryDataManager) DataProvider(id uint64) (*DataProvider, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.providers[id]
	if !ok {
		return nil, fmt.Errorf("data provider %d not found", id)
	}
	return p, nil
}
