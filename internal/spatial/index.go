// TerraMA2 - Environmental Monitoring, Analysis, and Alert Platform
// Copyright 2026 TerraMA2 Team
// SPDX-License-Identifier: LGPL-3.0-or-later
// https://github.com/terrama2/terrama2

// Package spatial provides a grid-bucketed bounding-box index over geometry
// samples. It backs two consumers: the per-dataset row index held by the
// dataset cache (row index -> MBR) and the station index the interpolator
// queries for k-nearest samples.
//
// Space is divided into square cells; an entry is registered in every cell
// its MBR overlaps. Queries only visit candidate cells, reducing an O(n)
// scan to O(k) for clustered data.
package spatial

import (
	"math"
	"sort"
	"sync"

	"github.com/terrama2/terrama2/internal/geom"
)

// Index is a concurrency-safe bounding-box index.
type Index struct {
	mu       sync.RWMutex
	cellSize float64
	cells    map[cellKey][]int
	entries  map[int]*entry
}

type cellKey struct {
	x, y int
}

type entry struct {
	ref    int
	env    geom.Envelope
	center geom.Coord
}

// Neighbor is one result of a nearest-neighbor query.
type Neighbor struct {
	Ref      int
	Distance float64
}

// New creates an index with the given cell size in CRS units.
// A non-positive cell size falls back to 1.
func New(cellSize float64) *Index {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Index{
		cellSize: cellSize,
		cells:    make(map[cellKey][]int),
		entries:  make(map[int]*entry),
	}
}

func (ix *Index) cellOf(x, y float64) cellKey {
	return cellKey{
		x: int(math.Floor(x / ix.cellSize)),
		y: int(math.Floor(y / ix.cellSize)),
	}
}

// Insert registers an MBR under the given reference. Re-inserting an
// existing reference replaces the previous entry.
func (ix *Index) Insert(env geom.Envelope, ref int) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, ok := ix.entries[ref]; ok {
		ix.removeLocked(ref)
	}

	e := &entry{ref: ref, env: env, center: env.Center()}
	ix.entries[ref] = e

	minCell := ix.cellOf(env.MinX, env.MinY)
	maxCell := ix.cellOf(env.MaxX, env.MaxY)
	for cx := minCell.x; cx <= maxCell.x; cx++ {
		for cy := minCell.y; cy <= maxCell.y; cy++ {
			key := cellKey{x: cx, y: cy}
			ix.cells[key] = append(ix.cells[key], ref)
		}
	}
}

// InsertPoint registers a point sample under the given reference.
func (ix *Index) InsertPoint(c geom.Coord, ref int) {
	ix.Insert(geom.Envelope{MinX: c.X, MinY: c.Y, MaxX: c.X, MaxY: c.Y}, ref)
}

// removeLocked unregisters an entry from every cell it occupies.
func (ix *Index) removeLocked(ref int) {
	e, ok := ix.entries[ref]
	if !ok {
		return
	}
	minCell := ix.cellOf(e.env.MinX, e.env.MinY)
	maxCell := ix.cellOf(e.env.MaxX, e.env.MaxY)
	for cx := minCell.x; cx <= maxCell.x; cx++ {
		for cy := minCell.y; cy <= maxCell.y; cy++ {
			key := cellKey{x: cx, y: cy}
			refs := ix.cells[key]
			for i, r := range refs {
				if r == ref {
					refs[i] = refs[len(refs)-1]
					ix.cells[key] = refs[:len(refs)-1]
					break
				}
			}
			if len(ix.cells[key]) == 0 {
				delete(ix.cells, key)
			}
		}
	}
	delete(ix.entries, ref)
}

// Size returns the number of indexed entries.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Search returns the references whose MBR intersects the query envelope,
// in ascending reference order.
func (ix *Index) Search(env geom.Envelope) []int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	seen := make(map[int]struct{})
	var result []int

	minCell := ix.cellOf(env.MinX, env.MinY)
	maxCell := ix.cellOf(env.MaxX, env.MaxY)
	for cx := minCell.x; cx <= maxCell.x; cx++ {
		for cy := minCell.y; cy <= maxCell.y; cy++ {
			for _, ref := range ix.cells[cellKey{x: cx, y: cy}] {
				if _, ok := seen[ref]; ok {
					continue
				}
				seen[ref] = struct{}{}
				if ix.entries[ref].env.Intersects(env) {
					result = append(result, ref)
				}
			}
		}
	}

	sort.Ints(result)
	return result
}

// Nearest returns up to k entries closest to the query coordinate,
// ordered by ascending Euclidean distance to the entry center.
// The search expands ring by ring over the cell grid and stops once the
// k-th best distance cannot be improved by a farther ring.
func (ix *Index) Nearest(c geom.Coord, k int) []Neighbor {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if k <= 0 || len(ix.entries) == 0 {
		return nil
	}

	center := ix.cellOf(c.X, c.Y)
	seen := make(map[int]struct{})
	var found []Neighbor

	// Upper bound on rings: enough to cover the whole populated grid.
	maxRing := ix.gridSpanLocked() + 1

	for ring := 0; ring <= maxRing; ring++ {
		for _, key := range ringCells(center, ring) {
			for _, ref := range ix.cells[key] {
				if _, ok := seen[ref]; ok {
					continue
				}
				seen[ref] = struct{}{}
				e := ix.entries[ref]
				found = append(found, Neighbor{
					Ref:      ref,
					Distance: math.Hypot(e.center.X-c.X, e.center.Y-c.Y),
				})
			}
		}

		if len(found) >= k {
			sort.Slice(found, func(i, j int) bool { return found[i].Distance < found[j].Distance })
			// Entries in farther rings are at least (ring) cells away from
			// the query cell; once the k-th distance is below that bound the
			// result is final.
			bound := float64(ring) * ix.cellSize
			if found[k-1].Distance <= bound {
				return found[:k]
			}
		}
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Distance < found[j].Distance })
	if len(found) > k {
		found = found[:k]
	}
	return found
}

// gridSpanLocked returns the width of the populated cell grid in cells.
func (ix *Index) gridSpanLocked() int {
	if len(ix.cells) == 0 {
		return 0
	}
	minX, maxX := math.MaxInt32, math.MinInt32
	minY, maxY := math.MaxInt32, math.MinInt32
	for key := range ix.cells {
		if key.x < minX {
			minX = key.x
		}
		if key.x > maxX {
			maxX = key.x
		}
		if key.y < minY {
			minY = key.y
		}
		if key.y > maxY {
			maxY = key.y
		}
	}
	return max(maxX-minX, maxY-minY) + 1
}

// ringCells enumerates the cells on the square ring at the given radius
// around a center cell. Ring 0 is the center cell itself.
func ringCells(center cellKey, ring int) []cellKey {
	if ring == 0 {
		return []cellKey{center}
	}
	cells := make([]cellKey, 0, 8*ring)
	for dx := -ring; dx <= ring; dx++ {
		cells = append(cells,
			cellKey{x: center.x + dx, y: center.y - ring},
			cellKey{x: center.x + dx, y: center.y + ring})
	}
	for dy := -ring + 1; dy <= ring-1; dy++ {
		cells = append(cells,
			cellKey{x: center.x - ring, y: center.y + dy},
			cellKey{x: center.x + ring, y: center.y + dy})
	}
	return cells
}
