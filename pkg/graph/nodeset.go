package graph

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// NodeSet is a concurrency-safe set of node indices backed by a Roaring bitmap.
type NodeSet struct {
	bitmap *roaring.Bitmap
	mu     sync.RWMutex
}

// NewNodeSet creates an empty set.
func NewNodeSet() *NodeSet {
	return &NodeSet{bitmap: roaring.New()}
}

// Add inserts idx and reports whether it was absent.
func (s *NodeSet) Add(idx uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bitmap.CheckedAdd(idx)
}

// Contains reports whether idx is in the set.
func (s *NodeSet) Contains(idx uint32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bitmap.Contains(idx)
}

// Len returns the number of members.
func (s *NodeSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int(s.bitmap.GetCardinality())
}

// Merge adds every index in indices and returns the ones that were new.
func (s *NodeSet) Merge(indices []uint32) []uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var added []uint32
	for _, idx := range indices {
		if s.bitmap.CheckedAdd(idx) {
			added = append(added, idx)
		}
	}
	return added
}

func (s *NodeSet) snapshot() *roaring.Bitmap {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bitmap.Clone()
}

// Clone returns an independent copy.
func (s *NodeSet) Clone() *NodeSet {
	return &NodeSet{bitmap: s.snapshot()}
}

// ToArray returns the members in ascending order.
func (s *NodeSet) ToArray() []uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bitmap.ToArray()
}

// Each calls fn for every member in ascending order until fn returns false.
// fn must not modify the set.
func (s *NodeSet) Each(fn func(idx uint32) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	it := s.bitmap.Iterator()
	for it.HasNext() {
		if !fn(it.Next()) {
			return
		}
	}
}
