// Package fdset records which descriptors a pool currently owns.
//
// A Set is a Roaring bitmap keyed by descriptor number behind a mutex.
// Descriptors are small dense integers, which is the case roaring's array
// and run containers compress best.
package fdset

import (
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/fdscope/internal/conv"
)

// Set is a concurrency-safe set of descriptors.
type Set struct {
	mu sync.Mutex
	rb *roaring.Bitmap
}

// New creates an empty set.
func New() *Set {
	return &Set{rb: roaring.New()}
}

// Add records fd. Negative descriptors are ignored.
func (s *Set) Add(fd int) {
	key, err := conv.IntToUint32(fd)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.rb.Add(key)
	s.mu.Unlock()
}

// Remove forgets fd.
func (s *Set) Remove(fd int) {
	key, err := conv.IntToUint32(fd)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.rb.Remove(key)
	s.mu.Unlock()
}

// Contains reports whether fd is recorded.
func (s *Set) Contains(fd int) bool {
	key, err := conv.IntToUint32(fd)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rb.Contains(key)
}

// Len returns the number of recorded descriptors.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.rb.GetCardinality())
}

// Slice returns the recorded descriptors in ascending order.
func (s *Set) Slice() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]int, 0, s.rb.GetCardinality())
	it := s.rb.Iterator()
	for it.HasNext() {
		fd, err := conv.Uint32ToInt(it.Next())
		if err != nil {
			continue
		}
		out = append(out, fd)
	}
	return out
}
