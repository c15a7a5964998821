package key

import (
	"errors"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// ErrSealed is returned when inserting into a sealed set.
var ErrSealed = errors.New("key set is sealed")

// Set is a set of keys of one kind backed by a 64-bit Roaring bitmap.
//
// A Set has a single writer. After Seal it is read-only and safe for
// concurrent readers.
type Set[K Kind] struct {
	rb     *roaring64.Bitmap
	sealed atomic.Bool
}

// NewSet creates an empty set.
func NewSet[K Kind]() *Set[K] {
	return &Set[K]{rb: roaring64.New()}
}

// Insert encodes id and adds it. Inserting a present key is a no-op.
func (s *Set[K]) Insert(id string) error {
	v, err := Encode(id)
	if err != nil {
		return err
	}
	return s.add(v)
}

func (s *Set[K]) add(v uint64) error {
	if s.sealed.Load() {
		return ErrSealed
	}
	s.rb.Add(v)
	return nil
}

// Contains reports whether candidate encodes to a member of the set.
// Malformed candidates are never members.
func (s *Set[K]) Contains(candidate []byte) bool {
	ok, _ := s.Lookup(candidate)
	return ok
}

// Lookup is Contains that reports malformed candidates as
// ErrMalformedIdentifier instead of a miss.
func (s *Set[K]) Lookup(candidate []byte) (bool, error) {
	v, err := EncodeBytes(candidate)
	if err != nil {
		return false, err
	}
	return s.rb.Contains(v), nil
}

// Len returns the cardinality.
func (s *Set[K]) Len() uint64 {
	return s.rb.GetCardinality()
}

// Seal closes the set for writes. It is idempotent.
func (s *Set[K]) Seal() {
	if s.sealed.CompareAndSwap(false, true) {
		s.rb.RunOptimize()
	}
}

// Sealed reports whether Seal has been called.
func (s *Set[K]) Sealed() bool {
	return s.sealed.Load()
}

// SizeInBytes estimates the memory held by the set. Seal compacts it.
func (s *Set[K]) SizeInBytes() uint64 {
	return s.rb.GetSizeInBytes()
}
