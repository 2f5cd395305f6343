// Copyright 2022 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package refmap

import (
	"github.com/matrixorigin/refmap/pkg/common/moerr"
)

const kDefaultBucketCnt = 11

// HashFunc maps a key to a 32 bit hash value. Keys that are equal under
// the paired EqualFunc must produce the same hash value.
type HashFunc[K any] func(K) uint32

// EqualFunc reports whether two keys are the same key.
type EqualFunc[K any] func(a, b K) bool

// DestroyFunc releases a key or value once the map is done with it. A nil
// DestroyFunc means the map does not own that slot.
type DestroyFunc[T any] func(T)

type node[K any, V any] struct {
	key   K
	value V
	next  *node[K, V]
}

// Map is a reference counted hash table with caller supplied hash,
// equality and destroy functions. The bucket count is fixed at creation
// and each bucket holds a singly linked chain in insertion order.
//
// Map is not safe for concurrent use. The reference count and the bucket
// chains are unprotected; coordinate externally or keep a single owner.
type Map[K any, V any] struct {
	refCnt    int
	bucketCnt uint32
	elemCnt   uint64
	buckets   []*node[K, V]

	hashFunc     HashFunc[K]
	equalFunc    EqualFunc[K]
	keyDestroy   DestroyFunc[K]
	valueDestroy DestroyFunc[V]
}

// New creates a map with the default bucket count. hash and equal are
// required. keyDestroy and valueDestroy may be nil, in which case the map
// does not own the keys or values it stores.
//
// The returned map has a reference count of 1; pair it with one Unref.
func New[K any, V any](hash HashFunc[K], equal EqualFunc[K], keyDestroy DestroyFunc[K], valueDestroy DestroyFunc[V]) (*Map[K, V], error) {
	return NewWithBuckets(hash, equal, keyDestroy, valueDestroy, kDefaultBucketCnt)
}

// NewWithBuckets is New with a caller chosen bucket count. The count
// never changes afterwards; there is no load factor growth.
func NewWithBuckets[K any, V any](hash HashFunc[K], equal EqualFunc[K], keyDestroy DestroyFunc[K], valueDestroy DestroyFunc[V], bucketCnt int) (*Map[K, V], error) {
	if hash == nil {
		return nil, moerr.NewInvalidArg("hash function", hash)
	}
	if equal == nil {
		return nil, moerr.NewInvalidArg("equal function", equal)
	}
	if bucketCnt <= 0 {
		return nil, moerr.NewInvalidArg("bucket count", bucketCnt)
	}
	return &Map[K, V]{
		refCnt:       1,
		bucketCnt:    uint32(bucketCnt),
		buckets:      make([]*node[K, V], bucketCnt),
		hashFunc:     hash,
		equalFunc:    equal,
		keyDestroy:   keyDestroy,
		valueDestroy: valueDestroy,
	}, nil
}

// Ref increases the reference count and returns the map. Each Ref must be
// paired with one Unref.
func (m *Map[K, V]) Ref() *Map[K, V] {
	if m == nil {
		return m
	}
	m.refCnt++
	return m
}

// Unref decreases the reference count. When it reaches zero every stored
// key and value is handed to its destroy function, key before value, and
// the buckets are released. Unref past zero is undefined.
func (m *Map[K, V]) Unref() {
	if m == nil {
		return
	}
	m.refCnt--
	if m.refCnt > 0 {
		return
	}

	for i, n := range m.buckets {
		for n != nil {
			if m.keyDestroy != nil {
				m.keyDestroy(n.key)
			}
			if m.valueDestroy != nil {
				m.valueDestroy(n.value)
			}
			next := n.next
			n.next = nil
			n = next
		}
		m.buckets[i] = nil
	}
	m.buckets = nil
	m.elemCnt = 0
}

// Insert stores the key/value pair, taking ownership of both. If an equal
// key is already present, the first such entry in its chain is replaced in
// place: the old key and value are destroyed before the new pair is
// stored. Otherwise a new entry is appended at the chain tail.
//
// On error the map is left exactly as it was and ownership of key/value
// stays with the caller.
func (m *Map[K, V]) Insert(key K, value V) error {
	if m == nil {
		return moerr.NewInvalidState("insert on nil map")
	}
	if m.buckets == nil {
		return moerr.NewInvalidState("insert on released map")
	}

	bucket := m.hashFunc(key) % m.bucketCnt

	tail := &m.buckets[bucket]
	for n := m.buckets[bucket]; n != nil; n = n.next {
		tail = &n.next

		if m.equalFunc(key, n.key) {
			// replace the entry in place
			if m.keyDestroy != nil {
				m.keyDestroy(n.key)
			}
			if m.valueDestroy != nil {
				m.valueDestroy(n.value)
			}
			n.key = key
			n.value = value
			return nil
		}
	}

	*tail = &node[K, V]{key: key, value: value}
	m.elemCnt++
	return nil
}

// Find returns the value stored under the first equal key and true, or the
// zero value and false on a miss. The returned value remains owned by the
// map; a replacing Insert or the final Unref may destroy it.
func (m *Map[K, V]) Find(key K) (V, bool) {
	var zero V
	if m == nil || m.buckets == nil {
		return zero, false
	}

	bucket := m.hashFunc(key) % m.bucketCnt

	for n := m.buckets[bucket]; n != nil; n = n.next {
		if m.equalFunc(key, n.key) {
			return n.value, true
		}
	}
	return zero, false
}

// Cardinality returns the number of live entries.
func (m *Map[K, V]) Cardinality() uint64 {
	if m == nil {
		return 0
	}
	return m.elemCnt
}
