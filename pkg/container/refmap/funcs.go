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
	"hash/crc32"
	"unsafe"
)

// StrHash hashes the content of the key. Deterministic per content and
// case sensitive.
func StrHash(key string) uint32 {
	return crc32.ChecksumIEEE([]byte(key))
}

// StrEquals reports full content equality.
func StrEquals(a, b string) bool {
	return a == b
}

// PtrHash hashes the bit pattern of the pointer itself, not what it
// points to. Pair it with PtrEquals for identity keyed maps.
func PtrHash[T any](key *T) uint32 {
	p := uint64(uintptr(unsafe.Pointer(key)))
	return uint32(p>>32) ^ uint32(p)
}

// PtrEquals reports pointer identity.
func PtrEquals[T any](a, b *T) bool {
	return a == b
}
