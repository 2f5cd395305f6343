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
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/refmap/pkg/common/moerr"
)

func newStrMap(t *testing.T, keyDestroy, valueDestroy DestroyFunc[string]) *Map[string, string] {
	m, err := New[string, string](StrHash, StrEquals, keyDestroy, valueDestroy)
	require.NoError(t, err)
	return m
}

func TestNew(t *testing.T) {
	m := newStrMap(t, nil, nil)
	require.Equal(t, uint64(0), m.Cardinality())
	require.Equal(t, kDefaultBucketCnt, len(m.buckets))
	m.Unref()
}

func TestNewInvalidArgs(t *testing.T) {
	_, err := New[string, string](nil, StrEquals, nil, nil)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidArg))

	_, err = New[string, string](StrHash, nil, nil, nil)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidArg))

	_, err = NewWithBuckets[string, string](StrHash, StrEquals, nil, nil, 0)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidArg))

	_, err = NewWithBuckets[string, string](StrHash, StrEquals, nil, nil, -3)
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidArg))
}

func TestInsertFindRoundTrip(t *testing.T) {
	m := newStrMap(t, nil, nil)
	defer m.Unref()

	const rows = 100
	for i := 0; i < rows; i++ {
		require.NoError(t, m.Insert(fmt.Sprintf("key%d", i), fmt.Sprintf("val%d", i)))
	}
	require.Equal(t, uint64(rows), m.Cardinality())

	for i := 0; i < rows; i++ {
		v, found := m.Find(fmt.Sprintf("key%d", i))
		require.True(t, found)
		require.Equal(t, fmt.Sprintf("val%d", i), v)
	}
}

func TestFindMiss(t *testing.T) {
	m := newStrMap(t, nil, nil)
	defer m.Unref()

	v, found := m.Find("unknown")
	require.False(t, found)
	require.Equal(t, "", v)

	require.NoError(t, m.Insert("key1", "val1"))
	v, found = m.Find("key2")
	require.False(t, found)
	require.Equal(t, "", v)
}

func TestReplace(t *testing.T) {
	var keyDestroyed, valueDestroyed []string
	m := newStrMap(t,
		func(k string) { keyDestroyed = append(keyDestroyed, k) },
		func(v string) { valueDestroyed = append(valueDestroyed, v) })

	require.NoError(t, m.Insert("key1", "val1"))
	require.NoError(t, m.Insert("key1", "val1-replaced"))

	// the displaced pair is destroyed exactly once, nothing else is
	require.Equal(t, []string{"key1"}, keyDestroyed)
	require.Equal(t, []string{"val1"}, valueDestroyed)
	require.Equal(t, uint64(1), m.Cardinality())

	v, found := m.Find("key1")
	require.True(t, found)
	require.Equal(t, "val1-replaced", v)

	m.Unref()
	require.Equal(t, []string{"key1", "key1"}, keyDestroyed)
	require.Equal(t, []string{"val1", "val1-replaced"}, valueDestroyed)
}

func TestUnrefDestroysEveryEntryOnce(t *testing.T) {
	destroyedKeys := make(map[string]int)
	destroyedValues := make(map[string]int)
	m := newStrMap(t,
		func(k string) { destroyedKeys[k]++ },
		func(v string) { destroyedValues[v]++ })

	const rows = 37
	for i := 0; i < rows; i++ {
		require.NoError(t, m.Insert(fmt.Sprintf("key%d", i), fmt.Sprintf("val%d", i)))
	}
	require.Empty(t, destroyedKeys)

	m.Unref()
	require.Equal(t, rows, len(destroyedKeys))
	require.Equal(t, rows, len(destroyedValues))
	for k, n := range destroyedKeys {
		require.Equal(t, 1, n, "key %s", k)
	}
	for v, n := range destroyedValues {
		require.Equal(t, 1, n, "value %s", v)
	}
}

func TestUnrefNilDestroy(t *testing.T) {
	m := newStrMap(t, nil, nil)
	require.NoError(t, m.Insert("key1", "val1"))
	// no destroy functions, teardown only drops the nodes
	m.Unref()
	require.Nil(t, m.buckets)
}

func TestRefUnrefDiscipline(t *testing.T) {
	var destroyed int
	m := newStrMap(t, nil, func(string) { destroyed++ })

	require.NoError(t, m.Insert("key1", "val1"))

	require.Equal(t, m, m.Ref())
	m.Unref()

	// still fully usable after a Ref/Unref pair
	require.Equal(t, 0, destroyed)
	v, found := m.Find("key1")
	require.True(t, found)
	require.Equal(t, "val1", v)
	require.NoError(t, m.Insert("key2", "val2"))

	m.Unref()
	require.Equal(t, 2, destroyed)
}

func TestInsertAfterRelease(t *testing.T) {
	m := newStrMap(t, nil, nil)
	m.Ref()
	m.Unref()
	m.Unref()

	err := m.Insert("key1", "val1")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))

	_, found := m.Find("key1")
	require.False(t, found)
}

func TestNilMapGuards(t *testing.T) {
	var m *Map[string, string]
	require.Nil(t, m.Ref())
	m.Unref()
	require.Equal(t, uint64(0), m.Cardinality())

	_, found := m.Find("key1")
	require.False(t, found)

	err := m.Insert("key1", "val1")
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrInvalidState))
}

func TestChainOrderAndReplaceFirstMatch(t *testing.T) {
	// a single bucket forces every key onto one chain
	m, err := NewWithBuckets[string, string](StrHash, StrEquals, nil, nil, 1)
	require.NoError(t, err)
	defer m.Unref()

	require.NoError(t, m.Insert("a", "1"))
	require.NoError(t, m.Insert("b", "2"))
	require.NoError(t, m.Insert("c", "3"))

	// new entries append at the chain tail, oldest first
	var keys []string
	for n := m.buckets[0]; n != nil; n = n.next {
		keys = append(keys, n.key)
	}
	require.Equal(t, []string{"a", "b", "c"}, keys)

	// replacing the middle key mutates in place, order unchanged
	require.NoError(t, m.Insert("b", "2-replaced"))
	keys = keys[:0]
	for n := m.buckets[0]; n != nil; n = n.next {
		keys = append(keys, n.key)
	}
	require.Equal(t, []string{"a", "b", "c"}, keys)
	require.Equal(t, uint64(3), m.Cardinality())

	v, found := m.Find("b")
	require.True(t, found)
	require.Equal(t, "2-replaced", v)
}

func TestBucketDeterminism(t *testing.T) {
	m := newStrMap(t, nil, nil)
	defer m.Unref()

	for i := 0; i < 16; i++ {
		key := fmt.Sprintf("key%d", i)
		bucket := m.hashFunc(key) % m.bucketCnt
		for j := 0; j < 8; j++ {
			require.Equal(t, bucket, m.hashFunc(key)%m.bucketCnt)
		}
	}
}

// The classic string table scenario: 12 pairs in, all found, unknown key
// missed, key1 replaced, and teardown destroys every pair exactly once.
func TestStringScenario(t *testing.T) {
	var keyDestroys, valueDestroys int
	m := newStrMap(t,
		func(string) { keyDestroys++ },
		func(string) { valueDestroys++ })

	testData := [][2]string{
		{"key1", "val1"}, {"key2", "val2"}, {"key3", "val3"},
		{"key4", "val4"}, {"key5", "val5"}, {"key6", "val6"},
		{"key7", "val7"}, {"key8", "val8"}, {"key9", "val9"},
		{"key10", "val10"}, {"key11", "val11"}, {"key12", "val12"},
	}

	for _, kv := range testData {
		require.NoError(t, m.Insert(kv[0], kv[1]))
	}
	for _, kv := range testData {
		v, found := m.Find(kv[0])
		require.True(t, found)
		require.Equal(t, kv[1], v)
	}

	v, found := m.Find("unknown")
	require.False(t, found)
	require.Equal(t, "", v)

	require.NoError(t, m.Insert("key1", "val1-replaced"))
	require.Equal(t, 1, keyDestroys)
	require.Equal(t, 1, valueDestroys)
	v, found = m.Find("key1")
	require.True(t, found)
	require.Equal(t, "val1-replaced", v)

	m.Ref()
	m.Unref()

	// teardown destroys the 12 remaining pairs, once each
	m.Unref()
	require.Equal(t, 13, keyDestroys)
	require.Equal(t, 13, valueDestroys)
}

// Identity keyed scenario: the key doubles as the value, then the value
// is replaced with nil for the same key.
func TestIdentityScenario(t *testing.T) {
	type box struct{ n int }

	m, err := New[*box, *box](PtrHash[box], PtrEquals[box], nil, nil)
	require.NoError(t, err)
	defer m.Unref()

	b := &box{n: 7}
	require.NoError(t, m.Insert(b, b))

	v, found := m.Find(b)
	require.True(t, found)
	require.True(t, v == b)

	require.NoError(t, m.Insert(b, nil))
	v, found = m.Find(b)
	require.True(t, found)
	require.Nil(t, v)

	// a different box with equal contents is a different key
	_, found = m.Find(&box{n: 7})
	require.False(t, found)
}

func BenchmarkInsert(b *testing.B) {
	m, _ := New[string, string](StrHash, StrEquals, nil, nil)
	defer m.Unref()
	keys := make([]string, 1024)
	for i := range keys {
		keys[i] = fmt.Sprintf("key%d", i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = m.Insert(keys[i&1023], "val")
	}
}

func BenchmarkFind(b *testing.B) {
	m, _ := New[string, string](StrHash, StrEquals, nil, nil)
	defer m.Unref()
	keys := make([]string, 1024)
	for i := range keys {
		keys[i] = fmt.Sprintf("key%d", i)
		_ = m.Insert(keys[i], "val")
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = m.Find(keys[i&1023])
	}
}
