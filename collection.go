// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package prep

// MapFunc transforms a single record. If keep is false the record is dropped
// from the result. A non-nil error aborts the evaluation of the Collection.
type MapFunc func(record string) (out string, keep bool, err error)

// KeyFunc extracts a grouping key and the value to combine for that key from
// a record.
type KeyFunc func(record string) (key string, value int64, err error)

// CombineFunc merges two values which share a key. It must be associative
// and commutative, since partial results are combined per partition first and
// across partitions afterwards in no particular order.
type CombineFunc func(a, b int64) int64

// ReduceFunc folds two records into one. Like CombineFunc it must be
// associative and commutative.
type ReduceFunc func(a, b string) (string, error)

// Sum is a CombineFunc which adds its arguments.
func Sum(a, b int64) int64 { return a + b }

// Pair is a key with its combined value.
type Pair struct {
	Key   string
	Value int64
}

// Collection is the partitioned record store a Dataset wraps. Map is lazy,
// everything else evaluates the pending map stages. Implementations decide
// how many partitions are evaluated at once and where; the only guarantees
// prep relies on are the ones documented on each method.
type Collection interface {
	// Partitions returns the number of partitions.
	Partitions() int

	// Map returns a new Collection which applies fn to every record. The
	// receiver is unchanged. fn is called concurrently for different
	// records, in no particular order.
	Map(fn MapFunc) Collection

	// ReduceByKey groups records by the key returned from key and combines
	// the values of each group.
	ReduceByKey(key KeyFunc, combine CombineFunc) (PairCollection, error)

	// Reduce folds all records into one. ok is false if the Collection is
	// empty.
	Reduce(fn ReduceFunc) (result string, ok bool, err error)

	// Collect brings every record into this process.
	Collect() ([]string, error)

	// Count returns the number of records.
	Count() (int64, error)
}

// PairCollection holds the result of a ReduceByKey. Keys are unique.
type PairCollection interface {
	// Len returns the number of distinct keys without collecting them.
	Len() int

	// Collect returns every pair. The order is unspecified.
	Collect() []Pair

	// Keys returns a Collection of the distinct keys.
	Keys() Collection
}
