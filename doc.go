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

// Package prep is a kit for preparing large, partitioned collections of
// delimited text records. It contains the record pipeline, the contracts its
// pluggable pieces must satisfy, and basic implementations of them. More
// sophisticated implementations which rely on other software live in
// sub-packages.
//
// A Dataset moves through the following pieces.
//
// 1. Collection
//
//    A prep.Collection is the partitioned, lazily evaluated sequence of raw
//    records a Dataset wraps. It knows how to map a function over every
//    record, how to group and combine records by key, and how to bring
//    results back to the calling process. It knows nothing about columns.
//    The local package runs a Collection on goroutines in this process; the
//    file, s3, kafka and sql packages fill one from the outside world.
//
// 2. Dialect
//
//    A Dialect turns a record into an ordered slice of column values and
//    back again. A Dataset has exactly one Dialect for its whole lifetime and
//    every transformation uses it, so a record never carries its own
//    delimiter. CSV and TSV are built in; anything else can implement the
//    interface.
//
// 3. Transformations
//
//    Deduplicate, RemoveRows, Impute, Replace, Split, Flag and MapByFlag each
//    return a new Dataset. Apart from Deduplicate they are single map stages
//    over independent records, and they are fused and run when an action
//    (Collect, Count, ListFacets, ...) evaluates the Dataset. The decisions
//    about what counts as missing, how to split or what to flag are made by
//    small strategy values; see MissingDataHandler, ColumnSplitter and
//    MarkerPredicate.
//
// 4. Facets and Clusters
//
//    ListFacets counts the distinct values of one column with a reduction
//    that does not care about partition boundaries. Clusters materializes that
//    table in this process (the only place a Dataset is pulled together) and
//    hands it to a ClusteringAlgorithm such as the ones in the cluster
//    package.
//
// 5. Homomorphic encryption
//
//    EncryptHomomorphically replaces one numeric column by a Paillier
//    ciphertext and returns an EncryptedDataset which keeps the key pair and
//    the Dialect, so that sums can be computed over the encrypted column
//    without decrypting a single record.
package prep
