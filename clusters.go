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

import (
	"sort"
)

// ClusteringAlgorithm groups facets it judges equivalent. It gets the
// materialized facet table and nothing else. The order of facets is
// arbitrary, so an implementation must give the same clusters for any
// permutation of the same input, and must put every facet in exactly one
// cluster.
type ClusteringAlgorithm interface {
	GetClusters(facets []Facet) *Clusters
}

// ClusteringFunc can be wrapped around a function to make it implement
// ClusteringAlgorithm.
type ClusteringFunc func(facets []Facet) *Clusters

// GetClusters implements ClusteringAlgorithm.
func (f ClusteringFunc) GetClusters(facets []Facet) *Clusters { return f(facets) }

// Cluster is a set of facets judged equivalent, identified by Key.
type Cluster struct {
	Key    string
	Facets []Facet
}

// Size returns the number of facets in the cluster.
func (c *Cluster) Size() int { return len(c.Facets) }

// Total returns the sum of the counts of all facets in the cluster.
func (c *Cluster) Total() int64 {
	var n int64
	for _, f := range c.Facets {
		n += f.Count
	}
	return n
}

// Contains reports whether value is one of the cluster's facets.
func (c *Cluster) Contains(value string) bool {
	for _, f := range c.Facets {
		if f.Value == value {
			return true
		}
	}
	return false
}

// Clusters is the result of a ClusteringAlgorithm, ordered by key.
type Clusters struct {
	byKey map[string]*Cluster
}

// NewClusters returns an empty Clusters.
func NewClusters() *Clusters {
	return &Clusters{byKey: make(map[string]*Cluster)}
}

// Add puts f into the cluster identified by key, creating it if needed.
// The cluster's facets stay sorted by value. Add must not be called
// concurrently with any other method.
func (cs *Clusters) Add(key string, f Facet) {
	c, ok := cs.byKey[key]
	if !ok {
		c = &Cluster{Key: key}
		cs.byKey[key] = c
	}
	i := sort.Search(len(c.Facets), func(i int) bool { return c.Facets[i].Value > f.Value })
	c.Facets = append(c.Facets, Facet{})
	copy(c.Facets[i+1:], c.Facets[i:])
	c.Facets[i] = f
}

// All returns every cluster sorted by key, each with its facets sorted by
// value. Once all facets are added, All and ClustersWithSizeGreaterThan are
// safe for concurrent use.
func (cs *Clusters) All() []*Cluster {
	ret := make([]*Cluster, 0, len(cs.byKey))
	for _, c := range cs.byKey {
		ret = append(ret, c)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Key < ret[j].Key })
	return ret
}

// ClustersWithSizeGreaterThan returns the clusters with more than n facets.
// Clusters of size one are rarely interesting, so n is usually 1.
func (cs *Clusters) ClustersWithSizeGreaterThan(n int) []*Cluster {
	ret := make([]*Cluster, 0)
	for _, c := range cs.All() {
		if c.Size() > n {
			ret = append(ret, c)
		}
	}
	return ret
}

// Len returns the number of clusters.
func (cs *Clusters) Len() int { return len(cs.byKey) }
