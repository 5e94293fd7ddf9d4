package analysis

import "antifake/internal/domain"

const (
	shingleSize         = 3
	similarityThreshold = 0.80
	shortTokenLimit     = 3

	// maxSimilaritySample caps the pairwise similarity scan at a fixed
	// quadratic ceiling; reviews past this bound are never compared.
	maxSimilaritySample = 450

	// minClusterSize: near-duplicate components smaller than this are left
	// untouched by the filter.
	minClusterSize = 3
)

// exactGroups groups review indices by their normalized text.
func exactGroups(reviews []domain.Review) map[string][]int {
	groups := make(map[string][]int, len(reviews))
	for i, r := range reviews {
		key := normalizeText(r.Text)
		groups[key] = append(groups[key], i)
	}
	return groups
}

// exactDupRatio = groups with at least two members / distinct groups.
func exactDupRatio(groups map[string][]int) float64 {
	dup := 0
	for _, idxs := range groups {
		if len(idxs) >= 2 {
			dup++
		}
	}
	return float64(dup) / float64(max(1, len(groups)))
}

// similaritySample tokenizes and shingles the first min(n, maxSimilaritySample)
// reviews in input order.
func similaritySample(reviews []domain.Review) []map[string]struct{} {
	n := min(len(reviews), maxSimilaritySample)
	sh := make([]map[string]struct{}, n)
	for i := 0; i < n; i++ {
		sh[i] = Shingles(Tokenize(reviews[i].Text), shingleSize)
	}
	return sh
}

// unionFind is an index arena with a parent slice; find uses path halving,
// union attaches one root to the other.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return &unionFind{parent: p}
}

func (u *unionFind) find(x int) int {
	for u.parent[x] != x {
		u.parent[x] = u.parent[u.parent[x]]
		x = u.parent[x]
	}
	return x
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[rb] = ra
	}
}

// nearClusters unions every pair of sample members at or above the
// similarity threshold and returns the connected components, each listed in
// ascending index order.
func nearClusters(sample []map[string]struct{}) map[int][]int {
	uf := newUnionFind(len(sample))
	for i := range sample {
		for j := i + 1; j < len(sample); j++ {
			if Jaccard(sample[i], sample[j]) >= similarityThreshold {
				uf.union(i, j)
			}
		}
	}
	clusters := make(map[int][]int)
	for i := range sample {
		root := uf.find(i)
		clusters[root] = append(clusters[root], i)
	}
	return clusters
}
