package textmining

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrInvalidK is returned when the cluster count is outside [1, len(points)].
var ErrInvalidK = errors.New("invalid cluster count")

// KMeans partitions points with Lloyd's algorithm. Centroids are seeded with
// k-means++ from a fixed seed and the best of NInit runs (lowest inertia) is
// kept, so equal inputs always give equal labels.
type KMeans struct {
	K       int
	Seed    int64
	NInit   int
	MaxIter int
	Tol     float64
}

// NewKMeans returns a KMeans with ten restarts, 300 iterations and 1e-4
// relative tolerance.
func NewKMeans(k int, seed int64) *KMeans {
	return &KMeans{K: k, Seed: seed, NInit: 10, MaxIter: 300, Tol: 1e-4}
}

// Clustering is the outcome of a KMeans fit.
type Clustering struct {
	Labels    []int
	Centroids [][]float64
	Inertia   float64
}

// Fit clusters points, all of which must share one dimension.
func (km *KMeans) Fit(points [][]float64) (*Clustering, error) {
	n := len(points)
	if km.K < 1 || km.K > n {
		return nil, fmt.Errorf("%w: k=%d with %d points", ErrInvalidK, km.K, n)
	}
	dim := len(points[0])
	for i, p := range points {
		if len(p) != dim {
			return nil, fmt.Errorf("point %d has dimension %d, want %d", i, len(p), dim)
		}
	}

	nInit := km.NInit
	if nInit < 1 {
		nInit = 1
	}
	rng := rand.New(rand.NewSource(km.Seed))
	tol := km.Tol * meanVariance(points, dim)

	var best *Clustering
	for run := 0; run < nInit; run++ {
		c := km.lloyd(points, seedPlusPlus(points, km.K, rng), tol)
		if best == nil || c.Inertia < best.Inertia {
			best = c
		}
	}
	return best, nil
}

func (km *KMeans) lloyd(points, centroids [][]float64, tol float64) *Clustering {
	maxIter := km.MaxIter
	if maxIter < 1 {
		maxIter = 300
	}
	labels := make([]int, len(points))
	for it := 0; it < maxIter; it++ {
		assign(points, centroids, labels)
		next := recompute(points, centroids, labels)

		shift := 0.0
		for j := range centroids {
			d := floats.Distance(centroids[j], next[j], 2)
			shift += d * d
		}
		centroids = next
		if shift <= tol {
			break
		}
	}
	inertia := assign(points, centroids, labels)
	return &Clustering{Labels: labels, Centroids: centroids, Inertia: inertia}
}

// assign labels every point with its nearest centroid (lowest index on ties)
// and returns the summed squared distance.
func assign(points, centroids [][]float64, labels []int) float64 {
	inertia := 0.0
	for i, p := range points {
		bestJ, bestD := 0, math.Inf(1)
		for j, c := range centroids {
			d := floats.Distance(p, c, 2)
			if d*d < bestD {
				bestJ, bestD = j, d*d
			}
		}
		labels[i] = bestJ
		inertia += bestD
	}
	return inertia
}

// recompute moves each centroid to the mean of its members. An empty cluster
// takes the point lying farthest from its current centroid.
func recompute(points, centroids [][]float64, labels []int) [][]float64 {
	dim := len(points[0])
	next := make([][]float64, len(centroids))
	counts := make([]int, len(centroids))
	for j := range next {
		next[j] = make([]float64, dim)
	}
	for i, p := range points {
		floats.Add(next[labels[i]], p)
		counts[labels[i]]++
	}
	for j := range next {
		if counts[j] > 0 {
			floats.Scale(1/float64(counts[j]), next[j])
			continue
		}
		far, farD := 0, -1.0
		for i, p := range points {
			if d := floats.Distance(p, centroids[labels[i]], 2); d > farD {
				far, farD = i, d
			}
		}
		copy(next[j], points[far])
	}
	return next
}

// seedPlusPlus picks k starting centroids: the first uniformly, the rest with
// probability proportional to squared distance from the nearest chosen one.
func seedPlusPlus(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(points)
	chosen := make([]bool, n)
	first := rng.Intn(n)
	chosen[first] = true
	centroids := [][]float64{clone(points[first])}

	dist := make([]float64, n)
	for len(centroids) < k {
		total := 0.0
		for i, p := range points {
			best := math.Inf(1)
			for _, c := range centroids {
				d := floats.Distance(p, c, 2)
				if d*d < best {
					best = d * d
				}
			}
			dist[i] = best
			total += best
		}

		pick := -1
		if total > 0 {
			target := rng.Float64() * total
			acc := 0.0
			for i, d := range dist {
				acc += d
				if d > 0 && acc >= target {
					pick = i
					break
				}
			}
		}
		if pick < 0 {
			// every point coincides with a centroid; take an unused one
			for i := range points {
				if !chosen[i] {
					pick = i
					break
				}
			}
		}
		chosen[pick] = true
		centroids = append(centroids, clone(points[pick]))
	}
	return centroids
}

func meanVariance(points [][]float64, dim int) float64 {
	if len(points) < 2 || dim == 0 {
		return 0
	}
	col := make([]float64, len(points))
	sum := 0.0
	for d := 0; d < dim; d++ {
		for i, p := range points {
			col[i] = p[d]
		}
		_, variance := stat.PopMeanVariance(col, nil)
		sum += variance
	}
	return sum / float64(dim)
}

func clone(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
