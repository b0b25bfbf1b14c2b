package segmentation

import (
	"math"
	"math/rand"
)

type clustering struct {
	labels     []int
	centroids  [][]float64
	inertia    float64
	iterations int
}

func sqDist(a, b []float64) float64 {
	var d float64
	for i := range a {
		x := a[i] - b[i]
		d += x * x
	}
	return d
}

// nearest returns the closest centroid. Ties go to the lowest index, so
// equal points always land in the same cluster.
func nearest(p []float64, centroids [][]float64) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for c, centroid := range centroids {
		if d := sqDist(p, centroid); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

// seedCentroids picks k starting centroids with k-means++: each next
// centroid is drawn with probability proportional to its squared
// distance from the centroids chosen so far.
func seedCentroids(points [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(points[rng.Intn(len(points))]))

	dist := make([]float64, len(points))
	for len(centroids) < k {
		var total float64
		for i, p := range points {
			_, d := nearest(p, centroids)
			dist[i] = d
			total += d
		}
		if total == 0 {
			centroids = append(centroids, clone(points[rng.Intn(len(points))]))
			continue
		}
		target := rng.Float64() * total
		pick := len(points) - 1
		for i, d := range dist {
			target -= d
			if target < 0 {
				pick = i
				break
			}
		}
		centroids = append(centroids, clone(points[pick]))
	}
	return centroids
}

// lloyd refines seeded centroids until the total centroid movement falls
// to tol or below, or maxIter rounds have run. A cluster that loses all
// its points keeps its previous centroid.
func lloyd(points [][]float64, centroids [][]float64, maxIter int, tol float64) clustering {
	k, dims := len(centroids), len(points[0])
	labels := make([]int, len(points))
	res := clustering{labels: labels, centroids: centroids}

	for res.iterations < maxIter {
		res.iterations++
		for i, p := range points {
			labels[i], _ = nearest(p, centroids)
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, dims)
		}
		for i, p := range points {
			c := labels[i]
			counts[c]++
			for j, x := range p {
				sums[c][j] += x
			}
		}

		var shift float64
		for c := range centroids {
			if counts[c] == 0 {
				continue
			}
			for j := range sums[c] {
				sums[c][j] /= float64(counts[c])
			}
			shift += sqDist(sums[c], centroids[c])
			centroids[c] = sums[c]
		}
		if shift <= tol {
			break
		}
	}

	res.inertia = 0
	for i, p := range points {
		var d float64
		labels[i], d = nearest(p, centroids)
		res.inertia += d
	}
	return res
}

// kmeans runs restarts independent seedings from one random source and
// keeps the lowest inertia; the first restart wins ties.
func kmeans(points [][]float64, k int, seed int64, restarts, maxIter int, tol float64) clustering {
	rng := rand.New(rand.NewSource(seed))
	var best clustering
	for r := 0; r < restarts; r++ {
		res := lloyd(points, seedCentroids(points, k, rng), maxIter, tol)
		if r == 0 || res.inertia < best.inertia {
			best = res
		}
	}
	return best
}

func clone(p []float64) []float64 {
	out := make([]float64, len(p))
	copy(out, p)
	return out
}
