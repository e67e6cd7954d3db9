package nocturneagent

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultTimeWindow is the default maximum temporal offset
// for which two crossing paths count as intersecting.
const DefaultTimeWindow = 50

const geomEpsilon = 1e-9

// An Offset is an optional number of timesteps.
type Offset struct {
	Steps int
	OK    bool
}

// MinOffset returns the smaller of two offsets, ignoring
// offsets which are not set.
func MinOffset(a, b Offset) Offset {
	if !a.OK {
		return b
	} else if !b.OK || a.Steps <= b.Steps {
		return a
	}
	return b
}

// String returns the number of steps, or "n/a".
func (o Offset) String() string {
	if !o.OK {
		return "n/a"
	}
	return strconv.Itoa(o.Steps)
}

// PairwiseIntersections finds crossing paths between every
// unordered pair of agents.
//
// For each agent, it returns the number of other agents
// whose path crosses within window timesteps, and the
// minimum temporal offset over all crossings the agent
// takes part in (regardless of window).
// Results are indexed like traj.IDs.
func PairwiseIntersections(traj *Trajectories, window int) (counts []int,
	minOffsets []Offset) {
	n := len(traj.IDs)
	counts = make([]int, n)
	minOffsets = make([]Offset, n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			offset := pathOffset(traj.Samples[i], traj.Samples[j])
			if !offset.OK {
				continue
			}
			if offset.Steps < window {
				counts[i]++
				counts[j]++
			}
			minOffsets[i] = MinOffset(minOffsets[i], offset)
			minOffsets[j] = MinOffset(minOffsets[j], offset)
		}
	}
	return
}

// pathOffset computes the minimum temporal offset between
// two sample rows over the points where their paths
// intersect.
func pathOffset(rowA, rowB []Sample) Offset {
	var pathA, pathB []r2.Vec
	for t := range rowA {
		if rowA[t].Valid && rowB[t].Valid {
			pathA = append(pathA, rowA[t].Pos)
			pathB = append(pathB, rowB[t].Pos)
		}
	}
	if len(pathA) < 2 {
		return Offset{}
	}

	var res Offset
	for _, p := range PolylineIntersections(pathA, pathB) {
		diff := closestIndex(pathA, p) - closestIndex(pathB, p)
		if diff < 0 {
			diff = -diff
		}
		res = MinOffset(res, Offset{Steps: diff, OK: true})
	}
	return res
}

func closestIndex(path []r2.Vec, p r2.Vec) int {
	dists := make([]float64, len(path))
	for i, x := range path {
		dists[i] = r2.Norm2(r2.Sub(x, p))
	}
	return floats.MinIdx(dists)
}

// PolylineIntersections returns the distinct points where
// two polylines cross.
//
// If the polylines share a collinear stretch, the
// intersection is not a set of points and nil is
// returned.
func PolylineIntersections(a, b []r2.Vec) []r2.Vec {
	var points []r2.Vec
	for i := 0; i+1 < len(a); i++ {
		for j := 0; j+1 < len(b); j++ {
			p, kind := segmentIntersection(a[i], a[i+1], b[j], b[j+1])
			switch kind {
			case overlapHit:
				return nil
			case pointHit:
				points = appendDistinct(points, p)
			}
		}
	}
	return points
}

func appendDistinct(points []r2.Vec, p r2.Vec) []r2.Vec {
	for _, x := range points {
		if r2.Norm(r2.Sub(x, p)) < 1e-7 {
			return points
		}
	}
	return append(points, p)
}

type hitKind int

const (
	noHit hitKind = iota
	pointHit
	overlapHit
)

// segmentIntersection intersects the closed segments
// p1-p2 and q1-q2.
// Zero-length segments are treated as points.
func segmentIntersection(p1, p2, q1, q2 r2.Vec) (r2.Vec, hitKind) {
	r := r2.Sub(p2, p1)
	s := r2.Sub(q2, q1)
	rLen := r2.Norm2(r)
	sLen := r2.Norm2(s)

	switch {
	case rLen < geomEpsilon && sLen < geomEpsilon:
		if r2.Norm2(r2.Sub(p1, q1)) < geomEpsilon {
			return p1, pointHit
		}
		return r2.Vec{}, noHit
	case rLen < geomEpsilon:
		if onSegment(p1, q1, q2) {
			return p1, pointHit
		}
		return r2.Vec{}, noHit
	case sLen < geomEpsilon:
		if onSegment(q1, p1, p2) {
			return q1, pointHit
		}
		return r2.Vec{}, noHit
	}

	denom := r2.Cross(r, s)
	qp := r2.Sub(q1, p1)
	if math.Abs(denom) < geomEpsilon*math.Sqrt(rLen*sLen) {
		if math.Abs(r2.Cross(qp, r)) > geomEpsilon*math.Sqrt(rLen) {
			// Parallel, not collinear.
			return r2.Vec{}, noHit
		}
		return collinearIntersection(p1, r, rLen, q1, q2)
	}

	t := r2.Cross(qp, s) / denom
	u := r2.Cross(qp, r) / denom
	if t < -geomEpsilon || t > 1+geomEpsilon || u < -geomEpsilon || u > 1+geomEpsilon {
		return r2.Vec{}, noHit
	}
	return r2.Add(p1, r2.Scale(t, r)), pointHit
}

// collinearIntersection handles two collinear segments,
// projecting q1 and q2 onto p1 + t*r.
func collinearIntersection(p1, r r2.Vec, rLen float64, q1, q2 r2.Vec) (r2.Vec, hitKind) {
	t0 := r2.Dot(r2.Sub(q1, p1), r) / rLen
	t1 := r2.Dot(r2.Sub(q2, p1), r) / rLen
	if t0 > t1 {
		t0, t1 = t1, t0
	}
	start := math.Max(t0, 0)
	end := math.Min(t1, 1)
	if end < start-geomEpsilon {
		return r2.Vec{}, noHit
	}
	if (end-start)*math.Sqrt(rLen) < 1e-7 {
		return r2.Add(p1, r2.Scale(start, r)), pointHit
	}
	return r2.Vec{}, overlapHit
}

// onSegment checks if p lies on the segment a-b.
func onSegment(p, a, b r2.Vec) bool {
	ab := r2.Sub(b, a)
	ap := r2.Sub(p, a)
	abLen := r2.Norm2(ab)
	if math.Abs(r2.Cross(ab, ap)) > geomEpsilon*math.Sqrt(abLen) {
		return false
	}
	t := r2.Dot(ap, ab) / abLen
	return t >= -geomEpsilon && t <= 1+geomEpsilon
}
