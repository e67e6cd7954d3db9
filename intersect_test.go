package nocturneagent

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestPairwiseIntersectionsCrossing(t *testing.T) {
	traj := testTrajectories(
		straightPath(r2.Vec{X: -2}, r2.Vec{X: 1}, 5),
		straightPath(r2.Vec{Y: -2}, r2.Vec{Y: 1}, 5),
	)
	counts, offsets := PairwiseIntersections(traj, 3)
	for i := range counts {
		if counts[i] != 1 {
			t.Errorf("agent %d: expected 1 intersection but got %d", i, counts[i])
		}
		if offsets[i] != (Offset{Steps: 0, OK: true}) {
			t.Errorf("agent %d: expected offset 0 but got %s", i, offsets[i])
		}
	}
}

func TestPairwiseIntersectionsWindow(t *testing.T) {
	// The first agent crosses the origin at t=2, the
	// second at t=9.
	traj := testTrajectories(
		straightPath(r2.Vec{X: -2}, r2.Vec{X: 1}, 12),
		straightPath(r2.Vec{Y: -9}, r2.Vec{Y: 1}, 12),
	)
	counts, offsets := PairwiseIntersections(traj, 3)
	for i := range counts {
		if counts[i] != 0 {
			t.Errorf("agent %d: expected no intersections but got %d", i, counts[i])
		}
		if offsets[i] != (Offset{Steps: 7, OK: true}) {
			t.Errorf("agent %d: expected offset 7 but got %s", i, offsets[i])
		}
	}
	counts, _ = PairwiseIntersections(traj, 50)
	if counts[0] != 1 || counts[1] != 1 {
		t.Errorf("wide window should count the crossing: %v", counts)
	}
}

func TestPairwiseIntersectionsOncePerPair(t *testing.T) {
	zigzag := []r2.Vec{{X: -4, Y: -1}, {X: -2, Y: 1}, {X: 0, Y: -1}, {X: 2, Y: 1}, {X: 4, Y: -1}}
	line := straightPath(r2.Vec{X: -4}, r2.Vec{X: 2}, 5)
	far := straightPath(r2.Vec{Y: 100}, r2.Vec{X: 1}, 5)
	traj := testTrajectories(zigzag, line, far)
	counts, offsets := PairwiseIntersections(traj, 50)
	expected := []int{1, 1, 0}
	for i, c := range expected {
		if counts[i] != c {
			t.Errorf("agent %d: expected %d but got %d", i, c, counts[i])
		}
	}
	if offsets[2].OK {
		t.Errorf("isolated agent should have no offset: %s", offsets[2])
	}
}

func TestPairwiseIntersectionsDisjointTimes(t *testing.T) {
	traj := testTrajectories(
		straightPath(r2.Vec{X: -2}, r2.Vec{X: 1}, 5),
		straightPath(r2.Vec{Y: -2}, r2.Vec{Y: 1}, 5),
	)
	for step := 0; step < 5; step++ {
		if step < 3 {
			traj.Samples[1][step].Valid = false
		} else {
			traj.Samples[0][step].Valid = false
		}
	}
	counts, offsets := PairwiseIntersections(traj, 50)
	for i := range counts {
		if counts[i] != 0 || offsets[i].OK {
			t.Errorf("agent %d: expected no intersections but got %d (%s)", i,
				counts[i], offsets[i])
		}
	}
}

func TestPolylineIntersections(t *testing.T) {
	cases := []struct {
		a, b     []r2.Vec
		expected []r2.Vec
	}{
		{
			a:        []r2.Vec{{X: -1}, {X: 1}},
			b:        []r2.Vec{{Y: -1}, {Y: 1}},
			expected: []r2.Vec{{}},
		},
		{
			// Parallel segments.
			a: []r2.Vec{{X: 0}, {X: 1}},
			b: []r2.Vec{{X: 0, Y: 1}, {X: 1, Y: 1}},
		},
		{
			// Collinear segments touching at an endpoint.
			a:        []r2.Vec{{X: 0}, {X: 1}},
			b:        []r2.Vec{{X: 1}, {X: 2}},
			expected: []r2.Vec{{X: 1}},
		},
		{
			// Overlapping collinear segments.
			a: []r2.Vec{{X: 0}, {X: 1}, {X: 2}},
			b: []r2.Vec{{X: 0.5}, {X: 1.5}, {X: 1.5, Y: 3}},
		},
		{
			// Crossing at a shared vertex is one point.
			a:        []r2.Vec{{X: -1}, {X: 0}, {X: 1}},
			b:        []r2.Vec{{Y: -1}, {Y: 0}, {Y: 1}},
			expected: []r2.Vec{{}},
		},
	}
	for i, c := range cases {
		actual := PolylineIntersections(c.a, c.b)
		if len(actual) != len(c.expected) {
			t.Errorf("case %d: expected %v but got %v", i, c.expected, actual)
			continue
		}
		for j, p := range c.expected {
			if r2.Norm(r2.Sub(p, actual[j])) > 1e-8 {
				t.Errorf("case %d: expected %v but got %v", i, c.expected, actual)
			}
		}
	}
}

func TestMinOffset(t *testing.T) {
	none := Offset{}
	three := Offset{Steps: 3, OK: true}
	five := Offset{Steps: 5, OK: true}
	if MinOffset(none, three) != three || MinOffset(three, none) != three {
		t.Error("unset offsets should be ignored")
	}
	if MinOffset(five, three) != three || MinOffset(three, five) != three {
		t.Error("expected the smaller offset")
	}
	if MinOffset(none, none).OK {
		t.Error("expected an unset offset")
	}
	if none.String() != "n/a" || three.String() != "3" {
		t.Errorf("bad strings: %s, %s", none, three)
	}
}

// testTrajectories creates fully valid trajectories with
// agent ids 1, 2, ...
func testTrajectories(paths ...[]r2.Vec) *Trajectories {
	var ids []AgentID
	for i := range paths {
		ids = append(ids, AgentID(i+1))
	}
	traj := newTrajectories("test", ids, len(paths[0]))
	for i, path := range paths {
		for step, p := range path {
			traj.Samples[i][step] = Sample{Pos: p, Valid: true}
		}
	}
	return traj
}
