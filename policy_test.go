package nocturneagent

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/unixpickle/approb"
	"github.com/unixpickle/weakai/idtrees"
)

func TestEpsilonSampled(t *testing.T) {
	dist := testClassifier{
		0: 0.3,
		1: 0.5,
		2: 0.15,
		3: 0.05,
	}
	policy := &ForestPolicy{
		Classifier: dist,
		NumActions: 4,
		Epsilon:    0.3,
	}
	obs := FeatureVector([]float64{0})
	corr := approb.Correlation(50000, 0.3, func() float64 {
		if rand.Float64() < 0.3 {
			return float64(rand.Intn(4))
		}
		return float64(sampleTestClassifier(dist))
	}, func() float64 {
		act, err := policy.Predict(obs, false)
		if err != nil {
			t.Fatal(err)
		}
		return float64(act)
	})
	if corr < 0.9999 {
		t.Error("correlation should be near 1, but got", corr)
	}
}

func TestDeterministicPredict(t *testing.T) {
	policy := &ForestPolicy{
		Classifier: testClassifier{0: 0.3, 1: 0.5, 2: 0.15, 3: 0.05},
		NumActions: 4,
		Epsilon:    0.3,
	}
	obs := FeatureVector([]float64{0})
	for i := 0; i < 10; i++ {
		act, err := policy.Predict(obs, true)
		if err != nil {
			t.Fatal(err)
		}
		if act != 1 {
			t.Fatalf("expected action 1 but got %d", act)
		}
	}
}

func TestDistNormalized(t *testing.T) {
	policy := &ForestPolicy{
		Classifier: &UniformClassifier{NumClasses: 5},
		NumActions: 5,
		Epsilon:    0.1,
	}
	var sum float64
	for _, p := range policy.Dist([]float64{1, 2}) {
		if p <= 0 {
			t.Fatalf("probability should be positive: %f", p)
		}
		sum += p
	}
	if sum < 0.9999 || sum > 1.0001 {
		t.Errorf("distribution should sum to 1 but got %f", sum)
	}
}

func TestDistEpsilon(t *testing.T) {
	policy := &ForestPolicy{
		Classifier: testClassifier{0: 1},
		NumActions: 4,
		Epsilon:    0.2,
	}
	expected := []float64{0.85, 0.05, 0.05, 0.05}
	for i, p := range policy.Dist(nil) {
		if p < expected[i]-1e-8 || p > expected[i]+1e-8 {
			t.Errorf("action %d: expected %f but got %f", i, expected[i], p)
		}
	}
}

func TestSaveLoadPolicy(t *testing.T) {
	gen := rand.New(rand.NewSource(1337))
	demos := separableDemos(gen, 200)
	cloner := &Cloner{NumTrees: 3, NumFeatures: 2, Rand: gen}
	policy := &ForestPolicy{
		Classifier: cloner.Train(demos),
		NumActions: 2,
		Epsilon:    0.05,
	}
	path := filepath.Join(t.TempDir(), "policy.gob")
	if err := SavePolicy(path, policy); err != nil {
		t.Fatal(err)
	}
	loaded, err := LoadPolicy(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.NumActions != 2 || loaded.Epsilon != 0.05 {
		t.Fatalf("unexpected policy fields: %+v", loaded)
	}
	for _, demo := range demos[:20] {
		expected := policy.Dist(demo.Features)
		actual := loaded.Dist(demo.Features)
		for i := range expected {
			if expected[i] != actual[i] {
				t.Fatalf("features %v: expected %v but got %v", demo.Features,
					expected, actual)
			}
		}
	}
}

func TestSaveUnsavablePolicy(t *testing.T) {
	policy := &ForestPolicy{
		Classifier: &UniformClassifier{NumClasses: 2},
		NumActions: 2,
	}
	if err := SavePolicy(filepath.Join(t.TempDir(), "p"), policy); err == nil {
		t.Error("expected an error")
	}
}

func sampleTestClassifier(c Classifier) int {
	out := c.Classify(nil)
	off := rand.Float64()
	for i := 0; i < 4; i++ {
		off -= out[i]
		if off <= 0 {
			return i
		}
	}
	return 3
}

type testClassifier map[idtrees.Class]float64

func (t testClassifier) Classify(s idtrees.AttrMap) map[idtrees.Class]float64 {
	return t
}
