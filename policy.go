package nocturneagent

import (
	"encoding/gob"
	"math"
	"os"

	"github.com/unixpickle/anyrl"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec64"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/weakai/idtrees"
)

// A Classifier maps an observation to a distribution
// over action indices.
//
// Observations are presented as an idtrees.AttrMap whose
// attributes are int feature indices and whose values are
// the float64 features. Classes are int action indices.
// An idtrees.Forest trained by a Cloner is a Classifier.
type Classifier interface {
	Classify(sample idtrees.AttrMap) map[idtrees.Class]float64
}

// UniformClassifier gives every one of NumClasses actions
// the same probability, regardless of the observation.
type UniformClassifier struct {
	NumClasses int
}

func (u *UniformClassifier) Classify(idtrees.AttrMap) map[idtrees.Class]float64 {
	p := 1 / float64(u.NumClasses)
	dist := make(map[idtrees.Class]float64, u.NumClasses)
	for class := 0; class < u.NumClasses; class++ {
		dist[class] = p
	}
	return dist
}

// A ForestPolicy drives vehicles with a Classifier.
type ForestPolicy struct {
	Classifier Classifier

	// NumActions is the size of the action Grid.
	NumActions int

	// Epsilon mixes a uniform distribution into the
	// classifier's output with weight Epsilon.
	// A positive Epsilon keeps the NLL computed by
	// EvaluateClone finite.
	Epsilon float64
}

// Dist returns the probability of every action index for
// an observation.
func (p *ForestPolicy) Dist(features []float64) []float64 {
	classes := p.Classifier.Classify(featureMap(features))
	uniform := 1 / float64(p.NumActions)
	dist := make([]float64, p.NumActions)
	for i := range dist {
		dist[i] = (1-p.Epsilon)*classes[i] + p.Epsilon*uniform
	}
	return dist
}

// Predict picks the most likely action if deterministic is
// set, or samples an action otherwise.
func (p *ForestPolicy) Predict(obs anyvec.Vector, deterministic bool) (DiscreteAction, error) {
	dist := p.Dist(vecToFloats(obs))
	if deterministic {
		return DiscreteAction(argmax(dist)), nil
	}
	c := anyvec64.DefaultCreator{}
	logProbs := make([]float64, len(dist))
	for i, x := range dist {
		logProbs[i] = math.Log(x)
	}
	params := c.MakeVectorData(c.MakeNumericList(logProbs))
	space := anyrl.Softmax{}
	oneHot := space.Sample(params, 1)
	return DiscreteAction(anyvec.MaxIndex(oneHot)), nil
}

// SavePolicy writes a ForestPolicy backed by an
// idtrees.Forest to a file.
func SavePolicy(path string, p *ForestPolicy) (err error) {
	defer essentials.AddCtxTo("save policy", &err)
	forest, ok := p.Classifier.(idtrees.Forest)
	if !ok {
		return errUnsavableClassifier
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(&savedPolicy{
		Forest:     forest,
		NumActions: p.NumActions,
		Epsilon:    p.Epsilon,
	})
}

// LoadPolicy reads a policy written by SavePolicy.
func LoadPolicy(path string) (p *ForestPolicy, err error) {
	defer essentials.AddCtxTo("load policy", &err)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var saved savedPolicy
	if err := gob.NewDecoder(f).Decode(&saved); err != nil {
		return nil, err
	}
	return &ForestPolicy{
		Classifier: saved.Forest,
		NumActions: saved.NumActions,
		Epsilon:    saved.Epsilon,
	}, nil
}

type savedPolicy struct {
	Forest     idtrees.Forest
	NumActions int
	Epsilon    float64
}

// featureMap is an idtrees.AttrMap over a feature vector.
type featureMap []float64

func (f featureMap) Attr(k idtrees.Attr) idtrees.Val {
	return f[k.(int)]
}

func argmax(x []float64) int {
	best := 0
	for i, v := range x {
		if v > x[best] {
			best = i
		}
	}
	return best
}
