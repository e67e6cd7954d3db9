package nocturneagent

import (
	"errors"
	"math"
	"math/rand"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anyrl"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec64"
	"github.com/unixpickle/weakai/idtrees"
)

var errUnsavableClassifier = errors.New("classifier is not an idtrees.Forest")

// A Cloner builds random forests which imitate expert
// demonstrations.
type Cloner struct {
	// NumTrees is the number of trees in the forest.
	NumTrees int

	// NumFeatures is the number of input features.
	NumFeatures int

	// SampleFrac is the fraction of demonstrations to
	// sample (with replacement) for each tree.
	//
	// If 0, a default of 1 is used.
	SampleFrac float64

	// Rand is used for bagging and feature selection.
	// If nil, the global source is used.
	Rand *rand.Rand
}

// Train trains a random forest on the demonstrations.
func (c *Cloner) Train(demos []Demonstration) idtrees.Forest {
	var res idtrees.Forest
	for i := 0; i < c.NumTrees; i++ {
		tree := c.buildTree(demos)
		if tree != nil {
			res = append(res, tree)
		}
	}
	return res
}

func (c *Cloner) buildTree(demos []Demonstration) *idtrees.Tree {
	if len(demos) == 0 {
		return nil
	}

	// Trees split on the original feature indices, so that
	// a ForestPolicy can classify full observations.
	numFeatures := int(math.Ceil(math.Sqrt(float64(c.NumFeatures))))
	var attrs []idtrees.Attr
	for _, j := range c.perm(c.NumFeatures)[:numFeatures] {
		attrs = append(attrs, j)
	}

	frac := c.SampleFrac
	if frac == 0 {
		frac = 1
	}
	samples := make([]idtrees.Sample, int(math.Ceil(float64(len(demos))*frac)))
	for i := range samples {
		samples[i] = demoSample(demos[c.intn(len(demos))])
	}

	return idtrees.ID3(samples, attrs, 0)
}

func (c *Cloner) perm(n int) []int {
	if c.Rand != nil {
		return c.Rand.Perm(n)
	}
	return rand.Perm(n)
}

func (c *Cloner) intn(n int) int {
	if c.Rand != nil {
		return c.Rand.Intn(n)
	}
	return rand.Intn(n)
}

// demoSample adapts a Demonstration to idtrees.
type demoSample Demonstration

func (d demoSample) Attr(k idtrees.Attr) idtrees.Val {
	return d.Features[k.(int)]
}

func (d demoSample) Class() idtrees.Class {
	return int(d.Action)
}

// CloneStats measures how well a policy imitates a set of
// demonstrations.
type CloneStats struct {
	// NLL is the mean negative log-likelihood of the
	// demonstrated actions.
	NLL float64

	// Accuracy is the fraction of demonstrations for which
	// the most likely action is the demonstrated one.
	Accuracy float64
}

// EvaluateClone computes CloneStats for a policy.
func EvaluateClone(p *ForestPolicy, demos []Demonstration) CloneStats {
	if len(demos) == 0 {
		return CloneStats{}
	}
	c := anyvec64.DefaultCreator{}
	var logProbs []float64
	var oneHots []float64
	var correct int
	for _, demo := range demos {
		dist := p.Dist(demo.Features)
		if argmax(dist) == int(demo.Action) {
			correct++
		}
		for i, x := range dist {
			logProbs = append(logProbs, math.Log(x))
			if i == int(demo.Action) {
				oneHots = append(oneHots, 1)
			} else {
				oneHots = append(oneHots, 0)
			}
		}
	}
	params := anydiff.NewConst(c.MakeVectorData(c.MakeNumericList(logProbs)))
	outs := c.MakeVectorData(c.MakeNumericList(oneHots))
	space := anyrl.Softmax{}
	total := anyvec.Sum(space.LogProb(params, outs, len(demos)).Output())
	return CloneStats{
		NLL:      -total.(float64) / float64(len(demos)),
		Accuracy: float64(correct) / float64(len(demos)),
	}
}
