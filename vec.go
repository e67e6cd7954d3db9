package nocturneagent

import (
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/anyvec/anyvec64"
)

// FeatureVector wraps a feature slice as an observation
// vector.
func FeatureVector(features []float64) anyvec.Vector {
	c := anyvec64.DefaultCreator{}
	return c.MakeVectorData(c.MakeNumericList(features))
}

// vecToFloats copies an observation into a fresh slice.
func vecToFloats(vec anyvec.Vector) []float64 {
	return vec.Creator().Float64Slice(vec.Data())
}
