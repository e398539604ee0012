package artifact

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Node is one node of a regression tree. Leaves carry a value; split nodes
// send x[Feature] <= Threshold to Left and everything else to Right. A NaN
// feature follows DefaultLeft.
type Node struct {
	Leaf        bool    `json:"leaf,omitempty"`
	Value       float64 `json:"value,omitempty"`
	Feature     int     `json:"feature,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
	Left        int     `json:"left,omitempty"`
	Right       int     `json:"right,omitempty"`
	DefaultLeft bool    `json:"default_left,omitempty"`
}

// Tree is a flattened regression tree rooted at Nodes[0].
type Tree struct {
	Nodes []Node `json:"nodes"`
}

func (t Tree) eval(x []float64) float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		v := x[n.Feature]
		switch {
		case math.IsNaN(v):
			if n.DefaultLeft {
				i = n.Left
			} else {
				i = n.Right
			}
		case v <= n.Threshold:
			i = n.Left
		default:
			i = n.Right
		}
	}
}

// validate checks that every child index points forward inside the tree,
// which also rules out cycles.
func (t Tree) validate(numFeatures int) error {
	if len(t.Nodes) == 0 {
		return errors.New("empty tree")
	}
	for i, n := range t.Nodes {
		if n.Leaf {
			continue
		}
		if n.Feature < 0 || n.Feature >= numFeatures {
			return fmt.Errorf("node %d splits on feature %d of %d", i, n.Feature, numFeatures)
		}
		for _, child := range []int{n.Left, n.Right} {
			if child <= i || child >= len(t.Nodes) {
				return fmt.Errorf("node %d has invalid child %d", i, child)
			}
		}
	}
	return nil
}

// TreeEnsemble is an additive ensemble of regression trees, the exported
// form of a gradient-boosted regressor.
type TreeEnsemble struct {
	numFeatures int
	baseScore   float64
	trees       []Tree
	importances []float64
}

// NewTreeEnsemble validates the trees against numFeatures.
func NewTreeEnsemble(numFeatures int, baseScore float64, trees []Tree, importances []float64) (*TreeEnsemble, error) {
	if numFeatures <= 0 {
		return nil, errors.New("tree ensemble: n_features must be positive")
	}
	if len(trees) == 0 {
		return nil, errors.New("tree ensemble: no trees")
	}
	for i, t := range trees {
		if err := t.validate(numFeatures); err != nil {
			return nil, fmt.Errorf("tree ensemble: tree %d: %w", i, err)
		}
	}
	return &TreeEnsemble{
		numFeatures: numFeatures,
		baseScore:   baseScore,
		trees:       trees,
		importances: slices.Clone(importances),
	}, nil
}

func (m *TreeEnsemble) NumFeatures() int { return m.numFeatures }

// Predict sums the leaf values reached by each row, on top of the base score.
func (m *TreeEnsemble) Predict(rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		if len(row) != m.numFeatures {
			return nil, fmt.Errorf("row %d has %d features, model expects %d", i, len(row), m.numFeatures)
		}
		sum := m.baseScore
		for _, t := range m.trees {
			sum += t.eval(row)
		}
		out[i] = sum
	}
	return out, nil
}

// FeatureImportances returns a copy of the stored importances, aligned with
// the model columns. It may be empty.
func (m *TreeEnsemble) FeatureImportances() []float64 {
	return slices.Clone(m.importances)
}

// LinearModel predicts intercept + coef . x.
type LinearModel struct {
	coef      *mat.VecDense
	intercept float64
}

func NewLinearModel(coef []float64, intercept float64) (*LinearModel, error) {
	if len(coef) == 0 {
		return nil, errors.New("linear model: no coefficients")
	}
	return &LinearModel{
		coef:      mat.NewVecDense(len(coef), slices.Clone(coef)),
		intercept: intercept,
	}, nil
}

func (m *LinearModel) NumFeatures() int { return m.coef.Len() }

func (m *LinearModel) Predict(rows [][]float64) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, row := range rows {
		x, err := rowVec(row, m.NumFeatures(), i)
		if err != nil {
			return nil, err
		}
		out[i] = mat.Dot(m.coef, x) + m.intercept
	}
	return out, nil
}
