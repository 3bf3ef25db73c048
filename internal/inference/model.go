package inference

import "fmt"

// Model produces a raw regression output for a scaled feature row. The
// output is in the model's native units (hundreds of thousands of USD).
type Model interface {
	Predict(row []float64) (float64, error)
}

// LinearModel is a fitted linear regression.
type LinearModel struct {
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// Predict computes intercept + coefficients . row.
func (m *LinearModel) Predict(row []float64) (float64, error) {
	if len(row) != len(m.Coefficients) {
		return 0, fmt.Errorf("feature dimension mismatch: got %d, model expects %d", len(row), len(m.Coefficients))
	}
	value := m.Intercept
	for i, coef := range m.Coefficients {
		value += coef * row[i]
	}
	return value, nil
}

// TreeNode is one node of a fitted decision tree. Leaf nodes carry a
// negative left/right index and hold the predicted value.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// TreeModel is a fitted decision tree regressor stored as a flat node array
// rooted at index 0.
type TreeModel struct {
	Nodes []TreeNode `json:"nodes"`
}

// Predict walks the tree from the root until it reaches a leaf.
func (m *TreeModel) Predict(row []float64) (float64, error) {
	if len(m.Nodes) == 0 {
		return 0, fmt.Errorf("tree model has no nodes")
	}
	idx := 0
	for steps := 0; steps <= len(m.Nodes); steps++ {
		node := m.Nodes[idx]
		if node.Left < 0 && node.Right < 0 {
			return node.Value, nil
		}
		if node.Feature < 0 || node.Feature >= len(row) {
			return 0, fmt.Errorf("tree node %d references feature %d, row has %d", idx, node.Feature, len(row))
		}
		next := node.Right
		if row[node.Feature] <= node.Threshold {
			next = node.Left
		}
		if next < 0 || next >= len(m.Nodes) {
			return 0, fmt.Errorf("tree node %d has out-of-range child %d", idx, next)
		}
		idx = next
	}
	return 0, fmt.Errorf("tree traversal did not terminate (cycle at node %d)", idx)
}
