package safety

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
)

var (
	// ErrModelNotFound is returned when the artifact file does not exist.
	ErrModelNotFound = errors.New("safety model artifact not found")
	// ErrInvalidModel is returned when the artifact cannot be used.
	ErrInvalidModel = errors.New("invalid safety model artifact")
)

const objectiveLogistic = "binary:logistic"

// artifact mirrors the XGBoost JSON tree dump plus the header fields needed
// to turn margins into probabilities.
type artifact struct {
	Objective    string     `json:"objective"`
	BaseScore    float64    `json:"base_score"`
	FeatureNames []string   `json:"feature_names"`
	Trees        []treeNode `json:"trees"`
}

type treeNode struct {
	NodeID         int        `json:"nodeid"`
	Split          string     `json:"split,omitempty"`
	SplitCondition float64    `json:"split_condition,omitempty"`
	Yes            int        `json:"yes,omitempty"`
	No             int        `json:"no,omitempty"`
	Missing        int        `json:"missing,omitempty"`
	Leaf           *float64   `json:"leaf,omitempty"`
	Children       []treeNode `json:"children,omitempty"`
}

// node is a flattened tree node. Leaves have feature == -1.
type node struct {
	feature   int
	condition float64
	yes, no   int
	leaf      float64
}

type tree []node

// Model is a boosted tree ensemble with a logistic output.
type Model struct {
	baseMargin float64
	trees      []tree
}

// LoadModel reads and compiles the artifact at path.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", path, ErrModelNotFound)
		}
		return nil, fmt.Errorf("read safety model %s: %w", path, err)
	}

	m, err := ParseModel(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ParseModel compiles an artifact from its JSON encoding.
func ParseModel(data []byte) (*Model, error) {
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode: %v: %w", err, ErrInvalidModel)
	}

	if a.Objective != objectiveLogistic {
		return nil, fmt.Errorf("objective %q, want %q: %w", a.Objective, objectiveLogistic, ErrInvalidModel)
	}
	if a.BaseScore <= 0 || a.BaseScore >= 1 {
		return nil, fmt.Errorf("base_score %v outside (0,1): %w", a.BaseScore, ErrInvalidModel)
	}
	if len(a.Trees) == 0 {
		return nil, fmt.Errorf("no trees: %w", ErrInvalidModel)
	}

	// The artifact may order its columns differently from Features.
	columns := make([]int, len(a.FeatureNames))
	for i, name := range a.FeatureNames {
		idx, ok := featureIndex[name]
		if !ok {
			return nil, fmt.Errorf("unknown feature %q: %w", name, ErrInvalidModel)
		}
		columns[i] = idx
	}
	byName := make(map[string]int, len(a.FeatureNames))
	for i, name := range a.FeatureNames {
		byName[name] = columns[i]
	}

	m := &Model{
		baseMargin: math.Log(a.BaseScore / (1 - a.BaseScore)),
		trees:      make([]tree, 0, len(a.Trees)),
	}
	for i, root := range a.Trees {
		t, err := compileTree(root, byName)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		m.trees = append(m.trees, t)
	}
	return m, nil
}

func compileTree(root treeNode, features map[string]int) (tree, error) {
	flat := map[int]treeNode{}
	var walk func(n treeNode) error
	walk = func(n treeNode) error {
		if _, dup := flat[n.NodeID]; dup {
			return fmt.Errorf("duplicate node %d: %w", n.NodeID, ErrInvalidModel)
		}
		flat[n.NodeID] = n
		for _, c := range n.Children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	if root.NodeID != 0 {
		return nil, fmt.Errorf("root node id %d, want 0: %w", root.NodeID, ErrInvalidModel)
	}

	maxID := 0
	for id := range flat {
		if id < 0 {
			return nil, fmt.Errorf("negative node id %d: %w", id, ErrInvalidModel)
		}
		maxID = max(maxID, id)
	}

	t := make(tree, maxID+1)
	for id, n := range flat {
		if n.Leaf != nil {
			t[id] = node{feature: -1, leaf: *n.Leaf}
			continue
		}

		idx, ok := features[n.Split]
		if !ok {
			return nil, fmt.Errorf("node %d splits on unknown feature %q: %w", id, n.Split, ErrInvalidModel)
		}
		_, hasYes := flat[n.Yes]
		_, hasNo := flat[n.No]
		if !hasYes || !hasNo {
			return nil, fmt.Errorf("node %d has dangling children: %w", id, ErrInvalidModel)
		}
		t[id] = node{feature: idx, condition: n.SplitCondition, yes: n.Yes, no: n.No}
	}
	if err := checkAcyclic(t); err != nil {
		return nil, err
	}
	return t, nil
}

// checkAcyclic fails when a split leads back to a node on its own path,
// which would make eval loop forever.
func checkAcyclic(t tree) error {
	const (
		unseen = iota
		onPath
		done
	)
	state := make([]uint8, len(t))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case onPath:
			return fmt.Errorf("node %d is reachable from itself: %w", i, ErrInvalidModel)
		case done:
			return nil
		}
		if n := t[i]; n.feature >= 0 {
			state[i] = onPath
			if err := visit(n.yes); err != nil {
				return err
			}
			if err := visit(n.no); err != nil {
				return err
			}
		}
		state[i] = done
		return nil
	}
	return visit(0)
}

func (t tree) eval(x []float64) float64 {
	i := 0
	for {
		n := t[i]
		if n.feature < 0 {
			return n.leaf
		}
		if x[n.feature] < n.condition {
			i = n.yes
		} else {
			i = n.no
		}
	}
}

// Margin returns the raw log-odds for f.
func (m *Model) Margin(f Features) float64 {
	x := f.Vector()
	margin := m.baseMargin
	for _, t := range m.trees {
		margin += t.eval(x)
	}
	return margin
}

// Score returns the probability that f describes a safe choice.
func (m *Model) Score(f Features) float64 {
	return 1 / (1 + math.Exp(-m.Margin(f)))
}
