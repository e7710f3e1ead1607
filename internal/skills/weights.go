package skills

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jonathan/job-recommender/internal/schemas"
	"gopkg.in/yaml.v3"
)

// DefaultRole is used for gap analysis when no role in the table matches a job title.
const DefaultRole = "Engineer"

// WeightTable maps job roles to the weighted skills they require.
// Roles keeps the source order so role resolution is deterministic.
type WeightTable struct {
	Roles   []string
	Weights map[string]map[string]float64
}

// WeightsError is returned when a weight table cannot be read or is malformed.
type WeightsError struct {
	Path    string
	Message string
	Cause   error
}

func (e *WeightsError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("skill weights %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("skill weights %s: %s", e.Path, e.Message)
}

func (e *WeightsError) Unwrap() error {
	return e.Cause
}

// LoadWeights reads a weight table from a JSON or YAML file (chosen by extension).
func LoadWeights(path string) (*WeightTable, error) {
	if path == "" {
		return nil, &WeightsError{Path: "(empty)", Message: "path is empty"}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &WeightsError{Path: path, Message: "failed to read file", Cause: err}
	}

	var table *WeightTable
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		table, err = ParseWeightsYAML(data)
	default:
		table, err = ParseWeightsJSON(data)
	}
	if err != nil {
		return nil, &WeightsError{Path: path, Message: "invalid weight table", Cause: err}
	}
	return table, nil
}

// ParseWeightsJSON parses a {"role": {"skill": weight}} document, keeping role order.
func ParseWeightsJSON(data []byte) (*WeightTable, error) {
	if err := schemas.ValidateSkillWeights(data); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to read weight table: %w", err)
	}

	table := &WeightTable{Weights: make(map[string]map[string]float64)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read role name: %w", err)
		}
		role, _ := tok.(string)

		var skillWeights map[string]float64
		if err := dec.Decode(&skillWeights); err != nil {
			return nil, fmt.Errorf("failed to decode weights for role %q: %w", role, err)
		}
		table.add(role, skillWeights)
	}
	return table, nil
}

// ParseWeightsYAML parses the YAML form of the weight table, keeping role order.
func ParseWeightsYAML(data []byte) (*WeightTable, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, fmt.Errorf("weight table is empty")
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("weight table must be a mapping of roles")
	}

	var generic map[string]map[string]float64
	if err := doc.Decode(&generic); err != nil {
		return nil, fmt.Errorf("failed to decode weight table: %w", err)
	}
	asJSON, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("failed to re-encode weight table: %w", err)
	}
	if err := schemas.ValidateSkillWeights(asJSON); err != nil {
		return nil, err
	}

	table := &WeightTable{Weights: make(map[string]map[string]float64)}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		role := doc.Content[i].Value
		table.add(role, generic[role])
	}
	return table, nil
}

// NewWeightTable builds a table from roles in the given order.
func NewWeightTable(roles []string, weights map[string]map[string]float64) *WeightTable {
	table := &WeightTable{Weights: make(map[string]map[string]float64)}
	for _, role := range roles {
		table.add(role, weights[role])
	}
	return table
}

func (t *WeightTable) add(role string, skillWeights map[string]float64) {
	if _, exists := t.Weights[role]; !exists {
		t.Roles = append(t.Roles, role)
	}
	if skillWeights == nil {
		skillWeights = map[string]float64{}
	}
	t.Weights[role] = skillWeights
}

// ResolveRole returns the first role whose name appears, case-insensitively,
// inside the job title, or DefaultRole when none does.
func (t *WeightTable) ResolveRole(title string) string {
	lowerTitle := strings.ToLower(title)
	for _, role := range t.Roles {
		if strings.Contains(lowerTitle, strings.ToLower(role)) {
			return role
		}
	}
	return DefaultRole
}

// Weight returns the weight of skill for role, or 0 when unlisted.
func (t *WeightTable) Weight(role, skill string) float64 {
	return t.Weights[role][skill]
}

// RequiredSkills returns the skills listed for role in lexicographic order.
func (t *WeightTable) RequiredSkills(role string) []string {
	listed := t.Weights[role]
	out := make([]string, 0, len(listed))
	for skill := range listed {
		out = append(out, skill)
	}
	sort.Strings(out)
	return out
}
