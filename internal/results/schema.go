package results

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	gtio "github.com/KyungWonPark/GraphTheory/internal/io"
)

// Unknown is the group of a node whose stem has no mapping.
const Unknown = "Unknown"

// ErrNodeCount is returned when a document's per-node arrays do not have one
// entry per schema node.
var ErrNodeCount = errors.New("node count mismatch")

// Node is one row of the node schema: position in every per-node array,
// node name, and anatomical group.
type Node struct {
	Index int
	Name  string
	Group string
}

// Schema is the ordered node table every document is read against.
type Schema []Node

// DefaultNodeNames are the SENSAAS nodes, in the order of the per-node
// arrays in the network analysis results.
var DefaultNodeNames = []string{
	"AG2_L", "AG2_R", "AMYG_L", "AMYG_R", "CINGp3_L", "CINGp3_R",
	"f2_2_L", "f2_2_R", "F1_2_L", "F1_2_R", "F3O1_L", "F3O1_R",
	"F3t_L", "F3t_R", "FUS4_L", "FUS4_R", "HIPP2_L", "HIPP2_R",
	"INSa1_L", "INSa1_R", "INSa2_L", "INSa2_R", "INSa3_L", "INSa3_R",
	"O3_1_L", "O3_1_R", "pCENT4_L", "pCENT4_R", "pHIPP1_L", "pHIPP1_R",
	"prec3_L", "prec3_R", "prec4_L", "prec4_R", "PRECU6_L", "PRECU6_R",
	"PUT2_L", "PUT2_R", "PUT3_L", "PUT3_R", "SMA2_L", "SMA2_R",
	"SMA3_L", "SMA3_R", "SMG7_L", "SMG7_R", "STS1_L", "STS1_R",
	"STS2_L", "STS2_R", "STS3_L", "STS3_R", "STS4_L", "STS4_R",
	"T1_4_L", "T1_4_R", "T2_3_L", "T2_3_R", "T2_4_L", "T2_4_R",
	"T3_4_L", "T3_4_R", "THA4_L", "THA4_R",
}

const (
	frontalInsula    = "Frontal and insula"
	temporalParietal = "Temporal and parietal"
	internalSurface  = "Internal surface"
	subCortical      = "Sub-cortical"
)

// DefaultGroups maps node stems to anatomical groups.
var DefaultGroups = map[string]string{
	"prec3": frontalInsula, "prec4": frontalInsula, "F1_2": frontalInsula,
	"f2_2": frontalInsula, "F3t": frontalInsula, "F3O1": frontalInsula,
	"INSa1": frontalInsula, "INSa2": frontalInsula, "INSa3": frontalInsula,

	"T1_4": temporalParietal, "T2_3": temporalParietal, "T2_4": temporalParietal,
	"T3_4": temporalParietal, "STS1": temporalParietal, "STS2": temporalParietal,
	"STS3": temporalParietal, "STS4": temporalParietal, "SMG7": temporalParietal,
	"AG2": temporalParietal, "O3_1": temporalParietal, "FUS4": temporalParietal,
	"pHIPP1": temporalParietal, "HIPP2": temporalParietal,

	"SMA2": internalSurface, "SMA3": internalSurface, "pCENT4": internalSurface,
	"CINGp3": internalSurface, "PRECU6": internalSurface,

	"AMYG": subCortical, "THA4": subCortical, "PUT2": subCortical, "PUT3": subCortical,
}

// Stem drops the hemisphere token, the text after the final "_".
// A name without "_" has an empty stem.
func Stem(name string) string {
	i := strings.LastIndex(name, "_")
	if i < 0 {
		return ""
	}
	return name[:i]
}

// GroupOf returns the group of the node's stem, or Unknown.
func GroupOf(name string, groups map[string]string) string {
	if g, ok := groups[Stem(name)]; ok {
		return g
	}
	return Unknown
}

// NewSchema pairs each name with its position and group.
func NewSchema(names []string, groups map[string]string) Schema {
	s := make(Schema, len(names))
	for i, n := range names {
		s[i] = Node{Index: i, Name: n, Group: GroupOf(n, groups)}
	}
	return s
}

// DefaultSchema is the 64-node SENSAAS schema.
func DefaultSchema() Schema {
	return NewSchema(DefaultNodeNames, DefaultGroups)
}

// Validate checks that indices run 0..n-1 in order and names are set.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return errors.New("empty node schema")
	}
	seen := make(map[string]bool, len(s))
	for i, n := range s {
		if n.Index != i {
			return fmt.Errorf("node schema: row %d has index %d", i, n.Index)
		}
		if n.Name == "" {
			return fmt.Errorf("node schema: index %d has no name", i)
		}
		if seen[n.Name] {
			return fmt.Errorf("node schema: duplicate node %q", n.Name)
		}
		seen[n.Name] = true
	}
	return nil
}

// Unmapped returns the nodes whose group is Unknown.
func (s Schema) Unmapped() []Node {
	var out []Node
	for _, n := range s {
		if n.Group == Unknown {
			out = append(out, n)
		}
	}
	return out
}

// Check verifies one per-node array against the schema length.
func (s Schema) Check(metric string, values []float64) error {
	if len(values) != len(s) {
		return fmt.Errorf("%w: %s has %d values, schema has %d nodes", ErrNodeCount, metric, len(values), len(s))
	}
	return nil
}

// LoadSchema reads a node table CSV with columns "Index" and "Node Name" and
// an optional "Group". Missing or empty groups are resolved through groups.
func LoadSchema(path string, groups map[string]string) (Schema, error) {
	header, rows, err := gtio.ReadTable(path)
	if err != nil {
		return nil, err
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}
	idxCol, ok := col["Index"]
	if !ok {
		return nil, fmt.Errorf("node table %s: missing column \"Index\"", path)
	}
	nameCol, ok := col["Node Name"]
	if !ok {
		return nil, fmt.Errorf("node table %s: missing column \"Node Name\"", path)
	}
	groupCol, hasGroup := col["Group"]

	s := make(Schema, 0, len(rows))
	for line, rec := range rows {
		if idxCol >= len(rec) || nameCol >= len(rec) {
			return nil, fmt.Errorf("node table %s: row %d is short", path, line+2)
		}
		idx, err := strconv.Atoi(strings.TrimSpace(rec[idxCol]))
		if err != nil {
			return nil, fmt.Errorf("node table %s: row %d: %w", path, line+2, err)
		}

		n := Node{Index: idx, Name: strings.TrimSpace(rec[nameCol])}
		if hasGroup && groupCol < len(rec) {
			n.Group = strings.TrimSpace(rec[groupCol])
		}
		if n.Group == "" {
			n.Group = GroupOf(n.Name, groups)
		}
		s = append(s, n)
	}

	sort.SliceStable(s, func(i, j int) bool { return s[i].Index < s[j].Index })
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}
