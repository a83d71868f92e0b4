package graph

import (
	"errors"
	"fmt"
	"sort"
)

// ErrBadNode marks a graph that holds a node flagged invalid. Graphs in
// that state must not be exported.
var ErrBadNode = errors.New("bad node")

// ValidationSeverity indicates whether a validation finding blocks export
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks export
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   NodeID             // which node has the problem (zero if graph-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID.Short(), e.Message)
}

// ValidationResult bundles errors (blocking) and warnings (advisory)
// from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether no blocking errors were found.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs all Tier 1 structural validation checks and returns the
// findings. An empty slice means the graph is structurally sound. This
// function is read-only and never mutates the graph.
func Validate(g *Graph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateLinks(g)...)
	errs = append(errs, validateAcyclic(g)...)
	errs = append(errs, validateNames(g)...)
	errs = append(errs, validateBadFlags(g)...)
	errs = append(errs, validateOrphans(g)...)
	return errs
}

// ValidateAll runs all tiers (structural, parameter) and returns a
// ValidationResult with separated errors and warnings.
func ValidateAll(g *Graph) ValidationResult {
	var result ValidationResult
	all := Validate(g)
	all = append(all, validateParams(g)...)
	for _, e := range all {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, e)
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

// MarkInvalid flags every node carrying a blocking finding as bad and
// returns how many nodes were newly flagged.
func MarkInvalid(g *Graph, r ValidationResult) int {
	marked := 0
	for _, e := range r.Errors {
		if n := g.Nodes[e.NodeID]; n != nil && !n.Bad {
			n.Bad = true
			marked++
		}
	}
	return marked
}

// validateLinks checks that every link references existing nodes and
// sockets of matching kind, and that single inputs carry at most one link.
func validateLinks(g *Graph) []ValidationError {
	var errs []ValidationError
	inputUse := make(map[Link]int)

	for _, l := range g.Links {
		from, to := g.Nodes[l.From], g.Nodes[l.To]
		if from == nil || to == nil {
			missing := l.From
			if from != nil {
				missing = l.To
			}
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("link references missing node %s", missing.Short()),
				Severity: SeverityError,
			})
			continue
		}
		out := from.Output(l.FromSocket)
		in := to.Input(l.ToSocket)
		if out == nil {
			errs = append(errs, ValidationError{
				NodeID:   from.ID,
				Message:  fmt.Sprintf("link leaves missing output %q", l.FromSocket),
				Severity: SeverityError,
			})
			continue
		}
		if in == nil {
			errs = append(errs, ValidationError{
				NodeID:   to.ID,
				Message:  fmt.Sprintf("link enters missing input %q", l.ToSocket),
				Severity: SeverityError,
			})
			continue
		}
		if out.Kind != in.Kind {
			errs = append(errs, ValidationError{
				NodeID:   to.ID,
				Message:  fmt.Sprintf("input %q expects %s, linked from %s", l.ToSocket, in.Kind, out.Kind),
				Severity: SeverityError,
			})
		}
		if !in.Multi {
			key := Link{To: l.To, ToSocket: l.ToSocket}
			inputUse[key]++
			if inputUse[key] == 2 {
				errs = append(errs, ValidationError{
					NodeID:   to.ID,
					Message:  fmt.Sprintf("input %q has more than one link", l.ToSocket),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

// validateAcyclic checks for cycles using DFS with 3-color marking over
// link edges. Boundary and flow links are symmetric by nature and are left
// out: only construction and load trees must be acyclic.
func validateAcyclic(g *Graph) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	next := make(map[NodeID][]NodeID)
	for _, l := range g.Links {
		if from := g.Nodes[l.From]; from != nil {
			if out := from.Output(l.FromSocket); out != nil && out.Kind.Removable() {
				continue
			}
		}
		next[l.From] = append(next[l.From], l.To)
	}

	color := make(map[NodeID]int) // default zero = white
	var errs []ValidationError

	var visit func(id NodeID) bool // returns true if cycle found
	visit = func(id NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id.Short()),
				Severity: SeverityError,
			})
			return true
		}

		color[id] = gray
		for _, child := range next[id] {
			if visit(child) {
				return true
			}
		}
		color[id] = black
		return false
	}

	// Start DFS from every node in stable order to catch disconnected
	// components.
	for _, id := range g.Order {
		if color[id] == white {
			if visit(id) {
				// One cycle error is sufficient; stop early.
				break
			}
		}
	}

	return errs
}

// validateNames checks that the NameIndex is injective and that every entry
// points to an existing node.
func validateNames(g *Graph) []ValidationError {
	var errs []ValidationError

	names := make([]string, 0, len(g.NameIndex))
	for name := range g.NameIndex {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		id := g.NameIndex[name]
		if _, ok := g.Nodes[id]; !ok {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references non-existent node %s", name, id.Short()),
				Severity: SeverityError,
			})
		}
	}

	seen := make(map[string]int)
	for _, n := range g.Ordered() {
		if n.Name == "" {
			continue
		}
		seen[n.Name]++
		if seen[n.Name] == 2 {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("duplicate name %q", n.Name),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateBadFlags reports nodes already flagged invalid.
func validateBadFlags(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, n := range g.Bad() {
		errs = append(errs, ValidationError{
			NodeID:   n.ID,
			Message:  fmt.Sprintf("bad %s node %q; delete it or make valid connections", n.Kind, n.Name),
			Severity: SeverityError,
		})
	}
	return errs
}

// validateOrphans warns about feeder nodes whose output goes nowhere.
func validateOrphans(g *Graph) []ValidationError {
	var errs []ValidationError
	for _, n := range g.Ordered() {
		switch n.Kind {
		case NodeLayer, NodePV, NodeFrame, NodeSchedule, NodeHVAC,
			NodeOccupancy, NodeEquipment, NodeInfiltration:
		default:
			continue
		}
		linked := false
		for _, s := range n.Outputs {
			if len(g.LinksFrom(n.ID, s.Name)) > 0 {
				linked = true
				break
			}
		}
		if !linked {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("%s node %q is not connected to anything (orphan)", n.Kind, n.Name),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}
