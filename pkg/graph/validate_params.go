package graph

import "fmt"

// ---------------------------------------------------------------------------
// Tier 2 — Parameter validation (errors + warnings)
// ---------------------------------------------------------------------------

// validateParams runs all Tier 2 checks on node payloads.
func validateParams(g *Graph) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateLayers(g)...)
	errs = append(errs, validateConstructions(g)...)
	errs = append(errs, validatePV(g)...)
	errs = append(errs, validateFrames(g)...)
	errs = append(errs, validateSchedules(g)...)
	errs = append(errs, validateDuplicateBoundaries(g)...)
	return errs
}

// validateLayers checks that every layer has the physical properties its
// class needs.
func validateLayers(g *Graph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.OfKind(NodeLayer) {
		ld, ok := node.Data.(LayerData)
		if !ok {
			continue
		}
		switch ld.Class {
		case LayerOpaque, LayerGlazing:
			if ld.Thickness <= 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("layer thickness is %.4f, must be positive", ld.Thickness),
					Severity: SeverityError,
				})
			}
			if ld.Conductivity <= 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("layer conductivity is %.4f, must be positive", ld.Conductivity),
					Severity: SeverityError,
				})
			}
		case LayerGas:
			if ld.Thickness <= 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("gas gap thickness is %.4f, must be positive", ld.Thickness),
					Severity: SeverityError,
				})
			}
		case LayerNoMass, LayerAirGap:
			if ld.Resistance <= 0 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("layer resistance is %.4f, must be positive", ld.Resistance),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

// validateConstructions checks active-node uniqueness and that layer
// stacks suit the construction kind.
func validateConstructions(g *Graph) []ValidationError {
	var errs []ValidationError
	active := 0

	for _, node := range g.OfKind(NodeConstruction) {
		cd, ok := node.Data.(ConstructionData)
		if !ok || !cd.Active {
			continue
		}
		active++
		if active == 2 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  "more than one active construction node",
				Severity: SeverityError,
			})
		}

		switch cd.Kind {
		case ConNone, ConShading, ConAperture:
			continue
		}
		layer := g.Upstream(node, SockOuterLayer)
		if layer == nil {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("%s construction has no layers", cd.Kind),
				Severity: SeverityError,
			})
			continue
		}
		seen := make(map[NodeID]bool)
		for ; layer != nil && !seen[layer.ID]; layer = g.Upstream(layer, SockLayer) {
			seen[layer.ID] = true
			ld, ok := layer.Data.(LayerData)
			if !ok {
				continue
			}
			glazed := ld.Class == LayerGlazing || ld.Class == LayerGas
			if cd.Kind == ConWindow && !glazed {
				errs = append(errs, ValidationError{
					NodeID:   layer.ID,
					Message:  fmt.Sprintf("%s layer in a window construction", ld.Class),
					Severity: SeverityError,
				})
			}
			if cd.Kind != ConWindow && ld.Class == LayerGlazing {
				errs = append(errs, ValidationError{
					NodeID:   layer.ID,
					Message:  fmt.Sprintf("glazing layer in a %s construction", cd.Kind),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

// validatePV checks generator fractions and efficiencies.
func validatePV(g *Graph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.OfKind(NodePV) {
		pv, ok := node.Data.(PVData)
		if !ok {
			continue
		}
		if pv.Fraction <= 0 || pv.Fraction > 1 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("pv cell fraction %.3f outside (0, 1]", pv.Fraction),
				Severity: SeverityError,
			})
		}
		if pv.Efficiency <= 0 || pv.Efficiency > 1 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("pv efficiency %.3f outside (0, 1]", pv.Efficiency),
				Severity: SeverityError,
			})
		} else if pv.Efficiency > 0.4 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("pv efficiency %.3f is implausibly high", pv.Efficiency),
				Severity: SeverityWarning,
			})
		}
	}

	return errs
}

// validateFrames checks frame widths and simple frame area percentages.
func validateFrames(g *Graph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.OfKind(NodeFrame) {
		fd, ok := node.Data.(FrameData)
		if !ok {
			continue
		}
		if fd.Width < 0 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("frame width is %.4f, must not be negative", fd.Width),
				Severity: SeverityError,
			})
		}
		if fd.AreaPercent < 0 || fd.AreaPercent >= 100 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("frame area %.1f%% outside [0, 100)", fd.AreaPercent),
				Severity: SeverityError,
			})
		}
	}

	return errs
}

// validateSchedules checks that every authored schedule covers whole days
// and, advisory, the whole year.
func validateSchedules(g *Graph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.OfKind(NodeSchedule) {
		sd, ok := node.Data.(ScheduleData)
		if !ok {
			continue
		}
		if len(sd.Rules) == 0 {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  "schedule has no rules",
				Severity: SeverityError,
			})
			continue
		}
		for _, r := range sd.Rules {
			for _, d := range r.Days {
				if len(d.Untils) == 0 || d.Untils[len(d.Untils)-1].Time != "24:00" {
					errs = append(errs, ValidationError{
						NodeID:   node.ID,
						Message:  fmt.Sprintf("day rule %q through %s does not end at 24:00", d.For, r.Through),
						Severity: SeverityError,
					})
				}
			}
		}
		if last := sd.Rules[len(sd.Rules)-1].Through; last != "12/31" {
			errs = append(errs, ValidationError{
				NodeID:   node.ID,
				Message:  fmt.Sprintf("schedule ends %s, not 12/31", last),
				Severity: SeverityWarning,
			})
		}
	}

	return errs
}

// boundaryKey produces a canonical key for a pair of zone surface sockets
// so that (A,a,B,b) and (B,b,A,a) are treated as the same boundary.
type boundaryKey struct {
	nodeLo, nodeHi     NodeID
	socketLo, socketHi string
}

func makeBoundaryKey(nodeA NodeID, sockA string, nodeB NodeID, sockB string) boundaryKey {
	if nodeA.String() < nodeB.String() {
		return boundaryKey{nodeLo: nodeA, nodeHi: nodeB, socketLo: sockA, socketHi: sockB}
	}
	if nodeA.String() > nodeB.String() {
		return boundaryKey{nodeLo: nodeB, nodeHi: nodeA, socketLo: sockB, socketHi: sockA}
	}
	if sockA <= sockB {
		return boundaryKey{nodeLo: nodeA, nodeHi: nodeB, socketLo: sockA, socketHi: sockB}
	}
	return boundaryKey{nodeLo: nodeB, nodeHi: nodeA, socketLo: sockB, socketHi: sockA}
}

// validateDuplicateBoundaries checks that no two boundary links pair the
// same two surfaces, and that no surface is paired twice.
func validateDuplicateBoundaries(g *Graph) []ValidationError {
	var errs []ValidationError
	seen := make(map[boundaryKey]bool)
	partner := make(map[string]string)

	for _, l := range g.Links {
		from := g.Nodes[l.From]
		if from == nil {
			continue
		}
		out := from.Output(l.FromSocket)
		if out == nil || out.Kind != SocketBoundary {
			continue
		}
		key := makeBoundaryKey(l.From, l.FromSocket, l.To, l.ToSocket)
		if seen[key] {
			errs = append(errs, ValidationError{
				NodeID:   l.To,
				Message:  fmt.Sprintf("duplicate boundary link between %q and %q", l.FromSocket, l.ToSocket),
				Severity: SeverityError,
			})
			continue
		}
		seen[key] = true

		a := string(l.From) + "/" + l.FromSocket
		b := string(l.To) + "/" + l.ToSocket
		for _, end := range []struct{ self, other string }{{a, b}, {b, a}} {
			if p, ok := partner[end.self]; ok && p != end.other {
				errs = append(errs, ValidationError{
					NodeID:   l.To,
					Message:  fmt.Sprintf("surface socket %q bounds more than one surface", l.ToSocket),
					Severity: SeverityError,
				})
				break
			}
			partner[end.self] = end.other
		}
	}

	return errs
}
