// Package convert maps assembled rig tables onto the GORM rows of the
// sqlite export schema.
package convert

import (
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/rigforge/rigforge/internal/diag"
	"github.com/rigforge/rigforge/internal/model"
	"github.com/rigforge/rigforge/pkg/rig"
)

// diffTypesToJSON marshals a differential's behavior list. The list is
// small and made of ints, so marshalling cannot fail.
func diffTypesToJSON(types []rig.DiffType) datatypes.JSON {
	if len(types) == 0 {
		return datatypes.JSON("[]")
	}
	data, _ := json.Marshal(types)
	return datatypes.JSON(data)
}

func intsToJSON(vals []int) datatypes.JSON {
	data, _ := json.Marshal(vals)
	return datatypes.JSON(data)
}

// RigToRow builds the parent row for one assembled rig.
func RigToRow(r *rig.Rig) model.Rig {
	return model.Rig{
		Name:       r.Name,
		OriginX:    r.Origin.X(),
		OriginY:    r.Origin.Y(),
		OriginZ:    r.Origin.Z(),
		NodeCount:  r.NodeCount(),
		BeamCount:  r.BeamCount(),
		WheelCount: len(r.Wheels),
	}
}

// NodesToRows converts the dense node table.
func NodesToRows(rigID uint, r *rig.Rig) []model.Node {
	rows := make([]model.Node, 0, len(r.Nodes))
	for _, n := range r.Nodes {
		rows = append(rows, model.Node{
			RigID:           rigID,
			NodeIndex:       n.Index,
			X:               n.AbsPosition.X(),
			Y:               n.AbsPosition.Y(),
			Z:               n.AbsPosition.Z(),
			Mass:            n.Mass,
			Friction:        n.Friction,
			Fixed:           n.Fixed,
			NoGroundContact: n.NoGroundContact,
			Contacter:       n.Contacter,
			RimNode:         n.RimNode,
			TyreNode:        n.TyreNode,
		})
	}
	return rows
}

// BeamsToRows converts the beam table.
func BeamsToRows(rigID uint, r *rig.Rig) []model.Beam {
	rows := make([]model.Beam, 0, len(r.Beams))
	for i, b := range r.Beams {
		rows = append(rows, model.Beam{
			RigID:         rigID,
			BeamIndex:     i,
			Node1:         b.Node1,
			Node2:         b.Node2,
			RestLength:    b.RestLength,
			Spring:        b.Spring,
			Damp:          b.Damp,
			Strength:      b.Strength,
			Deform:        b.Deform,
			Type:          int(b.Type),
			Bound:         int(b.Bound),
			ShortBound:    b.ShortBound,
			LongBound:     b.LongBound,
			DetacherGroup: b.DetacherGroup,
			ShockIndex:    b.ShockIndex,
		})
	}
	return rows
}

// ShocksToRows converts the shock table.
func ShocksToRows(rigID uint, r *rig.Rig) []model.Shock {
	rows := make([]model.Shock, 0, len(r.Shocks))
	for _, s := range r.Shocks {
		rows = append(rows, model.Shock{
			RigID:     rigID,
			BeamIndex: s.BeamIndex,
			SpringIn:  s.SpringIn,
			DampIn:    s.DampIn,
			SpringOut: s.SpringOut,
			DampOut:   s.DampOut,
			Trigger:   s.Trigger,
		})
	}
	return rows
}

// WheelsToRows converts the wheel table.
func WheelsToRows(rigID uint, r *rig.Rig) []model.Wheel {
	rows := make([]model.Wheel, 0, len(r.Wheels))
	for i, w := range r.Wheels {
		rows = append(rows, model.Wheel{
			RigID:      rigID,
			WheelIndex: i,
			Variant:    int(w.Variant),
			AxleNode1:  w.AxleNode1,
			AxleNode2:  w.AxleNode2,
			BaseNode:   w.BaseNode,
			Rays:       w.Rays,
			Radius:     w.Radius,
			RimRadius:  w.RimRadius,
			Width:      w.Width,
			Propulsion: int(w.Propulsion),
			Braking:    w.Braking,
			ArmNode:    w.ArmNode,
		})
	}
	return rows
}

// DiffsToRows converts both differential tables.
func DiffsToRows(rigID uint, r *rig.Rig) ([]model.WheelDiff, []model.AxleDiff) {
	wheelRows := make([]model.WheelDiff, 0, len(r.WheelDiffs))
	for _, d := range r.WheelDiffs {
		wheelRows = append(wheelRows, model.WheelDiff{
			RigID:  rigID,
			Wheel1: d.Wheel1,
			Wheel2: d.Wheel2,
			Types:  diffTypesToJSON(d.Types),
		})
	}
	axleRows := make([]model.AxleDiff, 0, len(r.AxleDiffs))
	for _, d := range r.AxleDiffs {
		axleRows = append(axleRows, model.AxleDiff{
			RigID: rigID,
			Diff1: d.Diff1,
			Diff2: d.Diff2,
			Types: diffTypesToJSON(d.Types),
		})
	}
	return wheelRows, axleRows
}

// RotatorsToRows converts the rotator table.
func RotatorsToRows(rigID uint, r *rig.Rig) []model.Rotator {
	rows := make([]model.Rotator, 0, len(r.Rotators))
	for _, rot := range r.Rotators {
		rows = append(rows, model.Rotator{
			RigID:         rigID,
			AxisNode1:     rot.AxisNode1,
			AxisNode2:     rot.AxisNode2,
			BaseNodes:     intsToJSON(rot.BaseNodes[:]),
			RotatingNodes: intsToJSON(rot.RotatingNodes[:]),
			Rate:          rot.Rate,
			Force:         rot.Force,
		})
	}
	return rows
}

// DiagnosticsToRows converts the construction messages.
func DiagnosticsToRows(rigID uint, diags []diag.Message) []model.Diagnostic {
	rows := make([]model.Diagnostic, 0, len(diags))
	for _, m := range diags {
		rows = append(rows, model.Diagnostic{
			RigID:    rigID,
			Severity: m.Severity.String(),
			Keyword:  m.Keyword,
			Text:     m.Text,
		})
	}
	return rows
}
