package convert

import (
	"encoding/json"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigforge/rigforge/internal/diag"
	"github.com/rigforge/rigforge/pkg/rig"
)

func sampleRig() *rig.Rig {
	r := rig.New("sample", rig.Requirements{Nodes: 3, Beams: 2, Wheels: 1})
	r.Origin = mgl32.Vec3{1, 2, 3}
	r.Nodes = append(r.Nodes,
		rig.Node{Index: 0, AbsPosition: mgl32.Vec3{1, 2, 3}, Mass: 50, Friction: 1, Fixed: true},
		rig.Node{Index: 1, AbsPosition: mgl32.Vec3{2, 2, 3}, Mass: 75, Contacter: true, TyreNode: true},
		rig.Node{Index: 2, AbsPosition: mgl32.Vec3{1, 3, 3}, Mass: 50, NoGroundContact: true, RimNode: true},
	)
	r.Beams = append(r.Beams,
		rig.Beam{Node1: 0, Node2: 1, RestLength: 1, Spring: 9e6, Damp: 12000, Strength: 1e6, Deform: 400000, ShockIndex: -1},
		rig.Beam{Node1: 1, Node2: 2, Type: rig.BeamVirtual, Bound: rig.BoundShock1, ShortBound: 0.25, LongBound: 0.5, DetacherGroup: 2, ShockIndex: 0},
	)
	r.Shocks = append(r.Shocks, rig.Shock{BeamIndex: 1, SpringIn: 1000, DampIn: 100, SpringOut: 2000, DampOut: 200, Trigger: true})
	r.Wheels = append(r.Wheels, rig.Wheel{
		Variant: rig.VariantWheel2, AxleNode1: 0, AxleNode2: 1, BaseNode: 3,
		Rays: 4, Radius: 0.5, RimRadius: 0.3, Width: 0.3,
		Propulsion: rig.WheelPropelledForward, Braking: 1, ArmNode: rig.InvalidNode,
	})
	r.WheelDiffs = append(r.WheelDiffs, rig.WheelDiff{Wheel1: 0, Wheel2: 1, Types: []rig.DiffType{rig.DiffLocked, rig.DiffOpen}})
	r.AxleDiffs = append(r.AxleDiffs, rig.AxleDiff{Diff1: 0, Diff2: 1, Types: []rig.DiffType{rig.DiffViscous}})
	r.Rotators = append(r.Rotators, rig.Rotator{
		AxisNode1: 0, AxisNode2: 1,
		BaseNodes: [4]int{2, 3, 4, 5}, RotatingNodes: [4]int{6, 7, 8, 9},
		Rate: 1.5, Force: 10000000,
	})
	return r
}

func TestRigToRow(t *testing.T) {
	row := RigToRow(sampleRig())

	assert.Equal(t, "sample", row.Name)
	assert.Equal(t, float32(1), row.OriginX)
	assert.Equal(t, float32(2), row.OriginY)
	assert.Equal(t, float32(3), row.OriginZ)
	assert.Equal(t, 3, row.NodeCount)
	assert.Equal(t, 2, row.BeamCount)
	assert.Equal(t, 1, row.WheelCount)
}

func TestNodesToRows(t *testing.T) {
	rows := NodesToRows(7, sampleRig())

	require.Len(t, rows, 3)
	assert.Equal(t, uint(7), rows[0].RigID)
	assert.Equal(t, 0, rows[0].NodeIndex)
	assert.Equal(t, float32(1), rows[0].X)
	assert.True(t, rows[0].Fixed)
	assert.True(t, rows[1].Contacter)
	assert.True(t, rows[1].TyreNode)
	assert.True(t, rows[2].NoGroundContact)
	assert.True(t, rows[2].RimNode)
}

func TestBeamsToRows(t *testing.T) {
	rows := BeamsToRows(7, sampleRig())

	require.Len(t, rows, 2)
	assert.Equal(t, 0, rows[0].BeamIndex)
	assert.Equal(t, float32(9e6), rows[0].Spring)
	assert.Equal(t, -1, rows[0].ShockIndex)
	assert.Equal(t, int(rig.BeamVirtual), rows[1].Type)
	assert.Equal(t, int(rig.BoundShock1), rows[1].Bound)
	assert.Equal(t, float32(0.25), rows[1].ShortBound)
	assert.Equal(t, 2, rows[1].DetacherGroup)
	assert.Equal(t, 0, rows[1].ShockIndex)
}

func TestShocksToRows(t *testing.T) {
	rows := ShocksToRows(7, sampleRig())

	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].BeamIndex)
	assert.Equal(t, float32(1000), rows[0].SpringIn)
	assert.Equal(t, float32(200), rows[0].DampOut)
	assert.True(t, rows[0].Trigger)
}

func TestWheelsToRows(t *testing.T) {
	rows := WheelsToRows(7, sampleRig())

	require.Len(t, rows, 1)
	assert.Equal(t, int(rig.VariantWheel2), rows[0].Variant)
	assert.Equal(t, 3, rows[0].BaseNode)
	assert.Equal(t, float32(0.3), rows[0].RimRadius)
	assert.Equal(t, int(rig.WheelPropelledForward), rows[0].Propulsion)
	assert.Equal(t, rig.InvalidNode, rows[0].ArmNode)
}

func TestDiffsToRows(t *testing.T) {
	wheelRows, axleRows := DiffsToRows(7, sampleRig())

	require.Len(t, wheelRows, 1)
	require.Len(t, axleRows, 1)
	assert.Equal(t, 0, wheelRows[0].Wheel1)
	assert.Equal(t, 1, wheelRows[0].Wheel2)

	var types []rig.DiffType
	require.NoError(t, json.Unmarshal(wheelRows[0].Types, &types))
	assert.Equal(t, []rig.DiffType{rig.DiffLocked, rig.DiffOpen}, types)

	require.NoError(t, json.Unmarshal(axleRows[0].Types, &types))
	assert.Equal(t, []rig.DiffType{rig.DiffViscous}, types)
}

func TestDiffTypesToJSON_Empty(t *testing.T) {
	assert.JSONEq(t, "[]", string(diffTypesToJSON(nil)))
}

func TestRotatorsToRows(t *testing.T) {
	rows := RotatorsToRows(7, sampleRig())

	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].AxisNode1)
	assert.Equal(t, float32(1.5), rows[0].Rate)

	var nodes []int
	require.NoError(t, json.Unmarshal(rows[0].BaseNodes, &nodes))
	assert.Equal(t, []int{2, 3, 4, 5}, nodes)
	require.NoError(t, json.Unmarshal(rows[0].RotatingNodes, &nodes))
	assert.Equal(t, []int{6, 7, 8, 9}, nodes)
}

func TestDiagnosticsToRows(t *testing.T) {
	rows := DiagnosticsToRows(7, []diag.Message{
		{Severity: diag.SeverityWarning, Keyword: "wheels2", Text: "rim radius exceeds tyre radius"},
		{Severity: diag.SeverityError, Keyword: "beams", Text: "node not found"},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, uint(7), rows[0].RigID)
	assert.Equal(t, "warning", rows[0].Severity)
	assert.Equal(t, "wheels2", rows[0].Keyword)
	assert.Equal(t, "error", rows[1].Severity)
}
