package builder

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rigforge/rigforge/pkg/rig"
	"github.com/rigforge/rigforge/pkg/rigdef"
)

func TestAddBeam_DeformThreshold(t *testing.T) {
	tests := []struct {
		name     string
		defaults rigdef.BeamDefaults
		docAdv   bool
		want     float32
	}{
		{
			name:     "below creak floor is raised",
			defaults: rigdef.BeamDefaults{Deform: 50000},
			want:     100000,
		},
		{
			name:     "above creak floor is kept",
			defaults: rigdef.BeamDefaults{Deform: 250000},
			want:     250000,
		},
		{
			name:     "floor applies before scale",
			defaults: rigdef.BeamDefaults{Deform: 50000, DeformScale: 2},
			want:     200000,
		},
		{
			name:     "advanced deform skips the floor",
			defaults: rigdef.BeamDefaults{Deform: 50000, AdvancedDeform: true},
			want:     50000,
		},
		{
			name:     "advanced deform with scale",
			defaults: rigdef.BeamDefaults{Deform: 50000, DeformScale: 2, AdvancedDeform: true},
			want:     100000,
		},
		{
			name:     "document-level advanced deform",
			defaults: rigdef.BeamDefaults{Deform: 50000},
			docAdv:   true,
			want:     50000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := testContext(t, &rigdef.Document{AdvancedDeform: tt.docAdv})
			addNodes(t, c, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0})

			idx := c.addBeam(0, 1, c.beamDefaults(&tt.defaults), 0)
			assert.Equal(t, tt.want, c.rig.Beams[idx].Deform)
		})
	}
}

func TestAddBeam_NilPresetUsesGlobals(t *testing.T) {
	c, _ := testContext(t, &rigdef.Document{})
	addNodes(t, c, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 2})

	idx := c.addBeam(0, 1, c.beamDefaults(nil), 0)
	beam := c.rig.Beams[idx]
	assert.Equal(t, float32(9000000), beam.Spring)
	assert.Equal(t, float32(12000), beam.Damp)
	assert.Equal(t, float32(1000000), beam.Strength)
	assert.Equal(t, float32(400000), beam.Deform)
	assert.Equal(t, float32(2), beam.RestLength)
	assert.Equal(t, -1, beam.ShockIndex)
}

func TestBeamDefaults_Scales(t *testing.T) {
	c, _ := testContext(t, &rigdef.Document{})

	d := c.beamDefaults(&rigdef.BeamDefaults{
		Spring:      1000,
		SpringScale: 3,
		DampScale:   2,
	})
	assert.Equal(t, float32(3000), d.Spring)
	assert.Equal(t, float32(24000), d.Damp)
	assert.Equal(t, float32(1000000), d.Strength)
}

func TestProcessBeam(t *testing.T) {
	c, _ := testContext(t, &rigdef.Document{})
	addNodes(t, c, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0})

	require.NoError(t, c.processBeam(rigdef.Beam{
		Nodes:         [2]rigdef.NodeRef{rigdef.Num(0), rigdef.Num(1)},
		DetacherGroup: 2,
	}))
	beam := c.rig.Beams[0]
	assert.Equal(t, rig.BeamNormal, beam.Type)
	assert.Equal(t, rig.BoundNone, beam.Bound)
	assert.Equal(t, 2, beam.DetacherGroup)

	err := c.processBeam(rigdef.Beam{Nodes: [2]rigdef.NodeRef{rigdef.Num(0), rigdef.Num(0)}})
	assert.Error(t, err)

	err = c.processBeam(rigdef.Beam{Nodes: [2]rigdef.NodeRef{rigdef.Num(0), rigdef.Num(9)}})
	assert.Error(t, err)
}

func TestProcessBeam_RopeAndSupport(t *testing.T) {
	c, _ := testContext(t, &rigdef.Document{})
	addNodes(t, c, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0})

	require.NoError(t, c.processBeam(rigdef.Beam{
		Nodes: [2]rigdef.NodeRef{rigdef.Num(0), rigdef.Num(1)},
		Rope:  true,
	}))
	assert.Equal(t, rig.BoundRope, c.rig.Beams[0].Bound)

	require.NoError(t, c.processBeam(rigdef.Beam{
		Nodes:          [2]rigdef.NodeRef{rigdef.Num(0), rigdef.Num(1)},
		Support:        true,
		ExtensionLimit: 2.5,
	}))
	assert.Equal(t, rig.BeamSupport, c.rig.Beams[1].Type)
	assert.Equal(t, rig.BoundSupport, c.rig.Beams[1].Bound)
	assert.Equal(t, float32(2.5), c.rig.Beams[1].LongBound)

	// Missing extension limit falls back to 1.
	require.NoError(t, c.processBeam(rigdef.Beam{
		Nodes:   [2]rigdef.NodeRef{rigdef.Num(0), rigdef.Num(1)},
		Support: true,
	}))
	assert.Equal(t, float32(1), c.rig.Beams[2].LongBound)
}

func TestProcessShock(t *testing.T) {
	doc := &rigdef.Document{Root: &rigdef.Module{Shocks: make([]rigdef.Shock, 2)}}
	c, _ := testContext(t, doc)
	addNodes(t, c, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 2, 0})

	require.NoError(t, c.processShock(rigdef.Shock{
		Nodes:      [2]rigdef.NodeRef{rigdef.Num(0), rigdef.Num(1)},
		Spring:     500000,
		Damp:       3000,
		ShortBound: 0.3,
		LongBound:  0.4,
	}))

	beam := c.rig.Beams[0]
	assert.Equal(t, rig.BoundShock1, beam.Bound)
	assert.Equal(t, float32(500000), beam.Spring)
	assert.Equal(t, float32(0.3), beam.ShortBound)
	assert.Equal(t, float32(0.4), beam.LongBound)
	assert.Equal(t, 0, beam.ShockIndex)

	require.Len(t, c.rig.Shocks, 1)
	assert.Equal(t, 0, c.rig.Shocks[0].BeamIndex)
	assert.Equal(t, float32(500000), c.rig.Shocks[0].SpringIn)

	// Precompression scales the cached rest length.
	require.NoError(t, c.processShock(rigdef.Shock{
		Nodes:          [2]rigdef.NodeRef{rigdef.Num(0), rigdef.Num(1)},
		Spring:         500000,
		Damp:           3000,
		Precompression: 1.5,
	}))
	assert.Equal(t, float32(3), c.rig.Beams[1].RestLength)
}

func TestProcessShock2_MetricBounds(t *testing.T) {
	doc := &rigdef.Document{Root: &rigdef.Module{Shocks2: make([]rigdef.Shock2, 1)}}
	c, _ := testContext(t, doc)
	addNodes(t, c, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 2, 0})

	_, err := c.processShock2(rigdef.Shock2{
		Nodes:      [2]rigdef.NodeRef{rigdef.Num(0), rigdef.Num(1)},
		SpringIn:   100000,
		DampIn:     1000,
		ShortBound: 1.5, // metres
		LongBound:  3,   // metres
		Metric:     true,
	}, rig.BoundShock2)
	require.NoError(t, err)

	beam := c.rig.Beams[0]
	// Rest length 2: 1.5m of travel is 0.25 contraction, 3m is 0.5
	// extension.
	assert.InDelta(t, 0.25, beam.ShortBound, 1e-6)
	assert.InDelta(t, 0.5, beam.LongBound, 1e-6)
	assert.Equal(t, rig.BoundShock2, beam.Bound)
}

func TestProcessShock2_CoincidentEndpoints(t *testing.T) {
	c, _ := testContext(t, &rigdef.Document{})
	addNodes(t, c, mgl32.Vec3{0, 1, 0}, mgl32.Vec3{0, 1, 0})

	// Same node on both ends.
	_, err := c.processShock2(rigdef.Shock2{
		Nodes: [2]rigdef.NodeRef{rigdef.Num(0), rigdef.Num(0)},
	}, rig.BoundShock2)
	assert.Error(t, err)

	// Distinct nodes at the same position have zero rest length; the
	// metric conversion cannot divide by it.
	_, err = c.processShock2(rigdef.Shock2{
		Nodes:      [2]rigdef.NodeRef{rigdef.Num(0), rigdef.Num(1)},
		ShortBound: 1.5,
		LongBound:  3,
		Metric:     true,
	}, rig.BoundShock2)
	assert.Error(t, err)

	assert.Zero(t, c.rig.BeamCount())
	assert.Empty(t, c.rig.Shocks)
}

func TestProcessShock_SameNode(t *testing.T) {
	c, _ := testContext(t, &rigdef.Document{})
	addNodes(t, c, mgl32.Vec3{0, 1, 0})

	err := c.processShock(rigdef.Shock{
		Nodes: [2]rigdef.NodeRef{rigdef.Num(0), rigdef.Num(0)},
	})
	assert.Error(t, err)
	assert.Zero(t, c.rig.BeamCount())
}

func TestProcessShock3(t *testing.T) {
	doc := &rigdef.Document{Root: &rigdef.Module{Shocks3: make([]rigdef.Shock3, 1)}}
	c, _ := testContext(t, doc)
	addNodes(t, c, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 2, 0})

	require.NoError(t, c.processShock3(rigdef.Shock3{
		Shock2: rigdef.Shock2{
			Nodes:    [2]rigdef.NodeRef{rigdef.Num(0), rigdef.Num(1)},
			SpringIn: 100000,
			DampIn:   1000,
			DampOut:  1200,
		},
		DampInSlow:  4000,
		SplitIn:     0.8,
		DampOutSlow: 4400,
		SplitOut:    0.9,
	}))

	require.Len(t, c.rig.Shocks, 1)
	s := c.rig.Shocks[0]
	assert.Equal(t, rig.BoundShock3, c.rig.Beams[0].Bound)
	assert.Equal(t, float32(4000), s.DampInSlow)
	assert.Equal(t, float32(0.8), s.SplitIn)
	assert.Equal(t, float32(4400), s.DampOutSlow)
	assert.Equal(t, float32(0.9), s.SplitOut)
}

func TestProcessTrigger(t *testing.T) {
	doc := &rigdef.Document{Root: &rigdef.Module{Triggers: make([]rigdef.Trigger, 1)}}
	c, _ := testContext(t, doc)
	addNodes(t, c, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 2, 0})

	require.NoError(t, c.processTrigger(rigdef.Trigger{
		Nodes:          [2]rigdef.NodeRef{rigdef.Num(0), rigdef.Num(1)},
		ContractionKey: 3,
		ExpansionKey:   4,
		ShortBound:     0.2,
		LongBound:      0.3,
	}))

	beam := c.rig.Beams[0]
	assert.Equal(t, rig.BoundTrigger, beam.Bound)
	require.Len(t, c.rig.Shocks, 1)
	assert.True(t, c.rig.Shocks[0].Trigger)
	assert.Equal(t, 3, c.rig.Shocks[0].ContractionKey)
	assert.Equal(t, 4, c.rig.Shocks[0].ExpansionKey)
}

func TestProcessTrigger_KeyRange(t *testing.T) {
	c, _ := testContext(t, &rigdef.Document{})
	addNodes(t, c, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 2, 0})

	for _, keys := range [][2]int{{0, 4}, {3, 85}, {-1, 2}} {
		err := c.processTrigger(rigdef.Trigger{
			Nodes:          [2]rigdef.NodeRef{rigdef.Num(0), rigdef.Num(1)},
			ContractionKey: keys[0],
			ExpansionKey:   keys[1],
		})
		assert.Error(t, err)
	}
	assert.Zero(t, c.rig.BeamCount())
}

func TestProcessRope(t *testing.T) {
	c, _ := testContext(t, &rigdef.Document{})
	addNodes(t, c, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 2, 0})

	require.NoError(t, c.processRope(rigdef.Rope{
		Nodes: [2]rigdef.NodeRef{rigdef.Num(0), rigdef.Num(1)},
	}))
	assert.Equal(t, rig.BoundRope, c.rig.Beams[0].Bound)
	assert.Equal(t, float32(1), c.rig.Beams[0].LongBound)
}

func TestAddWheelBeam_DeformFloor(t *testing.T) {
	c, _ := testContext(t, &rigdef.Document{})
	addNodes(t, c, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0})
	c.defaults.BeamDeform = 50000

	idx := c.addWheelBeam(0, 1, 600000, 800, false, 0)
	assert.Equal(t, float32(100000), c.rig.Beams[idx].Deform)
}

func TestAddWheelBeam_AdvancedDeformSkipsFloor(t *testing.T) {
	c, _ := testContext(t, &rigdef.Document{AdvancedDeform: true})
	addNodes(t, c, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0})
	c.defaults.BeamDeform = 50000

	idx := c.addWheelBeam(0, 1, 600000, 800, false, 0)
	assert.Equal(t, float32(50000), c.rig.Beams[idx].Deform)
}
