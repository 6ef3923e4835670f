package builder

import (
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/rigforge/rigforge/internal/config"
	"github.com/rigforge/rigforge/internal/diag"
	"github.com/rigforge/rigforge/pkg/rig"
	"github.com/rigforge/rigforge/pkg/rigdef"
)

// buildContext is the single-owner state of one construction session.
// Everything the feature builders share lives here instead of in
// package globals, so one document produces one rig with no
// construction-order-dependent singleton access.
type buildContext struct {
	doc    *rigdef.Document
	rig    *rig.Rig
	sink   diag.Sink
	logger *slog.Logger

	defaults config.BuildDefaults
	limits   config.Limits

	// Node reference tables. byNumber exists separately from the dense
	// node array because duplicate document numbers are tolerated with
	// last-writer-wins lookup.
	byName   map[string]int
	byNumber map[int]int

	// Drivetrain bookkeeping.
	propedWheels       []int
	hasAxlesSection    bool
	declaredWheelDiffs bool
	declaredAxleDiffs  bool
	transferCasePair   *[2]int

	// Section keyword currently under construction, for diagnostics.
	keyword string

	// Tallies reported to the builder's meters when the session ends.
	nodesBuilt     int
	beamsBuilt     int
	recordsSkipped int
}

func newBuildContext(doc *rigdef.Document, r *rig.Rig, sink diag.Sink, logger *slog.Logger,
	defaults config.BuildDefaults, limits config.Limits) *buildContext {
	return &buildContext{
		doc:      doc,
		rig:      r,
		sink:     sink,
		logger:   logger,
		defaults: defaults,
		limits:   limits,
		byName:   make(map[string]int),
		byNumber: make(map[int]int),
	}
}

// resolvedBeamDefaults is a beam defaults preset with scales applied
// and config globals filled in where the document had no preset.
type resolvedBeamDefaults struct {
	Spring         float32
	Damp           float32
	Strength       float32
	Deform         float32
	DeformScale    float32
	AdvancedDeform bool
}

// beamDefaults resolves the preset active at a record's position. A
// nil preset means the record sits outside any set_beam_defaults
// directive and gets the config globals, scale 1.
func (c *buildContext) beamDefaults(d *rigdef.BeamDefaults) resolvedBeamDefaults {
	out := resolvedBeamDefaults{
		Spring:         float32(c.defaults.BeamSpring),
		Damp:           float32(c.defaults.BeamDamp),
		Strength:       float32(c.defaults.BeamStrength),
		Deform:         float32(c.defaults.BeamDeform),
		DeformScale:    1,
		AdvancedDeform: c.doc.AdvancedDeform,
	}
	if d == nil {
		return out
	}
	if d.Spring > 0 {
		out.Spring = d.Spring
	}
	if d.Damp > 0 {
		out.Damp = d.Damp
	}
	if d.Strength > 0 {
		out.Strength = d.Strength
	}
	if d.Deform > 0 {
		out.Deform = d.Deform
	}
	if d.SpringScale > 0 {
		out.Spring *= d.SpringScale
	}
	if d.DampScale > 0 {
		out.Damp *= d.DampScale
	}
	if d.StrengthScale > 0 {
		out.Strength *= d.StrengthScale
	}
	if d.DeformScale > 0 {
		out.DeformScale = d.DeformScale
	}
	out.AdvancedDeform = d.AdvancedDeform || c.doc.AdvancedDeform
	return out
}

// nodeDefaults fills config globals into a node defaults preset.
func (c *buildContext) nodeDefaults(d *rigdef.NodeDefaults) rigdef.NodeDefaults {
	out := rigdef.NodeDefaults{
		Friction: float32(c.defaults.NodeFriction),
		Volume:   float32(c.defaults.NodeVolume),
		Surface:  float32(c.defaults.NodeSurface),
	}
	if d == nil {
		return out
	}
	if d.Friction > 0 {
		out.Friction = d.Friction
	}
	if d.Volume > 0 {
		out.Volume = d.Volume
	}
	if d.Surface > 0 {
		out.Surface = d.Surface
	}
	out.LoadWeight = d.LoadWeight
	out.Options = d.Options
	return out
}

// defaultMass is the mass given to nodes without an explicit load.
func (c *buildContext) defaultMass() float32 {
	if c.doc.MinimumMass > 0 {
		return c.doc.MinimumMass
	}
	return float32(c.defaults.MinimumMass)
}

func (c *buildContext) nodePos(idx int) mgl32.Vec3 {
	return c.rig.Nodes[idx].AbsPosition
}
