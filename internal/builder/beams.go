package builder

import (
	"fmt"

	"github.com/rigforge/rigforge/pkg/rig"
	"github.com/rigforge/rigforge/pkg/rigdef"
)

// addBeam allocates a beam between two resolved node indices, caching
// the rest length from current node positions and deriving coefficients
// from the resolved defaults preset.
//
// The deformation threshold is layered in a fixed order: start from the
// preset's base value, raise it to at least the creak floor, then
// multiply by the preset's scale factor. Documents that enabled
// advanced deformation skip the floor step. The floor-before-scale
// order is observable in legacy content and must not be rearranged.
func (c *buildContext) addBeam(n1, n2 int, d resolvedBeamDefaults, detacherGroup int) int {
	deform := d.Deform
	if !d.AdvancedDeform && deform < float32(c.defaults.CreakFloor) {
		deform = float32(c.defaults.CreakFloor)
	}
	deform *= d.DeformScale

	idx := c.addBeamRaw(n1, n2, d.Spring, d.Damp, d.Strength, deform)
	c.rig.Beams[idx].DetacherGroup = detacherGroup
	return idx
}

// addBeamRaw appends a beam slot with explicit coefficients. Rest
// length comes from the current absolute node positions.
func (c *buildContext) addBeamRaw(n1, n2 int, spring, damp, strength, deform float32) int {
	idx := c.rig.BeamCount()
	c.rig.Beams = append(c.rig.Beams, rig.Beam{
		Node1:      n1,
		Node2:      n2,
		RestLength: c.nodePos(n1).Sub(c.nodePos(n2)).Len(),
		Spring:     spring,
		Damp:       damp,
		Strength:   strength,
		Deform:     deform,
		Type:       rig.BeamNormal,
		Bound:      rig.BoundNone,
		ShockIndex: -1,
	})
	c.beamsBuilt++
	return idx
}

// defaultDeform is the deformation threshold for generated beams that
// carry no preset: the global default, raised to the creak floor unless
// the document enabled advanced deformation.
func (c *buildContext) defaultDeform() float32 {
	deform := float32(c.defaults.BeamDeform)
	if !c.doc.AdvancedDeform && deform < float32(c.defaults.CreakFloor) {
		deform = float32(c.defaults.CreakFloor)
	}
	return deform
}

// addWheelBeam is the thin wrapper used by the wheel generators: one
// call sets spring/damping and, when bounded, support-style length
// limiting.
func (c *buildContext) addWheelBeam(n1, n2 int, spring, damp float32, bounded bool, longBound float32) int {
	idx := c.addBeamRaw(n1, n2, spring, damp,
		float32(c.defaults.BeamStrength), c.defaultDeform())
	if bounded {
		beam := &c.rig.Beams[idx]
		beam.Bound = rig.BoundSupport
		beam.LongBound = longBound
	}
	return idx
}

// processBeam builds one record of a "beams" section.
func (c *buildContext) processBeam(b rigdef.Beam) error {
	n1, err := c.resolve(b.Nodes[0])
	if err != nil {
		return fmt.Errorf("beam endpoint: %w", err)
	}
	n2, err := c.resolve(b.Nodes[1])
	if err != nil {
		return fmt.Errorf("beam endpoint: %w", err)
	}
	if n1 == n2 {
		return fmt.Errorf("beam endpoints are the same node %d", n1)
	}

	idx := c.addBeam(n1, n2, c.beamDefaults(b.Defaults), b.DetacherGroup)
	beam := &c.rig.Beams[idx]

	switch {
	case b.Rope:
		beam.Bound = rig.BoundRope
	case b.Support:
		beam.Type = rig.BeamSupport
		beam.Bound = rig.BoundSupport
		beam.LongBound = b.ExtensionLimit
		if beam.LongBound <= 0 {
			beam.LongBound = 1
		}
	}
	return nil
}

// processShock builds one shock1 record: a beam with shock bounding and
// a shocks-table entry.
func (c *buildContext) processShock(s rigdef.Shock) error {
	n1, err := c.resolve(s.Nodes[0])
	if err != nil {
		return fmt.Errorf("shock endpoint: %w", err)
	}
	n2, err := c.resolve(s.Nodes[1])
	if err != nil {
		return fmt.Errorf("shock endpoint: %w", err)
	}
	if n1 == n2 {
		return fmt.Errorf("shock endpoints are the same node %d", n1)
	}

	idx := c.addBeam(n1, n2, c.beamDefaults(s.Defaults), s.DetacherGroup)
	beam := &c.rig.Beams[idx]
	beam.Spring = s.Spring
	beam.Damp = s.Damp
	beam.Bound = rig.BoundShock1
	beam.ShortBound = s.ShortBound
	beam.LongBound = s.LongBound
	if s.Precompression > 0 {
		beam.RestLength *= s.Precompression
	}

	beam.ShockIndex = len(c.rig.Shocks)
	c.rig.Shocks = append(c.rig.Shocks, rig.Shock{
		BeamIndex: idx,
		SpringIn:  s.Spring,
		DampIn:    s.Damp,
		SpringOut: s.Spring,
		DampOut:   s.Damp,
	})
	return nil
}

// processShock2 builds one shocks2 record; mode selects shock2 or
// shock3 bounding for the shared record layout.
func (c *buildContext) processShock2(s rigdef.Shock2, mode rig.BoundMode) (*rig.Shock, error) {
	n1, err := c.resolve(s.Nodes[0])
	if err != nil {
		return nil, fmt.Errorf("shock endpoint: %w", err)
	}
	n2, err := c.resolve(s.Nodes[1])
	if err != nil {
		return nil, fmt.Errorf("shock endpoint: %w", err)
	}
	if n1 == n2 {
		return nil, fmt.Errorf("shock endpoints are the same node %d", n1)
	}
	if s.Metric && c.nodePos(n1) == c.nodePos(n2) {
		return nil, fmt.Errorf("metric shock endpoints coincide, bound fractions undefined")
	}

	idx := c.addBeam(n1, n2, c.beamDefaults(s.Defaults), s.DetacherGroup)
	beam := &c.rig.Beams[idx]
	beam.Spring = s.SpringIn
	beam.Damp = s.DampIn
	beam.Bound = mode
	beam.ShortBound = s.ShortBound
	beam.LongBound = s.LongBound
	if s.Metric {
		// Bounds given in metres; convert to rest-length fractions.
		beam.ShortBound = 1 - s.ShortBound/beam.RestLength
		beam.LongBound = s.LongBound/beam.RestLength - 1
	}
	if s.Precompression > 0 {
		beam.RestLength *= s.Precompression
	}

	beam.ShockIndex = len(c.rig.Shocks)
	c.rig.Shocks = append(c.rig.Shocks, rig.Shock{
		BeamIndex:         idx,
		SpringIn:          s.SpringIn,
		DampIn:            s.DampIn,
		SpringOut:         s.SpringOut,
		DampOut:           s.DampOut,
		ProgressSpringIn:  s.ProgressSpringIn,
		ProgressDampIn:    s.ProgressDampIn,
		ProgressSpringOut: s.ProgressSpringOut,
		ProgressDampOut:   s.ProgressDampOut,
	})
	return &c.rig.Shocks[len(c.rig.Shocks)-1], nil
}

// processShock3 builds one shocks3 record: shocks2 plus fast/slow
// damping splits.
func (c *buildContext) processShock3(s rigdef.Shock3) error {
	shock, err := c.processShock2(s.Shock2, rig.BoundShock3)
	if err != nil {
		return err
	}
	shock.DampInSlow = s.DampInSlow
	shock.SplitIn = s.SplitIn
	shock.DampOutSlow = s.DampOutSlow
	shock.SplitOut = s.SplitOut
	return nil
}

// processTrigger builds one trigger record: a bounded beam that fires
// command keys at its travel limits.
func (c *buildContext) processTrigger(t rigdef.Trigger) error {
	const maxCommandKey = 84
	if t.ContractionKey < 1 || t.ContractionKey > maxCommandKey ||
		t.ExpansionKey < 1 || t.ExpansionKey > maxCommandKey {
		return fmt.Errorf("trigger command keys %d/%d out of range [1, %d]",
			t.ContractionKey, t.ExpansionKey, maxCommandKey)
	}

	n1, err := c.resolve(t.Nodes[0])
	if err != nil {
		return fmt.Errorf("trigger endpoint: %w", err)
	}
	n2, err := c.resolve(t.Nodes[1])
	if err != nil {
		return fmt.Errorf("trigger endpoint: %w", err)
	}

	idx := c.addBeam(n1, n2, c.beamDefaults(t.Defaults), t.DetacherGroup)
	beam := &c.rig.Beams[idx]
	beam.Bound = rig.BoundTrigger
	beam.ShortBound = t.ShortBound
	beam.LongBound = t.LongBound

	beam.ShockIndex = len(c.rig.Shocks)
	c.rig.Shocks = append(c.rig.Shocks, rig.Shock{
		BeamIndex:      idx,
		Trigger:        true,
		ContractionKey: t.ContractionKey,
		ExpansionKey:   t.ExpansionKey,
	})
	return nil
}

// processRope builds one rope record.
func (c *buildContext) processRope(r rigdef.Rope) error {
	n1, err := c.resolve(r.Nodes[0])
	if err != nil {
		return fmt.Errorf("rope endpoint: %w", err)
	}
	n2, err := c.resolve(r.Nodes[1])
	if err != nil {
		return fmt.Errorf("rope endpoint: %w", err)
	}

	idx := c.addBeam(n1, n2, c.beamDefaults(r.Defaults), r.DetacherGroup)
	c.rig.Beams[idx].Bound = rig.BoundRope
	c.rig.Beams[idx].LongBound = 1
	return nil
}
