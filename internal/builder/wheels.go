package builder

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/rigforge/rigforge/pkg/rig"
	"github.com/rigforge/rigforge/pkg/rigdef"
)

// wheelGeometry is the normalized frame every wheel variant builds in.
type wheelGeometry struct {
	axle1, axle2 int        // axle node indices, axle1 has the smaller local Z
	axis         mgl32.Vec3 // unit axle vector, axle1 -> axle2
}

// axleGeometry resolves and normalizes a wheel's axle pair. Axle node
// order is swapped when needed so that axle1 has the smaller local Z:
// every downstream ring formula assumes this orientation.
func (c *buildContext) axleGeometry(ref1, ref2 rigdef.NodeRef) (wheelGeometry, error) {
	var g wheelGeometry

	a1, err := c.resolve(ref1)
	if err != nil {
		return g, fmt.Errorf("axle node: %w", err)
	}
	a2, err := c.resolve(ref2)
	if err != nil {
		return g, fmt.Errorf("axle node: %w", err)
	}
	if a1 == a2 {
		return g, fmt.Errorf("axle nodes are the same node %d", a1)
	}

	if c.rig.Nodes[a1].RelPosition.Z() > c.rig.Nodes[a2].RelPosition.Z() {
		a1, a2 = a2, a1
	}

	axis := c.nodePos(a2).Sub(c.nodePos(a1))
	if axis.Len() < 1e-6 {
		return g, fmt.Errorf("axle nodes %d and %d coincide", a1, a2)
	}

	g.axle1 = a1
	g.axle2 = a2
	g.axis = axis.Normalize()
	return g, nil
}

// rayVector returns a vector perpendicular to the axle axis with the
// given radius, the zero-angle spoke of the ring.
func rayVector(axis mgl32.Vec3, radius float32) mgl32.Vec3 {
	up := mgl32.Vec3{0, 1, 0}
	if abs32(axis.Dot(up)) > 0.99 {
		up = mgl32.Vec3{1, 0, 0}
	}
	return axis.Cross(up).Normalize().Mul(radius)
}

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

// buildRing emits 2*rays nodes by rotating the ray vector around the
// axle in 360/rays steps, alternating outer (axle1 side) and inner
// (axle2 side) ring attachment. Nodes are appended at the current top
// of the table; the returned base index plus ray arithmetic addresses
// every member.
func (c *buildContext) buildRing(g wheelGeometry, rays int, radius, massPerNode float32, tyre bool) int {
	base := c.rig.NodeCount()
	ray := rayVector(g.axis, radius)
	defaults := c.nodeDefaults(nil)

	for i := 0; i < rays; i++ {
		angle := 2 * float32(math.Pi) * float32(i) / float32(rays)
		spoke := mgl32.QuatRotate(angle, g.axis).Rotate(ray)

		for _, axleNode := range [2]int{g.axle1, g.axle2} {
			rel := c.rig.Nodes[axleNode].RelPosition.Add(spoke)
			idx := c.initNode(rel, defaults)
			node := &c.rig.Nodes[idx]
			node.Mass = massPerNode
			node.Contacter = true
			if tyre {
				node.TyreNode = true
			} else {
				node.RimNode = true
			}
		}
	}
	return base
}

// armNode resolves a wheel's optional steering reference arm node.
func (c *buildContext) armNode(ref rigdef.NodeRef) int {
	if ref.IsUnset() {
		return rig.InvalidNode
	}
	return c.resolveOrWarn(ref)
}

// rigiditySide resolves a wheel's optional rigidity node and reports
// which ring the per-ray rigidity beams should attach to: the ring on
// the axle side nearer the rigidity node.
func (c *buildContext) rigiditySide(g wheelGeometry, ref *rigdef.NodeRef) (node int, onOuter bool) {
	if ref == nil {
		return rig.InvalidNode, false
	}
	idx := c.resolveOrWarn(*ref)
	if idx == rig.InvalidNode {
		return rig.InvalidNode, false
	}
	p := c.nodePos(idx)
	d1 := p.Sub(c.nodePos(g.axle1)).Len()
	d2 := p.Sub(c.nodePos(g.axle2)).Len()
	return idx, d1 <= d2
}

// addRigidityBeams ties the rigidity node into the ring with one
// virtual beam per ray, a non-visual lateral load path.
func (c *buildContext) addRigidityBeams(rigidityNode int, rays int, ringNode func(i int) int, spring, damp float32) {
	for i := 0; i < rays; i++ {
		idx := c.addWheelBeam(rigidityNode, ringNode(i), spring, damp, false, 0)
		c.rig.Beams[idx].Type = rig.BeamVirtual
	}
}

// finishWheel appends the wheel record and does propulsion and visual
// bookkeeping shared by all variants.
func (c *buildContext) finishWheel(w rig.Wheel, visual rig.VisualRequest) {
	wheelIdx := len(c.rig.Wheels)
	c.rig.Wheels = append(c.rig.Wheels, w)

	if w.Propulsion != rig.WheelNotPropelled {
		c.propedWheels = append(c.propedWheels, wheelIdx)
	}

	visual.Nodes = []int{w.AxleNode1, w.AxleNode2}
	c.rig.Visuals = append(c.rig.Visuals, visual)
}

// processWheel builds one plain wheel: 2R ring nodes and 8R beams,
// plus R rigidity beams when a rigidity node is given.
func (c *buildContext) processWheel(w rigdef.Wheel) error {
	if len(c.rig.Wheels) >= c.limits.MaxWheels {
		return fmt.Errorf("%w: wheel limit %d reached", errCapacity, c.limits.MaxWheels)
	}
	if w.Rays < 3 {
		return fmt.Errorf("wheel needs at least 3 rays, got %d", w.Rays)
	}

	g, err := c.axleGeometry(w.Nodes[0], w.Nodes[1])
	if err != nil {
		return err
	}
	rigidityNode, onOuter := c.rigiditySide(g, w.RigidityNode)
	armNode := c.armNode(w.ArmNode)

	base := c.buildRing(g, w.Rays, w.Radius, w.Mass/float32(2*w.Rays), true)
	outer := func(i int) int { return base + (i%w.Rays)*2 }
	inner := func(i int) int { return base + (i%w.Rays)*2 + 1 }

	for i := 0; i < w.Rays; i++ {
		// Spokes and cross spokes.
		c.addWheelBeam(g.axle1, outer(i), w.Spring, w.Damp, false, 0)
		c.addWheelBeam(g.axle2, inner(i), w.Spring, w.Damp, false, 0)
		c.addWheelBeam(g.axle2, outer(i), w.Spring, w.Damp, false, 0)
		c.addWheelBeam(g.axle1, inner(i), w.Spring, w.Damp, false, 0)
		// Tread cross and hoop reinforcement.
		c.addWheelBeam(outer(i), inner(i), w.Spring, w.Damp, false, 0)
		c.addWheelBeam(outer(i), outer(i+1), w.Spring, w.Damp, false, 0)
		c.addWheelBeam(inner(i), inner(i+1), w.Spring, w.Damp, false, 0)
		c.addWheelBeam(outer(i), inner(i+1), w.Spring, w.Damp, false, 0)
	}

	if rigidityNode != rig.InvalidNode {
		ring := inner
		if onOuter {
			ring = outer
		}
		c.addRigidityBeams(rigidityNode, w.Rays, ring, w.Spring, w.Damp)
	}

	c.finishWheel(rig.Wheel{
		Variant:         rig.VariantWheel,
		AxleNode1:       g.axle1,
		AxleNode2:       g.axle2,
		BaseNode:        base,
		Rays:            w.Rays,
		Radius:          w.Radius,
		Width:           w.Width,
		Propulsion:      rig.WheelPropulsion(w.Propulsion),
		Braking:         int(w.Braking),
		ArmNode:         armNode,
		RigidityOnOuter: onOuter,
	}, rig.VisualRequest{
		Kind:     rig.VisualWheelFace,
		Mesh:     w.FaceMaterial,
		Material: w.BandMaterial,
	})
	return nil
}

// processMeshWheel builds one mesh wheel: plain-wheel topology with a
// rendered rim mesh instead of generated face/band surfaces.
func (c *buildContext) processMeshWheel(w rigdef.MeshWheel) error {
	if err := c.processWheel(w.Wheel); err != nil {
		return err
	}

	wheel := &c.rig.Wheels[len(c.rig.Wheels)-1]
	wheel.Variant = rig.VariantMeshWheel
	wheel.RimRadius = w.RimRadius

	// processWheel already queued a face/band request; replace it with
	// the mesh request.
	c.rig.Visuals[len(c.rig.Visuals)-1] = rig.VisualRequest{
		Kind:     rig.VisualWheelMesh,
		Nodes:    []int{wheel.AxleNode1, wheel.AxleNode2},
		Mesh:     w.MeshName,
		Material: w.Material,
		Side:     int(w.Side),
	}
	return nil
}

// processWheel2 builds one wheel2: 2R rim nodes plus 2R tyre nodes and
// 24R beams (25R with a rigidity node). Tyre-side beams run at half the
// nominal spring rate because two beams act in parallel across the
// sidewall.
func (c *buildContext) processWheel2(w rigdef.Wheel2) error {
	return c.buildDualRingWheel(w, rig.VariantWheel2, rig.VisualRequest{
		Kind:     rig.VisualWheelFace,
		Mesh:     w.FaceMaterial,
		Material: w.BandMaterial,
	})
}

// processFlexBodyWheel builds one flexbody wheel: wheel2 topology minus
// the rim bracing beams (the deformable visual mesh braces the rim),
// giving 20R beams (21R with a rigidity node).
func (c *buildContext) processFlexBodyWheel(w rigdef.FlexBodyWheel) error {
	return c.buildDualRingWheel(w.Wheel2, rig.VariantFlexBodyWheel, rig.VisualRequest{
		Kind:     rig.VisualFlexBodyWheel,
		Mesh:     w.RimMeshName,
		Material: w.TyreMeshName,
		Side:     int(w.Side),
	})
}

// buildDualRingWheel is the shared wheel2/flexbodywheel generator.
func (c *buildContext) buildDualRingWheel(w rigdef.Wheel2, variant rig.WheelVariant, visual rig.VisualRequest) error {
	if len(c.rig.Wheels) >= c.limits.MaxWheels {
		return fmt.Errorf("%w: wheel limit %d reached", errCapacity, c.limits.MaxWheels)
	}
	if w.Rays < 3 {
		return fmt.Errorf("wheel needs at least 3 rays, got %d", w.Rays)
	}
	if w.RimRadius >= w.TyreRadius {
		c.sink.Warning(c.keyword, fmt.Sprintf("rim radius %.3f is not smaller than tyre radius %.3f", w.RimRadius, w.TyreRadius))
	}

	g, err := c.axleGeometry(w.Nodes[0], w.Nodes[1])
	if err != nil {
		return err
	}
	rigidityNode, onOuter := c.rigiditySide(g, w.RigidityNode)
	armNode := c.armNode(w.ArmNode)

	massPerNode := w.Mass / float32(4*w.Rays)
	base := c.buildRing(g, w.Rays, w.RimRadius, massPerNode, false)
	tyreBase := c.buildRing(g, w.Rays, w.TyreRadius, massPerNode, true)
	// Rim nodes ride inside the tyre and never touch ground themselves.
	for i := base; i < tyreBase; i++ {
		c.rig.Nodes[i].Contacter = false
		c.rig.Nodes[i].NoGroundContact = true
	}

	rimO := func(i int) int { return base + (i%w.Rays)*2 }
	rimI := func(i int) int { return base + (i%w.Rays)*2 + 1 }
	tyreO := func(i int) int { return tyreBase + (i%w.Rays)*2 }
	tyreI := func(i int) int { return tyreBase + (i%w.Rays)*2 + 1 }

	// Two sidewall beams share each load path, so the tyre runs at
	// half the nominal spring rate.
	tyreSpring := w.TyreSpring / 2
	bracedRim := variant != rig.VariantFlexBodyWheel

	for i := 0; i < w.Rays; i++ {
		// Rim spokes and cross spokes.
		c.addWheelBeam(g.axle1, rimO(i), w.RimSpring, w.RimDamp, false, 0)
		c.addWheelBeam(g.axle2, rimI(i), w.RimSpring, w.RimDamp, false, 0)
		c.addWheelBeam(g.axle2, rimO(i), w.RimSpring, w.RimDamp, false, 0)
		c.addWheelBeam(g.axle1, rimI(i), w.RimSpring, w.RimDamp, false, 0)
		if bracedRim {
			// Rim cross, hoops and diagonal.
			c.addWheelBeam(rimO(i), rimI(i), w.RimSpring, w.RimDamp, false, 0)
			c.addWheelBeam(rimO(i), rimO(i+1), w.RimSpring, w.RimDamp, false, 0)
			c.addWheelBeam(rimI(i), rimI(i+1), w.RimSpring, w.RimDamp, false, 0)
			c.addWheelBeam(rimO(i), rimI(i+1), w.RimSpring, w.RimDamp, false, 0)
		}

		// Sidewall: each tyre node anchors to four rim nodes.
		c.addWheelBeam(tyreO(i), rimO(i), tyreSpring, w.TyreDamp, false, 0)
		c.addWheelBeam(tyreO(i), rimO(i+1), tyreSpring, w.TyreDamp, false, 0)
		c.addWheelBeam(tyreO(i), rimI(i), tyreSpring, w.TyreDamp, false, 0)
		c.addWheelBeam(tyreO(i), rimI(i+1), tyreSpring, w.TyreDamp, false, 0)
		c.addWheelBeam(tyreI(i), rimI(i), tyreSpring, w.TyreDamp, false, 0)
		c.addWheelBeam(tyreI(i), rimI(i+1), tyreSpring, w.TyreDamp, false, 0)
		c.addWheelBeam(tyreI(i), rimO(i), tyreSpring, w.TyreDamp, false, 0)
		c.addWheelBeam(tyreI(i), rimO(i+1), tyreSpring, w.TyreDamp, false, 0)

		// Tread: cross, hoops, diagonals.
		c.addWheelBeam(tyreO(i), tyreI(i), tyreSpring, w.TyreDamp, false, 0)
		c.addWheelBeam(tyreO(i), tyreO(i+1), tyreSpring, w.TyreDamp, false, 0)
		c.addWheelBeam(tyreI(i), tyreI(i+1), tyreSpring, w.TyreDamp, false, 0)
		c.addWheelBeam(tyreO(i), tyreI(i+1), tyreSpring, w.TyreDamp, false, 0)
		c.addWheelBeam(tyreI(i), tyreO(i+1), tyreSpring, w.TyreDamp, false, 0)
		// Virtual pressure beams keep the tyre inflated against the
		// axle; support-bounded so they only resist compression past
		// the rim.
		p1 := c.addWheelBeam(g.axle1, tyreO(i), tyreSpring, w.TyreDamp, true, 1)
		p2 := c.addWheelBeam(g.axle2, tyreI(i), tyreSpring, w.TyreDamp, true, 1)
		c.rig.Beams[p1].Type = rig.BeamVirtual
		c.rig.Beams[p2].Type = rig.BeamVirtual
		// Rim-to-next-tyre stabilizer.
		c.addWheelBeam(rimO(i), tyreO(i+1), tyreSpring, w.TyreDamp, false, 0)
	}

	if rigidityNode != rig.InvalidNode {
		ring := rimI
		if onOuter {
			ring = rimO
		}
		c.addRigidityBeams(rigidityNode, w.Rays, ring, w.RimSpring, w.RimDamp)
	}

	c.finishWheel(rig.Wheel{
		Variant:         variant,
		AxleNode1:       g.axle1,
		AxleNode2:       g.axle2,
		BaseNode:        base,
		Rays:            w.Rays,
		Radius:          w.TyreRadius,
		RimRadius:       w.RimRadius,
		Width:           w.Width,
		Propulsion:      rig.WheelPropulsion(w.Propulsion),
		Braking:         int(w.Braking),
		ArmNode:         armNode,
		RigidityOnOuter: onOuter,
	}, visual)
	return nil
}
