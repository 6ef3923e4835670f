package builder

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/rigforge/rigforge/pkg/rig"
	"github.com/rigforge/rigforge/pkg/rigdef"
)

// processCamera builds one camera basis record. The center node is
// mandatory; back and left are optional and may be derived later.
func (c *buildContext) processCamera(cam rigdef.Camera) error {
	if len(c.rig.Cameras) >= c.limits.MaxCameras {
		return fmt.Errorf("%w: camera limit %d reached", errCapacity, c.limits.MaxCameras)
	}

	center, err := c.resolve(cam.Center)
	if err != nil {
		return fmt.Errorf("camera center: %w", err)
	}
	back, left := rig.InvalidNode, rig.InvalidNode
	if !cam.Back.IsUnset() {
		back = c.resolveOrWarn(cam.Back)
	}
	if !cam.Left.IsUnset() {
		left = c.resolveOrWarn(cam.Left)
	}
	c.rig.Cameras = append(c.rig.Cameras, rig.Camera{
		CenterNode: center,
		BackNode:   back,
		LeftNode:   left,
	})
	return nil
}

// processCinecam synthesizes the cinematic camera node and its eight
// suspension beams.
func (c *buildContext) processCinecam(cc rigdef.Cinecam) error {
	if len(c.rig.Cinecams) >= c.limits.MaxCinecams {
		return fmt.Errorf("%w: cinecam limit %d reached", errCapacity, c.limits.MaxCinecams)
	}

	var frame [8]int
	for i, ref := range cc.Nodes {
		idx, err := c.resolve(ref)
		if err != nil {
			return fmt.Errorf("cinecam frame node: %w", err)
		}
		frame[i] = idx
	}

	node := c.initNode(cc.Position, c.nodeDefaults(nil))
	c.rig.Nodes[node].NoGroundContact = true

	var cam rig.Cinecam
	cam.Node = node
	d := c.beamDefaults(cc.Defaults)
	if cc.Spring > 0 {
		d.Spring = cc.Spring
	}
	if cc.Damp > 0 {
		d.Damp = cc.Damp
	}
	for i, fn := range frame {
		beamIdx := c.addBeam(node, fn, d, 0)
		c.rig.Beams[beamIdx].Type = rig.BeamVirtual
		cam.Beams[i] = beamIdx
	}

	c.rig.Cinecams = append(c.rig.Cinecams, cam)
	return nil
}

// processWing builds one wing record; spanwise grouping happens in the
// finalize pass once all wings exist.
func (c *buildContext) processWing(w rigdef.Wing) error {
	var out rig.Wing
	for i, ref := range w.Nodes {
		idx, err := c.resolve(ref)
		if err != nil {
			return fmt.Errorf("wing node: %w", err)
		}
		out.Nodes[i] = idx
	}
	out.Control = w.Control
	out.MinDeflection = w.MinDeflection
	out.MaxDeflection = w.MaxDeflection
	out.Airfoil = w.Airfoil

	c.rig.Wings = append(c.rig.Wings, out)
	return nil
}

// processAirbrake builds one airbrake record and its visual request.
func (c *buildContext) processAirbrake(ab rigdef.Airbrake) error {
	if len(c.rig.Airbrakes) >= c.limits.MaxAirbrakes {
		return fmt.Errorf("%w: airbrake limit %d reached", errCapacity, c.limits.MaxAirbrakes)
	}

	var out rig.Airbrake
	var err error
	if out.RefNode, err = c.resolve(ab.RefNode); err != nil {
		return fmt.Errorf("airbrake reference node: %w", err)
	}
	if out.XNode, err = c.resolve(ab.XNode); err != nil {
		return fmt.Errorf("airbrake x-axis node: %w", err)
	}
	if out.YNode, err = c.resolve(ab.YNode); err != nil {
		return fmt.Errorf("airbrake y-axis node: %w", err)
	}
	out.ArmNode = c.resolveOrWarn(ab.ArmNode)
	out.Offset = ab.Offset
	out.Width = ab.Width
	out.Height = ab.Height
	out.MaxAngle = ab.MaxAngle

	c.rig.Airbrakes = append(c.rig.Airbrakes, out)
	c.rig.Visuals = append(c.rig.Visuals, rig.VisualRequest{
		Kind:  rig.VisualAirbrake,
		Nodes: []int{out.RefNode, out.XNode, out.YNode},
	})
	return nil
}

// processFuseDrag stores the fuselage drag nodes. The back node
// mirrors the front node; legacy content depends on the resulting
// numbers, so both sides keep the front index.
func (c *buildContext) processFuseDrag(fd rigdef.FuseDrag) error {
	front, err := c.resolve(fd.Front)
	if err != nil {
		return fmt.Errorf("fusedrag front: %w", err)
	}
	if _, err := c.resolve(fd.Back); err != nil {
		return fmt.Errorf("fusedrag back: %w", err)
	}

	c.rig.FuseFrontNode = front
	c.rig.FuseBackNode = front
	c.rig.FuseWidth = fd.Width
	return nil
}

// finalize fixes up defaults that can only be computed once the whole
// graph exists: the primary camera basis and the wing spanwise groups.
func (c *buildContext) finalize() {
	c.assembleDrivetrain()
	c.finalizeCameras()
	c.finalizeWings()
}

// finalizeCameras derives the primary camera's direction node when the
// document left it unset: the node furthest from the camera position
// wins, and a yaw correction aligns that direction with the rig's
// nominal forward axis.
func (c *buildContext) finalizeCameras() {
	if len(c.rig.Cameras) == 0 {
		return
	}
	cam := &c.rig.Cameras[0]
	if cam.BackNode != rig.InvalidNode {
		return
	}

	center := c.nodePos(cam.CenterNode)
	furthest := rig.InvalidNode
	var best float32 = -1
	for i := range c.rig.Nodes {
		if i == cam.CenterNode {
			continue
		}
		d := c.nodePos(i).Sub(center)
		if sq := d.Dot(d); sq > best {
			best = sq
			furthest = i
		}
	}
	if furthest == rig.InvalidNode {
		c.sink.Warning("cameras", "cannot derive camera direction: rig has a single node")
		return
	}
	cam.BackNode = furthest

	dir := c.nodePos(furthest).Sub(center)
	// Yaw only: project onto the ground plane before aligning with the
	// nominal forward axis.
	dir[1] = 0
	if dir.Len() < 1e-6 {
		return
	}
	forward := mgl32.Vec3{0, 0, 1}
	c.rig.YawCorrection = mgl32.QuatBetweenVectors(dir.Normalize(), forward)
	c.sink.Info("cameras", fmt.Sprintf("camera direction node derived: node %d", furthest))
}

// finalizeWings chains consecutive wings into spanwise groups: the
// chain continues while a wing's leading edge starts where the
// previous wing's ends. On each discontinuity (and after the last
// wing) induced drag is enabled on the first and last wing of the
// completed group, carrying the group's accumulated area.
func (c *buildContext) finalizeWings() {
	wings := c.rig.Wings
	if len(wings) == 0 {
		return
	}

	groupStart := 0
	area := c.wingArea(&wings[0])
	for i := 1; i <= len(wings); i++ {
		chained := i < len(wings) && wings[i].Nodes[0] == wings[i-1].Nodes[1]
		if chained {
			area += c.wingArea(&wings[i])
			continue
		}

		wings[groupStart].SpanGroupFirst = true
		wings[groupStart].InducedDrag = area
		wings[i-1].SpanGroupLast = true
		wings[i-1].InducedDrag = area

		if i < len(wings) {
			groupStart = i
			area = c.wingArea(&wings[i])
		}
	}
}

// wingArea is the quadrilateral cross-product area of the wing's four
// corner nodes.
func (c *buildContext) wingArea(w *rig.Wing) float32 {
	d1 := c.nodePos(w.Nodes[2]).Sub(c.nodePos(w.Nodes[0]))
	d2 := c.nodePos(w.Nodes[3]).Sub(c.nodePos(w.Nodes[1]))
	return d1.Cross(d2).Len() / 2
}
