package builder

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/rigforge/rigforge/pkg/rig"
	"github.com/rigforge/rigforge/pkg/rigdef"
)

const (
	defaultRotatorForce     float32 = 10000000
	defaultRotatorTolerance float32 = 0.0015
)

// processRotator builds one rotator record.
func (c *buildContext) processRotator(r rigdef.Rotator) error {
	return c.buildRotator(r, defaultRotatorForce, defaultRotatorTolerance)
}

// processRotator2 builds one rotator with explicit force/tolerance.
func (c *buildContext) processRotator2(r rigdef.Rotator2) error {
	force := r.Force
	if force <= 0 {
		force = defaultRotatorForce
	}
	tolerance := r.Tolerance
	if tolerance <= 0 {
		tolerance = defaultRotatorTolerance
	}
	return c.buildRotator(r.Rotator, force, tolerance)
}

func (c *buildContext) buildRotator(r rigdef.Rotator, force, tolerance float32) error {
	var out rig.Rotator
	out.Rate = r.Rate
	out.SpinLeftKey = r.SpinLeftKey
	out.SpinRightKey = r.SpinRightKey
	out.Force = force
	out.Tolerance = tolerance

	var err error
	if out.AxisNode1, err = c.resolve(r.AxisNodes[0]); err != nil {
		return fmt.Errorf("rotator axis: %w", err)
	}
	if out.AxisNode2, err = c.resolve(r.AxisNodes[1]); err != nil {
		return fmt.Errorf("rotator axis: %w", err)
	}
	for i := 0; i < 4; i++ {
		if out.BaseNodes[i], err = c.resolve(r.BaseNodes[i]); err != nil {
			return fmt.Errorf("rotator base plate: %w", err)
		}
		if out.RotatingNodes[i], err = c.resolve(r.RotatingNodes[i]); err != nil {
			return fmt.Errorf("rotator rotating plate: %w", err)
		}
	}

	c.rig.Rotators = append(c.rig.Rotators, out)
	c.validateRotator(&out)
	return nil
}

// validateRotator is a pure diagnostic: it projects the eight plate
// node offsets onto the plane perpendicular to the rotation axis and
// checks radial and rotational symmetry. Violations warn but never
// fail; the rig stays usable, just potentially visually wrong when
// rotated.
func (c *buildContext) validateRotator(r *rig.Rotator) {
	axisPoint := c.nodePos(r.AxisNode1)
	axis := c.nodePos(r.AxisNode2).Sub(axisPoint)
	if axis.Len() < 1e-6 {
		c.sink.Warning(c.keyword, "rotator axis nodes coincide; symmetry check skipped")
		return
	}
	axis = axis.Normalize()

	base := c.projectPlate(r.BaseNodes, axisPoint, axis)
	rotating := c.projectPlate(r.RotatingNodes, axisPoint, axis)

	// Opposite plate nodes should sit at equal radii (0.1% tolerance).
	const radialTolerance = 0.001
	for _, plate := range [2]struct {
		name string
		offs [4]mgl32.Vec3
	}{{"base", base}, {"rotating", rotating}} {
		for i := 0; i < 2; i++ {
			a := plate.offs[i].Len()
			b := plate.offs[i+2].Len()
			if a == 0 || b == 0 {
				c.sink.Warning(c.keyword, fmt.Sprintf("rotator %s plate node %d lies on the rotation axis", plate.name, i))
				continue
			}
			if abs32(a-b) > radialTolerance*max(a, b) {
				c.sink.Warning(c.keyword, fmt.Sprintf(
					"rotator %s plate is radially asymmetric: opposite radii %.4f vs %.4f", plate.name, a, b))
			}
		}
	}

	// Base and rotating plates should be rotationally aligned.
	for i := 0; i < 4; i++ {
		bl := base[i].Len()
		rl := rotating[i].Len()
		if bl == 0 || rl == 0 {
			continue
		}
		dot := base[i].Mul(1 / bl).Dot(rotating[i].Mul(1 / rl))
		if dot < 0.999 {
			c.sink.Warning(c.keyword, fmt.Sprintf(
				"rotator plates are rotationally misaligned at node pair %d (cos=%.4f)", i, dot))
		}
	}
}

// projectPlate returns each plate node's offset from the axis,
// projected onto the plane perpendicular to the rotation axis.
func (c *buildContext) projectPlate(nodes [4]int, axisPoint, axis mgl32.Vec3) [4]mgl32.Vec3 {
	var out [4]mgl32.Vec3
	for i, n := range nodes {
		off := c.nodePos(n).Sub(axisPoint)
		out[i] = off.Sub(axis.Mul(off.Dot(axis)))
	}
	return out
}
