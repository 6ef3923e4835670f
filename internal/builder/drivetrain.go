package builder

import (
	"fmt"

	"github.com/rigforge/rigforge/pkg/rig"
	"github.com/rigforge/rigforge/pkg/rigdef"
)

func diffTypes(types []rigdef.DiffType, fallback rig.DiffType) []rig.DiffType {
	if len(types) == 0 {
		return []rig.DiffType{fallback}
	}
	out := make([]rig.DiffType, len(types))
	for i, t := range types {
		out[i] = rig.DiffType(t)
	}
	return out
}

// processAxle builds one explicit inter-wheel differential, matching
// the two wheels by their axle node pairs.
func (c *buildContext) processAxle(a rigdef.Axle) error {
	w1, err := c.findWheelByAxle(a.WheelNodes[0])
	if err != nil {
		return err
	}
	w2, err := c.findWheelByAxle(a.WheelNodes[1])
	if err != nil {
		return err
	}
	if w1 == w2 {
		return fmt.Errorf("axle couples wheel %d with itself", w1)
	}

	c.rig.WheelDiffs = append(c.rig.WheelDiffs, rig.WheelDiff{
		Wheel1: w1,
		Wheel2: w2,
		Types:  diffTypes(a.Types, rig.DiffOpen),
	})
	c.declaredWheelDiffs = true
	return nil
}

// findWheelByAxle locates the wheel whose axle node pair matches the
// two references, in either order.
func (c *buildContext) findWheelByAxle(refs [2]rigdef.NodeRef) (int, error) {
	n1, err := c.resolve(refs[0])
	if err != nil {
		return -1, fmt.Errorf("axle wheel node: %w", err)
	}
	n2, err := c.resolve(refs[1])
	if err != nil {
		return -1, fmt.Errorf("axle wheel node: %w", err)
	}

	for i := range c.rig.Wheels {
		w := &c.rig.Wheels[i]
		if (w.AxleNode1 == n1 && w.AxleNode2 == n2) || (w.AxleNode1 == n2 && w.AxleNode2 == n1) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("no wheel has axle nodes %d and %d", n1, n2)
}

// processInterAxle builds one explicit inter-axle differential. The
// referenced positions index the wheel-differential chain.
func (c *buildContext) processInterAxle(ia rigdef.InterAxle) error {
	n := len(c.rig.WheelDiffs)
	for _, a := range ia.Axles {
		if a < 0 || a >= n {
			return fmt.Errorf("interaxle references axle %d, valid range [0, %d)", a, n)
		}
	}
	if ia.Axles[0] == ia.Axles[1] {
		return fmt.Errorf("interaxle couples axle %d with itself", ia.Axles[0])
	}

	c.rig.AxleDiffs = append(c.rig.AxleDiffs, rig.AxleDiff{
		Diff1: ia.Axles[0],
		Diff2: ia.Axles[1],
		Types: diffTypes(ia.Types, rig.DiffLocked),
	})
	c.declaredAxleDiffs = true
	return nil
}

// processTransferCase wires the transfer case: an extra locked
// inter-axle differential between its two axles, plus a propulsion
// rewrite that leaves exactly the wheels of the referenced axles
// driven.
func (c *buildContext) processTransferCase(tc rigdef.TransferCase) error {
	n := len(c.rig.WheelDiffs)
	if tc.Axle1 < 0 || tc.Axle1 >= n {
		return fmt.Errorf("transfercase references axle %d, valid range [0, %d)", tc.Axle1, n)
	}
	if tc.Axle2 >= n {
		return fmt.Errorf("transfercase references axle %d, valid range [0, %d)", tc.Axle2, n)
	}

	driven := []int{tc.Axle1}
	if tc.Axle2 >= 0 {
		c.rig.AxleDiffs = append(c.rig.AxleDiffs, rig.AxleDiff{
			Diff1: tc.Axle1,
			Diff2: tc.Axle2,
			Types: []rig.DiffType{rig.DiffLocked},
		})
		pair := [2]int{tc.Axle1, tc.Axle2}
		if pair[1] < pair[0] {
			pair[0], pair[1] = pair[1], pair[0]
		}
		c.transferCasePair = &pair
		driven = append(driven, tc.Axle2)
	}

	// Propulsion moves wholly onto the transfer case's axles.
	for i := range c.rig.Wheels {
		c.rig.Wheels[i].Propulsion = rig.WheelNotPropelled
	}
	c.propedWheels = c.propedWheels[:0]
	for _, d := range driven {
		diff := c.rig.WheelDiffs[d]
		for _, wi := range [2]int{diff.Wheel1, diff.Wheel2} {
			c.rig.Wheels[wi].Propulsion = rig.WheelPropelledForward
			c.propedWheels = append(c.propedWheels, wi)
		}
	}
	return nil
}

// assembleDrivetrain runs once after all wheels are known: it derives
// the differentials the document left implicit.
func (c *buildContext) assembleDrivetrain() {
	// One inter-wheel differential per consecutive pair of propelled
	// wheels, viscous by default.
	if !c.declaredWheelDiffs && len(c.propedWheels) >= 2 {
		for i := 1; i < len(c.propedWheels); i += 2 {
			c.rig.WheelDiffs = append(c.rig.WheelDiffs, rig.WheelDiff{
				Wheel1: c.propedWheels[i-1],
				Wheel2: c.propedWheels[i],
				Types:  []rig.DiffType{rig.DiffViscous},
			})
		}
		c.logger.Debug("synthesized inter-wheel differentials",
			"count", len(c.rig.WheelDiffs), "propedWheels", len(c.propedWheels))
	}

	// One inter-axle differential per consecutive pair of inter-wheel
	// differentials. A pair already claimed by an explicit transfer
	// case keeps its transfer-case diff. Documents with explicit axle
	// topology get locked diffs, others viscous.
	if !c.declaredAxleDiffs && len(c.rig.WheelDiffs) >= 2 {
		fallback := rig.DiffViscous
		if c.hasAxlesSection {
			fallback = rig.DiffLocked
		}
		for i := 1; i < len(c.rig.WheelDiffs); i++ {
			if c.transferCasePair != nil &&
				c.transferCasePair[0] == i-1 && c.transferCasePair[1] == i {
				continue
			}
			c.rig.AxleDiffs = append(c.rig.AxleDiffs, rig.AxleDiff{
				Diff1: i - 1,
				Diff2: i,
				Types: []rig.DiffType{fallback},
			})
		}
	}
}
