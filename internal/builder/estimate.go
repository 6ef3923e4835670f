package builder

import (
	"github.com/rigforge/rigforge/pkg/rig"
	"github.com/rigforge/rigforge/pkg/rigdef"
)

// Estimate scans the selected modules once and sums worst-case table
// sizes so backing arrays can be allocated before any index or pointer
// into them is taken. Pure summation, no error conditions.
//
// Multipliers per wheel variant, R rays:
//
//	wheel/meshwheel  2R nodes, 8R beams (9R with a rigidity node)
//	wheel2           4R nodes, 24R/25R
//	flexbodywheel    4R nodes, 20R/21R
//	cinecam          1 node, 8 beams
func Estimate(doc *rigdef.Document) rig.Requirements {
	var req rig.Requirements

	for _, m := range doc.Selected() {
		req.Nodes += len(m.Nodes)
		req.Beams += len(m.Beams)

		// A hook-flagged node synthesizes one companion beam.
		for _, n := range m.Nodes {
			if n.Options.Hook {
				req.Beams++
			}
		}

		req.Beams += len(m.Shocks) + len(m.Shocks2) + len(m.Shocks3)
		req.Shocks += len(m.Shocks) + len(m.Shocks2) + len(m.Shocks3) + len(m.Triggers)
		req.Beams += len(m.Triggers) + len(m.Ropes)
		req.Fixes += len(m.Fixes)

		for _, w := range m.Wheels {
			req.Nodes += w.Rays * 2
			req.Beams += wheelBeamEstimate(w.Rays, 8, w.RigidityNode != nil)
		}
		for _, w := range m.MeshWheels {
			req.Nodes += w.Rays * 2
			req.Beams += wheelBeamEstimate(w.Rays, 8, w.RigidityNode != nil)
		}
		for _, w := range m.Wheels2 {
			req.Nodes += w.Rays * 4
			req.Beams += wheelBeamEstimate(w.Rays, 24, w.RigidityNode != nil)
		}
		for _, w := range m.FlexBodyWheels {
			req.Nodes += w.Rays * 4
			req.Beams += wheelBeamEstimate(w.Rays, 20, w.RigidityNode != nil)
		}
		req.Wheels += len(m.Wheels) + len(m.Wheels2) + len(m.MeshWheels) + len(m.FlexBodyWheels)

		req.Nodes += len(m.Cinecams)
		req.Beams += len(m.Cinecams) * 8

		req.Rotators += len(m.Rotators) + len(m.Rotators2)
		req.Wings += len(m.Wings)
		req.Airbrakes += len(m.Airbrakes)
	}

	return req
}

func wheelBeamEstimate(rays, perRay int, rigidity bool) int {
	if rigidity {
		return rays * (perRay + 1)
	}
	return rays * perRay
}
