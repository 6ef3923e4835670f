package builder

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/rigforge/rigforge/pkg/rig"
	"github.com/rigforge/rigforge/pkg/rigdef"
)

// Hook companion beams use fixed coefficients independent of the
// active beam defaults; community content relies on these exact values.
const (
	hookBeamSpring float32 = 2000000
	hookBeamDamp   float32 = 1000
)

// processNode creates one document node: dense index assignment, name
// registration, physical coefficients from the active preset, and the
// hook side effect. This is the only place where adding a node also
// adds a beam.
func (c *buildContext) processNode(n rigdef.Node) error {
	if n.Name != "" {
		if _, exists := c.byName[n.Name]; exists {
			return fmt.Errorf("duplicate node name %q", n.Name)
		}
	} else if prev, exists := c.byNumber[n.Number]; exists {
		// Legacy compatibility: duplicate numbers are tolerated and the
		// last writer wins in the lookup table.
		c.sink.Warning(c.keyword, fmt.Sprintf("duplicate node number %d (previously node %d); last definition wins", n.Number, prev))
	}

	defaults := c.nodeDefaults(n.Defaults)

	idx := c.initNode(n.Position, defaults)
	node := &c.rig.Nodes[idx]

	if n.Name != "" {
		c.byName[n.Name] = idx
	} else {
		c.byNumber[n.Number] = idx
	}

	opts := n.Options
	opts.Fixed = opts.Fixed || defaults.Options.Fixed
	opts.Contacter = opts.Contacter || defaults.Options.Contacter
	opts.NoGroundContact = opts.NoGroundContact || defaults.Options.NoGroundContact

	node.Fixed = opts.Fixed
	node.NoGroundContact = opts.NoGroundContact
	node.Contacter = opts.Contacter
	node.Lockgroup = n.Lockgroup
	if opts.Buoyant {
		node.Buoyancy = n.Buoyancy
	}

	if opts.Exhaust {
		c.rig.Visuals = append(c.rig.Visuals, rig.VisualRequest{
			Kind:  rig.VisualExhaust,
			Nodes: []int{idx},
		})
	}

	if opts.Hook {
		c.addHook(idx)
	}

	return nil
}

// initNode appends a node at the current top of the table and stores
// its absolute and origin-relative positions plus the preset
// coefficients. Returns the new dense index.
func (c *buildContext) initNode(rel mgl32.Vec3, defaults rigdef.NodeDefaults) int {
	idx := c.rig.NodeCount()

	mass := c.defaultMass()
	if defaults.LoadWeight > 0 {
		mass = defaults.LoadWeight
	}

	c.rig.Nodes = append(c.rig.Nodes, rig.Node{
		Index:       idx,
		AbsPosition: c.rig.Origin.Add(rel),
		RelPosition: rel,
		Mass:        mass,
		Friction:    defaults.Friction,
		Volume:      defaults.Volume,
		Surface:     defaults.Surface,
		Lockgroup:   -1,
	})
	c.nodesBuilt++
	return idx
}

// addHook synthesizes the companion beam of a hook-flagged node and
// appends the hook record. The beam anchors to node 0, or node 1 when
// the hook node itself is node 0.
func (c *buildContext) addHook(hookNode int) {
	anchor := 0
	if hookNode == 0 {
		anchor = 1
	}
	if anchor >= c.rig.NodeCount() {
		c.sink.Warning(c.keyword, fmt.Sprintf("hook node %d has no anchor node yet; hook skipped", hookNode))
		return
	}

	c.rig.Nodes[hookNode].HookPoint = true

	beamIdx := c.addBeamRaw(hookNode, anchor, hookBeamSpring, hookBeamDamp,
		float32(c.defaults.BeamStrength), c.defaultDeform())
	beam := &c.rig.Beams[beamIdx]
	beam.Type = rig.BeamVirtual
	beam.Bound = rig.BoundRope
	beam.LongBound = 1

	c.rig.Hooks = append(c.rig.Hooks, rig.Hook{HookNode: hookNode, BeamIndex: beamIdx})
}

// processFix marks a node immovable.
func (c *buildContext) processFix(f rigdef.Fix) error {
	idx, err := c.resolve(f.Node)
	if err != nil {
		return fmt.Errorf("fixes: %w", err)
	}
	c.rig.Nodes[idx].Fixed = true
	return nil
}
