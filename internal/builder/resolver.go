package builder

import (
	"errors"
	"fmt"

	"github.com/rigforge/rigforge/pkg/rig"
	"github.com/rigforge/rigforge/pkg/rigdef"
)

// ErrNodeNotFound is returned when a node reference does not resolve.
var ErrNodeNotFound = errors.New("node not found")

// resolve maps a document node reference to a dense node index.
//
// Numeric references are range-checked against the current node count;
// imported references bypass the check because they may point outside
// the rig being assembled. Duplicate document numbers resolve through
// the last-writer-wins number table. Symbolic references resolve
// through the name table populated as named nodes are created.
func (c *buildContext) resolve(ref rigdef.NodeRef) (int, error) {
	if ref.IsNamed() {
		if idx, ok := c.byName[ref.Name]; ok {
			return idx, nil
		}
		return rig.InvalidNode, fmt.Errorf("%w: name %q", ErrNodeNotFound, ref.Name)
	}

	if ref.Imported {
		return ref.Number, nil
	}
	if ref.Number < 0 || ref.Number >= c.rig.NodeCount() {
		return rig.InvalidNode, fmt.Errorf("%w: number %d (have %d nodes)",
			ErrNodeNotFound, ref.Number, c.rig.NodeCount())
	}
	if idx, ok := c.byNumber[ref.Number]; ok {
		return idx, nil
	}
	// Generated nodes (wheel rings, cinecam) carry no document number
	// and are addressed directly by index.
	return ref.Number, nil
}

// resolveOrWarn is the resolver variant for optional references: a
// miss emits a warning and yields InvalidNode, and construction of the
// feature continues.
func (c *buildContext) resolveOrWarn(ref rigdef.NodeRef) int {
	idx, err := c.resolve(ref)
	if err != nil {
		c.sink.Warning(c.keyword, fmt.Sprintf("optional node reference %s not resolved: %v", ref, err))
		return rig.InvalidNode
	}
	return idx
}
