// Package rig holds the simulation-ready physics tables emitted by the
// builder: dense node and beam arrays plus the derived subsystem tables
// consumed by the runtime integrator, and the visual attachment
// requests consumed by the renderer.
package rig

import "github.com/go-gl/mathgl/mgl32"

// InvalidNode marks an unresolved optional node reference.
const InvalidNode = -1

// BeamType tags the constraint flavor of a beam.
type BeamType int

const (
	BeamNormal BeamType = iota
	BeamHydro
	BeamVirtual // load path only, never rendered or collided
	BeamSupport
)

// BoundMode selects the length-bounding behavior of a beam.
type BoundMode int

const (
	BoundNone BoundMode = iota
	BoundRope
	BoundShock1
	BoundShock2
	BoundShock3
	BoundTrigger
	BoundSupport
)

// Node is one simulated mass point.
type Node struct {
	Index       int        `json:"index"`
	AbsPosition mgl32.Vec3 `json:"absPosition"`
	RelPosition mgl32.Vec3 `json:"relPosition"`
	Mass        float32    `json:"mass"`
	Friction    float32    `json:"friction"`
	Volume      float32    `json:"volume"`
	Surface     float32    `json:"surface"`
	Buoyancy    float32    `json:"buoyancy"`

	Fixed           bool `json:"fixed,omitempty"`
	NoGroundContact bool `json:"noGroundContact,omitempty"`
	Contacter       bool `json:"contacter,omitempty"`
	RimNode         bool `json:"rimNode,omitempty"`
	TyreNode        bool `json:"tyreNode,omitempty"`
	HookPoint       bool `json:"hookPoint,omitempty"`
	Lockgroup       int  `json:"lockgroup"`
}

// Beam is one spring/damper constraint between two node indices.
type Beam struct {
	Node1      int     `json:"node1"`
	Node2      int     `json:"node2"`
	RestLength float32 `json:"restLength"`
	Spring     float32 `json:"spring"`
	Damp       float32 `json:"damp"`
	Strength   float32 `json:"strength"`
	Deform     float32 `json:"deform"` // deformation threshold

	Type          BeamType  `json:"type"`
	Bound         BoundMode `json:"bound"`
	ShortBound    float32   `json:"shortBound,omitempty"`
	LongBound     float32   `json:"longBound,omitempty"`
	DetacherGroup int       `json:"detacherGroup"`
	ShockIndex    int       `json:"shockIndex"` // -1 unless Bound is a shock mode
}

// Shock carries the progressivity tuning of one shock-bounded beam.
type Shock struct {
	BeamIndex         int     `json:"beamIndex"`
	SpringIn          float32 `json:"springIn"`
	DampIn            float32 `json:"dampIn"`
	SpringOut         float32 `json:"springOut"`
	DampOut           float32 `json:"dampOut"`
	ProgressSpringIn  float32 `json:"progressSpringIn"`
	ProgressDampIn    float32 `json:"progressDampIn"`
	ProgressSpringOut float32 `json:"progressSpringOut"`
	ProgressDampOut   float32 `json:"progressDampOut"`
	DampInSlow        float32 `json:"dampInSlow,omitempty"`
	SplitIn           float32 `json:"splitIn,omitempty"`
	DampOutSlow       float32 `json:"dampOutSlow,omitempty"`
	SplitOut          float32 `json:"splitOut,omitempty"`
	Trigger           bool    `json:"trigger,omitempty"`
	ContractionKey    int     `json:"contractionKey,omitempty"`
	ExpansionKey      int     `json:"expansionKey,omitempty"`
}

// WheelVariant tags which topology algorithm built a wheel.
type WheelVariant int

const (
	VariantWheel WheelVariant = iota
	VariantWheel2
	VariantMeshWheel
	VariantFlexBodyWheel
)

// WheelPropulsion mirrors the document propulsion mode.
type WheelPropulsion int

const (
	WheelNotPropelled WheelPropulsion = iota
	WheelPropelledForward
	WheelPropelledBackward
)

// Wheel is one derived wheel aggregate. Ring member node indices are
// not stored: they are recomputed from BaseNode, Rays and the variant's
// stride, so those three fields are load-bearing for every later
// consumer (skidmarks, drivetrain, renderer).
type Wheel struct {
	Variant    WheelVariant    `json:"variant"`
	AxleNode1  int             `json:"axleNode1"` // smaller local Z, enforced at build
	AxleNode2  int             `json:"axleNode2"`
	BaseNode   int             `json:"baseNode"` // first ring node index
	Rays       int             `json:"rays"`
	Radius     float32         `json:"radius"`
	RimRadius  float32         `json:"rimRadius,omitempty"`
	Width      float32         `json:"width"`
	Propulsion WheelPropulsion `json:"propulsion"`
	Braking    int             `json:"braking"`
	ArmNode    int             `json:"armNode"` // InvalidNode when absent
	// RigidityOnOuter records which ring the per-ray rigidity beams
	// attach to; meaningless when the wheel has no rigidity node.
	RigidityOnOuter bool `json:"rigidityOnOuter,omitempty"`
}

// OuterRing returns the i-th outer ring node index.
func (w *Wheel) OuterRing(i int) int { return w.BaseNode + i*2 }

// InnerRing returns the i-th inner ring node index.
func (w *Wheel) InnerRing(i int) int { return w.BaseNode + i*2 + 1 }

// TyreOuter returns the i-th outer tyre node index (wheel2/flexbody).
func (w *Wheel) TyreOuter(i int) int { return w.BaseNode + w.Rays*2 + i*2 }

// TyreInner returns the i-th inner tyre node index (wheel2/flexbody).
func (w *Wheel) TyreInner(i int) int { return w.BaseNode + w.Rays*2 + i*2 + 1 }

// NodeCount returns how many ring nodes the wheel owns.
func (w *Wheel) NodeCount() int {
	switch w.Variant {
	case VariantWheel2, VariantFlexBodyWheel:
		return w.Rays * 4
	default:
		return w.Rays * 2
	}
}

// DiffType is one selectable differential behavior; the simulation
// cycles through a differential's type list in order.
type DiffType int

const (
	DiffOpen DiffType = iota
	DiffLocked
	DiffSplit
	DiffViscous
)

// WheelDiff couples two wheel indices.
type WheelDiff struct {
	Wheel1 int        `json:"wheel1"`
	Wheel2 int        `json:"wheel2"`
	Types  []DiffType `json:"types"`
}

// AxleDiff couples two wheel-differential chain positions.
type AxleDiff struct {
	Diff1 int        `json:"diff1"`
	Diff2 int        `json:"diff2"`
	Types []DiffType `json:"types"`
}

// Rotator spins four plate nodes around an axis pair.
type Rotator struct {
	AxisNode1     int     `json:"axisNode1"`
	AxisNode2     int     `json:"axisNode2"`
	BaseNodes     [4]int  `json:"baseNodes"`
	RotatingNodes [4]int  `json:"rotatingNodes"`
	Rate          float32 `json:"rate"`
	SpinLeftKey   int     `json:"spinLeftKey"`
	SpinRightKey  int     `json:"spinRightKey"`
	Force         float32 `json:"force"`
	Tolerance     float32 `json:"tolerance"`
}

// Hook is the record synthesized for a hook-flagged node.
type Hook struct {
	HookNode  int `json:"hookNode"`
	BeamIndex int `json:"beamIndex"`
}

// Camera is one onboard camera basis.
type Camera struct {
	CenterNode int `json:"centerNode"`
	BackNode   int `json:"backNode"`
	LeftNode   int `json:"leftNode"`
}

// Cinecam is the cinematic camera node with its suspension beams.
type Cinecam struct {
	Node  int    `json:"node"`
	Beams [8]int `json:"beams"`
}

// Wing is one aerodynamic surface segment.
type Wing struct {
	Nodes          [8]int  `json:"nodes"`
	Control        byte    `json:"control"`
	MinDeflection  float32 `json:"minDeflection"`
	MaxDeflection  float32 `json:"maxDeflection"`
	Airfoil        string  `json:"airfoil,omitempty"`
	InducedDrag    float32 `json:"inducedDrag"` // 0 unless this wing carries the group's induced drag
	SpanGroupFirst bool    `json:"spanGroupFirst,omitempty"`
	SpanGroupLast  bool    `json:"spanGroupLast,omitempty"`
}

// Airbrake is one deployable drag plate.
type Airbrake struct {
	RefNode  int        `json:"refNode"`
	XNode    int        `json:"xNode"`
	YNode    int        `json:"yNode"`
	ArmNode  int        `json:"armNode"`
	Offset   mgl32.Vec3 `json:"offset"`
	Width    float32    `json:"width"`
	Height   float32    `json:"height"`
	MaxAngle float32    `json:"maxAngle"`
}

// VisualKind tags a visual attachment request.
type VisualKind int

const (
	VisualWheelFace VisualKind = iota
	VisualWheelBand
	VisualWheelMesh
	VisualFlexBodyWheel
	VisualExhaust
	VisualAirbrake
)

// VisualRequest asks the external renderer to attach a visual to the
// given node/beam indices. Never required for simulation correctness.
type VisualRequest struct {
	Kind     VisualKind `json:"kind"`
	Nodes    []int      `json:"nodes,omitempty"`
	Beams    []int      `json:"beams,omitempty"`
	Mesh     string     `json:"mesh,omitempty"`
	Material string     `json:"material,omitempty"`
	Side     int        `json:"side,omitempty"`
	Offset   mgl32.Vec3 `json:"offset,omitempty"`
}

// Requirements are the worst-case table sizes summed by the estimator.
// Backing arrays are sized from these exactly once, before any index or
// pointer into them is taken.
type Requirements struct {
	Nodes     int `json:"nodes"`
	Beams     int `json:"beams"`
	Shocks    int `json:"shocks"`
	Wheels    int `json:"wheels"`
	Rotators  int `json:"rotators"`
	Wings     int `json:"wings"`
	Airbrakes int `json:"airbrakes"`
	Fixes     int `json:"fixes"`
}

// Rig is the assembled physics graph.
type Rig struct {
	Name string `json:"name"`

	Nodes    []Node    `json:"nodes"`
	Beams    []Beam    `json:"beams"`
	Shocks   []Shock   `json:"shocks"`
	Wheels   []Wheel   `json:"wheels"`
	Hooks    []Hook    `json:"hooks"`
	Rotators []Rotator `json:"rotators"`

	WheelDiffs []WheelDiff `json:"wheelDiffs"`
	AxleDiffs  []AxleDiff  `json:"axleDiffs"`

	Cameras   []Camera   `json:"cameras"`
	Cinecams  []Cinecam  `json:"cinecams"`
	Wings     []Wing     `json:"wings"`
	Airbrakes []Airbrake `json:"airbrakes"`

	Visuals []VisualRequest `json:"visuals"`

	// Finalize outputs.
	YawCorrection mgl32.Quat `json:"-"`
	FuseFrontNode int        `json:"fuseFrontNode"`
	FuseBackNode  int        `json:"fuseBackNode"`
	FuseWidth     float32    `json:"fuseWidth"`

	Origin mgl32.Vec3 `json:"origin"`
}

// New allocates a rig with backing arrays sized from the estimator's
// requirements. Capacities are final: construction must never grow a
// table past its estimate, or references taken into it would dangle.
func New(name string, req Requirements) *Rig {
	return &Rig{
		Name:     name,
		Nodes:    make([]Node, 0, req.Nodes),
		Beams:    make([]Beam, 0, req.Beams),
		Shocks:   make([]Shock, 0, req.Shocks),
		Wheels:   make([]Wheel, 0, req.Wheels),
		Rotators: make([]Rotator, 0, req.Rotators),
		Wings:    make([]Wing, 0, req.Wings),

		FuseFrontNode: InvalidNode,
		FuseBackNode:  InvalidNode,
		YawCorrection: mgl32.QuatIdent(),
	}
}

// NodeCount returns the current dense node count.
func (r *Rig) NodeCount() int { return len(r.Nodes) }

// BeamCount returns the current beam count.
func (r *Rig) BeamCount() int { return len(r.Beams) }
