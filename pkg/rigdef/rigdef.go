// Package rigdef holds the typed rig document model.
//
// A document is produced by the external text parser and consumed
// read-only by the builder: ordered modules of typed record lists, with
// the node/beam defaults preset active at each record's position
// already flattened onto the record by the parser.
package rigdef

import (
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
)

// InvalidNumber marks a NodeRef that carries a name instead of a number.
const InvalidNumber = -1

// NodeRef refers to a node by document number or by symbolic name.
// Imported references originate from a linked context and bypass
// range checks during resolution.
type NodeRef struct {
	Name     string `json:"name,omitempty"`
	Number   int    `json:"number"`
	Imported bool   `json:"imported,omitempty"`
}

// Num builds a numeric node reference.
func Num(n int) NodeRef { return NodeRef{Number: n, Name: ""} }

// Named builds a symbolic node reference.
func Named(name string) NodeRef { return NodeRef{Name: name, Number: InvalidNumber} }

// IsNamed reports whether the reference is symbolic.
func (r NodeRef) IsNamed() bool { return r.Name != "" }

// IsUnset reports whether the reference was left empty by the document
// (optional fields only; the parser stores InvalidNumber there).
func (r NodeRef) IsUnset() bool { return r.Name == "" && r.Number < 0 }

// String returns the document-facing spelling of the reference.
func (r NodeRef) String() string {
	if r.IsNamed() {
		return r.Name
	}
	return strconv.Itoa(r.Number)
}

// NodeDefaults is a "set_node_defaults" preset snapshot.
type NodeDefaults struct {
	LoadWeight float32     `json:"loadWeight"` // override mass, <=0 means unset
	Friction   float32     `json:"friction"`
	Volume     float32     `json:"volume"`
	Surface    float32     `json:"surface"`
	Options    NodeOptions `json:"options"`
}

// BeamDefaults is a "set_beam_defaults" preset snapshot.
// Scale factors apply on top of the base values, in document order.
type BeamDefaults struct {
	Spring         float32 `json:"spring"`
	Damp           float32 `json:"damp"`
	Strength       float32 `json:"strength"`
	Deform         float32 `json:"deform"`
	SpringScale    float32 `json:"springScale"`
	DampScale      float32 `json:"dampScale"`
	StrengthScale  float32 `json:"strengthScale"`
	DeformScale    float32 `json:"deformScale"`
	AdvancedDeform bool    `json:"advancedDeform"` // enable_advanced_deformation was active
}

// NodeOptions are the per-node flags.
type NodeOptions struct {
	Fixed           bool `json:"fixed,omitempty"`
	NoGroundContact bool `json:"noGroundContact,omitempty"`
	Contacter       bool `json:"contacter,omitempty"`
	Hook            bool `json:"hook,omitempty"`
	Exhaust         bool `json:"exhaust,omitempty"`
	Buoyant         bool `json:"buoyant,omitempty"`
}

// Node is one record of a "nodes" section. Numbered nodes carry
// Number >= 0 and an empty Name; named nodes the reverse.
type Node struct {
	Number    int           `json:"number"`
	Name      string        `json:"name,omitempty"`
	Position  mgl32.Vec3    `json:"position"`
	Options   NodeOptions   `json:"options"`
	Buoyancy  float32       `json:"buoyancy,omitempty"`
	Lockgroup int           `json:"lockgroup"` // -1 when not in a lockgroup
	Defaults  *NodeDefaults `json:"defaults,omitempty"`
}

// Beam is one record of a "beams" section.
type Beam struct {
	Nodes          [2]NodeRef    `json:"nodes"`
	Invisible      bool          `json:"invisible,omitempty"`
	Rope           bool          `json:"rope,omitempty"`
	Support        bool          `json:"support,omitempty"`
	ExtensionLimit float32       `json:"extensionLimit,omitempty"` // support beams only
	DetacherGroup  int           `json:"detacherGroup"`
	Defaults       *BeamDefaults `json:"defaults,omitempty"`
}

// Shock is one record of a "shocks" section (shock1 semantics).
type Shock struct {
	Nodes          [2]NodeRef    `json:"nodes"`
	Spring         float32       `json:"spring"`
	Damp           float32       `json:"damp"`
	ShortBound     float32       `json:"shortBound"`
	LongBound      float32       `json:"longBound"`
	Precompression float32       `json:"precompression"`
	Invisible      bool          `json:"invisible,omitempty"`
	DetacherGroup  int           `json:"detacherGroup"`
	Defaults       *BeamDefaults `json:"defaults,omitempty"`
}

// Shock2 is one record of a "shocks2" section: split in/out spring and
// damping with progressivity factors.
type Shock2 struct {
	Nodes             [2]NodeRef    `json:"nodes"`
	SpringIn          float32       `json:"springIn"`
	DampIn            float32       `json:"dampIn"`
	ProgressSpringIn  float32       `json:"progressSpringIn"`
	ProgressDampIn    float32       `json:"progressDampIn"`
	SpringOut         float32       `json:"springOut"`
	DampOut           float32       `json:"dampOut"`
	ProgressSpringOut float32       `json:"progressSpringOut"`
	ProgressDampOut   float32       `json:"progressDampOut"`
	ShortBound        float32       `json:"shortBound"`
	LongBound         float32       `json:"longBound"`
	Precompression    float32       `json:"precompression"`
	Invisible         bool          `json:"invisible,omitempty"`
	Metric            bool          `json:"metric,omitempty"` // bounds in metres, not fractions
	DetacherGroup     int           `json:"detacherGroup"`
	Defaults          *BeamDefaults `json:"defaults,omitempty"`
}

// Shock3 is one record of a "shocks3" section: shocks2 plus a fast/slow
// damping split on each side.
type Shock3 struct {
	Shock2
	DampInSlow  float32 `json:"dampInSlow"`
	SplitIn     float32 `json:"splitIn"`
	DampOutSlow float32 `json:"dampOutSlow"`
	SplitOut    float32 `json:"splitOut"`
}

// Trigger is one record of a "triggers" section: a bounded beam that
// fires command keys on contraction/expansion.
type Trigger struct {
	Nodes          [2]NodeRef    `json:"nodes"`
	ContractionKey int           `json:"contractionKey"`
	ExpansionKey   int           `json:"expansionKey"`
	ShortBound     float32       `json:"shortBound"`
	LongBound      float32       `json:"longBound"`
	Invisible      bool          `json:"invisible,omitempty"`
	Blocker        bool          `json:"blocker,omitempty"`
	DetacherGroup  int           `json:"detacherGroup"`
	Defaults       *BeamDefaults `json:"defaults,omitempty"`
}

// Rope is one record of a "ropes" section.
type Rope struct {
	Nodes         [2]NodeRef    `json:"nodes"`
	Invisible     bool          `json:"invisible,omitempty"`
	DetacherGroup int           `json:"detacherGroup"`
	Defaults      *BeamDefaults `json:"defaults,omitempty"`
}

// Fix marks a node as immovable.
type Fix struct {
	Node NodeRef `json:"node"`
}

// Propulsion selects the drive direction of a wheel.
type Propulsion int

const (
	PropulsionNone Propulsion = iota
	PropulsionForward
	PropulsionBackward
)

// Braking selects which brake circuits act on a wheel.
type Braking int

const (
	BrakingNone Braking = iota
	BrakingFoot
	BrakingHand
	BrakingFootHand
)

// Wheel is one record of a "wheels" section (plain wheel).
type Wheel struct {
	Nodes        [2]NodeRef    `json:"nodes"` // axle nodes
	RigidityNode *NodeRef      `json:"rigidityNode,omitempty"`
	ArmNode      NodeRef       `json:"armNode"` // steering reference, optional
	Rays         int           `json:"rays"`
	Radius       float32       `json:"radius"`
	Width        float32       `json:"width"`
	Mass         float32       `json:"mass"`
	Spring       float32       `json:"spring"`
	Damp         float32       `json:"damp"`
	Propulsion   Propulsion    `json:"propulsion"`
	Braking      Braking       `json:"braking"`
	FaceMaterial string        `json:"faceMaterial,omitempty"`
	BandMaterial string        `json:"bandMaterial,omitempty"`
	Defaults     *BeamDefaults `json:"defaults,omitempty"`
}

// Wheel2 is one record of a "wheels2" section: separate rim and tyre
// rings with their own spring/damping.
type Wheel2 struct {
	Nodes        [2]NodeRef    `json:"nodes"`
	RigidityNode *NodeRef      `json:"rigidityNode,omitempty"`
	ArmNode      NodeRef       `json:"armNode"`
	Rays         int           `json:"rays"`
	RimRadius    float32       `json:"rimRadius"`
	TyreRadius   float32       `json:"tyreRadius"`
	Width        float32       `json:"width"`
	Mass         float32       `json:"mass"`
	RimSpring    float32       `json:"rimSpring"`
	RimDamp      float32       `json:"rimDamp"`
	TyreSpring   float32       `json:"tyreSpring"`
	TyreDamp     float32       `json:"tyreDamp"`
	Propulsion   Propulsion    `json:"propulsion"`
	Braking      Braking       `json:"braking"`
	FaceMaterial string        `json:"faceMaterial,omitempty"`
	BandMaterial string        `json:"bandMaterial,omitempty"`
	Defaults     *BeamDefaults `json:"defaults,omitempty"`
}

// WheelSide tells the renderer which way a wheel mesh faces.
type WheelSide int

const (
	SideRight WheelSide = iota
	SideLeft
)

// MeshWheel is one record of a "meshwheels" section: plain wheel
// topology with a rendered rim mesh.
type MeshWheel struct {
	Wheel
	RimRadius float32   `json:"rimRadius"`
	Side      WheelSide `json:"side"`
	MeshName  string    `json:"meshName"`
	Material  string    `json:"material"`
}

// FlexBodyWheel is one record of a "flexbodywheels" section: wheel2
// topology braced by a deformable visual mesh.
type FlexBodyWheel struct {
	Wheel2
	Side         WheelSide `json:"side"`
	RimMeshName  string    `json:"rimMeshName"`
	TyreMeshName string    `json:"tyreMeshName"`
}

// Rotator is one record of a "rotators" section.
type Rotator struct {
	AxisNodes     [2]NodeRef `json:"axisNodes"`
	BaseNodes     [4]NodeRef `json:"baseNodes"`
	RotatingNodes [4]NodeRef `json:"rotatingNodes"`
	Rate          float32    `json:"rate"`
	SpinLeftKey   int        `json:"spinLeftKey"`
	SpinRightKey  int        `json:"spinRightKey"`
}

// Rotator2 extends Rotator with force/tolerance tuning.
type Rotator2 struct {
	Rotator
	Force       float32 `json:"force"`
	Tolerance   float32 `json:"tolerance"`
	Description string  `json:"description,omitempty"`
}

// DiffType is one selectable differential behavior.
type DiffType int

const (
	DiffOpen DiffType = iota
	DiffLocked
	DiffSplit
	DiffViscous
)

// Axle is one record of an "axles" section, matching two wheels by
// their axle node pairs.
type Axle struct {
	WheelNodes [2][2]NodeRef `json:"wheelNodes"`
	Types      []DiffType    `json:"types,omitempty"`
}

// InterAxle couples two axle differentials by chain position.
type InterAxle struct {
	Axles [2]int     `json:"axles"`
	Types []DiffType `json:"types,omitempty"`
}

// TransferCase selects the propulsion split between two axle diffs.
type TransferCase struct {
	Axle1      int       `json:"axle1"`
	Axle2      int       `json:"axle2"` // -1 when permanently single-axle
	Has2WD     bool      `json:"has2wd"`
	GearRatios []float32 `json:"gearRatios,omitempty"`
}

// Camera is one record of a "cameras" section: the center/back/left
// basis nodes of an onboard camera.
type Camera struct {
	Center NodeRef `json:"center"`
	Back   NodeRef `json:"back"`
	Left   NodeRef `json:"left"`
}

// Cinecam is one record of a "cinecam" section: one synthesized node
// suspended on eight beams.
type Cinecam struct {
	Position mgl32.Vec3    `json:"position"`
	Nodes    [8]NodeRef    `json:"nodes"`
	Spring   float32       `json:"spring"`
	Damp     float32       `json:"damp"`
	Defaults *BeamDefaults `json:"defaults,omitempty"`
}

// Wing is one record of a "wings" section: a quadrilateral lifting
// surface spanned by eight nodes (four leading, four trailing).
type Wing struct {
	Nodes         [8]NodeRef `json:"nodes"`
	Control       byte       `json:"control"` // 'n' fixed, 'a' aileron, 'f' flap, ...
	MinDeflection float32    `json:"minDeflection"`
	MaxDeflection float32    `json:"maxDeflection"`
	Airfoil       string     `json:"airfoil,omitempty"`
}

// FuseDrag is the fuselage drag record.
type FuseDrag struct {
	Front           NodeRef `json:"front"`
	Back            NodeRef `json:"back"`
	Width           float32 `json:"width"`
	Autocalc        bool    `json:"autocalc,omitempty"`
	AreaCoefficient float32 `json:"areaCoefficient,omitempty"`
}

// Airbrake is one record of an "airbrakes" section.
type Airbrake struct {
	RefNode  NodeRef    `json:"refNode"`
	XNode    NodeRef    `json:"xNode"`
	YNode    NodeRef    `json:"yNode"`
	ArmNode  NodeRef    `json:"armNode"`
	Offset   mgl32.Vec3 `json:"offset"`
	Width    float32    `json:"width"`
	Height   float32    `json:"height"`
	MaxAngle float32    `json:"maxAngle"`
}

// Module is one named group of sections. The root module is always
// selected; others join by configuration.
type Module struct {
	Name           string          `json:"name"`
	Nodes          []Node          `json:"nodes,omitempty"`
	Beams          []Beam          `json:"beams,omitempty"`
	Shocks         []Shock         `json:"shocks,omitempty"`
	Shocks2        []Shock2        `json:"shocks2,omitempty"`
	Shocks3        []Shock3        `json:"shocks3,omitempty"`
	Triggers       []Trigger       `json:"triggers,omitempty"`
	Ropes          []Rope          `json:"ropes,omitempty"`
	Fixes          []Fix           `json:"fixes,omitempty"`
	Wheels         []Wheel         `json:"wheels,omitempty"`
	Wheels2        []Wheel2        `json:"wheels2,omitempty"`
	MeshWheels     []MeshWheel     `json:"meshWheels,omitempty"`
	FlexBodyWheels []FlexBodyWheel `json:"flexBodyWheels,omitempty"`
	Rotators       []Rotator       `json:"rotators,omitempty"`
	Rotators2      []Rotator2      `json:"rotators2,omitempty"`
	Axles          []Axle          `json:"axles,omitempty"`
	InterAxles     []InterAxle     `json:"interAxles,omitempty"`
	TransferCase   *TransferCase   `json:"transferCase,omitempty"`
	Cameras        []Camera        `json:"cameras,omitempty"`
	Cinecams       []Cinecam       `json:"cinecams,omitempty"`
	Wings          []Wing          `json:"wings,omitempty"`
	FuseDrag       *FuseDrag       `json:"fuseDrag,omitempty"`
	Airbrakes      []Airbrake      `json:"airbrakes,omitempty"`
}

// Document is a fully parsed rig description.
type Document struct {
	Name            string    `json:"name"`
	Root            *Module   `json:"root"`
	Modules         []*Module `json:"modules,omitempty"`
	SelectedModules []string  `json:"selectedModules,omitempty"`
	AdvancedDeform  bool      `json:"advancedDeform,omitempty"` // enable_advanced_deformation
	MinimumMass     float32   `json:"minimumMass,omitempty"`
}

// Selected returns the root module followed by the selected optional
// modules, in document order.
func (d *Document) Selected() []*Module {
	mods := make([]*Module, 0, 1+len(d.SelectedModules))
	if d.Root != nil {
		mods = append(mods, d.Root)
	}
	for _, m := range d.Modules {
		for _, name := range d.SelectedModules {
			if m.Name == name {
				mods = append(mods, m)
				break
			}
		}
	}
	return mods
}
