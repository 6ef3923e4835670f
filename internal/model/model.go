// Package model defines the relational schema of the sqlite export
// backend. One build produces one Rig row plus its dependent node,
// beam, wheel, differential and diagnostic rows.
package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DatabaseModels is a list of all the structs exported here which
// represent tables in the database schema.
var DatabaseModels = []interface{}{
	&Rig{},
	&Node{},
	&Beam{},
	&Shock{},
	&Wheel{},
	&WheelDiff{},
	&AxleDiff{},
	&Rotator{},
	&Diagnostic{},
}

// Rig is one exported build result.
type Rig struct {
	gorm.Model
	Name       string  `json:"name" gorm:"size:255;index"`
	OriginX    float32 `json:"originX"`
	OriginY    float32 `json:"originY"`
	OriginZ    float32 `json:"originZ"`
	NodeCount  int     `json:"nodeCount"`
	BeamCount  int     `json:"beamCount"`
	WheelCount int     `json:"wheelCount"`
}

func (*Rig) TableName() string {
	return "rigs"
}

// Node is one mass point row.
type Node struct {
	gorm.Model
	RigID     uint    `json:"rigId" gorm:"index:idx_node_rig_id"`
	NodeIndex int     `json:"nodeIndex"`
	X         float32 `json:"x"`
	Y         float32 `json:"y"`
	Z         float32 `json:"z"`
	Mass      float32 `json:"mass"`
	Friction  float32 `json:"friction"`

	Fixed           bool `json:"fixed"`
	NoGroundContact bool `json:"noGroundContact"`
	Contacter       bool `json:"contacter"`
	RimNode         bool `json:"rimNode"`
	TyreNode        bool `json:"tyreNode"`
}

func (*Node) TableName() string {
	return "nodes"
}

// Beam is one constraint row.
type Beam struct {
	gorm.Model
	RigID      uint    `json:"rigId" gorm:"index:idx_beam_rig_id"`
	BeamIndex  int     `json:"beamIndex"`
	Node1      int     `json:"node1"`
	Node2      int     `json:"node2"`
	RestLength float32 `json:"restLength"`
	Spring     float32 `json:"spring"`
	Damp       float32 `json:"damp"`
	Strength   float32 `json:"strength"`
	Deform     float32 `json:"deform"`

	Type          int     `json:"type"`
	Bound         int     `json:"bound"`
	ShortBound    float32 `json:"shortBound"`
	LongBound     float32 `json:"longBound"`
	DetacherGroup int     `json:"detacherGroup"`
	ShockIndex    int     `json:"shockIndex"`
}

func (*Beam) TableName() string {
	return "beams"
}

// Shock is the progressivity tuning of one shock-bounded beam.
type Shock struct {
	gorm.Model
	RigID     uint    `json:"rigId" gorm:"index:idx_shock_rig_id"`
	BeamIndex int     `json:"beamIndex"`
	SpringIn  float32 `json:"springIn"`
	DampIn    float32 `json:"dampIn"`
	SpringOut float32 `json:"springOut"`
	DampOut   float32 `json:"dampOut"`
	Trigger   bool    `json:"trigger"`
}

func (*Shock) TableName() string {
	return "shocks"
}

// Wheel is one derived wheel row. Ring nodes are recomputed from
// BaseNode, Rays and the variant, so they are not stored per node.
type Wheel struct {
	gorm.Model
	RigID      uint    `json:"rigId" gorm:"index:idx_wheel_rig_id"`
	WheelIndex int     `json:"wheelIndex"`
	Variant    int     `json:"variant"`
	AxleNode1  int     `json:"axleNode1"`
	AxleNode2  int     `json:"axleNode2"`
	BaseNode   int     `json:"baseNode"`
	Rays       int     `json:"rays"`
	Radius     float32 `json:"radius"`
	RimRadius  float32 `json:"rimRadius"`
	Width      float32 `json:"width"`
	Propulsion int     `json:"propulsion"`
	Braking    int     `json:"braking"`
	ArmNode    int     `json:"armNode"`
}

func (*Wheel) TableName() string {
	return "wheels"
}

// WheelDiff couples two wheel indices. Types holds the selectable
// behavior list as a JSON array.
type WheelDiff struct {
	gorm.Model
	RigID  uint           `json:"rigId" gorm:"index:idx_wheeldiff_rig_id"`
	Wheel1 int            `json:"wheel1"`
	Wheel2 int            `json:"wheel2"`
	Types  datatypes.JSON `json:"types"`
}

func (*WheelDiff) TableName() string {
	return "wheel_diffs"
}

// AxleDiff couples two wheel-differential chain positions.
type AxleDiff struct {
	gorm.Model
	RigID uint           `json:"rigId" gorm:"index:idx_axlediff_rig_id"`
	Diff1 int            `json:"diff1"`
	Diff2 int            `json:"diff2"`
	Types datatypes.JSON `json:"types"`
}

func (*AxleDiff) TableName() string {
	return "axle_diffs"
}

// Rotator is one rotator row with its plate nodes as JSON arrays.
type Rotator struct {
	gorm.Model
	RigID         uint           `json:"rigId" gorm:"index:idx_rotator_rig_id"`
	AxisNode1     int            `json:"axisNode1"`
	AxisNode2     int            `json:"axisNode2"`
	BaseNodes     datatypes.JSON `json:"baseNodes"`
	RotatingNodes datatypes.JSON `json:"rotatingNodes"`
	Rate          float32        `json:"rate"`
	Force         float32        `json:"force"`
}

func (*Rotator) TableName() string {
	return "rotators"
}

// Diagnostic is one construction message.
type Diagnostic struct {
	gorm.Model
	RigID    uint   `json:"rigId" gorm:"index:idx_diagnostic_rig_id"`
	Severity string `json:"severity" gorm:"size:16"`
	Keyword  string `json:"keyword" gorm:"size:64"`
	Text     string `json:"text" gorm:"size:1024"`
}

func (*Diagnostic) TableName() string {
	return "diagnostics"
}
