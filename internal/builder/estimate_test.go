package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rigforge/rigforge/pkg/rig"
	"github.com/rigforge/rigforge/pkg/rigdef"
)

func TestEstimate(t *testing.T) {
	rigidity := rigdef.Num(0)

	tests := []struct {
		name string
		doc  rigdef.Document
		want rig.Requirements
	}{
		{
			name: "nodes and beams",
			doc: rigdef.Document{Root: &rigdef.Module{
				Nodes: make([]rigdef.Node, 4),
				Beams: make([]rigdef.Beam, 3),
			}},
			want: rig.Requirements{Nodes: 4, Beams: 3},
		},
		{
			name: "hook node adds a beam",
			doc: rigdef.Document{Root: &rigdef.Module{
				Nodes: []rigdef.Node{
					{},
					{Options: rigdef.NodeOptions{Hook: true}},
				},
			}},
			want: rig.Requirements{Nodes: 2, Beams: 1},
		},
		{
			name: "shock sections",
			doc: rigdef.Document{Root: &rigdef.Module{
				Shocks:   make([]rigdef.Shock, 2),
				Shocks2:  make([]rigdef.Shock2, 1),
				Shocks3:  make([]rigdef.Shock3, 1),
				Triggers: make([]rigdef.Trigger, 1),
				Ropes:    make([]rigdef.Rope, 2),
			}},
			want: rig.Requirements{Beams: 7, Shocks: 5},
		},
		{
			name: "plain wheel",
			doc: rigdef.Document{Root: &rigdef.Module{
				Wheels: []rigdef.Wheel{{Rays: 4}},
			}},
			want: rig.Requirements{Nodes: 8, Beams: 32, Wheels: 1},
		},
		{
			name: "plain wheel with rigidity node",
			doc: rigdef.Document{Root: &rigdef.Module{
				Wheels: []rigdef.Wheel{{Rays: 4, RigidityNode: &rigidity}},
			}},
			want: rig.Requirements{Nodes: 8, Beams: 36, Wheels: 1},
		},
		{
			name: "wheel2",
			doc: rigdef.Document{Root: &rigdef.Module{
				Wheels2: []rigdef.Wheel2{{Rays: 6}},
			}},
			want: rig.Requirements{Nodes: 24, Beams: 144, Wheels: 1},
		},
		{
			name: "flexbodywheel",
			doc: rigdef.Document{Root: &rigdef.Module{
				FlexBodyWheels: []rigdef.FlexBodyWheel{{Wheel2: rigdef.Wheel2{Rays: 6}}},
			}},
			want: rig.Requirements{Nodes: 24, Beams: 120, Wheels: 1},
		},
		{
			name: "cinecam",
			doc: rigdef.Document{Root: &rigdef.Module{
				Cinecams: make([]rigdef.Cinecam, 2),
			}},
			want: rig.Requirements{Nodes: 2, Beams: 16},
		},
		{
			name: "rotators wings airbrakes fixes",
			doc: rigdef.Document{Root: &rigdef.Module{
				Rotators:  make([]rigdef.Rotator, 1),
				Rotators2: make([]rigdef.Rotator2, 2),
				Wings:     make([]rigdef.Wing, 3),
				Airbrakes: make([]rigdef.Airbrake, 1),
				Fixes:     make([]rigdef.Fix, 2),
			}},
			want: rig.Requirements{Rotators: 3, Wings: 3, Airbrakes: 1, Fixes: 2},
		},
		{
			name: "unselected module ignored",
			doc: rigdef.Document{
				Root:    &rigdef.Module{Nodes: make([]rigdef.Node, 2)},
				Modules: []*rigdef.Module{{Name: "trailer", Nodes: make([]rigdef.Node, 5)}},
			},
			want: rig.Requirements{Nodes: 2},
		},
		{
			name: "selected module counted",
			doc: rigdef.Document{
				Root:            &rigdef.Module{Nodes: make([]rigdef.Node, 2)},
				Modules:         []*rigdef.Module{{Name: "trailer", Nodes: make([]rigdef.Node, 5)}},
				SelectedModules: []string{"trailer"},
			},
			want: rig.Requirements{Nodes: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Estimate(&tt.doc))
		})
	}
}
