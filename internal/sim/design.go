package sim

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sobench/sobench/internal/encode"
	"github.com/sobench/sobench/internal/model"
)

// DesignFileName is the parameterization file the wrapper's deck builder
// reads from the workspace.
const DesignFileName = "design.json"

// designInput is the on-disk parameterization of one evaluation. Physical is
// the encoder's flat vector; Triggers and Thickness are the derived
// structures the deck builder consumes directly.
type designInput struct {
	Family        string           `json:"family"`
	Physical      []float64        `json:"physical"`
	Triggers      []encode.Trigger `json:"triggers,omitempty"`
	Thickness     []float64        `json:"thickness,omitempty"`
	HLevel        int              `json:"h_level"`
	GmshVerbosity int              `json:"gmsh_verbosity"`
}

// Extrusion layer counts at refinement level 1, doubling per level, matching
// the meshers the wrapper drives.
const (
	starBoxLayersBase           = 30
	threePointBendingLayersBase = 8
)

func layerCount(base, hLevel int) int {
	if hLevel < 1 {
		hLevel = 1
	}
	return base << (hLevel - 1)
}

// WriteDesign renders the physical parameterization into the workspace for
// the wrapper's deck builder. StarBox vectors beyond the five geometric
// slots and ThreePointBending vectors carry thickness control points,
// interpolated here to the mesher's per-layer profile; CrashTube vectors
// fill trigger groups, leaving unset roles at their defaults.
func WriteDesign(workspace string, family model.Family, physical []float64, mesh MeshOptions) error {
	in := designInput{
		Family:        family.String(),
		Physical:      physical,
		HLevel:        mesh.HLevel,
		GmshVerbosity: mesh.GmshVerbosity,
	}

	switch family {
	case model.StarBox:
		if len(physical) > 5 {
			in.Thickness = encode.ThicknessProfile(physical[4:], layerCount(starBoxLayersBase, mesh.HLevel))
		}
	case model.ThreePointBending:
		in.Thickness = encode.ThicknessProfile(physical, layerCount(threePointBendingLayersBase, mesh.HLevel))
	case model.CrashTube:
		in.Triggers = encode.TriggerGroups(physical)
	}

	data, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal design input: %w", err)
	}

	path := filepath.Join(workspace, DesignFileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write design input: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize design input: %w", err)
	}
	return nil
}
