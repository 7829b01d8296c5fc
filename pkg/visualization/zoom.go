package visualization

import (
	"github.com/matzehuels/budgetbubbles/pkg/graph"
)

// Stage names.
const (
	StageBudget     = "budget"
	StageComparison = "comparison"
)

// Zoom is the pan and zoom of one stage. Stages are linked: zooming one
// rescales the others about their own centers, while panning stays local.
type Zoom struct {
	graph.ZoomState
	CX, CY float64 // stage center
}

func newZoom(width, height float64) *Zoom {
	return &Zoom{ZoomState: graph.IdentityZoom(), CX: width / 2, CY: height / 2}
}

// set applies a zoom coming from this stage itself.
func (z *Zoom) set(translate [2]float64, scale float64) {
	z.Translate = translate
	z.Scale = clampScale(scale)
}

// follow applies a scale change coming from another stage, keeping this
// stage's center fixed on screen.
func (z *Zoom) follow(scale float64) {
	scale = clampScale(scale)
	if z.Scale == 0 {
		z.Scale = 1
	}
	k := scale / z.Scale
	z.Translate = [2]float64{
		z.CX + k*(z.Translate[0]-z.CX),
		z.CY + k*(z.Translate[1]-z.CY),
	}
	z.Scale = scale
}

func clampScale(s float64) float64 {
	return max(graph.MinZoom, min(s, graph.MaxZoom))
}

func (v *Visualization) stages() map[string]*Zoom {
	return map[string]*Zoom{StageBudget: v.budgetZoom, StageComparison: v.comparisonZoom}
}

// Zoom returns the current zoom of a stage.
func (v *Visualization) Zoom(stage string) (graph.ZoomState, bool) {
	z, ok := v.stages()[stage]
	if !ok {
		return graph.ZoomState{}, false
	}
	return z.ZoomState, true
}

// ZoomStage pans and zooms one stage; the other stages follow the scale.
func (v *Visualization) ZoomStage(stage string, translate [2]float64, scale float64) bool {
	stages := v.stages()
	src, ok := stages[stage]
	if !ok {
		return false
	}
	src.set(translate, scale)
	for name, z := range stages {
		if name != stage {
			z.follow(src.Scale)
		}
	}
	return true
}

// ZoomInOut multiplies the zoom of every stage by factor about the stage
// centers. A factor above 1 zooms in.
func (v *Visualization) ZoomInOut(factor float64) {
	scale := v.budgetZoom.Scale * factor
	for _, z := range v.stages() {
		z.follow(scale)
	}
}

// ResetZoom returns every stage to the identity zoom.
func (v *Visualization) ResetZoom() {
	for _, z := range v.stages() {
		z.ZoomState = graph.IdentityZoom()
	}
}
