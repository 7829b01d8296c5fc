package pipeline

import (
	"context"
	"fmt"

	bberrors "github.com/matzehuels/budgetbubbles/pkg/errors"
	"github.com/matzehuels/budgetbubbles/pkg/render"
	"github.com/matzehuels/budgetbubbles/pkg/visualization"
)

// RenderArtifacts renders each requested format without caching.
// layoutData is returned verbatim as the "json" artifact.
func RenderArtifacts(ctx context.Context, vis *visualization.Visualization, layoutData []byte, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	scene, err := Scene(vis, opts.Panel)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]byte, len(opts.Formats))
	var dot string
	for _, format := range opts.Formats {
		switch format {
		case FormatSVG:
			out[format] = render.RenderSVG(scene, svgOptions(opts)...)
		case FormatDOT:
			dot = cachedDOT(dot, scene)
			out[format] = []byte(dot)
		case FormatPNG:
			dot = cachedDOT(dot, scene)
			png, err := render.RenderDOT(ctx, dot, render.FormatPNG)
			if err != nil {
				return nil, fmt.Errorf("png: %w", err)
			}
			out[format] = png
		case FormatJSON:
			out[format] = layoutData
		}
	}
	return out, nil
}

// Scene snapshots the render target. The budget stage and its panels are
// drawn under the budget zoom, the comparison panel under its own.
func Scene(vis *visualization.Visualization, target string) (render.Scene, error) {
	switch target {
	case PanelBudget, "":
		z, _ := vis.Zoom(visualization.StageBudget)
		return render.Stage(vis.Left, vis.Right).WithZoom(z), nil
	case PanelLeft, PanelRight:
		p, _ := vis.Panel(target)
		z, _ := vis.Zoom(visualization.StageBudget)
		return render.FromPanel(p).WithZoom(z), nil
	case PanelComparison:
		z, _ := vis.Zoom(visualization.StageComparison)
		return render.FromPanel(vis.Comparison).WithZoom(z), nil
	}
	return render.Scene{}, bberrors.New(bberrors.ErrCodeInvalidInput, "unknown panel %q", target)
}

func svgOptions(opts Options) []render.SVGOption {
	var out []render.SVGOption
	if opts.Title != "" {
		out = append(out, render.WithTitle(opts.Title))
	}
	if opts.HideLinks {
		out = append(out, render.WithoutLinks())
	}
	return out
}

func cachedDOT(dot string, scene render.Scene) string {
	if dot != "" {
		return dot
	}
	return render.ToDOT(scene)
}
