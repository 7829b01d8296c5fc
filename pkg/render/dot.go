package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"
)

// Format is an output format produced by Graphviz.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// points per inch; DOT node sizes are in inches, positions in points.
const pointsPerInch = 72.0

// ToDOT converts the scene to Graphviz DOT. Every node is pinned at its
// layout position (y flipped, Graphviz grows upward) and drawn as a filled
// circle whose diameter matches the bubble. Links become undirected edges.
func ToDOT(s Scene) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, fontname=\"Helvetica\", fontcolor=white, penwidth=0];\n")
	buf.WriteString("  edge [color=\"#bbbbbb\"];\n")
	buf.WriteString("\n")

	for _, l := range s.Layers {
		for _, n := range l.Nodes {
			x := l.OffsetX + n.X
			y := s.Height - (l.OffsetY + n.Y)
			d := 2 * n.Radius / pointsPerInch
			fmt.Fprintf(&buf, "  %q [label=%q, tooltip=%q, fillcolor=%q, width=%.4f, pos=\"%.2f,%.2f!\"];\n",
				dotID(l.Name, n.ID), n.FormattedAmount, n.Label, n.Color, d, x, y)
		}
	}

	buf.WriteString("\n")
	for _, l := range s.Layers {
		for _, e := range l.Links {
			if e.Source == nil || e.Target == nil {
				continue
			}
			fmt.Fprintf(&buf, "  %q -- %q;\n", dotID(l.Name, e.Source.ID), dotID(l.Name, e.Target.ID))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func dotID(layer, id string) string {
	return layer + "/" + id
}

// RenderDOT lays out a DOT graph with neato, which honors pinned
// positions, and renders it in the requested format.
func RenderDOT(ctx context.Context, dot string, format Format) ([]byte, error) {
	var gvFormat graphviz.Format
	switch format {
	case FormatSVG:
		gvFormat = graphviz.SVG
	case FormatPNG:
		gvFormat = graphviz.PNG
	default:
		return nil, fmt.Errorf("unsupported graphviz format %q", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	if format == FormatSVG {
		return normalizeViewBox(buf.Bytes()), nil
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's root element with a plain one whose
// size follows the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
