package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	svg "github.com/ajstarks/svgo/float"

	"github.com/matzehuels/budgetbubbles/pkg/bubble"
)

const bubbleCSS = `
    .bubble text { font-family: Helvetica, Arial, sans-serif; text-anchor: middle; }
    .bubble .amount { fill: #fff; font-weight: bold; dominant-baseline: central; }
    .bubble .label { fill: #333; }
    .bubble .expandable { fill: none; stroke: #fff; stroke-width: 1.5; stroke-dasharray: 3,3; }
    .bubble .cover { fill: #fff; fill-opacity: 0.55; }
    .link { stroke: #bbb; stroke-width: 1; }
    a { cursor: pointer; }`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	canvas     *svg.SVG
	title      string
	background string
	hideLinks  bool
	hideLabels bool
}

// WithTitle sets the document title.
func WithTitle(title string) SVGOption { return func(r *svgRenderer) { r.title = title } }

// WithBackground fills the canvas with color.
func WithBackground(color string) SVGOption { return func(r *svgRenderer) { r.background = color } }

// WithoutLinks omits the parent-child links.
func WithoutLinks() SVGOption { return func(r *svgRenderer) { r.hideLinks = true } }

// WithoutLabels omits the text under each bubble.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.hideLabels = true } }

// RenderSVG draws the scene as an SVG document. Links are drawn under the
// bubbles; each layer keeps its node order.
func RenderSVG(s Scene, opts ...SVGOption) []byte {
	var buf bytes.Buffer
	r := svgRenderer{canvas: svg.New(&buf)}
	for _, opt := range opts {
		opt(&r)
	}

	c := r.canvas
	c.Startview(s.Width, s.Height, 0, 0, s.Width, s.Height)
	if r.title != "" {
		c.Title(r.title)
	}
	c.Style("text/css", bubbleCSS)
	if r.background != "" {
		c.Rect(0, 0, s.Width, s.Height, attr("fill", r.background))
	}

	z := s.Zoom
	if z.Scale == 0 {
		z.Scale = 1
	}
	c.Gtransform(fmt.Sprintf("translate(%.2f,%.2f) scale(%.4f)", z.Translate[0], z.Translate[1], z.Scale))
	for _, l := range s.Layers {
		r.renderLayer(l)
	}
	c.Gend()
	c.End()
	return buf.Bytes()
}

func (r *svgRenderer) renderLayer(l Layer) {
	c := r.canvas
	c.Group(`class="panel"`, attr("id", "panel-"+l.Name), translate(l.OffsetX, l.OffsetY))
	if !r.hideLinks {
		for _, link := range l.Links {
			if link.Source == nil || link.Target == nil {
				continue
			}
			c.Line(link.Source.X, link.Source.Y, link.Target.X, link.Target.Y, `class="link"`)
		}
	}
	for _, n := range l.Nodes {
		r.renderBubble(l.Name, n)
	}
	c.Gend()
}

func (r *svgRenderer) renderBubble(layer string, n *bubble.Node) {
	c := r.canvas
	id := layer + "-" + n.ID
	c.Group(`class="bubble"`, attr("id", "bubble-"+id), translate(n.X, n.Y))
	if n.URL != "" {
		c.Link(escapeXML(n.URL), n.Label)
	}

	rad := n.Radius
	margin := bubble.Margin(rad)
	c.Circle(0, 0, rad+margin, `class="ring"`, `fill="none"`, attr("stroke", n.Color), `stroke-width="1"`)
	c.Circle(0, 0, rad, `class="body"`, attr("fill", n.Color))

	if n.HasFill && rad > 0 {
		clip := "fill-" + id
		c.Def()
		c.ClipPath(attr("id", clip))
		c.Rect(-rad-4, -rad-margin-0.001, 2*rad+10, n.FillHeight)
		c.ClipEnd()
		c.DefEnd()
		c.Circle(0, 0, rad, `class="cover"`, attr("clip-path", "url(#"+clip+")"))
	}
	if n.Expandable() && !n.Expanded && rad > margin {
		c.Circle(0, 0, rad-margin, `class="expandable"`)
	}
	if n.HasAmount && rad > 0 {
		c.Text(0, 0, n.FormattedAmount, `class="amount"`, fmt.Sprintf(`font-size="%.2fem"`, bubble.AmountFontSize(rad)))
	}
	if !r.hideLabels && n.Label != "" {
		c.Text(0, bubble.LabelOffset(rad), n.Label, `class="label"`, fmt.Sprintf(`font-size="%.2fem"`, bubble.LabelFontSize(rad)))
	}

	if n.URL != "" {
		c.LinkEnd()
	}
	c.Gend()
}

// attr formats one escaped attribute for the canvas style arguments.
func attr(name, value string) string {
	return name + `="` + escapeXML(value) + `"`
}

func translate(x, y float64) string {
	return fmt.Sprintf(`transform="translate(%.2f,%.2f)"`, x, y)
}

func escapeXML(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}
