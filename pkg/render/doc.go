// Package render draws bubble panels as static artifacts.
//
// # Overview
//
// A [Scene] is a read-only snapshot of one or more panels: their canvas
// size, live nodes and links, and an optional zoom transform. Two renderers
// consume it:
//
//   - [RenderSVG] writes a self-contained SVG document with the bubble
//     styling of the interactive view (outer ring, dashed marker for
//     expandable bubbles, fill cover, amount and label text).
//   - [ToDOT] converts the scene to Graphviz DOT with every node pinned at
//     its layout position; [RenderDOT] runs Graphviz (neato) to produce SVG
//     or PNG.
//
// # Building Scenes
//
//	scene := render.FromPanel(vis.Left)
//	svg := render.RenderSVG(scene, render.WithTitle("Revenue"))
//
// [Stage] places several panels side by side, which is how the budget stage
// shows the left and right panels together:
//
//	scene := render.Stage(vis.Left, vis.Right)
//
// Rendering never mutates the panels.
package render
