// Package bubble turns normalized data items into drawable bubble nodes.
//
// A [Mapper] carries the view context (language, revision, size scale) and
// derives every visual field of a [Node] from its item: radius, color,
// label, formatted amounts and the fill mask height. Bubble areas are
// proportional to amounts, and [Mapper.CalibrateScalingFactor] makes the
// largest root amount of a dataset map to a radius of 100.
//
// Nodes also carry layout state (position, Fixed, Expanded) that the panel
// and layout packages own. [Mapper.ReviseNode] refreshes the derived fields
// in place when the revision or language changes and leaves that state
// alone.
package bubble
