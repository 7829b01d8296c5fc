// Package pkg provides the core libraries for budget bubble visualizations.
//
// # Overview
//
// A budget is three trees of items: revenue on the left, spending on the
// right and an optional comparison set. Every item carries an amount per
// revision (a year or an amendment). Budget bubbles draws each tree as a
// force-directed cluster of circles whose areas are proportional to the
// amounts; clicking a circle replaces it with its children.
//
// # Architecture
//
//	dataset JSON
//	     ↓
//	[dataset] parse, fill merge, densification, aggregation
//	     ↓
//	[visualization] three [panel]s of [bubble]s, relaxed by [layout]
//	     ↓
//	[graph] state document (the saved view)
//	     ↓
//	[render] SVG, DOT, PNG
//
// [pipeline] chains these stages behind a [cache] and is shared by the CLI
// and the HTTP [server]. Saved states live in a [store].
//
// # Quick Start
//
//	ds, _ := dataset.ReadFile("budget.json")
//	vis := visualization.New(visualization.Options{})
//	_ = vis.Load(ctx, ds)
//
//	p, _ := vis.Panel(dataset.PanelRight)
//	p.Expand("health")
//
//	scene, _ := pipeline.Scene(vis, "budget")
//	svg := render.RenderSVG(scene)
//
// # Packages
//
// ## Domain
//
// [revision] - Values that are either a scalar, a per-revision list or a
// per-revision-id map, resolved against the current revision.
//
// [dataset] - The dataset document and its normalization.
//
// [bubble] - Maps dataset items to circles: radius, color, labels and the
// formatted amount for the current revision and language.
//
// [layout] - The force simulation (charge, collision, centering) that packs
// the bubbles of one panel.
//
// [panel] - One drawing area: the visible bubbles, the links to their
// parents and the expand/collapse operations.
//
// [visualization] - The three panels, the revision and language selection,
// zoom stages and state save/restore.
//
// [i18n] - Translations of the built-in strings and number formatting.
//
// ## Serialization and Output
//
// [graph] - State documents and the Graphviz DOT conversion.
//
// [render] - The SVG writer and DOT rasterization.
//
// ## Infrastructure
//
// [pipeline] - Load → layout → render with caching and observability hooks.
//
// [cache] - File, Redis and null caches with content-addressed keys.
//
// [store] - File, SQLite and MongoDB stores for saved states.
//
// [server] - The HTTP backend: datasets, saved states and rendering.
//
// [config] - TOML configuration.
//
// [errors] - Coded errors and input validation.
//
// [observability] - Pipeline, cache and server hooks with a Prometheus
// implementation.
//
// [buildinfo] - Version information set at link time.
//
// # Testing
//
//	go test ./pkg/...
//	go test -run Example ./pkg/...
//
// [revision]: https://pkg.go.dev/github.com/matzehuels/budgetbubbles/pkg/revision
// [dataset]: https://pkg.go.dev/github.com/matzehuels/budgetbubbles/pkg/dataset
// [bubble]: https://pkg.go.dev/github.com/matzehuels/budgetbubbles/pkg/bubble
// [layout]: https://pkg.go.dev/github.com/matzehuels/budgetbubbles/pkg/layout
// [panel]: https://pkg.go.dev/github.com/matzehuels/budgetbubbles/pkg/panel
// [visualization]: https://pkg.go.dev/github.com/matzehuels/budgetbubbles/pkg/visualization
// [i18n]: https://pkg.go.dev/github.com/matzehuels/budgetbubbles/pkg/i18n
// [graph]: https://pkg.go.dev/github.com/matzehuels/budgetbubbles/pkg/graph
// [render]: https://pkg.go.dev/github.com/matzehuels/budgetbubbles/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/budgetbubbles/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/budgetbubbles/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/budgetbubbles/pkg/store
// [server]: https://pkg.go.dev/github.com/matzehuels/budgetbubbles/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/budgetbubbles/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/budgetbubbles/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/budgetbubbles/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/budgetbubbles/pkg/buildinfo
package pkg
