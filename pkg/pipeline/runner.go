package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/budgetbubbles/pkg/cache"
	"github.com/matzehuels/budgetbubbles/pkg/dataset"
	bberrors "github.com/matzehuels/budgetbubbles/pkg/errors"
	"github.com/matzehuels/budgetbubbles/pkg/graph"
	"github.com/matzehuels/budgetbubbles/pkg/observability"
	"github.com/matzehuels/budgetbubbles/pkg/visualization"
)

// Cache key types reported to the cache hooks.
const (
	keyTypeDataset  = "dataset"
	keyTypeLayout   = "layout"
	keyTypeArtifact = "artifact"
)

// Runner executes the pipeline with caching. It holds no per-run state, so
// one Runner may serve concurrent runs with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// MaxTTL caps the lifetime of cache entries when positive.
	MaxTTL time.Duration
}

// NewRunner returns a runner. A nil cache disables caching, a nil keyer
// uses the DefaultKeyer and a nil logger uses the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs load → layout → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	result := &Result{SourceHash: cache.Hash(opts.Source)}
	hooks := observability.Pipeline()

	// Stage 1: Load
	start := time.Now()
	hooks.OnLoadStart(ctx, opts.sourceLabel())
	prepared, loadHit, err := r.PrepareWithCacheInfo(ctx, opts.Source, opts.Refresh)
	if err != nil {
		hooks.OnLoadComplete(ctx, opts.sourceLabel(), 0, time.Since(start), err)
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Stats.LoadTime = time.Since(start)
	result.CacheInfo.LoadHit = loadHit

	// Stage 2: Layout
	start = time.Now()
	vis, layoutData, layoutHit, err := r.LayoutWithCacheInfo(ctx, prepared, result.SourceHash, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	stats := vis.Stats()
	hooks.OnLoadComplete(ctx, opts.sourceLabel(), stats.Nodes, result.Stats.LoadTime, nil)
	result.Visualization = vis
	result.LayoutHash = cache.Hash(layoutData)
	result.Stats.LayoutTime = time.Since(start)
	result.Stats.NodeCount = stats.Nodes
	result.Stats.LinkCount = stats.Links
	result.CacheInfo.LayoutHit = layoutHit
	if result.State, err = graph.UnmarshalState(layoutData); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	r.Logger.Info("computed layout",
		"nodes", stats.Nodes,
		"links", stats.Links,
		"revision", vis.Revision(),
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	start = time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, vis, layoutData, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"panel", opts.Panel,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// PrepareWithCacheInfo normalizes a dataset document and reports whether
// the result came from the cache. Saved states are returned unchanged.
func (r *Runner) PrepareWithCacheInfo(ctx context.Context, source []byte, refresh bool) ([]byte, bool, error) {
	if graph.IsStateDocument(source) {
		return source, false, nil
	}
	key := r.Keyer.DatasetKey(cache.Hash(source))
	if data, ok := r.cacheGet(ctx, key, keyTypeDataset, refresh); ok {
		return data, true, nil
	}

	ds, err := dataset.Parse(source)
	if err != nil {
		return nil, false, bberrors.Wrap(bberrors.ErrCodeInvalidInput, err, "invalid dataset")
	}
	trees, err := ds.Prepare(ctx)
	if err != nil {
		return nil, false, err
	}
	data, err := dataset.Marshal(ds)
	if err != nil {
		return nil, false, fmt.Errorf("encode dataset: %w", err)
	}
	r.Logger.Debug("normalized dataset",
		"revisions", len(ds.Meta.Revisions),
		"left", trees.Left.Len(),
		"right", trees.Right.Len(),
		"comparison", trees.Comparison.Len())

	r.cacheSet(ctx, key, keyTypeDataset, data, cache.TTLDataset)
	return data, false, nil
}

// Prepare is PrepareWithCacheInfo without the cache information.
func (r *Runner) Prepare(ctx context.Context, source []byte) ([]byte, error) {
	data, _, err := r.PrepareWithCacheInfo(ctx, source, false)
	return data, err
}

// LayoutWithCacheInfo builds the visualization for a prepared document and
// returns it with its state document. A cached state document is restored
// instead of recomputing the layout.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, prepared []byte, sourceHash string, opts Options) (*visualization.Visualization, []byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, nil, false, err
	}
	vis := visualization.New(opts.visualizationOptions())
	key := r.Keyer.LayoutKey(sourceHash, opts.LayoutKeyOpts())

	if data, ok := r.cacheGet(ctx, key, keyTypeLayout, opts.Refresh); ok {
		if err := vis.LoadDocument(ctx, data); err == nil {
			return vis, data, true, nil
		}
		r.Logger.Warn("discarding unreadable cached layout", "key", key)
		vis = visualization.New(opts.visualizationOptions())
	}

	if err := vis.LoadDocument(ctx, prepared); err != nil {
		return nil, nil, false, bberrors.Wrap(bberrors.ErrCodeInvalidInput, err, "invalid document")
	}
	if err := r.applyLayout(ctx, vis, opts); err != nil {
		return nil, nil, false, err
	}

	data, err := graph.MarshalState(vis.SaveState(opts.Now()))
	if err != nil {
		return nil, nil, false, fmt.Errorf("encode state: %w", err)
	}
	r.cacheSet(ctx, key, keyTypeLayout, data, cache.TTLLayout)
	return vis, data, false, nil
}

// applyLayout selects the revision and replays the requested expansions.
func (r *Runner) applyLayout(ctx context.Context, vis *visualization.Visualization, opts Options) error {
	if opts.Revision != LatestRevision {
		got := vis.SetRevision(opts.Revision)
		if got != opts.Revision {
			r.Logger.Warn("revision out of range", "requested", opts.Revision, "selected", got)
		}
	}

	hooks := observability.Pipeline()
	for _, raw := range opts.Expand {
		e, err := ParseExpansion(raw)
		if err != nil {
			return err
		}
		p, _ := vis.Panel(e.Panel)
		start := time.Now()
		hooks.OnLayoutStart(ctx, e.Panel, p.Len())
		if _, ok := p.Node(e.ID); !ok {
			err := bberrors.New(bberrors.ErrCodeNotFound, "cannot expand %s: node is not visible", e)
			hooks.OnLayoutComplete(ctx, e.Panel, time.Since(start), err)
			return err
		}
		if _, ok := p.Expand(e.ID); !ok {
			r.Logger.Warn("node not expandable", "panel", e.Panel, "id", e.ID)
		}
		hooks.OnLayoutComplete(ctx, e.Panel, time.Since(start), nil)
	}
	return nil
}

// RenderWithCacheInfo renders every requested format and reports whether
// all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, vis *visualization.Visualization, layoutData []byte, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	layoutHash := cache.Hash(layoutData)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		data, ok := r.cacheGet(ctx, key, keyTypeArtifact, opts.Refresh)
		if !ok {
			break
		}
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	rendered, err := RenderArtifacts(ctx, vis, layoutData, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		r.cacheSet(ctx, key, keyTypeArtifact, data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) cacheGet(ctx context.Context, key, keyType string, refresh bool) ([]byte, bool) {
	if refresh {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key_type", keyType, "err", err)
		return nil, false
	}
	if !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

func (r *Runner) cacheSet(ctx context.Context, key, keyType string, data []byte, ttl time.Duration) {
	if r.MaxTTL > 0 && (ttl <= 0 || ttl > r.MaxTTL) {
		ttl = r.MaxTTL
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "key_type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
