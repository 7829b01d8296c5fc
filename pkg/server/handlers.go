package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/budgetbubbles/pkg/buildinfo"
	bberrors "github.com/matzehuels/budgetbubbles/pkg/errors"
	"github.com/matzehuels/budgetbubbles/pkg/graph"
	"github.com/matzehuels/budgetbubbles/pkg/pipeline"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Current()})
}

// handleVisualization returns the saved state named by ?s=, or the
// prepared dataset.
func (s *Server) handleVisualization(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := bberrors.ValidateID(id); err != nil {
		writeError(w, r, err)
		return
	}

	if stateID := r.URL.Query().Get("s"); stateID != "" {
		doc, err := s.store.Load(r.Context(), id, stateID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		data, err := graph.MarshalState(doc)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeRaw(w, "application/json", data)
		return
	}

	raw, err := s.datasets.Dataset(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	prepared, err := s.runner.Prepare(r.Context(), raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeRaw(w, "application/json", prepared)
}

type saveResponse struct {
	ID       string `json:"id"`
	ShareURL string `json:"share_url"`
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.datasets.Dataset(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.maxBody)
	doc, err := graph.ReadState(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, bberrors.Wrap(bberrors.ErrCodeInvalidInput, err, "state exceeds %d bytes", s.maxBody))
			return
		}
		writeError(w, r, bberrors.Wrap(bberrors.ErrCodeInvalidInput, err, "invalid state document"))
		return
	}

	stateID, err := s.store.Save(r.Context(), id, doc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logFrom(r).Info("saved state", "visualization", id, "state", stateID)
	writeJSON(w, http.StatusCreated, saveResponse{ID: stateID, ShareURL: s.shareURL(id, stateID)})
}

func (s *Server) shareURL(visID, stateID string) string {
	return strings.TrimSuffix(s.baseURL, "/") + "/view/" + visID + "?s=" + stateID
}

func (s *Server) handleStates(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	states, err := s.store.List(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"visualization": id, "states": states})
}

// handleRender runs the pipeline on a dataset or saved state. Query
// parameters: s (state id), lang, rev, expand (repeatable "panel/id"),
// panel, title, links=false.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	format := chi.URLParam(r, "format")
	if err := bberrors.ValidateFormat(format, pipeline.SupportedFormats); err != nil {
		writeError(w, r, err)
		return
	}

	opts, err := s.renderOptions(r, format)
	if err != nil {
		writeError(w, r, err)
		return
	}

	q := r.URL.Query()
	if stateID := q.Get("s"); stateID != "" {
		doc, err := s.store.Load(r.Context(), id, stateID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if opts.Source, err = graph.MarshalState(doc); err != nil {
			writeError(w, r, err)
			return
		}
		opts.SourceName = id + "?s=" + stateID
	} else {
		if opts.Source, err = s.datasets.Dataset(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		opts.SourceName = id
	}

	opts.Logger = logFrom(r)
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeRaw(w, contentTypes[format], result.Artifacts[format])
}

func (s *Server) renderOptions(r *http.Request, format string) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := s.defaults
	opts.Revision = pipeline.LatestRevision
	opts.Formats = []string{format}
	opts.Expand = q["expand"]

	if lang := q.Get("lang"); lang != "" {
		opts.Language = lang
	}
	if rev := q.Get("rev"); rev != "" {
		n, err := strconv.Atoi(rev)
		if err != nil {
			return opts, bberrors.Wrap(bberrors.ErrCodeInvalidInput, err, "rev must be an integer")
		}
		opts.Revision = n
	}
	if panel := q.Get("panel"); panel != "" {
		opts.Panel = panel
	}
	opts.Title = q.Get("title")
	if links := q.Get("links"); links != "" {
		show, err := strconv.ParseBool(links)
		if err != nil {
			return opts, bberrors.Wrap(bberrors.ErrCodeInvalidInput, err, "links must be a boolean")
		}
		opts.HideLinks = !show
	}
	return opts, nil
}
