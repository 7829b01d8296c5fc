package server

import (
	"encoding/json"
	"net/http"

	bberrors "github.com/matzehuels/budgetbubbles/pkg/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    bberrors.Code `json:"code"`
	Message string        `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// writeError maps err to a status. Internal errors hide their message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := bberrors.HTTPStatus(err)
	code := bberrors.GetCode(err)
	msg := bberrors.UserMessage(err)
	if status == http.StatusInternalServerError {
		code = bberrors.ErrCodeInternal
		msg = "internal error"
		logFrom(r).Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

func notFoundRoute(r *http.Request) error {
	return bberrors.New(bberrors.ErrCodeNotFound, "no route for %s %s", r.Method, r.URL.Path)
}

var contentTypes = map[string]string{
	"svg":  "image/svg+xml",
	"dot":  "text/vnd.graphviz; charset=utf-8",
	"png":  "image/png",
	"json": "application/json",
}
