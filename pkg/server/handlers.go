package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/treediff-dev/treediff"
	"github.com/treediff-dev/treediff/pkg/htmltree"
	"github.com/treediff-dev/treediff/pkg/match"
	"github.com/treediff-dev/treediff/pkg/patch"
)

// DiffRequest is the body of POST /v1/diff.
type DiffRequest struct {
	Old string `json:"old"`
	New string `json:"new"`

	// MinHeight and SimilarityThreshold override the matcher defaults
	// when non-nil.
	MinHeight           *int     `json:"min_height,omitempty"`
	SimilarityThreshold *float64 `json:"similarity_threshold,omitempty"`
}

// DiffResponse is the body of a successful POST /v1/diff.
type DiffResponse struct {
	Patches  []patch.Patch `json:"patches"`
	Duration string        `json:"duration"`
}

// PublishRequest is the body of POST /v1/publish.
type PublishRequest struct {
	Doc  string `json:"doc,omitempty"`
	HTML string `json:"html"`
}

// PublishResponse is the body of a successful POST /v1/publish.
type PublishResponse struct {
	Seq         uint64 `json:"seq"`
	Patches     int    `json:"patches"`
	Subscribers int    `json:"subscribers"`
	Initial     bool   `json:"initial,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	var req DiffRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.metrics.diffsTotal.WithLabelValues("http", "bad_request").Inc()
		return
	}
	if req.Old == "" || req.New == "" {
		s.writeError(w, http.StatusBadRequest, "old and new documents are required")
		s.metrics.diffsTotal.WithLabelValues("http", "bad_request").Inc()
		return
	}

	opts := []treediff.Option{}
	if req.MinHeight != nil {
		opts = append(opts, treediff.WithMinHeight(*req.MinHeight))
	}
	if req.SimilarityThreshold != nil {
		opts = append(opts, treediff.WithSimilarityThreshold(*req.SimilarityThreshold))
	}

	start := time.Now()
	patches, err := treediff.Diff(r.Context(), strings.NewReader(req.Old), strings.NewReader(req.New), opts...)
	elapsed := time.Since(start)

	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		s.metrics.diffsTotal.WithLabelValues("http", "error").Inc()
		return
	}

	s.recordDiff("http", elapsed, len(patches))
	s.observeDocuments(req.Old, req.New)

	if patches == nil {
		patches = []patch.Patch{}
	}
	s.writeJSON(w, http.StatusOK, DiffResponse{
		Patches:  patches,
		Duration: elapsed.String(),
	})
}

func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	var req PublishRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.metrics.diffsTotal.WithLabelValues("publish", "bad_request").Inc()
		return
	}
	if req.HTML == "" {
		s.writeError(w, http.StatusBadRequest, "html is required")
		s.metrics.diffsTotal.WithLabelValues("publish", "bad_request").Inc()
		return
	}
	docName := req.Doc
	if docName == "" {
		docName = defaultDocName
	}

	start := time.Now()
	res, err := s.hub.publish(r.Context(), docName, req.HTML)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
		s.metrics.diffsTotal.WithLabelValues("publish", "error").Inc()
		return
	}

	if !res.Initial {
		s.recordDiff("publish", time.Since(start), len(res.Patches))
	}
	s.logger.Info("document published",
		"doc", docName,
		"seq", res.Seq,
		"patches", len(res.Patches),
		"subscribers", res.Subscribers)

	s.writeJSON(w, http.StatusOK, PublishResponse{
		Seq:         res.Seq,
		Patches:     len(res.Patches),
		Subscribers: res.Subscribers,
		Initial:     res.Initial,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

func (s *Server) recordDiff(source string, elapsed time.Duration, patches int) {
	s.metrics.diffsTotal.WithLabelValues(source, "ok").Inc()
	s.metrics.diffDuration.WithLabelValues(source).Observe(elapsed.Seconds())
	s.metrics.patchCount.Observe(float64(patches))
}

// observeDocuments records node counts and the match ratio. Parsing a
// second time costs little next to the diff itself and keeps the
// handler path free of pipeline internals.
func (s *Server) observeDocuments(oldDoc, newDoc string) {
	treeA, err := htmltree.BuildString(oldDoc)
	if err != nil {
		return
	}
	treeB, err := htmltree.BuildString(newDoc)
	if err != nil {
		return
	}
	s.metrics.documentNodes.Observe(float64(treeA.Len()))
	s.metrics.documentNodes.Observe(float64(treeB.Len()))

	m := match.Compute(treeA, treeB, match.DefaultConfig())
	if treeA.Len() > 0 {
		s.metrics.matchRatio.Observe(float64(m.Len()) / float64(treeA.Len()))
	}
}

func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxDocumentSize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return err
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("write response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	if status >= 500 {
		s.logger.Error("request failed", "status", status, "error", msg)
	} else {
		s.logger.Debug("request rejected", "status", status, "error", msg)
	}
	s.writeJSON(w, status, errorResponse{Error: msg})
}
