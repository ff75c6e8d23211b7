package server

import (
	"net/http"
	"reflect"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/layerstack/pkg/buildinfo"
	errs "github.com/matzehuels/layerstack/pkg/errors"
	"github.com/matzehuels/layerstack/pkg/groups"
	pkgio "github.com/matzehuels/layerstack/pkg/io"
	"github.com/matzehuels/layerstack/pkg/render"
	"github.com/matzehuels/layerstack/pkg/stack"
)

// =============================================================================
// Request and response bodies
// =============================================================================

type addGroupRequest struct {
	Layers []stack.Layer `json:"layers"`
	Before string        `json:"before"`
}

type addLayerRequest struct {
	Layer  stack.Layer `json:"layer"`
	Before string      `json:"before"`
}

type moveGroupRequest struct {
	Before string `json:"before"`
}

type assignRequest struct {
	Group string `json:"group"`
}

type mutationResponse struct {
	Changed  bool            `json:"changed"`
	Document *pkgio.Document `json:"document"`
}

type groupsResponse struct {
	Groups     []string     `json:"groups"`
	Runs       []groups.Run `json:"runs"`
	Fragmented []string     `json:"fragmented"`
}

type groupResponse struct {
	Group      string   `json:"group"`
	FirstIndex int      `json:"first_index"`
	LastIndex  int      `json:"last_index"`
	FirstID    string   `json:"first_id"`
	LastID     string   `json:"last_id"`
	Layers     []string `json:"layers"`
	Contiguous bool     `json:"contiguous"`
}

// =============================================================================
// Documents
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.Get()
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": info.Version, "commit": info.Commit})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"styles": names})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("ETag", doc.Revision)
	writeJSON(w, http.StatusOK, doc)
}

// handlePutDocument replaces a document. A revision in the body or an
// If-Match header makes the write conditional.
func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	var doc pkgio.Document
	if err := decodeBody(w, r, &doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	if match := r.Header.Get("If-Match"); match != "" {
		doc.Revision = match
	}
	for i := range doc.Layers {
		if err := fillLayerID(&doc.Layers[i]); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Put(r.Context(), chi.URLParam(r, "name"), &doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("ETag", doc.Revision)
	writeJSON(w, http.StatusOK, &doc)
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Group queries
// =============================================================================

// view loads a document and builds a manager over it for read-only queries.
func (s *Server) view(r *http.Request) (*pkgio.Document, *groups.Manager, error) {
	doc, err := s.store.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		return nil, nil, err
	}
	st, err := doc.Stack()
	if err != nil {
		return nil, nil, err
	}
	return doc, groups.New(st, s.logger), nil
}

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	_, m, err := s.view(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := groupsResponse{
		Groups:     m.Groups(),
		Runs:       m.Runs(),
		Fragmented: m.Fragmented(),
	}
	if resp.Groups == nil {
		resp.Groups = []string{}
	}
	if resp.Runs == nil {
		resp.Runs = []groups.Run{}
	}
	if resp.Fragmented == nil {
		resp.Fragmented = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	_, m, err := s.view(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g := chi.URLParam(r, "group")
	if !m.Exists(g) {
		s.writeError(w, r, errs.New(errs.ErrCodeNotFound, "group %q not found", g))
		return
	}
	first, _ := m.FirstID(g)
	last, _ := m.LastID(g)
	writeJSON(w, http.StatusOK, groupResponse{
		Group:      g,
		FirstIndex: m.FirstIndex(g),
		LastIndex:  m.LastIndex(g),
		FirstID:    first,
		LastID:     last,
		Layers:     m.Layers(g),
		Contiguous: m.Contiguous(g),
	})
}

// =============================================================================
// Group mutations
// =============================================================================

// mutate applies fn to the named document and saves it when the layer
// sequence or any layer changed. A failed operation is never saved, so a
// partially applied batch does not reach the store.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(*groups.Manager) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := r.Context()
	name := chi.URLParam(r, "name")
	doc, err := s.store.Get(ctx, name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if match := r.Header.Get("If-Match"); match != "" && match != doc.Revision {
		s.writeError(w, r, errs.New(errs.ErrCodeConflict, "document %q is at revision %q", name, doc.Revision))
		return
	}

	st, err := doc.Stack()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := fn(groups.New(st, s.logger)); err != nil {
		s.writeError(w, r, err)
		return
	}

	after := st.Snapshot()
	changed := !reflect.DeepEqual(doc.Layers, after)
	if changed {
		doc.Layers = after
		if err := s.store.Put(ctx, name, doc); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	w.Header().Set("ETag", doc.Revision)
	writeJSON(w, http.StatusOK, mutationResponse{Changed: changed, Document: doc})
}

func (s *Server) handleAddGroup(w http.ResponseWriter, r *http.Request) {
	g := chi.URLParam(r, "group")
	var req addGroupRequest
	if err := s.decodeGroupRequest(w, r, g, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	for i := range req.Layers {
		if err := fillLayerID(&req.Layers[i]); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	s.mutate(w, r, func(m *groups.Manager) error {
		return m.AddGroup(g, req.Layers, req.Before)
	})
}

func (s *Server) handleAddLayerToGroup(w http.ResponseWriter, r *http.Request) {
	g := chi.URLParam(r, "group")
	var req addLayerRequest
	if err := s.decodeGroupRequest(w, r, g, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := fillLayerID(&req.Layer); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, func(m *groups.Manager) error {
		return m.AddLayerToGroup(g, req.Layer, req.Before)
	})
}

func (s *Server) handleMoveGroup(w http.ResponseWriter, r *http.Request) {
	g := chi.URLParam(r, "group")
	var req moveGroupRequest
	if err := s.decodeGroupRequest(w, r, g, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, func(m *groups.Manager) error {
		return m.MoveGroup(g, req.Before)
	})
}

func (s *Server) handleRemoveGroup(w http.ResponseWriter, r *http.Request) {
	g := chi.URLParam(r, "group")
	s.mutate(w, r, func(m *groups.Manager) error {
		return m.RemoveGroup(g)
	})
}

func (s *Server) handleMoveLayerToGroup(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := errs.ValidateGroupID(req.Group); err != nil {
		s.writeError(w, r, err)
		return
	}
	layer := chi.URLParam(r, "layer")
	s.mutate(w, r, func(m *groups.Manager) error {
		if _, ok := m.Host().Layer(layer); !ok {
			return errs.Wrap(errs.ErrCodeLayerNotFound, stack.ErrLayerNotFound, "layer %q", layer)
		}
		m.MoveLayerToGroup(req.Group, layer)
		return nil
	})
}

func (s *Server) handleRemoveLayerFromGroup(w http.ResponseWriter, r *http.Request) {
	layer, g := chi.URLParam(r, "layer"), chi.URLParam(r, "group")
	s.mutate(w, r, func(m *groups.Manager) error {
		if _, ok := m.Host().Layer(layer); !ok {
			return errs.Wrap(errs.ErrCodeLayerNotFound, stack.ErrLayerNotFound, "layer %q", layer)
		}
		m.RemoveLayerFromGroup(g, layer)
		return nil
	})
}

// decodeGroupRequest validates the group path parameter and decodes the body.
func (s *Server) decodeGroupRequest(w http.ResponseWriter, r *http.Request, group string, v any) error {
	if err := errs.ValidateGroupID(group); err != nil {
		return err
	}
	return decodeBody(w, r, v)
}

// fillLayerID assigns a random ID to a layer without one and validates the rest.
func fillLayerID(l *stack.Layer) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
		return nil
	}
	return errs.ValidateLayerID(l.ID)
}

// =============================================================================
// Rendering
// =============================================================================

func (s *Server) handleRenderDOT(w http.ResponseWriter, r *http.Request) {
	doc, m, err := s.view(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(render.ToDOT(m.Host().Layers(), render.Options{Title: doc.Name})))
}

func (s *Server) handleRenderSVG(w http.ResponseWriter, r *http.Request) {
	doc, m, err := s.view(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	svg, err := render.RenderSVG(r.Context(), render.ToDOT(m.Host().Layers(), render.Options{Title: doc.Name}))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}
