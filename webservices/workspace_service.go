package webservices

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/logpkg"
	"github.com/simon04/OpenCartonaut/ownmapdal/ownmapsqldb"
)

const maxWorkspaceBodyBytes = 8 << 20

type WorkspaceService struct {
	logger *logpkg.Logger
	store  *ownmapsqldb.WorkspaceStore
	chi.Router
}

func NewWorkspaceService(logger *logpkg.Logger, store *ownmapsqldb.WorkspaceStore) *WorkspaceService {
	ws := &WorkspaceService{logger, store, chi.NewRouter()}

	ws.Get("/", ws.handleList)
	ws.Post("/", ws.handleCreate)
	ws.Get("/{workspaceID}", ws.handleGet)
	ws.Put("/{workspaceID}", ws.handlePut)
	ws.Delete("/{workspaceID}", ws.handleDelete)

	return ws
}

func (ws *WorkspaceService) writeError(w http.ResponseWriter, err errorsx.Error) {
	if errorsx.Cause(err) == ownmapsqldb.ErrWorkspaceNotFound {
		errorsx.HTTPJSONError(w, ws.logger, err, http.StatusNotFound)
		return
	}
	errorsx.HTTPJSONError(w, ws.logger, err, http.StatusInternalServerError)
}

func (ws *WorkspaceService) handleList(w http.ResponseWriter, r *http.Request) {
	workspaces, err := ws.store.List(r.Context())
	if err != nil {
		ws.writeError(w, err)
		return
	}

	render.JSON(w, r, workspaces)
}

type workspaceRequestType struct {
	Name        string  `json:"name"`
	Interpreter *string `json:"interpreter"`
	Query       *string `json:"query"`
	MapCSS      *string `json:"mapcss"`
}

// applyTo overwrites the fields given in the request.
func (req *workspaceRequestType) applyTo(workspace *ownmapsqldb.Workspace) {
	if req.Name != "" {
		workspace.Name = req.Name
	}
	if req.Interpreter != nil {
		workspace.Interpreter = *req.Interpreter
	}
	if req.Query != nil {
		workspace.Query = *req.Query
	}
	if req.MapCSS != nil {
		workspace.MapCSS = *req.MapCSS
	}
}

func decodeWorkspaceRequest(w http.ResponseWriter, r *http.Request) (*workspaceRequestType, errorsx.Error) {
	req := new(workspaceRequestType)
	err := render.DecodeJSON(http.MaxBytesReader(w, r.Body, maxWorkspaceBodyBytes), req)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}
	req.Name = strings.TrimSpace(req.Name)
	return req, nil
}

func (ws *WorkspaceService) handleCreate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeWorkspaceRequest(w, r)
	if err != nil {
		errorsx.HTTPJSONError(w, ws.logger, err, http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		errorsx.HTTPJSONError(w, ws.logger, errorsx.Errorf("a workspace needs a name"), http.StatusBadRequest)
		return
	}

	workspace := ownmapsqldb.NewWorkspace(req.Name)
	req.applyTo(workspace)

	err = ws.store.Create(r.Context(), workspace)
	if err != nil {
		ws.writeError(w, err)
		return
	}

	ws.logger.Info("created workspace %q (%s)", workspace.Name, workspace.ID)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, workspace)
}

func (ws *WorkspaceService) handleGet(w http.ResponseWriter, r *http.Request) {
	workspace, err := ws.store.Get(r.Context(), chi.URLParam(r, "workspaceID"))
	if err != nil {
		ws.writeError(w, err)
		return
	}

	render.JSON(w, r, workspace)
}

func (ws *WorkspaceService) handlePut(w http.ResponseWriter, r *http.Request) {
	req, err := decodeWorkspaceRequest(w, r)
	if err != nil {
		errorsx.HTTPJSONError(w, ws.logger, err, http.StatusBadRequest)
		return
	}

	workspace, err := ws.store.Get(r.Context(), chi.URLParam(r, "workspaceID"))
	if err != nil {
		ws.writeError(w, err)
		return
	}

	req.applyTo(workspace)

	err = ws.store.Save(r.Context(), workspace)
	if err != nil {
		ws.writeError(w, err)
		return
	}

	render.JSON(w, r, workspace)
}

func (ws *WorkspaceService) handleDelete(w http.ResponseWriter, r *http.Request) {
	err := ws.store.Delete(r.Context(), chi.URLParam(r, "workspaceID"))
	if err != nil {
		ws.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
