package ownmapsqldb

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jmoiron/sqlx"
	"github.com/maruel/natural"
	"github.com/simon04/OpenCartonaut/ownmapdal"
	"github.com/simon04/OpenCartonaut/styling"
)

var ErrWorkspaceNotFound = errors.New("workspace not found")

const workspacesSchema = `
CREATE TABLE IF NOT EXISTS workspaces (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	interpreter TEXT NOT NULL,
	overpass_query TEXT NOT NULL,
	mapcss TEXT NOT NULL,
	updated_at BIGINT NOT NULL -- unix milliseconds
)`

// Workspace is a saved editing session: where to query, what to query and how to style it.
type Workspace struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Interpreter string    `json:"interpreter"`
	Query       string    `json:"query"`
	MapCSS      string    `json:"mapcss"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewWorkspace returns an unsaved workspace with the default query and style.
func NewWorkspace(name string) *Workspace {
	return &Workspace{
		Name:        name,
		Interpreter: ownmapdal.DefaultOverpassInterpreterURL,
		Query:       ownmapdal.DefaultQuery,
		MapCSS:      styling.DefaultMapCSS,
	}
}

type workspaceRow struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Interpreter string `db:"interpreter"`
	Query       string `db:"overpass_query"`
	MapCSS      string `db:"mapcss"`
	UpdatedAt   int64  `db:"updated_at"`
}

func (r *workspaceRow) toWorkspace() *Workspace {
	return &Workspace{
		ID:          r.ID,
		Name:        r.Name,
		Interpreter: r.Interpreter,
		Query:       r.Query,
		MapCSS:      r.MapCSS,
		UpdatedAt:   time.UnixMilli(r.UpdatedAt).UTC(),
	}
}

type WorkspaceStore struct {
	db      *sqlx.DB
	nowFunc func() time.Time
}

// NewWorkspaceStore creates the schema, if needed, on an open database.
func NewWorkspaceStore(db *sqlx.DB) (*WorkspaceStore, errorsx.Error) {
	_, err := db.Exec(workspacesSchema)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return &WorkspaceStore{db, time.Now}, nil
}

func (s *WorkspaceStore) Close() errorsx.Error {
	return errorsx.Wrap(s.db.Close())
}

// Create saves a new workspace under a fresh ID.
func (s *WorkspaceStore) Create(ctx context.Context, workspace *Workspace) errorsx.Error {
	workspace.ID = uuid.New().String()
	return s.Save(ctx, workspace)
}

// Save inserts the workspace or replaces the stored one with the same ID.
func (s *WorkspaceStore) Save(ctx context.Context, workspace *Workspace) errorsx.Error {
	if workspace.ID == "" {
		return errorsx.Errorf("workspace has no ID")
	}

	workspace.UpdatedAt = s.nowFunc().UTC().Truncate(time.Millisecond)

	query := s.db.Rebind(`
		INSERT INTO workspaces (id, name, interpreter, overpass_query, mapcss, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			interpreter = excluded.interpreter,
			overpass_query = excluded.overpass_query,
			mapcss = excluded.mapcss,
			updated_at = excluded.updated_at`)

	_, err := s.db.ExecContext(
		ctx,
		query,
		workspace.ID,
		workspace.Name,
		workspace.Interpreter,
		workspace.Query,
		workspace.MapCSS,
		workspace.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return errorsx.Wrap(err, "id", workspace.ID)
	}

	return nil
}

func (s *WorkspaceStore) Get(ctx context.Context, id string) (*Workspace, errorsx.Error) {
	row := new(workspaceRow)
	err := s.db.GetContext(ctx, row, s.db.Rebind(`
		SELECT id, name, interpreter, overpass_query, mapcss, updated_at
		FROM workspaces
		WHERE id = ?`), id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errorsx.Wrap(ErrWorkspaceNotFound, "id", id)
		}
		return nil, errorsx.Wrap(err, "id", id)
	}

	return row.toWorkspace(), nil
}

// List returns all workspaces, in natural name order.
func (s *WorkspaceStore) List(ctx context.Context) ([]*Workspace, errorsx.Error) {
	var rows []*workspaceRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, interpreter, overpass_query, mapcss, updated_at
		FROM workspaces`)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	workspaces := make([]*Workspace, 0, len(rows))
	for _, row := range rows {
		workspaces = append(workspaces, row.toWorkspace())
	}

	sort.Slice(workspaces, func(i, j int) bool {
		if workspaces[i].Name == workspaces[j].Name {
			return workspaces[i].ID < workspaces[j].ID
		}
		return natural.Less(workspaces[i].Name, workspaces[j].Name)
	})

	return workspaces, nil
}

func (s *WorkspaceStore) Delete(ctx context.Context, id string) errorsx.Error {
	result, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM workspaces WHERE id = ?`), id)
	if err != nil {
		return errorsx.Wrap(err, "id", id)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return errorsx.Wrap(err, "id", id)
	}

	if affected == 0 {
		return errorsx.Wrap(ErrWorkspaceNotFound, "id", id)
	}

	return nil
}
