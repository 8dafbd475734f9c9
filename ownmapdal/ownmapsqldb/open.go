package ownmapsqldb

import (
	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/simon04/OpenCartonaut/ownmapdal"
	_ "modernc.org/sqlite"
)

// OpenWorkspaceStore opens a "postgresql://" or "sqlite://" workspace database.
func OpenWorkspaceStore(connURL ownmapdal.DBFileConnectionURL) (*WorkspaceStore, errorsx.Error) {
	var db *sqlx.DB
	var err error

	switch connURL.Type {
	case ownmapdal.DBFileTypePostgresql:
		db, err = sqlx.Open("postgres", "postgresql://"+connURL.ConnectionPath)
	case ownmapdal.DBFileTypeSqlite:
		db, err = sqlx.Open("sqlite", connURL.ConnectionPath)
		if err == nil {
			// sqlite allows a single writer
			db.SetMaxOpenConns(1)
		}
	default:
		return nil, errorsx.Errorf("unsupported workspace database type: %q", connURL.Type)
	}
	if err != nil {
		return nil, errorsx.Wrap(err, "type", connURL.Type)
	}

	store, err := NewWorkspaceStore(db)
	if err != nil {
		db.Close()
		return nil, errorsx.Wrap(err, "type", connURL.Type)
	}

	return store, nil
}
