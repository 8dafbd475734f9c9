package ownmapdal

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
)

var (
	ErrNoDataAvailable = errors.New("no data available")
)

type DBFileType string

const (
	DBFileTypePostgresql DBFileType = "postgresql"
	DBFileTypeSqlite     DBFileType = "sqlite"
)

type DBFileConnectionURL struct {
	Type           DBFileType
	ConnectionPath string
}

const ConnectionPathSeparator = "://"

func ParseDBConnFilePath(str string) (DBFileConnectionURL, errorsx.Error) {
	idx := strings.Index(str, ConnectionPathSeparator)
	if idx < 0 {
		return DBFileConnectionURL{}, errorsx.Errorf("couldn't find connection path separator %q in DB file path", ConnectionPathSeparator)
	}

	dbFileType := DBFileType(str[:idx])
	switch dbFileType {
	case DBFileTypePostgresql, DBFileTypeSqlite:
	default:
		return DBFileConnectionURL{}, errorsx.Errorf("unsupported database type %q", dbFileType)
	}

	return DBFileConnectionURL{
		Type:           dbFileType,
		ConnectionPath: str[idx+len(ConnectionPathSeparator):],
	}, nil
}

type DataFileType string

const (
	DataFileTypeOSMXML  DataFileType = "osm"
	DataFileTypePBF     DataFileType = "pbf"
	DataFileTypeGeoJSON DataFileType = "geojson"
)

func DataFileTypeFromPath(filePath string) (DataFileType, errorsx.Error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".osm", ".xml":
		return DataFileTypeOSMXML, nil
	case ".pbf":
		return DataFileTypePBF, nil
	case ".geojson", ".json":
		return DataFileTypeGeoJSON, nil
	}

	return "", errorsx.Errorf("unsupported data file type: %q", filePath)
}

// Suffix is the file extension used when storing a data file of this type.
func (t DataFileType) Suffix() string {
	switch t {
	case DataFileTypePBF:
		return ".osm.pbf"
	default:
		return "." + string(t)
	}
}
