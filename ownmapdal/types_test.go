package ownmapdal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDBConnFilePath(t *testing.T) {
	type args struct {
		str string
	}
	tests := []struct {
		name    string
		args    args
		want    DBFileConnectionURL
		wantErr bool
	}{
		{
			name: "postgresql",
			args: args{"postgresql://localhost"},
			want: DBFileConnectionURL{
				Type:           "postgresql",
				ConnectionPath: "localhost",
			},
		}, {
			name: "sqlite",
			args: args{"sqlite:///tmp/workspaces.db"},
			want: DBFileConnectionURL{
				Type:           DBFileTypeSqlite,
				ConnectionPath: "/tmp/workspaces.db",
			},
		}, {
			name:    "no separator",
			args:    args{"/tmp/workspaces.db"},
			wantErr: true,
		}, {
			name:    "unknown type",
			args:    args{"mysql://localhost"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDBConnFilePath(tt.args.str)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDataFileTypeFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    DataFileType
		wantErr bool
	}{
		{path: "/data/town.osm", want: DataFileTypeOSMXML},
		{path: "austria-latest.osm.pbf", want: DataFileTypePBF},
		{path: "points.GeoJSON", want: DataFileTypeGeoJSON},
		{path: "points.json", want: DataFileTypeGeoJSON},
		{path: "README.md", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := DataFileTypeFromPath(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
