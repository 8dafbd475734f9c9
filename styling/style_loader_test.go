package styling

import (
	"testing"

	"github.com/jamesrr39/goutil/gofs/mockfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestLoadStylesFromDir(t *testing.T) {
	fs := mockfs.NewMockFs()
	require.NoError(t, fs.MkdirAll("/styles/archive", 0755))
	require.NoError(t, fs.WriteFile("/styles/Topo Map.mapcss", []byte("way[highway] { width: 2; color: #888; }"), 0644))
	require.NoError(t, fs.WriteFile("/styles/rail.MAPCSS", []byte("way[railway=rail] { width: 1; dashes: 4,2; }"), 0644))
	require.NoError(t, fs.WriteFile("/styles/broken.mapcss", []byte("way { width: 1; }\nfoo { width: 2; }"), 0644))
	require.NoError(t, fs.WriteFile("/styles/also-broken.mapcss", []byte("way > node { width: 1; }"), 0644))
	require.NoError(t, fs.WriteFile("/styles/readme.txt", []byte("not a style"), 0644))

	styles, err := LoadStylesFromDir(fs, "/styles")
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)

	var ids []string
	for _, style := range styles {
		ids = append(ids, style.GetStyleID())
	}
	assert.ElementsMatch(t, []string{"topo-map", "rail"}, ids)
}

func TestLoadStylesFromDir_missingDir(t *testing.T) {
	styles, err := LoadStylesFromDir(mockfs.NewMockFs(), "/nowhere")
	require.NoError(t, err)
	assert.Empty(t, styles)
}

func TestLoadStyleFile(t *testing.T) {
	fs := mockfs.NewMockFs()
	require.NoError(t, fs.WriteFile("/styles/forest.mapcss", []byte("area[landuse=forest] { fill-color: #add19e; }"), 0644))

	style, err := LoadStyleFile(fs, "/styles/forest.mapcss")
	require.NoError(t, err)
	assert.Equal(t, "forest", style.GetStyleID())
	assert.Len(t, style.Rules(), 1)

	_, err = LoadStyleFile(fs, "/styles/missing.mapcss")
	require.Error(t, err)
}

func TestIsStyleFile(t *testing.T) {
	assert.True(t, IsStyleFile("a.mapcss"))
	assert.True(t, IsStyleFile("/x/B.MapCSS"))
	assert.False(t, IsStyleFile("a.css"))
	assert.False(t, IsStyleFile("mapcss"))
}
