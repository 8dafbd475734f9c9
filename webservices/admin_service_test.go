package webservices

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jamesrr39/goutil/gofs/mockfs"
	"github.com/simon04/OpenCartonaut/ownmapdal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdminService(t *testing.T) (*AdminService, *ownmapdal.FeatureStore) {
	t.Helper()
	fs := mockfs.NewMockFs()
	pathsConfig := ownmapdal.NewPathsConfig("/opencartonaut")
	require.NoError(t, pathsConfig.EnsurePaths(fs))

	featureStore := newTestFeatureStore(t)
	importQueue := ownmapdal.NewImportQueue(newTestLogger(), fs, pathsConfig, featureStore.Put)

	return NewAdminService(newTestLogger(), pathsConfig, featureStore, newTestStyleSet(t), importQueue, "api/admin"), featureStore
}

func doLocalRequest(handler http.Handler, req *http.Request) *httptest.ResponseRecorder {
	req.RemoteAddr = "127.0.0.1:50123"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestAdminService_get(t *testing.T) {
	as, _ := newTestAdminService(t)

	rec := doLocalRequest(as, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "gars: 2 features")
	assert.Contains(t, rec.Body.String(), "/opencartonaut/raw_data_files")
}

func TestAdminService_postDataFile(t *testing.T) {
	as, featureStore := newTestAdminService(t)

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("dataFile", "towns.geojson")
	require.NoError(t, err)
	_, err = part.Write([]byte(townsGeoJSON))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/dataFile", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := doLocalRequest(as, req)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	require.Eventually(t, func() bool {
		_, err := featureStore.Get("towns.geojson")
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	rec = doLocalRequest(as, httptest.NewRequest(http.MethodGet, "/importQueue", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var items []struct {
		RawDataFilePath string `json:"rawDataFilePath"`
		Status          string `json:"status"`
	}
	decodeJSON(t, rec, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "/opencartonaut/raw_data_files/towns.geojson", items[0].RawDataFilePath)
}

func TestAdminService_postDataFile_unsupported(t *testing.T) {
	as, _ := newTestAdminService(t)

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("dataFile", "notes.txt")
	require.NoError(t, err)
	_, err = part.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/dataFile", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	rec := doLocalRequest(as, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminService_deleteDataset(t *testing.T) {
	as, featureStore := newTestAdminService(t)

	rec := doLocalRequest(as, httptest.NewRequest(http.MethodDelete, "/datasets/gars", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, featureStore.List())

	rec = doLocalRequest(as, httptest.NewRequest(http.MethodDelete, "/datasets/gars", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLocalhostOnlyMiddleware(t *testing.T) {
	handler := LocalhostOnlyMiddleware(newTestLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		remoteAddr string
		wantStatus int
	}{
		{"127.0.0.1:1234", http.StatusOK},
		{"[::1]:1234", http.StatusOK},
		{"192.0.2.1:1234", http.StatusForbidden},
		{"[2001:db8::1]:1234", http.StatusForbidden},
		{"not an address", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.remoteAddr, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
