package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	shp "github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landlords/internal/dataset"
	"landlords/internal/geo"
	"landlords/internal/owners"
	"landlords/internal/types"
)

func newTestServer() *Server {
	ds := dataset.New([]types.Property{
		{RawAddress: "1 A St, Apt 2, Boston, MA", OwnerName: "X", OwnerAddress: "100 Box Rd", Geometry: &shp.Point{X: -71.06, Y: 42.35}},
		{RawAddress: "2 B St, Boston, MA", OwnerName: "X", OwnerAddress: "100 Box Rd", Geometry: &shp.Point{X: -71.07, Y: 42.36}},
		{RawAddress: "3 C St, Boston, MA", OwnerName: "Y", OwnerAddress: "200 Box Rd"},
	})
	resolver := owners.NewResolver(dataset.NewStore(ds), slog.Default())
	return NewServer(resolver, geo.LonLat{}, slog.Default())
}

type mapResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Data    SearchResult `json:"data"`
}

func postMap(t *testing.T, h http.Handler, address string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"address": {address}}
	req := httptest.NewRequest(http.MethodPost, "/map", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestMapFound(t *testing.T) {
	h := newTestServer().Routes()

	rec := postMap(t, h, "1 A St, #2, Boston, Massachusetts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body mapResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "X", body.Data.OwnerName)
	assert.Equal(t, "1 A St, Unit 2, Boston, MA", body.Data.Query)
	assert.Equal(t, []string{"2 B St, Boston, MA"}, body.Data.Addresses)
	require.Len(t, body.Data.Map.Markers, 1)
	assert.Equal(t, 42.36, body.Data.Map.Markers[0].Lat)
	assert.Equal(t, 13, body.Data.Map.Zoom)
}

func TestMapNoOthers(t *testing.T) {
	rec := postMap(t, newTestServer().Routes(), "3 C St, Boston, MA")
	require.Equal(t, http.StatusOK, rec.Code)

	var body mapResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Message, "No other addresses")
	assert.Empty(t, body.Data.Addresses)
	assert.Equal(t, geo.Boston, body.Data.Map.Center)
}

func TestMapNotFound(t *testing.T) {
	rec := postMap(t, newTestServer().Routes(), "99 Z St")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"error"`)
	assert.Contains(t, rec.Body.String(), "no address found")
}

func TestMapRequiresAddress(t *testing.T) {
	rec := postMap(t, newTestServer().Routes(), "   ")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddresses(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/addresses", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{
		"1 A St, Unit 2, Boston, MA",
		"2 B St, Boston, MA",
		"3 C St, Boston, MA",
	}, body.Data)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"records":3`)
}

func TestMapWrongMethod(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/map", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
