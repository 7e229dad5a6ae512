package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/woozymasta/dragmap/internal/catalog"
	"github.com/woozymasta/dragmap/internal/config"

	"github.com/chai2010/webp"
	"github.com/gorilla/websocket"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalog = `{"type":"FeatureCollection","features":[
 {"type":"Feature","id":"SQ","properties":{"name":"Square"},
  "geometry":{"type":"Polygon","coordinates":[[[0,0],[0,2],[2,2],[2,0],[0,0]]]}},
 {"type":"Feature","id":"TRI","properties":{"admin":"Triangle"},
  "geometry":{"type":"MultiPolygon","coordinates":[[[[10,10],[10,20],[20,10],[10,10]]]]}}
]}`

func newTestServer(t *testing.T, drag config.Drag) *httptest.Server {
	t.Helper()

	cat, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)

	cfg := &config.Config{PreviewDir: t.TempDir(), PreviewSize: 32, Drag: drag}
	cfg.Normalize()

	srv := httptest.NewServer(NewServerContext(cfg, cat).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHandleFeatures(t *testing.T) {
	srv := newTestServer(t, config.Drag{})

	resp, body := get(t, srv.URL+"/api/features")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/geo+json", resp.Header.Get("Content-Type"))

	fc, err := geojson.UnmarshalFeatureCollection(body)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "SQ", fc.Features[0].ID)
	assert.Equal(t, "Triangle", fc.Features[1].Properties["name"])
}

func TestHandleFeature(t *testing.T) {
	srv := newTestServer(t, config.Drag{})

	tests := []struct {
		name   string
		query  string
		status int
		first  orb.Point
	}{
		{"Plain", "", http.StatusOK, orb.Point{0, 0}},
		{"Displaced", "?from=0,0&to=1,1", http.StatusOK, orb.Point{1, 1}},
		{"Snapped", "?from=0,0&to=1,1&snap=1", http.StatusOK, orb.Point{1, 0}},
		{"BadFrom", "?from=zero&to=1,1", http.StatusBadRequest, orb.Point{}},
		{"BadSnap", "?from=0,0&to=1,1&snap=maybe", http.StatusBadRequest, orb.Point{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, srv.URL+"/api/features/SQ"+tt.query)
			require.Equal(t, tt.status, resp.StatusCode)
			if tt.status != http.StatusOK {
				return
			}

			f, err := geojson.UnmarshalFeature(body)
			require.NoError(t, err)
			assert.Equal(t, "Square", f.Properties["name"])
			assert.Equal(t, tt.first, f.Geometry.(orb.Polygon)[0][0])
		})
	}

	resp, _ := get(t, srv.URL+"/api/features/NOPE")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/api/features/SQ/other")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleFeatureScaled(t *testing.T) {
	srv := newTestServer(t, config.Drag{Scaling: true})

	_, body := get(t, srv.URL+"/api/features/SQ?from=0,0&to=60,0")
	f, err := geojson.UnmarshalFeature(body)
	require.NoError(t, err)

	ring := f.Geometry.(orb.Polygon)[0]
	assert.InDelta(t, 4.0, ring[2][0], 1e-9)
	assert.InDelta(t, 62.0, ring[2][1], 1e-9)
}

func TestHandlePreview(t *testing.T) {
	srv := newTestServer(t, config.Drag{})

	for _, q := range []string{"", "?from=0,0&to=5,5"} {
		resp, body := get(t, srv.URL+"/api/features/TRI/preview.webp"+q)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "image/webp", resp.Header.Get("Content-Type"))

		cfg, err := webp.DecodeConfig(bytes.NewReader(body))
		require.NoError(t, err)
		assert.Equal(t, 32, cfg.Width)
	}
}

func TestHandlePreviewCached(t *testing.T) {
	cat, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)

	cfg := &config.Config{PreviewDir: t.TempDir()}
	cfg.Normalize()
	require.NoError(t, os.WriteFile(filepath.Join(cfg.PreviewDir, "SQ.webp"), []byte("cached"), 0644))

	srv := httptest.NewServer(NewServerContext(cfg, cat).Routes())
	defer srv.Close()

	resp, body := get(t, srv.URL+"/api/features/SQ/preview.webp")
	assert.Equal(t, "cached", string(body))
	assert.NotEmpty(t, resp.Header.Get("ETag"))

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/features/SQ/preview.webp", nil)
	require.NoError(t, err)
	req.Header.Set("If-None-Match", resp.Header.Get("ETag"))
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp2.Body.Close()
	assert.Equal(t, http.StatusNotModified, resp2.StatusCode)
}

func TestHandleConfig(t *testing.T) {
	srv := newTestServer(t, config.Drag{Scaling: true, SnapToLatitude: true})

	_, body := get(t, srv.URL+"/api/config")

	var got struct {
		Tiles string `json:"tiles"`
		Drag  struct {
			Scaling        bool    `json:"scaling"`
			SnapToLatitude bool    `json:"snap_to_latitude"`
			MaxLatitude    float64 `json:"max_latitude"`
		} `json:"drag"`
		Catalog string `json:"catalog"`
	}
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, config.DefaultTiles, got.Tiles)
	assert.True(t, got.Drag.Scaling)
	assert.True(t, got.Drag.SnapToLatitude)
	assert.Equal(t, 85.0, got.Drag.MaxLatitude)
	assert.Empty(t, got.Catalog)
}

func TestHandleIndexAndFavicon(t *testing.T) {
	srv := newTestServer(t, config.Drag{})

	resp, body := get(t, srv.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/html"))
	assert.Contains(t, string(body), `id="map"`)
	// pointer events only go out while the floating copy is held
	assert.NotContains(t, string(body), `map.on('mouseup'`)
	assert.Contains(t, string(body), `if (pressed) send({ type: 'move'`)

	resp, _ = get(t, srv.URL+"/missing.js")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = get(t, srv.URL+"/favicon.ico")
	assert.Equal(t, "image/x-icon", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, body)
}

// --- WebSocket session ---

type received struct {
	Type     string          `json:"type"`
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Enabled  *bool           `json:"enabled"`
	Geometry json.RawMessage `json:"geometry"`
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, msg string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(msg)))
}

func expect(t *testing.T, conn *websocket.Conn, typ string) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var cmd received
	require.NoError(t, conn.ReadJSON(&cmd))
	require.Equal(t, typ, cmd.Type)
	return cmd
}

func firstPoint(t *testing.T, raw json.RawMessage) orb.Point {
	t.Helper()
	g, err := geojson.UnmarshalGeometry(raw)
	require.NoError(t, err)

	switch v := g.Geometry().(type) {
	case orb.Polygon:
		return v[0][0]
	case orb.MultiPolygon:
		return v[0][0][0]
	}
	t.Fatalf("unexpected geometry %T", g.Geometry())
	return orb.Point{}
}

func TestSessionDrag(t *testing.T) {
	srv := newTestServer(t, config.Drag{})
	conn := dial(t, srv)

	send(t, conn, `{"type":"pick","id":"SQ"}`)
	show := expect(t, conn, "show")
	assert.Equal(t, "SQ", show.ID)
	assert.Equal(t, "Square", show.Name)
	assert.Equal(t, orb.Point{0, 0}, firstPoint(t, show.Geometry))

	send(t, conn, `{"type":"down","lat":1,"lng":1}`)
	pan := expect(t, conn, "pan")
	require.NotNil(t, pan.Enabled)
	assert.False(t, *pan.Enabled)

	send(t, conn, `{"type":"move","lat":2,"lng":2}`)
	assert.Equal(t, orb.Point{1, 1}, firstPoint(t, expect(t, conn, "update").Geometry))

	send(t, conn, `{"type":"snap","value":true}`)
	send(t, conn, `{"type":"move","lat":2,"lng":2}`)
	assert.Equal(t, orb.Point{1, 0}, firstPoint(t, expect(t, conn, "update").Geometry))

	send(t, conn, `{"type":"up"}`)
	pan = expect(t, conn, "pan")
	assert.True(t, *pan.Enabled)

	send(t, conn, `{"type":"reset"}`)
	expect(t, conn, "remove")
	assert.Equal(t, "SQ", expect(t, conn, "restore").ID)
}

func TestSessionPickWhileDragging(t *testing.T) {
	srv := newTestServer(t, config.Drag{})
	conn := dial(t, srv)

	send(t, conn, `{"type":"pick","id":"SQ"}`)
	expect(t, conn, "show")
	send(t, conn, `{"type":"down","lat":1,"lng":1}`)
	expect(t, conn, "pan")

	send(t, conn, `{"type":"pick","id":"TRI"}`)
	assert.True(t, *expect(t, conn, "pan").Enabled)
	expect(t, conn, "remove")
	assert.Equal(t, "SQ", expect(t, conn, "restore").ID)

	show := expect(t, conn, "show")
	assert.Equal(t, "TRI", show.ID)
	assert.Equal(t, orb.Point{10, 10}, firstPoint(t, show.Geometry))
}

func TestSessionIgnoresBadInput(t *testing.T) {
	srv := newTestServer(t, config.Drag{})
	conn := dial(t, srv)

	send(t, conn, `not json`)
	send(t, conn, `{"type":"pick","id":"NOPE"}`)
	send(t, conn, `{"type":"wave"}`)
	send(t, conn, `{"type":"move","lat":5,"lng":5}`)
	send(t, conn, `{"type":"down","lat":50,"lng":50}`)

	// the session is still alive and in order
	send(t, conn, `{"type":"pick","id":"TRI"}`)
	assert.Equal(t, "TRI", expect(t, conn, "show").ID)
}
