package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/woozymasta/dragmap/internal/geo"
	"github.com/woozymasta/dragmap/internal/session"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
}

// clientMessage is a pointer or control event sent by the browser.
type clientMessage struct {
	Type  string  `json:"type"`
	ID    string  `json:"id,omitempty"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Value bool    `json:"value"`
}

// command is a rendering or panning instruction sent to the browser.
type command struct {
	Geometry *geojson.Geometry `json:"geometry,omitempty"`
	Enabled  *bool             `json:"enabled,omitempty"`
	Type     string            `json:"type"`
	ID       string            `json:"id,omitempty"`
	Name     string            `json:"name,omitempty"`
}

// wsClient is both the rendering sink and the panning control of one browser.
type wsClient struct {
	conn   *websocket.Conn
	logger zerolog.Logger
	err    error
}

func (c *wsClient) send(cmd command) {
	if c.err != nil {
		return
	}

	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(cmd); err != nil {
		c.err = err
		c.logger.Debug().Err(err).Str("command", cmd.Type).Msg("Failed to send command")
	}
}

func (c *wsClient) ShowFloating(f session.Feature) {
	c.send(command{Type: "show", ID: f.ID, Name: f.Name, Geometry: geojson.NewGeometry(f.Geometry.Orb())})
}

func (c *wsClient) UpdateFloating(g geo.Geometry) {
	c.send(command{Type: "update", Geometry: geojson.NewGeometry(g.Orb())})
}

func (c *wsClient) RemoveFloating() { c.send(command{Type: "remove"}) }

func (c *wsClient) RestoreOriginal(id string) { c.send(command{Type: "restore", ID: id}) }

func (c *wsClient) Suspend() { c.pan(false) }

func (c *wsClient) Resume() { c.pan(true) }

func (c *wsClient) pan(enabled bool) {
	c.send(command{Type: "pan", Enabled: &enabled})
}

// HandleSession upgrades the request and runs one drag session until the client leaves.
// Messages are processed strictly in arrival order on this goroutine.
func (s *ServerContext) HandleSession(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("ip", r.RemoteAddr).Msg("Failed to upgrade connection")
		return
	}
	defer func() { _ = conn.Close() }()

	client := &wsClient{
		conn:   conn,
		logger: log.With().Str("session", uuid.NewString()).Logger(),
	}
	ctrl := session.New(client, client, s.SessionOptions())

	client.logger.Info().Str("ip", r.RemoteAddr).Msg("Session opened")

	// leave panning balanced whatever ends the session
	defer ctrl.Reset()

	for client.err == nil {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				client.logger.Warn().Err(err).Msg("Session closed unexpectedly")
			}
			break
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			client.logger.Debug().Err(err).Msg("Malformed message ignored")
			continue
		}

		s.dispatch(ctrl, client, msg)
	}

	client.logger.Info().Msg("Session closed")
}

func (s *ServerContext) dispatch(ctrl *session.Controller, client *wsClient, msg clientMessage) {
	switch msg.Type {
	case "pick":
		f, err := s.Catalog.Get(msg.ID)
		if err != nil {
			client.logger.Debug().Err(err).Msg("Pick ignored")
			return
		}
		ctrl.Pick(session.Feature{ID: f.ID, Name: f.Name, Geometry: f.Geometry})
	case "down":
		ctrl.PointerDown(geo.LatLng{Lat: msg.Lat, Lng: msg.Lng})
	case "move":
		ctrl.PointerMove(geo.LatLng{Lat: msg.Lat, Lng: msg.Lng})
	case "up":
		ctrl.PointerUp()
	case "reset":
		ctrl.Reset()
	case "snap":
		ctrl.SetSnapToLatitude(msg.Value)
	default:
		client.logger.Debug().Str("type", msg.Type).Msg("Unknown message ignored")
	}
}
