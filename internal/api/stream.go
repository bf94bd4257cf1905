package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/paulmach/orb"

	"sightline/pkg/grid"
	"sightline/pkg/viewshed"
)

// StreamHandler streams a viewshed mask row by row over a websocket, so a
// client can render progress on large grids instead of waiting for the full
// result.
type StreamHandler struct {
	source             grid.Source
	defaultRefraction  bool
	defaultCoefficient float64

	upgrader websocket.Upgrader
}

// NewStreamHandler creates a new handler.
func NewStreamHandler(source grid.Source, defaultRefraction bool, defaultCoefficient float64) *StreamHandler {
	return &StreamHandler{
		source:             source,
		defaultRefraction:  defaultRefraction,
		defaultCoefficient: defaultCoefficient,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// streamRow is one message of the row stream.
type streamRow struct {
	Type  string `json:"type"` // "row" or "done"
	Row   int    `json:"row"`
	Cells []bool `json:"cells,omitempty"`

	Rows    int `json:"rows,omitempty"`
	Cols    int `json:"cols,omitempty"`
	Visible int `json:"visible,omitempty"`
}

// Handle handles GET /api/viewshed/stream. The client sends one
// ViewshedRequest message, then receives a "row" message per grid row in
// order, followed by a single "done" summary.
func (h *StreamHandler) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	var req ViewshedRequest
	if err := conn.ReadJSON(&req); err != nil {
		h.closeWithError(conn, "invalid request: "+err.Error())
		return
	}

	g, err := h.source.Grid()
	if err != nil {
		h.closeWithError(conn, "grid source failed")
		return
	}

	obsX, obsY := h.source.Projector().ToPlanar(orb.Point{req.Lon, req.Lat})
	vh := &ViewshedHandler{defaultRefraction: h.defaultRefraction, defaultCoefficient: h.defaultCoefficient}
	calc := viewshed.NewCalculator(vh.buildModel(req.Refraction, req.Coefficient), 1)

	visible := 0
	rows, cols := g.Dims()
	err = calc.MaskRows(g, obsX, obsY, req.EyeHeight, req.window(), func(row int, cells []bool) error {
		for _, v := range cells {
			if v {
				visible++
			}
		}
		return conn.WriteJSON(streamRow{Type: "row", Row: row, Cells: cells})
	})
	if err != nil {
		h.closeWithError(conn, err.Error())
		return
	}

	if err := conn.WriteJSON(streamRow{Type: "done", Rows: rows, Cols: cols, Visible: visible}); err != nil {
		slog.Debug("Failed to write stream summary", "error", err)
		return
	}
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *StreamHandler) closeWithError(conn *websocket.Conn, msg string) {
	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, msg))
}
