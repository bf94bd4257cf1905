package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialStream(t *testing.T, h *StreamHandler) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(h.Handle))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestStreamHandlerRows(t *testing.T) {
	h := NewStreamHandler(testSource(), true, 1.2055)
	conn := dialStream(t, h)

	require.NoError(t, conn.WriteJSON(ViewshedRequest{
		Lat:       51.6845,
		Lon:       14.4234,
		EyeHeight: 20,
	}))

	rows := 0
	visible := 0
	for {
		var msg streamRow
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == "done" {
			assert.Equal(t, 24, msg.Rows)
			assert.Equal(t, 24, msg.Cols)
			assert.Equal(t, visible, msg.Visible)
			break
		}
		require.Equal(t, "row", msg.Type)
		assert.Equal(t, rows, msg.Row, "rows arrive in order")
		require.Len(t, msg.Cells, 24)
		for _, v := range msg.Cells {
			if v {
				visible++
			}
		}
		rows++
	}
	assert.Equal(t, 24, rows)
	assert.Positive(t, visible)
}

func TestStreamHandlerBadRequest(t *testing.T) {
	h := NewStreamHandler(testSource(), true, 1.2055)
	conn := dialStream(t, h)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))

	var msg streamRow
	err := conn.ReadJSON(&msg)
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))
}
