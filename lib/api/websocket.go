package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsInterval = 2 * time.Second
	wsTimeout  = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(req *http.Request) bool {
		return true
	},
}

// @Summary	Open websocket for realtime status information
// @Router		/api/ws [get]
// @Param		Upgrade	header	string	true	"websocket"
// @Tags		base
// @Success	101
func (a *Api) handleWebsocket(w http.ResponseWriter, req *http.Request) {
	ws, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		// Upgrade already wrote the error response
		return
	}
	defer func(ws *websocket.Conn) {
		err := ws.Close()
		if err != nil {
			a.debug("could not close websocket: %s", err)
		}
	}(ws)
	a.addClient(ws)

	go a.websocketWriter(ws)

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			a.removeClient(ws)
			break
		}
		a.debug("Received: %s", msg)
	}
}

func (a *Api) addClient(ws *websocket.Conn) {
	a.wsMutex.Lock()
	defer a.wsMutex.Unlock()
	a.wsClients[ws] = true
	a.Stats.SetWsClients(len(a.wsClients))
}

func (a *Api) removeClient(ws *websocket.Conn) {
	a.wsMutex.Lock()
	defer a.wsMutex.Unlock()
	delete(a.wsClients, ws)
	a.Stats.SetWsClients(len(a.wsClients))
}

func (a *Api) websocketWriter(ws *websocket.Conn) {
	pingTicker := time.NewTicker(wsInterval)
	defer func() {
		pingTicker.Stop()
		err := ws.Close()
		if err != nil {
			return
		}
	}()

	if !a.sendStats(ws) {
		return
	}
	for range pingTicker.C {
		if !a.sendStats(ws) {
			return
		}
	}
}

func (a *Api) sendStats(ws *websocket.Conn) bool {
	packet, err := json.Marshal(a.Stats.Snapshot())
	if err != nil {
		return false
	}
	err = ws.SetWriteDeadline(time.Now().Add(wsTimeout))
	if err != nil {
		a.debug("could not set write deadline: %s", err)
		return false
	}
	if err := ws.WriteMessage(websocket.TextMessage, packet); err != nil {
		return false
	}
	return true
}

func (a *Api) debug(msg string, args ...any) {
	slog.Debug(fmt.Sprintf(msg, args...), slog.String("module", "api"))
}
