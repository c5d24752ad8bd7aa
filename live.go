package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"soilsense/models"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	liveSendBuffer   = 16
	liveWriteTimeout = 10 * time.Second
)

// allowOrigin applies CORS_ORIGINS to websocket upgrades. Requests without
// an Origin header come from non-browser clients and are let through.
func (a *App) allowOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, o := range a.cfg.CORSOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

type liveClient struct {
	conn *websocket.Conn
	send chan []byte
}

// liveHub fans newly stored readings out to websocket subscribers of the
// same device. Slow subscribers drop messages instead of blocking ingestion.
type liveHub struct {
	mu   sync.Mutex
	subs map[string]map[*liveClient]struct{}
}

func newLiveHub() *liveHub {
	return &liveHub{subs: make(map[string]map[*liveClient]struct{})}
}

func (h *liveHub) add(deviceID string, c *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[deviceID] == nil {
		h.subs[deviceID] = make(map[*liveClient]struct{})
	}
	h.subs[deviceID][c] = struct{}{}
}

func (h *liveHub) remove(deviceID string, c *liveClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[deviceID][c]; !ok {
		return
	}
	delete(h.subs[deviceID], c)
	if len(h.subs[deviceID]) == 0 {
		delete(h.subs, deviceID)
	}
	close(c.send)
}

func (h *liveHub) subscribers(deviceID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[deviceID])
}

// ReadingStored broadcasts r to the device's subscribers.
func (h *liveHub) ReadingStored(_ context.Context, r models.Reading) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.subs[r.DeviceID]
	if len(clients) == 0 {
		return nil
	}
	msg, err := json.Marshal(r)
	if err != nil {
		return err
	}
	for c := range clients {
		select {
		case c.send <- msg:
		default:
			log.Printf("[live] subscriber of %s is behind, dropping reading %s", r.DeviceID, r.ID.Hex())
		}
	}
	return nil
}

// handleLiveReadings upgrades to a websocket and streams the device's new readings.
func (a *App) handleLiveReadings(w http.ResponseWriter, r *http.Request) {
	deviceID := chi.URLParam(r, "deviceId")
	upgrader := websocket.Upgrader{CheckOrigin: a.allowOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[live] upgrade for %s refused: %v", deviceID, err)
		return
	}
	c := &liveClient{conn: conn, send: make(chan []byte, liveSendBuffer)}
	a.live.add(deviceID, c)

	go func() {
		for msg := range c.send {
			_ = conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		}
	}()

	defer func() {
		a.live.remove(deviceID, c)
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
