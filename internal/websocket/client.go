package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/mercando/internal/model"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Feed supplies the live snapshots streamed to a connected user.
type Feed interface {
	WatchActiveLists(ctx context.Context, userID int64) <-chan []model.ListWithItems
	WatchTrash(ctx context.Context, userID int64) <-chan []model.List
}

// Client is one WebSocket connection of an authenticated user.
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	userID int64
	send   chan []byte
}

func NewClient(hub *Hub, conn *ws.Conn, userID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
	}
}

// Run registers the client, streams the feed and runs the read pump. It
// blocks until the connection is closed, then unregisters.
func (c *Client) Run(ctx context.Context, feed Feed) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	// The feed writes to c.send, so it must stop before Unregister closes it.
	defer wg.Wait()
	defer cancel()

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.feedPump(ctx, feed)
	}()
	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump discards incoming messages and returns when the connection closes.
func (c *Client) readPump(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

// feedPump forwards list and trash snapshots until ctx is done. Snapshots
// are never dropped; a slow client only delays the next one.
func (c *Client) feedPump(ctx context.Context, feed Feed) {
	lists := feed.WatchActiveLists(ctx, c.userID)
	trash := feed.WatchTrash(ctx, c.userID)

	for lists != nil || trash != nil {
		var msg Message
		select {
		case v, ok := <-lists:
			if !ok {
				lists = nil
				continue
			}
			msg = NewSnapshot("lists", v)
		case v, ok := <-trash:
			if !ok {
				trash = nil
				continue
			}
			msg = NewSnapshot("trash", v)
		case <-ctx.Done():
			return
		}

		data, err := json.Marshal(msg)
		if err != nil {
			c.hub.logger.Error("marshal snapshot", "user_id", c.userID, "error", err)
			continue
		}
		select {
		case c.send <- data:
		case <-ctx.Done():
			return
		}
	}
}

// writePump drains the send channel and sends periodic pings.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
