package server

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/openchess/relay/pkg/logging"
	"go.uber.org/zap"
)

// Gateway delivers events to a single connection or to every connection
// subscribed to a session's broadcast group.
type Gateway interface {
	Send(connectionId, event string, payload interface{})
	Broadcast(sessionId, event string, payload interface{})
	JoinGroup(connectionId, sessionId string)
}

const sendQueueSize = 32

// wsGateway implements Gateway over gorilla/websocket. Each connection
// writes from its own pump goroutine fed by a buffered queue, so one slow
// peer cannot stall delivery to unrelated connections.
type wsGateway struct {
	mu     sync.Mutex
	conns  map[string]*connection
	groups map[string]map[string]struct{}
}

type connection struct {
	id  string
	ws  *websocket.Conn
	out chan []byte

	mu     sync.Mutex
	closed bool
}

func newGateway() *wsGateway {
	return &wsGateway{
		conns:  make(map[string]*connection),
		groups: make(map[string]map[string]struct{}),
	}
}

// register assigns the websocket connection an id and starts its write
// pump. The id doubles as the participant identity everywhere else.
func (g *wsGateway) register(ws *websocket.Conn) string {
	conn := &connection{
		id:  uuid.NewString(),
		ws:  ws,
		out: make(chan []byte, sendQueueSize),
	}
	g.mu.Lock()
	g.conns[conn.id] = conn
	g.mu.Unlock()
	go conn.writePump()
	return conn.id
}

// drop removes the connection from every group and stops its pump.
func (g *wsGateway) drop(connectionId string) {
	g.mu.Lock()
	conn, ok := g.conns[connectionId]
	delete(g.conns, connectionId)
	for sessionId, members := range g.groups {
		delete(members, connectionId)
		if len(members) == 0 {
			delete(g.groups, sessionId)
		}
	}
	g.mu.Unlock()
	if ok {
		conn.close()
	}
}

func (g *wsGateway) JoinGroup(connectionId, sessionId string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	members, ok := g.groups[sessionId]
	if !ok {
		members = make(map[string]struct{})
		g.groups[sessionId] = members
	}
	members[connectionId] = struct{}{}
}

func (g *wsGateway) Send(connectionId, event string, payload interface{}) {
	message, err := encodeEvent(event, payload)
	if err != nil {
		logging.Error("failed to encode event", zap.String("event", event), zap.Error(err))
		return
	}
	g.mu.Lock()
	conn, ok := g.conns[connectionId]
	g.mu.Unlock()
	if ok {
		conn.enqueue(message)
	}
}

func (g *wsGateway) Broadcast(sessionId, event string, payload interface{}) {
	message, err := encodeEvent(event, payload)
	if err != nil {
		logging.Error("failed to encode event", zap.String("event", event), zap.Error(err))
		return
	}
	g.mu.Lock()
	conns := make([]*connection, 0, len(g.groups[sessionId]))
	for connectionId := range g.groups[sessionId] {
		if conn, ok := g.conns[connectionId]; ok {
			conns = append(conns, conn)
		}
	}
	g.mu.Unlock()
	for _, conn := range conns {
		conn.enqueue(message)
	}
}

// encodeEvent marshals at enqueue time so the payload is snapshotted while
// the coordinator still holds its lock.
func encodeEvent(event string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: event, Data: data})
}

// enqueue never blocks: a connection whose queue is full is closed rather
// than allowed to back up the coordinator.
func (c *connection) enqueue(message []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.out <- message:
	default:
		logging.Warn("send queue full, closing connection", zap.String("connection_id", c.id))
		c.closed = true
		close(c.out)
	}
}

func (c *connection) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.out)
}

func (c *connection) writePump() {
	for message := range c.out {
		if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
			logging.Error("failed to write to connection",
				zap.String("connection_id", c.id),
				zap.Error(err),
			)
			c.ws.Close()
			return
		}
	}
	c.ws.Close()
}
