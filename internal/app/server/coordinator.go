package server

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/openchess/relay/pkg/logging"
	"go.uber.org/zap"
)

// Coordinator owns all session mutation. Every handler runs under a single
// lock, so read-modify-write sequences on a session never interleave, even
// when two participants' events race (a move against a disconnect, say).
// Outbound delivery is queued, never written, under the lock.
type Coordinator struct {
	mu       sync.Mutex
	registry *registry
	gateway  Gateway
}

func NewCoordinator(gateway Gateway) *Coordinator {
	return &Coordinator{
		registry: newRegistry(),
		gateway:  gateway,
	}
}

// HandleMessage routes one decoded inbound envelope. Event types outside
// the contract are ignored without a reply.
func (c *Coordinator) HandleMessage(connectionId string, env envelope) {
	switch env.Type {
	case EventCreateGame:
		c.HandleCreateGame(connectionId)
	case EventJoinGame:
		var req joinGameRequest
		if !c.decode(connectionId, env.Data, &req) {
			return
		}
		c.HandleJoinGame(connectionId, req.GameId)
	case EventMoveMade:
		var req moveRequest
		if !c.decode(connectionId, env.Data, &req) {
			return
		}
		c.HandleMove(connectionId, req)
	case EventGameOver:
		var req gameOverRequest
		if !c.decode(connectionId, env.Data, &req) {
			return
		}
		c.HandleGameOver(connectionId, req.GameId, req.Result)
	default:
		logging.Info("ignoring unknown event",
			zap.String("connection_id", connectionId),
			zap.String("type", env.Type),
		)
	}
}

func (c *Coordinator) decode(connectionId string, data json.RawMessage, v interface{}) bool {
	if err := json.Unmarshal(data, v); err != nil {
		logging.Error("malformed event payload",
			zap.String("connection_id", connectionId),
			zap.Error(err),
		)
		c.gateway.Send(connectionId, EventGameError, gameErrorResponse{Message: ErrMsgGeneric})
		return false
	}
	return true
}

// HandleCreateGame opens a new session with the requester seated as white
// and replies to the requester only.
func (c *Coordinator) HandleCreateGame(connectionId string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session := newSession(uuid.NewString(), connectionId)
	c.registry.add(session)
	c.gateway.JoinGroup(connectionId, session.Id)
	c.gateway.Send(connectionId, EventGameCreated, gameCreatedResponse{
		GameId: session.Id,
		Color:  White,
		Status: session.Status,
	})
	logging.Info("game created",
		zap.String("game_id", session.Id),
		zap.String("connection_id", connectionId),
	)
}

// HandleJoinGame seats the requester as black if there is room. Both
// failure modes answer the requester only; success is announced to the
// whole group, then the joiner learns its color.
func (c *Coordinator) HandleJoinGame(connectionId, gameId string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.registry.get(gameId)
	if !ok {
		c.gateway.Send(connectionId, EventGameError, gameErrorResponse{Message: ErrMsgGameNotFound})
		return
	}
	if session.full() {
		c.gateway.Send(connectionId, EventGameError, gameErrorResponse{Message: ErrMsgGameFull})
		return
	}

	joiner := session.addPlayer(connectionId)
	c.gateway.JoinGroup(connectionId, session.Id)
	c.gateway.Broadcast(session.Id, EventGameStarted, gameStartedResponse{
		GameId:  session.Id,
		Players: session.Players,
		Turn:    session.Turn,
		Status:  session.Status,
	})
	c.gateway.Send(connectionId, EventPlayerColor, playerColorResponse{Color: joiner.Color})
	logging.Info("game started",
		zap.String("game_id", session.Id),
		zap.String("connection_id", connectionId),
	)
}

// HandleMove enforces turn order and fans the move out to the group. A
// missing or inactive session is a silent no-op; only a wrong-turn piece
// earns the requester an error reply.
func (c *Coordinator) HandleMove(connectionId string, req moveRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.registry.get(req.GameId)
	if !ok || session.Status != StatusActive {
		return
	}
	mover, ok := pieceColor(req.Piece)
	if !ok || mover != session.Turn {
		c.gateway.Send(connectionId, EventGameError, gameErrorResponse{Message: ErrMsgNotYourTurn})
		return
	}

	session.applyMove(req.NewPosition, req.NewMove, mover)
	c.gateway.Broadcast(session.Id, EventMoveMade, moveResponse{
		NewPosition: req.NewPosition,
		NewMove:     req.NewMove,
		Turn:        session.Turn,
		Piece:       req.Piece,
		MoveNumber:  len(session.Moves),
		GameStatus:  session.Status,
		MovesList:   session.Moves,
	})
	logging.Info("move made",
		zap.String("game_id", session.Id),
		zap.String("move", req.NewMove),
		zap.String("turn", string(session.Turn)),
	)
}

// HandleGameOver marks the session finished and announces the result. The
// session stays registered until a participant disconnects.
func (c *Coordinator) HandleGameOver(connectionId, gameId string, result json.RawMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, ok := c.registry.get(gameId)
	if !ok {
		return
	}
	session.finish(result)
	c.gateway.Broadcast(session.Id, EventGameEnded, gameEndedResponse{
		Result: result,
		Status: session.Status,
	})
	logging.Info("game ended", zap.String("game_id", session.Id))
}

// HandleDisconnect tears down every session the connection belongs to,
// telling the rest of each group first. Even a waiting session dies with
// its only participant; there is no reconnection path.
func (c *Coordinator) HandleDisconnect(connectionId string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, session := range c.registry.snapshot() {
		p, ok := session.participant(connectionId)
		if !ok {
			continue
		}
		c.gateway.Broadcast(session.Id, EventPlayerDisconnected, playerDisconnectedResponse{
			PlayerId: connectionId,
			Color:    p.Color,
		})
		c.registry.remove(session.Id)
		logging.Info("session removed on disconnect",
			zap.String("game_id", session.Id),
			zap.String("connection_id", connectionId),
		)
	}
}

// pieceColor reads the mover's claimed color off the piece token, e.g.
// "wP" or "bQ". The token is otherwise opaque.
func pieceColor(piece string) (Color, bool) {
	if piece == "" {
		return "", false
	}
	switch c := Color(piece[:1]); c {
	case White, Black:
		return c, true
	}
	return "", false
}
