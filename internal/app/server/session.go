package server

import "encoding/json"

type (
	Color  string
	Status string
)

const (
	White Color = "w"
	Black Color = "b"

	StatusWaiting  Status = "waiting"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

// MovePair holds the white and black moves for one full move number. The
// black slot stays empty until black answers. Marshals as a two-element
// JSON array.
type MovePair [2]string

type Participant struct {
	ConnectionId string `json:"id"`
	Color        Color  `json:"color"`
}

// Session is one match between two participants. The first participant is
// always white and the session starts on white's turn. Position and Result
// are opaque: the relay passes them through without interpreting board
// semantics.
type Session struct {
	Id       string
	Players  []Participant
	Turn     Color
	Status   Status
	Position json.RawMessage
	Moves    []MovePair
	Result   json.RawMessage
}

func newSession(id, connectionId string) *Session {
	return &Session{
		Id:      id,
		Players: []Participant{{ConnectionId: connectionId, Color: White}},
		Turn:    White,
		Status:  StatusWaiting,
	}
}

func (s *Session) full() bool {
	return len(s.Players) >= 2
}

// addPlayer seats the second participant as black and activates the session.
func (s *Session) addPlayer(connectionId string) Participant {
	p := Participant{ConnectionId: connectionId, Color: Black}
	s.Players = append(s.Players, p)
	s.Status = StatusActive
	return p
}

// applyMove records a move by the given color. A white move opens a new
// move pair; a black move completes the last pair. A black move with no
// pair to complete leaves the history untouched. The turn flips either way.
func (s *Session) applyMove(position json.RawMessage, move string, mover Color) {
	s.Position = position
	if mover == White {
		s.Moves = append(s.Moves, MovePair{move, ""})
	} else if last := len(s.Moves) - 1; last >= 0 {
		s.Moves[last][1] = move
	}
	s.Turn = mover.Opposite()
}

func (s *Session) finish(result json.RawMessage) {
	s.Status = StatusFinished
	s.Result = result
}

func (s *Session) participant(connectionId string) (Participant, bool) {
	for _, p := range s.Players {
		if p.ConnectionId == connectionId {
			return p, true
		}
	}
	return Participant{}, false
}
