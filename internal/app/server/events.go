package server

import "encoding/json"

const (
	EventCreateGame = "createGame"
	EventJoinGame   = "joinGame"
	EventMoveMade   = "moveMade"
	EventGameOver   = "gameOver"

	EventGameCreated        = "gameCreated"
	EventGameStarted        = "gameStarted"
	EventPlayerColor        = "playerColor"
	EventGameError          = "gameError"
	EventGameEnded          = "gameEnded"
	EventPlayerDisconnected = "playerDisconnected"
)

// envelope is the wire format in both directions: an event name plus an
// event-specific payload.
type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

type joinGameRequest struct {
	GameId string `json:"gameId"`
}

type moveRequest struct {
	GameId      string          `json:"gameId"`
	NewPosition json.RawMessage `json:"newPosition"`
	NewMove     string          `json:"newMove"`
	Piece       string          `json:"piece"`
}

type gameOverRequest struct {
	GameId string          `json:"gameId"`
	Result json.RawMessage `json:"result"`
}

type gameCreatedResponse struct {
	GameId string `json:"gameId"`
	Color  Color  `json:"color"`
	Status Status `json:"status"`
}

type gameStartedResponse struct {
	GameId  string        `json:"gameId"`
	Players []Participant `json:"players"`
	Turn    Color         `json:"turn"`
	Status  Status        `json:"status"`
}

type playerColorResponse struct {
	Color Color `json:"color"`
}

type gameErrorResponse struct {
	Message string `json:"message"`
}

type moveResponse struct {
	NewPosition json.RawMessage `json:"newPosition"`
	NewMove     string          `json:"newMove"`
	Turn        Color           `json:"turn"`
	Piece       string          `json:"piece"`
	MoveNumber  int             `json:"moveNumber"`
	GameStatus  Status          `json:"gameStatus"`
	MovesList   []MovePair      `json:"movesList"`
}

type gameEndedResponse struct {
	Result json.RawMessage `json:"result"`
	Status Status          `json:"status"`
}

type playerDisconnectedResponse struct {
	PlayerId string `json:"playerId"`
	Color    Color  `json:"color"`
}
