package server

// Client-facing error messages. These are part of the wire contract and
// must not be reworded.
var (
	ErrMsgGameNotFound string = "Game not found"
	ErrMsgGameFull     string = "Game is full"
	ErrMsgNotYourTurn  string = "Not your turn"
	ErrMsgGeneric      string = "An error occurred"
)
