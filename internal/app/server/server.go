package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/openchess/relay/pkg/logging"
	"go.uber.org/zap"
)

type server struct {
	address  string
	config   Config
	upgrader websocket.Upgrader

	gateway     *wsGateway
	coordinator *Coordinator
}

func NewServer() *server {
	cfg := NewConfig()
	gateway := newGateway()
	srv := &server{
		address: "0.0.0.0:" + cfg.Port,
		config:  cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Browsers send the page origin; non-browser clients send
				// nothing and are let through.
				origin := r.Header.Get("Origin")
				return origin == "" || origin == cfg.AllowedOrigin
			},
		},
		gateway:     gateway,
		coordinator: NewCoordinator(gateway),
	}
	return srv
}

// Start method    starts the relay server
func (s *server) Start() error {
	http.HandleFunc("/ws", s.handleConnection)
	logging.Info("relay server started", zap.String("port", s.config.Port))
	return http.ListenAndServe(s.address, nil)
}

func (s *server) handleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	connectionId := s.gateway.register(conn)
	logging.Info("user connected",
		zap.String("connection_id", connectionId),
		zap.String("remote_address", conn.RemoteAddr().String()),
	)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			logging.Info("user disconnected",
				zap.String("connection_id", connectionId),
				zap.Error(err),
			)
			s.coordinator.HandleDisconnect(connectionId)
			s.gateway.drop(connectionId)
			break
		}

		var env envelope
		if err := json.Unmarshal(message, &env); err != nil {
			logging.Error("malformed message",
				zap.String("connection_id", connectionId),
				zap.Error(err),
			)
			s.gateway.Send(connectionId, EventGameError, gameErrorResponse{Message: ErrMsgGeneric})
			continue
		}
		s.coordinator.HandleMessage(connectionId, env)
	}
}
