package main

import (
	"github.com/openchess/relay/internal/app/server"
	"github.com/openchess/relay/pkg/logging"
	"go.uber.org/zap"
)

func main() {
	logging.Fatal("Relay server exited: ", zap.Error(
		server.NewServer().Start(),
	))
}
