package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/pokedex/internal/adapters/postgres"
	"github.com/samirrijal/pokedex/internal/adapters/valkey"
	"github.com/samirrijal/pokedex/internal/auth"
	"github.com/samirrijal/pokedex/internal/core/usecases"
)

// Version is reported by the index and health endpoints.
const Version = "0.1.0-alpha"

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	MapObjects *usecases.MapObjectService
	Users      *usecases.UserService
	Verifier   *auth.Verifier
	NATS       *nats.Conn
	DB         *postgres.DB
	Cache      *valkey.Cache
}
