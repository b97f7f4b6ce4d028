package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/mapoverlay/internal/adapters/postgres"
	"github.com/samirrijal/mapoverlay/internal/adapters/valkey"
	"github.com/samirrijal/mapoverlay/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Alignments *usecases.AlignmentService
	PageImages *usecases.PageImageService
	NATS       *nats.Conn
	DB         *postgres.DB
	Cache      *valkey.Cache
	Version    string
}
