package events

import (
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/beatmatch/backend/internal/modules/events/application"
	persistence "github.com/beatmatch/backend/internal/modules/events/infrastructure/persistence/postgres"
	eventsHttp "github.com/beatmatch/backend/internal/modules/events/interfaces/http"
)

// Module represents the Events module
type Module struct {
	repository *persistence.PgEventRepository
	service    *application.EventService
	handler    *eventsHttp.EventHandler
}

// NewModule creates and initializes the Events module
func NewModule(db *sqlx.DB, redisClient *redis.Client, profiles application.ProfileGate, musicians application.MusicianDirectory) *Module {
	repository := persistence.NewEventRepository(db)
	service := application.NewEventService(repository, profiles, musicians, redisClient)
	handler := eventsHttp.NewEventHandler(service)

	return &Module{
		repository: repository,
		service:    service,
		handler:    handler,
	}
}

// HTTPHandler returns the HTTP handler
func (m *Module) HTTPHandler() *eventsHttp.EventHandler {
	return m.handler
}
