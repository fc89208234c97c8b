package notification

import (
	"github.com/jmoiron/sqlx"

	"github.com/beatmatch/backend/internal/modules/notification/application"
	"github.com/beatmatch/backend/internal/modules/notification/infrastructure/persistence/postgres"
	ws "github.com/beatmatch/backend/internal/modules/notification/infrastructure/websocket"
	notificationHttp "github.com/beatmatch/backend/internal/modules/notification/interfaces/http"
)

// Module wires the notification stack: postgres persistence plus a websocket
// hub that pushes new notifications to connected users.
type Module struct {
	service *application.NotificationService
	handler *notificationHttp.NotificationHandler
	hub     *ws.Hub
}

func NewModule(db *sqlx.DB) *Module {
	hub := ws.NewHub()
	go hub.Run()

	repo := postgres.NewPgNotificationRepository(db)
	service := application.NewNotificationService(repo, hub)

	return &Module{
		service: service,
		handler: notificationHttp.NewNotificationHandler(service),
		hub:     hub,
	}
}

func (m *Module) Service() *application.NotificationService {
	return m.service
}

func (m *Module) Handler() *notificationHttp.NotificationHandler {
	return m.handler
}

func (m *Module) Shutdown() {
	m.hub.Stop()
}
