package reviews

import (
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/beatmatch/backend/internal/modules/reviews/application"
	persistence "github.com/beatmatch/backend/internal/modules/reviews/infrastructure/persistence/postgres"
	reviewsHttp "github.com/beatmatch/backend/internal/modules/reviews/interfaces/http"
)

// Module represents the Reviews module
type Module struct {
	repository *persistence.PgReviewRepository
	service    *application.ReviewService
	handler    *reviewsHttp.ReviewHandler
}

// NewModule creates and initializes the Reviews module. notifier may be nil.
func NewModule(db *sqlx.DB, redisClient *redis.Client, users application.UserFinder, notifier application.Notifier) *Module {
	repository := persistence.NewReviewRepository(db)
	service := application.NewReviewService(repository, users, notifier)
	handler := reviewsHttp.NewReviewHandler(service, redisClient)

	return &Module{
		repository: repository,
		service:    service,
		handler:    handler,
	}
}

// HTTPHandler returns the HTTP handler
func (m *Module) HTTPHandler() *reviewsHttp.ReviewHandler {
	return m.handler
}
