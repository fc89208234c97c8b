package musician

import (
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/beatmatch/backend/internal/modules/musician/application"
	persistence "github.com/beatmatch/backend/internal/modules/musician/infrastructure/persistence/postgres"
	musicianHttp "github.com/beatmatch/backend/internal/modules/musician/interfaces/http"
)

// Module represents the Musician module
type Module struct {
	repository          *persistence.PgProfileRepository
	service             *application.ProfileService
	profileHandler      *musicianHttp.ProfileHandler
	availabilityHandler *musicianHttp.AvailabilityHandler
	uploadHandler       *musicianHttp.UploadHandler
}

// NewModule creates and initializes the Musician module. fileService may be
// nil when object storage is not configured; uploads then answer 503.
func NewModule(db *sqlx.DB, redisClient *redis.Client, users application.UserFinder, fileService musicianHttp.FileService, uploadFolder string) *Module {
	repository := persistence.NewProfileRepository(db)
	service := application.NewProfileService(repository, users, redisClient)

	return &Module{
		repository:          repository,
		service:             service,
		profileHandler:      musicianHttp.NewProfileHandler(service, redisClient, fileService),
		availabilityHandler: musicianHttp.NewAvailabilityHandler(service),
		uploadHandler:       musicianHttp.NewUploadHandler(service, fileService, uploadFolder),
	}
}

// Service exposes the profile service for the payment and event modules.
func (m *Module) Service() *application.ProfileService {
	return m.service
}

func (m *Module) ProfileHandler() *musicianHttp.ProfileHandler {
	return m.profileHandler
}

func (m *Module) AvailabilityHandler() *musicianHttp.AvailabilityHandler {
	return m.availabilityHandler
}

func (m *Module) UploadHandler() *musicianHttp.UploadHandler {
	return m.uploadHandler
}
