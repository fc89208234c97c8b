package auth

import (
	"github.com/jmoiron/sqlx"

	"github.com/beatmatch/backend/internal/modules/auth/application"
	"github.com/beatmatch/backend/internal/modules/auth/domain"
	persistence "github.com/beatmatch/backend/internal/modules/auth/infrastructure/persistence/postgres"
	authHttp "github.com/beatmatch/backend/internal/modules/auth/interfaces/http"
	"github.com/beatmatch/backend/internal/shared/infrastructure/config"
)

// Module represents the Auth module
type Module struct {
	repository *persistence.PgUserRepository
	service    *application.AuthService
	handler    *authHttp.AuthHandler
}

// NewModule creates and initializes the Auth module
func NewModule(db *sqlx.DB, jwtCfg config.JWTConfig, googleCfg config.GoogleConfig) *Module {
	repository := persistence.NewUserRepository(db)
	service := application.NewAuthService(repository, jwtCfg.Secret, jwtCfg.Expiry)
	handler := authHttp.NewAuthHandler(service, googleCfg.ClientID)

	return &Module{
		repository: repository,
		service:    service,
		handler:    handler,
	}
}

// UserFinder returns the read-only user view for use by other modules
func (m *Module) UserFinder() domain.UserFinder {
	return m.repository
}

// HTTPHandler returns the HTTP handler
func (m *Module) HTTPHandler() *authHttp.AuthHandler {
	return m.handler
}
