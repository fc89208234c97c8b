package payment

import (
	"github.com/jmoiron/sqlx"
	"github.com/razorpay/razorpay-go"

	"github.com/beatmatch/backend/internal/modules/payment/application"
	persistence "github.com/beatmatch/backend/internal/modules/payment/infrastructure/persistence/postgres"
	paymentHttp "github.com/beatmatch/backend/internal/modules/payment/interfaces/http"
	"github.com/beatmatch/backend/internal/shared/infrastructure/config"
)

// Module represents the Payment module
type Module struct {
	repository *persistence.PgOrderRepository
	service    *application.PaymentService
	handler    *paymentHttp.PaymentHandler
}

// NewModule creates and initializes the Payment module. Without provider
// credentials the endpoints answer 503 instead of failing startup.
func NewModule(db *sqlx.DB, cfg config.RazorpayConfig, priceCfg config.PaymentConfig,
	profiles application.ProfileActivator, notifier application.Notifier) *Module {

	var client *razorpay.Client
	if cfg.KeyID != "" && cfg.KeySecret != "" {
		client = razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	}

	repository := persistence.NewOrderRepository(db)
	service := application.NewPaymentService(repository, profiles, notifier,
		client, cfg.KeySecret, cfg.WebhookSecret,
		priceCfg.ActivationAmount, priceCfg.ActivationCurrency)

	return &Module{
		repository: repository,
		service:    service,
		handler:    paymentHttp.NewPaymentHandler(service),
	}
}

// HTTPHandler returns the HTTP handler
func (m *Module) HTTPHandler() *paymentHttp.PaymentHandler {
	return m.handler
}
