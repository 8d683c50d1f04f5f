// Package app wires the ledger services and HTTP routes over a storage
// backend. The API server, the ops CLI and the end-to-end tests share it.
package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-ledger/internal/config"
	"github.com/jwalitptl/clinic-ledger/internal/document"
	authhandler "github.com/jwalitptl/clinic-ledger/internal/handler/auth"
	documenthandler "github.com/jwalitptl/clinic-ledger/internal/handler/document"
	"github.com/jwalitptl/clinic-ledger/internal/handler/health"
	notehandler "github.com/jwalitptl/clinic-ledger/internal/handler/note"
	patienthandler "github.com/jwalitptl/clinic-ledger/internal/handler/patient"
	paymenthandler "github.com/jwalitptl/clinic-ledger/internal/handler/payment"
	"github.com/jwalitptl/clinic-ledger/internal/middleware"
	"github.com/jwalitptl/clinic-ledger/internal/repository"
	"github.com/jwalitptl/clinic-ledger/internal/router"
	"github.com/jwalitptl/clinic-ledger/internal/service/auth"
	"github.com/jwalitptl/clinic-ledger/internal/service/event"
	"github.com/jwalitptl/clinic-ledger/internal/service/note"
	"github.com/jwalitptl/clinic-ledger/internal/service/patient"
	"github.com/jwalitptl/clinic-ledger/internal/service/payment"
	"github.com/jwalitptl/clinic-ledger/internal/service/statement"
	"github.com/jwalitptl/clinic-ledger/internal/service/treatment"
	jwtauth "github.com/jwalitptl/clinic-ledger/pkg/auth"
	"github.com/jwalitptl/clinic-ledger/pkg/metrics"
	"github.com/jwalitptl/clinic-ledger/pkg/security"
)

type Services struct {
	Patients   *patient.Service
	Treatments *treatment.Service
	Payments   *payment.Service
	Notes      *note.Service
	Statements *statement.Service
	Events     *event.Service
	Auth       *auth.Service
}

// NewServices builds every service over store. m may be nil.
func NewServices(cfg *config.Config, store *repository.Store, m *metrics.Metrics) *Services {
	jwtSvc := jwtauth.NewJWTService(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenExpiry)
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)

	return &Services{
		Patients:   patient.NewService(store.Patients, cfg.Clinic.PhoneRegion, m),
		Treatments: treatment.NewService(store.Treatments, store.Patients),
		Payments:   payment.NewService(store.Payments, store.Patients, m),
		Notes:      note.NewService(store.Notes, store.Patients),
		Statements: statement.NewService(store, ClinicInfo(cfg.Clinic), m),
		Events:     event.NewService(store.Outbox),
		Auth:       auth.NewService(store.Users, hasher, jwtSvc),
	}
}

func ClinicInfo(c config.ClinicConfig) document.ClinicInfo {
	return document.ClinicInfo{
		Name:    c.Name,
		Address: c.Address,
		Phone:   c.Phone,
		Footer:  c.Footer,
	}
}

// NewRouter registers the binding validators and builds the HTTP router.
// gatherer serves /api/v1/health/metrics.
func NewRouter(cfg *config.Config, store *repository.Store, svcs *Services, m *metrics.Metrics, gatherer prometheus.Gatherer) (*router.Router, error) {
	if err := middleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	format, err := document.ParseFormat(cfg.Export.Format)
	if err != nil {
		return nil, err
	}

	handlers := router.Handlers{
		Health: health.NewHandler(store.Ping, gatherer),
		Auth:   authhandler.NewHandler(svcs.Auth),
		Protected: []router.Handler{
			patienthandler.NewHandler(svcs.Patients, svcs.Treatments, svcs.Statements, svcs.Events),
			paymenthandler.NewHandler(svcs.Payments, svcs.Events),
			notehandler.NewHandler(svcs.Notes, svcs.Events),
			documenthandler.NewHandler(svcs.Statements, format),
		},
	}

	r := router.NewRouter(
		middleware.NewAuthMiddleware(svcs.Auth),
		handlers,
		m,
		router.RouterConfig{
			RateLimit:      rate.Limit(cfg.Server.RateLimitRPS),
			RateBurst:      cfg.Server.RateLimitBurst,
			AllowedOrigins: cfg.Server.AllowedOrigins,
			RequestTimeout: cfg.Server.RequestTimeout,
			MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		},
	)
	r.Setup()
	return r, nil
}
