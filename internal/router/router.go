package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "vet-clinic-api/docs"
	"vet-clinic-api/internal/adapters/authz/roles"
	mem "vet-clinic-api/internal/adapters/storage/memory"
	pg "vet-clinic-api/internal/adapters/storage/postgres"
	"vet-clinic-api/internal/domain/appointments"
	"vet-clinic-api/internal/domain/authentication"
	"vet-clinic-api/internal/domain/events"
	"vet-clinic-api/internal/domain/owners"
	"vet-clinic-api/internal/domain/pets"
	"vet-clinic-api/internal/domain/users"
	"vet-clinic-api/internal/domain/vets"
	"vet-clinic-api/internal/middleware"
	"vet-clinic-api/internal/platform/logger"
	"vet-clinic-api/internal/platform/metrics"
	"vet-clinic-api/internal/ports/auth"
	"vet-clinic-api/internal/ports/authz"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	Authorizer   authz.Authorizer  // nil => tabla de roles por defecto

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger  logger.Logger
	Metrics *metrics.Collector
	// ServiceName activa el span por request (vacío => sin tracing).
	ServiceName string

	Schedule *appointments.Schedule
	Location *time.Location
	Clock    func() time.Time

	// Publisher manda eventos de turnos al broker; nil => solo historial.
	Publisher events.Publisher

	// TokenIssuer nil => /auth/login responde LOGIN_UNAVAILABLE.
	TokenIssuer authentication.TokenIssuer
	Revoker     auth.TokenRevoker

	RateLimit middleware.RateLimitConfig

	// PasswordCost permite bajar el costo de bcrypt en tests.
	PasswordCost int
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	az := opts.Authorizer
	if az == nil {
		az = roles.Default()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	if opts.ServiceName != "" {
		r.Use(middleware.Tracing(opts.ServiceName))
	}
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
	}
	r.Use(middleware.RequestLogger(log))

	r.Use(middleware.AuthContext(opts.AuthVerifier))
	r.Use(middleware.RateLimit(opts.RateLimit))

	r.Get("/health", healthHandler(opts.DB))
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		userRepo        users.Repository
		ownerRepo       owners.Repository
		vetRepo         vets.Repository
		petRepo         pets.Repository
		appointmentRepo appointments.Repository
		eventRepo       events.Repository
	)

	if db := opts.DB; db != nil {
		userRepo = pg.NewUsersRepo(db)
		ownerRepo = pg.NewOwnersRepo(db)
		vetRepo = pg.NewVetsRepo(db)
		petRepo = pg.NewPetsRepo(db)
		appointmentRepo = pg.NewAppointmentsRepo(db)
		eventRepo = pg.NewEventsRepo(db)
	} else {
		userRepo = mem.NewUserRepo()
		ownerRepo = mem.NewOwnerRepo()
		vetRepo = mem.NewVetRepo()
		petRepo = mem.NewPetRepo()
		appointmentRepo = mem.NewAppointmentRepo()
		eventRepo = mem.NewEventRepo()
	}

	// Services por módulo
	usersSvc := users.NewService(userRepo, log)
	if opts.PasswordCost > 0 {
		usersSvc = usersSvc.WithHashCost(opts.PasswordCost)
	}
	ownersSvc := owners.NewService(ownerRepo, usersSvc, log)
	vetsSvc := vets.NewService(vetRepo, usersSvc, log)
	petsSvc := pets.NewService(petRepo, ownersSvc, log)

	eventsSvc := events.NewService(eventRepo, opts.Publisher, log)
	apptOpts := []appointments.Option{
		appointments.WithLogger(log),
		appointments.WithObserver(eventsSvc),
	}
	if opts.Metrics != nil {
		eventsSvc = eventsSvc.WithMetrics(opts.Metrics)
		apptOpts = append(apptOpts, appointments.WithMetrics(opts.Metrics))
	}
	if opts.Schedule != nil {
		apptOpts = append(apptOpts, appointments.WithSchedule(*opts.Schedule))
	}
	if opts.Location != nil {
		apptOpts = append(apptOpts, appointments.WithLocation(opts.Location))
	}
	if opts.Clock != nil {
		apptOpts = append(apptOpts, appointments.WithClock(opts.Clock))
	}
	appointmentsSvc := appointments.NewService(appointmentRepo, ownersSvc, vetsSvc, petsSvc, apptOpts...)

	authSvc := authentication.NewService(usersSvc, opts.TokenIssuer, opts.Revoker, log)

	// Rutas por módulo
	authentication.RegisterRoutes(r, authSvc)
	users.RegisterRoutes(r, usersSvc, az)
	owners.RegisterRoutes(r, ownersSvc, az)
	vets.RegisterRoutes(r, vetsSvc, az)
	pets.RegisterRoutes(r, petsSvc, az)
	appointments.RegisterRoutes(r, appointmentsSvc, az)
	events.RegisterRoutes(r, eventsSvc, az)

	return r
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				http.Error(w, "db unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
