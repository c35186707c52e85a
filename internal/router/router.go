package router

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "epaws/docs"
	mem "epaws/internal/adapters/storage/memory"
	pg "epaws/internal/adapters/storage/postgres"
	"epaws/internal/domain/adoptions"
	"epaws/internal/domain/animals"
	"epaws/internal/domain/medical"
	"epaws/internal/domain/notifications"
	"epaws/internal/domain/organizations"
	"epaws/internal/domain/reports"
	"epaws/internal/middleware"
	"epaws/internal/platform/logger"
	"epaws/internal/ports/auth"
	"epaws/internal/workflow"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Engine ya armado (serve). Si es nil se arma uno con NewStores(DB).
	Engine *workflow.Engine
	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger logger.Logger
	// Gatherer para /metrics; nil = registry global.
	Gatherer prometheus.Gatherer
}

// NewStores elige los adaptadores: Postgres si hay db, memoria si no.
func NewStores(db *sql.DB) workflow.Stores {
	if db != nil {
		return workflow.Stores{
			Reports:       pg.NewReportsRepo(db),
			Animals:       pg.NewAnimalsRepo(db),
			Adoptions:     pg.NewAdoptionsRepo(db),
			Medical:       pg.NewMedicalRepo(db),
			Organizations: pg.NewOrganizationsRepo(db),
			Notifications: pg.NewNotificationsRepo(db),
			Ledger:        pg.NewLedgerStore(db),
		}
	}
	return workflow.Stores{
		Reports:       mem.NewReportRepo(),
		Animals:       mem.NewAnimalRepo(),
		Adoptions:     mem.NewAdoptionRepo(),
		Medical:       mem.NewMedicalRepo(),
		Organizations: mem.NewOrganizationRepo(),
		Notifications: mem.NewNotificationRepo(),
		Ledger:        mem.NewLedgerStore(),
	}
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	engine := opts.Engine
	if engine == nil {
		engine = workflow.New(NewStores(opts.DB), workflow.Options{Logger: log})
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))

	r.Use(middleware.AuthContext(opts.AuthVerifier))
	r.Use(middleware.RequestLogger(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rutas por módulo; todas las operaciones pasan por el engine
	reports.RegisterRoutes(r, engine)
	animals.RegisterRoutes(r, engine)
	adoptions.RegisterRoutes(r, engine)
	medical.RegisterRoutes(r, engine)
	organizations.RegisterRoutes(r, engine)
	notifications.RegisterRoutes(r, engine.Notifications)

	return r
}
