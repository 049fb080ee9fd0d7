package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/fittrack/internal/api"
	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/db"
	"github.com/2beens/fittrack/internal/execution"
	"github.com/2beens/fittrack/internal/middleware"
	"github.com/2beens/fittrack/internal/misc"
	"github.com/2beens/fittrack/internal/stats"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/users"
	"github.com/2beens/fittrack/internal/workouts"

	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const authCleanupInterval = 8 * time.Hour

var errRouteNotFound = apperr.NotFound("route not found")

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config    *config.Config
	dbPool    *pgxpool.Pool
	responder *api.Responder

	redisClient  *redis.Client
	loginChecker *auth.LoginChecker
	authService  *auth.Service

	statsService *stats.Service

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	PostgresPassword        string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		DBPassword:     params.PostgresPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, dbPool); err != nil {
			return nil, err
		}
		log.Debugln("db schema migrated")
	}

	promRegistry := metrics.SetupPrometheus(db.PoolCollector(dbPool, cfg.PostgresDBName))
	metricsManager := metrics.NewManager("fittrack", "api", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: params.RedisPassword,
		DB:       0,
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	authService := auth.NewAuthService(cfg.AuthSessionTTL.Duration, rdb)
	go authService.RunCleanup(ctx, authCleanupInterval)

	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "fittrack-api", rdb)
	if err != nil {
		return nil, err
	}

	var statsCache *stats.Cache
	if cfg.Stats.CacheEnabled {
		statsCache = stats.NewCache(cfg.Stats.CacheSizeMB, cfg.StatsCacheTTL, metricsManager)
	}

	return &Server{
		config:      cfg,
		dbPool:      dbPool,
		responder:   api.NewResponder(cfg.Debug),
		versionInfo: params.VersionInfo,

		redisClient:  rdb,
		authService:  authService,
		loginChecker: auth.NewLoginChecker(cfg.AuthSessionTTL.Duration, rdb),

		statsService: stats.NewService(
			stats.NewRepo(dbPool),
			statsCache,
			cfg.Goals,
			cfg.Location(),
			metricsManager,
		),

		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("fittrack-router"))

	misc.NewHandler(s.versionInfo, s.responder).SetupRoutes(r)

	usersHandler := users.NewHandler(
		users.NewRepo(s.dbPool),
		s.authService,
		s.responder,
		s.metricsManager,
	)
	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/logout", usersHandler.HandleLogout).Methods("POST", "OPTIONS").Name("logout")
	authRouter.HandleFunc("/logout-all", usersHandler.HandleLogoutAll).Methods("POST", "OPTIONS").Name("logout-all")
	authRouter.HandleFunc("/me", usersHandler.HandleMe).Methods("GET", "OPTIONS").Name("me")
	authRouter.HandleFunc("/verify-token", usersHandler.HandleVerifyToken).Methods("GET", "OPTIONS").Name("verify-token")
	authRouter.HandleFunc("/profile", usersHandler.HandleUpdateProfile).Methods("PUT", "OPTIONS").Name("update-profile")

	// everything checking a password is rate limited per client ip
	credentialsRouter := authRouter.NewRoute().Subrouter()
	credentialsRouter.HandleFunc("/register", usersHandler.HandleRegister).Methods("POST", "OPTIONS").Name("register")
	credentialsRouter.HandleFunc("/login", usersHandler.HandleLogin).Methods("POST", "OPTIONS").Name("login")
	credentialsRouter.HandleFunc("/password", usersHandler.HandleChangePassword).Methods("PUT", "OPTIONS").Name("change-password")
	credentialsRouter.Use(middleware.RateLimit(
		redis_rate.NewLimiter(s.redisClient),
		"login",
		s.config.LoginRateLimitAllowedPerMin,
		s.metricsManager,
	))

	workoutsHandler := workouts.NewHandler(workouts.NewRepo(s.dbPool), s.responder)
	r.HandleFunc("/treinos", workoutsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
	r.HandleFunc("/treinos", workoutsHandler.HandleCreate).Methods("POST", "OPTIONS").Name("new-workout")
	r.HandleFunc("/treinos/{id:[0-9]+}", workoutsHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-workout")
	r.HandleFunc("/treinos/{id:[0-9]+}", workoutsHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-workout")
	r.HandleFunc("/treinos/{id:[0-9]+}", workoutsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-workout")
	r.HandleFunc("/treinos/{treinoId:[0-9]+}/exercicios", workoutsHandler.HandleListExercises).Methods("GET", "OPTIONS").Name("list-exercises")
	r.HandleFunc("/treinos/{treinoId:[0-9]+}/exercicios", workoutsHandler.HandleCreateExercise).Methods("POST", "OPTIONS").Name("new-exercise")
	r.HandleFunc("/treinos/{treinoId:[0-9]+}/exercicios/reordenar", workoutsHandler.HandleReorderExercises).Methods("PUT", "OPTIONS").Name("reorder-exercises")
	r.HandleFunc("/treinos/{treinoId:[0-9]+}/exercicios/grupo/{grupo}", workoutsHandler.HandleExercisesByMuscleGroup).Methods("GET", "OPTIONS").Name("exercises-by-muscle-group")
	r.HandleFunc("/treinos/{treinoId:[0-9]+}/exercicios/{id:[0-9]+}", workoutsHandler.HandleGetExercise).Methods("GET", "OPTIONS").Name("get-exercise")
	r.HandleFunc("/treinos/{treinoId:[0-9]+}/exercicios/{id:[0-9]+}", workoutsHandler.HandleUpdateExercise).Methods("PUT", "OPTIONS").Name("update-exercise")
	r.HandleFunc("/treinos/{treinoId:[0-9]+}/exercicios/{id:[0-9]+}", workoutsHandler.HandleDeleteExercise).Methods("DELETE", "OPTIONS").Name("delete-exercise")

	executionHandler := execution.NewHandler(
		execution.NewService(execution.NewRepo(s.dbPool), s.statsService, s.metricsManager),
		s.responder,
	)
	r.HandleFunc("/execucao/treinos/{workoutId:[0-9]+}/iniciar", executionHandler.HandleStart).Methods("POST", "OPTIONS").Name("start-execution")
	r.HandleFunc("/execucao/atual", executionHandler.HandleCurrent).Methods("GET", "OPTIONS").Name("current-execution")
	r.HandleFunc("/execucao/historico", executionHandler.HandleHistory).Methods("GET", "OPTIONS").Name("execution-history")
	r.HandleFunc("/execucao/em-andamento", executionHandler.HandleInProgress).Methods("GET", "OPTIONS").Name("executions-in-progress")
	r.HandleFunc("/execucao/{id:[0-9]+}", executionHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-execution")
	r.HandleFunc("/execucao/{id:[0-9]+}/pausar", executionHandler.HandlePause).Methods("PUT", "OPTIONS").Name("pause-execution")
	r.HandleFunc("/execucao/{id:[0-9]+}/retomar", executionHandler.HandleResume).Methods("PUT", "OPTIONS").Name("resume-execution")
	r.HandleFunc("/execucao/{id:[0-9]+}/proximo-exercicio", executionHandler.HandleAdvance).Methods("PUT", "OPTIONS").Name("advance-execution")
	r.HandleFunc("/execucao/{id:[0-9]+}/exercicio-anterior", executionHandler.HandleRetreat).Methods("PUT", "OPTIONS").Name("retreat-execution")
	r.HandleFunc("/execucao/{id:[0-9]+}/pular-exercicio", executionHandler.HandleSkip).Methods("PUT", "OPTIONS").Name("skip-exercise")
	r.HandleFunc("/execucao/{id:[0-9]+}/atualizar-exercicio", executionHandler.HandleUpdateExercise).Methods("PUT", "OPTIONS").Name("update-exercise-execution")
	r.HandleFunc("/execucao/{id:[0-9]+}/finalizar", executionHandler.HandleFinish).Methods("PUT", "OPTIONS").Name("finish-execution")
	r.HandleFunc("/execucao/{id:[0-9]+}/cancelar", executionHandler.HandleCancel).Methods("DELETE", "OPTIONS").Name("cancel-execution")

	statsHandler := stats.NewHandler(s.statsService, s.responder)
	statsRouter := r.PathPrefix("/estatisticas").Subrouter()
	for path, handle := range map[string]http.HandlerFunc{
		"/dashboard":           statsHandler.HandleDashboard,
		"/progresso":           statsHandler.HandleProgress,
		"/rankings":            statsHandler.HandleRankings,
		"/grupos-musculares":   statsHandler.HandleMuscleGroups,
		"/consistencia":        statsHandler.HandleConsistency,
		"/comparativos":        statsHandler.HandleCompare,
		"/metas":               statsHandler.HandleGoals,
		"/resumo":              statsHandler.HandleSummary,
		"/frequencia-semanal":  statsHandler.HandleWeeklyFrequency,
		"/duracao-media":       statsHandler.HandleAverageDuration,
		"/volume-treino":       statsHandler.HandleVolume,
		"/horarios-preferidos": statsHandler.HandlePreferredHours,
		"/exportar":            statsHandler.HandleExport,
		"/relatorio/{tipo}":    statsHandler.HandleReport,

		"/exercicio/{id:[0-9]+}/evolucao":      statsHandler.HandleEvolution,
		"/exercicio/{id:[0-9]+}/evolucao-peso": statsHandler.HandleWeightEvolution,
	} {
		statsRouter.HandleFunc(path, handle).Methods("GET", "OPTIONS")
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.responder.Err(w, errRouteNotFound)
	})

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.loginChecker, s.responder)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.RequestID())
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", otelhttp.NewHandler(
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
		"metrics",
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close()
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
