// Package server wires stores, services, and handlers into one HTTP router.
package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/dukerupert/hearth/internal/config"
	"github.com/dukerupert/hearth/internal/guard"
	"github.com/dukerupert/hearth/internal/handler"
	"github.com/dukerupert/hearth/internal/journal"
	"github.com/dukerupert/hearth/internal/ledger"
	"github.com/dukerupert/hearth/internal/middleware"
	"github.com/dukerupert/hearth/internal/realtime"
	"github.com/dukerupert/hearth/internal/reward"
	"github.com/dukerupert/hearth/internal/store"
	"github.com/dukerupert/hearth/internal/task"
)

type Server struct {
	db         *sql.DB
	cfg        config.Config
	hub        *realtime.Hub
	guard      *guard.Guard
	taskH      *handler.TaskHandler
	rewardH    *handler.RewardHandler
	householdH *handler.HouseholdHandler
	pushH      *handler.PushHandler
	logger     *slog.Logger
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) *Server {
	users := store.NewUserStore(db)
	memberships := store.NewMembershipStore(db)
	tasks := store.NewTaskStore(db)
	rewards := store.NewRewardStore(db)
	activities := store.NewActivityStore(db)
	pushSubs := store.NewPushStore(db)

	g := guard.New(db, memberships)
	l := ledger.New(users)
	j := journal.New(activities, logger.With("component", "journal"))

	hub := realtime.NewHub(logger.With("component", "websocket"))
	events := realtime.NewBroadcaster(logger.With("component", "broadcast"), hub)

	var pushNotifier *realtime.PushNotifier
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushNotifier = realtime.NewPushNotifier(realtime.PushConfig{
			VAPIDPublicKey:  cfg.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.VAPIDPrivateKey,
			Subscriber:      cfg.PushSubscriber,
		}, memberships, pushSubs, logger.With("component", "webpush"))
		events.Register(pushNotifier)
	}

	taskSvc := task.NewService(db, tasks, g, l, j, events, logger.With("component", "task"))
	rewardSvc := reward.NewService(db, rewards, users, g, l, j, events, logger.With("component", "reward"))

	var pushH *handler.PushHandler
	if pushNotifier != nil {
		pushH = handler.NewPushHandler(pushSubs, pushNotifier)
	}

	return &Server{
		db:         db,
		cfg:        cfg,
		hub:        hub,
		guard:      g,
		taskH:      handler.NewTaskHandler(taskSvc),
		rewardH:    handler.NewRewardHandler(rewardSvc),
		householdH: handler.NewHouseholdHandler(g, j),
		pushH:      pushH,
		logger:     logger,
	}
}

// Hub exposes the websocket hub, mainly for tests and diagnostics.
func (s *Server) Hub() *realtime.Hub {
	return s.hub
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	outerMux.HandleFunc("GET /health", s.healthHandler)

	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth([]byte(s.cfg.JWTSecret))
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Task API routes
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.taskH.Complete)
	mux.HandleFunc("POST /api/tasks/{id}/uncomplete", s.taskH.Uncomplete)
	mux.HandleFunc("POST /api/tasks/{id}/comments", s.taskH.AddComment)
	mux.HandleFunc("GET /api/tasks/{id}/comments", s.taskH.ListComments)
	mux.HandleFunc("GET /api/households/{household_id}/tasks", s.taskH.List)

	// Reward API routes
	mux.HandleFunc("POST /api/rewards", s.rewardH.Create)
	mux.HandleFunc("PUT /api/rewards/{id}", s.rewardH.Update)
	mux.HandleFunc("DELETE /api/rewards/{id}", s.rewardH.Delete)
	mux.HandleFunc("POST /api/rewards/{id}/redeem", s.rewardH.Redeem)
	mux.HandleFunc("GET /api/households/{household_id}/rewards", s.rewardH.List)
	mux.HandleFunc("GET /api/redemptions", s.rewardH.ListMyRedemptions)

	// Household routes
	mux.HandleFunc("POST /api/households/{household_id}/leave", s.householdH.Leave)
	mux.HandleFunc("GET /api/households/{household_id}/activities", s.householdH.ListActivities)

	// Push notification routes
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("DELETE /api/push/subscriptions/{id}", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	}

	// WebSocket
	mux.HandleFunc("GET /ws/{household_id}", handler.WebSocket(s.hub, s.guard, s.logger.With("component", "websocket")))
}
