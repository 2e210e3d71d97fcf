package api

import (
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Henok-Aragaw/echo/internal/api/recovery"
	"github.com/Henok-Aragaw/echo/internal/auth"
	"github.com/Henok-Aragaw/echo/internal/services"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Fragments *services.FragmentService
	Echoes    *services.EchoService
	Users     *services.UserService
	Verifier  auth.Verifier
	Location  *time.Location
}

// NewRouter wires all HTTP routes. Every /api route except health sits
// behind the session gate.
func NewRouter(d Deps) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)
	root.Use(Metrics)

	// Health and metrics stay outside the session gate.
	healthHandler := NewHealthHandler()
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	root.Handle("/metrics", promhttp.Handler()).Methods("GET")

	authed := root.PathPrefix("/api").Subrouter()
	authed.Use(RequireSession(d.Verifier))

	// Fragments
	fragment := NewFragmentHandler(d.Fragments, d.Location)
	authed.HandleFunc("/fragments", fragment.CreateFragment).Methods("POST")
	authed.HandleFunc("/fragments/timeline", fragment.GetTimeline).Methods("GET")
	authed.HandleFunc("/fragments/{fragmentId}", fragment.GetFragment).Methods("GET")

	// Echoes
	echo := NewEchoHandler(d.Echoes)
	authed.HandleFunc("/echoes", echo.ListEchoes).Methods("GET")
	authed.HandleFunc("/echoes/today", echo.GenerateToday).Methods("POST")
	authed.HandleFunc("/echoes/{date}", echo.GetEchoByDate).Methods("GET")

	// User
	user := NewUserHandler(d.Users)
	authed.HandleFunc("/user/me", user.GetProfile).Methods("GET")
	authed.HandleFunc("/user/me", user.DeleteAccount).Methods("DELETE")

	return root
}
