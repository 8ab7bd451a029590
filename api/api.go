package api

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/drjulio/clinic-api/database"
)

// APIServer wraps the fiber engine and its listen address
type APIServer struct {
	app           *fiber.App
	listenAddress string
	store         database.Storage
}

// NewAPIServer creates an API server listening on the given address
func NewAPIServer(listenAddress string, store database.Storage) *APIServer {
	return &APIServer{
		app:           fiber.New(),
		listenAddress: listenAddress,
		store:         store,
	}
}

// GetEngine exposes the underlying fiber app for route registration
func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

// Run starts listening; it blocks until the server stops
func (s *APIServer) Run() error {
	log.Println("Starting API Server")
	log.Printf("Listening on %s", s.listenAddress)

	return s.app.Listen(s.listenAddress)
}
