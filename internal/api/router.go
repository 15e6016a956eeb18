package api

import (
	"net/http"
	"store-locator-service/internal/api/handlers"
	"store-locator-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(locator *services.Locator) http.Handler {
	mux := http.NewServeMux()

	storeHandler := handlers.NewStoreHandler(locator)

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/stores", storeHandler.List)
	mux.HandleFunc("/stores/nearest", storeHandler.Nearest)
	mux.HandleFunc("/stores/nearest.geojson", storeHandler.NearestGeoJSON)
	mux.HandleFunc("/stores/nearest/device", storeHandler.NearestByDevice)

	return requestIDMiddleware(loggingMiddleware(mux))
}
