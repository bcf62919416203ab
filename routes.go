package main

import (
	"github.com/gorilla/mux"
)

// setupRoutes configures all HTTP routes for the API
func setupRoutes(router *mux.Router) {
	// Retrieval and annotation endpoints
	router.HandleFunc("/api/lyrics", getLyrics).Methods("POST")
	router.HandleFunc("/api/lyrics/meaning", getLyricsMeaning).Methods("POST")
	router.HandleFunc("/api/lyrics/meaning/cached", getLyricsMeaningCached).Methods("POST")

	// Health and ops endpoints
	router.HandleFunc("/api/health", getHealthStatus).Methods("GET")
	router.HandleFunc("/stats", getStats).Methods("GET")
	router.HandleFunc("/cache", getCacheDump).Methods("GET")

	// Help endpoint
	router.HandleFunc("/", helpHandler).Methods("GET")
}
