package main

import (
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

type recordEntry struct {
	Title  string `json:"title"`
	Public bool   `json:"public"`
	Owner  string `json:"owner"`
}

type visibilityResponse struct {
	UUID  string `json:"uuid"`
	Title string `json:"title"`
}

func main() {
	var (
		port    = flag.String("port", "9099", "port to listen on")
		data    = flag.String("data", "mock-catalog.json", "path to mock record file")
		apiKey  = flag.String("api-key", "", "required X-API-Key value, empty accepts any")
		logReqs = flag.Bool("log", false, "enable request logging")
	)
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "catalog-mock").Logger()

	file, err := os.ReadFile(*data)
	if err != nil {
		logger.Fatal().Err(err).Msg("read mock data")
	}

	var records map[string]recordEntry
	if err := json.Unmarshal(file, &records); err != nil {
		logger.Fatal().Err(err).Msg("parse mock data")
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	if *logReqs {
		r.Use(hlog.NewHandler(logger))
		r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, _ time.Duration) {
			hlog.FromRequest(r).Info().Str("path", r.URL.Path).Int("status", status).Msg("request")
		}))
	}

	r.Get("/records/{uuid}/visibility", func(w http.ResponseWriter, r *http.Request) {
		if *apiKey != "" && r.Header.Get("X-API-Key") != *apiKey {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		id := chi.URLParam(r, "uuid")
		entry, ok := records[id]
		if !ok {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		user := r.Header.Get("X-Catalog-User")
		visible := entry.Public ||
			(user != "" && user == entry.Owner) ||
			r.Header.Get("X-Catalog-Profile") == "Administrator"
		if !visible {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(visibilityResponse{UUID: id, Title: entry.Title}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	addr := ":" + *port
	logger.Info().Str("addr", addr).Int("records", len(records)).Msg("mock catalog listening")
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}
