package handler

import (
	"context"
	"net/http"

	"github.com/wadjakorntonsri/trimlink/pkg/app"
	"github.com/wadjakorntonsri/trimlink/pkg/config"
	"github.com/wadjakorntonsri/trimlink/pkg/logging"
)

var mux http.Handler

func init() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.AppEnv)
	if err != nil {
		panic(err)
	}

	// Note: On Vercel, db.sqlite is ephemeral unless DATABASE_URL points at Turso.
	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		panic(err)
	}
	mux = a.Handler
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
