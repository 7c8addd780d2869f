// apps/go-server/main.go
//
// Entry point for the Burgundy Go server.
// Loads .env, sets the log level, validates the map layouts, opens and
// migrates SQLite, then serves HTTP.
//
// Environment variables:
//   PORT=5175  LOG_LEVEL=info  DB_PATH=./data/burgundy.db  MAPS_DIR=
//   CLIENT_ORIGIN  JWT_SECRET  JWT_EXPIRES_DAYS  COOKIE_NAME  DAILY_SALT
//   SELL_NEEDS_DOUBLE

package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/burgundy/apps/go-server/internal/httpserver"
	"github.com/robalobadob/burgundy/apps/go-server/internal/maps"
	"github.com/robalobadob/burgundy/apps/go-server/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := maps.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load map layouts")
	}

	db, err := openDB(getEnv("DB_PATH", "./data/burgundy.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	srv := httpserver.New(store.NewMemoryStore(), db)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Strs("maps", maps.IDs()).Msg("starting go-server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
