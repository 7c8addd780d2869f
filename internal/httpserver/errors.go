package httpserver

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/burgundy/apps/go-server/internal/game"
	"github.com/robalobadob/burgundy/apps/go-server/internal/maps"
	"github.com/robalobadob/burgundy/apps/go-server/internal/store"
)

// errorCodes maps sentinel errors to a status and a stable client code.
// Rule violations are 409: the request was well formed but the game said no.
var errorCodes = []struct {
	err    error
	status int
	code   string
}{
	{store.ErrNotFound, http.StatusNotFound, "not_found"},
	{maps.ErrUnknownMap, http.StatusBadRequest, "unknown_map"},
	{game.ErrNoSuchCell, http.StatusBadRequest, "no_such_cell"},
	{game.ErrBadDie, http.StatusBadRequest, "bad_die"},
	{game.ErrBadValue, http.StatusBadRequest, "bad_value"},
	{game.ErrInvalidMove, http.StatusConflict, "invalid_move"},
	{game.ErrDieUsed, http.StatusConflict, "die_used"},
	{game.ErrPlacementLimit, http.StatusConflict, "placement_limit"},
	{game.ErrNoResource, http.StatusConflict, "no_resource"},
	{game.ErrBonusUsed, http.StatusConflict, "bonus_used"},
	{game.ErrSilverUsed, http.StatusConflict, "silver_used"},
	{game.ErrHourglass, http.StatusConflict, "hourglass"},
	{game.ErrNoSnapshot, http.StatusConflict, "no_snapshot"},
	{game.ErrNotStarted, http.StatusConflict, "not_started"},
	{game.ErrAlreadyStarted, http.StatusConflict, "already_started"},
	{game.ErrGameOver, http.StatusConflict, "game_over"},
	{game.ErrCorruptState, http.StatusInternalServerError, "corrupt_state"},
}

// writeErr renders err as {"error": code, "message": text}.
func writeErr(w http.ResponseWriter, err error) {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			writeJSON(w, e.status, map[string]string{"error": e.code, "message": err.Error()})
			return
		}
	}
	log.Error().Err(err).Msg("unhandled error")
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal"})
}

func badJSON(w http.ResponseWriter) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_json"})
}
