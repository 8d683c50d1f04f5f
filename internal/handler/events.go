package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// EventEmitter records ledger changes for asynchronous publishing.
type EventEmitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

// EmitEvent records an event after a successful mutation. A failure is logged
// and never changes the response.
func EmitEvent(c *gin.Context, events EventEmitter, eventType string, payload interface{}) {
	if events == nil {
		return
	}
	if err := events.Emit(c.Request.Context(), eventType, payload); err != nil {
		log.Warn().
			Err(err).
			Str("event_type", eventType).
			Str("request_id", c.GetString("request_id")).
			Msg("Failed to record ledger event")
	}
}
