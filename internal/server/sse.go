package server

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/covenant-qa/server/internal/qa/model"
	logx "github.com/covenant-qa/server/pkg/logger"
)

// sseSink writes stream events in SSE wire format (event: type\ndata:
// json\n\n) and flushes after each one. Writes are serialised with a mutex;
// the pipeline may emit from more than one goroutine.
type sseSink struct {
	mu sync.Mutex
	w  gin.ResponseWriter
}

func newSSESink(w gin.ResponseWriter) *sseSink {
	return &sseSink{w: w}
}

func (s *sseSink) Emit(event model.StreamEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(event)
	if err != nil {
		logx.Error().Err(err).Str("type", string(event.Type)).Msg("Cannot marshal stream event")
		return
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event.Type, payload); err != nil {
		// Client went away; the pipeline keeps running and the remaining
		// events are dropped here.
		logx.Debug().Err(err).Msg("Stream write failed")
		return
	}
	s.w.Flush()
}

var _ model.EventSink = (*sseSink)(nil)
