package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/prepforge/mockexam-backend/internal/exam"
	"github.com/prepforge/mockexam-backend/internal/response"
	"github.com/prepforge/mockexam-backend/internal/service"
	ws "github.com/prepforge/mockexam-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams one live attempt over a WebSocket: client actions in,
// controller events and state out.
type WSHandler struct {
	attemptService *service.AttemptService
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(attemptService *service.AttemptService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		attemptService: attemptService,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// AttemptStream godoc
// WS /ws/v1/tests/:test_id/stream
// Connecting starts (or resumes) the attempt. The server pushes the full
// state on connect and after every action, plus controller transitions
// (ticks, locks, switches, completion) as they happen.
func (h *WSHandler) AttemptStream(c *gin.Context) {
	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	rt, err := h.attemptService.Runtime(c.Request.Context(), testID)
	if err != nil {
		if errors.Is(err, service.ErrTestNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrTestNotFound)
		} else {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("test_id", testID.String()).Logger()
	wsLog.Info().Msg("Attempt stream connected")

	ctl := rt.Controller()

	// Auto-start/resume. A completed attempt stays connected read-only so
	// the review screen can load state over the same channel.
	if !ctl.Completed() {
		if _, err := h.attemptService.Start(c.Request.Context(), testID); err != nil && !errors.Is(err, exam.ErrCompleted) {
			ws.WriteError(conn, string(response.ErrInternal), err.Error())
			return
		}
	}

	events := rt.Subscribe()

	// Writer loop: one goroutine owns the connection writes.
	outbound := make(chan interface{}, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range outbound {
			if err := ws.WriteTyped(conn, msg); err != nil {
				return
			}
		}
	}()

	// Event pump: controller transitions to outbound frames.
	pumpDone := make(chan struct{})
	go func() {
		defer close(pumpDone)
		for ev := range events {
			select {
			case outbound <- transitionFrame(ev):
			case <-done:
				return
			}
		}
	}()

	// Teardown order matters: stop the pump before closing its target.
	defer func() {
		rt.Unsubscribe(events)
		<-pumpDone
		close(outbound)
	}()

	outbound <- ws.StateResponse{Event: ws.EventState, State: ctl.State()}

	for {
		raw := make(map[string]interface{})
		if err := ws.ReadJSON(conn, &raw); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		frame, ok := h.dispatch(ctl, raw)
		if !ok {
			continue
		}
		select {
		case outbound <- frame:
		case <-done:
			return
		}
	}
}

// dispatch applies one client action and returns the response frame.
func (h *WSHandler) dispatch(ctl *exam.Controller, raw map[string]interface{}) (interface{}, bool) {
	action, _ := raw["action"].(string)

	var err error
	switch ws.Action(action) {
	case ws.ActionPing:
		return ws.PongResponse{Event: ws.EventPong}, true
	case ws.ActionAnswer:
		value, _ := raw["value"].(string)
		err = ctl.SetAnswer(value)
	case ws.ActionSaveNext:
		err = ctl.SaveAndNext()
	case ws.ActionMark:
		err = ctl.MarkForReview()
	case ws.ActionClear:
		err = ctl.ClearResponse()
	case ws.ActionNavigate:
		question, _ := raw["question"].(float64)
		err = ctl.Navigate(int(question))
	case ws.ActionSwitchSection:
		section, _ := raw["section"].(float64)
		err = ctl.RequestSwitch(int(section))
	case ws.ActionSubmit:
		err = ctl.RequestSubmit()
	case ws.ActionConfirm:
		err = ctl.Confirm()
	case ws.ActionCancel:
		ctl.Cancel()
	default:
		return ws.ErrorResponse{Event: ws.EventError, Code: string(response.ErrInvalidPayload), Error: "unknown action"}, true
	}

	if err != nil {
		code, msg := mapAttemptError(err)
		return ws.ErrorResponse{Event: ws.EventError, Code: code, Error: msg}, true
	}
	return ws.StateResponse{Event: ws.EventState, State: ctl.State()}, true
}

func transitionFrame(ev exam.Event) ws.TransitionResponse {
	frame := ws.TransitionResponse{
		Event:            ws.Event(ev.Kind),
		Section:          ev.Section,
		RemainingSeconds: ev.RemainingSeconds,
	}
	if ev.Score != nil {
		frame.Score = ev.Score
	}
	return frame
}

// mapAttemptError translates controller errors to the API error catalog.
func mapAttemptError(err error) (code, msg string) {
	var ec response.ErrCode
	switch {
	case errors.Is(err, exam.ErrCompleted):
		ec = response.ErrAttemptCompleted
	case errors.Is(err, exam.ErrNotInProgress):
		ec = response.ErrAttemptNotStarted
	case errors.Is(err, exam.ErrSectionLocked):
		ec = response.ErrSectionLocked
	case errors.Is(err, exam.ErrSameSection):
		ec = response.ErrSameSection
	case errors.Is(err, exam.ErrBadIndex):
		ec = response.ErrBadIndex
	case errors.Is(err, exam.ErrNoPending):
		ec = response.ErrNoPendingAction
	default:
		ec = response.ErrInternal
	}
	return string(ec), response.GetMessage(ec)
}
