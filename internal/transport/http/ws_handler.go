package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"prepify-quiz/internal/app"
	"prepify-quiz/internal/auth"
	"prepify-quiz/internal/domain"
	"prepify-quiz/internal/quiz"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Category string   `json:"category"`
	Subjects []string `json:"subjects"`
	Count    int      `json:"count"`
	Mode     string   `json:"mode"`
	// Clamp starts with every available question instead of failing when fewer than Count match.
	Clamp bool `json:"clamp"`
}

type selectPayload struct {
	Option string `json:"option"`
}

type resultPayload struct {
	Outcome domain.Outcome      `json:"outcome"`
	Review  []domain.ReviewItem `json:"review"`
}

type insufficientPayload struct {
	Requested int `json:"requested"`
	Available int `json:"available"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// attempt is the quiz a connection is currently playing.
type attempt struct {
	sessionID string
	cancel    func()
	done      chan struct{}
}

// ServeWS upgrades an authenticated request to a websocket and lets the caller
// play one quiz at a time over it. Mount behind auth.Middleware.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		http.Error(w, "missing bearer", http.StatusUnauthorized)
		return
	}
	userID := claims.Username

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		broken := false
		for msg := range send {
			if broken {
				// keep draining so producers never block on a dead connection
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				broken = true
			}
		}
	}()

	push := func(typ string, payload any) bool {
		select {
		case send <- outboundMessage[any]{Type: typ, Payload: payload}:
			return true
		case <-closeSignals:
			return false
		}
	}
	fail := func(err error) { push("error", toErrorPayload(err)) }

	var (
		mu      sync.Mutex
		current *attempt
	)
	stop := func() {
		mu.Lock()
		a := current
		current = nil
		mu.Unlock()
		if a == nil {
			return
		}
		h.service.Leave(ctx, a.sessionID)
		a.cancel()
		<-a.done
	}
	sessionID := func() (string, bool) {
		mu.Lock()
		defer mu.Unlock()
		if current == nil {
			return "", false
		}
		return current.sessionID, true
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "start":
			var payload startPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				fail(domain.Invalidf("invalid start payload"))
				continue
			}
			stop()
			a, err := h.start(ctx, userID, payload, push)
			if err != nil {
				var insufficient *domain.InsufficientQuestionsError
				if errors.As(err, &insufficient) {
					push("insufficient", insufficientPayload{Requested: insufficient.Requested, Available: insufficient.Available})
					continue
				}
				fail(err)
				continue
			}
			mu.Lock()
			current = a
			mu.Unlock()
		case "select", "next", "prev":
			id, ok := sessionID()
			if !ok {
				fail(domain.IllegalStatef("no quiz in progress"))
				continue
			}
			if err := h.transition(ctx, id, inbound); err != nil {
				fail(err)
			}
		default:
			fail(domain.Invalidf("unsupported message type %q", inbound.Type))
		}
	}

	close(closeSignals)
	stop()
	close(send)
	<-writerDone
}

// start begins a session and forwards its updates until it ends or is cancelled.
func (h *WSHandler) start(ctx context.Context, userID string, p startPayload, push func(string, any) bool) (*attempt, error) {
	mode, err := domain.ParseMode(p.Mode)
	if err != nil {
		return nil, err
	}
	criteria := quiz.Criteria{Category: p.Category, Subjects: p.Subjects, Count: p.Count, Mode: mode}
	state, err := h.service.Start(ctx, userID, criteria)
	var insufficient *domain.InsufficientQuestionsError
	if p.Clamp && errors.As(err, &insufficient) && insufficient.Available > 0 {
		criteria.Count = insufficient.Available
		state, err = h.service.Start(ctx, userID, criteria)
	}
	if err != nil {
		return nil, err
	}

	updates, cancel, err := h.service.Subscribe(ctx, state.SessionID)
	if err != nil {
		h.service.Leave(ctx, state.SessionID)
		return nil, err
	}
	a := &attempt{sessionID: state.SessionID, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(a.done)
		for update := range updates {
			if !push("state", update) {
				return
			}
			if update.Terminated {
				h.pushResult(ctx, update.SessionID, push)
				return
			}
		}
	}()
	return a, nil
}

func (h *WSHandler) pushResult(ctx context.Context, sessionID string, push func(string, any) bool) {
	outcome, err := h.service.Outcome(ctx, sessionID)
	if err != nil {
		push("error", toErrorPayload(err))
		return
	}
	review, err := h.service.Review(ctx, sessionID)
	if err != nil {
		push("error", toErrorPayload(err))
		return
	}
	push("result", resultPayload{Outcome: outcome, Review: review})
}

func (h *WSHandler) transition(ctx context.Context, sessionID string, inbound inboundMessage) error {
	var err error
	switch inbound.Type {
	case "select":
		var payload selectPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return domain.Invalidf("invalid select payload")
		}
		_, err = h.service.SelectAnswer(ctx, sessionID, payload.Option)
	case "next":
		_, err = h.service.Advance(ctx, sessionID)
	case "prev":
		_, err = h.service.Retreat(ctx, sessionID)
	}
	return err
}

func toErrorPayload(err error) errorPayload {
	return errorPayload{Code: errorCode(err), Message: err.Error()}
}
