package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"prepify-quiz/internal/app"
	"prepify-quiz/internal/auth"
	"prepify-quiz/internal/domain"
)

// Deps are the use cases the HTTP surface fronts.
type Deps struct {
	Quiz           *app.QuizService
	Admin          *app.AdminService
	Stats          *app.StatsService
	Accounts       *auth.Service
	Tokens         *auth.Tokens
	AllowedOrigins []string
}

// NewRouter mounts the REST API and the quiz websocket.
func NewRouter(d Deps) http.Handler {
	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	h := &handlers{d: d}
	ws := NewWSHandler(d.Quiz)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Post("/auth/register", h.register)
	r.Post("/auth/login", h.login)

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(d.Tokens, d.Accounts))

		r.Get("/ws", ws.ServeWS)
		r.Get("/categories", h.categories)
		r.Get("/categories/{category}/subjects", h.subjects)
		r.Get("/me/dashboard", h.dashboard)
		r.Get("/me/progress", h.progress)
		r.Get("/me/performance", h.performance)
		r.Get("/me/weakest", h.weakest)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Route("/questions", func(r chi.Router) {
				r.Get("/", h.searchQuestions)
				r.Post("/", h.addQuestion)
				r.Route("/{questionID}", func(r chi.Router) {
					r.Get("/", h.getQuestion)
					r.Put("/", h.updateQuestion)
					r.Delete("/", h.deleteQuestion)
				})
			})
			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.listUsers)
				r.Post("/admins", h.addAdmin)
				r.Delete("/{username}", h.deleteUser)
				r.Put("/{username}/password", h.resetPassword)
			})
		})
	})
	return r
}

type handlers struct {
	d Deps
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token   string `json:"token"`
	IsAdmin bool   `json:"isAdmin"`
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if !decode(w, r, &body) {
		return
	}
	if err := h.d.Accounts.Register(r.Context(), body.Username, body.Password); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if !decode(w, r, &body) {
		return
	}
	user, err := h.d.Accounts.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		writeErr(w, err)
		return
	}
	token, err := h.d.Tokens.Issue(user)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, IsAdmin: user.IsAdmin})
}

func (h *handlers) categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.d.Quiz.Bank().Categories(r.Context())
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cats)
}

func (h *handlers) subjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.d.Quiz.Bank().Subjects(r.Context(), chi.URLParam(r, "category"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subjects)
}

func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	dash, err := h.d.Stats.Dashboard(r.Context(), caller(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dash)
}

func (h *handlers) progress(w http.ResponseWriter, r *http.Request) {
	results, err := h.d.Stats.Progress(r.Context(), caller(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *handlers) performance(w http.ResponseWriter, r *http.Request) {
	perf, err := h.d.Stats.Performance(r.Context(), caller(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, perf)
}

func (h *handlers) weakest(w http.ResponseWriter, r *http.Request) {
	perf, ok, err := h.d.Stats.WeakestSubject(r.Context(), caller(r))
	if err != nil {
		writeErr(w, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, perf)
}

func (h *handlers) searchQuestions(w http.ResponseWriter, r *http.Request) {
	qs, err := h.d.Admin.SearchQuestions(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, qs)
}

func (h *handlers) addQuestion(w http.ResponseWriter, r *http.Request) {
	var q domain.Question
	if !decode(w, r, &q) {
		return
	}
	id, err := h.d.Admin.AddQuestion(r.Context(), q)
	if err != nil {
		writeErr(w, err)
		return
	}
	q.ID = id
	writeJSON(w, http.StatusCreated, q)
}

func (h *handlers) getQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := questionID(w, r)
	if !ok {
		return
	}
	q, err := h.d.Admin.Question(r.Context(), id)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *handlers) updateQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := questionID(w, r)
	if !ok {
		return
	}
	var q domain.Question
	if !decode(w, r, &q) {
		return
	}
	q.ID = id
	if err := h.d.Admin.UpdateQuestion(r.Context(), q); err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *handlers) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := questionID(w, r)
	if !ok {
		return
	}
	if err := h.d.Admin.DeleteQuestion(r.Context(), id); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.d.Accounts.ListUsers(r.Context(), caller(r), r.URL.Query().Get("q"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *handlers) addAdmin(w http.ResponseWriter, r *http.Request) {
	var body credentials
	if !decode(w, r, &body) {
		return
	}
	if err := h.d.Accounts.AddAdmin(r.Context(), body.Username, body.Password); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *handlers) deleteUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == caller(r) {
		writeErr(w, domain.Invalidf("cannot delete your own account"))
		return
	}
	if err := h.d.Accounts.DeleteUser(r.Context(), username); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) resetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}
	if err := h.d.Accounts.ResetPassword(r.Context(), chi.URLParam(r, "username"), body.Password); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func caller(r *http.Request) string {
	claims, _ := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		return ""
	}
	return claims.Username
}

func questionID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "questionID"), 10, 64)
	if err != nil || id <= 0 {
		writeErr(w, domain.Invalidf("bad question id"))
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		writeErr(w, domain.Invalidf("invalid json: %v", err))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errResp struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("request failed: %v", err)
	}
	writeJSON(w, status, errResp{Error: err.Error(), Code: errorCode(err)})
}
