// components/thinking/thinking.go
//
// Guided Turns wizard + thinking-partner chat.
//
// Context
// -------
// Every route here requires a verified subject.  The wizard endpoints load
// and persist whole session documents; the in-request state machine stays
// authoritative when a save fails, so a storage hiccup never blocks the
// user mid-flow (the response just carries saved:false).

package thinking

import (
	"encoding/json"
	"errors"
	"html"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pocketrocks/pocketrocks/internal/ai"
	"github.com/pocketrocks/pocketrocks/internal/auth"
	"github.com/pocketrocks/pocketrocks/internal/component"
	"github.com/pocketrocks/pocketrocks/internal/guard"
	"github.com/pocketrocks/pocketrocks/internal/identity"
	"github.com/pocketrocks/pocketrocks/internal/metrics"
	"github.com/pocketrocks/pocketrocks/internal/session"
	"github.com/pocketrocks/pocketrocks/internal/wizard"
)

// Compile-time assertion: *Component satisfies component.Component.
var _ component.Component = (*Component)(nil)

// Component serves /thinking, /rocks, and the /api/thinking surface.
type Component struct {
	rules    guard.Rules
	cookie   session.Cookie
	verifier identity.Verifier
	repo     *wizard.Repository
	chat     *ai.Service // nil when no model is configured
}

// Name returns the canonical component key.
func (c *Component) Name() string { return "thinking" }

// Init wires storage, guard, and the optional chat model.
func (c *Component) Init(deps component.Deps) error {
	if deps.Verifier == nil {
		return errors.New("thinking: identity verifier is required")
	}
	if deps.DB == nil {
		return errors.New("thinking: database pool is required")
	}
	c.rules = deps.Rules
	c.cookie = deps.Cookie
	c.verifier = deps.Verifier
	c.repo = wizard.NewRepository(deps.DB)
	c.chat = deps.Chat
	return nil
}

// Routes attaches pages and the /api/thinking surface.
func (c *Component) Routes(r chi.Router) {
	r.Group(func(pages chi.Router) {
		pages.Use(guard.RequirePage(c.rules, c.cookie, c.verifier))
		pages.Get("/thinking", c.handleThinkingPage)
		pages.Get("/rocks", c.handleRocksPage)
	})

	r.Get("/login", publicShell("Sign in"))
	r.Get("/signup", publicShell("Create account"))

	r.Group(func(api chi.Router) {
		api.Use(guard.RequireAPI(c.cookie, c.verifier))
		api.Get("/api/thinking/wizard", c.handleWizardGet)
		api.Post("/api/thinking/wizard/complete", c.handleWizardComplete)
		api.Post("/api/thinking", c.handleChat)
	})
}

// Register component at program start.
func init() { component.Register(&Component{}) }

/*──────────────────────────── Wizard API ───────────────────────────────────*/

// wizardView is the session as clients see it.
type wizardView struct {
	OK          bool          `json:"ok"`
	SessionID   string        `json:"sessionId"`
	Step        string        `json:"step"`
	Turns       []wizard.Turn `json:"turns"`
	ActiveIndex int           `json:"activeIndex"`
	Done        bool          `json:"done"`
	Saved       bool          `json:"saved"`
}

func viewOf(s *wizard.Session, saved bool) wizardView {
	return wizardView{
		OK:          true,
		SessionID:   s.ID,
		Step:        s.Step,
		Turns:       s.Turns,
		ActiveIndex: s.ActiveIndex(),
		Done:        s.Done(),
		Saved:       saved,
	}
}

// handleWizardGet resumes the owner's latest session, creating one lazily
// when none exists or the stored document is unreadable.
func (c *Component) handleWizardGet(w http.ResponseWriter, r *http.Request) {
	sub, _ := auth.SubjectFrom(r.Context())

	s, err := c.repo.LoadLatest(r.Context(), sub.ID, wizard.StepGoal)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, viewOf(s, true))
		return
	case errors.Is(err, wizard.ErrNoSession):
		// fall through to a fresh session
	default:
		zap.S().Errorw("wizard load failed", "owner", sub.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"ok":    false,
			"error": "could not load your session",
		})
		return
	}

	s = wizard.NewSession(sub.ID)
	saved := true
	if err := c.repo.Create(r.Context(), s); err != nil {
		saved = false
		zap.S().Warnw("wizard create not persisted", "owner", sub.ID, "error", err)
	}
	writeJSON(w, http.StatusOK, viewOf(s, saved))
}

type completeRequest struct {
	SessionID string `json:"sessionId"`
	TurnID    int    `json:"turnId"`
	Answer    string `json:"answer"`
}

// handleWizardComplete locks one turn.  Machine violations are no-ops:
// the session is returned unchanged with a 4xx so clients resync.
func (c *Component) handleWizardComplete(w http.ResponseWriter, r *http.Request) {
	sub, _ := auth.SubjectFrom(r.Context())

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"ok":    false,
			"error": "sessionId, turnId, and answer are required",
		})
		return
	}

	s, err := c.repo.LoadByID(r.Context(), req.SessionID, sub.ID)
	if errors.Is(err, wizard.ErrNoSession) {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"ok":    false,
			"error": "unknown session",
		})
		return
	}
	if err != nil {
		zap.S().Errorw("wizard load failed", "session", req.SessionID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"ok":    false,
			"error": "could not load your session",
		})
		return
	}

	if err := s.Complete(req.TurnID, req.Answer); err != nil {
		code := http.StatusConflict // wrong turn or already done
		if errors.Is(err, wizard.ErrInvalidAnswer) {
			code = http.StatusBadRequest
		}
		v := viewOf(s, true)
		v.OK = false
		writeJSON(w, code, v)
		return
	}
	metrics.WizardTurnsCompletedTotal.Inc()

	saved := true
	if err := c.repo.Save(r.Context(), s); err != nil {
		saved = false
		zap.S().Warnw("wizard save failed", "session", s.ID, "error", err)
	}
	writeJSON(w, http.StatusOK, viewOf(s, saved))
}

/*──────────────────────────── Chat API ─────────────────────────────────────*/

type chatRequest struct {
	Messages []ai.Message `json:"messages"`
	UserText string       `json:"userText"`
}

func (c *Component) handleChat(w http.ResponseWriter, r *http.Request) {
	if c.chat == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"ok":    false,
			"error": "thinking partner is not configured",
		})
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"ok":    false,
			"error": "malformed request",
		})
		return
	}
	req.UserText = strings.TrimSpace(req.UserText)
	if req.UserText == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"ok":    false,
			"error": "say something first",
		})
		return
	}

	reply, err := c.chat.Reply(r.Context(), req.Messages, req.UserText)
	if err != nil {
		zap.S().Errorw("thinking partner failed", "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"ok":    false,
			"error": "thinking partner unavailable",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"assistantText": reply,
	})
}

/*──────────────────────────── Pages ────────────────────────────────────────*/

func (c *Component) handleThinkingPage(w http.ResponseWriter, r *http.Request) {
	sub, _ := auth.SubjectFrom(r.Context())
	renderShell(w, "Thinking", sub.ID)
}

func (c *Component) handleRocksPage(w http.ResponseWriter, r *http.Request) {
	sub, _ := auth.SubjectFrom(r.Context())
	renderShell(w, "Rocks", sub.ID)
}

func publicShell(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		renderShell(w, title, "")
	}
}

// renderShell writes the minimal HTML frame the client app boots from.
func renderShell(w http.ResponseWriter, title, subject string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var b strings.Builder
	b.WriteString("<!doctype html><html><head><title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString(" · PocketRocks</title></head><body data-app=\"pocketrocks\"")
	if subject != "" {
		b.WriteString(" data-subject=\"")
		b.WriteString(html.EscapeString(subject))
		b.WriteString("\"")
	}
	b.WriteString("><div id=\"root\"></div></body></html>")
	_, _ = w.Write([]byte(b.String()))
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
