// Package api provides the HTTP API for observing and steering a run.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/talgya/ascent/internal/engine"
	"github.com/talgya/ascent/internal/faction"
	"github.com/talgya/ascent/internal/llm"
	"github.com/talgya/ascent/internal/persistence"
)

// Server serves the race state over HTTP.
type Server struct {
	Game   *engine.Game
	Runner *engine.Runner
	LLM    *llm.Client
	DB     *persistence.DB

	// Guards Game against the turn loop. The runner takes the write lock
	// for the duration of each ResolveTurn; handlers take the read lock.
	Mu *sync.RWMutex

	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	// Player choices queued for the next turn.
	choicesMu sync.Mutex
	pending   []engine.ActionChoice

	// Cached briefing (regenerated at most once per turn).
	briefingMu   sync.Mutex
	cachedBrief  *llm.Briefing
	lastBriefing int
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	briefingLimiter := NewRateLimiter(30, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only; anyone can watch the race).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/factions", s.handleFactions)
	mux.HandleFunc("/api/v1/faction/", s.handleFactionDetail)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/standings", s.handleStandings)
	mux.HandleFunc("/api/v1/techs", s.handleTechs)
	mux.HandleFunc("/api/v1/actions", s.handleActions)
	mux.HandleFunc("/api/v1/briefing", RateLimitMiddleware(briefingLimiter, s.handleBriefing))

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/choices", s.adminOnly(s.handleChoices))
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no ASCENT_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

// QueueChoices appends player choices for the next turn.
func (s *Server) QueueChoices(choices []engine.ActionChoice) {
	s.choicesMu.Lock()
	defer s.choicesMu.Unlock()
	s.pending = append(s.pending, choices...)
}

// DrainChoices returns and clears the queued player choices. Called by the
// turn loop just before resolution.
func (s *Server) DrainChoices() []engine.ActionChoice {
	s.choicesMu.Lock()
	defer s.choicesMu.Unlock()
	out := s.pending
	s.pending = nil
	return out
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	g := s.Game
	status := map[string]any{
		"name":          "ASCENT",
		"turn":          g.Turn,
		"date":          g.Date(),
		"year":          g.Year,
		"quarter":       g.Quarter,
		"player":        g.PlayerID,
		"global_safety": g.GlobalSafety,
		"factions":      len(g.Factions),
		"speed":         s.Runner.Speed(),
		"running":       s.Runner.Running(),
		"over":          g.Over,
	}
	if g.Over {
		status["winner"] = g.WinnerID
		status["loser"] = g.LoserID
		status["victory_type"] = g.VictoryType
		status["loss_type"] = g.LossType
	}
	writeJSON(w, status)
}

type factionSummary struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Kind          string  `json:"kind"`
	Capability    float64 `json:"capability"`
	Safety        float64 `json:"safety"`
	Trust         float64 `json:"trust"`
	Influence     float64 `json:"influence"`
	PublicOpinion float64 `json:"public_opinion"`
	CanDeployAGI  bool    `json:"can_deploy_agi"`
}

func summarize(f *faction.Faction) factionSummary {
	return factionSummary{
		ID:            f.ID,
		Name:          f.Name,
		Kind:          f.Kind.String(),
		Capability:    f.Capability,
		Safety:        f.Safety,
		Trust:         f.Resources.Trust,
		Influence:     f.Resources.Influence,
		PublicOpinion: f.PublicOpinion,
		CanDeployAGI:  f.CanDeployAGI,
	}
}

func (s *Server) handleFactions(w http.ResponseWriter, r *http.Request) {
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	result := make([]factionSummary, 0, len(s.Game.Factions))
	for _, f := range s.Game.Factions {
		result = append(result, summarize(f))
	}
	writeJSON(w, result)
}

func (s *Server) handleFactionDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 || parts[4] == "" {
		http.Error(w, "missing faction id", http.StatusBadRequest)
		return
	}
	id := parts[4]

	s.Mu.RLock()
	defer s.Mu.RUnlock()

	f := s.Game.Index[id]
	if f == nil {
		http.Error(w, "faction not found", http.StatusNotFound)
		return
	}

	unlocked := make([]string, 0, len(f.Unlocked))
	for _, techID := range s.Game.Catalog.TechOrder {
		if f.Unlocked[techID] {
			unlocked = append(unlocked, techID)
		}
	}

	tensions := make(map[string]float64)
	for key, v := range s.Game.Tensions {
		a, b, _ := strings.Cut(key, "|")
		switch id {
		case a:
			tensions[b] = v
		case b:
			tensions[a] = v
		}
	}

	result := map[string]any{
		"id":             f.ID,
		"name":           f.Name,
		"kind":           f.Kind.String(),
		"capability":     f.Capability,
		"safety":         f.Safety,
		"safety_culture": f.SafetyCulture,
		"opsec":          f.Opsec,
		"exposure":       f.Exposure,
		"public_opinion": f.PublicOpinion,
		"security_level": f.SecurityLevel,
		"can_deploy_agi": f.CanDeployAGI,
		"resources": map[string]float64{
			"compute":   f.Resources.Compute,
			"talent":    f.Resources.Talent,
			"capital":   f.Resources.Capital,
			"data":      f.Resources.Data,
			"influence": f.Resources.Influence,
			"trust":     f.Resources.Trust,
		},
		"research":  f.Research,
		"unlocked":  unlocked,
		"allies":    s.Game.Alliances[id],
		"tensions":  tensions,
	}
	writeJSON(w, result)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	s.Mu.RLock()
	defer s.Mu.RUnlock()

	events := s.Game.Events

	// Optional category filter.
	if category := r.URL.Query().Get("category"); category != "" {
		var filtered []engine.Event
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	start := 0
	if len(events) > limit {
		start = len(events) - limit
	}
	writeJSON(w, events[start:])
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	standings := make([]factionSummary, 0, len(s.Game.Factions))
	for _, f := range s.Game.Factions {
		standings = append(standings, summarize(f))
	}
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Capability > standings[j].Capability
	})

	writeJSON(w, map[string]any{
		"date":          s.Game.Date(),
		"global_safety": s.Game.GlobalSafety,
		"standings":     standings,
	})
}

func (s *Server) handleTechs(w http.ResponseWriter, r *http.Request) {
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	type techEntry struct {
		ID         string   `json:"id"`
		Name       string   `json:"name"`
		Branch     string   `json:"branch"`
		Cost       float64  `json:"cost"`
		Prereqs    []string `json:"prereqs,omitempty"`
		UnlockedBy []string `json:"unlocked_by,omitempty"`
	}

	result := make([]techEntry, 0, len(s.Game.Catalog.TechOrder))
	for _, id := range s.Game.Catalog.TechOrder {
		t := s.Game.Catalog.Techs[id]
		entry := techEntry{
			ID:      t.ID,
			Name:    t.Name,
			Branch:  string(t.Branch),
			Cost:    t.Cost,
			Prereqs: t.Prereqs,
		}
		for _, f := range s.Game.Factions {
			if f.Unlocked[id] {
				entry.UnlockedBy = append(entry.UnlockedBy, f.ID)
			}
		}
		result = append(result, entry)
	}
	writeJSON(w, result)
}

func (s *Server) handleActions(w http.ResponseWriter, r *http.Request) {
	s.Mu.RLock()
	defer s.Mu.RUnlock()

	type actionEntry struct {
		ID              string   `json:"id"`
		Name            string   `json:"name"`
		AllowedFor      []string `json:"allowed_for"`
		FactionSpecific string   `json:"faction_specific,omitempty"`
	}

	result := make([]actionEntry, 0, len(s.Game.Catalog.ActionOrder))
	for _, id := range s.Game.Catalog.ActionOrder {
		a := s.Game.Catalog.Actions[id]
		result = append(result, actionEntry{
			ID:              a.ID,
			Name:            a.Name,
			AllowedFor:      a.AllowedFor,
			FactionSpecific: a.FactionSpecific,
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleBriefing(w http.ResponseWriter, r *http.Request) {
	s.briefingMu.Lock()
	defer s.briefingMu.Unlock()

	s.Mu.RLock()
	currentTurn := s.Game.Turn

	// Return cached briefing if still from this turn.
	if s.cachedBrief != nil && s.lastBriefing == currentTurn {
		s.Mu.RUnlock()
		writeJSON(w, s.cachedBrief)
		return
	}

	data := s.buildBriefingData()
	s.Mu.RUnlock()

	brief, err := llm.GenerateBriefing(s.LLM, data)
	if err != nil {
		slog.Error("briefing generation failed", "error", err)
		http.Error(w, "briefing generation failed", http.StatusInternalServerError)
		return
	}

	s.cachedBrief = brief
	s.lastBriefing = currentTurn
	writeJSON(w, brief)
}

// buildBriefingData snapshots the race for the analyst. Caller holds at
// least the read lock.
func (s *Server) buildBriefingData() *llm.BriefingData {
	g := s.Game
	data := &llm.BriefingData{
		Date:         g.Date(),
		Turn:         g.Turn,
		GlobalSafety: g.GlobalSafety,
	}

	for _, f := range g.Factions {
		data.Standings = append(data.Standings, llm.FactionSummary{
			Name:       f.Name,
			Kind:       f.Kind.String(),
			Capability: f.Capability,
			Safety:     f.Safety,
			Trust:      f.Resources.Trust,
			Influence:  f.Resources.Influence,
		})
	}

	// Last two turns of events, bucketed for the prompt.
	for _, e := range g.Events {
		if e.Turn < g.Turn-1 {
			continue
		}
		switch e.Category {
		case "tech":
			data.Research = append(data.Research, e.Description)
		case "diplomacy":
			data.Diplomacy = append(data.Diplomacy, e.Description)
		case "espionage", "detection", "endgame":
			data.Incidents = append(data.Incidents, e.Description)
		case "action", "policy":
			data.Policy = append(data.Policy, e.Description)
		}
	}

	return data
}

func (s *Server) handleChoices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Choices []engine.ActionChoice `json:"choices"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if len(req.Choices) == 0 {
		http.Error(w, "no choices given", http.StatusBadRequest)
		return
	}

	s.Mu.RLock()
	maxActions := s.Game.Cfg.MaxActionsPerTurn
	for i, c := range req.Choices {
		if !s.Game.Catalog.HasAction(c.ActionID) {
			s.Mu.RUnlock()
			http.Error(w, fmt.Sprintf("unknown action %q", c.ActionID), http.StatusBadRequest)
			return
		}
		switch c.Openness {
		case engine.Open, engine.Secret:
		case "":
			req.Choices[i].Openness = engine.Open
		default:
			s.Mu.RUnlock()
			http.Error(w, fmt.Sprintf("invalid openness %q", c.Openness), http.StatusBadRequest)
			return
		}
	}
	s.Mu.RUnlock()

	if len(req.Choices) > maxActions {
		req.Choices = req.Choices[:maxActions]
	}

	s.QueueChoices(req.Choices)
	slog.Info("player choices queued", "count", len(req.Choices))
	writeJSON(w, map[string]any{"queued": len(req.Choices)})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Runner.SetSpeed(req.Speed)
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Runner.Speed()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	s.Mu.RLock()
	err := s.DB.SaveGame(s.Game)
	turn := s.Game.Turn
	s.Mu.RUnlock()
	if err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"turn":    turn,
		"message": "snapshot saved",
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
