// Package advisor implements the autonomous player-side strategist.
// It observes the race via the API, picks actions via Haiku, and submits
// them through the admin choices endpoint.
package advisor

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RaceSnapshot holds all data collected during an observation cycle.
type RaceSnapshot struct {
	Status    RaceStatus    `json:"status"`
	Standings StandingsData `json:"standings"`
	Faction   FactionDetail `json:"faction"`
	Events    []EventInfo   `json:"events"`
	Actions   []ActionInfo  `json:"actions"`
}

// RaceStatus mirrors GET /api/v1/status.
type RaceStatus struct {
	Name         string  `json:"name"`
	Turn         int     `json:"turn"`
	Date         string  `json:"date"`
	Player       string  `json:"player"`
	GlobalSafety float64 `json:"global_safety"`
	Speed        float64 `json:"speed"`
	Running      bool    `json:"running"`
	Over         bool    `json:"over"`
	VictoryType  string  `json:"victory_type"`
}

// StandingsData mirrors GET /api/v1/standings.
type StandingsData struct {
	Date         string        `json:"date"`
	GlobalSafety float64       `json:"global_safety"`
	Standings    []FactionInfo `json:"standings"`
}

// FactionInfo mirrors items from GET /api/v1/factions.
type FactionInfo struct {
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

// FactionDetail mirrors GET /api/v1/faction/{id}.
type FactionDetail struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	Kind          string             `json:"kind"`
	Capability    float64            `json:"capability"`
	Safety        float64            `json:"safety"`
	Exposure      float64            `json:"exposure"`
	CanDeployAGI  bool               `json:"can_deploy_agi"`
	Resources     map[string]float64 `json:"resources"`
	Unlocked      []string           `json:"unlocked"`
	Allies        []string           `json:"allies"`
	Tensions      map[string]float64 `json:"tensions"`
}

// EventInfo mirrors items from GET /api/v1/events.
type EventInfo struct {
	Turn        int    `json:"turn"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// ActionInfo mirrors items from GET /api/v1/actions.
type ActionInfo struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	AllowedFor      []string `json:"allowed_for"`
	FactionSpecific string   `json:"faction_specific,omitempty"`
}

// Observer fetches race state from the API.
type Observer struct {
	BaseURL    string
	FactionID  string
	HTTPClient *http.Client
}

// NewObserver creates an Observer targeting the given API base URL.
func NewObserver(baseURL, factionID string) *Observer {
	return &Observer{
		BaseURL:   baseURL,
		FactionID: factionID,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Observe fetches all five endpoints and returns a RaceSnapshot.
func (o *Observer) Observe() (*RaceSnapshot, error) {
	snap := &RaceSnapshot{}

	if err := o.fetchJSON("/api/v1/status", &snap.Status); err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	if err := o.fetchJSON("/api/v1/standings", &snap.Standings); err != nil {
		return nil, fmt.Errorf("fetch standings: %w", err)
	}
	if err := o.fetchJSON("/api/v1/faction/"+o.FactionID, &snap.Faction); err != nil {
		return nil, fmt.Errorf("fetch faction: %w", err)
	}
	if err := o.fetchJSON("/api/v1/events?limit=25", &snap.Events); err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	if err := o.fetchJSON("/api/v1/actions", &snap.Actions); err != nil {
		return nil, fmt.Errorf("fetch actions: %w", err)
	}

	return snap, nil
}

// fetchJSON GETs a path and decodes the JSON response into target.
func (o *Observer) fetchJSON(path string, target any) error {
	resp, err := o.HTTPClient.Get(o.BaseURL + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("GET %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
