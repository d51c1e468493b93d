// Package persistence provides SQLite-based game state storage.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/ascent/internal/engine"
	"github.com/talgya/ascent/internal/faction"
)

// DB wraps a SQLite connection for game state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS factions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		capability REAL NOT NULL,
		safety REAL NOT NULL,
		safety_culture REAL NOT NULL,
		opsec REAL NOT NULL,
		exposure REAL NOT NULL,
		public_opinion REAL NOT NULL,
		security_level INTEGER NOT NULL,
		can_deploy_agi INTEGER NOT NULL,
		resources_json TEXT NOT NULL,
		research_json TEXT NOT NULL,
		unlocked_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		turn INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_turn ON events(turn);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveFactions writes all factions to the database (full replace).
func (db *DB) SaveFactions(factions []*faction.Faction) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM factions"); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO factions
		(id, name, kind, capability, safety, safety_culture, opsec, exposure,
		 public_opinion, security_level, can_deploy_agi,
		 resources_json, research_json, unlocked_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range factions {
		resourcesJSON, _ := json.Marshal(f.Resources)
		researchJSON, _ := json.Marshal(f.Research)
		unlockedJSON, _ := json.Marshal(f.Unlocked)

		canDeploy := 0
		if f.CanDeployAGI {
			canDeploy = 1
		}

		_, err := stmt.Exec(
			f.ID, f.Name, f.Kind.String(),
			f.Capability, f.Safety, f.SafetyCulture, f.Opsec, f.Exposure,
			f.PublicOpinion, f.SecurityLevel, canDeploy,
			string(resourcesJSON), string(researchJSON), string(unlockedJSON),
		)
		if err != nil {
			return fmt.Errorf("insert faction %s: %w", f.ID, err)
		}
	}

	return tx.Commit()
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (turn, description, category) VALUES (?, ?, ?)",
			e.Turn, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveMeta stores a key-value pair in run metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO run_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM run_meta WHERE key = ?", key)
	return value, err
}

// HasSavedGame reports whether the database holds a resumable run.
func (db *DB) HasSavedGame() bool {
	_, err := db.GetMeta("turn")
	return err == nil
}

// SaveGame performs a full save of the run. Events are saved incrementally:
// only entries past the recorded high-water mark are appended.
func (db *DB) SaveGame(g *engine.Game) error {
	slog.Info("saving game state", "turn", g.Turn, "factions", len(g.Factions))

	if err := db.SaveFactions(g.Factions); err != nil {
		return fmt.Errorf("save factions: %w", err)
	}

	saved := 0
	if v, err := db.GetMeta("events_saved"); err == nil {
		saved, _ = strconv.Atoi(v)
	}
	if saved > len(g.Events) {
		saved = 0
	}
	if err := db.SaveEvents(g.Events[saved:]); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	if err := db.SaveMeta("events_saved", strconv.Itoa(len(g.Events))); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}

	if _, err := db.GetMeta("run_id"); errors.Is(err, sql.ErrNoRows) {
		if err := db.SaveMeta("run_id", uuid.NewString()); err != nil {
			return fmt.Errorf("save meta: %w", err)
		}
	}

	alliancesJSON, _ := json.Marshal(g.Alliances)
	tensionsJSON, _ := json.Marshal(g.Tensions)
	treatiesJSON, _ := json.Marshal(g.Treaties)

	meta := map[string]string{
		"turn":          strconv.Itoa(g.Turn),
		"year":          strconv.Itoa(g.Year),
		"quarter":       strconv.Itoa(g.Quarter),
		"player":        g.PlayerID,
		"global_safety": strconv.FormatFloat(g.GlobalSafety, 'f', -1, 64),
		"over":          strconv.FormatBool(g.Over),
		"winner":        g.WinnerID,
		"loser":         g.LoserID,
		"victory_type":  g.VictoryType,
		"loss_type":     g.LossType,
		"alliances":     string(alliancesJSON),
		"tensions":      string(tensionsJSON),
		"treaties":      string(treatiesJSON),
	}
	for key, value := range meta {
		if err := db.SaveMeta(key, value); err != nil {
			return fmt.Errorf("save meta %s: %w", key, err)
		}
	}

	slog.Info("game state saved")
	return nil
}

// LoadGame restores a saved run into the game. The game must already be
// constructed with the same catalog and roster ids as the saved run.
func (db *DB) LoadGame(g *engine.Game) error {
	type factionRow struct {
		ID            string  `db:"id"`
		Name          string  `db:"name"`
		Kind          string  `db:"kind"`
		Capability    float64 `db:"capability"`
		Safety        float64 `db:"safety"`
		SafetyCulture float64 `db:"safety_culture"`
		Opsec         float64 `db:"opsec"`
		Exposure      float64 `db:"exposure"`
		PublicOpinion float64 `db:"public_opinion"`
		SecurityLevel float64 `db:"security_level"`
		CanDeployAGI  int     `db:"can_deploy_agi"`
		ResourcesJSON string  `db:"resources_json"`
		ResearchJSON  string  `db:"research_json"`
		UnlockedJSON  string  `db:"unlocked_json"`
	}

	var rows []factionRow
	if err := db.conn.Select(&rows, "SELECT * FROM factions"); err != nil {
		return fmt.Errorf("load factions: %w", err)
	}

	for _, row := range rows {
		f := g.Index[row.ID]
		if f == nil {
			return fmt.Errorf("saved faction %q not in roster", row.ID)
		}
		f.Capability = row.Capability
		f.Safety = row.Safety
		f.SafetyCulture = row.SafetyCulture
		f.Opsec = row.Opsec
		f.Exposure = row.Exposure
		f.PublicOpinion = row.PublicOpinion
		f.SecurityLevel = row.SecurityLevel
		f.CanDeployAGI = row.CanDeployAGI != 0
		if err := json.Unmarshal([]byte(row.ResourcesJSON), &f.Resources); err != nil {
			return fmt.Errorf("faction %s resources: %w", row.ID, err)
		}
		if err := json.Unmarshal([]byte(row.ResearchJSON), &f.Research); err != nil {
			return fmt.Errorf("faction %s research: %w", row.ID, err)
		}
		if err := json.Unmarshal([]byte(row.UnlockedJSON), &f.Unlocked); err != nil {
			return fmt.Errorf("faction %s unlocked: %w", row.ID, err)
		}
	}

	getInt := func(key string) (int, error) {
		v, err := db.GetMeta(key)
		if err != nil {
			return 0, fmt.Errorf("load meta %s: %w", key, err)
		}
		return strconv.Atoi(v)
	}

	var err error
	if g.Turn, err = getInt("turn"); err != nil {
		return err
	}
	if g.Year, err = getInt("year"); err != nil {
		return err
	}
	if g.Quarter, err = getInt("quarter"); err != nil {
		return err
	}

	if v, err := db.GetMeta("global_safety"); err == nil {
		g.GlobalSafety, _ = strconv.ParseFloat(v, 64)
	}
	if v, err := db.GetMeta("over"); err == nil {
		g.Over, _ = strconv.ParseBool(v)
	}
	g.WinnerID, _ = db.GetMeta("winner")
	g.LoserID, _ = db.GetMeta("loser")
	g.VictoryType, _ = db.GetMeta("victory_type")
	g.LossType, _ = db.GetMeta("loss_type")

	if v, err := db.GetMeta("alliances"); err == nil {
		if err := json.Unmarshal([]byte(v), &g.Alliances); err != nil {
			return fmt.Errorf("load alliances: %w", err)
		}
	}
	if v, err := db.GetMeta("tensions"); err == nil {
		if err := json.Unmarshal([]byte(v), &g.Tensions); err != nil {
			return fmt.Errorf("load tensions: %w", err)
		}
	}
	if v, err := db.GetMeta("treaties"); err == nil {
		if err := json.Unmarshal([]byte(v), &g.Treaties); err != nil {
			return fmt.Errorf("load treaties: %w", err)
		}
	}

	slog.Info("game state loaded", "turn", g.Turn, "factions", len(rows))
	return nil
}

// RecentEvents returns the most recent N events.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT turn, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}
