package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"gridware.ai/internal/sim/warehouse"
)

// SQLiteIndex is a secondary read-model over training runs: per-episode
// results and per-tick rows for offline analysis. Writes go through a
// buffered channel and a single writer goroutine so the sim loop never
// blocks on the database; entries are dropped under backpressure (the
// JSONL tick logs remain the source of truth).
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqEpisode
	reqSession
	reqBarrier
)

type req struct {
	kind    reqKind
	session string
	tick    warehouse.TickLogEntry
	episode EpisodeRow
	info    SessionRow
	barrier chan struct{}
}

// EpisodeRow summarizes one finished episode.
type EpisodeRow struct {
	Session    string
	Episode    int
	Steps      int
	Deliveries int
	Returns    []float64 // final per-agent episode reward
	Completed  bool      // fully delivered before the step limit
}

// SessionRow describes one learner session.
type SessionRow struct {
	Session   string
	Scenario  string
	Seed      int64
	NumAgents int
	StartedAt time.Time
}

func Open(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads; NORMAL is a decent
	// durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session TEXT PRIMARY KEY,
			scenario TEXT NOT NULL,
			seed INTEGER NOT NULL,
			n_agents INTEGER NOT NULL,
			started_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS episodes (
			session TEXT NOT NULL,
			episode INTEGER NOT NULL,
			steps INTEGER NOT NULL,
			deliveries INTEGER NOT NULL,
			completed INTEGER NOT NULL,
			returns_json TEXT NOT NULL,
			PRIMARY KEY (session, episode)
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			session TEXT NOT NULL,
			episode INTEGER NOT NULL,
			step INTEGER NOT NULL,
			tick INTEGER NOT NULL,
			digest TEXT NOT NULL,
			actions_json TEXT NOT NULL,
			rewards_json TEXT NOT NULL,
			PRIMARY KEY (session, tick)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_ticks_episode ON ticks(session, episode, step);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) RecordSession(row SessionRow) {
	s.enqueue(req{kind: reqSession, info: row})
}

func (s *SQLiteIndex) RecordEpisode(row EpisodeRow) {
	s.enqueue(req{kind: reqEpisode, episode: row})
}

func (s *SQLiteIndex) RecordTick(session string, entry warehouse.TickLogEntry) {
	s.enqueue(req{kind: reqTick, session: session, tick: entry})
}

// enqueue never blocks; it reports whether the request was accepted. A
// send can still lose the race with Close closing the channel, so the
// panic is absorbed here rather than surfaced to the sim loop.
func (s *SQLiteIndex) enqueue(r req) (ok bool) {
	if s == nil || s.closed.Load() {
		return false
	}
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case s.ch <- r:
		return true
	default:
		// Drop if the indexer falls behind.
		return false
	}
}

func (s *SQLiteIndex) loop() {
	for r := range s.ch {
		switch r.kind {
		case reqSession:
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO sessions(session, scenario, seed, n_agents, started_at) VALUES(?,?,?,?,?)`,
				r.info.Session, r.info.Scenario, r.info.Seed, r.info.NumAgents, r.info.StartedAt.UTC().Format(time.RFC3339),
			)
		case reqEpisode:
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO episodes(session, episode, steps, deliveries, completed, returns_json) VALUES(?,?,?,?,?,?)`,
				r.episode.Session, r.episode.Episode, r.episode.Steps, r.episode.Deliveries,
				boolInt(r.episode.Completed), jsonFloats(r.episode.Returns),
			)
		case reqTick:
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO ticks(session, episode, step, tick, digest, actions_json, rewards_json) VALUES(?,?,?,?,?,?,?)`,
				r.session, r.tick.Episode, r.tick.Step, r.tick.Tick, r.tick.Digest,
				jsonInts(r.tick.Actions), jsonFloats(r.tick.Rewards),
			)
		case reqBarrier:
			close(r.barrier)
		}
	}
}

// EpisodeSummaries returns the recorded episodes of a session in order.
func (s *SQLiteIndex) EpisodeSummaries(session string) ([]EpisodeRow, error) {
	rows, err := s.db.Query(
		`SELECT episode, steps, deliveries, completed FROM episodes WHERE session = ? ORDER BY episode`, session)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EpisodeRow
	for rows.Next() {
		r := EpisodeRow{Session: session}
		var completed int
		if err := rows.Scan(&r.Episode, &r.Steps, &r.Deliveries, &completed); err != nil {
			return nil, err
		}
		r.Completed = completed != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// Drain blocks until every previously enqueued write has been applied.
// Safe to call concurrently with Close; a drain that loses that race
// returns immediately.
func (s *SQLiteIndex) Drain() {
	done := make(chan struct{})
	if !s.enqueue(req{kind: reqBarrier, barrier: done}) {
		return
	}
	<-done
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
