package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"gridware.ai/internal/persistence/indexdb"
	persistlog "gridware.ai/internal/persistence/log"
	"gridware.ai/internal/sim/scenario"
	"gridware.ai/internal/sim/warehouse"
	"gridware.ai/internal/transport/ws"
)

func main() {
	var (
		addr         = flag.String("addr", ":8080", "http listen address")
		scenarioPath = flag.String("scenario", "", "scenario yaml path (empty: built-in defaults)")
		dataDir      = flag.String("data", "./data", "runtime data directory")
		seed         = flag.Int64("seed", 0, "seed override (0: use scenario seed)")
		disableDB    = flag.Bool("disable_db", false, "disable the sqlite results index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := scenario.Load(*scenarioPath)
	if err != nil {
		logger.Fatalf("load scenario: %v", err)
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}

	// The handshake builds a kernel per session; construct one up front so
	// configuration inconsistencies abort startup, not the first learner.
	probe, err := warehouse.New(cfg)
	if err != nil {
		logger.Fatalf("scenario %s: %v", cfg.ID, err)
	}
	logger.Printf("scenario %s: agents=%d actions=%d obs=%d state=%d limit=%d",
		cfg.ID, probe.NumAgents(), probe.NumActions(), probe.ObsSize(), probe.StateSize(), probe.MaxSteps())

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.Open(filepath.Join(*dataDir, "index.db"))
		if err != nil {
			logger.Fatalf("open results index: %v", err)
		}
		defer idx.Close()
	}

	sink := func(sessionID string, cfg warehouse.Config) ws.SessionSink {
		return newSessionSink(*dataDir, sessionID, cfg, idx, logger)
	}

	server := ws.NewServer(cfg, logger, sink)
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", server.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	httpServer := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("listening on %s", *addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("http: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Printf("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
}

// sessionSink fans session output into the compressed tick log and the
// sqlite results index.
type sessionSink struct {
	sessionID string
	tickLog   *persistlog.TickLogger
	idx       *indexdb.SQLiteIndex
	logger    *log.Logger
}

func newSessionSink(dataDir, sessionID string, cfg warehouse.Config, idx *indexdb.SQLiteIndex, logger *log.Logger) *sessionSink {
	s := &sessionSink{
		sessionID: sessionID,
		tickLog:   persistlog.NewTickLogger(filepath.Join(dataDir, "sessions", sessionID)),
		idx:       idx,
		logger:    logger,
	}
	if idx != nil {
		idx.RecordSession(indexdb.SessionRow{
			Session:   sessionID,
			Scenario:  cfg.ID,
			Seed:      cfg.Seed,
			NumAgents: cfg.NumAgents,
			StartedAt: time.Now(),
		})
	}
	return s
}

func (s *sessionSink) WriteTick(entry warehouse.TickLogEntry) error {
	if s.idx != nil {
		s.idx.RecordTick(s.sessionID, entry)
	}
	return s.tickLog.WriteTick(entry)
}

func (s *sessionSink) EpisodeDone(episode, steps, deliveries int, returns []float64, completed bool) {
	s.logger.Printf("session %s: episode %d done steps=%d deliveries=%d completed=%v",
		s.sessionID, episode, steps, deliveries, completed)
	if s.idx != nil {
		s.idx.RecordEpisode(indexdb.EpisodeRow{
			Session:    s.sessionID,
			Episode:    episode,
			Steps:      steps,
			Deliveries: deliveries,
			Returns:    returns,
			Completed:  completed,
		})
	}
}

func (s *sessionSink) Close() error {
	return s.tickLog.Close()
}
