package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sofos1231/socialos-server/internal/config"
	"github.com/sofos1231/socialos-server/internal/engine"
	"github.com/sofos1231/socialos-server/internal/events"
	"github.com/sofos1231/socialos-server/internal/infra/ai"
	"github.com/sofos1231/socialos-server/internal/infra/cache"
	"github.com/sofos1231/socialos-server/internal/infra/storage"
	"github.com/sofos1231/socialos-server/internal/network"
	"github.com/sofos1231/socialos-server/internal/platform/logger"
	"github.com/sofos1231/socialos-server/internal/platform/metrics"
	"github.com/sofos1231/socialos-server/internal/tuning"
)

// sqliteEventPersister adapts the SQLite event repository to the turn
// log's persister interface.
type sqliteEventPersister struct {
	repo *storage.SQLiteEventRepository
}

func (p *sqliteEventPersister) Append(event events.TurnEvent) error {
	var payload map[string]interface{}
	if event.Payload != nil {
		raw, err := json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode event payload: %w", err)
		}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("failed to normalize event payload: %w", err)
		}
	}
	return p.repo.Append(context.Background(), storage.TurnEvent{
		ID:        event.ID,
		SessionID: event.SessionID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		Turn:      event.Turn,
		Payload:   payload,
	})
}

// sqliteSessionSaver adapts the session repository to the hub's
// persister interface.
type sqliteSessionSaver struct {
	repo *storage.SQLiteSessionRepository
}

func (p *sqliteSessionSaver) SaveSession(ctx context.Context, s *engine.Session, active bool) error {
	snap, err := storage.MarshalSnapshot(s.ID, s.Mission, s.State, active)
	if err != nil {
		return err
	}
	return p.repo.Upsert(ctx, snap)
}

func main() {
	log := logger.NewLogger()
	log.Info("starting mission server...")

	cfg, err := config.Load()
	if err != nil {
		log.Error("configuration error: " + err.Error())
		os.Exit(1)
	}

	db, err := storage.InitSQLite(cfg.DBPath)
	if err != nil {
		log.Error("failed to initialize sqlite: " + err.Error())
		os.Exit(1)
	}
	defer db.Close()
	log.Info("sqlite ready at " + cfg.DBPath)

	eventRepo := storage.NewSQLiteEventRepository(db)
	sessionRepo := storage.NewSQLiteSessionRepository(db)
	turnLog := events.NewTurnLog(&sqliteEventPersister{repo: eventRepo})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var provider tuning.Provider
	if cfg.RedisAddr != "" {
		source, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			// Tuning is an optimization, not a dependency. Run on defaults.
			log.Warn("redis unavailable, running on default tuning: " + err.Error())
			provider = tuning.NewStatic(tuning.Defaults())
		} else {
			provider = tuning.NewRevisionCache(source, log)
			log.Info("tuning served from redis at " + cfg.RedisAddr)
		}
	} else {
		provider = tuning.NewStatic(tuning.Defaults())
		log.Info("no redis configured, running on default tuning")
	}

	eng, err := engine.NewEngine(turnLog, provider, log)
	if err != nil {
		log.Error("engine startup failed: " + err.Error())
		os.Exit(1)
	}

	restored, err := restoreSessions(ctx, eng, sessionRepo)
	if err != nil {
		log.Warn("session restore failed: " + err.Error())
	} else if restored > 0 {
		log.Info(fmt.Sprintf("restored %d active sessions", restored))
	}

	hub := network.NewHub(eng, &sqliteSessionSaver{repo: sessionRepo}, log)
	hub.DefaultMaxMessages = cfg.DefaultMaxMessages
	if cfg.OpenAIKey != "" {
		hub.Responder = ai.NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel)
		log.Info("persona replies enabled via " + hub.Responder.Name())
	}
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		network.ServeWS(hub, w, r)
	})
	mux.HandleFunc("/metrics", metrics.Get().Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}

	go func() {
		log.Info("listening on " + cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server failed: " + err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error: " + err.Error())
	}
	log.Info("goodbye")
}

func restoreSessions(ctx context.Context, eng *engine.Engine, repo *storage.SQLiteSessionRepository) (int, error) {
	snaps, err := repo.GetActive(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, snap := range snaps {
		s := &engine.Session{ID: snap.SessionID}
		if err := json.Unmarshal(snap.MissionJSON, &s.Mission); err != nil {
			continue
		}
		if err := json.Unmarshal(snap.StateJSON, &s.State); err != nil {
			continue
		}
		eng.RestoreSession(s)
		count++
	}
	return count, nil
}
