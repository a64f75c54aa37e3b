// Package daemon wires hive-manager's components (store, PTY manager,
// event bus, injection manager, session controller, stall monitor, HTTP
// API) into a single running process and serves them on loopback HTTP.
//
// It exists so cmd/hived's standalone daemon binary and hivectl's
// embedded "serve" subcommand share one bootstrap path instead of
// duplicating wiring, mirroring how agentium's cmd/controller/main.go
// keeps all wiring in main() but factors the reusable part out once a
// second caller needs it.
package daemon

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/rdfitted/hive-manager/internal/config"
	"github.com/rdfitted/hive-manager/internal/events"
	"github.com/rdfitted/hive-manager/internal/httpapi"
	"github.com/rdfitted/hive-manager/internal/inject"
	"github.com/rdfitted/hive-manager/internal/ptymgr"
	"github.com/rdfitted/hive-manager/internal/session"
	"github.com/rdfitted/hive-manager/internal/store"
)

const shutdownGrace = 5 * time.Second

// Run builds the full component graph and serves the §6 HTTP API on
// loopback until ctx is cancelled. Sessions are rooted at cfg.StoreRoot if
// set, otherwise at defaultStoreRoot (the project directory the caller was
// launched against). It blocks until the server shuts down or returns an
// error starting it.
func Run(ctx context.Context, cfg *config.Config, defaultStoreRoot string, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("daemon: invalid config: %w", err)
	}

	storeRoot := cfg.StoreRoot
	if storeRoot == "" {
		storeRoot = defaultStoreRoot
	}
	st := store.New(storeRoot)
	bus := events.NewBus()
	ptySink := events.NewPTYSink(bus)
	coordSink := events.NewCoordinationSink(bus)

	pty := ptymgr.New(ptySink, logger)
	inj := inject.New(pty, st, coordSink, logger)
	ctrl := session.New(st, pty, inj, cfg, bus, logger)

	if err := ctrl.ResumeAll(); err != nil {
		logger.Printf("daemon: resuming sessions from disk: %v", err)
	}

	stall := session.NewStallMonitor(ctrl)
	stall.Start(ctx)
	defer stall.Stop()

	handler := httpapi.NewHandler(ctrl, inj, st, cfg, logger)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.HTTPPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("daemon: binding %s: %w", addr, err)
	}

	srv := &http.Server{Handler: mux}
	errCh := make(chan error, 1)
	go func() {
		logger.Printf("hived listening on %s", addr)
		errCh <- srv.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("daemon: shutdown: %v", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("daemon: serve: %w", err)
		}
		return nil
	}
}
