// Command flightflow runs the flight-change assistant HTTP service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/randalmurphal/flightflow/pkg/flightflow"
	"github.com/randalmurphal/flightflow/pkg/flightflow/config"
	"github.com/randalmurphal/flightflow/pkg/flightflow/llm"
	"github.com/randalmurphal/flightflow/pkg/flightflow/observability"
	"github.com/randalmurphal/flightflow/pkg/flightflow/records"
	"github.com/randalmurphal/flightflow/pkg/flightflow/server"
	"github.com/randalmurphal/flightflow/pkg/flightflow/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "flightflow:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closeLogger, err := config.SetupLogger(cfg.LogFile, config.ParseLevel(cfg.LogLevel))
	if err != nil {
		return err
	}
	defer closeLogger()
	slog.SetDefault(logger)

	var llmOpts []llm.OpenAIOption
	if cfg.OpenAIBaseURL != "" {
		llmOpts = append(llmOpts, llm.WithBaseURL(cfg.OpenAIBaseURL))
	}
	client, err := llm.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel, llmOpts...)
	if err != nil {
		return fmt.Errorf("llm client: %w", err)
	}

	recordStore, err := openRecordStore(cfg, logger)
	if err != nil {
		return err
	}
	defer recordStore.Close()

	sessionStore, err := openSessionStore(cfg, logger)
	if err != nil {
		return err
	}
	defer sessionStore.Close()

	engineOpts := []flightflow.Option{
		flightflow.WithMaxSteps(cfg.MaxSteps),
	}
	if cfg.MetricsEnabled {
		engineOpts = append(engineOpts, flightflow.WithMetrics(observability.NewMetricsRecorder()))
	}
	if cfg.TracingEnabled {
		engineOpts = append(engineOpts, flightflow.WithTracing(observability.NewSpanManager()))
	}
	engine, err := flightflow.New(client, recordStore, engineOpts...)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	srv := server.New(engine, sessionStore, logger)

	janitorDone := make(chan struct{})
	go expireSessions(sessionStore, cfg.SessionTTL, logger, janitorDone)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	logger.Info("flightflow listening", "addr", cfg.ListenAddr)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		close(janitorDone)
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}
	close(janitorDone)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// openRecordStore connects to Postgres when configured, otherwise serves the
// built-in demo data from memory.
func openRecordStore(cfg *config.Config, logger *slog.Logger) (records.Store, error) {
	if cfg.DatabaseURL != "" {
		store, err := records.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("record store: %w", err)
		}
		logger.Info("using postgres record store")
		return store, nil
	}
	logger.Info("no DATABASE_URL set, using in-memory record store with demo data")
	return demoRecordStore(), nil
}

// openSessionStore persists sessions to SQLite when configured, otherwise in
// memory (sessions are then lost on restart).
func openSessionStore(cfg *config.Config, logger *slog.Logger) (session.Store, error) {
	if cfg.SessionDBPath != "" {
		store, err := session.NewSQLiteStore(cfg.SessionDBPath)
		if err != nil {
			return nil, fmt.Errorf("session store: %w", err)
		}
		logger.Info("using sqlite session store", "path", cfg.SessionDBPath)
		return store, nil
	}
	logger.Info("no SESSION_DB_PATH set, using in-memory session store")
	return session.NewMemoryStore(), nil
}

// expireSessions periodically removes idle sessions until done is closed.
func expireSessions(store session.Store, ttl time.Duration, logger *slog.Logger, done <-chan struct{}) {
	interval := ttl / 4
	if interval > time.Hour {
		interval = time.Hour
	}
	if interval < time.Minute {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			n, err := store.DeleteExpired(time.Now().Add(-ttl))
			if err != nil {
				logger.Warn("session expiry sweep failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("expired sessions removed", "count", n)
			}
		}
	}
}

// demoRecordStore seeds a memory store with a handful of bookings and
// alternatives for local development.
func demoRecordStore() *records.MemoryStore {
	store := records.NewMemoryStore()

	store.AddTicket(records.TicketRecord{
		TicketNumber:      "ABC1234567890",
		PassengerName:     "John Doe",
		PassengerBirthday: "19.10.1991",
		AirlineCode:       "BA",
		DepartureAirport:  "LHR",
		ArrivalAirport:    "JFK",
		DepartureDate:     "05.03.2026",
		DepartureTime:     "10:30",
		ArrivalDate:       "05.03.2026",
		ArrivalTime:       "13:45",
		ReturnDepAirport:  "JFK",
		ReturnArrAirport:  "LHR",
		ReturnDate:        "12.03.2026",
		ReturnDepTime:     "18:00",
		ReturnArrDate:     "13.03.2026",
		ReturnArrTime:     "06:10",
		PriceUSD:          540,
	})
	store.AddTicket(records.TicketRecord{
		TicketNumber:      "KLM9876543210",
		PassengerName:     "Maria Garcia",
		PassengerBirthday: "02.04.1985",
		AirlineCode:       "KL",
		DepartureAirport:  "AMS",
		ArrivalAirport:    "BCN",
		DepartureDate:     "20.04.2026",
		DepartureTime:     "07:15",
		ArrivalDate:       "20.04.2026",
		ArrivalTime:       "09:30",
		PriceUSD:          180,
	})

	for _, alt := range []records.AlternativeOption{
		{AirlineCode: "VS", DepartureAirport: "LHR", ArrivalAirport: "JFK", DepartureDate: "05.03.2026", DepartureTime: "08:05", ArrivalDate: "05.03.2026", ArrivalTime: "11:20", PriceUSD: 480},
		{AirlineCode: "BA", DepartureAirport: "LHR", ArrivalAirport: "JFK", DepartureDate: "05.03.2026", DepartureTime: "16:40", ArrivalDate: "05.03.2026", ArrivalTime: "19:55", PriceUSD: 425},
		{AirlineCode: "AA", DepartureAirport: "LHR", ArrivalAirport: "JFK", DepartureDate: "06.03.2026", DepartureTime: "09:10", ArrivalDate: "06.03.2026", ArrivalTime: "12:25", PriceUSD: 390},
		{AirlineCode: "KL", DepartureAirport: "AMS", ArrivalAirport: "BCN", DepartureDate: "21.04.2026", DepartureTime: "12:45", ArrivalDate: "21.04.2026", ArrivalTime: "15:00", PriceUSD: 150},
	} {
		store.AddAlternative(alt)
	}

	return store
}
