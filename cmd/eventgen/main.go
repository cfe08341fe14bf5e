// Command eventgen generates a synthetic analytics event stream and writes it
// as line-delimited wire records, to stdout, a file, or a PostgreSQL table.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // postgres driver

	"github.com/eventforge/eventgen-go/eventgen"
	"github.com/eventforge/eventgen-go/eventgen/postgressink"
)

func main() {
	var (
		users           = flag.Int("users", 100, "Number of synthetic users to generate")
		eventsPerUser   = flag.Int("events-per-user", 0, "Fixed number of events per user (0 = rate driven)")
		eventRate       = flag.Float64("rate", 0, "Mean events per user per second (0 = budget driven)")
		startOffsetStr  = flag.String("start-offset", "-24h", "Window start offset from now (e.g. -24h)")
		windowStr       = flag.String("window", "24h", "Window length (e.g. 24h, 30m)")
		trackWeight     = flag.Float64("track-weight", 8, "Relative weight of track events")
		userSetWeight   = flag.Float64("user-set-weight", 1, "Relative weight of user_set events")
		userAddWeight   = flag.Float64("user-add-weight", 1, "Relative weight of user_add events")
		rotationChance  = flag.Float64("rotation-chance", 0, "Per-event probability of resampling the user's preset profile")
		workers         = flag.Int("workers", 4, "Number of generation workers")
		seed            = flag.Uint64("seed", 0, "Optional seed for deterministic generation (0 = random)")
		outputPath      = flag.String("out", "-", "Output file for JSONL records ('-' = stdout)")
		postgresDSN     = flag.String("postgres-dsn", "", "Optional PostgreSQL DSN, replaces file output when set")
		postgresTable   = flag.String("postgres-table", "ingestion_events", "PostgreSQL record table name")
		postgresBatch   = flag.Int("postgres-batch", 500, "PostgreSQL insert batch size")
		verbose         = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	startOffset, err := time.ParseDuration(*startOffsetStr)
	if err != nil {
		log.Fatalf("Invalid start-offset: %v", err)
	}

	window, err := time.ParseDuration(*windowStr)
	if err != nil {
		log.Fatalf("Invalid window: %v", err)
	}

	if *eventsPerUser <= 0 && *eventRate <= 0 {
		*eventsPerUser = 50
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	start := time.Now().Add(startOffset)
	cfg := eventgen.SessionConfig{
		UserCount:      *users,
		TimeRangeStart: start,
		TimeRangeEnd:   start.Add(window),
		EventsPerUser:  *eventsPerUser,
		EventRate:      *eventRate,
		EventTypeWeights: map[eventgen.EventType]float64{
			eventgen.EventTypeTrack:   *trackWeight,
			eventgen.EventTypeUserSet: *userSetWeight,
			eventgen.EventTypeUserAdd: *userAddWeight,
		},
		PropertySpecs:         demoPropertySpecs(),
		ProfileRotationChance: *rotationChance,
		Workers:               *workers,
		Seed:                  *seed,
	}

	session, err := eventgen.NewSession(cfg, eventgen.WithLogger(slogLogger{logger}))
	if err != nil {
		log.Fatalf("Invalid session config: %v", err)
	}

	sink, cleanup, err := buildSink(ctx, logger, *outputPath, *postgresDSN, *postgresTable, *postgresBatch)
	if err != nil {
		log.Fatalf("Failed to set up sink: %v", err)
	}

	stats, runErr := session.Run(ctx, sink)

	if cleanupErr := cleanup(); cleanupErr != nil {
		logger.Error("sink cleanup failed", "error", cleanupErr.Error())
	}

	logger.Info("run finished",
		"events_emitted", stats.EventsEmitted,
		"users_created", stats.UsersCreated,
		"candidates_discarded", stats.CandidatesDiscarded,
		"track", stats.EventsByType[eventgen.EventTypeTrack],
		"user_set", stats.EventsByType[eventgen.EventTypeUserSet],
		"user_add", stats.EventsByType[eventgen.EventTypeUserAdd],
	)

	if runErr != nil {
		log.Fatalf("Generation failed: %v", runErr)
	}
}

// demoPropertySpecs gives user_set and user_add events something to carry so
// their type weights are actually drawable out of the box.
func demoPropertySpecs() map[eventgen.EventType][]eventgen.PropertySpec {
	return map[eventgen.EventType][]eventgen.PropertySpec{
		eventgen.EventTypeTrack: {
			{Name: "channel", Dist: eventgen.ChoiceOf(
				eventgen.TextValue("organic"),
				eventgen.TextValue("paid"),
				eventgen.TextValue("referral"),
			)},
			{Name: "session_length", Dist: eventgen.IntRange(5, 1800)},
		},
		eventgen.EventTypeUserSet: {
			{Name: "plan", Dist: eventgen.WeightedChoiceOf(
				eventgen.WeightedValue{Value: eventgen.TextValue("free"), Weight: 6},
				eventgen.WeightedValue{Value: eventgen.TextValue("pro"), Weight: 3},
				eventgen.WeightedValue{Value: eventgen.TextValue("enterprise"), Weight: 1},
			)},
			{Name: "currency", Dist: eventgen.GeoChoiceOf(
				map[string][]eventgen.WeightedValue{
					"US": {{Value: eventgen.TextValue("USD"), Weight: 1}},
					"DE": {{Value: eventgen.TextValue("EUR"), Weight: 1}},
					"CN": {{Value: eventgen.TextValue("CNY"), Weight: 1}},
				},
				eventgen.WeightedValue{Value: eventgen.TextValue("USD"), Weight: 1},
			)},
		},
		eventgen.EventTypeUserAdd: {
			{Name: "total_spend", Dist: eventgen.NumberRange(0.5, 200)},
			{Name: "login_count", Dist: eventgen.IntRange(1, 3)},
		},
	}
}

// buildSink selects the output: a PostgreSQL record table when a DSN is given,
// otherwise JSONL to stdout or a file.
func buildSink(
	ctx context.Context,
	logger *slog.Logger,
	outputPath string,
	dsn string,
	table string,
	batchSize int,
) (eventgen.Sink, func() error, error) {

	if dsn != "" {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("opening postgres connection: %w", err)
		}

		sink, err := postgressink.NewSinkFromSQLDB(db,
			postgressink.WithTableName(table),
			postgressink.WithBatchSize(batchSize),
			postgressink.WithLogger(slogLogger{logger}),
		)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		if err = sink.EnsureTable(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}

		cleanup := func() error {
			flushErr := sink.Close(context.Background())
			closeErr := db.Close()
			if flushErr != nil {
				return flushErr
			}
			return closeErr
		}

		return sink, cleanup, nil
	}

	var w io.Writer = os.Stdout
	cleanup := func() error { return nil }

	if outputPath != "-" {
		file, err := os.Create(outputPath)
		if err != nil {
			return nil, nil, fmt.Errorf("creating output file: %w", err)
		}
		w = file
		cleanup = file.Close
	}

	return eventgen.NewWriterSink(w), cleanup, nil
}

// slogLogger adapts slog to the generator's Logger interface.
type slogLogger struct {
	logger *slog.Logger
}

func (l slogLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l slogLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l slogLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l slogLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }
