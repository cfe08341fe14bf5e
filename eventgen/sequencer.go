package eventgen

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	logMsgSessionStarted      = "generation session started"
	logMsgSessionCompleted    = "generation session completed"
	logMsgCandidateDiscarded  = "candidate event discarded, regenerating once"
	logMsgGenerationFailed    = "event generation failed"
	logAttrError              = "error"
	logAttrUserCount          = "user_count"
	logAttrWorkers            = "workers"
	logAttrEventsEmitted      = "events_emitted"
	logAttrDiscarded          = "candidates_discarded"
	logAttrAccountID          = "account_id"
	logAttrDistinctID         = "distinct_id"
	logAttrEventTime          = "event_time"
	labelEventType            = "event_type"
)

// drawOrder fixes the iteration order over the type-mix map so that a seeded
// session is deterministic.
var drawOrder = []EventType{EventTypeTrack, EventTypeUserSet, EventTypeUserAdd}

// Session orchestrates one generation run: it owns the session-scoped registry,
// the property generator, and the observability hooks. Sessions are independent
// of each other, multiple sessions can run concurrently.
type Session struct {
	cfg              SessionConfig
	registry         *Registry
	propertyGen      *PropertyGenerator
	pool             ProfilePool
	eventNames       []string
	logger           Logger
	contextualLogger ContextualLogger
	metricsCollector MetricsCollector
}

// NewSession validates the configuration and creates a session with optional
// observability wiring. Configuration errors are fatal here, before any event
// is produced.
func NewSession(cfg SessionConfig, options ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool := cfg.ProfilePool
	if !cfg.profilePoolConfigured() {
		pool = DefaultProfilePool()
	}

	eventNames := cfg.EventNames
	if len(eventNames) == 0 {
		eventNames = DefaultEventNames
	}

	session := &Session{
		cfg:         cfg,
		registry:    NewRegistry(),
		propertyGen: NewPropertyGenerator(cfg.PropertySpecs),
		pool:        pool,
		eventNames:  eventNames,
	}

	for _, option := range options {
		if err := option(session); err != nil {
			return nil, err
		}
	}

	return session, nil
}

// Registry exposes the session's registry for consumers that need current user
// state after (or during) a run.
func (s *Session) Registry() *Registry {
	return s.registry
}

// Run generates the session's event stream and emits every accepted event to
// the sink. Users are sharded across workers with no cross-shard mutable
// state, so emission order across users is unspecified while each user's
// events stay in non-decreasing time order.
//
// Run aborts cooperatively between event emissions when ctx is canceled; no
// event is left partially applied.
func (s *Session) Run(ctx context.Context, sink Sink) (Stats, error) {
	if sink == nil {
		return Stats{}, ErrNilSink
	}

	started := time.Now()

	workers := s.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > s.cfg.UserCount {
		workers = s.cfg.UserCount
	}

	seed := s.cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	s.logInfo(ctx, logMsgSessionStarted, logAttrUserCount, s.cfg.UserCount, logAttrWorkers, workers)

	shardStats := make([]Stats, workers)
	shardErrs := make([]error, workers)

	var wg sync.WaitGroup
	for shard := 0; shard < workers; shard++ {
		wg.Add(1)
		go func(shard int) {
			defer wg.Done()
			shardStats[shard], shardErrs[shard] = s.runShard(ctx, sink, shard, workers, seed)
		}(shard)
	}
	wg.Wait()

	stats := Stats{EventsByType: make(map[EventType]int64)}
	for _, shard := range shardStats {
		stats.merge(shard)
	}
	stats.UsersCreated = s.registry.Len()

	s.recordRunMetrics(stats, time.Since(started))
	s.logInfo(ctx, logMsgSessionCompleted,
		logAttrEventsEmitted, stats.EventsEmitted,
		logAttrDiscarded, stats.CandidatesDiscarded)

	if err := errors.Join(shardErrs...); err != nil {
		return stats, err
	}

	return stats, nil
}

// scheduleEntry is one user's position in a shard's time-ordered queue.
type scheduleEntry struct {
	user  *SyntheticUser
	times []time.Time // precomputed when the budget is fixed, else nil
	index int
	next  time.Time
	seq   int // insertion order tiebreaker for equal times
}

type scheduleQueue []*scheduleEntry

func (q scheduleQueue) Len() int { return len(q) }

func (q scheduleQueue) Less(i, j int) bool {
	if q[i].next.Equal(q[j].next) {
		return q[i].seq < q[j].seq
	}

	return q[i].next.Before(q[j].next)
}

func (q scheduleQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *scheduleQueue) Push(x any) { *q = append(*q, x.(*scheduleEntry)) }

func (q *scheduleQueue) Pop() any {
	old := *q
	last := len(old) - 1
	entry := old[last]
	old[last] = nil
	*q = old[:last]

	return entry
}

// runShard drives the users assigned to one shard: a min-heap keyed by each
// user's next event time yields a merge-ordered, per-user-monotonic stream in
// O(events * log(users)) without sorting everything up front.
//
//nolint:gocognit,funlen // the scheduling loop reads best in one piece
func (s *Session) runShard(
	ctx context.Context,
	sink Sink,
	shard int,
	workers int,
	seed uint64,
) (Stats, error) {

	stats := Stats{EventsByType: make(map[EventType]int64)}
	r := rand.New(rand.NewPCG(seed, uint64(shard)))
	sampler := func() (PresetProfile, error) { return s.pool.Sample(r) }

	queue := make(scheduleQueue, 0, (s.cfg.UserCount+workers-1)/workers)

	for idx := shard; idx < s.cfg.UserCount; idx += workers {
		entry, err := s.scheduleUser(r, idx, sampler)
		if err != nil {
			return stats, err
		}
		if entry == nil {
			continue
		}

		queue = append(queue, entry)
	}
	heap.Init(&queue)

	for queue.Len() > 0 {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return stats, ctxErr
		}

		entry := heap.Pop(&queue).(*scheduleEntry)

		event, discarded, err := s.generateAccepted(r, entry.user, entry.next)
		stats.CandidatesDiscarded += discarded
		if err != nil {
			return stats, err
		}

		if applyErr := s.registry.Apply(entry.user, event); applyErr != nil {
			return stats, applyErr
		}

		if emitErr := sink.Emit(ctx, event); emitErr != nil {
			return stats, emitErr
		}

		stats.EventsEmitted++
		stats.EventsByType[event.Type]++
		s.countEvent(event.Type)

		if next, ok := s.advance(r, entry); ok {
			entry.next = next
			heap.Push(&queue, entry)
		}
	}

	return stats, nil
}

// scheduleUser creates the user and its initial queue entry.
//
// With a fixed per-user budget the event times are drawn as sorted uniform
// samples over the window, which guarantees the full budget fits and keeps
// each user's timestamps strictly ascending. With a pure rate configuration
// the times are open-ended exponential interarrivals cut off at the window end.
func (s *Session) scheduleUser(r *rand.Rand, idx int, sampler ProfileSampler) (*scheduleEntry, error) {
	distinctID, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	accountID := fmt.Sprintf("acct-%06d", idx+1)

	user, err := s.registry.GetOrCreate(accountID, distinctID.String(), sampler)
	if err != nil {
		return nil, err
	}

	entry := &scheduleEntry{user: user, seq: idx}

	if s.cfg.EventsPerUser > 0 && s.cfg.EventRate <= 0 {
		entry.times = s.sampleBudgetedTimes(r)
		entry.next = entry.times[0]

		return entry, nil
	}

	first := s.cfg.TimeRangeStart.Add(s.sampleInterarrival(r))
	if first.After(s.cfg.TimeRangeEnd) {
		// the first interarrival already falls past the window, the user
		// emits nothing this session
		return nil, nil
	}
	entry.next = first

	return entry, nil
}

func (s *Session) sampleBudgetedTimes(r *rand.Rand) []time.Time {
	window := s.cfg.TimeRangeEnd.Sub(s.cfg.TimeRangeStart)

	times := make([]time.Time, s.cfg.EventsPerUser)
	for i := range times {
		offset := time.Duration(r.Float64() * float64(window))
		times[i] = s.cfg.TimeRangeStart.Add(offset)
	}

	slices.SortFunc(times, time.Time.Compare)

	// nudge duplicates forward, per-user times must stay strictly ascending
	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			times[i] = times[i-1].Add(time.Nanosecond)
		}
	}

	// a nudge chain near the window end can overshoot it, pull the tail back in
	if last := len(times) - 1; times[last].After(s.cfg.TimeRangeEnd) {
		times[last] = s.cfg.TimeRangeEnd
		for i := last - 1; i >= 0; i-- {
			if !times[i].Before(times[i+1]) {
				times[i] = times[i+1].Add(-time.Nanosecond)
			}
		}
	}

	return times
}

func (s *Session) sampleInterarrival(r *rand.Rand) time.Duration {
	mean := time.Duration(float64(time.Second) / s.cfg.EventRate)

	interval := time.Duration(r.ExpFloat64() * float64(mean))
	if interval <= 0 {
		interval = time.Nanosecond
	}

	return interval
}

// advance moves the entry to its next slot, reporting false when the user's
// budget is exhausted or the session window is exceeded.
func (s *Session) advance(r *rand.Rand, entry *scheduleEntry) (time.Time, bool) {
	entry.index++

	if entry.times != nil {
		if entry.index >= len(entry.times) {
			return time.Time{}, false
		}

		return entry.times[entry.index], true
	}

	if s.cfg.EventsPerUser > 0 && entry.index >= s.cfg.EventsPerUser {
		return time.Time{}, false
	}

	next := entry.next.Add(s.sampleInterarrival(r))
	if next.After(s.cfg.TimeRangeEnd) {
		return time.Time{}, false
	}

	return next, true
}

// generateAccepted builds a candidate event for the (user, time) slot and
// validates it. A rejected candidate is discarded and regenerated exactly once
// with fresh sampling; a second rejection surfaces a fatal generation failure
// instead of looping indefinitely.
func (s *Session) generateAccepted(
	r *rand.Rand,
	user *SyntheticUser,
	at time.Time,
) (Event, int64, error) {

	candidate, err := s.buildCandidate(r, user, at)
	if err != nil {
		return Event{}, 0, err
	}

	violation := Validate(candidate)
	if violation == nil {
		return candidate, 0, nil
	}

	s.logWarn(logMsgCandidateDiscarded,
		logAttrError, violation.Error(),
		logAttrAccountID, user.AccountID(),
		logAttrEventTime, at)
	s.countDiscarded()

	candidate, err = s.buildCandidate(r, user, at)
	if err != nil {
		return Event{}, 1, err
	}

	if violation = Validate(candidate); violation != nil {
		s.countDiscarded()
		s.logError(logMsgGenerationFailed,
			logAttrError, violation.Error(),
			logAttrAccountID, user.AccountID(),
			logAttrDistinctID, user.DistinctID(),
			logAttrEventTime, at)

		return Event{}, 2, errors.Join(
			fmt.Errorf("%w: user %s at %s", ErrGenerationFailed, user.AccountID(), at.Format(WireTimeLayout)),
			violation,
		)
	}

	return candidate, 1, nil
}

func (s *Session) buildCandidate(r *rand.Rand, user *SyntheticUser, at time.Time) (Event, error) {
	if s.cfg.ProfileRotationChance > 0 && r.Float64() < s.cfg.ProfileRotationChance {
		if err := s.registry.RotateProfile(user, func() (PresetProfile, error) { return s.pool.Sample(r) }); err != nil {
			return Event{}, err
		}
	}

	snapshot := s.registry.Snapshot(user)
	eventType := s.drawEventType(r)

	properties, err := s.propertyGen.Generate(r, eventType, snapshot)
	if err != nil {
		return Event{}, err
	}

	switch eventType {
	case EventTypeUserSet:
		return BuildUserSetEvent(user.AccountID(), user.DistinctID(), at, snapshot.Profile, properties), nil

	case EventTypeUserAdd:
		return BuildUserAddEvent(user.AccountID(), user.DistinctID(), at, snapshot.Profile, properties), nil

	default:
		eventName := s.eventNames[r.IntN(len(s.eventNames))]

		return BuildTrackEvent(user.AccountID(), user.DistinctID(), at, eventName, snapshot.Profile, properties), nil
	}
}

// drawEventType makes the weighted categorical draw over the session's type
// mix. track is always legal; user_set/user_add are only drawn when custom
// properties are configured for them, their weight otherwise falls back to
// track.
func (s *Session) drawEventType(r *rand.Rand) EventType {
	if s.cfg.EventTypeWeights == nil {
		return EventTypeTrack
	}

	total := 0.0
	for _, eventType := range drawOrder {
		if s.typeIsDrawable(eventType) {
			total += s.cfg.EventTypeWeights[eventType]
		}
	}

	if total <= 0 {
		return EventTypeTrack
	}

	target := r.Float64() * total
	for _, eventType := range drawOrder {
		if !s.typeIsDrawable(eventType) {
			continue
		}

		target -= s.cfg.EventTypeWeights[eventType]
		if target < 0 {
			return eventType
		}
	}

	return EventTypeTrack
}

func (s *Session) typeIsDrawable(eventType EventType) bool {
	if eventType == EventTypeTrack {
		return true
	}

	return s.propertyGen.HasSpecs(eventType)
}

func (s *Session) countEvent(eventType EventType) {
	if s.metricsCollector != nil {
		s.metricsCollector.IncrementCounter(MetricEventsEmitted, map[string]string{labelEventType: string(eventType)})
	}
}

func (s *Session) countDiscarded() {
	if s.metricsCollector != nil {
		s.metricsCollector.IncrementCounter(MetricCandidatesDiscarded, nil)
	}
}

func (s *Session) recordRunMetrics(stats Stats, duration time.Duration) {
	if s.metricsCollector == nil {
		return
	}

	s.metricsCollector.RecordValue(MetricUsersCreated, float64(stats.UsersCreated), nil)
	s.metricsCollector.RecordDuration(MetricSessionDuration, duration, nil)
}

func (s *Session) logInfo(ctx context.Context, msg string, args ...any) {
	if s.contextualLogger != nil {
		s.contextualLogger.InfoContext(ctx, msg, args...)
		return
	}
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Session) logWarn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}

func (s *Session) logError(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Error(msg, args...)
	}
}
