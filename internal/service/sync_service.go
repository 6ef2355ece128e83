package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"aicu_backend/internal/model"
	"aicu_backend/internal/util"
	"aicu_backend/pkg/logger"
	"aicu_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SyncEventRing is the number of delivered events retained for audit.
const SyncEventRing = 50

// ContentHasher exposes a digest of the aggregate documents; the periodic
// tick uses it to detect changes without re-reading the documents itself.
type ContentHasher interface {
	ContentHash() string
}

// SubscriberFunc receives one change notification. A panicking subscriber is
// isolated and logged; delivery to the remaining subscribers continues.
type SubscriberFunc func(event model.SyncEvent)

// redisEnvelope wraps a SyncEvent for cross-instance fanout. InstanceID
// filters out our own publications when they echo back.
type redisEnvelope struct {
	InstanceID string          `json:"instanceId"`
	Event      model.SyncEvent `json:"event"`
}

// SyncService is the in-process event bus and change broadcaster: immediate
// notifications after each write, hash-debounced periodic ticks, and
// quiet-period-guarded resyncs on focus/reconnect. When Redis is configured
// every broadcast also fans out to other instances over pub/sub.
type SyncService struct {
	Source ContentHasher
	Clock  util.Clock

	mu           sync.Mutex
	deliverMu    sync.Mutex
	subscribers  map[string]SubscriberFunc
	ring         []model.SyncEvent
	lastHash     string
	lastDispatch time.Time
	running      bool
	stopCh       chan struct{}

	rdb        *redis.Client
	channel    string
	instanceID string
	quiet      time.Duration
}

func NewSyncService(source ContentHasher, clock util.Clock, rdb *redis.Client, channel string, quiet time.Duration) *SyncService {
	return &SyncService{
		Source:      source,
		Clock:       clock,
		subscribers: make(map[string]SubscriberFunc),
		rdb:         rdb,
		channel:     channel,
		instanceID:  uuid.New().String(),
		quiet:       quiet,
	}
}

// Subscribe registers a listener under id; re-subscribing the same id
// replaces the previous callback.
func (s *SyncService) Subscribe(id string, fn SubscriberFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers[id] = fn
}

// Unsubscribe removes a listener. Unknown ids are a no-op.
func (s *SyncService) Unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subscribers, id)
}

// SubscriberCount reports the registered listener count.
func (s *SyncService) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

// Publish builds a SyncEvent and delivers it to every subscriber.
func (s *SyncService) Publish(eventType string, payload interface{}, source string) {
	event := model.SyncEvent{
		Type:       eventType,
		Payload:    payload,
		Timestamp:  util.FormatTimestamp(s.Clock.Now()),
		SourcePage: source,
	}
	s.dispatch(event, true)
}

// dispatch records the event and delivers it to every subscriber. deliverMu
// spans the ring append and the delivery loop, so concurrent publishers
// cannot reorder events toward any single subscriber; the registry lock is
// released before callbacks run, so callbacks may subscribe/unsubscribe
// freely but must not publish synchronously. forward controls Redis fanout
// and is false for events received from other instances.
func (s *SyncService) dispatch(event model.SyncEvent, forward bool) {
	s.deliverMu.Lock()

	s.mu.Lock()
	s.ring = append(s.ring, event)
	if len(s.ring) > SyncEventRing {
		s.ring = s.ring[len(s.ring)-SyncEventRing:]
	}
	s.lastDispatch = s.Clock.Now()
	snapshot := make(map[string]SubscriberFunc, len(s.subscribers))
	for id, fn := range s.subscribers {
		snapshot[id] = fn
	}
	s.mu.Unlock()

	for id, fn := range snapshot {
		s.deliver(id, fn, event)
	}
	s.deliverMu.Unlock()

	monitoring.SyncBroadcastsTotal.WithLabelValues(event.Type, event.SourcePage).Inc()

	if forward && s.rdb != nil {
		s.forward(event)
	}
}

func (s *SyncService) deliver(id string, fn SubscriberFunc, event model.SyncEvent) {
	defer func() {
		if r := recover(); r != nil {
			logger.Log.Warn("subscriber callback failed",
				zap.String("subscriber", id),
				zap.String("event", event.Type),
				zap.Any("panic", r))
			monitoring.SubscriberFailures.Inc()
		}
	}()
	fn(event)
}

func (s *SyncService) forward(event model.SyncEvent) {
	data, err := json.Marshal(redisEnvelope{InstanceID: s.instanceID, Event: event})
	if err != nil {
		return
	}
	if err := s.rdb.Publish(context.Background(), s.channel, data).Err(); err != nil {
		logger.Log.Warn("redis fanout failed", zap.Error(err))
	}
}

// RecentEvents copies the audit ring buffer, oldest first.
func (s *SyncService) RecentEvents() []model.SyncEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]model.SyncEvent, len(s.ring))
	copy(events, s.ring)
	return events
}

// CheckForChanges is one periodic tick: broadcast only when the aggregate
// content hash moved since the previous tick.
func (s *SyncService) CheckForChanges() bool {
	hash := s.Source.ContentHash()

	s.mu.Lock()
	changed := hash != s.lastHash
	s.lastHash = hash
	s.mu.Unlock()

	if !changed {
		return false
	}
	s.Publish(model.EventDataUpdated, model.DataUpdatedPayload{
		Timestamp: util.FormatTimestamp(s.Clock.Now()),
		Source:    "periodic-sync",
	}, "periodic-sync")
	return true
}

// SetQuietPeriod hot-applies a reloaded quiet period.
func (s *SyncService) SetQuietPeriod(quiet time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quiet = quiet
}

// NotifyFocus handles a page regaining visibility: unconditional resync
// unless one was dispatched within the quiet period, which guards against
// rapid focus-toggle storms.
func (s *SyncService) NotifyFocus(source string) bool {
	return s.resyncAfterQuiet(source)
}

// NotifyReconnect handles a storage/transport reconnect the same way.
func (s *SyncService) NotifyReconnect(source string) bool {
	return s.resyncAfterQuiet(source)
}

func (s *SyncService) resyncAfterQuiet(source string) bool {
	now := s.Clock.Now()

	s.mu.Lock()
	tooSoon := !s.lastDispatch.IsZero() && now.Sub(s.lastDispatch) <= s.quiet
	s.mu.Unlock()

	if tooSoon {
		return false
	}
	s.Publish(model.EventDataUpdated, model.DataUpdatedPayload{
		Timestamp: util.FormatTimestamp(now),
		Source:    source,
	}, source)
	return true
}

// Start launches the periodic change detector and, when Redis is configured,
// the cross-instance listener. It runs until Stop.
func (s *SyncService) Start(interval time.Duration) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	// Seed the hash so the first tick does not fire on unchanged data.
	hash := s.Source.ContentHash()
	s.mu.Lock()
	s.lastHash = hash
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.CheckForChanges()
			case <-stopCh:
				return
			}
		}
	}()

	if s.rdb != nil {
		go s.listen(stopCh)
	}
}

func (s *SyncService) listen(stopCh chan struct{}) {
	pubsub := s.rdb.Subscribe(context.Background(), s.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var envelope redisEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				logger.Log.Warn("malformed sync envelope", zap.Error(err))
				continue
			}
			if envelope.InstanceID == s.instanceID {
				continue
			}
			s.dispatch(envelope.Event, false)
		case <-stopCh:
			return
		}
	}
}

// Stop halts the periodic detector and the Redis listener.
func (s *SyncService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopCh)
}
