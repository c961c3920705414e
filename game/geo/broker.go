package geo

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/plantmerge/game/engine"
	"github.com/wricardo/mcp-training/plantmerge/logging"
)

// Broker fans position updates out to per-session subscribers
type Broker struct {
	allowDirect bool
	logger      *zap.Logger

	mu       sync.Mutex
	sessions map[string]*channel
	nextID   int
}

type channel struct {
	sources int
	subs    map[int]func(engine.LatLng)
}

// NewBroker creates a broker. With allowDirect, feeds are supported even when no
// geolocation-capable client is connected.
func NewBroker(allowDirect bool, logger *zap.Logger) *Broker {
	return &Broker{
		allowDirect: allowDirect,
		logger:      logging.OrNop(logger).Named("geo"),
		sessions:    make(map[string]*channel),
	}
}

func key(sessionID string) string {
	return strings.ToLower(sessionID)
}

// channelLocked returns the session channel, creating it; b.mu must be held
func (b *Broker) channelLocked(sessionID string) *channel {
	ch, ok := b.sessions[key(sessionID)]
	if !ok {
		ch = &channel{subs: make(map[int]func(engine.LatLng))}
		b.sessions[key(sessionID)] = ch
	}
	return ch
}

// releaseLocked drops an idle channel; b.mu must be held
func (b *Broker) releaseLocked(sessionID string, ch *channel) {
	if ch.sources == 0 && len(ch.subs) == 0 {
		delete(b.sessions, key(sessionID))
	}
}

// AddSource registers a geolocation-capable client for the session and
// returns the func that unregisters it. Calling remove twice is a no-op.
func (b *Broker) AddSource(sessionID string) (remove func()) {
	b.mu.Lock()
	ch := b.channelLocked(sessionID)
	ch.sources++
	count := ch.sources
	b.mu.Unlock()

	b.logger.Debug("location source added", zap.String("session_id", sessionID), zap.Int("sources", count))

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			ch := b.channelLocked(sessionID)
			if ch.sources > 0 {
				ch.sources--
			}
			b.releaseLocked(sessionID, ch)
		})
	}
}

// Supported reports whether the session can be driven by geolocation
func (b *Broker) Supported(sessionID string) bool {
	if b.allowDirect {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.sessions[key(sessionID)]
	return ok && ch.sources > 0
}

// Subscribed reports whether any engine currently follows the session's position
func (b *Broker) Subscribed(sessionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.sessions[key(sessionID)]
	return ok && len(ch.subs) > 0
}

// Publish delivers an absolute position to the session's subscribers and
// reports whether anyone received it.
func (b *Broker) Publish(sessionID string, pos engine.LatLng) bool {
	b.mu.Lock()
	ch, ok := b.sessions[key(sessionID)]
	var subs []func(engine.LatLng)
	if ok {
		for _, fn := range ch.subs {
			subs = append(subs, fn)
		}
	}
	b.mu.Unlock()

	// Subscribers may unsubscribe from inside the callback
	for _, fn := range subs {
		fn(pos)
	}

	if len(subs) == 0 {
		b.logger.Debug("position dropped, no subscriber", zap.String("session_id", sessionID))
	}
	return len(subs) > 0
}

// Feed returns the engine-facing location feed for a session
func (b *Broker) Feed(sessionID string) engine.LocationFeed {
	return &sessionFeed{broker: b, sessionID: sessionID}
}

func (b *Broker) subscribe(sessionID string, fn func(engine.LatLng)) func() {
	b.mu.Lock()
	ch := b.channelLocked(sessionID)
	b.nextID++
	id := b.nextID
	ch.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			ch := b.channelLocked(sessionID)
			delete(ch.subs, id)
			b.releaseLocked(sessionID, ch)
		})
	}
}

// sessionFeed adapts the broker to engine.LocationFeed for one session
type sessionFeed struct {
	broker    *Broker
	sessionID string
}

func (f *sessionFeed) Supported() bool {
	return f.broker.Supported(f.sessionID)
}

func (f *sessionFeed) Watch(onUpdate func(engine.LatLng)) (func(), error) {
	if !f.Supported() {
		return nil, engine.ErrGeolocationUnsupported
	}
	return f.broker.subscribe(f.sessionID, onUpdate), nil
}
