package chat

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/onnwee/giftwatch/config"
	"github.com/onnwee/giftwatch/gift"
	"github.com/onnwee/giftwatch/telemetry"
)

// State is where the session lifecycle currently stands.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateJoining
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateJoining:
		return "joining"
	case StateRunning:
		return "running"
	default:
		return "disconnected"
	}
}

// Session owns one connection at a time and keeps it joined to the
// configured channel list, restarting from scratch on every disconnect.
type Session struct {
	username    string
	token       string
	channels    []string
	joinTimeout time.Duration
	joinDelay   time.Duration

	dial    Dialer
	watcher gift.Watcher

	mu         sync.Mutex
	state      State
	joined     int
	reconnects int
}

// NewSession builds a session from validated settings. The channel list is
// captured as-is and treated as immutable for the session's lifetime; merges
// into the registry happen strictly before the session starts.
func NewSession(settings *config.Settings, dial Dialer) *Session {
	return &Session{
		username:    settings.Username,
		token:       settings.Token,
		channels:    append([]string(nil), settings.Channels...),
		joinTimeout: settings.JoinTimeout,
		joinDelay:   settings.JoinDelay,
		dial:        dial,
		watcher:     gift.Watcher{Recipient: settings.Username},
	}
}

// Snapshot is the session's externally visible status.
type Snapshot struct {
	State              string `json:"state"`
	ChannelsConfigured int    `json:"channels_configured"`
	ChannelsJoined     int    `json:"channels_joined"`
	Reconnects         int    `json:"reconnects"`
}

// Snapshot reports current state for the status endpoint.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:              s.state.String(),
		ChannelsConfigured: len(s.channels),
		ChannelsJoined:     s.joined,
		Reconnects:         s.reconnects,
	}
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Run connects, joins all channels and pumps events until ctx ends or a
// connect fails. A connect failure is fatal and is never retried; a
// disconnect causes the whole connection to be replaced and every channel
// rejoined, without limit and without backoff.
func (s *Session) Run(ctx context.Context) error {
	defer s.setState(StateDisconnected)

	conn, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	for {
		s.joinChannels(ctx, conn)

		if err := s.pump(ctx, conn); err != nil {
			return err // ctx ended
		}

		// EOF: throw the connection away and start over with a fresh one.
		_ = conn.Close()
		s.mu.Lock()
		s.reconnects++
		s.mu.Unlock()
		telemetry.Reconnects.Inc()
		slog.Info("received an EOF, reconnecting")

		conn, err = s.connect(ctx)
		if err != nil {
			return err
		}
	}
}

func (s *Session) connect(ctx context.Context) (Connection, error) {
	s.setState(StateConnecting)
	slog.Info("connecting", slog.String("username", s.username))

	conn, err := s.dial(ctx, s.username, s.token)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return conn, nil
}

// joinChannels joins the configured list strictly in order, one at a time.
// Each join races the configured timeout; a timed-out or failed join is
// logged and skipped, never fatal. An optional fixed delay between joins
// keeps bursts under upstream join rate limits.
func (s *Session) joinChannels(ctx context.Context, conn Connection) {
	s.setState(StateJoining)
	slog.Info("joining channels", slog.Int("count", len(s.channels)))

	joined := 0
	for _, channel := range s.channels {
		if ctx.Err() != nil {
			break
		}

		telemetry.JoinsAttempted.Inc()
		slog.Info("joining", slog.String("channel", channel))

		jctx, cancel := context.WithTimeout(ctx, s.joinTimeout)
		err := conn.Join(jctx, channel)
		cancel()
		if err != nil {
			telemetry.JoinsFailed.Inc()
			slog.Error("join failed", slog.String("channel", channel), slog.Any("err", err))
		} else {
			joined++
		}

		if s.joinDelay > 0 {
			select {
			case <-time.After(s.joinDelay):
			case <-ctx.Done():
			}
		}
	}

	s.mu.Lock()
	s.joined = joined
	s.mu.Unlock()
	telemetry.SetChannelsJoined(joined)
	slog.Info("joined channels", slog.Int("joined", joined), slog.Int("configured", len(s.channels)))
}

// pump consumes events until the connection reports a disconnect (returns
// nil) or ctx ends (returns the ctx error).
func (s *Session) pump(ctx context.Context, conn Connection) error {
	s.setState(StateRunning)

	for {
		ev, err := conn.Next(ctx)
		if err != nil {
			return err
		}
		switch ev.Kind {
		case EventNotice:
			s.handleNotice(ev.Notice)
		case EventDisconnect:
			if ev.Err != nil {
				slog.Warn("connection lost", slog.Any("err", ev.Err))
			}
			return nil
		default:
			// everything else is noise
		}
	}
}

func (s *Session) handleNotice(n gift.Notice) {
	telemetry.NoticesSeen.Inc()

	if !s.watcher.Relevant(n) {
		return
	}

	telemetry.GiftsAccepted.Inc()
	slog.Info("gift received",
		slog.String("recipient", n.RecipientDisplay()),
		slog.String("channel", n.Channel),
		slog.String("plan", n.Plan().String()),
		slog.String("kind", n.Kind().String()),
		slog.String("from", n.Sender()),
		slog.String("plan_name", n.PlanName()),
	)
}
