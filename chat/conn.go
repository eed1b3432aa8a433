package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	twitch "github.com/gempir/go-twitch-irc/v4"

	"github.com/onnwee/giftwatch/gift"
)

// EventKind classifies what the connection handed back.
type EventKind int

const (
	// EventOther is any protocol event the session does not care about.
	EventOther EventKind = iota
	// EventNotice is an inbound USERNOTICE carrying a gift payload.
	EventNotice
	// EventDisconnect means the underlying connection closed; the session
	// must dial a fresh connection to continue.
	EventDisconnect
)

// Event is one item from the connection's receive loop.
type Event struct {
	Kind   EventKind
	Notice gift.Notice
	// Err is the connection error for EventDisconnect, nil on a clean EOF.
	Err error
}

// Connection is the session's view of one live protocol connection. A
// Connection is never repaired in place; on disconnect the session closes it
// and dials a new one.
type Connection interface {
	// Join subscribes the connection to a channel and blocks until the
	// server acknowledges the join or ctx expires. An acknowledgment that
	// arrives after ctx expired is discarded, never recorded as success.
	Join(ctx context.Context, channel string) error
	// Next returns the next inbound event. It only errors when ctx ends.
	Next(ctx context.Context) (Event, error)
	Close() error
}

// Dialer opens a fresh connection with the given credentials.
type Dialer func(ctx context.Context, username, token string) (Connection, error)

// ircConn adapts the callback-based IRC client to the Connection event loop.
type ircConn struct {
	client *twitch.Client
	events chan Event

	mu       sync.Mutex
	joinAcks map[string]chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
}

// Dial connects to Twitch IRC with Tags and Commands capabilities and waits
// for the login handshake to complete. A rejected credential (or any failure
// before the welcome) is returned as an error; the caller treats it as fatal.
func Dial(ctx context.Context, username, token string) (Connection, error) {
	client := twitch.NewClient(username, token)
	client.Capabilities = []string{twitch.TagsCapability, twitch.CommandsCapability}

	c := &ircConn{
		client:   client,
		events:   make(chan Event, 256),
		joinAcks: make(map[string]chan struct{}),
		closed:   make(chan struct{}),
	}

	var connectedOnce sync.Once
	connected := make(chan struct{})
	client.OnConnect(func() {
		connectedOnce.Do(func() { close(connected) })
	})

	client.OnSelfJoinMessage(func(m twitch.UserJoinMessage) {
		c.ackJoin(m.Channel)
	})

	client.OnUserNoticeMessage(func(m twitch.UserNoticeMessage) {
		c.deliver(Event{Kind: EventNotice, Notice: gift.Notice{
			Channel:     m.Channel,
			Login:       m.User.Name,
			DisplayName: m.User.DisplayName,
			MsgID:       m.MsgID,
			Params:      m.MsgParams,
		}})
	})

	// The client's Connect blocks for the lifetime of the connection; its
	// return is the EOF signal.
	connErr := make(chan error, 1)
	go func() {
		err := client.Connect()
		connErr <- err
		c.deliver(Event{Kind: EventDisconnect, Err: err})
	}()

	select {
	case <-connected:
		return c, nil
	case err := <-connErr:
		if err == nil {
			err = errors.New("connection closed during login")
		}
		return nil, fmt.Errorf("irc connect: %w", err)
	case <-ctx.Done():
		_ = client.Disconnect()
		return nil, fmt.Errorf("irc connect: %w", ctx.Err())
	}
}

// deliver hands an event to Next without outliving the connection.
func (c *ircConn) deliver(ev Event) {
	select {
	case c.events <- ev:
	case <-c.closed:
	}
}

func (c *ircConn) ackJoin(channel string) {
	c.mu.Lock()
	ack, ok := c.joinAcks[channel]
	if ok {
		delete(c.joinAcks, channel)
	}
	c.mu.Unlock()
	if ok {
		close(ack)
	}
	// an ack with no waiter is a loser of an expired join race; drop it
}

func (c *ircConn) Join(ctx context.Context, channel string) error {
	channel = strings.ToLower(channel)

	ack := make(chan struct{})
	c.mu.Lock()
	c.joinAcks[channel] = ack
	c.mu.Unlock()

	c.client.Join(channel)

	select {
	case <-ack:
		return nil
	case <-ctx.Done():
		// leave no waiter behind so a late ack is discarded by ackJoin
		c.mu.Lock()
		delete(c.joinAcks, channel)
		c.mu.Unlock()
		return ctx.Err()
	case <-c.closed:
		return errors.New("connection closed")
	}
}

func (c *ircConn) Next(ctx context.Context) (Event, error) {
	select {
	case ev := <-c.events:
		return ev, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

func (c *ircConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.client.Disconnect()
	})
	return err
}
