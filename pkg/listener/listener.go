// Package listener streams ledger notifications over a WebSocket subscription.
//
// A Subscription is pull-based: Next returns notifications in arrival order and the reader stops
// pulling frames from the socket while the consumer is busy. The callback helpers on Listener
// wrap a subscription for the common cases:
//
//	l := listener.New("wss://fullnode.devnet.sui.io:443", listener.DefaultConfig)
//	err := l.ListenTransactions(ctx, func(digest string) {
//	    fmt.Println("new transaction", digest)
//	})
//
// A subscription lives exactly as long as its connection. It is not resumed after a failure and
// the server is never asked to unsubscribe; dropping the connection ends it.
package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/snehendu098/ghost/pkg/log"
	"github.com/snehendu098/ghost/pkg/rpc"
)

var (
	// ErrConnecting is returned when the WebSocket connection cannot be established.
	ErrConnecting = fmt.Errorf("failed to connect")
	// ErrSubscribing is returned when the subscription request cannot be sent or is rejected.
	ErrSubscribing = fmt.Errorf("failed to subscribe")
	// ErrStreaming is returned when the connection fails after the subscription was made.
	ErrStreaming = fmt.Errorf("subscription stream failed")
	// ErrSubscriptionClosed ends a subscription closed by the server or locally.
	ErrSubscriptionClosed = fmt.Errorf("subscription closed")
)

// Config tunes the connection.
type Config struct {
	// HandshakeTimeout bounds the WebSocket handshake.
	HandshakeTimeout time.Duration
	// PingInterval is how often a ping control frame is sent. Zero disables pings.
	PingInterval time.Duration
	// BufferSize is how many notifications may wait for the consumer before reading pauses.
	BufferSize int
}

var DefaultConfig = Config{
	HandshakeTimeout: 10 * time.Second,
	PingInterval:     30 * time.Second,
	BufferSize:       16,
}

// Kind tells which notification shape a filter produces.
type Kind int

const (
	KindTransaction Kind = iota
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindTransaction:
		return "transaction"
	case KindEvent:
		return "event"
	default:
		return "unknown"
	}
}

// Filter selects what a subscription receives.
type Filter struct {
	kind   Kind
	method string
	param  any
	name   string
}

// AllTransactions matches every transaction.
func AllTransactions() Filter {
	return Filter{
		kind:   KindTransaction,
		method: "sui_subscribeTransaction",
		param:  map[string]any{"All": []any{}},
		name:   "all-transactions",
	}
}

// AllEvents matches every event.
func AllEvents() Filter {
	return Filter{
		kind:   KindEvent,
		method: "sui_subscribeEvent",
		param:  map[string]any{"All": []any{}},
		name:   "all-events",
	}
}

// AddressTransactions matches transactions sent from or to addr.
func AddressTransactions(addr string) Filter {
	return Filter{
		kind:   KindTransaction,
		method: "sui_subscribeTransaction",
		param:  map[string]any{"ToOrFromAddress": map[string]string{"addr": addr}},
		name:   "address-transactions:" + addr,
	}
}

func (f Filter) Kind() Kind { return f.kind }

func (f Filter) Method() string { return f.method }

func (f Filter) String() string { return f.name }

// Notification is one delivered frame. Transaction filters set Digest. Event filters set Raw to
// the whole frame and Event when the payload is a well-formed event.
type Notification struct {
	Digest string
	Raw    json.RawMessage
	Event  *rpc.Event
}

// Listener opens subscriptions against one WebSocket endpoint.
type Listener struct {
	endpoint string
	cfg      Config
	metrics  *Metrics
	nextID   atomic.Uint64
}

type Option func(*Listener)

// WithMetrics counts frames in m.
func WithMetrics(m *Metrics) Option {
	return func(l *Listener) {
		l.metrics = m
	}
}

func New(endpoint string, cfg Config, opts ...Option) *Listener {
	l := &Listener{endpoint: endpoint, cfg: cfg}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

type subscribeRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// Subscribe connects and sends exactly one subscription request for f. The subscription ends
// when ctx is done, when Close is called or when the connection ends.
func (l *Listener) Subscribe(ctx context.Context, f Filter) (*Subscription, error) {
	lg := log.FromContext(ctx).WithName("listener").WithKV("filter", f.String())
	s := newSubscription(ctx, f, l.cfg, l.metrics, lg)

	s.setState(StateConnecting)
	dialer := websocket.Dialer{HandshakeTimeout: l.cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, l.endpoint, nil)
	if err != nil {
		s.fail(fmt.Errorf("%w: %w", ErrConnecting, err))
		return nil, s.err
	}

	req := subscribeRequest{
		JSONRPC: "2.0",
		ID:      l.nextID.Add(1),
		Method:  f.method,
		Params:  []any{f.param},
	}
	if err := conn.WriteJSON(req); err != nil {
		conn.Close()
		s.fail(fmt.Errorf("%w: %w", ErrSubscribing, err))
		return nil, s.err
	}

	s.start(conn, req.ID)
	lg.Info("subscribed", "endpoint", l.endpoint)
	return s, nil
}

// ListenTransactions calls fn with the digest of every transaction until the stream ends.
// It returns nil when the server closes the stream and ctx.Err() once ctx is done.
func (l *Listener) ListenTransactions(ctx context.Context, fn func(digest string)) error {
	return l.listen(ctx, AllTransactions(), func(n Notification) { fn(n.Digest) })
}

// ListenEvents calls fn with every raw event frame until the stream ends.
func (l *Listener) ListenEvents(ctx context.Context, fn func(frame json.RawMessage)) error {
	return l.listen(ctx, AllEvents(), func(n Notification) { fn(n.Raw) })
}

// ListenAddressTransactions calls fn with the digest of every transaction involving addr.
func (l *Listener) ListenAddressTransactions(ctx context.Context, addr string, fn func(digest string)) error {
	return l.listen(ctx, AddressTransactions(addr), func(n Notification) { fn(n.Digest) })
}

func (l *Listener) listen(ctx context.Context, f Filter, fn func(Notification)) error {
	sub, err := l.Subscribe(ctx, f)
	if err != nil {
		return err
	}
	defer sub.Close()

	for n, err := range sub.All(ctx) {
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		fn(n)
	}
	return ctx.Err()
}
