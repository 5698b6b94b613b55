package listener

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/snehendu098/ghost/pkg/log"
	"github.com/snehendu098/ghost/pkg/rpc"
)

// State is the lifecycle stage of a subscription.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateSubscribed
	StateStreaming
	StateClosed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	case StateStreaming:
		return "streaming"
	case StateClosed:
		return "closed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Subscription is one live server subscription. Next and All must be used from one goroutine
// at a time; State, ID, Err and Close are safe from any goroutine.
type Subscription struct {
	filter  Filter
	cfg     Config
	metrics *Metrics
	lg      log.Logger

	ctx    context.Context
	cancel context.CancelFunc
	conn   *websocket.Conn
	reqID  string
	wg     sync.WaitGroup

	state atomic.Int32
	notes chan Notification

	done chan struct{}
	once sync.Once
	err  error // written once, before done is closed

	idMu sync.RWMutex
	id   string
}

// inboundFrame covers both replies to the subscription request and notifications.
type inboundFrame struct {
	ID     json.RawMessage `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpc.Error      `json:"error"`
	Params *struct {
		Subscription json.RawMessage `json:"subscription"`
		Result       json.RawMessage `json:"result"`
	} `json:"params"`
}

func newSubscription(parent context.Context, f Filter, cfg Config, m *Metrics, lg log.Logger) *Subscription {
	ctx, cancel := context.WithCancel(parent)
	return &Subscription{
		filter:  f,
		cfg:     cfg,
		metrics: m,
		lg:      lg,
		ctx:     ctx,
		cancel:  cancel,
		notes:   make(chan Notification, max(cfg.BufferSize, 0)),
		done:    make(chan struct{}),
	}
}

// start launches the connection goroutines once the subscription request is on the wire.
func (s *Subscription) start(conn *websocket.Conn, reqID uint64) {
	s.conn = conn
	s.reqID = strconv.FormatUint(reqID, 10)
	s.setState(StateSubscribed)

	s.wg.Add(2)
	go s.closeOnContextDone()
	go s.readMessages()
	if s.cfg.PingInterval > 0 {
		s.wg.Add(1)
		go s.pingPeriodically()
	}
}

func (s *Subscription) Filter() Filter { return s.filter }

func (s *Subscription) State() State { return State(s.state.Load()) }

func (s *Subscription) setState(st State) { s.state.Store(int32(st)) }

// ID returns the server-assigned subscription id, or "" until the server acknowledged.
func (s *Subscription) ID() string {
	s.idMu.RLock()
	defer s.idMu.RUnlock()

	return s.id
}

// Err returns the terminal error, or nil while the subscription is live.
func (s *Subscription) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Next blocks until the next notification arrives. Once the stream has ended and every
// buffered notification was returned it reports the terminal error: ErrSubscriptionClosed
// after a server or local close, ErrStreaming after a transport failure.
func (s *Subscription) Next(ctx context.Context) (Notification, error) {
	if err := ctx.Err(); err != nil {
		return Notification{}, err
	}

	select {
	case n := <-s.notes:
		return n, nil
	case <-s.done:
		select {
		case n := <-s.notes:
			return n, nil
		default:
			return Notification{}, s.err
		}
	case <-ctx.Done():
		return Notification{}, ctx.Err()
	}
}

// All yields notifications until the stream ends. A server or local close ends the sequence
// quietly; any other failure is yielded once as the final error. Breaking out of the loop
// leaves the subscription open.
func (s *Subscription) All(ctx context.Context) iter.Seq2[Notification, error] {
	return func(yield func(Notification, error) bool) {
		for {
			n, err := s.Next(ctx)
			if errors.Is(err, ErrSubscriptionClosed) {
				return
			}
			if err != nil {
				yield(Notification{}, err)
				return
			}
			if !yield(n, nil) {
				return
			}
		}
	}
}

// Close drops the connection without unsubscribing and waits for the reader to stop.
func (s *Subscription) Close() error {
	s.finish(StateClosed, ErrSubscriptionClosed)
	s.wg.Wait()
	return nil
}

func (s *Subscription) finish(st State, err error) {
	s.once.Do(func() {
		s.err = err
		s.setState(st)
		close(s.done)
		s.cancel()
	})
}

func (s *Subscription) fail(err error) {
	s.finish(StateFailed, err)
}

func (s *Subscription) closeOnContextDone() {
	defer s.wg.Done()
	<-s.ctx.Done()

	if err := s.conn.Close(); err != nil {
		s.lg.Debug("failed to close connection", "error", err)
	}
}

func (s *Subscription) readMessages() {
	defer s.wg.Done()

	for {
		msgType, data, err := s.conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			switch {
			case s.ctx.Err() != nil:
				s.finish(StateClosed, fmt.Errorf("%w: %w", ErrSubscriptionClosed, context.Cause(s.ctx)))
			case errors.As(err, &closeErr) && closeErr.Code != websocket.CloseAbnormalClosure:
				// 1006 is synthesized locally when the peer drops without a close frame.
				s.lg.Info("server closed the subscription", "code", closeErr.Code)
				s.finish(StateClosed, fmt.Errorf("%w: %w", ErrSubscriptionClosed, err))
			default:
				s.lg.Error("subscription read failed", "error", err)
				s.fail(fmt.Errorf("%w: %w", ErrStreaming, err))
			}
			return
		}

		n, ok, err := s.handleFrame(msgType, data)
		if err != nil {
			s.lg.Error("subscription rejected", "error", err)
			s.fail(err)
			return
		}
		if !ok {
			continue
		}

		select {
		case s.notes <- n:
			s.state.CompareAndSwap(int32(StateSubscribed), int32(StateStreaming))
			s.metrics.frame(s.filter.kind, "delivered")
		case <-s.ctx.Done():
			s.finish(StateClosed, fmt.Errorf("%w: %w", ErrSubscriptionClosed, context.Cause(s.ctx)))
			return
		}
	}
}

// handleFrame turns a frame into a notification. ok is false for frames that are consumed
// or dropped.
func (s *Subscription) handleFrame(msgType int, data []byte) (n Notification, ok bool, err error) {
	kind := s.filter.kind
	if msgType != websocket.TextMessage {
		s.drop("non-text frame", "type", msgType)
		return n, false, nil
	}

	var frame inboundFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.drop("invalid frame", "error", err)
		return n, false, nil
	}

	if frame.Params == nil {
		switch {
		case frame.Error != nil && s.isReply(frame.ID):
			return n, false, fmt.Errorf("%w: %w", ErrSubscribing, frame.Error)
		case len(frame.Result) > 0:
			s.captureID(frame.Result)
			s.metrics.frame(kind, "ack")
			return n, false, nil
		default:
			s.drop("frame without params")
			return n, false, nil
		}
	}

	switch kind {
	case KindTransaction:
		var res struct {
			Digest json.RawMessage `json:"digest"`
		}
		var digest string
		if json.Unmarshal(frame.Params.Result, &res) != nil || json.Unmarshal(res.Digest, &digest) != nil || digest == "" {
			s.drop("transaction frame without digest")
			return n, false, nil
		}
		return Notification{Digest: digest, Raw: data}, true, nil

	default:
		n = Notification{Raw: data}
		var ev rpc.Event
		if json.Unmarshal(frame.Params.Result, &ev) == nil && ev.Type != "" {
			n.Event = &ev
		}
		return n, true, nil
	}
}

func (s *Subscription) isReply(id json.RawMessage) bool {
	return string(bytes.TrimSpace(id)) == s.reqID
}

// captureID keeps the first acknowledged subscription id.
func (s *Subscription) captureID(result json.RawMessage) {
	s.idMu.Lock()
	defer s.idMu.Unlock()

	if s.id != "" {
		return
	}
	var str string
	if err := json.Unmarshal(result, &str); err == nil {
		s.id = str
		return
	}
	s.id = string(bytes.TrimSpace(result))
}

func (s *Subscription) drop(reason string, keysAndValues ...any) {
	s.lg.Debug("dropping frame: "+reason, keysAndValues...)
	s.metrics.frame(s.filter.kind, "dropped")
}

func (s *Subscription) pingPeriodically() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			deadline := time.Now().Add(s.cfg.PingInterval)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				if s.ctx.Err() == nil {
					s.lg.Error("failed to send ping", "error", err)
					s.fail(fmt.Errorf("%w: ping: %w", ErrStreaming, err))
				}
				return
			}
		}
	}
}
