package router

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/scrayosnet/passage/pkg/adapters"
	"github.com/scrayosnet/passage/pkg/crypto"
	"github.com/scrayosnet/passage/pkg/metrics"
	"github.com/scrayosnet/passage/pkg/ratelimit"
)

// ListenerConfig bounds the listener's accept loop.
type ListenerConfig struct {
	// ListenAddr is the TCP address to bind, e.g. ":25565".
	ListenAddr string
	// ProxyProtocol enables PROXY protocol v1/v2 header parsing on every
	// accepted connection before any Minecraft framing is read.
	ProxyProtocol bool
	// RateLimitWindow and RateLimitMax parameterize the per-peer sliding
	// counter.
	RateLimitWindow time.Duration
	RateLimitMax    int
	// AcceptRateLimit is a global accept-rate smoother layered in front of
	// the per-peer limiter; zero disables it.
	AcceptRateLimit float64
	AcceptBurst     int
	// Connection is handed to every accepted Connection unchanged.
	Connection Config
}

// DefaultListenerConfig returns the standard defaults with PROXY protocol
// and the global accept smoother both disabled.
func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		ListenAddr:      ":25565",
		RateLimitWindow: time.Minute,
		RateLimitMax:    10,
		Connection:      DefaultConfig(),
	}
}

// Listener binds a TCP address and drives every accepted connection
// through a Connection. Run is not safe to call concurrently with itself,
// but the per-connection tasks it spawns run independently.
type Listener struct {
	cfg      ListenerConfig
	ln       net.Listener
	keys     *crypto.KeyPair
	adapters *adapters.Facade
	metrics  metrics.Recorder
	logger   *zap.Logger

	limiter  *ratelimit.Limiter
	smoother *rate.Limiter
}

// NewListener binds cfg.ListenAddr and returns a Listener ready to Run.
func NewListener(cfg ListenerConfig, keys *crypto.KeyPair, ad *adapters.Facade, rec metrics.Recorder, logger *zap.Logger) (*Listener, error) {
	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("router: listen %s: %w", cfg.ListenAddr, err)
	}
	l := &Listener{
		cfg:      cfg,
		ln:       ln,
		keys:     keys,
		adapters: ad,
		metrics:  rec,
		logger:   logger,
		limiter:  ratelimit.New(cfg.RateLimitWindow, cfg.RateLimitMax),
	}
	if cfg.AcceptRateLimit > 0 {
		l.smoother = rate.NewLimiter(rate.Limit(cfg.AcceptRateLimit), cfg.AcceptBurst)
	}
	return l, nil
}

// Addr reports the bound address, useful when ListenAddr requested an
// ephemeral port.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Run accepts connections until ctx is cancelled, driving each one
// through a Connection bounded by the configured connection timeout. It
// returns once every spawned per-connection task has finished.
func (l *Listener) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-ctx.Done()
		return l.ln.Close()
	})

	g.Go(func() error {
		for {
			conn, err := l.ln.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return nil
				default:
					return fmt.Errorf("router: accept: %w", err)
				}
			}

			// PROXY header parsing and the rate-limit consult run here,
			// sequentially in the accept loop, so the rate limiter is
			// touched only from this goroutine. Only the bounded state
			// machine itself is spawned off.
			start := time.Now()
			wire, peerAddr, ok := l.admit(conn, start)
			if !ok {
				continue
			}
			g.Go(func() error {
				l.serve(gctx, wire, peerAddr, start)
				return nil
			})
		}
	})

	return g.Wait()
}

// bufferedConn lets the listener hand a Connection a net.Conn whose first
// reads are served out of a bufio.Reader that already consumed a PROXY
// protocol header, instead of the raw socket.
type bufferedConn struct {
	net.Conn
	br *bufio.Reader
}

func (b *bufferedConn) Read(p []byte) (int, error) { return b.br.Read(p) }

// admit performs PROXY header parsing and the rate-limit consult for one
// accepted connection. It closes conn and records a rejected outcome
// itself whenever it returns ok=false.
func (l *Listener) admit(conn net.Conn, start time.Time) (wire net.Conn, peerAddr net.Addr, ok bool) {
	peerAddr = conn.RemoteAddr()
	wire = conn
	if l.cfg.ProxyProtocol {
		br := bufio.NewReader(conn)
		addr, err := readProxyHeader(br)
		if err != nil {
			l.logger.Debug("dropping connection with malformed PROXY header",
				zap.Stringer("remoteAddr", peerAddr), zap.Error(err))
			conn.Close()
			return nil, nil, false
		}
		peerAddr = addr
		wire = &bufferedConn{Conn: conn, br: br}
	}

	host, _, err := net.SplitHostPort(peerAddr.String())
	if err != nil {
		host = peerAddr.String()
	}

	if l.smoother != nil && !l.smoother.Allow() {
		l.metrics.ObserveRequestDuration("rejected", time.Since(start))
		conn.Close()
		return nil, nil, false
	}
	accepted := l.limiter.Enqueue(host, time.Now())
	l.metrics.SetRateLimiterSize(l.limiter.Size())
	if !accepted {
		l.metrics.ObserveRequestDuration("rejected", time.Since(start))
		conn.Close()
		return nil, nil, false
	}

	return wire, peerAddr, true
}

// serve runs the bounded state machine for one admitted connection,
// recording its outcome and the open-connections gauge.
func (l *Listener) serve(ctx context.Context, wire net.Conn, peerAddr net.Addr, start time.Time) {
	defer wire.Close()

	connCtx, cancel := context.WithTimeout(ctx, l.cfg.Connection.ConnectionTimeout)
	defer cancel()

	// The deadline also lands on the socket itself, so a task blocked in a
	// read or write wakes up when the budget runs out rather than holding
	// the goroutine until the peer speaks.
	if deadline, ok := connCtx.Deadline(); ok {
		_ = wire.SetDeadline(deadline)
	}

	l.metrics.IncOpenConnections()
	defer l.metrics.DecOpenConnections()

	logger := l.logger.With(zap.Stringer("remoteAddr", peerAddr))
	rc := NewConnection(wire, peerAddr, l.keys, l.adapters, l.metrics, l.cfg.Connection, logger)

	runErr := rc.Run(connCtx)
	if runErr != nil && connCtx.Err() != nil && ctx.Err() == nil {
		runErr = Wrap(KindTimeout, connCtx.Err())
	}
	result := outcomeLabel(runErr)
	l.metrics.ObserveRequestDuration(result, time.Since(start))
	switch {
	case runErr == nil, result == KindConnectionClosed.String():
		logger.Debug("connection ended", zap.String("result", result))
	default:
		logger.Warn("connection ended", zap.String("result", result), zap.Error(runErr))
	}
}

// outcomeLabel maps a Connection.Run error to its short metric label,
// defaulting unclassified errors through classify.
func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	var re *Error
	if errors.As(err, &re) {
		return re.Label()
	}
	return classify(err).Label()
}
