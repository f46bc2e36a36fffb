package router

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/scrayosnet/passage/pkg/adapters"
	"github.com/scrayosnet/passage/pkg/cipher"
	"github.com/scrayosnet/passage/pkg/codec"
	"github.com/scrayosnet/passage/pkg/cookie"
	"github.com/scrayosnet/passage/pkg/crypto"
	"github.com/scrayosnet/passage/pkg/metrics"
	"github.com/scrayosnet/passage/pkg/profile"
	"github.com/scrayosnet/passage/pkg/protocol/packet"
	"github.com/scrayosnet/passage/pkg/protocol/state"
)

// Config bounds the per-connection behaviour the listener and state
// machine share.
type Config struct {
	// MaxPacketLength caps a frame's advertised length; defaults to
	// codec.DefaultMaxPacketLength.
	MaxPacketLength int32
	// ConnectionTimeout is the total per-connection budget, enforced by
	// the listener, not this type.
	ConnectionTimeout time.Duration
	// KeepAliveInterval is the Configuration-phase keep-alive period.
	KeepAliveInterval time.Duration
	// AuthSecret signs/verifies the authentication cookie; empty disables
	// cookie-based re-authentication entirely.
	AuthSecret []byte
	// AuthCookieExpiry bounds how long a signed auth cookie remains
	// acceptable after it was minted.
	AuthCookieExpiry time.Duration
}

// DefaultKeepAliveInterval matches the vanilla server's configuration
// keep-alive period.
const DefaultKeepAliveInterval = 16 * time.Second

// DefaultConnectionTimeout is the default total budget for one connection,
// from accept to transfer or disconnect.
const DefaultConnectionTimeout = 120 * time.Second

// DefaultAuthCookieExpiry is a conservative default for how long a signed
// authentication cookie remains acceptable.
const DefaultAuthCookieExpiry = 5 * time.Minute

// DefaultConfig returns a Config with the standard defaults and no auth
// secret configured.
func DefaultConfig() Config {
	return Config{
		MaxPacketLength:   codec.DefaultMaxPacketLength,
		ConnectionTimeout: DefaultConnectionTimeout,
		KeepAliveInterval: DefaultKeepAliveInterval,
		AuthCookieExpiry:  DefaultAuthCookieExpiry,
	}
}

// Connection drives one TCP client through Handshake, then Status or
// Login and Configuration, ending in a Transfer or a Disconnect.
type Connection struct {
	cfg      Config
	conn     net.Conn
	cipher   *cipher.Stream
	br       *bufio.Reader
	bw       *bufio.Writer
	keys     *crypto.KeyPair
	adapters *adapters.Facade
	metrics  metrics.Recorder
	logger   *zap.Logger

	clientAddr net.Addr

	phase            state.Phase
	clientLocale     *string
	keepAlivePending atomic.Uint64
	keepAliveSet     atomic.Bool
}

// NewConnection wraps conn (with clientAddr as the already PROXY-protocol
// resolved peer address) in a Connection ready to Run.
func NewConnection(conn net.Conn, clientAddr net.Addr, keys *crypto.KeyPair, ad *adapters.Facade, rec metrics.Recorder, cfg Config, logger *zap.Logger) *Connection {
	cs := cipher.New(conn, conn)
	return &Connection{
		cfg:        cfg,
		conn:       conn,
		cipher:     cs,
		br:         bufio.NewReader(cs),
		bw:         bufio.NewWriter(cs),
		keys:       keys,
		adapters:   ad,
		metrics:    rec,
		logger:     logger,
		clientAddr: clientAddr,
		phase:      state.Handshake,
	}
}

// readFrame reads the next frame's raw id/payload, observing the packet
// size metric and classifying a closed-peer error.
func (c *Connection) readFrame() (int32, []byte, error) {
	id, payload, err := codec.ReadFrame(c.br, c.cfg.MaxPacketLength)
	if err != nil {
		return 0, nil, classify(err)
	}
	c.metrics.ObservePacketSize("read", len(payload))
	return id, payload, nil
}

// writePacket frames and writes p, flushing immediately. Every write is
// preceded by its length prefix and no other write may be in flight at
// the same time, which this connection's single-goroutine write
// discipline already guarantees.
func (c *Connection) writePacket(p packet.Packet) error {
	var body bytes.Buffer
	if err := p.Encode(codec.NewWriter(&body)); err != nil {
		return Wrap(KindInternalError, fmt.Errorf("router: encode %T: %w", p, err))
	}
	if err := codec.WriteFrame(c.bw, p.ID(), body.Bytes()); err != nil {
		return classify(err)
	}
	if err := c.bw.Flush(); err != nil {
		return classify(err)
	}
	c.metrics.ObservePacketSize("write", body.Len())
	return nil
}

func bodyReader(payload []byte) *codec.Reader {
	return codec.NewReader(bytes.NewReader(payload))
}

// Run drives the connection to completion: a Transfer, a Disconnect, or an
// error. It never panics on a malformed client; every protocol violation
// surfaces as a classified *Error.
func (c *Connection) Run(ctx context.Context) error {
	hs, err := c.readHandshake()
	if err != nil {
		return err
	}

	switch hs.NextState {
	case state.NextStatus:
		c.phase = state.Status
		return c.runStatus(ctx, hs)
	case state.NextLogin, state.NextTransfer:
		c.phase = state.Login
		return c.runLogin(ctx, hs)
	default:
		return ErrUnexpectedPacketID(int32(hs.NextState))
	}
}

func (c *Connection) readHandshake() (packet.Handshake, error) {
	id, payload, err := c.readFrame()
	if err != nil {
		return packet.Handshake{}, err
	}
	if id != (packet.Handshake{}).ID() {
		return packet.Handshake{}, ErrUnexpectedPacketID(id)
	}
	hs, err := packet.DecodeHandshake(bodyReader(payload))
	if err != nil {
		return packet.Handshake{}, classify(err)
	}
	return hs, nil
}

// runStatus answers one Server List Ping exchange: StatusRequest then
// Ping, closing after the Pong.
func (c *Connection) runStatus(ctx context.Context, hs packet.Handshake) error {
	id, payload, err := c.readFrame()
	if err != nil {
		return err
	}
	if id != (packet.StatusRequest{}).ID() {
		return ErrUnexpectedPacketID(id)
	}
	if _, err := packet.DecodeStatusRequest(bodyReader(payload)); err != nil {
		return classify(err)
	}

	ep := adapters.Endpoint{
		ClientAddr: c.clientAddr,
		ServerHost: hs.ServerAddress,
		ServerPort: hs.ServerPort,
		Protocol:   hs.ProtocolVersion,
	}
	status, err := c.adapters.Status.Status(ctx, ep)
	if err != nil {
		return Wrap(KindInternalError, fmt.Errorf("router: status adapter: %w", err))
	}
	body, err := adapters.MarshalStatusJSON(status)
	if err != nil {
		return Wrap(KindInternalError, fmt.Errorf("router: marshal status: %w", err))
	}
	if err := c.writePacket(packet.StatusResponse{Body: string(body)}); err != nil {
		return err
	}

	id, payload, err = c.readFrame()
	if err != nil {
		return err
	}
	if id != (packet.StatusPing{}).ID() {
		return ErrUnexpectedPacketID(id)
	}
	ping, err := packet.DecodeStatusPing(bodyReader(payload))
	if err != nil {
		return classify(err)
	}
	return c.writePacket(packet.StatusPong{Payload: ping.Payload})
}

// loginOutcome carries what the Login phase resolved forward into
// Configuration.
type loginOutcome struct {
	profile        profile.Profile
	haveSession    bool
	session        cookie.Session
	cookieConsumed bool
}

// runLogin drives the Login phase: LoginStart, the cookie exchanges, the
// encryption handshake and LoginSuccess, then hands off to Configuration.
func (c *Connection) runLogin(ctx context.Context, hs packet.Handshake) error {
	id, payload, err := c.readFrame()
	if err != nil {
		return err
	}
	if id != (packet.LoginStart{}).ID() {
		return ErrUnexpectedPacketID(id)
	}
	start, err := packet.DecodeLoginStart(bodyReader(payload))
	if err != nil {
		return classify(err)
	}

	ep := adapters.Endpoint{
		ClientAddr: c.clientAddr,
		ServerHost: hs.ServerAddress,
		ServerPort: hs.ServerPort,
		Protocol:   hs.ProtocolVersion,
	}
	tentative := adapters.Identity{Name: start.Name, UUID: start.UUID.String()}

	outcome := loginOutcome{
		profile: profile.Profile{ID: start.UUID, Name: start.Name},
	}

	haveSession, session, err := c.requestSessionCookie()
	if err != nil {
		return err
	}
	outcome.haveSession = haveSession
	outcome.session = session

	shouldAuthenticate := true
	if hs.NextState == state.NextTransfer && len(c.cfg.AuthSecret) > 0 {
		if adopted, ok := c.tryAdoptAuthCookie(ep); ok {
			outcome.profile = adopted
			outcome.cookieConsumed = true
			shouldAuthenticate = false
			tentative = adapters.Identity{Name: adopted.Name, UUID: adopted.ID.String()}
		}
	}

	verifyToken, err := crypto.GenerateVerifyToken()
	if err != nil {
		return Wrap(KindInternalError, fmt.Errorf("router: generate verify token: %w", err))
	}
	publicKeyDER, err := c.keys.EncodedPublicKey()
	if err != nil {
		return Wrap(KindInternalError, fmt.Errorf("router: encode public key: %w", err))
	}
	if err := c.writePacket(packet.EncryptionRequest{
		ServerID:           "",
		PublicKey:          publicKeyDER,
		VerifyToken:        verifyToken,
		ShouldAuthenticate: shouldAuthenticate,
	}); err != nil {
		return err
	}

	id, payload, err = c.readFrame()
	if err != nil {
		return err
	}
	if id != (packet.EncryptionResponse{}).ID() {
		return ErrUnexpectedPacketID(id)
	}
	encResp, err := packet.DecodeEncryptionResponse(bodyReader(payload))
	if err != nil {
		return classify(err)
	}
	sharedSecret, err := c.keys.Decrypt(encResp.SharedSecret)
	if err != nil {
		return Wrap(KindInternalError, fmt.Errorf("router: rsa decrypt shared secret: %w", err))
	}
	decryptedToken, err := c.keys.Decrypt(encResp.VerifyToken)
	if err != nil {
		return Wrap(KindInternalError, fmt.Errorf("router: rsa decrypt verify token: %w", err))
	}
	if !crypto.VerifyTokenMatches(verifyToken, decryptedToken) {
		return Wrap(KindInvalidVerifyToken, fmt.Errorf("router: verify token mismatch"))
	}

	if shouldAuthenticate {
		start := time.Now()
		resolved, err := c.adapters.Authentication.Authenticate(ctx, ep, tentative, sharedSecret, publicKeyDER)
		d := time.Since(start)
		if err != nil {
			c.metrics.ObserveAuthenticationRequestDuration("failed", d)
			return Wrap(KindInternalError, fmt.Errorf("router: authenticate: %w", err))
		}
		c.metrics.ObserveAuthenticationRequestDuration("success", d)
		outcome.profile = resolved
	}

	if err := c.cipher.Enable(sharedSecret); err != nil {
		return Wrap(KindInternalError, fmt.Errorf("router: enable cipher: %w", err))
	}

	if err := c.writePacket(packet.NewLoginSuccess(outcome.profile)); err != nil {
		return err
	}

	id, payload, err = c.readFrame()
	if err != nil {
		return err
	}
	if id != (packet.LoginAcknowledged{}).ID() {
		return ErrUnexpectedPacketID(id)
	}
	if _, err := packet.DecodeLoginAcknowledged(bodyReader(payload)); err != nil {
		return classify(err)
	}

	c.phase = state.Configuration
	return c.runConfiguration(ctx, hs, ep, outcome)
}

// requestSessionCookie asks for the passage:session cookie and reports
// whether one was present and, if so, decodes it.
func (c *Connection) requestSessionCookie() (bool, cookie.Session, error) {
	if err := c.writePacket(packet.CookieRequest{Key: cookie.SessionKey}); err != nil {
		return false, cookie.Session{}, err
	}
	id, payload, err := c.readFrame()
	if err != nil {
		return false, cookie.Session{}, err
	}
	if id != (packet.CookieResponse{}).ID() {
		return false, cookie.Session{}, ErrUnexpectedPacketID(id)
	}
	resp, err := packet.DecodeCookieResponse(bodyReader(payload))
	if err != nil {
		return false, cookie.Session{}, classify(err)
	}
	if resp.Payload == nil {
		return false, cookie.Session{}, nil
	}
	session, err := cookie.DecodeSession(resp.Payload)
	if err != nil {
		c.logger.Debug("discarding unparseable session cookie", zap.Error(err))
		return false, cookie.Session{}, nil
	}
	return true, session, nil
}

// tryAdoptAuthCookie requests the passage:authentication cookie and, if it
// verifies, matches the peer IP and hasn't expired, reports the profile it
// carries. Any failure in this sub-flow silently falls back to
// should_authenticate=true.
func (c *Connection) tryAdoptAuthCookie(ep adapters.Endpoint) (profile.Profile, bool) {
	if err := c.writePacket(packet.CookieRequest{Key: cookie.AuthKey}); err != nil {
		return profile.Profile{}, false
	}
	id, payload, err := c.readFrame()
	if err != nil {
		return profile.Profile{}, false
	}
	if id != (packet.CookieResponse{}).ID() {
		return profile.Profile{}, false
	}
	resp, err := packet.DecodeCookieResponse(bodyReader(payload))
	if err != nil || resp.Payload == nil {
		return profile.Profile{}, false
	}

	auth, ok := cookie.VerifyAuth(resp.Payload, c.cfg.AuthSecret)
	if !ok {
		return profile.Profile{}, false
	}
	if auth.Expired(c.cfg.AuthCookieExpiry, time.Now()) {
		return profile.Profile{}, false
	}
	host, _, err := net.SplitHostPort(c.clientAddr.String())
	if err != nil {
		host = c.clientAddr.String()
	}
	cookieHost, _, err := net.SplitHostPort(auth.ClientAddr)
	if err != nil {
		cookieHost = auth.ClientAddr
	}
	if cookieHost != host {
		return profile.Profile{}, false
	}

	return profile.Profile{ID: auth.UserID, Name: auth.UserName, Properties: auth.ProfileProperties}, true
}

// targetOutcome is the result the background target-selection task
// reports back to the Configuration loop.
type targetOutcome struct {
	target *adapters.Target
	err    error
}

type framePacket struct {
	id      int32
	payload []byte
}

// runConfiguration runs the Configuration phase: target selection in the
// background, keep-alive, and incoming packet dispatch, ending in a
// Transfer or a Disconnect.
func (c *Connection) runConfiguration(ctx context.Context, hs packet.Handshake, ep adapters.Endpoint, outcome loginOutcome) error {
	selectCtx, cancelSelect := context.WithCancel(ctx)
	defer cancelSelect()

	identity := adapters.Identity{Name: outcome.profile.Name, UUID: outcome.profile.ID.String()}
	targetCh := make(chan targetOutcome, 1)
	go func() {
		target, err := c.adapters.Select(selectCtx, ep, identity)
		targetCh <- targetOutcome{target: target, err: err}
	}()

	packetCh := make(chan framePacket, 1)
	readErrCh := make(chan error, 1)
	go c.readLoop(ctx, packetCh, readErrCh)

	ticker := time.NewTicker(c.cfg.KeepAliveInterval)
	defer ticker.Stop()

	var awaitTarget <-chan targetOutcome

	for {
		select {
		case <-ctx.Done():
			return Wrap(KindTimeout, ctx.Err())

		case <-ticker.C:
			if err := c.handleKeepAliveTick(); err != nil {
				return err
			}

		case err := <-readErrCh:
			return err

		case fp := <-packetCh:
			fatal, err := c.handleConfigurationPacket(fp)
			if err != nil {
				return err
			}
			if fatal {
				return ErrUnexpectedPacketID(fp.id)
			}
			if c.clientLocale != nil && awaitTarget == nil {
				awaitTarget = targetCh
			}

		case res := <-awaitTarget:
			if res.err != nil {
				return Wrap(KindInternalError, fmt.Errorf("router: select target: %w", res.err))
			}
			if res.target == nil {
				c.bestEffortDisconnect(c.localize("disconnect_no_target", nil))
				return Wrap(KindNoTargetFound, fmt.Errorf("router: no target found"))
			}
			return c.finishConfiguration(hs, ep, outcome, *res.target)
		}
	}
}

// readLoop is the connection's sole reader goroutine; it feeds frames
// to packetCh one at a time, so the Configuration select loop observes
// client packets without ever having more than one read in flight.
func (c *Connection) readLoop(ctx context.Context, packetCh chan<- framePacket, errCh chan<- error) {
	for {
		id, payload, err := c.readFrame()
		if err != nil {
			select {
			case errCh <- err:
			case <-ctx.Done():
			}
			return
		}
		select {
		case packetCh <- framePacket{id: id, payload: payload}:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Connection) handleKeepAliveTick() error {
	if c.keepAliveSet.Load() {
		c.bestEffortDisconnect(c.localize("disconnect_timeout", nil))
		return Wrap(KindMissedKeepAlive, fmt.Errorf("router: missed keep-alive"))
	}
	id := crypto.GenerateKeepAliveID()
	c.keepAlivePending.Store(id)
	c.keepAliveSet.Store(true)
	return c.writePacket(packet.ConfigurationKeepAlive{Value: id})
}

// handleConfigurationPacket dispatches one Configuration-phase serverbound
// packet. fatal is true for any id this phase does not tolerate, which
// the caller turns into a protocol error.
func (c *Connection) handleConfigurationPacket(fp framePacket) (fatal bool, err error) {
	switch fp.id {
	case (packet.ConfigurationKeepAlive{}).ID():
		ka, derr := packet.DecodeConfigurationKeepAlive(bodyReader(fp.payload))
		if derr != nil {
			return false, classify(derr)
		}
		if c.keepAliveSet.Load() && ka.Value == c.keepAlivePending.Load() {
			c.keepAliveSet.Store(false)
		} else {
			c.logger.Debug("ignoring stray keep-alive response", zap.Uint64("id", ka.Value))
		}
		return false, nil

	case (packet.ClientInformation{}).ID():
		info, derr := packet.DecodeClientInformation(bodyReader(fp.payload))
		if derr != nil {
			return false, classify(derr)
		}
		if c.clientLocale == nil {
			locale := info.Locale
			c.clientLocale = &locale
			c.metrics.ObserveClientLocale(locale)
			c.metrics.ObserveClientViewDistance(int(info.ViewDistance))
		}
		return false, nil

	case (packet.PluginMessage{}).ID():
		if _, derr := packet.DecodePluginMessage(bytes.NewReader(fp.payload)); derr != nil {
			return false, classify(derr)
		}
		return false, nil

	case (packet.ResourcePackResponse{}).ID():
		if _, derr := packet.DecodeResourcePackResponse(bodyReader(fp.payload)); derr != nil {
			return false, classify(derr)
		}
		return false, nil

	case (packet.ConfigurationCookieResponse{}).ID():
		if _, derr := packet.DecodeConfigurationCookieResponse(bodyReader(fp.payload)); derr != nil {
			return false, classify(derr)
		}
		return false, nil

	default:
		return true, nil
	}
}

// finishConfiguration performs the post-selection actions, in order:
// mint/store the auth cookie, mint/store the session cookie, then
// Transfer.
func (c *Connection) finishConfiguration(hs packet.Handshake, ep adapters.Endpoint, outcome loginOutcome, target adapters.Target) error {
	if !outcome.cookieConsumed && len(c.cfg.AuthSecret) > 0 {
		targetID := target.Identifier
		auth := cookie.Auth{
			Timestamp:         time.Now().Unix(),
			ClientAddr:        c.clientAddr.String(),
			UserName:          outcome.profile.Name,
			UserID:            outcome.profile.ID,
			Target:            &targetID,
			ProfileProperties: outcome.profile.Properties,
			Extra:             map[string]string{},
		}
		signed, err := auth.Sign(c.cfg.AuthSecret)
		if err != nil {
			return Wrap(KindInternalError, fmt.Errorf("router: sign auth cookie: %w", err))
		}
		if len(signed) > cookie.MaxAuthCookieSize {
			return Wrap(KindInternalError, fmt.Errorf("router: auth cookie exceeds %d bytes", cookie.MaxAuthCookieSize))
		}
		if err := c.writePacket(packet.StoreCookie{Key: cookie.AuthKey, Payload: signed}); err != nil {
			return err
		}
	}

	if !outcome.haveSession {
		session := cookie.Session{
			ID:            uuid.New(),
			ServerAddress: hs.ServerAddress,
			ServerPort:    hs.ServerPort,
			TraceID:       outcome.session.TraceID,
		}
		encoded, err := session.Encode()
		if err != nil {
			return Wrap(KindInternalError, fmt.Errorf("router: encode session cookie: %w", err))
		}
		if err := c.writePacket(packet.StoreCookie{Key: cookie.SessionKey, Payload: encoded}); err != nil {
			return err
		}
	}

	return c.writePacket(packet.Transfer{Host: target.Address.IP.String(), Port: uint16(target.Address.Port)})
}

func (c *Connection) localize(key string, params map[string]string) string {
	if c.adapters.Localization == nil {
		return key
	}
	return c.adapters.Localization.Localize(c.clientLocale, key, params)
}

// bestEffortDisconnect emits a Configuration-phase Disconnect carrying the
// reason as a plain-text text component (no styling). A failed write never masks the fatal
// error the caller is about to return; the peer is likely gone already.
func (c *Connection) bestEffortDisconnect(msg string) {
	reason, err := plainReason(msg)
	if err != nil {
		c.logger.Debug("rendering disconnect reason failed", zap.Error(err))
		return
	}
	if err := c.writePacket(packet.ConfigurationDisconnect{Reason: reason}); err != nil {
		c.logger.Debug("writing disconnect failed", zap.Error(err))
	}
}
