// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package archipelago

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/jeranaias/aptui/internal/logging"
	"github.com/jeranaias/aptui/internal/model"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the Archipelago client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches any ClientError of the same type, so errors.Is works against
// the sentinels below.
func (e *ClientError) Is(target error) bool {
	t, ok := target.(*ClientError)
	return ok && t.Type == e.Type
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotConnected
	ErrTypeAlreadyConnected
	ErrTypeTimeout
	ErrTypeConnection
	ErrTypeRefused
	ErrTypeInvalidResponse
)

// Sentinel errors for easy checking.
var (
	ErrNotConnected     = &ClientError{Type: ErrTypeNotConnected, Message: "not connected"}
	ErrAlreadyConnected = &ClientError{Type: ErrTypeAlreadyConnected, Message: "already connected"}
	ErrTimeout          = &ClientError{Type: ErrTypeTimeout, Message: "connection timed out"}
	ErrRefused          = &ClientError{Type: ErrTypeRefused, Message: "connection refused"}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// DefaultPort is the port Archipelago servers listen on unless told otherwise.
const DefaultPort = 38281

// ClientConfig holds configuration options for the Archipelago client.
type ClientConfig struct {
	// ConnectTimeout bounds dialing plus the handshake when the login
	// context has no deadline (default: 10s)
	ConnectTimeout time.Duration

	// WriteTimeout for a single frame (default: 5s)
	WriteTimeout time.Duration

	// SayRate is the sustained chat rate in messages per second (default: 2)
	SayRate float64

	// SayBurst is the number of messages allowed at once (default: 5)
	SayBurst int

	// Tags announced on Connect (default: ["TextOnly"])
	Tags []string

	// Logger receives protocol diagnostics (default: logging.For("archipelago"))
	Logger *slog.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		ConnectTimeout: 10 * time.Second,
		WriteTimeout:   5 * time.Second,
		SayRate:        2,
		SayBurst:       5,
		Tags:           []string{"TextOnly"},
	}
}

// LoginOptions carries optional credentials for Login.
type LoginOptions struct {
	Password string
}

// DisconnectEvent reports the end of a session. Err is nil when the
// session was closed by Disconnect.
type DisconnectEvent struct {
	Err error
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is a text-only Archipelago client over a websocket.
//
// Event handlers registered with the On* methods run on the client's read
// goroutine. The Client is safe for concurrent use.
//
// Example:
//
//	client := archipelago.NewClient()
//	sub := client.OnMessage(func(ev archipelago.MessageEvent) {
//	    fmt.Println(ev.Text())
//	})
//	defer sub.Unsubscribe()
//	if err := client.Login(ctx, "archipelago.gg:38281", "Player1", archipelago.LoginOptions{}); err != nil {
//	    log.Fatal(err)
//	}
type Client struct {
	config  *ClientConfig
	log     *slog.Logger
	dialer  *websocket.Dialer
	limiter *rate.Limiter

	messages    hub[MessageEvent]
	hintsInit   hub[[]model.Hint]
	hintUpdated hub[model.Hint]
	disconnects hub[DisconnectEvent]

	names  *DataPackage
	roster *Roster

	writeMu sync.Mutex

	mu       sync.Mutex
	conn     *websocket.Conn
	state    connState
	closing  bool
	self     Player
	room     RoomInfoPacket
	address  string
	hintsKey string
	hints    map[model.HintKey]NetworkHint
	loopDone chan struct{}
}

type connState int

const (
	stateDisconnected connState = iota
	stateConnecting
	stateConnected
)

// NewClient creates a new client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 10 * time.Second
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = 5 * time.Second
	}
	if config.SayRate <= 0 {
		config.SayRate = 2
	}
	if config.SayBurst <= 0 {
		config.SayBurst = 5
	}
	if len(config.Tags) == 0 {
		config.Tags = []string{"TextOnly"}
	}
	logger := config.Logger
	if logger == nil {
		logger = logging.For("archipelago")
	}

	return &Client{
		config:  config,
		log:     logger,
		dialer:  &websocket.Dialer{HandshakeTimeout: config.ConnectTimeout, Proxy: websocket.DefaultDialer.Proxy},
		limiter: rate.NewLimiter(rate.Limit(config.SayRate), config.SayBurst),
		names:   NewDataPackage(),
		roster:  NewRoster(),
	}
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// OnMessage registers a handler for chat and server messages.
func (c *Client) OnMessage(fn func(MessageEvent)) *Subscription {
	return c.messages.subscribe(fn)
}

// OnHintsInitialized registers a handler for the full hint list, delivered
// once per login.
func (c *Client) OnHintsInitialized(fn func([]model.Hint)) *Subscription {
	return c.hintsInit.subscribe(fn)
}

// OnHintUpdated registers a handler for new or changed hints.
func (c *Client) OnHintUpdated(fn func(model.Hint)) *Subscription {
	return c.hintUpdated.subscribe(fn)
}

// OnDisconnect registers a handler for the end of a session.
func (c *Client) OnDisconnect(fn func(DisconnectEvent)) *Subscription {
	return c.disconnects.subscribe(fn)
}

// =============================================================================
// STATE
// =============================================================================

// Connected reports whether a session is established.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateConnected
}

// Self returns the local player. It is the zero Player when disconnected.
func (c *Client) Self() Player {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.self
}

// Address returns the websocket URL of the current session.
func (c *Client) Address() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.address
}

// Room returns the RoomInfo received on the last login.
func (c *Client) Room() RoomInfoPacket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.room
}

// Player resolves a slot to a player of the local team.
func (c *Client) Player(slot int) Player {
	return c.roster.Player(slot)
}

// =============================================================================
// LOGIN
// =============================================================================

// Login connects to addr and authenticates as slot. It returns once the
// server has accepted the slot; hints arrive afterwards through
// OnHintsInitialized.
func (c *Client) Login(ctx context.Context, addr, slot string, opts LoginOptions) error {
	c.mu.Lock()
	if c.state != stateDisconnected {
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.state = stateConnecting
	c.closing = false
	c.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.ConnectTimeout)
		defer cancel()
	}

	conn, wsURL, err := c.dial(ctx, addr)
	if err != nil {
		c.resetState()
		return err
	}

	pending, err := c.handshake(ctx, conn, slot, opts)
	if err != nil {
		conn.Close()
		c.resetState()
		return err
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.conn = conn
	c.address = wsURL
	c.state = stateConnected
	c.loopDone = done
	c.mu.Unlock()

	c.log.Info("connected", "url", wsURL, "slot", slot, "team", c.Self().Team)

	go c.readLoop(conn, pending, done)
	return nil
}

func (c *Client) resetState() {
	c.mu.Lock()
	c.state = stateDisconnected
	c.conn = nil
	c.self = Player{}
	c.hints = nil
	c.hintsKey = ""
	c.mu.Unlock()
}

// dial tries every candidate URL for addr in order.
func (c *Client) dial(ctx context.Context, addr string) (*websocket.Conn, string, error) {
	candidates, err := NormalizeAddress(addr)
	if err != nil {
		return nil, "", &ClientError{Type: ErrTypeConnection, Message: "invalid server address", Cause: err}
	}

	var lastErr error
	for _, u := range candidates {
		c.log.Debug("dialing", "url", u)
		conn, _, err := c.dialer.DialContext(ctx, u, nil)
		if err == nil {
			return conn, u, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	if errors.Is(lastErr, context.DeadlineExceeded) || isTimeout(lastErr) {
		return nil, "", &ClientError{Type: ErrTypeTimeout, Message: "connection timed out", Cause: lastErr}
	}
	return nil, "", &ClientError{Type: ErrTypeConnection, Message: "failed to connect to " + addr, Cause: lastErr}
}

// handshake runs RoomInfo, DataPackage and Connect on a fresh connection.
// It returns packets that arrived in the same frame after Connected.
func (c *Client) handshake(ctx context.Context, conn *websocket.Conn, slot string, opts LoginOptions) ([]Packet, error) {
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
	})
	defer stop()

	pkt, _, err := c.await(conn, CmdRoomInfo)
	if err != nil {
		return nil, err
	}
	var room RoomInfoPacket
	if err := pkt.Decode(&room); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "bad RoomInfo", Cause: err}
	}
	c.mu.Lock()
	c.room = room
	c.mu.Unlock()

	if len(room.Games) > 0 {
		if err := c.send(conn, GetDataPackagePacket{Cmd: CmdGetDataPackage, Games: room.Games}); err != nil {
			return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to request data package", Cause: err}
		}
		pkt, _, err = c.await(conn, CmdDataPackage)
		if err != nil {
			return nil, err
		}
		var dp DataPackagePacket
		if err := pkt.Decode(&dp); err != nil {
			return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "bad DataPackage", Cause: err}
		}
		c.names.Load(dp.Data.Games)
		c.log.Debug("data package loaded", "games", len(dp.Data.Games))
	}

	connect := ConnectPacket{
		Cmd:           CmdConnect,
		Password:      opts.Password,
		Game:          "",
		Name:          slot,
		UUID:          uuid.New().String(),
		Version:       ClientVersion,
		ItemsHandling: 0,
		Tags:          c.config.Tags,
		SlotData:      false,
	}
	if err := c.send(conn, connect); err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to send Connect", Cause: err}
	}

	pkt, rest, err := c.await(conn, CmdConnected, CmdConnectionRefused)
	if err != nil {
		return nil, err
	}
	if pkt.Cmd == CmdConnectionRefused {
		var refused ConnectionRefusedPacket
		if err := pkt.Decode(&refused); err != nil {
			c.log.Debug("malformed ConnectionRefused", "error", err)
		}
		msg := "connection refused"
		if len(refused.Errors) > 0 {
			msg += ": " + strings.Join(refused.Errors, ", ")
		}
		return nil, &ClientError{Type: ErrTypeRefused, Message: msg}
	}

	var connected ConnectedPacket
	if err := pkt.Decode(&connected); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "bad Connected", Cause: err}
	}
	c.roster.Reset(connected.Team, connected.Players, connected.SlotInfo)

	key := HintsKey(connected.Team, connected.Slot)
	c.mu.Lock()
	c.self = c.roster.Player(connected.Slot)
	c.hintsKey = key
	c.hints = make(map[model.HintKey]NetworkHint)
	c.mu.Unlock()

	if err := c.send(conn,
		GetPacket{Cmd: CmdGet, Keys: []string{key}},
		SetNotifyPacket{Cmd: CmdSetNotify, Keys: []string{key}},
	); err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to request hints", Cause: err}
	}

	if !stop() {
		return nil, &ClientError{Type: ErrTypeTimeout, Message: "login cancelled", Cause: ctx.Err()}
	}
	conn.SetReadDeadline(time.Time{})
	return rest, nil
}

// await reads frames until a packet with one of cmds arrives. It returns
// that packet and the packets that followed it in the same frame.
func (c *Client) await(conn *websocket.Conn, cmds ...string) (Packet, []Packet, error) {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			if isTimeout(err) {
				return Packet{}, nil, &ClientError{Type: ErrTypeTimeout, Message: "timed out waiting for " + strings.Join(cmds, " or "), Cause: err}
			}
			return Packet{}, nil, &ClientError{Type: ErrTypeConnection, Message: "connection closed during handshake", Cause: err}
		}
		packets, err := DecodeFrame(frame)
		if err != nil {
			return Packet{}, nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "malformed frame", Cause: err}
		}
		for i, pkt := range packets {
			for _, cmd := range cmds {
				if pkt.Cmd == cmd {
					return pkt, packets[i+1:], nil
				}
			}
			c.log.Debug("ignoring packet during handshake", "cmd", pkt.Cmd)
		}
	}
}

// =============================================================================
// CHAT
// =============================================================================

// Say sends a chat message. Sends are rate limited; Say blocks until the
// limiter allows the message or ctx is done.
func (c *Client) Say(ctx context.Context, text string) error {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == stateConnected
	c.mu.Unlock()
	if !connected || conn == nil {
		return ErrNotConnected
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return &ClientError{Type: ErrTypeTimeout, Message: "message not sent", Cause: err}
	}

	if err := c.send(conn, SayPacket{Cmd: CmdSay, Text: text}); err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to send message", Cause: err}
	}
	return nil
}

// send writes packets as one frame.
func (c *Client) send(conn *websocket.Conn, packets ...any) error {
	frame, err := EncodeFrame(packets...)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, frame)
}

// =============================================================================
// DISCONNECT
// =============================================================================

// Disconnect closes the session and waits for the read loop to stop.
// It is a no-op when not connected.
func (c *Client) Disconnect() error {
	c.mu.Lock()
	conn := c.conn
	done := c.loopDone
	if conn == nil || c.closing {
		c.mu.Unlock()
		return nil
	}
	c.closing = true
	c.mu.Unlock()

	c.writeMu.Lock()
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	werr := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.config.WriteTimeout))
	c.writeMu.Unlock()

	err := conn.Close()
	if done != nil {
		<-done
	}
	if werr != nil && !errors.Is(werr, websocket.ErrCloseSent) {
		c.log.Debug("close frame not sent", "error", werr)
	}
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to close connection", Cause: err}
	}
	return nil
}

// =============================================================================
// ADDRESSES
// =============================================================================

// NormalizeAddress returns the websocket URLs to try for a user-supplied
// server address. An address without a scheme tries wss first, then ws.
// A missing port defaults to DefaultPort.
func NormalizeAddress(addr string) ([]string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("empty address")
	}

	schemes := []string{"wss", "ws"}
	if i := strings.Index(addr, "://"); i >= 0 {
		scheme := strings.ToLower(addr[:i])
		if scheme != "ws" && scheme != "wss" {
			return nil, errors.New("unsupported scheme " + strconv.Quote(scheme))
		}
		schemes = []string{scheme}
		addr = addr[i+3:]
	}

	u, err := url.Parse("ws://" + addr)
	if err != nil {
		return nil, err
	}
	if u.Hostname() == "" {
		return nil, errors.New("missing host in " + strconv.Quote(addr))
	}
	host := u.Host
	if u.Port() == "" {
		host = net.JoinHostPort(u.Hostname(), strconv.Itoa(DefaultPort))
	}

	out := make([]string, 0, len(schemes))
	for _, s := range schemes {
		v := url.URL{Scheme: s, Host: host, Path: u.Path, RawQuery: u.RawQuery}
		out = append(out, v.String())
	}
	return out, nil
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
