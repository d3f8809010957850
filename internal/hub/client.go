package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	DefaultKeepAliveInterval = 15 * time.Second
	DefaultServerTimeout     = 30 * time.Second
	DefaultHandshakeTimeout  = 15 * time.Second
	writeWait                = 10 * time.Second
	maxRedirects             = 5
)

var (
	ErrNotConnected     = errors.New("hub connection is not established")
	ErrAlreadyStarted   = errors.New("hub connection is already started")
	ErrConnectionClosed = errors.New("hub connection closed")
	ErrInvocationFailed = errors.New("hub invocation failed")
	ErrNegotiate        = errors.New("hub negotiation failed")
	ErrHandshake        = errors.New("hub handshake failed")
)

// State - состояние соединения с хабом
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Handler получает аргументы серверного вызова.
// Вызывается из горутины чтения в порядке получения сообщений.
type Handler func(args []json.RawMessage)

//go:generate mockgen -source=client.go -destination=mocks/mock_gateway.go -package=mocks

// Gateway - двунаправленный канал до сервера диспетчеризации
type Gateway interface {
	On(target string, handler Handler) (unsubscribe func())
	OnClose(handler func(err error)) (unsubscribe func())
	Invoke(ctx context.Context, method string, args ...any) error
	Send(ctx context.Context, method string, args ...any) error
	State() State
	Start(ctx context.Context) error
	Stop() error
}

// Options - параметры подключения
type Options struct {
	URL               string
	SkipNegotiation   bool
	Header            http.Header
	HTTPClient        *http.Client
	Dialer            *websocket.Dialer
	KeepAliveInterval time.Duration
	ServerTimeout     time.Duration
	HandshakeTimeout  time.Duration
}

type completion struct {
	err error
}

// Client - клиент JSON-протокола хаба SignalR поверх WebSocket
type Client struct {
	opts   Options
	logger *logrus.Logger

	state  atomic.Int32
	nextID atomic.Uint64

	mu             sync.Mutex
	conn           *websocket.Conn
	done           chan struct{}
	manuallyClosed bool
	handlers       map[string]map[uint64]Handler
	closeHandlers  map[uint64]func(error)
	pending        map[string]chan completion

	writeMu sync.Mutex
}

// NewClient создает клиент хаба
func NewClient(opts Options, logger *logrus.Logger) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: DefaultHandshakeTimeout}
	}
	if opts.Dialer == nil {
		opts.Dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: DefaultHandshakeTimeout,
		}
	}
	if opts.KeepAliveInterval <= 0 {
		opts.KeepAliveInterval = DefaultKeepAliveInterval
	}
	if opts.ServerTimeout <= 0 {
		opts.ServerTimeout = DefaultServerTimeout
	}
	if opts.HandshakeTimeout <= 0 {
		opts.HandshakeTimeout = DefaultHandshakeTimeout
	}
	return &Client{
		opts:          opts,
		logger:        logger,
		handlers:      make(map[string]map[uint64]Handler),
		closeHandlers: make(map[uint64]func(error)),
		pending:       make(map[string]chan completion),
	}
}

func (c *Client) log(method string) *logrus.Entry {
	return c.logger.WithFields(logrus.Fields{
		"service": "hub_client",
		"method":  method,
	})
}

// State возвращает текущее состояние соединения
func (c *Client) State() State {
	return State(c.state.Load())
}

// On регистрирует обработчик серверного метода. Имена сравниваются без учёта регистра.
func (c *Client) On(target string, handler Handler) func() {
	key := strings.ToLower(target)
	id := c.nextID.Add(1)

	c.mu.Lock()
	if c.handlers[key] == nil {
		c.handlers[key] = make(map[uint64]Handler)
	}
	c.handlers[key][id] = handler
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.handlers[key], id)
	}
}

// OnClose регистрирует обработчик потери соединения. Не вызывается после Stop.
func (c *Client) OnClose(handler func(err error)) func() {
	id := c.nextID.Add(1)

	c.mu.Lock()
	c.closeHandlers[id] = handler
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.closeHandlers, id)
	}
}

// Start устанавливает соединение: negotiate, WebSocket, рукопожатие
func (c *Client) Start(ctx context.Context) error {
	log := c.log("Start")

	if !c.state.CompareAndSwap(int32(StateDisconnected), int32(StateConnecting)) {
		return ErrAlreadyStarted
	}

	conn, err := c.connect(ctx)
	if err != nil {
		c.state.Store(int32(StateDisconnected))
		log.WithError(err).Warn("Failed to connect to hub")
		return err
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.conn = conn
	c.done = done
	c.manuallyClosed = false
	c.state.Store(int32(StateConnected))
	c.mu.Unlock()

	go c.readLoop(conn)
	go c.keepAlive(conn, done)

	log.Info("Connected to hub")
	return nil
}

// Stop закрывает соединение без уведомления обработчиков OnClose
func (c *Client) Stop() error {
	c.mu.Lock()
	c.manuallyClosed = true
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return nil
	}

	c.writeMu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	err := conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()

	c.closeWith(conn, nil)
	c.log("Stop").Info("Hub connection stopped")
	if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		return fmt.Errorf("failed to send close frame: %w", err)
	}
	return nil
}

// Invoke вызывает метод на сервере и ждёт ответа Completion
func (c *Client) Invoke(ctx context.Context, method string, args ...any) error {
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return ErrNotConnected
	}
	id := strconv.FormatUint(c.nextID.Add(1), 10)
	ch := make(chan completion, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	msg := invocation{Type: messageInvocation, InvocationID: id, Target: method, Arguments: nonNil(args)}
	if err := c.write(conn, msg); err != nil {
		c.dropPending(id)
		return fmt.Errorf("failed to invoke %s: %w", method, err)
	}

	select {
	case res := <-ch:
		if res.err != nil {
			return fmt.Errorf("%s: %w", method, res.err)
		}
		return nil
	case <-ctx.Done():
		c.dropPending(id)
		return ctx.Err()
	}
}

// Send вызывает метод на сервере без ожидания ответа
func (c *Client) Send(ctx context.Context, method string, args ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	msg := invocation{Type: messageInvocation, Target: method, Arguments: nonNil(args)}
	if err := c.write(conn, msg); err != nil {
		return fmt.Errorf("failed to send %s: %w", method, err)
	}
	return nil
}

func (c *Client) connect(ctx context.Context) (*websocket.Conn, error) {
	endpoint := c.opts.URL
	header := c.opts.Header.Clone()
	if header == nil {
		header = http.Header{}
	}

	if !c.opts.SkipNegotiation {
		var err error
		endpoint, err = c.negotiate(ctx, endpoint, header)
		if err != nil {
			return nil, err
		}
	}

	wsURL, err := toWebSocketURL(endpoint)
	if err != nil {
		return nil, err
	}

	conn, resp, err := c.opts.Dialer.DialContext(ctx, wsURL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", wsURL, err)
	}

	if err := c.handshake(conn); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

// negotiate запрашивает токен соединения и следует перенаправлениям сервиса
func (c *Client) negotiate(ctx context.Context, endpoint string, header http.Header) (string, error) {
	for i := 0; i < maxRedirects; i++ {
		res, err := c.negotiateOnce(ctx, endpoint, header)
		if err != nil {
			return "", err
		}
		if res.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrNegotiate, res.Error)
		}
		if res.URL != "" {
			endpoint = res.URL
			if res.AccessToken != "" {
				header.Set("Authorization", "Bearer "+res.AccessToken)
			}
			continue
		}
		if !res.supportsWebSockets() {
			return "", fmt.Errorf("%w: server does not support websockets", ErrNegotiate)
		}
		return withQuery(endpoint, "id", res.token())
	}
	return "", fmt.Errorf("%w: too many redirects", ErrNegotiate)
}

func (c *Client) negotiateOnce(ctx context.Context, endpoint string, header http.Header) (*negotiateResponse, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid url: %v", ErrNegotiate, err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/negotiate"
	q := u.Query()
	q.Set("negotiateVersion", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNegotiate, err)
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNegotiate, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrNegotiate, resp.StatusCode, bytes.TrimSpace(body))
	}

	var res negotiateResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("%w: invalid response: %v", ErrNegotiate, err)
	}
	return &res, nil
}

func (c *Client) handshake(conn *websocket.Conn) error {
	_ = conn.SetWriteDeadline(time.Now().Add(c.opts.HandshakeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, append(handshakeRequest, recordSeparator)); err != nil {
		return fmt.Errorf("%w: %v", ErrHandshake, err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(c.opts.HandshakeTimeout))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHandshake, err)
	}

	records := splitRecords(frame)
	if len(records) == 0 {
		return fmt.Errorf("%w: empty response", ErrHandshake)
	}
	var res handshakeResponse
	if err := json.Unmarshal(records[0], &res); err != nil {
		return fmt.Errorf("%w: invalid response: %v", ErrHandshake, err)
	}
	if res.Error != "" {
		return fmt.Errorf("%w: %s", ErrHandshake, res.Error)
	}

	// Сообщения, пришедшие в одном кадре с ответом на рукопожатие
	for _, rec := range records[1:] {
		_, _ = c.handleRecord(rec)
	}
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	log := c.log("readLoop")

	for {
		_ = conn.SetReadDeadline(time.Now().Add(c.opts.ServerTimeout))
		_, frame, err := conn.ReadMessage()
		if err != nil {
			c.closeWith(conn, err)
			return
		}
		for _, rec := range splitRecords(frame) {
			if closed, closeErr := c.handleRecord(rec); closed {
				log.WithError(closeErr).Info("Server closed hub connection")
				c.closeWith(conn, closeErr)
				return
			}
		}
	}
}

// handleRecord обрабатывает одно сообщение. Возвращает closed=true на сообщение Close.
func (c *Client) handleRecord(rec []byte) (bool, error) {
	log := c.log("handleRecord")

	var msg message
	if err := json.Unmarshal(rec, &msg); err != nil {
		log.WithError(err).Warn("Failed to decode hub message")
		return false, nil
	}

	switch msg.Type {
	case messageInvocation:
		for _, h := range c.handlersFor(msg.Target) {
			h(msg.Arguments)
		}
	case messageCompletion:
		c.complete(msg)
	case messagePing:
	case messageClose:
		if msg.Error != "" {
			return true, fmt.Errorf("%w: %s", ErrConnectionClosed, msg.Error)
		}
		return true, ErrConnectionClosed
	case messageStreamItem, messageStreamInvocation, messageCancelInvocation:
		log.WithField("type", msg.Type).Debug("Streaming messages are not supported")
	default:
		log.WithField("type", msg.Type).Warn("Unknown hub message type")
	}
	return false, nil
}

func (c *Client) handlersFor(target string) []Handler {
	c.mu.Lock()
	defer c.mu.Unlock()

	set := c.handlers[strings.ToLower(target)]
	if len(set) == 0 {
		c.log("handlersFor").WithField("target", target).Debug("No handler registered for target")
		return nil
	}
	ids := make([]uint64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]Handler, 0, len(ids))
	for _, id := range ids {
		out = append(out, set[id])
	}
	return out
}

func (c *Client) complete(msg message) {
	c.mu.Lock()
	ch, ok := c.pending[msg.InvocationID]
	delete(c.pending, msg.InvocationID)
	c.mu.Unlock()

	if !ok {
		c.log("complete").WithField("invocation_id", msg.InvocationID).Debug("Completion for unknown invocation")
		return
	}
	if msg.Error != "" {
		ch <- completion{err: fmt.Errorf("%w: %s", ErrInvocationFailed, msg.Error)}
		return
	}
	ch <- completion{}
}

func (c *Client) dropPending(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Client) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(c.opts.KeepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.write(conn, ping{Type: messagePing}); err != nil {
				c.log("keepAlive").WithError(err).Warn("Failed to send ping")
				c.closeWith(conn, err)
				return
			}
		}
	}
}

func (c *Client) write(conn *websocket.Conn, v any) error {
	data, err := encodeRecord(v)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// closeWith освобождает соединение один раз. Ожидающие вызовы завершаются ошибкой,
// обработчики OnClose вызываются, только если закрытие не было запрошено через Stop.
func (c *Client) closeWith(conn *websocket.Conn, cause error) {
	c.mu.Lock()
	if c.conn != conn {
		c.mu.Unlock()
		return
	}
	c.conn = nil
	close(c.done)
	pending := c.pending
	c.pending = make(map[string]chan completion)
	manual := c.manuallyClosed
	handlers := make([]func(error), 0, len(c.closeHandlers))
	for _, h := range c.closeHandlers {
		handlers = append(handlers, h)
	}
	c.state.Store(int32(StateDisconnected))
	c.mu.Unlock()

	_ = conn.Close()

	for _, ch := range pending {
		ch <- completion{err: ErrConnectionClosed}
	}

	if manual {
		return
	}
	if cause == nil {
		cause = ErrConnectionClosed
	}
	c.log("closeWith").WithError(cause).Warn("Hub connection lost")
	for _, h := range handlers {
		h(cause)
	}
}

func toWebSocketURL(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid hub url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported hub url scheme %q", u.Scheme)
	}
	return u.String(), nil
}

func withQuery(endpoint, key, value string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid hub url: %w", err)
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func nonNil(args []any) []any {
	if args == nil {
		return []any{}
	}
	return args
}
