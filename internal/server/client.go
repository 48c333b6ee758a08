package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/palemoky/blackjack-sim/internal/apperrors"
	"github.com/palemoky/blackjack-sim/internal/logger"
	"github.com/palemoky/blackjack-sim/internal/protocol"
	"github.com/palemoky/blackjack-sim/internal/protocol/codec"
	"github.com/palemoky/blackjack-sim/internal/protocol/convert"
	"github.com/palemoky/blackjack-sim/internal/sim"
)

const (
	// 写入超时
	writeWait = 10 * time.Second

	// 读取超时（pong 等待时间）
	pongWait = 60 * time.Second

	// ping 发送间隔（必须小于 pongWait）
	pingPeriod = (pongWait * 9) / 10

	// 消息最大大小
	maxMessageSize = 4096
)

// Client 一个 WebSocket 连接
type Client struct {
	ID string
	IP string

	server *Server
	conn   *websocket.Conn
	send   chan []byte

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	cancelRun context.CancelFunc // non-nil while a simulation runs
}

// NewClient 创建客户端
func NewClient(s *Server, conn *websocket.Conn, ip string) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ID:     uuid.NewString(),
		IP:     ip,
		server: s,
		conn:   conn,
		send:   make(chan []byte, 256),
		ctx:    ctx,
		cancel: cancel,
	}
}

// ReadPump 从 WebSocket 读取消息
func (c *Client) ReadPump() {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		c.Close()
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.LogError("client %s read: %v", c.ID, err)
			}
			return
		}

		msg, err := codec.Decode(data)
		if err != nil {
			c.SendMessage(protocol.ErrorMessageFor(err))
			continue
		}
		c.handle(msg)
		codec.PutMessage(msg)
	}
}

// WritePump 向 WebSocket 写入消息
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				c.Close()
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.Close()
				return
			}
		}
	}
}

// SendMessage queues msg for the write pump. It blocks while the queue is
// full so a fast simulation cannot drop shoe results, and gives up once the
// connection closes.
func (c *Client) SendMessage(msg *protocol.Message) {
	data, err := codec.Encode(msg)
	if err != nil {
		logger.LogError("encode %s: %v", msg.Type, err)
		return
	}
	select {
	case c.send <- data:
	case <-c.ctx.Done():
	}
}

// Close 关闭客户端，取消正在进行的模拟
func (c *Client) Close() {
	c.cancel()
}

// handle 分发消息
func (c *Client) handle(msg *protocol.Message) {
	switch msg.Type {
	case protocol.MsgPing:
		p, err := protocol.ParsePayload[protocol.PingPayload](msg)
		if err != nil {
			c.SendMessage(protocol.NewErrorMessage(apperrors.CodeInvalidRequest))
			return
		}
		c.SendMessage(protocol.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
			ClientTimestamp: p.Timestamp,
			ServerTimestamp: time.Now().UnixMilli(),
		}))

	case protocol.MsgSimulate:
		p, err := protocol.ParsePayload[protocol.SimulatePayload](msg)
		if err != nil {
			c.SendMessage(protocol.NewErrorMessage(apperrors.CodeInvalidRequest))
			return
		}
		c.startSimulation(p)

	case protocol.MsgCancel:
		c.mu.Lock()
		if c.cancelRun != nil {
			c.cancelRun()
		}
		c.mu.Unlock()

	default:
		c.SendMessage(protocol.NewErrorMessageWithText(apperrors.CodeInvalidRequest, "unknown message type "+string(msg.Type)))
	}
}

// startSimulation validates the request and streams the run in the
// background. One simulation runs per connection at a time.
func (c *Client) startSimulation(p *protocol.SimulatePayload) {
	if !c.server.rateLimiter.Allow(c.IP) {
		c.SendMessage(protocol.NewErrorMessageWithText(apperrors.CodeInvalidRequest, "too many simulate requests"))
		return
	}
	opts, err := convert.ToOptions(c.server.config, p)
	if err != nil {
		c.SendMessage(protocol.ErrorMessageFor(err))
		return
	}
	runner, err := sim.NewRunner(c.server.engine, opts)
	if err != nil {
		c.SendMessage(protocol.ErrorMessageFor(err))
		return
	}

	c.mu.Lock()
	if c.cancelRun != nil {
		c.mu.Unlock()
		c.SendMessage(protocol.NewErrorMessageWithText(apperrors.CodeInvalidRequest, "a simulation is already running"))
		return
	}
	if !c.server.acquireRun() {
		c.mu.Unlock()
		c.SendMessage(protocol.NewErrorMessageWithText(apperrors.CodeUnknown, "server busy, try again later"))
		return
	}
	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelRun = cancel
	c.mu.Unlock()

	effective := runner.Options()
	c.SendMessage(protocol.MustNewMessage(protocol.MsgStarted, protocol.StartedPayload{
		Shoes:   effective.Shoes,
		Workers: effective.Workers,
		Seed:    effective.Seed,
	}))

	go c.stream(ctx, cancel, runner, p.Persist)
}

func (c *Client) stream(ctx context.Context, cancel context.CancelFunc, runner *sim.Runner, persist bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.LogPanic(r)
		}
		cancel()
		c.mu.Lock()
		c.cancelRun = nil
		c.mu.Unlock()
		c.server.releaseRun()
	}()

	store := c.server.store
	if !persist {
		store = nil
	}

	total := runner.Options().Shoes
	completed := 0
	sum, err := runner.Run(ctx, func(rep sim.ShoeReport) {
		completed++
		if store != nil {
			if err := store.AppendShoe(ctx, rep); err != nil {
				logger.LogError("append shoe %d of run %s: %v", rep.Index, rep.RunID, err)
			}
		}
		c.SendMessage(protocol.MustNewMessage(protocol.MsgShoeResult, protocol.ShoeResultPayload{
			ShoeReport: rep,
			Completed:  completed,
			Total:      total,
		}))
	})
	if err != nil {
		c.SendMessage(protocol.ErrorMessageFor(err))
		return
	}

	if store != nil {
		if err := store.SaveSummary(ctx, sum); err != nil {
			logger.LogError("save run %s: %v", sum.RunID, err)
		}
	}
	c.SendMessage(protocol.MustNewMessage(protocol.MsgSummary, sum))
}
