package task

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hudcostreets/ht-sub001/entity"
	"github.com/hudcostreets/ht-sub001/entity/tunnel"
	"github.com/samber/lo"
)

// StreamPath websocket推流路径
// 说明：可用?tunnel=E或?tunnel=E,W只订阅部分隧道，缺省订阅全部
const StreamPath = "/stream"

const (
	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

// Frame 推流消息：某一时刻所订阅隧道的全部车辆状态
type Frame struct {
	Minute   float64           `json:"minute"`
	Clock    string            `json:"clock"`
	Vehicles []tunnel.Position `json:"vehicles"`
}

type tick struct {
	abs     float64
	display string
}

type client struct {
	conn    *websocket.Conn
	tunnels []entity.ITunnel
	send    chan []byte
}

// hub 推流中心
// 功能：维护websocket客户端，每个时钟步把对应隧道的整帧状态推给客户端
// 说明：客户端集合只在run协程中读写；发送缓冲已满的客户端直接断开
type hub struct {
	manager    entity.ITunnelManager
	upgrader   websocket.Upgrader
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	ticks      chan tick
	done       chan struct{}
	once       sync.Once
}

func newHub(m entity.ITunnelManager) *hub {
	h := &hub{
		manager:    m,
		upgrader:   websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		ticks:      make(chan tick, 1),
		done:       make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *hub) run() {
	for {
		select {
		case <-h.done:
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			log.Debugf("stream client %s joined, %d online", c.conn.RemoteAddr(), len(h.clients))
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
				log.Debugf("stream client %s left, %d online", c.conn.RemoteAddr(), len(h.clients))
			}
		case t := <-h.ticks:
			for c := range h.clients {
				msg, err := encodeFrame(t, c.tunnels)
				if err != nil {
					log.Errorf("encode frame at %v: %v", t.abs, err)
					continue
				}
				select {
				case c.send <- msg:
				default:
					log.Warnf("stream client %s too slow, dropped", c.conn.RemoteAddr())
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// publish 推送一帧，上一帧还未被处理时丢弃本帧
func (h *hub) publish(abs float64, display string) {
	select {
	case h.ticks <- tick{abs: abs, display: display}:
	case <-h.done:
	default:
	}
}

func (h *hub) close() {
	h.once.Do(func() { close(h.done) })
}

// ServeHTTP 升级为websocket连接并订阅推流
// 说明：未知的隧道名在升级前以404拒绝
func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	names := lo.Compact(lo.FlatMap(r.URL.Query()["tunnel"], func(s string, _ int) []string {
		return strings.Split(s, ",")
	}))
	selected, err := h.manager.Select(names)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	tunnels := lo.Map(selected, func(t *tunnel.Tunnel, _ int) entity.ITunnel { return t })
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warnf("stream upgrade from %s: %v", r.RemoteAddr, err)
		return
	}
	c := &client{conn: conn, tunnels: tunnels, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}
	go c.writePump()
	c.readPump(h)
}

// readPump 丢弃客户端消息直到连接断开
func (c *client) readPump(h *hub) {
	defer c.conn.Close()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout),
	)
}

func encodeFrame(t tick, tunnels []entity.ITunnel) ([]byte, error) {
	return json.Marshal(Frame{
		Minute: t.abs,
		Clock:  t.display,
		Vehicles: lo.FlatMap(tunnels, func(tn entity.ITunnel, _ int) []tunnel.Position {
			return tn.Snapshot(t.abs)
		}),
	})
}
