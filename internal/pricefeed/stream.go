package pricefeed

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/314yush/yolo-backend/internal/models"
)

const DefaultHermesWSURL = "wss://hermes.pyth.network/ws"

const (
	streamInitialBackoff = 1 * time.Second
	streamMaxBackoff     = 30 * time.Second
)

type subscribeRequest struct {
	Type string   `json:"type"`
	IDs  []string `json:"ids"`
}

// streamMessage covers the Hermes websocket frames we care about.
// Frames of any other type (subscription acks, heartbeats) are dropped.
type streamMessage struct {
	Type      string `json:"type"`
	PriceFeed struct {
		ID    string `json:"id"`
		Price struct {
			Price       string `json:"price"`
			Expo        int32  `json:"expo"`
			PublishTime int64  `json:"publish_time"`
		} `json:"price"`
	} `json:"price_feed"`
}

// Streamer keeps a Hermes websocket subscription open and writes every
// price update into the cache, reconnecting with backoff until stopped.
type Streamer struct {
	url    string
	cache  *Cache
	pairs  []string
	logger *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	conn    *websocket.Conn
}

func NewStreamer(wsURL string, cache *Cache, pairs []string, logger *zap.Logger) *Streamer {
	if wsURL == "" {
		wsURL = DefaultHermesWSURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Streamer{
		url:    wsURL,
		cache:  cache,
		pairs:  pairs,
		logger: logger,
	}
}

func (s *Streamer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("price streamer already running")
	}
	ids, unknown := FeedIDs(s.pairs)
	if len(unknown) > 0 {
		return fmt.Errorf("no price feed for %v", unknown)
	}
	if len(ids) == 0 {
		return fmt.Errorf("no pairs to stream")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	go s.run(ids)
	return nil
}

func (s *Streamer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stopCh)
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.running = false
	s.logger.Info("price streamer stopped")
}

func (s *Streamer) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Streamer) run(ids []string) {
	backoff := streamInitialBackoff
	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		connectedAt := time.Now()
		if err := s.connectAndRead(ids); err != nil {
			s.logger.Warn("price stream disconnected",
				zap.Error(err),
				zap.Duration("retry_in", backoff))
		}
		if time.Since(connectedAt) > time.Minute {
			backoff = streamInitialBackoff
		}

		select {
		case <-s.stopCh:
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > streamMaxBackoff {
			backoff = streamMaxBackoff
		}
	}
}

// connectAndRead dials, subscribes, and pumps messages until the
// connection drops. A nil return means the streamer was stopped.
func (s *Streamer) connectAndRead(ids []string) error {
	conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}

	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		conn.Close()
		return nil
	}
	s.conn = conn
	s.mu.Unlock()

	if err := conn.WriteJSON(subscribeRequest{Type: "subscribe", IDs: ids}); err != nil {
		s.clearConn()
		conn.Close()
		return fmt.Errorf("subscribe: %w", err)
	}
	s.logger.Info("price stream connected",
		zap.String("url", s.url),
		zap.Int("feeds", len(ids)))

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			stopped := s.clearConn()
			conn.Close()
			if stopped {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		s.handleMessage(raw)
	}
}

// clearConn drops the connection reference and reports whether Stop
// has already run.
func (s *Streamer) clearConn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn = nil
	return !s.running
}

func (s *Streamer) handleMessage(raw []byte) {
	var msg streamMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		s.logger.Debug("unparseable stream message", zap.Error(err))
		return
	}
	if msg.Type != "price_update" {
		return
	}
	pair, ok := PairForFeed(msg.PriceFeed.ID)
	if !ok {
		return
	}
	price, err := scaledPrice(msg.PriceFeed.Price.Price, msg.PriceFeed.Price.Expo)
	if err != nil {
		s.logger.Debug("bad stream price",
			zap.String("pair", pair),
			zap.Error(err))
		return
	}
	s.cache.Put(models.PricePoint{
		Pair:      pair,
		Price:     price,
		Timestamp: msg.PriceFeed.Price.PublishTime,
	})
}
