package collector

import (
	"context"
	"encoding/json"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"StockDashboard/internal/model"
)

// RedisCache is a BarCache shared between dashboard instances.
// Expiry is delegated to Redis key TTLs.
type RedisCache struct {
	Client *goredis.Client
	TTL    time.Duration
	Prefix string
}

// NewRedisCache connects to addr and verifies the connection with PING.
func NewRedisCache(ctx context.Context, addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	log.Printf("[INFO] redis bar cache connected: %s", addr)
	return &RedisCache{Client: client, TTL: ttl, Prefix: "stockdash:"}, nil
}

// cachedBar is the JSON shape stored in Redis.
type cachedBar struct {
	Date   string  `json:"d"`
	Open   float64 `json:"o"`
	High   float64 `json:"h"`
	Low    float64 `json:"l"`
	Close  float64 `json:"c"`
	Volume int64   `json:"v"`
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]model.PriceBar, bool) {
	data, err := c.Client.Get(ctx, c.Prefix+key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			log.Printf("[WARN] redis get %s: %v", key, err)
		}
		return nil, false
	}
	var stored []cachedBar
	if err := json.Unmarshal(data, &stored); err != nil {
		log.Printf("[WARN] redis decode %s: %v", key, err)
		return nil, false
	}
	bars := make([]model.PriceBar, 0, len(stored))
	for _, s := range stored {
		d, err := time.Parse(model.DateLayout, s.Date)
		if err != nil {
			return nil, false
		}
		bars = append(bars, model.PriceBar{Date: d, Open: s.Open, High: s.High, Low: s.Low, Close: s.Close, Volume: s.Volume})
	}
	return bars, true
}

func (c *RedisCache) Set(ctx context.Context, key string, bars []model.PriceBar) {
	stored := make([]cachedBar, len(bars))
	for i, b := range bars {
		stored[i] = cachedBar{
			Date:   b.Date.Format(model.DateLayout),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: b.Volume,
		}
	}
	data, err := json.Marshal(stored)
	if err != nil {
		log.Printf("[WARN] redis encode %s: %v", key, err)
		return
	}
	if err := c.Client.Set(ctx, c.Prefix+key, data, c.TTL).Err(); err != nil {
		log.Printf("[WARN] redis set %s: %v", key, err)
	}
}

func (c *RedisCache) Prune() int { return 0 }

func (c *RedisCache) Close() error { return c.Client.Close() }
