package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	redisdb *redis.Client
}

type Config struct {
	Addr     string
	Password string
	DB       int
}

func New(cfg Config) *Client {
	redisdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	return &Client{redisdb: redisdb}
}

// Ping is used by the readiness check.
func (c *Client) Ping(ctx context.Context) error {
	return c.redisdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.redisdb.Close()
}

// incrWindowScript sets the expiry only when the key has none, so the window
// starts at the first hit. PEXPIRE without flags keeps it usable on servers
// older than Redis 7.
var incrWindowScript = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
	ttl = tonumber(ARGV[1])
end
return {n, ttl}
`)

// IncrWindow bumps the counter for key and starts its expiry on the first hit
// of a window. It returns the count after the increment and the time left in
// the window.
func (c *Client) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	res, err := incrWindowScript.Run(ctx, c.redisdb, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, err
	}

	if len(res) != 2 {
		return 0, 0, fmt.Errorf("incr window: unexpected reply %v", res)
	}

	return res[0], time.Duration(res[1]) * time.Millisecond, nil
}
