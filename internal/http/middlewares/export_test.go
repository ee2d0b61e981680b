package middlewares

import "time"

func SetClock(rl *RateLimiter, now func() time.Time) {
	rl.now = now
}
