// Package redisstore provides the Redis-backed fast paths for the kitchen:
// a clamped stock mirror used for low-stock display and an idempotency guard
// against double-submitted operator actions.
package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	stockKeyPrefix = "stock:"
	readyGuardTTL  = 30 * time.Second
	guardKeyPrefix = "ready:"
)

// decrementStockScript atomically subtracts from a mirrored stock counter,
// clamping at zero. Missing keys are left untouched; the mirror only tracks
// ingredients that were explicitly seeded.
var decrementStockScript = redis.NewScript(`
local key = KEYS[1]
local amount = tonumber(ARGV[1])

local current = redis.call('GET', key)
if not current then
	return 0
end

local next = tonumber(current) - amount
if next < 0 then
	next = 0
end

redis.call('SET', key, next)
return 1
`)

type Adapter struct {
	client *redis.Client
}

func New(client *redis.Client) *Adapter {
	return &Adapter{client: client}
}

// DecrementStock mirrors an inventory deduction, clamped at zero
func (a *Adapter) DecrementStock(ctx context.Context, ingredientName string, amount float64) error {
	key := stockKeyPrefix + ingredientName
	return decrementStockScript.Run(ctx, a.client, []string{key}, amount).Err()
}

// SetStock seeds or resets the mirrored stock counter for an ingredient
func (a *Adapter) SetStock(ctx context.Context, ingredientName string, amount float64) error {
	key := stockKeyPrefix + ingredientName
	return a.client.Set(ctx, key, amount, 0).Err()
}

// Acquire sets a short-lived guard key for an operator action, returning
// false when the same action was already submitted. The TTL covers the
// double-click window; failed actions release their key via Release.
func (a *Adapter) Acquire(ctx context.Context, key string) (bool, error) {
	return a.client.SetNX(ctx, guardKeyPrefix+key, 1, readyGuardTTL).Result()
}

// Release frees a guard key after a failed action so the manual retry is not
// rejected for the remainder of the TTL
func (a *Adapter) Release(ctx context.Context, key string) error {
	return a.client.Del(ctx, guardKeyPrefix+key).Err()
}
