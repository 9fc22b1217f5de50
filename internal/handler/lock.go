package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/restohub/backend/internal/availability"
	"github.com/restohub/backend/internal/config"
)

// 只有锁的持有者才能释放锁，锁过期后被别人拿到时旧的持有者不会误删
var releaseLockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func bookingLockKey(establishmentID uuid.UUID, date availability.Date, clock string) string {
	return fmt.Sprintf("booking_lock:%s:%s:%s", establishmentID, date, clock)
}

// bookingLockTTL 保证锁不会在持有期间过期：预订检查最多有四次数据库查询
func bookingLockTTL(cfg *config.Config) time.Duration {
	worstCase := 4*cfg.Database.QueryTimeout + cfg.Redis.ConnectTimeout
	return time.Duration(max(cfg.Booking.LockExpiration, worstCase)) * time.Second
}

// acquireLock 成功时返回锁的令牌，释放时需要带上
func acquireLock(ctx context.Context, rdb *redis.Client, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func releaseLock(ctx context.Context, rdb *redis.Client, key string, token string) error {
	return releaseLockScript.Run(ctx, rdb, []string{key}, token).Err()
}
