package push

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	statsKeyPrefix = "notification_stats:"
	statsTTL       = 8 * 24 * time.Hour
	statsWindow    = 7
)

// Stats are delivery counters summed over the last statsWindow days.
type Stats struct {
	Sent       int64 `json:"sent"`
	Failed     int64 `json:"failed"`
	ActiveDays int   `json:"activeDays"`
}

// RedisStats keeps one hash per user and UTC day with "sent" and "failed"
// fields.
type RedisStats struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStats(client *redis.Client) *RedisStats {
	return &RedisStats{client: client, now: time.Now}
}

func statsKey(userID string, day time.Time) string {
	return fmt.Sprintf("%s%s:%s", statsKeyPrefix, userID, day.UTC().Format("2006-01-02"))
}

func (s *RedisStats) Record(ctx context.Context, userID string, sent, failed int) error {
	key := statsKey(userID, s.now())
	pipe := s.client.TxPipeline()
	pipe.HIncrBy(ctx, key, "sent", int64(sent))
	pipe.HIncrBy(ctx, key, "failed", int64(failed))
	pipe.Expire(ctx, key, statsTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record notification stats: %w", err)
	}
	return nil
}

func (s *RedisStats) Weekly(ctx context.Context, userID string) (Stats, error) {
	now := s.now()
	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, statsWindow)
	for i := range cmds {
		cmds[i] = pipe.HGetAll(ctx, statsKey(userID, now.AddDate(0, 0, -i)))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return Stats{}, fmt.Errorf("read notification stats: %w", err)
	}
	days := make([]map[string]string, len(cmds))
	for i, cmd := range cmds {
		days[i] = cmd.Val()
	}
	return sumStats(days), nil
}

func sumStats(days []map[string]string) Stats {
	var st Stats
	for _, day := range days {
		if len(day) == 0 {
			continue
		}
		st.ActiveDays++
		if n, err := strconv.ParseInt(day["sent"], 10, 64); err == nil {
			st.Sent += n
		}
		if n, err := strconv.ParseInt(day["failed"], 10, 64); err == nil {
			st.Failed += n
		}
	}
	return st
}
