// internal/cache/cache.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Rdb is the shared Redis client. Nil disables the action historian.
var Rdb *redis.Client

// streamMaxLen caps each game's action stream.
const streamMaxLen = 5000

// GameActionRecord is one applied action in a game's history stream.
type GameActionRecord struct {
	GameID        uuid.UUID              `json:"gameId"`
	SessionKey    string                 `json:"sessionKey"`
	ActionIndex   int                    `json:"actionIndex"`
	ActorUserID   uuid.UUID              `json:"actorUserId"` // uuid.Nil for computer seats and game events.
	ActionType    string                 `json:"actionType"`
	ActionPayload map[string]interface{} `json:"actionPayload"`
	Timestamp     int64                  `json:"timestamp"` // Unix milliseconds.
}

// ConnectRedis dials addr and verifies the connection. An empty addr leaves Rdb nil.
func ConnectRedis(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("ping redis %s: %w", addr, err)
	}
	Rdb = client
	return nil
}

// Close releases the shared client, if any.
func Close() error {
	if Rdb == nil {
		return nil
	}
	err := Rdb.Close()
	Rdb = nil
	return err
}

// StreamKey returns the Redis stream holding a game's actions.
func StreamKey(gameID uuid.UUID) string {
	return "chkouba:game:" + gameID.String() + ":actions"
}

// streamValues flattens a record into XADD field values.
func streamValues(rec GameActionRecord) (map[string]interface{}, error) {
	payload, err := json.Marshal(rec.ActionPayload)
	if err != nil {
		return nil, fmt.Errorf("encode payload of action %d: %w", rec.ActionIndex, err)
	}
	return map[string]interface{}{
		"session": rec.SessionKey,
		"index":   strconv.Itoa(rec.ActionIndex),
		"actor":   rec.ActorUserID.String(),
		"type":    rec.ActionType,
		"payload": string(payload),
		"ts":      strconv.FormatInt(rec.Timestamp, 10),
	}, nil
}

// PublishGameAction appends rec to its game's stream.
func PublishGameAction(ctx context.Context, rec GameActionRecord) error {
	if Rdb == nil {
		return nil
	}
	values, err := streamValues(rec)
	if err != nil {
		return err
	}
	return Rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey(rec.GameID),
		MaxLen: streamMaxLen,
		Approx: true,
		Values: values,
	}).Err()
}
