package websocket

import (
	"context"
	"encoding/json"
	"log"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// backplaneChannel — единый redis-канал для всех событий комнат
const backplaneChannel = "campuslink:rooms"

// Backplane ретранслирует события комнат между инстансами,
// чтобы комнаты работали поверх нескольких процессов
type Backplane interface {
	Publish(ctx context.Context, room RoomKey, excludeUser uuid.UUID, payload []byte) error
	Run(ctx context.Context, hub *Hub)
	Close() error
}

// ExcludeUser едет в конверте: исключение отправителя должно
// действовать и для его соединений на других инстансах
type backplaneEnvelope struct {
	Origin      string          `json:"origin"`
	Room        string          `json:"room"`
	ExcludeUser uuid.UUID       `json:"exclude_user"`
	Payload     json.RawMessage `json:"payload"`
}

// RedisBackplane — pub/sub поверх того же redis, что и блэклист токенов
type RedisBackplane struct {
	client   *redis.Client
	instance string
}

func NewRedisBackplane(client *redis.Client) *RedisBackplane {
	return &RedisBackplane{
		client:   client,
		instance: uuid.NewString(),
	}
}

func (b *RedisBackplane) Publish(ctx context.Context, room RoomKey, excludeUser uuid.UUID, payload []byte) error {
	env := backplaneEnvelope{
		Origin:      b.instance,
		Room:        room.String(),
		ExcludeUser: excludeUser,
		Payload:     payload,
	}

	data, err := json.Marshal(env)
	if err != nil {
		return err
	}

	return b.client.Publish(ctx, backplaneChannel, data).Err()
}

// Run слушает канал и раздает чужие события локальным клиентам.
// Свои события отфильтровываются по instance id, иначе была бы дублирующая доставка.
func (b *RedisBackplane) Run(ctx context.Context, hub *Hub) {
	pubsub := b.client.Subscribe(ctx, backplaneChannel)

	go func() {
		defer pubsub.Close()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var env backplaneEnvelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					log.Printf("Backplane: malformed envelope: %v", err)
					continue
				}

				if env.Origin == b.instance {
					continue
				}

				room, err := ParseRoomKey(env.Room)
				if err != nil {
					log.Printf("Backplane: bad room key %q", env.Room)
					continue
				}

				hub.DeliverLocal(room, env.ExcludeUser, env.Payload)
			}
		}
	}()
}

func (b *RedisBackplane) Close() error {
	return nil
}
