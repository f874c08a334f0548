package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"crm/internal/contact/models"
	id "crm/pkg/domain"
	"crm/pkg/platform/sentinel"
)

const (
	contactKeyPrefix = "contact:"
	contactIndexKey  = "contacts:index"

	maxUpdateAttempts = 3
)

// RedisStore keeps each contact as a JSON value and lists them through a
// sorted set scored by creation time.
type RedisStore struct {
	client *redis.Client
}

// insertScript writes the document and its index entry together. ZADD runs
// before SET because a script error does not undo earlier writes.
//
// KEYS[1] document key, KEYS[2] index key; ARGV[1] payload, ARGV[2] score,
// ARGV[3] member. Returns 0 when the document already exists.
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
	return 0
end
redis.call('ZADD', KEYS[2], ARGV[2], ARGV[3])
redis.call('SET', KEYS[1], ARGV[1])
return 1
`)

// NewRedis constructs a Redis-backed contact store. The client lifecycle is
// managed by the caller.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func contactKey(contactID id.ContactID) string {
	return contactKeyPrefix + contactID.String()
}

func (s *RedisStore) IsValidID(raw string) bool {
	return ValidID(raw)
}

func (s *RedisStore) Insert(ctx context.Context, c *models.Contact) (*models.Contact, error) {
	stored := clone(c)
	if stored.ID.IsNil() {
		stored.ID = id.NewContactID()
	}
	payload, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("marshal contact: %w", err)
	}

	created, err := insertScript.Run(ctx, s.client,
		[]string{contactKey(stored.ID), contactIndexKey},
		payload, stored.CreatedDate.UnixMilli(), stored.ID.String(),
	).Int()
	if err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	if created == 0 {
		return nil, sentinel.ErrConflict
	}
	return stored, nil
}

func (s *RedisStore) FindAll(ctx context.Context) ([]*models.Contact, error) {
	members, err := s.client.ZRange(ctx, contactIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list contact index: %w", err)
	}
	out := make([]*models.Contact, 0, len(members))
	if len(members) == 0 {
		return out, nil
	}

	keys := make([]string, len(members))
	for i, m := range members {
		keys[i] = contactKeyPrefix + m
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// deleted between ZRANGE and MGET
			continue
		}
		c, err := decodeContact([]byte(raw))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *RedisStore) FindByID(ctx context.Context, contactID id.ContactID) (*models.Contact, error) {
	raw, err := s.client.Get(ctx, contactKey(contactID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find contact by id: %w", err)
	}
	return decodeContact(raw)
}

// UpdateByID runs a WATCH/MULTI read-modify-write, retrying when another
// writer touches the key first.
func (s *RedisStore) UpdateByID(ctx context.Context, contactID id.ContactID, u models.Update) (*models.Contact, error) {
	key := contactKey(contactID)
	var updated *models.Contact

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return err
		}
		c, err := decodeContact(raw)
		if err != nil {
			return err
		}
		c.Apply(u)
		payload, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal contact: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err != nil {
			return err
		}
		updated = c
		return nil
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return nil, sentinel.ErrConflict
}

func (s *RedisStore) DeleteByID(ctx context.Context, contactID id.ContactID) (bool, error) {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, contactKey(contactID))
		pipe.ZRem(ctx, contactIndexKey, contactID.String())
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("delete contact: %w", err)
	}
	return del.Val() > 0, nil
}

func (s *RedisStore) Health(ctx context.Context) error {
	return unavailable(s.client.Ping(ctx).Err())
}

// Close is a no-op; the client lifecycle is managed externally.
func (s *RedisStore) Close() error {
	return nil
}

func decodeContact(raw []byte) (*models.Contact, error) {
	var c models.Contact
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode contact: %w", err)
	}
	return &c, nil
}
