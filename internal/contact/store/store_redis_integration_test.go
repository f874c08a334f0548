//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"crm/internal/contact/store"
	id "crm/pkg/domain"
	"crm/pkg/platform/sentinel"
	"crm/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	storeBehaviorSuite
	redis *containers.RedisContainer
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = store.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestDeleteRemovesIndexEntry() {
	ctx := context.Background()
	stored, err := s.store.Insert(ctx, newTestContact("Ada", "Lovelace", baseTime))
	s.Require().NoError(err)

	_, err = s.store.DeleteByID(ctx, stored.ID)
	s.Require().NoError(err)

	n, err := s.redis.Client.ZCard(ctx, "contacts:index").Result()
	s.Require().NoError(err)
	s.Zero(n)
}

func (s *RedisStoreSuite) TestFailedIndexWriteLeavesNoDocument() {
	ctx := context.Background()
	// A string under the index key makes ZADD fail with WRONGTYPE.
	s.Require().NoError(s.redis.Client.Set(ctx, "contacts:index", "not-a-zset", 0).Err())

	c := newTestContact("Ada", "Lovelace", baseTime)
	c.ID = id.NewContactID()
	_, err := s.store.Insert(ctx, c)
	s.Require().Error(err)

	n, err := s.redis.Client.Exists(ctx, "contact:"+c.ID.String()).Result()
	s.Require().NoError(err)
	s.Zero(n)

	_, err = s.store.FindByID(ctx, c.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestDuplicateInsertKeepsOriginal() {
	ctx := context.Background()
	stored, err := s.store.Insert(ctx, newTestContact("Ada", "Lovelace", baseTime))
	s.Require().NoError(err)

	dup := newTestContact("Grace", "Hopper", baseTime.Add(time.Hour))
	dup.ID = stored.ID
	_, err = s.store.Insert(ctx, dup)
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	fetched, err := s.store.FindByID(ctx, stored.ID)
	s.Require().NoError(err)
	s.Equal("Ada", fetched.FirstName)

	n, err := s.redis.Client.ZCard(ctx, "contacts:index").Result()
	s.Require().NoError(err)
	s.EqualValues(1, n)
}
