package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"crm/internal/contact/store"
	id "crm/pkg/domain"
	"crm/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	storeBehaviorSuite
	mem *store.InMemory
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.mem = store.NewInMemory()
	s.store = s.mem
}

func (s *InMemoryStoreSuite) TestReturnedRecordsAreCopies() {
	ctx := context.Background()
	stored, err := s.mem.Insert(ctx, newTestContact("Ada", "Lovelace", baseTime))
	s.Require().NoError(err)

	stored.FirstName = "Mutated"

	found, err := s.mem.FindByID(ctx, stored.ID)
	s.Require().NoError(err)
	s.Equal("Ada", found.FirstName)
}

func (s *InMemoryStoreSuite) TestInsertRejectsDuplicateID() {
	ctx := context.Background()
	c := newTestContact("Ada", "Lovelace", baseTime)
	c.ID = id.NewContactID()

	_, err := s.mem.Insert(ctx, c)
	s.Require().NoError(err)

	_, err = s.mem.Insert(ctx, c)
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestDeletePreservesOrderOfRemaining() {
	ctx := context.Background()
	a, _ := s.mem.Insert(ctx, newTestContact("Ada", "Lovelace", baseTime))
	b, _ := s.mem.Insert(ctx, newTestContact("Grace", "Hopper", baseTime.Add(time.Second)))
	c, _ := s.mem.Insert(ctx, newTestContact("Alan", "Turing", baseTime.Add(2*time.Second)))

	_, err := s.mem.DeleteByID(ctx, b.ID)
	s.Require().NoError(err)

	all, err := s.mem.FindAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(a.ID, all[0].ID)
	s.Equal(c.ID, all[1].ID)
}
