package store_test

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"crm/internal/contact/models"
	id "crm/pkg/domain"
	"crm/pkg/platform/sentinel"
)

type contactStore interface {
	IsValidID(raw string) bool
	Insert(ctx context.Context, c *models.Contact) (*models.Contact, error)
	FindAll(ctx context.Context) ([]*models.Contact, error)
	FindByID(ctx context.Context, contactID id.ContactID) (*models.Contact, error)
	UpdateByID(ctx context.Context, contactID id.ContactID, u models.Update) (*models.Contact, error)
	DeleteByID(ctx context.Context, contactID id.ContactID) (bool, error)
	Health(ctx context.Context) error
}

// storeBehaviorSuite holds the behaviour every backend shares. Backend suites
// embed it and set store in their SetupTest.
type storeBehaviorSuite struct {
	suite.Suite
	store contactStore
}

var baseTime = time.Date(2026, 3, 14, 9, 26, 53, 589_000_000, time.UTC)

func newTestContact(first, last string, created time.Time) *models.Contact {
	return models.NewContact(&models.CreateContactRequest{
		FirstName: first,
		LastName:  last,
		Email:     "ada@example.com",
	}, created)
}

func strPtr(s string) *string { return &s }

func (s *storeBehaviorSuite) TestInsertAssignsIdentifier() {
	ctx := context.Background()

	stored, err := s.store.Insert(ctx, newTestContact("Ada", "Lovelace", baseTime))
	s.Require().NoError(err)

	s.False(stored.ID.IsNil())
	s.True(s.store.IsValidID(stored.ID.String()))
	s.Equal(0, stored.Version)
	s.Nil(stored.ModifiedDate)
	s.True(baseTime.Equal(stored.CreatedDate))
}

func (s *storeBehaviorSuite) TestFindByID() {
	ctx := context.Background()

	s.Run("returns stored contact", func() {
		stored, err := s.store.Insert(ctx, newTestContact("Ada", "Lovelace", baseTime))
		s.Require().NoError(err)

		found, err := s.store.FindByID(ctx, stored.ID)
		s.Require().NoError(err)
		s.Equal(stored.ID, found.ID)
		s.Equal("Ada", found.FirstName)
		s.Equal("Lovelace", found.LastName)
		s.Equal("ada@example.com", found.Email)
		s.Empty(found.Company)
		s.Empty(found.Phone)
	})

	s.Run("returns ErrNotFound for well-formed unknown id", func() {
		_, err := s.store.FindByID(ctx, id.NewContactID())
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *storeBehaviorSuite) TestModifiedDateNeverPrecedesCreatedDate() {
	ctx := context.Background()
	stored, err := s.store.Insert(ctx, newTestContact("Ada", "Lovelace", baseTime))
	s.Require().NoError(err)

	updated, err := s.store.UpdateByID(ctx, stored.ID, models.NewUpdate(models.Patch{}, baseTime.Add(-time.Hour)))
	s.Require().NoError(err)
	s.Require().NotNil(updated.ModifiedDate)
	s.True(baseTime.Equal(*updated.ModifiedDate), "got %s", updated.ModifiedDate)

	fetched, err := s.store.FindByID(ctx, stored.ID)
	s.Require().NoError(err)
	s.Require().NotNil(fetched.ModifiedDate)
	s.True(baseTime.Equal(*fetched.ModifiedDate))
}

func (s *storeBehaviorSuite) TestFindAllReturnsCreationOrder() {
	ctx := context.Background()

	all, err := s.store.FindAll(ctx)
	s.Require().NoError(err)
	s.NotNil(all)
	s.Empty(all)

	first, err := s.store.Insert(ctx, newTestContact("Ada", "Lovelace", baseTime))
	s.Require().NoError(err)
	second, err := s.store.Insert(ctx, newTestContact("Grace", "Hopper", baseTime.Add(time.Second)))
	s.Require().NoError(err)

	all, err = s.store.FindAll(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal(first.ID, all[0].ID)
	s.Equal(second.ID, all[1].ID)
}

func (s *storeBehaviorSuite) TestUpdateByID() {
	ctx := context.Background()

	s.Run("applies patch and bumps version", func() {
		stored, err := s.store.Insert(ctx, newTestContact("Ada", "Lovelace", baseTime))
		s.Require().NoError(err)

		modified := baseTime.Add(time.Minute)
		u := models.NewUpdate(models.Patch{Company: strPtr("Analytical Engines")}, modified)
		updated, err := s.store.UpdateByID(ctx, stored.ID, u)
		s.Require().NoError(err)

		s.Equal("Analytical Engines", updated.Company)
		s.Equal("Ada", updated.FirstName)
		s.Equal(1, updated.Version)
		s.Require().NotNil(updated.ModifiedDate)
		s.True(modified.Equal(*updated.ModifiedDate))
		s.True(stored.CreatedDate.Equal(updated.CreatedDate))

		found, err := s.store.FindByID(ctx, stored.ID)
		s.Require().NoError(err)
		s.Equal(1, found.Version)
		s.Equal("Analytical Engines", found.Company)
	})

	s.Run("empty patch still bumps version", func() {
		stored, err := s.store.Insert(ctx, newTestContact("Ada", "Lovelace", baseTime))
		s.Require().NoError(err)

		for i := 1; i <= 3; i++ {
			updated, err := s.store.UpdateByID(ctx, stored.ID, models.NewUpdate(models.Patch{}, baseTime.Add(time.Duration(i)*time.Second)))
			s.Require().NoError(err)
			s.Equal(i, updated.Version)
		}
	})

	s.Run("empty optional value clears the field", func() {
		stored, err := s.store.Insert(ctx, newTestContact("Ada", "Lovelace", baseTime))
		s.Require().NoError(err)

		updated, err := s.store.UpdateByID(ctx, stored.ID, models.NewUpdate(models.Patch{Email: strPtr("")}, baseTime.Add(time.Second)))
		s.Require().NoError(err)
		s.Empty(updated.Email)
	})

	s.Run("returns ErrNotFound for unknown id", func() {
		_, err := s.store.UpdateByID(ctx, id.NewContactID(), models.NewUpdate(models.Patch{}, baseTime))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *storeBehaviorSuite) TestConcurrentUpdatesCountEveryWrite() {
	ctx := context.Background()
	stored, err := s.store.Insert(ctx, newTestContact("Ada", "Lovelace", baseTime))
	s.Require().NoError(err)

	const writers = 5
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := models.NewUpdate(models.Patch{}, baseTime.Add(time.Duration(i+1)*time.Second))
			if _, err := s.store.UpdateByID(ctx, stored.ID, u); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	conflicts := 0
	for err := range errs {
		s.Require().ErrorIs(err, sentinel.ErrConflict)
		conflicts++
	}

	found, err := s.store.FindByID(ctx, stored.ID)
	s.Require().NoError(err)
	s.Equal(writers-conflicts, found.Version)
}

func (s *storeBehaviorSuite) TestDeleteByID() {
	ctx := context.Background()

	stored, err := s.store.Insert(ctx, newTestContact("Ada", "Lovelace", baseTime))
	s.Require().NoError(err)

	deleted, err := s.store.DeleteByID(ctx, stored.ID)
	s.Require().NoError(err)
	s.True(deleted)

	_, err = s.store.FindByID(ctx, stored.ID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	deleted, err = s.store.DeleteByID(ctx, stored.ID)
	s.Require().NoError(err)
	s.False(deleted)

	all, err := s.store.FindAll(ctx)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *storeBehaviorSuite) TestIsValidID() {
	s.True(s.store.IsValidID("507f1f77bcf86cd799439011"))
	s.False(s.store.IsValidID("abc"))
	s.False(s.store.IsValidID(""))
	s.False(s.store.IsValidID("507f1f77bcf86cd79943901z"))
}

func (s *storeBehaviorSuite) TestHealth() {
	s.NoError(s.store.Health(context.Background()))
}
