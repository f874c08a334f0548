//go:build integration

package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"crm/internal/contact/store"
	"crm/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	storeBehaviorSuite
	postgres *containers.PostgresContainer
	pg       *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.pg = store.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.pg.EnsureSchema(context.Background()))
	s.store = s.pg
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "contacts")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestEnsureSchemaIsIdempotent() {
	s.NoError(s.pg.EnsureSchema(context.Background()))
}
