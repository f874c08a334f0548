package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type BreakerSuite struct {
	suite.Suite
}

func TestBreakerSuite(t *testing.T) {
	suite.Run(t, new(BreakerSuite))
}

func (s *BreakerSuite) TestStartsClosed() {
	b := New("kafka")
	s.False(b.IsOpen())
	s.Equal(StateClosed, b.State())
	s.Equal("kafka", b.Name())
	s.Equal("closed", b.State().String())
}

func (s *BreakerSuite) TestOpensOnThreshold() {
	b := New("kafka", WithFailureThreshold(2))

	stop, change := b.RecordFailure()
	s.False(stop)
	s.False(change.Opened)

	stop, change = b.RecordFailure()
	s.True(stop)
	s.True(change.Opened)
	s.Equal("open", b.State().String())

	s.Run("further failures keep it open without a transition", func() {
		stop, change := b.RecordFailure()
		s.True(stop)
		s.False(change.Opened)
	})
}

func (s *BreakerSuite) TestClosesAfterConsecutiveSuccesses() {
	b := New("kafka", WithFailureThreshold(1), WithSuccessThreshold(2))
	b.RecordFailure()
	s.Require().True(b.IsOpen())

	closed, change := b.RecordSuccess()
	s.False(closed)
	s.False(change.Closed)

	closed, change = b.RecordSuccess()
	s.True(closed)
	s.True(change.Closed)
	s.False(b.IsOpen())
}

func (s *BreakerSuite) TestInterleavedResultsResetCounters() {
	s.Run("success while closed clears failures", func() {
		b := New("kafka", WithFailureThreshold(2))
		b.RecordFailure()
		b.RecordSuccess()
		b.RecordFailure()
		s.False(b.IsOpen())
	})

	s.Run("failure while open clears successes", func() {
		b := New("kafka", WithFailureThreshold(1), WithSuccessThreshold(2))
		b.RecordFailure()
		b.RecordSuccess()
		b.RecordFailure()
		b.RecordSuccess()
		s.True(b.IsOpen())
		b.RecordSuccess()
		s.False(b.IsOpen())
	})
}

func (s *BreakerSuite) TestReset() {
	b := New("kafka", WithFailureThreshold(1))
	b.RecordFailure()
	s.Require().True(b.IsOpen())

	b.Reset()
	s.False(b.IsOpen())
}

func (s *BreakerSuite) TestNonPositiveThresholdsIgnored() {
	b := New("kafka", WithFailureThreshold(0), WithSuccessThreshold(-1))
	for i := 0; i < 4; i++ {
		b.RecordFailure()
	}
	s.False(b.IsOpen())
	b.RecordFailure()
	s.True(b.IsOpen())
}

func (s *BreakerSuite) TestAllowProbesAfterCooldown() {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	b := New("kafka",
		WithFailureThreshold(1),
		WithSuccessThreshold(1),
		WithCooldown(10*time.Second),
		WithClock(func() time.Time { return now }),
	)
	s.True(b.Allow())

	b.RecordFailure()
	s.False(b.Allow())

	now = now.Add(9 * time.Second)
	s.False(b.Allow())

	now = now.Add(time.Second)
	s.True(b.Allow())

	s.Run("failed probe restarts the cooldown", func() {
		b.RecordFailure()
		s.False(b.Allow())
	})

	s.Run("successful probe closes", func() {
		now = now.Add(10 * time.Second)
		s.Require().True(b.Allow())
		closed, change := b.RecordSuccess()
		s.True(closed)
		s.True(change.Closed)
		s.True(b.Allow())
	})
}
