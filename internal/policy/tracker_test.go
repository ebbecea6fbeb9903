package policy

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"
)

type TrackerSuite struct {
	suite.Suite
	tracker *Tracker
}

func TestTrackerSuite(t *testing.T) {
	suite.Run(t, new(TrackerSuite))
}

func (s *TrackerSuite) SetupTest() {
	s.tracker = NewTracker(WithSeeds(
		[]string{"https://rdap.good.example"},
		[]string{"https://rdap.bad.example"},
	))
}

func (s *TrackerSuite) TestClassify() {
	s.Run("seeded allowed origin", func() {
		s.Equal(Allowed, s.tracker.Classify("https://rdap.good.example"))
	})

	s.Run("seeded blocked origin", func() {
		s.Equal(Blocked, s.tracker.Classify("https://rdap.bad.example"))
	})

	s.Run("unseen origin starts unknown", func() {
		s.Equal(Unknown, s.tracker.Classify("https://rdap.new.example"))
	})

	s.Run("classification ignores trailing slash and case", func() {
		s.Equal(Allowed, s.tracker.Classify("https://RDAP.GOOD.example/"))
	})
}

func (s *TrackerSuite) TestRecordFailure() {
	origin := "https://rdap.flaky.example"

	s.Run("connectivity failure blocks the origin", func() {
		transitioned := s.tracker.RecordFailure(origin, FailureConnectivity)
		s.True(transitioned)
		s.Equal(Blocked, s.tracker.Classify(origin))
	})

	s.Run("second connectivity failure is a no-op", func() {
		s.False(s.tracker.RecordFailure(origin, FailureConnectivity))
	})

	s.Run("http status failure never poisons state", func() {
		other := "https://rdap.other.example"
		s.False(s.tracker.RecordFailure(other, FailureHTTPStatus))
		s.Equal(Unknown, s.tracker.Classify(other))
	})

	s.Run("timeout never poisons state", func() {
		other := "https://rdap.slow.example"
		s.False(s.tracker.RecordFailure(other, FailureTimeout))
		s.Equal(Unknown, s.tracker.Classify(other))
	})
}

func (s *TrackerSuite) TestRecordSuccess() {
	s.Run("promotes unknown to allowed", func() {
		origin := "https://rdap.fresh.example"
		s.tracker.RecordSuccess(origin)
		s.Equal(Allowed, s.tracker.Classify(origin))
	})

	s.Run("does not resurrect a blocked origin", func() {
		s.tracker.RecordSuccess("https://rdap.bad.example")
		s.Equal(Blocked, s.tracker.Classify("https://rdap.bad.example"))
	})
}

func (s *TrackerSuite) TestReset() {
	origin := "https://rdap.learned.example"
	s.tracker.RecordFailure(origin, FailureConnectivity)
	s.Require().Equal(Blocked, s.tracker.Classify(origin))

	s.tracker.Reset()

	s.Run("learned state is discarded", func() {
		s.Equal(Unknown, s.tracker.Classify(origin))
	})

	s.Run("seeds survive the reset", func() {
		s.Equal(Allowed, s.tracker.Classify("https://rdap.good.example"))
		s.Equal(Blocked, s.tracker.Classify("https://rdap.bad.example"))
	})
}

func (s *TrackerSuite) TestConcurrentTransitions() {
	origin := "https://rdap.contended.example"

	var wg sync.WaitGroup
	transitions := make(chan bool, 32)
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			transitions <- s.tracker.RecordFailure(origin, FailureConnectivity)
		}()
	}
	wg.Wait()
	close(transitions)

	count := 0
	for t := range transitions {
		if t {
			count++
		}
	}
	s.Equal(1, count, "exactly one goroutine should win the transition")
	s.Equal(Blocked, s.tracker.Classify(origin))
}

func TestOriginOf(t *testing.T) {
	cases := map[string]string{
		"https://rdap.verisign.com/com/v1/domain/example.com": "https://rdap.verisign.com",
		"https://RDAP.Example.ORG/":                           "https://rdap.example.org",
	}
	for in, want := range cases {
		if got := OriginOf(in); got != want {
			t.Errorf("OriginOf(%q) = %q, want %q", in, got, want)
		}
	}
}
