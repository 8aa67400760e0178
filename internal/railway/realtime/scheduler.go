package realtime

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// refreshScheduler periodically asks the server for a fresh snapshot
type refreshScheduler struct {
	cron *cron.Cron
}

// cron rounds @every schedules down to whole seconds
const minRefreshInterval = time.Second

func newRefreshScheduler(interval time.Duration, job func()) (*refreshScheduler, error) {
	if interval < minRefreshInterval {
		return nil, fmt.Errorf("refresh interval %s below minimum %s", interval, minRefreshInterval)
	}
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	if _, err := c.AddFunc("@every "+interval.String(), job); err != nil {
		return nil, fmt.Errorf("failed to create refresh job: %w", err)
	}
	return &refreshScheduler{cron: c}, nil
}

func (s *refreshScheduler) Start() {
	s.cron.Start()
}

// Stop waits for a running job to finish
func (s *refreshScheduler) Stop() {
	<-s.cron.Stop().Done()
}
