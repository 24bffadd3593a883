// Package cleanup tears down finished story channels after a grace period.
// Teardown is a one-shot cancellable timer per channel, independent of the
// request path: a new session reusing the channel cancels the pending timer
// instead of racing it.
package cleanup

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ChannelDeleter is the slice of the transport the scheduler needs.
type ChannelDeleter interface {
	DeleteChannel(ctx context.Context, channelID string) error
}

type Scheduler struct {
	mu      sync.Mutex
	timers  map[string]*time.Timer
	deleter ChannelDeleter
	log     *zap.Logger
	timeout time.Duration
}

func NewScheduler(deleter ChannelDeleter, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		timers:  make(map[string]*time.Timer),
		deleter: deleter,
		log:     log,
		timeout: 10 * time.Second,
	}
}

// Arm schedules the channel for deletion after delay. Re-arming an already
// armed channel resets its timer.
func (s *Scheduler) Arm(channelID string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.timers[channelID]; ok {
		timer.Stop()
	}
	s.timers[channelID] = time.AfterFunc(delay, func() {
		s.fire(channelID)
	})
	s.log.Debug("teardown armed", zap.String("channel", channelID), zap.Duration("delay", delay))
}

// Cancel stops a pending teardown. Returns whether a timer was pending.
func (s *Scheduler) Cancel(channelID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	timer, ok := s.timers[channelID]
	if !ok {
		return false
	}
	timer.Stop()
	delete(s.timers, channelID)
	s.log.Debug("teardown cancelled", zap.String("channel", channelID))
	return true
}

// Stop cancels every pending teardown, for shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

// fire performs the actual delete. Failure is logged and dropped: the channel
// lingers until an operator removes it, which beats retrying forever.
func (s *Scheduler) fire(channelID string) {
	s.mu.Lock()
	delete(s.timers, channelID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.deleter.DeleteChannel(ctx, channelID); err != nil {
		s.log.Warn("channel teardown failed", zap.String("channel", channelID), zap.Error(err))
		return
	}
	s.log.Debug("channel torn down", zap.String("channel", channelID))
}
