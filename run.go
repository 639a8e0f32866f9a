package statementq

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Run starts the Dispatcher, the outcome loop and the flush trigger loop, and blocks
// until ctx is canceled. It then performs one last flush and waits for every in-flight
// batch to settle, bounded by the shutdown timeout. Records left unacknowledged stay in
// the Store for the next process.
func (c *Controller) Run(ctx context.Context) error {
	if !c.markRunning() {
		return ErrAlreadyRunning
	}
	defer c.markStopped()

	workCtx, cancelWork := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelWork()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := c.dispatcher.Run(workCtx); err != nil && !errors.Is(err, context.Canceled) {
			c.cfg.Logger.Error("statementq dispatcher stopped", "err", err)
		}
	}()
	go func() {
		defer wg.Done()
		c.consume(workCtx)
	}()

	if c.cfg.FlushInterval > 0 && !c.timerConfigured() {
		c.ConfigureInterval(c.cfg.FlushInterval)
	}
	c.cfg.Logger.Info("statementq controller started")

	done := make(chan struct{}, 1)
	busy := false
	for {
		var trigger <-chan struct{}
		if !busy {
			trigger = c.trigger
		}

		select {
		case <-ctx.Done():
			c.Stop()
			c.shutdown(workCtx)
			cancelWork()
			wg.Wait()
			c.cfg.Logger.Info("statementq controller stopped")

			return nil
		case <-trigger:
			busy = true
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.flushTriggered(workCtx)
				done <- struct{}{}
			}()
		case <-done:
			busy = false
		}
	}
}

func (c *Controller) consume(ctx context.Context) {
	outcomes := c.dispatcher.Outcomes()
	for {
		select {
		case <-ctx.Done():
			return
		case outcome := <-outcomes:
			c.handleOutcome(ctx, outcome)
		}
	}
}

func (c *Controller) flushTriggered(ctx context.Context) {
	err := c.Flush(ctx)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
	case errors.Is(err, ErrDeliveryFailed):
		c.cfg.Logger.Debug("statementq triggered flush had failures", "err", err)
	default:
		c.cfg.Logger.Warn("statementq triggered flush failed", "err", err)
	}
}

func (c *Controller) shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.ShutdownTimeout)
	defer cancel()

	c.cfg.Logger.Info("statementq draining", "queued", c.queue.Len(), "in_flight", c.registry.Len())
	if err := c.Flush(ctx); err != nil && !errors.Is(err, ErrDeliveryFailed) {
		c.cfg.Logger.Warn("statementq final flush incomplete", "err", err)
	}
	if err := c.registry.Wait(ctx); err != nil {
		c.cfg.Logger.Warn("statementq shutdown before all batches settled; records remain stored", "in_flight", c.registry.Len())
	}
}

// ConfigureInterval replaces the periodic flush timer. A non-positive interval only
// cancels the current timer.
func (c *Controller) ConfigureInterval(interval time.Duration) {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	c.stopTimerLocked()
	if interval <= 0 {
		return
	}

	stop := make(chan struct{})
	c.timerStop = stop
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.requestFlush()
			}
		}
	}()
}

// Stop cancels the periodic flush timer. Batches already in flight are not affected.
func (c *Controller) Stop() {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	c.stopTimerLocked()
}

func (c *Controller) stopTimerLocked() {
	if c.timerStop != nil {
		close(c.timerStop)
		c.timerStop = nil
	}
}

func (c *Controller) timerConfigured() bool {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	return c.timerStop != nil
}

func (c *Controller) markRunning() bool {
	c.runMu.Lock()
	defer c.runMu.Unlock()
	if c.running {
		return false
	}
	c.running = true

	return true
}

func (c *Controller) markStopped() {
	c.runMu.Lock()
	c.running = false
	c.runMu.Unlock()
}
