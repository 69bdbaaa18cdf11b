// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package production

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jeranaias/emlinh-tui/internal/api"
)

// DefaultInterval is how often a job is polled.
const DefaultInterval = 2 * time.Second

// maxFetchErrors is the number of consecutive failed polls tolerated.
const maxFetchErrors = 3

// Job is implemented by the polled job states.
type Job interface {
	api.RenderJob | api.TTSJob
}

// Poller polls one job until it finishes.
type Poller[J Job] struct {
	// Fetch returns the current state of the job.
	Fetch func(ctx context.Context) (*J, error)
	// OnUpdate is called whenever status or progress change.
	OnUpdate func(J)
	Interval time.Duration
	Logger   *slog.Logger
}

// Run polls until the job reaches a terminal status and returns that
// state. A job the backend no longer knows ends the poll at once; other
// fetch errors are retried a few times.
func (p Poller[J]) Run(ctx context.Context) (*J, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	log := p.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		lastStatus   string
		lastProgress = -1
		failures     int
	)
	for {
		job, err := p.Fetch(ctx)
		switch {
		case err == nil:
			failures = 0
			status, progress, _ := stateOf(*job)
			if status != lastStatus || progress != lastProgress {
				lastStatus, lastProgress = status, progress
				if p.OnUpdate != nil {
					p.OnUpdate(*job)
				}
			}
			if IsTerminal(status) {
				return job, nil
			}
		case ctx.Err() != nil:
			return nil, fmt.Errorf("polling job: %w", ctx.Err())
		case api.IsNotFound(err):
			return nil, err
		default:
			failures++
			log.Warn("job poll failed", "attempt", failures, "error", err)
			if failures >= maxFetchErrors {
				return nil, err
			}
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("polling job: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

func stateOf[J Job](job J) (status string, progress int, errText string) {
	switch j := any(job).(type) {
	case api.RenderJob:
		return j.Status, j.Progress, j.Error
	case api.TTSJob:
		return j.Status, j.Progress, j.Error
	}
	return "", 0, ""
}

// FailureText is the error of a failed job, or a placeholder.
func FailureText[J Job](job J) string {
	if _, _, e := stateOf(job); e != "" {
		return e
	}
	return UnknownError
}
