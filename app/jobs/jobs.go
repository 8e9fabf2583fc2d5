// Package jobs runs the periodic background tasks of the blog.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blogsite/app/services"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const refreshTimeout = time.Minute

// SitemapRefresher rebuilds the sitemap snapshot.
type SitemapRefresher interface {
	Refresh(ctx context.Context) (*services.Sitemap, error)
}

// Scheduler wraps a cron runner with the blog's timed tasks.
type Scheduler struct {
	quartz *cron.Cron
}

// New schedules the sitemap refresh on spec, a standard cron expression or
// an @every descriptor. An empty spec schedules nothing.
func New(spec string, sitemaps SitemapRefresher) (*Scheduler, error) {
	quartz := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(&log.Logger)))
	if spec != "" {
		if _, err := quartz.AddFunc(spec, func() { RefreshSitemap(sitemaps) }); err != nil {
			return nil, fmt.Errorf("invalid sitemap schedule %q: %w", spec, err)
		}
	}
	return &Scheduler{quartz: quartz}, nil
}

// Jobs returns the number of scheduled tasks.
func (s *Scheduler) Jobs() int {
	return len(s.quartz.Entries())
}

func (s *Scheduler) Start() {
	s.quartz.Start()
}

// Stop stops scheduling and waits for running tasks until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.quartz.Stop().Done():
	case <-ctx.Done():
		log.Warn().Msg("Timed out waiting for background jobs")
	}
}

// RefreshSitemap rebuilds the sitemap once, logging failures.
func RefreshSitemap(sitemaps SitemapRefresher) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	sm, err := sitemaps.Refresh(ctx)
	if errors.Is(err, services.ErrNoBaseURL) {
		log.Debug().Msg("Sitemap refresh skipped until the site address is known.")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("An error occurred when refreshing the sitemap.")
		return
	}
	log.Info().Int("urls", sm.URLs).Msg("Sitemap refreshed.")
}
