package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"blogsite/app/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRefresher struct {
	calls atomic.Int32
	err   error
}

func (f *fakeRefresher) Refresh(context.Context) (*services.Sitemap, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &services.Sitemap{URLs: 3}, nil
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		jobs    int
		wantErr bool
	}{
		{"disabled", "", 0, false},
		{"every", "@every 15m", 1, false},
		{"standard", "*/5 * * * *", 1, false},
		{"invalid", "every now and then", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.spec, &fakeRefresher{})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.jobs, s.Jobs())
		})
	}
}

func TestSchedulerRuns(t *testing.T) {
	r := &fakeRefresher{}
	s, err := New("@every 1s", r)
	require.NoError(t, err)
	s.Start()
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return r.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestRefreshSitemap(t *testing.T) {
	ok := &fakeRefresher{}
	RefreshSitemap(ok)
	assert.Equal(t, int32(1), ok.calls.Load())

	failing := &fakeRefresher{err: errors.New("boom")}
	RefreshSitemap(failing)
	assert.Equal(t, int32(1), failing.calls.Load())

	unknownSite := &fakeRefresher{err: services.ErrNoBaseURL}
	RefreshSitemap(unknownSite)
	assert.Equal(t, int32(1), unknownSite.calls.Load())
}

func TestStopTimesOut(t *testing.T) {
	s, err := New("", &fakeRefresher{})
	require.NoError(t, err)
	s.Start()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Stop(ctx)
}
