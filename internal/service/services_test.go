package service

import (
	"context"
	"path/filepath"
	"testing"

	"releasewatch/internal/metrics"
	"releasewatch/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewServices_WiresPipelineAndArtists(t *testing.T) {
	repo := newMemoryRepository(record("id-1", "Radiohead", pairOf("OK Computer", "")))
	catalog := newFakeCatalog()
	catalog.releases["id-1"] = pairOf("In Rainbows", "")
	publisher := &fakePublisher{}

	services, err := NewServices(Dependencies{
		Repository:  repo,
		Credentials: &fakeCredentials{cred: model.Credential{AccessToken: "token"}},
		Catalog:     catalog,
		Publisher:   publisher,
		Metrics:     metrics.New(prometheus.NewRegistry()),
	}, Options{
		Workers:  2,
		LockPath: filepath.Join(t.TempDir(), "pipeline.lock"),
	}, zap.NewNop())
	require.NoError(t, err)

	report, err := services.Scheduler.RunNow(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Digest, 1)
	require.Len(t, publisher.messages, 1)

	artists, err := services.Artist.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, artists, 1)
}

func TestNewServices_InvalidSchedule(t *testing.T) {
	_, err := NewServices(Dependencies{}, Options{
		Schedule: "every sunday",
		LockPath: filepath.Join(t.TempDir(), "pipeline.lock"),
	}, zap.NewNop())
	assert.Error(t, err)
}
