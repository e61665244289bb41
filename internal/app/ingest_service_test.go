package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"video_xapi_tracker/internal/domain/delivery"
	"video_xapi_tracker/internal/domain/statement"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticResolver struct {
	actor *statement.Actor
	err   error
}

func (r *staticResolver) ResolveInstructor(context.Context, int64) (*statement.Actor, error) {
	return r.actor, r.err
}

func ingestFixture(t *testing.T, lrsEndpoint string, resolver InstructorResolver, enabled bool) (*IngestService, *memoryRepository) {
	t.Helper()
	repo := newMemoryRepository()
	var svc *DeliveryService
	if lrsEndpoint == "" {
		svc = NewDeliveryService(nil, repo, 3, testLogger())
	} else {
		svc = NewDeliveryService(lrsClientFor(t, lrsEndpoint), repo, 3, testLogger())
	}
	ingest := NewIngestService(svc, resolver, "https://lms.example.com", "TestLMS", enabled, testLogger())
	return ingest, repo
}

func trackPlay(t *testing.T, ingest *IngestService) (*TrackOutcome, error) {
	t.Helper()
	return ingest.Track(
		context.Background(),
		statement.Principal{Email: "a@b.com", Username: "ab"},
		statement.Video{ID: 1, Name: "v"},
		statement.Course{ID: 3, Name: "c"},
		statement.PlayEvent{Time: 2, Length: 10},
	)
}

func TestTrackDeliversSynchronously(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ingest, repo := ingestFixture(t, srv.URL, nil, true)
	outcome, err := trackPlay(t, ingest)
	require.NoError(t, err)

	assert.True(t, outcome.Delivered)
	assert.False(t, outcome.Queued)
	assert.Equal(t, http.StatusOK, outcome.Result.HTTPCode)
	// No record is ever created in the queue on synchronous success.
	assert.Empty(t, repo.records)
}

func TestTrackFallsBackToQueueOnDeliveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	ingest, repo := ingestFixture(t, srv.URL, nil, true)
	outcome, err := trackPlay(t, ingest)
	require.NoError(t, err)

	assert.False(t, outcome.Delivered)
	assert.True(t, outcome.Queued)
	require.Len(t, repo.records, 1)
	assert.Equal(t, delivery.StatusPending, repo.records[1].Status)
}

func TestTrackQueuesDirectlyWhenUnconfigured(t *testing.T) {
	ingest, repo := ingestFixture(t, "", nil, true)
	outcome, err := trackPlay(t, ingest)
	require.NoError(t, err)

	assert.False(t, outcome.Delivered)
	assert.True(t, outcome.Queued)
	assert.Len(t, repo.records, 1)
}

func TestTrackDisabled(t *testing.T) {
	ingest, repo := ingestFixture(t, "", nil, false)
	_, err := trackPlay(t, ingest)
	assert.ErrorIs(t, err, ErrTrackingDisabled)
	assert.Empty(t, repo.records)
}

func TestTrackRejectsInvalidStatement(t *testing.T) {
	// A base URL that cannot form activity IRIs makes the built statement
	// fail the pre-send check before any network or queue write.
	repo := newMemoryRepository()
	badIngest := NewIngestService(NewDeliveryService(nil, repo, 3, testLogger()), nil, "not a url", "TestLMS", true, testLogger())

	_, err := trackPlay(t, badIngest)
	assert.ErrorIs(t, err, ErrInvalidStatement)
	assert.Empty(t, repo.records)
}

func TestTrackAttachesInstructor(t *testing.T) {
	instructor := statement.NewActor(statement.Principal{Email: "prof@example.com"}, "")
	ingest, _ := ingestFixture(t, "", &staticResolver{actor: instructor}, true)

	outcome, err := trackPlay(t, ingest)
	require.NoError(t, err)
	require.NotNil(t, outcome.Statement.Context.Instructor)
	assert.Equal(t, "mailto:prof@example.com", outcome.Statement.Context.Instructor.Mbox)
}

func TestTrackSurvivesResolverFailure(t *testing.T) {
	ingest, _ := ingestFixture(t, "", &staticResolver{err: fmt.Errorf("lookup failed")}, true)

	outcome, err := trackPlay(t, ingest)
	require.NoError(t, err)
	assert.True(t, outcome.Queued)
	assert.Nil(t, outcome.Statement.Context.Instructor)
}
