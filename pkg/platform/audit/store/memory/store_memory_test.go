package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "xcmkit/pkg/platform/audit"
)

func seed(t *testing.T, s *InMemoryStore, actions ...audit.AuditEvent) {
	t.Helper()
	for i, a := range actions {
		require.NoError(t, s.Append(context.Background(), audit.Event{Action: string(a), AssetCount: i}))
	}
}

func TestListRecent(t *testing.T) {
	s := NewInMemoryStore()
	seed(t, s, audit.EventDirectiveBuilt, audit.EventDirectiveFailed, audit.EventDirectiveBuilt)

	last, err := s.ListRecent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, 1, last[0].AssetCount)
	assert.Equal(t, 2, last[1].AssetCount)

	all, err := s.ListRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	all[0].Action = "mutated"
	again, _ := s.ListRecent(context.Background(), 0)
	assert.Equal(t, string(audit.EventDirectiveBuilt), again[0].Action)
}

func TestListByAction(t *testing.T) {
	s := NewInMemoryStore()
	seed(t, s, audit.EventDirectiveBuilt, audit.EventForeignAssetCached, audit.EventDirectiveBuilt)

	built, err := s.ListByAction(context.Background(), audit.EventDirectiveBuilt)
	require.NoError(t, err)
	require.Len(t, built, 2)
	assert.Equal(t, 0, built[0].AssetCount)
	assert.Equal(t, 2, built[1].AssetCount)

	none, err := s.ListByAction(context.Background(), audit.EventAdminAuthFailed)
	require.NoError(t, err)
	assert.Empty(t, none)
}
