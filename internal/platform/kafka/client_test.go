package kafka

import (
	"testing"

	"github.com/stretchr/testify/require"

	"xcmkit/internal/platform/config"
)

func TestNewRequiresBrokers(t *testing.T) {
	_, err := New(config.Kafka{Topic: "audit"})
	require.Error(t, err)
}
