package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenEmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	require.Error(t, err)
	require.Contains(t, err.Error(), "DATABASE_URL is empty")
}

func TestOpenMalformedDSN(t *testing.T) {
	_, err := Open(context.Background(), "://not-a-dsn")
	require.Error(t, err)
}
