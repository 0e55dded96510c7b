package main

import (
	"fmt"
	"testing"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestFormatError(t *testing.T) {
	fixtures := []struct {
		err      error
		expected string
	}{
		{
			err:      domain.NewError(domain.ErrorKindExpired, "htlc a_b expired"),
			expected: "Expired: htlc a_b expired",
		},
		{
			err:      fmt.Errorf("claim: %w", domain.NewError(domain.ErrorKindHashMismatch, "wrong preimage")),
			expected: "HashMismatch: wrong preimage",
		},
		{
			err:      fmt.Errorf("connection refused"),
			expected: "error: connection refused",
		},
	}
	for _, f := range fixtures {
		require.Equal(t, f.expected, formatError(f.err))
	}
}
