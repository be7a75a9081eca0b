package pdktest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// Start creates a host, installs it for the duration of the test and closes
// it during cleanup. Tests using Start must not run in parallel with each other.
func Start(t testing.TB, opts ...Option) *Host {
	t.Helper()

	h, err := New(context.Background(), opts...)
	require.NoError(t, err, "Could not create host")

	restore := h.Install()
	t.Cleanup(func() {
		restore()
		_ = h.Close()
	})

	return h
}

// AssertNoLeaks fails the test if allocations are still live or the host
// recorded a fault.
func AssertNoLeaks(t testing.TB, h *Host) {
	t.Helper()
	require.Empty(t, h.Faults(), "host faults")
	require.Zero(t, h.Live(), "live host allocations")
}
