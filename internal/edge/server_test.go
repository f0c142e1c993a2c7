package edge

import (
	"bytes"
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchkit/saas-console/internal/logging"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestServerLifecycleLogsThroughInjectedLogger(t *testing.T) {
	out := &syncBuffer{}
	logger := logging.NewLoggerTo(out, true)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	server := NewServer("127.0.0.1:0", handler, time.Second, time.Second, logger)

	done := make(chan error, 1)
	go func() {
		done <- server.Start()
	}()

	// Let the listener come up before shutting down
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, server.Shutdown(ctx))
	require.NoError(t, <-done)

	logs := out.String()
	assert.Contains(t, logs, "starting edge gateway")
	assert.Contains(t, logs, "shutting down edge gateway")
	assert.Contains(t, logs, "edge gateway stopped")
}
