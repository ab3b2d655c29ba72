package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

// startFakeMonitor mimics the status monitor goroutine: it runs until ctx is done
func startFakeMonitor(ctx context.Context, stopped *atomic.Bool) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond)
		stopped.Store(true)
	}()
	return done
}

func TestAwaitShutdown_ServerErrorStopsMonitor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var stopped atomic.Bool
	monitorDone := startFakeMonitor(ctx, &stopped)

	serverErr := make(chan error, 1)
	serverErr <- errors.New("address already in use")

	err := awaitShutdown(ctx, cancel, &http.Server{}, serverErr, monitorDone)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server failed")
	assert.True(t, stopped.Load(), "monitor must have exited before returning")
}

func TestAwaitShutdown_ContextCancelWaitsForMonitor(t *testing.T) {
	parent, stop := context.WithCancel(context.Background())
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var stopped atomic.Bool
	monitorDone := startFakeMonitor(ctx, &stopped)

	stop()
	err := awaitShutdown(ctx, cancel, &http.Server{}, make(chan error), monitorDone)
	require.NoError(t, err)
	assert.True(t, stopped.Load())
}

func TestServe_PortInUseReturnsError(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	path := writeConfig(t, false)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = fmt.Fprintf(f, "\n[app]\nport = %d\npublic_url = \"http://localhost:%d\"\n", port, port)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	done := make(chan error, 1)
	go func() { done <- serve(context.Background(), path) }()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "http server failed")
	case <-time.After(10 * time.Second):
		t.Fatal("serve did not return after the listener failed")
	}
}
