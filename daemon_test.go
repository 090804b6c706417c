package main

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/neovim/go-client/nvim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	config, err := parseConfig("")
	require.NoError(t, err)

	dir := t.TempDir()
	d, err := newDaemon(config, filepath.Join(dir, "linediff.sock"), filepath.Join(dir, "linediff.pid"))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- d.Start() }()

	select {
	case <-d.ready:
	case err := <-done:
		t.Fatalf("daemon exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not start")
	}

	t.Cleanup(func() {
		d.Stop()
		select {
		case err := <-done:
			assert.NoError(t, err, "daemon exit")
		case <-time.After(5 * time.Second):
			t.Error("daemon did not stop")
		}
	})
	return d
}

func dialTestDaemon(t *testing.T, d *Daemon) *nvim.Nvim {
	t.Helper()
	conn, err := net.Dial("unix", d.socketPath)
	require.NoError(t, err)

	client, err := nvim.New(conn, conn, conn, log.Printf)
	require.NoError(t, err)
	go client.Serve()
	t.Cleanup(func() { client.Close() })
	return client
}

func TestDaemon_Compute(t *testing.T) {
	d := startTestDaemon(t)
	client := dialTestDaemon(t, d)

	var result map[string]any
	err := client.Request("linediff_compute", &result, map[string]any{
		"original": []string{"a", "b", "c"},
		"modified": []string{"a", "x", "c"},
	})

	require.NoError(t, err)
	assert.Len(t, result["changes"], 1, "one hunk")
	assert.Equal(t, false, result["identical"], "identical")

	var stats map[string]any
	require.NoError(t, client.Request("linediff_stats", &stats))
	assert.EqualValues(t, 1, stats["requests"], "request counted")
}

func TestDaemon_BadRequest(t *testing.T) {
	d := startTestDaemon(t)
	client := dialTestDaemon(t, d)

	var result map[string]any
	err := client.Request("linediff_compute", &result, map[string]any{"original": []string{"a"}})

	assert.ErrorContains(t, err, `missing "modified"`)
}

func TestDaemon_PidFile(t *testing.T) {
	d := startTestDaemon(t)

	data, err := os.ReadFile(d.pidPath)
	require.NoError(t, err)
	assert.NotEmpty(t, data, "pid written")
}
