package main

import (
	"io"
	"net"
	"os"
	"time"

	"github.com/pkg/errors"

	"linediff/logger"
)

type Client struct {
	socketPath string
}

func NewClient() *Client {
	return &Client{
		socketPath: getSocketPath(),
	}
}

// Connect relays stdin and stdout to the daemon socket until either side
// closes.
func (c *Client) Connect() error {
	conn, err := net.Dial("unix", c.socketPath)
	if err != nil {
		return errors.Wrapf(err, "dial %s", c.socketPath)
	}
	defer conn.Close()

	go func() {
		io.Copy(conn, os.Stdin)
		conn.Close()
	}()

	io.Copy(os.Stdout, conn)
	return nil
}

func (c *Client) EnsureDaemonRunning() error {
	running, pid := isDaemonRunning()
	if running {
		logger.Debug("daemon already running with PID %d", pid)
		return nil
	}

	return c.startDaemon()
}

func (c *Client) startDaemon() error {
	logger.Debug("starting daemon...")

	// The daemon inherits LINEDIFF_CONFIG through the environment.
	_, err := os.StartProcess(os.Args[0], []string{os.Args[0], "--daemon"}, &os.ProcAttr{
		Env: os.Environ(),
		Files: []*os.File{
			nil, // stdin
			nil, // stdout
			nil, // stderr
		},
	})
	if err != nil {
		return errors.Wrap(err, "start daemon")
	}

	return c.waitForDaemon()
}

func (c *Client) waitForDaemon() error {
	for range 50 { // Wait up to 5 seconds
		if running, _ := isDaemonRunning(); running {
			logger.Debug("daemon started successfully")
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return errors.New("daemon failed to start within timeout")
}
