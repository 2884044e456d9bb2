// Package serialio owns the serial side of the session: opening the
// device, reading it on a background goroutine, and reopening it when
// it goes away. The event loop consumes a single ordered event
// channel and never touches the device directly.
package serialio

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.bug.st/serial"
)

// EventKind tags events on the connection's channel.
type EventKind int

const (
	// Connected: the device was (re)opened.
	Connected EventKind = iota
	// Disconnected: the device went away; reconnection is underway.
	Disconnected
	// Data: a chunk of raw bytes arrived.
	Data
)

// Event is one serial-side occurrence, delivered in arrival order.
type Event struct {
	Kind EventKind
	Name string // device path, for Connected
	Data []byte // owned by the receiver, for Data
	Err  error  // cause, for Disconnected
}

// ErrNotConnected is returned by Write while the device is away.
var ErrNotConnected = errors.New("serialio: device not connected")

const (
	readBufSize    = 4096
	reopenInterval = 2500 * time.Millisecond
)

// Conn is a self-healing serial connection. Reads are pushed to the
// Events channel by a background goroutine; writes go to whichever
// port is currently open.
type Conn struct {
	path string
	baud int
	log  *slog.Logger

	events chan Event
	done   chan struct{}

	mu   sync.Mutex
	port io.ReadWriteCloser
}

// Open starts the connection's reader goroutine and returns
// immediately; the first Connected event signals a usable device.
func Open(path string, baud int, log *slog.Logger) *Conn {
	c := &Conn{
		path:   path,
		baud:   baud,
		log:    log,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}
	go c.run()
	return c
}

// Events returns the ordered event channel. It is closed after Close.
func (c *Conn) Events() <-chan Event { return c.events }

// Write sends p to the device. While disconnected it fails with
// ErrNotConnected rather than blocking.
func (c *Conn) Write(p []byte) error {
	c.mu.Lock()
	port := c.port
	c.mu.Unlock()
	if port == nil {
		return ErrNotConnected
	}
	_, err := port.Write(p)
	return err
}

// Close tears the connection down and stops the reader goroutine.
func (c *Conn) Close() {
	select {
	case <-c.done:
		return
	default:
	}
	close(c.done)
	c.mu.Lock()
	if c.port != nil {
		c.port.Close()
		c.port = nil
	}
	c.mu.Unlock()
}

func (c *Conn) run() {
	defer close(c.events)
	for {
		port, err := c.open()
		if err != nil {
			c.log.Debug("open failed, waiting for device", "path", c.path, "err", err)
			if !c.awaitDevice() {
				return
			}
			continue
		}

		c.mu.Lock()
		c.port = port
		c.mu.Unlock()
		if !c.emit(Event{Kind: Connected, Name: c.path}) {
			return
		}
		readErr := c.readLoop(port)

		c.mu.Lock()
		c.port = nil
		c.mu.Unlock()
		port.Close()

		select {
		case <-c.done:
			return
		default:
		}
		c.log.Info("device disconnected", "path", c.path, "err", readErr)
		if !c.emit(Event{Kind: Disconnected, Err: readErr}) {
			return
		}
		if !c.awaitDevice() {
			return
		}
	}
}

// open dials the device: a character device goes through the serial
// driver, a unix socket (emulator pty bridges) through net.Dial.
func (c *Conn) open() (io.ReadWriteCloser, error) {
	info, err := os.Stat(c.path)
	if err != nil {
		return nil, err
	}
	if info.Mode()&os.ModeSocket != 0 {
		return net.Dial("unix", c.path)
	}
	return serial.Open(c.path, &serial.Mode{BaudRate: c.baud})
}

func (c *Conn) readLoop(port io.Reader) error {
	buf := make([]byte, readBufSize)
	for {
		n, err := port.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			if !c.emit(Event{Kind: Data, Data: data}) {
				return nil
			}
		}
		if err != nil {
			return err
		}
		if n == 0 && err == nil {
			// Zero-length read without error is EOF on some drivers.
			return io.EOF
		}
	}
}

func (c *Conn) emit(ev Event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

// awaitDevice blocks until the device path looks openable again or
// the connection is closed. It watches the parent directory for the
// node to reappear and keeps a slow poll as fallback, since udev can
// recreate nodes faster than a watch gets established.
func (c *Conn) awaitDevice() bool {
	stop := make(chan struct{})
	defer close(stop)

	var fsEvents chan fsnotify.Event
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		defer watcher.Close()
		if err := watcher.Add(filepath.Dir(c.path)); err == nil {
			fsEvents = make(chan fsnotify.Event)
			go func() {
				for ev := range watcher.Events {
					select {
					case fsEvents <- ev:
					case <-stop:
						return
					}
				}
			}()
		}
	}

	ticker := time.NewTicker(reopenInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return false
		case ev := <-fsEvents:
			if ev.Name == c.path && ev.Op&fsnotify.Create != 0 {
				return true
			}
		case <-ticker.C:
			if _, err := os.Stat(c.path); err == nil {
				return true
			}
		}
	}
}
