// Package netchan implements the named, reliable, ordered channels the ring
// topology is built on: a 128-byte padded handshake name exchanged on
// connect, a synchronous blocking Read, and a double-buffered AsyncWrite
// that queues writes behind a single in-flight network write. It runs over
// net.Conn in production and net.Pipe in tests (see internal/simnet), which
// is why the type is called Channel rather than TCPChannel.
package netchan

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
)

// NameSize is the fixed width of the handshake name exchanged on connect.
const NameSize = 128

// Channel wraps a single net.Conn with the protocol's handshake and
// double-buffered async write queue.
type Channel struct {
	conn net.Conn
	r    *bufio.Reader

	writeMu     sync.Mutex
	writeQueue  [][]byte
	writeActive bool
	writeErr    error

	bytesSent     atomic.Uint64
	bytesReceived atomic.Uint64
}

// NewChannel wraps an already-connected net.Conn. The caller is responsible
// for having completed (or decided to skip) the name handshake.
func NewChannel(conn net.Conn) *Channel {
	return &Channel{conn: conn, r: bufio.NewReader(conn)}
}

// Dial connects to address and sends localName as the 128-byte padded
// handshake name, matching TcpEndpoint::Connect's wire behavior.
func Dial(network, address string, localName string) (*Channel, error) {
	conn, err := net.Dial(network, address)
	if err != nil {
		return nil, fmt.Errorf("netchan: dial %s: %w", address, err)
	}
	ch := NewChannel(conn)
	if err := ch.SendName(localName); err != nil {
		conn.Close()
		return nil, err
	}
	return ch, nil
}

// Accept reads the 128-byte padded handshake name off an inbound
// connection, matching TcpEndpoint::AcceptHandler.
func Accept(conn net.Conn) (*Channel, string, error) {
	ch := NewChannel(conn)
	name, err := ch.readName()
	if err != nil {
		conn.Close()
		return nil, "", err
	}
	return ch, name, nil
}

// SendName writes the 128-byte padded handshake name, the client side of
// the handshake Accept performs on the server side.
func (c *Channel) SendName(name string) error {
	buf := make([]byte, NameSize)
	copy(buf, name)
	return c.Write(buf)
}

func (c *Channel) readName() (string, error) {
	buf := make([]byte, NameSize)
	if err := c.Read(buf); err != nil {
		return "", err
	}
	end := 0
	for end < len(buf) && buf[end] != 0 {
		end++
	}
	return string(buf[:end]), nil
}

// Write synchronously writes len(buf) bytes, blocking until complete.
func (c *Channel) Write(buf []byte) error {
	n, err := c.conn.Write(buf)
	c.bytesSent.Add(uint64(n))
	if err != nil {
		return fmt.Errorf("netchan: write: %w", err)
	}
	return nil
}

// Read synchronously fills buf completely, blocking until it does.
func (c *Channel) Read(buf []byte) error {
	n, err := io.ReadFull(c.r, buf)
	c.bytesReceived.Add(uint64(n))
	if err != nil {
		return fmt.Errorf("netchan: read: %w", err)
	}
	return nil
}

// AsyncWrite queues buf for writing and returns immediately. Writes are
// flushed in FIFO order by a single background goroutine per channel, so
// queuing a second write while one is in flight never blocks the caller,
// mirroring TcpChannel::AsyncWrite's double buffer.
func (c *Channel) AsyncWrite(buf []byte) {
	c.writeMu.Lock()
	c.writeQueue = append(c.writeQueue, buf)
	alreadyRunning := c.writeActive
	c.writeActive = true
	c.writeMu.Unlock()

	if !alreadyRunning {
		go c.drainWriteQueue()
	}
}

func (c *Channel) drainWriteQueue() {
	for {
		c.writeMu.Lock()
		if len(c.writeQueue) == 0 {
			c.writeActive = false
			c.writeMu.Unlock()
			return
		}
		buf := c.writeQueue[0]
		c.writeQueue = c.writeQueue[1:]
		c.writeMu.Unlock()

		if err := c.Write(buf); err != nil {
			c.writeMu.Lock()
			c.writeErr = err
			c.writeQueue = nil
			c.writeActive = false
			c.writeMu.Unlock()
			return
		}
	}
}

// WriteErr returns the first error encountered by a queued AsyncWrite, if
// any. Callers queuing further writes check it first so a broken connection
// is reported on the next send rather than silently dropped.
func (c *Channel) WriteErr() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.writeErr
}

// BytesSent returns the cumulative number of bytes written on this channel.
func (c *Channel) BytesSent() uint64 { return c.bytesSent.Load() }

// BytesReceived returns the cumulative number of bytes read on this channel.
func (c *Channel) BytesReceived() uint64 { return c.bytesReceived.Load() }

// ResetCounters zeroes the byte counters, matching
// TcpEndpoint::ResetCounters.
func (c *Channel) ResetCounters() {
	c.bytesSent.Store(0)
	c.bytesReceived.Store(0)
}

// Close closes the underlying connection.
func (c *Channel) Close() error { return c.conn.Close() }
