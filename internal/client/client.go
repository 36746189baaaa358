// Package client implements the sender side of the wire protocol: one
// short-lived connection, one newline-terminated line, one ACK line back.
package client

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"time"
)

var (
	ErrTimeout = errors.New("connection timed out")
	ErrRefused = errors.New("connection refused")
)

// Send connects to addr, writes message as a single line and waits for the
// acknowledgment. A connection that closes or times out after the write,
// before any ACK arrives, is treated as success with an empty ACK; the
// receiver does not promise one.
func Send(addr, message string, timeout time.Duration) (string, error) {
	if strings.ContainsAny(message, "\r\n") {
		return "", errors.New("message must not contain newlines")
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.Dial("tcp", addr)
	if err != nil {
		return "", classifyDialError(addr, err)
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(timeout))

	if _, err := fmt.Fprintln(conn, message); err != nil {
		return "", fmt.Errorf("write to %s: %w", addr, err)
	}

	ack, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return "", nil
	}
	return strings.TrimRight(ack, "\r\n"), nil
}

func classifyDialError(addr string, err error) error {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return fmt.Errorf("%w: %s", ErrRefused, addr)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s", ErrTimeout, addr)
	}
	return fmt.Errorf("dial %s: %w", addr, err)
}
