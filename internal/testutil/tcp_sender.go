package testutil

import (
	"bufio"
	"net"
	"strings"
	"time"
)

type TCPSender struct {
	conn net.Conn
	w    *bufio.Writer
	r    *bufio.Reader
}

func NewTCPSender(addr string) (*TCPSender, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &TCPSender{conn: conn, w: bufio.NewWriter(conn), r: bufio.NewReader(conn)}, nil
}

func (s *TCPSender) SendLine(line string) error {
	_, err := s.w.WriteString(line + "\n")
	if err != nil {
		return err
	}
	return s.w.Flush()
}

// ReadAck reads one acknowledgment line with a short deadline.
func (s *TCPSender) ReadAck() (string, error) {
	_ = s.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	line, err := s.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (s *TCPSender) Close() error {
	return s.conn.Close()
}
