package server

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"courier/internal/config"
	"courier/internal/model"
)

// AckLine is written back after every accepted message line.
const AckLine = "ACK: Data received successfully"

var ErrAlreadyRunning = errors.New("server already running")

type Info struct {
	Running bool
	Host    string
	Port    int
}

func (i Info) Addr() string {
	return net.JoinHostPort(i.Host, strconv.Itoa(i.Port))
}

// Server owns the listening socket and the accept loop. Each accepted
// connection is read on its own goroutine; parsed messages and lifecycle
// text are handed off through the channels supplied at construction, so
// network goroutines never run observer code.
type Server struct {
	maxLineBytes int

	dataCh   chan<- model.Message
	statusCh chan<- string
	errorCh  chan<- string

	mu      sync.Mutex
	host    string
	port    int
	ln      net.Listener
	running atomic.Bool
}

func New(cfg config.Settings, dataCh chan<- model.Message, statusCh, errorCh chan<- string) *Server {
	return &Server{
		maxLineBytes: cfg.MaxLineBytes,
		dataCh:       dataCh,
		statusCh:     statusCh,
		errorCh:      errorCh,
		host:         cfg.Server.BindHost,
		port:         cfg.Server.Port,
	}
}

// Configure replaces the bind parameters. Rejected while running.
func (s *Server) Configure(host string, port int) error {
	if s.running.Load() {
		return ErrAlreadyRunning
	}
	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}
	s.mu.Lock()
	s.host = host
	s.port = port
	s.mu.Unlock()
	return nil
}

// Start binds the configured address and launches the accept loop. When the
// specific address cannot be bound it falls back to all interfaces on the
// same port and records the detected local address instead. A port of 0 is
// rewritten to the port the OS assigned.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running.Load() {
		return ErrAlreadyRunning
	}

	host := s.host
	ln, err := net.Listen("tcp", net.JoinHostPort(host, strconv.Itoa(s.port)))
	if err != nil && host != "" && host != "0.0.0.0" && host != "::" {
		ln, err = net.Listen("tcp", ":"+strconv.Itoa(s.port))
		if err == nil {
			host = LocalIP()
		}
	}
	if err != nil {
		s.emitError("failed to start server: " + err.Error())
		return fmt.Errorf("bind %s:%d: %w", s.host, s.port, err)
	}

	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		s.port = addr.Port
	}
	s.host = host
	s.ln = ln
	s.running.Store(true)
	s.emitStatus(fmt.Sprintf("server started on %s:%d", s.host, s.port))

	go s.acceptLoop(ln)
	return nil
}

// Stop closes the listening socket, which unblocks the accept loop.
// Connections already being served drain on their own. Safe to call
// repeatedly and when not running.
func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running.Swap(false) {
		return
	}
	if s.ln != nil {
		_ = s.ln.Close()
		s.ln = nil
	}
	s.emitStatus("server stopped")
}

func (s *Server) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{Running: s.running.Load(), Host: s.host, Port: s.port}
}

func (s *Server) acceptLoop(ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				// Expected shutdown noise.
				return
			}
			s.emitError("error accepting connection: " + err.Error())
			continue
		}
		s.emitStatus("client connected: " + peerIP(conn))
		go s.handleConn(conn)
	}
}

// handleConn reads newline-delimited messages until the peer closes or a
// read error occurs. Every received line gets one ACK written back, even
// lines that trim to nothing; only non-empty lines become a Message on the
// data channel. ACK write failures are not fatal to the connection.
func (s *Server) handleConn(conn net.Conn) {
	ip := peerIP(conn)
	defer func() {
		_ = conn.Close()
		s.emitStatus("client disconnected: " + ip)
	}()

	reader := bufio.NewReader(conn)
	for {
		line, err := reader.ReadString('\n')
		if line == "" && err != nil {
			return
		}
		text := strings.TrimSpace(line)
		if s.maxLineBytes > 0 && len(text) > s.maxLineBytes {
			text = text[:s.maxLineBytes]
		}
		if text != "" {
			s.dataCh <- model.NewMessage(text, ip)
		}
		if _, werr := fmt.Fprintln(conn, AckLine); werr != nil && err == nil {
			s.emitError("failed to write ack to " + ip + ": " + werr.Error())
		}
		if err != nil {
			return
		}
	}
}

// emitStatus and emitError must never block: the consumer that drains
// these channels is also the caller of Start and Stop, so a blocking send
// on a full buffer would deadlock a lifecycle call. Excess lines are
// dropped; the data channel stays blocking since only connection handlers
// write to it.
func (s *Server) emitStatus(text string) {
	if s.statusCh == nil {
		return
	}
	select {
	case s.statusCh <- text:
	default:
	}
}

func (s *Server) emitError(text string) {
	if s.errorCh == nil {
		return
	}
	select {
	case s.errorCh <- text:
	default:
	}
}

// LocalIP returns the first global unicast IPv4 address of this machine,
// falling back to the loopback address.
func LocalIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}
		ip := ipNet.IP.To4()
		if ip != nil && ip.IsGlobalUnicast() {
			return ip.String()
		}
	}
	return "127.0.0.1"
}

func peerIP(conn net.Conn) string {
	addr := conn.RemoteAddr()
	if addr == nil {
		return "unknown"
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
