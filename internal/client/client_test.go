package client

import (
	"errors"
	"net"
	"testing"
	"time"

	"courier/internal/config"
	"courier/internal/model"
	"courier/internal/server"
)

func startReceiver(t *testing.T) (*server.Server, chan model.Message) {
	t.Helper()
	cfg := config.DefaultSettings()
	cfg.Server.BindHost = "127.0.0.1"
	cfg.Server.Port = 0

	dataCh := make(chan model.Message, 64)
	statusCh := make(chan string, 64)
	errorCh := make(chan string, 64)
	go func() {
		for range statusCh {
		}
	}()

	srv := server.New(cfg, dataCh, statusCh, errorCh)
	if err := srv.Start(); err != nil {
		t.Fatalf("start receiver: %v", err)
	}
	t.Cleanup(srv.Stop)
	return srv, dataCh
}

func TestSendReceivesAck(t *testing.T) {
	srv, dataCh := startReceiver(t)

	ack, err := Send(srv.Info().Addr(), "hello from client", 2*time.Second)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if ack != server.AckLine {
		t.Fatalf("ack = %q, want %q", ack, server.AckLine)
	}

	select {
	case msg := <-dataCh:
		if msg.Content != "hello from client" {
			t.Fatalf("content = %q", msg.Content)
		}
	case <-time.After(time.Second):
		t.Fatal("receiver never got the message")
	}
}

func TestSendRejectsEmbeddedNewline(t *testing.T) {
	if _, err := Send("127.0.0.1:3005", "two\nlines", time.Second); err == nil {
		t.Fatal("expected newline rejection")
	}
}

func TestSendRefused(t *testing.T) {
	// Grab a free port and release it so nothing is listening there.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	_, err = Send(addr, "nobody home", time.Second)
	if !errors.Is(err, ErrRefused) {
		t.Fatalf("got %v, want ErrRefused", err)
	}
}
