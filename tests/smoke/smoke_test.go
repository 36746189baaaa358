package smoke

import (
	"context"
	"testing"
	"time"

	"courier/internal/config"
	"courier/internal/engine"
	"courier/internal/model"
	"courier/internal/server"
	"courier/internal/testutil"
)

// TestReceiverSmoke walks the whole pipeline: a sender connects to the
// loopback listener, the line travels through the engine, and the status
// reflects the storage session.
func TestReceiverSmoke(t *testing.T) {
	cfg := config.DefaultSettings()
	cfg.Server.BindHost = "127.0.0.1"
	cfg.Server.Port = 0

	gateway := testutil.NewMemoryGateway()
	eng := engine.New(cfg, gateway, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = eng.Run(ctx) }()

	srv := server.New(cfg, eng.DataSink(), eng.StatusSink(), eng.ErrorSink())
	eng.AttachServer(srv.Start, srv.Stop, srv.Info)

	if err := srv.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	defer srv.Stop()

	// Storage disconnected: the message must land as NOT_SAVED.
	sender, err := testutil.NewTCPSender(srv.Info().Addr())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if err := sender.SendLine("hello"); err != nil {
		t.Fatalf("send: %v", err)
	}
	ack, err := sender.ReadAck()
	if err != nil {
		t.Fatalf("read ack: %v", err)
	}
	if ack != server.AckLine {
		t.Fatalf("ack = %q, want %q", ack, server.AckLine)
	}
	_ = sender.Close()

	snap := waitForMessages(t, eng, 1)
	if got := snap.Messages[0]; got.Content != "hello" || got.Status != model.StatusNotSaved {
		t.Fatalf("message = %q/%s, want hello/NOT_SAVED", got.Content, got.Status)
	}

	// Connect storage and send again: this one must persist.
	sendCommand(t, eng, engine.CommandConnectStorage)

	sender2, err := testutil.NewTCPSender(srv.Info().Addr())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if err := sender2.SendLine("persisted"); err != nil {
		t.Fatalf("send: %v", err)
	}
	_, _ = sender2.ReadAck()
	_ = sender2.Close()

	snap = waitForSaved(t, eng)
	if snap.Storage.StoredCount != 1 {
		t.Fatalf("stored count = %d, want 1", snap.Storage.StoredCount)
	}
}

func sendCommand(t *testing.T, eng *engine.Engine, cmdType engine.CommandType) {
	t.Helper()
	respCh := make(chan engine.CommandResult, 1)
	eng.UICmdCh() <- engine.Command{Type: cmdType, RespCh: respCh}
	select {
	case result := <-respCh:
		if result.Err != nil {
			t.Fatalf("command failed: %v", result.Err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("command timed out")
	}
}

func getSnapshot(t *testing.T, eng *engine.Engine) engine.Snapshot {
	t.Helper()
	eng.SnapshotReqCh() <- engine.SnapshotRequest{}
	select {
	case snap := <-eng.SnapshotRespCh():
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot timed out")
		return engine.Snapshot{}
	}
}

func waitForMessages(t *testing.T, eng *engine.Engine, count int) engine.Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		snap := getSnapshot(t, eng)
		if len(snap.Messages) >= count {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d messages (have %d)", count, len(snap.Messages))
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func waitForSaved(t *testing.T, eng *engine.Engine) engine.Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		snap := getSnapshot(t, eng)
		for _, msg := range snap.Messages {
			if msg.Status == model.StatusSaved {
				if msg.ID == 0 {
					t.Fatal("saved message has no id")
				}
				return snap
			}
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for a saved message")
		}
		time.Sleep(20 * time.Millisecond)
	}
}
