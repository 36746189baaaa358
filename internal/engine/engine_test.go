package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"courier/internal/config"
	"courier/internal/model"
	"courier/internal/testutil"
)

func startEngine(t *testing.T, gw Gateway) *Engine {
	t.Helper()
	eng := New(config.DefaultSettings(), gw, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = eng.Run(ctx) }()
	return eng
}

func run(t *testing.T, eng *Engine, cmdType CommandType, messageSeq int64) error {
	t.Helper()
	respCh := make(chan CommandResult, 1)
	eng.UICmdCh() <- Command{Type: cmdType, MessageSeq: messageSeq, RespCh: respCh}
	select {
	case result := <-respCh:
		return result.Err
	case <-time.After(2 * time.Second):
		t.Fatal("command timed out")
		return nil
	}
}

func snapshot(t *testing.T, eng *Engine) Snapshot {
	t.Helper()
	eng.SnapshotReqCh() <- SnapshotRequest{}
	select {
	case snap := <-eng.SnapshotRespCh():
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot timed out")
		return Snapshot{}
	}
}

func waitForMessages(t *testing.T, eng *Engine, count int) Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		snap := snapshot(t, eng)
		if len(snap.Messages) >= count {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d messages (have %d)", count, len(snap.Messages))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestMessageNotSavedWhenStorageDown(t *testing.T) {
	gw := testutil.NewMemoryGateway()
	eng := startEngine(t, gw)

	eng.DataSink() <- model.NewMessage("hello", "127.0.0.1")

	snap := waitForMessages(t, eng, 1)
	msg := snap.Messages[0]
	if msg.Status != model.StatusNotSaved {
		t.Fatalf("status = %q, want %q", msg.Status, model.StatusNotSaved)
	}
	if msg.ID != 0 {
		t.Fatalf("unexpected id %d on unsaved message", msg.ID)
	}
	if snap.TotalReceived != 1 || snap.TotalFailed != 1 || snap.TotalSaved != 0 {
		t.Fatalf("counters = %d/%d/%d, want 1 received, 1 failed, 0 saved",
			snap.TotalReceived, snap.TotalSaved, snap.TotalFailed)
	}
}

func TestMessageSavedWhenStorageConnected(t *testing.T) {
	gw := testutil.NewMemoryGateway()
	eng := startEngine(t, gw)

	if err := run(t, eng, CommandConnectStorage, 0); err != nil {
		t.Fatalf("connect storage: %v", err)
	}

	eng.DataSink() <- model.NewMessage("persist me", "10.0.0.7")

	snap := waitForMessages(t, eng, 1)
	msg := snap.Messages[0]
	if msg.Status != model.StatusSaved {
		t.Fatalf("status = %q, want %q", msg.Status, model.StatusSaved)
	}
	if msg.ID == 0 {
		t.Fatal("expected generated id on saved message")
	}
	if snap.Storage.StoredCount != 1 {
		t.Fatalf("stored count = %d, want 1", snap.Storage.StoredCount)
	}
	if snap.TotalSaved != 1 {
		t.Fatalf("total saved = %d, want 1", snap.TotalSaved)
	}
}

func TestMessageErrorWhenInsertFails(t *testing.T) {
	gw := testutil.NewMemoryGateway()
	gw.SaveErr = errors.New("duplicate key")
	eng := startEngine(t, gw)

	if err := run(t, eng, CommandConnectStorage, 0); err != nil {
		t.Fatalf("connect storage: %v", err)
	}

	eng.DataSink() <- model.NewMessage("doomed", "10.0.0.8")

	snap := waitForMessages(t, eng, 1)
	if got := snap.Messages[0].Status; got != model.StatusError {
		t.Fatalf("status = %q, want %q", got, model.StatusError)
	}
	if snap.TotalFailed != 1 {
		t.Fatalf("total failed = %d, want 1", snap.TotalFailed)
	}
}

func TestConnectStorageFailure(t *testing.T) {
	gw := testutil.NewMemoryGateway()
	gw.ConnectErr = errors.New("connection refused")
	eng := startEngine(t, gw)

	if err := run(t, eng, CommandConnectStorage, 0); err == nil {
		t.Fatal("expected connect error")
	}
	snap := snapshot(t, eng)
	if snap.Storage.State != model.LinkError {
		t.Fatalf("storage state = %v, want error", snap.Storage.State)
	}
	if snap.Storage.ErrMsg == "" {
		t.Fatal("expected storage error message")
	}
}

func TestRefreshReplacesListWithStoredRows(t *testing.T) {
	gw := testutil.NewMemoryGateway()
	eng := startEngine(t, gw)

	if err := run(t, eng, CommandConnectStorage, 0); err != nil {
		t.Fatalf("connect storage: %v", err)
	}

	first := model.NewMessage("first", "10.0.0.1")
	time.Sleep(5 * time.Millisecond)
	second := model.NewMessage("second", "10.0.0.2")
	eng.DataSink() <- first
	eng.DataSink() <- second
	waitForMessages(t, eng, 2)

	if err := run(t, eng, CommandRefresh, 0); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	snap := snapshot(t, eng)
	if len(snap.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(snap.Messages))
	}
	if snap.Messages[0].Content != "second" || snap.Messages[1].Content != "first" {
		t.Fatalf("unexpected order: %q then %q", snap.Messages[0].Content, snap.Messages[1].Content)
	}
}

func TestDeleteAndClear(t *testing.T) {
	gw := testutil.NewMemoryGateway()
	eng := startEngine(t, gw)

	if err := run(t, eng, CommandConnectStorage, 0); err != nil {
		t.Fatalf("connect storage: %v", err)
	}

	eng.DataSink() <- model.NewMessage("one", "10.0.0.1")
	eng.DataSink() <- model.NewMessage("two", "10.0.0.2")
	snap := waitForMessages(t, eng, 2)

	if err := run(t, eng, CommandDeleteMessage, snap.Messages[0].Seq); err != nil {
		t.Fatalf("delete: %v", err)
	}
	snap = snapshot(t, eng)
	if len(snap.Messages) != 1 {
		t.Fatalf("messages after delete = %d, want 1", len(snap.Messages))
	}
	if snap.Storage.StoredCount != 1 {
		t.Fatalf("stored count after delete = %d, want 1", snap.Storage.StoredCount)
	}

	if err := run(t, eng, CommandClearMessages, 0); err != nil {
		t.Fatalf("clear: %v", err)
	}
	snap = snapshot(t, eng)
	if len(snap.Messages) != 0 || snap.Storage.StoredCount != 0 {
		t.Fatalf("expected empty state after clear, got %d messages, %d stored",
			len(snap.Messages), snap.Storage.StoredCount)
	}
}

func TestDeleteUnsavedMessage(t *testing.T) {
	gw := testutil.NewMemoryGateway()
	eng := startEngine(t, gw)

	eng.DataSink() <- model.NewMessage("loose", "10.0.0.1")
	snap := waitForMessages(t, eng, 1)

	if snap.Messages[0].ID != 0 {
		t.Fatalf("unsaved message has id %d, want 0", snap.Messages[0].ID)
	}
	if err := run(t, eng, CommandDeleteMessage, snap.Messages[0].Seq); err != nil {
		t.Fatalf("delete unsaved: %v", err)
	}
	if snap = snapshot(t, eng); len(snap.Messages) != 0 {
		t.Fatalf("messages after delete = %d, want 0", len(snap.Messages))
	}

	if err := run(t, eng, CommandDeleteMessage, 999); err == nil {
		t.Fatal("expected error deleting unknown message")
	}
}

func TestServerLifecycleCommands(t *testing.T) {
	gw := testutil.NewMemoryGateway()
	eng := startEngine(t, gw)

	// No handlers attached yet.
	if err := run(t, eng, CommandStartServer, 0); err == nil {
		t.Fatal("expected error with no server attached")
	}

	started := 0
	stopped := 0
	eng.AttachServer(
		func() error { started++; return nil },
		func() { stopped++ },
		nil,
	)

	if err := run(t, eng, CommandStartServer, 0); err != nil {
		t.Fatalf("start server: %v", err)
	}
	snap := snapshot(t, eng)
	if snap.Server.State != model.LinkUp {
		t.Fatalf("server state = %v, want up", snap.Server.State)
	}

	if err := run(t, eng, CommandStopServer, 0); err != nil {
		t.Fatalf("stop server: %v", err)
	}
	snap = snapshot(t, eng)
	if snap.Server.State != model.LinkDown {
		t.Fatalf("server state = %v, want down", snap.Server.State)
	}
	if started != 1 || stopped != 1 {
		t.Fatalf("handlers called %d/%d times, want 1/1", started, stopped)
	}
}
