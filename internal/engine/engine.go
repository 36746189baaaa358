package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"courier/internal/config"
	"courier/internal/model"
	"courier/internal/server"
	"courier/internal/store"
)

// Gateway is the narrow persistence contract the engine drives. The
// Postgres store implements it; tests substitute an in-memory fake.
type Gateway interface {
	Connect(ctx context.Context) error
	Disconnect() error
	IsConnected(ctx context.Context) bool
	Save(ctx context.Context, msg *model.Message) error
	Recent(ctx context.Context) ([]model.Message, error)
	DeleteByID(ctx context.Context, id int64) error
	ClearAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}

// Engine is the single serialized context that owns all observer state:
// the in-memory message list, the activity log and the counters. Network
// goroutines reach it only through the notification channels, the UI only
// through the command and snapshot channels, so none of this state needs a
// lock.
type Engine struct {
	cfg     config.Settings
	gateway Gateway
	logger  *zap.Logger

	dataCh   chan model.Message
	statusCh chan string
	errorCh  chan string

	uiCmdCh    chan Command
	snapReqCh  chan SnapshotRequest
	snapRespCh chan Snapshot

	messages     []model.Message
	nextSeq      int64
	activity     *store.RingBuffer
	serverState  model.LinkState
	serverErr    string
	storageState model.LinkState
	storageErr   string
	storedCount  int

	totalReceived uint64
	totalSaved    uint64
	totalFailed   uint64

	msgsPerSec   *store.RollingCounter
	errorsPerMin *store.RollingCounter

	startServerFn func() error
	stopServerFn  func()
	serverInfoFn  func() server.Info
}

// New builds an engine. logger may be nil; when set, activity log entries
// are mirrored to it (headless mode).
func New(cfg config.Settings, gateway Gateway, logger *zap.Logger) *Engine {
	now := time.Now()
	return &Engine{
		cfg:          cfg,
		gateway:      gateway,
		logger:       logger,
		dataCh:       make(chan model.Message, cfg.NotifyBuffer),
		statusCh:     make(chan string, cfg.NotifyBuffer),
		errorCh:      make(chan string, cfg.NotifyBuffer),
		uiCmdCh:      make(chan Command, 64),
		snapReqCh:    make(chan SnapshotRequest, 16),
		snapRespCh:   make(chan Snapshot, 16),
		activity:     store.NewRingBuffer(cfg.ActivityLines),
		serverState:  model.LinkDown,
		storageState: model.LinkDown,
		msgsPerSec:   store.NewRollingCounter(60, time.Second, now),
		errorsPerMin: store.NewRollingCounter(30, time.Minute, now),
	}
}

// DataSink, StatusSink and ErrorSink are the channels the ingestion server
// writes into.
func (e *Engine) DataSink() chan<- model.Message { return e.dataCh }
func (e *Engine) StatusSink() chan<- string      { return e.statusCh }
func (e *Engine) ErrorSink() chan<- string       { return e.errorCh }

func (e *Engine) UICmdCh() chan<- Command               { return e.uiCmdCh }
func (e *Engine) SnapshotReqCh() chan<- SnapshotRequest { return e.snapReqCh }
func (e *Engine) SnapshotRespCh() <-chan Snapshot       { return e.snapRespCh }

// AttachServer wires the listener lifecycle handlers.
func (e *Engine) AttachServer(start func() error, stop func(), info func() server.Info) {
	e.startServerFn = start
	e.stopServerFn = stop
	e.serverInfoFn = info
}

// Run drains every input until ctx is cancelled. It is the only goroutine
// that touches engine state.
func (e *Engine) Run(ctx context.Context) error {
	probe := time.NewTicker(5 * time.Second)
	defer probe.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-e.dataCh:
			e.handleMessage(ctx, msg)
		case text := <-e.statusCh:
			e.logf("%s", text)
		case text := <-e.errorCh:
			e.serverErr = text
			e.logf("error: %s", text)
		case cmd := <-e.uiCmdCh:
			result := e.handleCommand(ctx, cmd)
			if cmd.RespCh != nil {
				cmd.RespCh <- result
			}
		case <-e.snapReqCh:
			e.snapRespCh <- e.buildSnapshot()
		case <-probe.C:
			e.probeStorage(ctx)
		}
	}
}

// handleMessage applies the single status transition a message goes
// through: RECEIVED to SAVED, ERROR or NOT_SAVED, depending on the
// storage session and the insert outcome.
func (e *Engine) handleMessage(ctx context.Context, msg model.Message) {
	now := time.Now()
	e.totalReceived++
	e.msgsPerSec.Add(1, now)

	if e.gateway.IsConnected(ctx) {
		if err := e.gateway.Save(ctx, &msg); err != nil {
			msg.Status = model.StatusError
			e.totalFailed++
			e.errorsPerMin.Add(1, now)
			e.logf("failed to save %q: %v", truncate(msg.Content, 40), err)
		} else {
			msg.Status = model.StatusSaved
			e.totalSaved++
			e.storedCount++
			e.logf("saved #%d: %q from %s", msg.ID, truncate(msg.Content, 40), msg.SenderIP)
		}
	} else {
		msg.Status = model.StatusNotSaved
		e.totalFailed++
		if e.storageState == model.LinkUp {
			e.storageState = model.LinkError
			e.storageErr = "session lost"
		}
		e.logf("storage offline, kept in memory: %q from %s", truncate(msg.Content, 40), msg.SenderIP)
	}

	// Newest first, matching the storage query ordering.
	e.nextSeq++
	msg.Seq = e.nextSeq
	e.messages = append([]model.Message{msg}, e.messages...)
}

func (e *Engine) probeStorage(ctx context.Context) {
	if e.storageState != model.LinkUp {
		return
	}
	if !e.gateway.IsConnected(ctx) {
		e.storageState = model.LinkError
		e.storageErr = "liveness probe failed"
		e.logf("error: storage liveness probe failed")
	}
}

func (e *Engine) logf(format string, args ...any) {
	entry := fmt.Sprintf(format, args...)
	e.activity.Append(time.Now().Format("15:04:05") + "  " + entry)
	if e.logger != nil {
		e.logger.Info(entry)
	}
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
