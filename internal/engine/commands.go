package engine

import (
	"context"
	"errors"

	"courier/internal/model"
)

func (e *Engine) handleCommand(ctx context.Context, cmd Command) CommandResult {
	switch cmd.Type {
	case CommandStartServer:
		return CommandResult{Err: e.startServer()}
	case CommandStopServer:
		return CommandResult{Err: e.stopServer()}
	case CommandConnectStorage:
		return CommandResult{Err: e.connectStorage(ctx)}
	case CommandDisconnectStorage:
		return CommandResult{Err: e.disconnectStorage()}
	case CommandRefresh:
		return CommandResult{Err: e.refresh(ctx)}
	case CommandDeleteMessage:
		return CommandResult{Err: e.deleteMessage(ctx, cmd.MessageSeq)}
	case CommandClearMessages:
		return CommandResult{Err: e.clearMessages(ctx)}
	default:
		return CommandResult{Err: errors.New("unknown command")}
	}
}

func (e *Engine) startServer() error {
	if e.startServerFn == nil {
		return errors.New("server handler not attached")
	}
	e.serverState = model.LinkStarting
	e.serverErr = ""
	if err := e.startServerFn(); err != nil {
		e.serverState = model.LinkError
		e.serverErr = err.Error()
		return err
	}
	e.serverState = model.LinkUp
	return nil
}

func (e *Engine) stopServer() error {
	if e.stopServerFn == nil {
		return errors.New("server handler not attached")
	}
	e.stopServerFn()
	e.serverState = model.LinkDown
	e.serverErr = ""
	return nil
}

// connectStorage opens the session and then replaces the in-memory list
// with the stored rows, so a reconnect shows what actually persisted.
func (e *Engine) connectStorage(ctx context.Context) error {
	e.storageState = model.LinkStarting
	e.storageErr = ""
	if err := e.gateway.Connect(ctx); err != nil {
		e.storageState = model.LinkError
		e.storageErr = err.Error()
		e.logf("error: %v", err)
		return err
	}
	e.storageState = model.LinkUp
	e.logf("storage connected")
	return e.refresh(ctx)
}

func (e *Engine) disconnectStorage() error {
	if err := e.gateway.Disconnect(); err != nil {
		e.storageState = model.LinkError
		e.storageErr = err.Error()
		return err
	}
	e.storageState = model.LinkDown
	e.storageErr = ""
	e.storedCount = 0
	e.logf("storage disconnected")
	return nil
}

func (e *Engine) refresh(ctx context.Context) error {
	msgs, err := e.gateway.Recent(ctx)
	if err != nil {
		e.logf("error: refresh failed: %v", err)
		return err
	}
	count, err := e.gateway.Count(ctx)
	if err != nil {
		return err
	}
	for i := range msgs {
		e.nextSeq++
		msgs[i].Seq = e.nextSeq
	}
	e.messages = msgs
	e.storedCount = count
	e.logf("refreshed %d messages from storage", len(msgs))
	return nil
}

// deleteMessage evicts one message by its in-memory sequence. When the row
// was saved and the session is live, the stored row goes too.
func (e *Engine) deleteMessage(ctx context.Context, seq int64) error {
	idx := -1
	for i := range e.messages {
		if e.messages[i].Seq == seq {
			idx = i
			break
		}
	}
	if idx < 0 {
		return errors.New("message not found")
	}
	msg := e.messages[idx]
	if msg.ID != 0 && e.gateway.IsConnected(ctx) {
		if err := e.gateway.DeleteByID(ctx, msg.ID); err != nil {
			return err
		}
		if e.storedCount > 0 {
			e.storedCount--
		}
	}
	e.messages = append(e.messages[:idx], e.messages[idx+1:]...)
	if msg.ID != 0 {
		e.logf("deleted message #%d", msg.ID)
	} else {
		e.logf("deleted unsaved message %q", truncate(msg.Content, 40))
	}
	return nil
}

func (e *Engine) clearMessages(ctx context.Context) error {
	if e.gateway.IsConnected(ctx) {
		if err := e.gateway.ClearAll(ctx); err != nil {
			return err
		}
	}
	e.messages = nil
	e.storedCount = 0
	e.logf("cleared all messages")
	return nil
}
