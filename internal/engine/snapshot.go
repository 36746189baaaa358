package engine

import (
	"time"

	"courier/internal/model"
)

func (e *Engine) buildSnapshot() Snapshot {
	now := time.Now()

	srv := ServerSnapshot{State: e.serverState, ErrMsg: e.serverErr}
	if e.serverInfoFn != nil {
		info := e.serverInfoFn()
		srv.Addr = info.Addr()
		if e.serverState == model.LinkUp && !info.Running {
			srv.State = model.LinkDown
		}
	}

	messages := make([]model.Message, len(e.messages))
	copy(messages, e.messages)

	return Snapshot{
		Server: srv,
		Storage: StorageSnapshot{
			State:       e.storageState,
			ErrMsg:      e.storageErr,
			StoredCount: e.storedCount,
		},
		Messages:      messages,
		Activity:      e.activity.Items(),
		TotalReceived: e.totalReceived,
		TotalSaved:    e.totalSaved,
		TotalFailed:   e.totalFailed,
		Stats: StatsSnapshot{
			MsgsPerSec:   e.msgsPerSec.Snapshot(now),
			ErrorsPerMin: e.errorsPerMin.Snapshot(now),
		},
	}
}
