package engine

import "courier/internal/model"

type CommandType int

const (
	CommandStartServer CommandType = iota
	CommandStopServer
	CommandConnectStorage
	CommandDisconnectStorage
	CommandRefresh
	CommandDeleteMessage
	CommandClearMessages
)

// MessageSeq addresses a message by its in-memory sequence, which covers
// rows that were never saved and so have no stored id.
type Command struct {
	Type       CommandType
	MessageSeq int64
	RespCh     chan CommandResult
}

type CommandResult struct {
	Err error
}

type SnapshotRequest struct{}

type ServerSnapshot struct {
	State  model.LinkState
	Addr   string
	ErrMsg string
}

type StorageSnapshot struct {
	State       model.LinkState
	ErrMsg      string
	StoredCount int
}

type Snapshot struct {
	Server   ServerSnapshot
	Storage  StorageSnapshot
	Messages []model.Message
	Activity []string

	TotalReceived uint64
	TotalSaved    uint64
	TotalFailed   uint64

	Stats StatsSnapshot
}

type StatsSnapshot struct {
	MsgsPerSec   []uint64
	ErrorsPerMin []uint64
}
