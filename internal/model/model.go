package model

import "time"

// Status is the persistence outcome of a received message. It starts at
// StatusReceived and moves exactly once to one of the other three values
// after the save attempt.
type Status string

const (
	StatusReceived Status = "RECEIVED"
	StatusSaved    Status = "SAVED"
	StatusError    Status = "ERROR"
	StatusNotSaved Status = "NOT_SAVED"
)

// Message is one line received over the wire. ID is zero until the row has
// been inserted; the generated key is written back on a successful save.
// Seq is an in-memory handle assigned by the engine so messages without a
// stored id stay addressable.
type Message struct {
	ID         int64
	Seq        int64
	Content    string
	SenderIP   string
	ReceivedAt time.Time
	Status     Status
}

func NewMessage(content, senderIP string) Message {
	return Message{
		Content:    content,
		SenderIP:   senderIP,
		ReceivedAt: time.Now(),
		Status:     StatusReceived,
	}
}

func (m Message) FormattedTime() string {
	if m.ReceivedAt.IsZero() {
		return ""
	}
	return m.ReceivedAt.Format("2006-01-02 15:04:05")
}

// LinkState describes either side link of the receiver: the listening
// socket or the storage session.
type LinkState int

const (
	LinkDown LinkState = iota
	LinkStarting
	LinkUp
	LinkError
)

func (s LinkState) String() string {
	switch s {
	case LinkDown:
		return "down"
	case LinkStarting:
		return "starting"
	case LinkUp:
		return "up"
	case LinkError:
		return "error"
	default:
		return "unknown"
	}
}
