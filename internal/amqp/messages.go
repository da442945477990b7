package amqp

import (
	"encoding/json"
	"time"
)

// TransactionSyncMessage asks the sync worker to export one transaction.
// It carries only the ID; the worker fetches the full row from the store,
// so a stale message always exports the latest state.
type TransactionSyncMessage struct {
	TransactionID int64     `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionSyncMessage(transactionID int64) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		TransactionID: transactionID,
		Timestamp:     time.Now(),
	}
}

func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// NotificationMessage is a user-facing event emitted by the engines:
// settlement reminders, upcoming recurrences, invoice reminders.
type NotificationMessage struct {
	Kind      string            `json:"kind"`
	UserID    int64             `json:"user_id"`
	Payload   map[string]string `json:"payload,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func (m *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func NotificationMessageFromJSON(data []byte) (*NotificationMessage, error) {
	var msg NotificationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
