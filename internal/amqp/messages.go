package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Routing keys on the saldo exchange.
const (
	RoutingTransactionChanged = "transaction.changed"
	RoutingProcessDue         = "recurring.process_due"
)

// Transaction change operations.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// TransactionChangedMessage is published after a mutation commits. It carries
// identifiers only; consumers read current state from the database.
type TransactionChangedMessage struct {
	MessageID     string    `json:"message_id"`
	Owner         string    `json:"owner"`
	TransactionID int64     `json:"transaction_id"`
	Op            string    `json:"op"`
	AccountIDs    []int64   `json:"account_ids,omitempty"`
	GoalIDs       []int64   `json:"goal_ids,omitempty"`
	RecurringID   *int64    `json:"recurring_id,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionChangedMessage(owner string, transactionID int64, op string) *TransactionChangedMessage {
	return &TransactionChangedMessage{
		MessageID:     uuid.NewString(),
		Owner:         owner,
		TransactionID: transactionID,
		Op:            op,
		Timestamp:     time.Now().UTC(),
	}
}

func (m *TransactionChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionChangedMessageFromJSON(data []byte) (*TransactionChangedMessage, error) {
	var msg TransactionChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ProcessDueMessage asks a worker to run the recurring engine. An empty
// Owner means every owner; an empty Date means the worker's today.
type ProcessDueMessage struct {
	MessageID string    `json:"message_id"`
	Owner     string    `json:"owner,omitempty"`
	Date      string    `json:"date,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewProcessDueMessage(owner, date string) *ProcessDueMessage {
	return &ProcessDueMessage{
		MessageID: uuid.NewString(),
		Owner:     owner,
		Date:      date,
		Timestamp: time.Now().UTC(),
	}
}

func (m *ProcessDueMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ProcessDueMessageFromJSON(data []byte) (*ProcessDueMessage, error) {
	var msg ProcessDueMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
