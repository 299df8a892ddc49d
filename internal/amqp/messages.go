package amqp

import (
	"encoding/json"
	"time"
)

// ExpenseCreatedMessage announces a newly persisted expense. It carries only
// the ID; consumers fetch the full record from the store so the queue never
// holds stale copies.
type ExpenseCreatedMessage struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewExpenseCreatedMessage(id int64) *ExpenseCreatedMessage {
	return &ExpenseCreatedMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

func (m *ExpenseCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseCreatedMessageFromJSON(data []byte) (*ExpenseCreatedMessage, error) {
	var msg ExpenseCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
