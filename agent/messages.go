package agent

import "github.com/google/uuid"

// MessageType discriminates the two in-process message kinds
type MessageType string

const (
	MessageDelegation MessageType = "DELEGATION"
	MessageResult     MessageType = "RESULT"
)

// Message is either a TaskMessage or a ResultMessage. Messages are immutable
// after emit and consumed exactly once by the recipient's prompter.
type Message interface {
	MessageType() MessageType
}

// TaskMessage is a parent → child task hand-off
type TaskMessage struct {
	MessageID  string `json:"message_id"`
	TaskID     string `json:"task_id"`
	TaskString string `json:"task_string"`
	Sender     string `json:"sender"`    // sending agent's path
	Recipient  string `json:"recipient"` // receiving agent's path
}

func (m *TaskMessage) MessageType() MessageType { return MessageDelegation }

// NewTaskMessage builds a delegation message with fresh IDs
func NewTaskMessage(task, sender, recipient string) *TaskMessage {
	return &TaskMessage{
		MessageID:  uuid.New().String(),
		TaskID:     uuid.New().String(),
		TaskString: task,
		Sender:     sender,
		Recipient:  recipient,
	}
}

// ResultMessage is a child → parent completion report carrying the original
// task for correlation
type ResultMessage struct {
	MessageID string      `json:"message_id"`
	Task      TaskMessage `json:"task"`
	Result    string      `json:"result"`
	Sender    string      `json:"sender"`
	Recipient string      `json:"recipient"`
}

func (m *ResultMessage) MessageType() MessageType { return MessageResult }

// NewResultMessage builds a result message answering the given task
func NewResultMessage(task TaskMessage, result, sender, recipient string) *ResultMessage {
	return &ResultMessage{
		MessageID: uuid.New().String(),
		Task:      task,
		Result:    result,
		Sender:    sender,
		Recipient: recipient,
	}
}
