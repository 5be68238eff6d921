package types

// --- Messages produced by a simple query ---

// Message is one element of a simple query's response stream. It is either a
// Row or a CommandComplete.
type Message interface {
	isMessage()
}

// Row is a single data row. Columns holds the names exactly as the server
// described them; Values holds the decoded scalar for each column (nil, bool,
// int64, float64 or string).
type Row struct {
	Columns []string
	Values  []any
}

// CommandComplete is emitted for a statement that returned no row
// description, carrying the affected-row count from its command tag.
type CommandComplete struct {
	RowsAffected int64
}

func (Row) isMessage()             {}
func (CommandComplete) isMessage() {}

// --- Asynchronous notifications ---

// Notification is a message delivered by NOTIFY to a listening session.
type Notification struct {
	PID     uint32 `json:"-"`
	Channel string `json:"channel"`
	Payload string `json:"payload"`
}
