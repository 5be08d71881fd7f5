package eventlog

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"simnet/message"
)

const schema = `
CREATE TABLE IF NOT EXISTS event_log (
  id    INTEGER PRIMARY KEY AUTOINCREMENT,
  at    INTEGER  NOT NULL,
  event TEXT     NOT NULL,
  data  JSON     NOT NULL);`

// SQLite persists the event stream as JSON rows in a sqlite database, one
// row per event. The run can be inspected afterwards with plain SQL.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the event log database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("eventlog: open %v: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("eventlog: create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) MessageCreated(at int64, msg *message.Message) {
	s.emit(at, EventCreated, messageData(msg, false))
}

func (s *SQLite) MessageDelivered(at int64, msg *message.Message) {
	s.emit(at, EventDelivered, messageData(msg, true))
}

func (s *SQLite) ProcessCrashed(at int64, pid int) {
	s.emit(at, EventCrash, struct {
		PID int `json:"pid"`
	}{PID: pid})
}

func (s *SQLite) StepStats(at int64, pendingLinks, pendingMessages int) {
	s.emit(at, EventStepStats, struct {
		PendingLinks    int `json:"pending-links"`
		PendingMessages int `json:"pending-messages"`
	}{PendingLinks: pendingLinks, PendingMessages: pendingMessages})
}

func (s *SQLite) emit(at int64, event string, data any) {
	bs, err := json.Marshal(data)
	if err != nil {
		panic(fmt.Sprintf("eventlog: marshal %v event: %v", event, err))
	}
	if _, err := s.db.Exec("INSERT INTO event_log(at, event, data) VALUES(?, ?, ?)", at, event, string(bs)); err != nil {
		panic(fmt.Sprintf("eventlog: insert %v event: %v", event, err))
	}
}

func messageData(msg *message.Message, delivered bool) any {
	data := struct {
		MessageID int64  `json:"message-id"`
		From      int    `json:"from"`
		To        int    `json:"to"`
		Created   int64  `json:"created"`
		Delay     *int64 `json:"delay,omitempty"`
		Payload   string `json:"payload"`
	}{
		MessageID: msg.ID,
		From:      msg.From,
		To:        msg.To,
		Created:   msg.Created,
		Payload:   payloadString(msg.Payload),
	}
	if delivered {
		delay := msg.Delay()
		data.Delay = &delay
	}
	return data
}

// payloadString renders a payload for logging. Payloads are opaque to the
// engine, so the rendering is best-effort.
func payloadString(payload any) string {
	return fmt.Sprint(payload)
}
