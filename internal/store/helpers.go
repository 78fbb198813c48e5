package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hearthplan/hearth/internal/models"
)

// scanMessage scans a ChatMessage from sql.Rows, decoding the optional
// event payload.
func scanMessage(rows *sql.Rows) (models.ChatMessage, error) {
	var msg models.ChatMessage
	var content, msgType, eventJSON sql.NullString
	if err := rows.Scan(&msg.ID, &msg.Sender, &content, &msgType, &eventJSON, &msg.Time); err != nil {
		return msg, fmt.Errorf("scan message failed: %w", err)
	}
	msg.Content = content.String
	msg.Type = msgType.String
	if eventJSON.Valid && eventJSON.String != "" {
		var event models.Event
		if err := json.Unmarshal([]byte(eventJSON.String), &event); err != nil {
			return msg, fmt.Errorf("decode message event failed: %w", err)
		}
		msg.Event = &event
	}
	return msg, nil
}
