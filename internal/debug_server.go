package internal

import (
	"dialog-hub/domain"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
)

const InspectEndpoint = "/inspect"

// StartInspector exposes the Badger keyspace on localhost for debugging.
// Only started when the logger runs at DEBUG level.
func StartInspector(log *slog.Logger, db *badger.DB, port int) {
	url := fmt.Sprintf("http://localhost:%d%s?prefix=dialog:", port, InspectEndpoint)
	log.Info("Debug Badger inspector available", "url", url)
	database.StartDebugServer(db, port, InspectEndpoint, StoreMapper)
}

// StoreMapper renders dialog and message records; every other key falls
// back to the raw size description.
func StoreMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	switch {
	case strings.HasPrefix(key, "dialog:"):
		var dialog domain.Dialog
		if err := json.Unmarshal(val, &dialog); err != nil {
			row.Detail = "Error: unmarshal failed"
			return row
		}
		row.Type = "DIALOG"
		row.Namespace = "dialogs"
		row.EntityID = dialog.ID.String()
		row.Timestamp = dialog.CreatedAt.Format("15:04:05")
		row.Detail = DescribeDialog(dialog)
	case strings.HasPrefix(key, "msg:"):
		var message domain.Message
		if err := json.Unmarshal(val, &message); err != nil {
			row.Detail = "Error: unmarshal failed"
			return row
		}
		row.Type = "MESSAGE"
		row.Namespace = message.DialogID.String()
		row.EntityID = message.ID.String()[:8]
		row.Timestamp = message.CreatedAt.Format("15:04:05")
		row.Detail = fmt.Sprintf("#%d from %d: %s", message.Sequence, message.SenderID, message.Body)
		row.Scores = DescribeState(message)
	case strings.HasPrefix(key, "revoked:"):
		row.Type = "REVOKED"
		row.EntityID = strings.TrimPrefix(key, "revoked:")
	}
	return row
}

func DescribeDialog(dialog domain.Dialog) string {
	detail := fmt.Sprintf("%d <-> %d", dialog.ParticipantA, dialog.ParticipantB)
	if dialog.BlockedBy != nil {
		detail += fmt.Sprintf(" blocked by %d", *dialog.BlockedBy)
	}
	if len(dialog.DeletedFor) > 0 {
		detail += fmt.Sprintf(" hidden for %v", dialog.DeletedFor)
	}
	return detail
}

func DescribeState(message domain.Message) string {
	switch {
	case message.IsRead():
		return "read"
	case message.IsDelivered():
		return "delivered"
	default:
		return "sent"
	}
}
