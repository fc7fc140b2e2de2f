package log

import (
	"context"
	"fmt"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger. Useful for
// development when protocol events should show up on the console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter writing to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("category", event.Category.String()),
	}

	switch {
	case event.Message != nil:
		attrs = append(attrs,
			slog.String("direction", event.Direction.String()),
			slog.Int("element", event.ElementIndex),
			slog.String("opcode", slogOpcode(event.Message.Opcode)),
			slog.Int("len", event.Message.Length),
		)
		if event.Message.Peer != 0 {
			attrs = append(attrs, slog.Uint64("peer", uint64(event.Message.Peer)))
		}
		if event.Message.Publication {
			attrs = append(attrs, slog.Bool("publication", true))
		}
	case event.Lifecycle != nil:
		attrs = append(attrs,
			slog.String("old_state", event.Lifecycle.OldState),
			slog.String("new_state", event.Lifecycle.NewState),
		)
		if event.Lifecycle.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.Lifecycle.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs, slog.String("error_msg", event.Error.Message))
		if event.Error.Context != "" {
			attrs = append(attrs, slog.String("error_context", event.Error.Context))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol event", attrs...)
}

func slogOpcode(op uint16) string {
	return fmt.Sprintf("0x%04x", op)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
