package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/tara-vision/nexus/internal/action"
)

// GetTimeInfo reports the local date and time.
func (tb *Toolbox) GetTimeInfo(_ context.Context, _ *action.ToolCall) (string, error) {
	now := time.Now
	if tb.Now != nil {
		now = tb.Now
	}
	return FormatTime(now()), nil
}

// FormatTime renders t the way the model is told to expect it.
func FormatTime(t time.Time) string {
	return fmt.Sprintf("System time: %s, %s", t.Weekday(), t.Format("02 January 2006 - 15.04"))
}
