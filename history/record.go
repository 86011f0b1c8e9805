package history

import (
	"fmt"
	"time"

	"github.com/vrsync/vrsync/message"
	"github.com/vrsync/vrsync/orientation"
)

// Record is the last synchronized state of one resource.
type Record struct {
	Locator     string           `json:"locator"`
	PositionMs  int64            `json:"position_ms"`
	Orientation orientation.Vec3 `json:"orientation"`
	SavedAt     time.Time        `json:"saved_at"`
}

// Message rebuilds the control message that restores this record.
func (r Record) Message() message.Message {
	return message.New(r.Locator).At(r.PositionMs).Facing(r.Orientation)
}

func (r Record) String() string {
	return fmt.Sprintf("%s @ %s facing %s", r.Locator, time.Duration(r.PositionMs)*time.Millisecond, r.Orientation)
}
