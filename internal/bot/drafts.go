package bot

import (
	"slices"

	"github.com/mitchellh/mapstructure"
)

// Session field names shared by several flows.
const (
	fieldPendingEvent = "pending_event"
	fieldPendingTier  = "pending_tier"
	fieldChannelID    = "channel_id"
	fieldEventID      = "event_id"
	fieldTarget       = "target"
	fieldEditField    = "field"
)

// memberDraft is what the registration flow collects.
type memberDraft struct {
	Name         string `field:"name"`
	BirthDate    string `field:"birth_date"`
	Grade        string `field:"grade"`
	LodgeName    string `field:"lodge_name"`
	LodgeNumber  string `field:"lodge_number"`
	Origin       string `field:"origin"`
	Jurisdiction string `field:"jurisdiction"`
}

// eventDraft is what the event creation flow collects.
type eventDraft struct {
	Date         string `field:"date"`
	Time         string `field:"time"`
	LodgeName    string `field:"lodge_name"`
	LodgeNumber  string `field:"lodge_number"`
	Origin       string `field:"origin"`
	MinGrade     string `field:"min_grade"`
	SessionType  string `field:"session_type"`
	Rite         string `field:"rite"`
	Jurisdiction string `field:"jurisdiction"`
	DressCode    string `field:"dress_code"`
	MealPolicy   string `field:"meal_policy"`
	Notes        string `field:"notes"`
	Address      string `field:"address"`
	ChannelID    int64  `field:"channel_id"`
}

// decodeDraft reads the session fields into T. A required field missing
// from the session is reported as a corrupt session.
func decodeDraft[T any](fields map[string]string, optional ...string) (*T, error) {
	var out T
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "field",
		WeaklyTypedInput: true,
		Metadata:         &md,
		Result:           &out,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(fields); err != nil {
		return nil, corrupt("decode draft: %v", err)
	}
	for _, name := range md.Unset {
		if !slices.Contains(optional, name) {
			return nil, corrupt("field %s missing", name)
		}
	}
	return &out, nil
}
