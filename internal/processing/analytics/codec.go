package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IgorGrieder/shortlink/internal/events"
)

var ErrMalformedEvent = errors.New("malformed click event")

func EncodeClickEvent(ev ClickEvent) ([]byte, error) {
	return json.Marshal(events.ClickRecorded{
		LinkID:    ev.LinkID,
		ClickedAt: ev.ClickedAt.UTC().Format(time.RFC3339Nano),
		Referrer:  ev.Referrer,
		UserAgent: ev.UserAgent,
		IPHash:    ev.IPHash,
		Country:   ev.Country,
	})
}

func DecodeClickEvent(payload []byte) (ClickEvent, error) {
	var msg events.ClickRecorded
	if err := json.Unmarshal(payload, &msg); err != nil {
		return ClickEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if strings.TrimSpace(msg.LinkID) == "" {
		return ClickEvent{}, fmt.Errorf("%w: missing linkId", ErrMalformedEvent)
	}
	clickedAt, err := time.Parse(time.RFC3339Nano, msg.ClickedAt)
	if err != nil {
		return ClickEvent{}, fmt.Errorf("%w: clickedAt: %v", ErrMalformedEvent, err)
	}

	return ClickEvent{
		LinkID:    msg.LinkID,
		ClickedAt: clickedAt.UTC(),
		Referrer:  msg.Referrer,
		UserAgent: msg.UserAgent,
		IPHash:    msg.IPHash,
		Country:   msg.Country,
	}, nil
}
