package hours

import (
	"encoding/json"
	"fmt"
)

// Kind identifies which availability variant a Status holds
type Kind string

const (
	KindOpen                 Kind = "open"
	KindClosedBeforeOpening  Kind = "closed_before_opening"
	KindClosedUntilFutureDay Kind = "closed_until_future_day"
	KindClosedUnknown        Kind = "closed_unknown"
)

// Status is the result of resolving a schedule at a point in time.
// Only the fields relevant to Kind are set; build values with the constructors.
type Status struct {
	Kind        Kind
	ClosingTime string
	OpeningTime string
	NextOpenDay string
}

// Open reports the shop open until closingTime
func Open(closingTime string) Status {
	return Status{Kind: KindOpen, ClosingTime: closingTime}
}

// ClosedBeforeOpening reports the shop closed but opening later today
func ClosedBeforeOpening(openingTime string) Status {
	return Status{Kind: KindClosedBeforeOpening, OpeningTime: openingTime}
}

// ClosedUntilFutureDay reports the shop closed until nextOpenDay at openingTime
func ClosedUntilFutureDay(nextOpenDay, openingTime string) Status {
	return Status{Kind: KindClosedUntilFutureDay, NextOpenDay: nextOpenDay, OpeningTime: openingTime}
}

// ClosedUnknown reports the shop closed with no further detail
func ClosedUnknown() Status {
	return Status{Kind: KindClosedUnknown}
}

// IsOpen reports whether the status is the open variant
func (s Status) IsOpen() bool {
	return s.Kind == KindOpen
}

// Text renders the human-readable badge label for the status
func (s Status) Text() string {
	switch s.Kind {
	case KindOpen:
		return fmt.Sprintf("Open now • Closes at %s", s.ClosingTime)
	case KindClosedBeforeOpening:
		return fmt.Sprintf("Closed • Opens at %s", s.OpeningTime)
	case KindClosedUntilFutureDay:
		return fmt.Sprintf("Closed • Opens %s at %s", s.NextOpenDay, s.OpeningTime)
	default:
		return "Closed"
	}
}

// String implements fmt.Stringer
func (s Status) String() string {
	return s.Text()
}

type statusJSON struct {
	Kind        Kind   `json:"kind"`
	IsOpen      bool   `json:"isOpen"`
	Text        string `json:"text"`
	ClosingTime string `json:"closingTime,omitempty"`
	OpeningTime string `json:"openingTime,omitempty"`
	NextOpenDay string `json:"nextOpenDay,omitempty"`
}

// MarshalJSON includes the derived isOpen flag and display text
func (s Status) MarshalJSON() ([]byte, error) {
	kind := s.Kind
	if kind == "" {
		kind = KindClosedUnknown
	}
	return json.Marshal(statusJSON{
		Kind:        kind,
		IsOpen:      s.IsOpen(),
		Text:        s.Text(),
		ClosingTime: s.ClosingTime,
		OpeningTime: s.OpeningTime,
		NextOpenDay: s.NextOpenDay,
	})
}
