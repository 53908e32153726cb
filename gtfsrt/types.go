package gtfsrt

// EntityKind discriminates the decoded entity union.
type EntityKind int

const (
	KindUnknown EntityKind = iota
	KindTripUpdate
	KindAlert
)

// FeedMessage is one decoded realtime feed snapshot. It is built fresh per
// request and never mutated after decode.
type FeedMessage struct {
	Timestamp int64
	Entities  []Entity
}

// Entity is a tagged union over the feed entity types. Exactly one of
// TripUpdate and Alert is non-nil for known kinds; both are nil for
// KindUnknown (vehicle positions and anything else this service ignores).
type Entity struct {
	ID         string
	TripUpdate *TripUpdate
	Alert      *Alert
}

// Kind reports which arm of the union is populated.
func (e Entity) Kind() EntityKind {
	switch {
	case e.TripUpdate != nil:
		return KindTripUpdate
	case e.Alert != nil:
		return KindAlert
	default:
		return KindUnknown
	}
}

// TripUpdate carries the realtime predictions for one vehicle run.
type TripUpdate struct {
	TripID    string
	RouteID   string
	StopTimes []StopTimeUpdate
}

// StopTimeUpdate is one predicted stop call. Arrival is plain epoch seconds,
// zero when the feed carried none. Track is populated only when the feed was
// decoded with the commuter-rail extended schema.
type StopTimeUpdate struct {
	StopID  string
	Arrival int64
	Track   string
}

// Alert is a decoded service alert entity. InformedEntities and the text
// fields pass through unchanged from the wire message; active periods are
// flattened to plain epoch seconds.
type Alert struct {
	ActivePeriods    []ActivePeriod
	InformedEntities []InformedEntity
	HeaderText       *TranslatedString
	DescriptionText  *TranslatedString
}

// ActivePeriod is one alert validity window. Zero Start means unbounded
// past; zero End means unbounded future.
type ActivePeriod struct {
	Start int64 `json:"start,omitempty"`
	End   int64 `json:"end,omitempty"`
}

// InformedEntity identifies one thing an alert affects.
type InformedEntity struct {
	AgencyID string   `json:"agencyId,omitempty"`
	RouteID  string   `json:"routeId,omitempty"`
	StopID   string   `json:"stopId,omitempty"`
	Trip     *TripRef `json:"trip,omitempty"`
}

// TripRef references a trip from an informed entity.
type TripRef struct {
	TripID string `json:"tripId,omitempty"`
}

// TranslatedString mirrors the wire representation of alert text.
type TranslatedString struct {
	Translations []Translation `json:"translation"`
}

// Translation is one language variant of an alert text.
type Translation struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// EpochSeconds normalizes an optional 64-bit wire timestamp to a plain
// integer. Normalizing an already-plain value is the identity; absent values
// normalize to zero.
func EpochSeconds(t *int64) int64 {
	if t == nil {
		return 0
	}
	return *t
}
