package gtfsrt

import (
	"fmt"

	gtfsrtpb "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
)

// Decoder turns raw feed bytes into a FeedMessage using a resolved schema.
type Decoder struct {
	schema *Schema
}

// NewDecoder creates a Decoder for the given schema.
func NewDecoder(schema *Schema) *Decoder {
	if schema == nil {
		schema = Generic()
	}
	return &Decoder{schema: schema}
}

// Decode parses raw protobuf bytes. Malformed bytes are fatal for the
// request; there is no partial decode.
func (d *Decoder) Decode(raw []byte) (*FeedMessage, error) {
	fm, err := d.schema.unmarshal(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding GTFS-RT feed: %w", err)
	}

	msg := &FeedMessage{Entities: make([]Entity, 0, len(fm.Entity))}
	if fm.Header != nil && fm.Header.Timestamp != nil {
		msg.Timestamp = int64(*fm.Header.Timestamp)
	}
	for _, e := range fm.Entity {
		entity := Entity{}
		if e.Id != nil {
			entity.ID = *e.Id
		}
		switch {
		case e.TripUpdate != nil:
			entity.TripUpdate = d.decodeTripUpdate(e.TripUpdate)
		case e.Alert != nil:
			entity.Alert = decodeAlert(e.Alert)
		}
		msg.Entities = append(msg.Entities, entity)
	}
	return msg, nil
}

func (d *Decoder) decodeTripUpdate(tu *gtfsrtpb.TripUpdate) *TripUpdate {
	out := &TripUpdate{}
	if tu.Trip != nil {
		if tu.Trip.TripId != nil {
			out.TripID = *tu.Trip.TripId
		}
		if tu.Trip.RouteId != nil {
			out.RouteID = *tu.Trip.RouteId
		}
	}
	for _, stu := range tu.StopTimeUpdate {
		if stu.StopId == nil {
			continue
		}
		call := StopTimeUpdate{
			StopID: *stu.StopId,
			Track:  d.schema.Track(stu),
		}
		if stu.Arrival != nil {
			call.Arrival = EpochSeconds(stu.Arrival.Time)
		}
		out.StopTimes = append(out.StopTimes, call)
	}
	return out
}

func decodeAlert(a *gtfsrtpb.Alert) *Alert {
	out := &Alert{}
	for _, p := range a.ActivePeriod {
		period := ActivePeriod{}
		if p.Start != nil {
			period.Start = int64(*p.Start)
		}
		if p.End != nil {
			period.End = int64(*p.End)
		}
		out.ActivePeriods = append(out.ActivePeriods, period)
	}
	for _, ie := range a.InformedEntity {
		informed := InformedEntity{}
		if ie.AgencyId != nil {
			informed.AgencyID = *ie.AgencyId
		}
		if ie.RouteId != nil {
			informed.RouteID = *ie.RouteId
		}
		if ie.StopId != nil {
			informed.StopID = *ie.StopId
		}
		if ie.Trip != nil && ie.Trip.TripId != nil {
			informed.Trip = &TripRef{TripID: *ie.Trip.TripId}
		}
		out.InformedEntities = append(out.InformedEntities, informed)
	}
	out.HeaderText = decodeTranslatedString(a.HeaderText)
	out.DescriptionText = decodeTranslatedString(a.DescriptionText)
	return out
}

func decodeTranslatedString(ts *gtfsrtpb.TranslatedString) *TranslatedString {
	if ts == nil {
		return nil
	}
	out := &TranslatedString{}
	for _, tr := range ts.Translation {
		t := Translation{}
		if tr.Text != nil {
			t.Text = *tr.Text
		}
		if tr.Language != nil {
			t.Language = *tr.Language
		}
		out.Translations = append(out.Translations, t)
	}
	return out
}
