package transit

import (
	"regexp"

	"github.com/anish3343/transit-dashboard/gtfsrt"
)

// agencySystems maps GTFS agency ids found in alert informed entities to the
// dashboard's sub-system keys.
var agencySystems = map[string]string{
	"MTA NYCT": "subway",
	"MTABC":    "bus",
	"MTASBWY":  "subway",
	"MNR":      "mnr",
	"LI":       "lirr",
}

// NYCT publishes bus and subway alerts under one agency id. Bus routes look
// like "M15" or "BX12"; subway routes are a single letter or digit.
var busRoutePattern = regexp.MustCompile(`^[A-Z]{1,2}\d+`)

// BuildAlerts extracts the service alerts from a decoded feed snapshot,
// deriving the affected sub-systems from each alert's informed entities.
// Output order follows entity order in the source message.
func BuildAlerts(msg *gtfsrt.FeedMessage) []Alert {
	alerts := make([]Alert, 0, len(msg.Entities))
	for _, entity := range msg.Entities {
		if entity.Kind() != gtfsrt.KindAlert {
			continue
		}
		a := entity.Alert
		alerts = append(alerts, Alert{
			ID:              entity.ID,
			Systems:         alertSystems(a.InformedEntities),
			ActivePeriod:    a.ActivePeriods,
			InformedEntity:  a.InformedEntities,
			HeaderText:      a.HeaderText,
			DescriptionText: a.DescriptionText,
		})
	}
	return alerts
}

// alertSystems derives the ordered, deduplicated sub-system list for one
// alert. First mention wins the ordering.
func alertSystems(informed []gtfsrt.InformedEntity) []string {
	systems := make([]string, 0, 1)
	seen := make(map[string]bool)
	for _, ie := range informed {
		system, ok := agencySystems[ie.AgencyID]
		if !ok {
			continue
		}
		if system == "subway" && busRoutePattern.MatchString(ie.RouteID) {
			system = "bus"
		}
		if !seen[system] {
			seen[system] = true
			systems = append(systems, system)
		}
	}
	return systems
}
