package models

// TransportType is the mode of transport for a single leg.
type TransportType string

const (
	TransportFlight TransportType = "flight"
	TransportTrain  TransportType = "train"
	TransportBus    TransportType = "bus"
	TransportFerry  TransportType = "ferry"
)

// RouteLeg is one transport segment of an itinerary.
// Cost is always in INR.
type RouteLeg struct {
	ID       string        `json:"id"`
	From     string        `json:"from" validate:"required"`
	To       string        `json:"to" validate:"required"`
	Type     TransportType `json:"type" validate:"required,oneof=flight train bus ferry"`
	Duration string        `json:"duration" validate:"required"`
	Cost     float64       `json:"cost" validate:"gte=0"`
	Carrier  string        `json:"carrier"`
}

// BookingOption is a third-party offer to purchase a route.
type BookingOption struct {
	Platform string  `json:"platform" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	URL      string  `json:"url" validate:"required"`
}

// TravelRoute is a complete itinerary. Legs are in travel order.
//
// Transfers is supplied by the generator; the gateway reconciles it with
// len(Legs) before routes leave the gateway.
type TravelRoute struct {
	ID             string          `json:"id"`
	Name           string          `json:"name" validate:"required"`
	TotalCost      float64         `json:"totalCost" validate:"gte=0"`
	TotalDuration  string          `json:"totalDuration" validate:"required"`
	Transfers      int             `json:"transfers" validate:"gte=0"`
	Legs           []RouteLeg      `json:"legs" validate:"required,dive"`
	BookingOptions []BookingOption `json:"bookingOptions" validate:"required,dive"`
}
