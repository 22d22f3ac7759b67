package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRoute(name string) TravelRoute {
	return TravelRoute{
		Name:          name,
		TotalCost:     45000,
		TotalDuration: "14h 30m",
		Transfers:     1,
		Legs: []RouteLeg{
			{From: "Delhi", To: "Mumbai", Type: TransportTrain, Duration: "16h", Cost: 2500, Carrier: "Rajdhani"},
			{From: "Mumbai", To: "Tokyo", Type: TransportFlight, Duration: "9h", Cost: 42500, Carrier: "ANA"},
		},
		BookingOptions: []BookingOption{
			{Platform: "MakeMyTrip", Price: 45200, URL: "https://www.makemytrip.com"},
		},
	}
}

func TestUserProfileHasRoute(t *testing.T) {
	p := UserProfile{Name: "Priya", SavedRoutes: []TravelRoute{sampleRoute("Tokyo Express")}}

	assert.True(t, p.HasRoute("Tokyo Express"))
	assert.False(t, p.HasRoute("tokyo express"), "names match exactly")
	assert.False(t, UserProfile{}.HasRoute("Tokyo Express"))
}

func TestUserProfileClone(t *testing.T) {
	p := UserProfile{Name: "Priya", SavedRoutes: []TravelRoute{sampleRoute("Tokyo Express")}}

	c := p.Clone()
	c.SavedRoutes[0].Name = "changed"
	c.SavedRoutes[0].Legs[0].From = "changed"
	c.SavedRoutes = append(c.SavedRoutes, sampleRoute("Another"))

	assert.Equal(t, "Tokyo Express", p.SavedRoutes[0].Name)
	assert.Equal(t, "Delhi", p.SavedRoutes[0].Legs[0].From)
	assert.Len(t, p.SavedRoutes, 1)

	assert.Nil(t, UserProfile{Name: "Priya"}.Clone().SavedRoutes)
	assert.NotNil(t, UserProfile{SavedRoutes: []TravelRoute{}}.Clone().SavedRoutes)
}

func TestValidateTravelRoute(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *TravelRoute)
		wantErr bool
	}{
		{"complete route", func(r *TravelRoute) {}, false},
		{"direct route has zero transfers", func(r *TravelRoute) { r.Transfers = 0 }, false},
		{"missing name", func(r *TravelRoute) { r.Name = "" }, true},
		{"missing duration", func(r *TravelRoute) { r.TotalDuration = "" }, true},
		{"missing legs", func(r *TravelRoute) { r.Legs = nil }, true},
		{"missing booking options", func(r *TravelRoute) { r.BookingOptions = nil }, true},
		{"negative cost", func(r *TravelRoute) { r.TotalCost = -1 }, true},
		{"leg without origin", func(r *TravelRoute) { r.Legs[1].From = "" }, true},
		{"booking without url", func(r *TravelRoute) { r.BookingOptions[0].URL = "" }, true},
		{"leg carrier is optional", func(r *TravelRoute) { r.Legs[0].Carrier = "" }, false},
		{"ferry leg", func(r *TravelRoute) { r.Legs[0].Type = TransportFerry }, false},
		{"unknown transport type", func(r *TravelRoute) { r.Legs[0].Type = "car" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sampleRoute("Tokyo Express")
			tt.mutate(&r)
			err := Validate(r)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
