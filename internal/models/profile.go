package models

// UserProfile is the signed-in identity and everything it has saved.
// SavedRoutes is unique by route name.
type UserProfile struct {
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Bio         string        `json:"bio"`
	SavedRoutes []TravelRoute `json:"savedRoutes"`
}

// HasRoute reports whether a route with the given name is saved.
func (p UserProfile) HasRoute(name string) bool {
	for _, r := range p.SavedRoutes {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with p.
func (p UserProfile) Clone() UserProfile {
	out := p
	if p.SavedRoutes == nil {
		return out
	}
	out.SavedRoutes = make([]TravelRoute, len(p.SavedRoutes))
	for i, r := range p.SavedRoutes {
		out.SavedRoutes[i] = r.Clone()
	}
	return out
}

// Clone returns a copy that shares no slices with r.
func (r TravelRoute) Clone() TravelRoute {
	out := r
	if r.Legs != nil {
		out.Legs = append([]RouteLeg(nil), r.Legs...)
	}
	if r.BookingOptions != nil {
		out.BookingOptions = append([]BookingOption(nil), r.BookingOptions...)
	}
	return out
}
