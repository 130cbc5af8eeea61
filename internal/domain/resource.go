package domain

// ResourceKind distinguishes single-unit vehicles from finite-stock parts.
type ResourceKind string

const (
	ResourceVehicle ResourceKind = "vehicle"
	ResourcePart    ResourceKind = "part"
)

// Resource is a rentable vehicle or spare part owned by a vendor.
type Resource struct {
	ID        string
	Kind      ResourceKind
	Name      string
	UnitPrice float64

	// Stock is the number of units rentable in parallel. Vehicles always
	// have a stock of 1; parts may have more.
	Stock int

	// Approved gates vendor listings: only admin-approved resources can be
	// booked.
	Approved bool

	// LicenseCategory names the credential a requester must hold to rent
	// this resource. Empty means none required (spare parts, trailers).
	LicenseCategory string
}

// Bookable reports whether the resource can accept new bookings at all.
func (r *Resource) Bookable() bool {
	return r.Approved && r.Stock > 0
}
