package models

var ModelTypeRegistry = map[string]interface{}{
	"Property":           Property{},
	"Unit":               Unit{},
	"Tenant":             Tenant{},
	"Occupancy":          Occupancy{},
	"Payment":            Payment{},
	"MaintenanceRequest": MaintenanceRequest{},
	"RentalApplication":  RentalApplication{},
	"Email":              Email{},
	"Event":              Event{},
}

// All returns every persisted model in dependency order, parents before the
// rows that reference them.
func All() []interface{} {
	return []interface{}{
		&Property{},
		&Unit{},
		&Tenant{},
		&Occupancy{},
		&Payment{},
		&MaintenanceRequest{},
		&RentalApplication{},
		&Email{},
		&Event{},
	}
}
