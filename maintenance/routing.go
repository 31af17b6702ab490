package maintenance

import (
	"strings"

	"github.com/greenleafprop/rentledger/models"
)

// Contractor is one dispatch channel for a trade.
type Contractor struct {
	Name  string
	Phone string
	Email string
}

var contractors = map[models.RequestCategory]Contractor{
	models.CategoryPlumbing:   {Name: "Mike's Plumbing", Phone: "+1-512-555-8821", Email: "mike@mikesplumbing.example.com"},
	models.CategoryHVAC:       {Name: "Austin HVAC Pros", Phone: "+1-512-555-9932", Email: "service@austinhvac.example.com"},
	models.CategoryElectrical: {Name: "Lone Star Electric", Phone: "+1-512-555-7714", Email: "jobs@lonestarelectric.example.com"},
	models.CategoryPest:       {Name: "Hill Country Pest Control", Phone: "+1-512-555-6203", Email: "dispatch@hcpest.example.com"},
	models.CategoryAppliance:  {Name: "Capital City Appliance Repair", Phone: "+1-512-555-4455", Email: "repairs@capcityappliance.example.com"},
	models.CategoryHandyman:   {Name: "ATX Handyman Services", Phone: "+1-512-555-3378", Email: "booking@atxhandyman.example.com"},
	models.CategoryRoofing:    {Name: "Roofing Solutions Austin", Phone: "+1-512-555-2290", Email: "quotes@roofingaustin.example.com"},
	models.CategoryCleaning:   {Name: "Green Clean Janitorial", Phone: "+1-512-555-1167", Email: "schedule@greenclean.example.com"},
}

// RouteContractor maps a category to its single dispatch channel. Requests
// filed as "other" go to the handyman channel.
func RouteContractor(category models.RequestCategory) (Contractor, error) {
	if !category.IsValid() {
		return Contractor{}, models.ErrValidation("maintenance_request", "category", string(category), "unknown category")
	}
	if category == models.CategoryOther {
		category = models.CategoryHandyman
	}
	return contractors[category], nil
}

var emergencyPhrases = []string{
	"water leak",
	"flooding",
	"burst pipe",
	"no heat",
	"heat not working",
	"no ac",
	"ac not",
	"a/c not",
	"no air conditioning",
	"not cooling",
	"locked out",
	"lockout",
	"exposed wiring",
	"sparking",
	"sparks",
}

// ClassifyPriority upgrades a request to emergency when its text matches a
// known hazard phrase. It never downgrades the requested priority.
func ClassifyPriority(requested models.RequestPriority, title, description string) models.RequestPriority {
	text := strings.ToLower(title + " " + description)
	for _, phrase := range emergencyPhrases {
		if strings.Contains(text, phrase) {
			return models.PriorityEmergency
		}
	}
	return requested
}

var tenantCausePhrases = []string{
	"light bulb",
	"lightbulb",
	"hair clog",
	"clogged with hair",
	"hair in the drain",
	"air filter",
	"lost key",
	"jammed the disposal",
	"disposal jammed",
	"broke the blinds",
	"broken blinds",
	"tenant damage",
	"guest damage",
	"caused by tenant",
	"caused by guest",
}

// ClassifyResponsibility reports whether the request text describes damage
// or upkeep that falls to the occupant rather than the operator.
func ClassifyResponsibility(title, description string) bool {
	text := strings.ToLower(title + " " + description)
	for _, phrase := range tenantCausePhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
