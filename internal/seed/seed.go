// Package seed loads a deterministic demo portfolio: an Austin, TX operator
// with twelve properties, six months of payment history, an active repair
// worklist, applications under screening, and a lived-in mailbox.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"gorm.io/gorm"

	"github.com/greenleafprop/rentledger/mailbox"
	"github.com/greenleafprop/rentledger/maintenance"
	"github.com/greenleafprop/rentledger/models"
	"github.com/greenleafprop/rentledger/payments"
	"github.com/greenleafprop/rentledger/registry"
	"github.com/greenleafprop/rentledger/screening"
	"github.com/greenleafprop/rentledger/tenancy"
)

// Summary counts what Run created.
type Summary struct {
	Properties   int
	Units        int
	Tenants      int
	Payments     int
	Requests     int
	Applications int
	Emails       int
}

var anchor = time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)

type propertySpec struct {
	name    string
	address string
	year    int
	units   int
	parking int
}

var propertySpecs = []propertySpec{
	{"Riverside Commons", "2400 Riverside Dr", 1998, 16, 24},
	{"Oak Hill Apartments", "7101 Oak Hill Blvd", 1985, 20, 30},
	{"East Side Flats", "1181 E 6th St", 2015, 12, 12},
	{"Mueller Park Residences", "4550 Mueller Blvd", 2012, 18, 20},
	{"South Lamar Place", "2201 S Lamar Blvd", 2005, 14, 16},
	{"North Loop Lofts", "5310 North Loop Blvd", 2019, 10, 10},
	{"Barton Creek Villas", "3800 Barton Creek Rd", 1992, 8, 12},
	{"Zilker Edge", "1600 Azie Morton Rd", 2021, 12, 14},
	{"Manor Road Studios", "2900 Manor Rd", 1978, 15, 10},
	{"Crestview Terrace", "7915 Crestview Ave", 1989, 12, 14},
	{"Domain Heights", "11200 Domain Dr", 2017, 24, 36},
	{"Bouldin Bungalows", "1504 Bouldin Ave", 1965, 6, 6},
}

var firstNames = []string{
	"James", "Maria", "David", "Sarah", "Michael", "Jennifer", "Robert",
	"Linda", "William", "Elizabeth", "Carlos", "Amanda", "Daniel", "Jessica",
	"Kevin", "Ashley", "Brian", "Emily", "Jason", "Nicole", "Eric", "Rachel",
	"Luis", "Megan", "Tyler", "Lauren", "Aaron", "Brittany", "Jose", "Stephanie",
}

var lastNames = []string{
	"Smith", "Johnson", "Garcia", "Martinez", "Brown", "Davis", "Rodriguez",
	"Wilson", "Anderson", "Taylor", "Thomas", "Hernandez", "Moore", "Jackson",
	"Lee", "Nguyen", "Walker", "Hall", "Allen", "Young", "King", "Wright",
	"Lopez", "Hill", "Scott", "Green", "Adams", "Baker", "Nelson", "Rivera",
}

var employers = []string{
	"Dell Technologies", "H-E-B", "University of Texas", "Tesla Austin",
	"Indeed", "Oracle", "Samsung Austin", "City of Austin",
	"Whole Foods Market", "Ascension Seton",
}

var payMethods = []string{"bank_transfer", "check", "online_portal", "venmo", "zelle"}

// Run populates an empty, migrated database through the domain engines so
// every seeded row went through the same rules as live data.
func Run(db *gorm.DB) (*Summary, error) {
	rng := rand.New(rand.NewSource(42))
	sum := &Summary{}

	reg := registry.New(db)
	ledger := tenancy.New(db, tenancy.Config{})
	payEngine := payments.New(db, payments.Policy{})
	mntEngine := maintenance.New(db, maintenance.Policy{})
	screener := screening.New(db)
	mbox := mailbox.New(db)

	units, err := seedProperties(reg, rng, sum)
	if err != nil {
		return nil, err
	}
	tenants, err := seedTenants(ledger, rng, units, sum)
	if err != nil {
		return nil, err
	}
	if err := seedPayments(db, payEngine, rng, sum); err != nil {
		return nil, err
	}
	if err := seedMaintenance(mntEngine, rng, units, tenants, sum); err != nil {
		return nil, err
	}
	if err := seedApplications(db, screener, rng, sum); err != nil {
		return nil, err
	}
	if err := seedEmails(mbox, rng, tenants, sum); err != nil {
		return nil, err
	}
	return sum, nil
}

func seedProperties(reg *registry.Registry, rng *rand.Rand, sum *Summary) ([]models.Unit, error) {
	var units []models.Unit
	for _, spec := range propertySpecs {
		p := models.Property{
			Name:         spec.name,
			Address:      spec.address,
			City:         "Austin",
			State:        "TX",
			Zip:          fmt.Sprintf("787%02d", 1+rng.Intn(50)),
			YearBuilt:    spec.year,
			TotalUnits:   spec.units,
			ParkingSpots: spec.parking,
		}
		if err := reg.CreateProperty(&p); err != nil {
			return nil, err
		}
		sum.Properties++

		perFloor := 6
		for i := 0; i < spec.units; i++ {
			bedrooms := rng.Intn(4)
			bathrooms := 1.0
			if bedrooms >= 2 {
				bathrooms = []float64{1.5, 2, 2}[rng.Intn(3)]
			}
			rent := 950 + float64(bedrooms)*420 + float64(rng.Intn(8))*25
			u := models.Unit{
				PropertyID:  p.ID,
				UnitNumber:  fmt.Sprintf("%d%02d", 1+i/perFloor, 1+i%perFloor),
				Bedrooms:    bedrooms,
				Bathrooms:   bathrooms,
				Sqft:        450 + bedrooms*280 + rng.Intn(120),
				RentAmount:  rent,
				Status:      models.UnitVacant,
				PetsAllowed: rng.Intn(10) < 6,
			}
			if err := reg.CreateUnit(&u); err != nil {
				return nil, err
			}
			units = append(units, u)
			sum.Units++
		}
	}
	return units, nil
}

func seedTenants(ledger *tenancy.Ledger, rng *rand.Rand, units []models.Unit, sum *Summary) ([]models.Tenant, error) {
	var tenants []models.Tenant
	for i, u := range units {
		if rng.Intn(100) >= 82 {
			continue
		}
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		leaseStart := time.Date(2023, time.Month(1+rng.Intn(12)), 1, 0, 0, 0, 0, time.UTC)
		unitID := u.ID
		t := models.Tenant{
			FirstName:             first,
			LastName:              last,
			Email:                 fmt.Sprintf("%s.%s%d@example.com", lower(first), lower(last), i),
			Phone:                 fmt.Sprintf("+1-512-555-%04d", rng.Intn(10000)),
			UnitID:                &unitID,
			LeaseStart:            leaseStart,
			LeaseEnd:              leaseStart.AddDate(1, 6, 0),
			RentAmount:            u.RentAmount,
			SecurityDeposit:       u.RentAmount,
			Status:                models.TenantActive,
			EmergencyContactName:  firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))],
			EmergencyContactPhone: fmt.Sprintf("+1-512-555-%04d", rng.Intn(10000)),
			Employer:              employers[rng.Intn(len(employers))],
			AnnualIncome:          u.RentAmount * 12 * (2.5 + rng.Float64()*2),
			SSNLastFour:           fmt.Sprintf("%04d", rng.Intn(10000)),
		}
		if err := ledger.Create(&t); err != nil {
			return nil, err
		}
		tenants = append(tenants, t)
		sum.Tenants++
	}

	// a couple of signed leases that have not moved in yet
	for i := 0; i < 3; i++ {
		first := firstNames[rng.Intn(len(firstNames))]
		last := lastNames[rng.Intn(len(lastNames))]
		t := models.Tenant{
			FirstName:       first,
			LastName:        last,
			Email:           fmt.Sprintf("%s.%s.pending%d@example.com", lower(first), lower(last), i),
			Phone:           fmt.Sprintf("+1-512-555-%04d", rng.Intn(10000)),
			LeaseStart:      anchor.AddDate(0, 1, 0),
			LeaseEnd:        anchor.AddDate(1, 1, 0),
			RentAmount:      1200,
			SecurityDeposit: 1200,
			Status:          models.TenantPending,
			Employer:        employers[rng.Intn(len(employers))],
			AnnualIncome:    52000,
			SSNLastFour:     fmt.Sprintf("%04d", rng.Intn(10000)),
		}
		if err := ledger.Create(&t); err != nil {
			return nil, err
		}
		sum.Tenants++
	}

	// two historical turnovers so occupancy history has closed intervals
	for i := 0; i < 2 && i < len(tenants); i++ {
		t := tenants[i*7]
		if err := ledger.MoveOut(t.ID, anchor.AddDate(0, 0, -20)); err != nil {
			return nil, err
		}
	}
	return tenants, nil
}

func seedPayments(db *gorm.DB, engine *payments.Engine, rng *rand.Rand, sum *Summary) (err error) {
	for m := 0; m < 6; m++ {
		monthStart := time.Date(2024, time.Month(1+m), 1, 0, 0, 0, 0, time.UTC)
		if _, err = engine.Generate(monthStart); err != nil {
			return err
		}

		var created []models.Payment
		if err = db.Where("status = ? AND due_date = ?", models.PaymentPending, monthStart).
			Find(&created).Error; err != nil {
			return err
		}

		// settle the on-time payers and the waivers first, then sweep the
		// month and settle the late payers against their past_due rows
		var late []models.Payment
		for _, p := range created {
			sum.Payments++
			roll := rng.Intn(100)
			switch {
			case roll < 72:
				paid := monthStart.AddDate(0, 0, rng.Intn(5))
				err = engine.MarkPaid(p.ID, payments.PaidInput{
					PaidDate: paid,
					Method:   payMethods[rng.Intn(len(payMethods))],
				})
			case roll < 88:
				late = append(late, p)
			case roll < 94 && m < 5:
				err = engine.Waive(p.ID, "property manager")
			}
			if err != nil {
				return err
			}
		}
		if len(late) > 0 {
			if _, err = engine.Sweep(monthStart.AddDate(0, 0, 6)); err != nil {
				return err
			}
		}
		for _, p := range late {
			days := 6 + rng.Intn(14)
			err = engine.MarkPaid(p.ID, payments.PaidInput{
				PaidDate:        monthStart.AddDate(0, 0, days-1),
				Method:          payMethods[rng.Intn(len(payMethods))],
				ConfirmationRef: fmt.Sprintf("CONF-%06d", rng.Intn(1000000)),
			})
			if err != nil {
				return err
			}
		}
	}
	// everything still unpaid lands in past_due with its accrued fee
	_, err = engine.Sweep(anchor)
	return err
}

type requestSpec struct {
	category models.RequestCategory
	title    string
	desc     string
	cost     float64
}

var requestSpecs = []requestSpec{
	{models.CategoryHVAC, "AC not cooling", "Thermostat set to 70 but the AC is not cooling at all", 450},
	{models.CategoryPlumbing, "Water leak under kitchen sink", "Active water leak pooling under the sink cabinet", 325},
	{models.CategoryElectrical, "Sparking outlet in bedroom", "Outlet near the window is sparking when anything is plugged in", 275},
	{models.CategoryPlumbing, "Running toilet", "Toilet in hall bathroom runs constantly", 140},
	{models.CategoryAppliance, "Dishwasher not draining", "Standing water in the bottom after every cycle", 220},
	{models.CategoryPest, "Ants in kitchen", "Trail of ants along the kitchen baseboard", 175},
	{models.CategoryRoofing, "Ceiling stain after storm", "Brown stain spreading on the bedroom ceiling", 850},
	{models.CategoryHVAC, "Furnace making noise", "Loud rattle when the heat kicks on", 390},
	{models.CategoryCleaning, "Hallway deep clean", "Common hallway carpets need a deep clean", 300},
	{models.CategoryHandyman, "Bedroom door sticking", "Door rubs the frame and will not latch", 120},
	{models.CategoryElectrical, "Panel upgrade quote", "Breaker trips weekly, panel may need replacement", 1400},
	{models.CategoryAppliance, "Fridge not cold", "Refrigerator barely cools, freezer fine", 310},
	{models.CategoryOther, "Mailbox latch broken", "Cluster mailbox door will not stay shut", 85},
	{models.CategoryPlumbing, "Low water pressure", "Shower pressure dropped noticeably this week", 160},
	{models.CategoryHandyman, "Lost keys", "Tenant lost keys over the weekend and needs a rekey", 95},
	{models.CategoryAppliance, "Disposal jammed", "Tenant says a spoon jammed the disposal", 110},
	{models.CategoryHandyman, "Broken blinds", "Kids broke the blinds in the living room", 75},
	{models.CategoryPest, "Roaches reported", "Roaches seen in the kitchen at night", 200},
	{models.CategoryHVAC, "No heat in unit", "Heater blows cold air, no heat at all", 480},
	{models.CategoryHandyman, "Locked out", "Tenant locked out after hours", 60},
	{models.CategoryRoofing, "Gutter pulling away", "Front gutter detaching near the downspout", 540},
	{models.CategoryCleaning, "Move-out clean", "Unit needs full clean before next lease", 350},
	{models.CategoryElectrical, "Dead outlets in kitchen", "Two counter outlets stopped working", 230},
	{models.CategoryPlumbing, "Water heater pilot out", "No hot water since yesterday evening", 290},
}

func seedMaintenance(engine *maintenance.Engine, rng *rand.Rand, units []models.Unit, tenants []models.Tenant, sum *Summary) error {
	for i, spec := range requestSpecs {
		unit := units[rng.Intn(len(units))]
		var tenantID *uint
		if len(tenants) > 0 && rng.Intn(10) < 8 {
			id := tenants[rng.Intn(len(tenants))].ID
			tenantID = &id
		}
		req, err := engine.Submit(maintenance.SubmitInput{
			UnitID:        unit.ID,
			TenantID:      tenantID,
			Category:      spec.category,
			Title:         spec.title,
			Description:   spec.desc,
			EstimatedCost: spec.cost,
			SubmittedDate: anchor.AddDate(0, 0, -rng.Intn(30)),
		})
		if err != nil {
			return err
		}
		sum.Requests++

		if req.Status != models.RequestOpen {
			continue
		}
		if spec.cost > 500 {
			if i%2 == 0 {
				if err := engine.Authorize(req.ID, "property manager"); err != nil {
					return err
				}
			} else {
				continue // held at the gate, waiting on sign-off
			}
		}
		switch i % 4 {
		case 0:
			if err := engine.Schedule(req.ID, anchor.AddDate(0, 0, 2)); err != nil {
				return err
			}
		case 1:
			if err := engine.Schedule(req.ID, anchor.AddDate(0, 0, 1)); err != nil {
				return err
			}
			if err := engine.Start(req.ID); err != nil {
				return err
			}
			if i%8 == 1 {
				actual := spec.cost * (0.8 + rng.Float64()*0.5)
				if err := engine.Complete(req.ID, anchor, actual); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

type applicantSpec struct {
	first, last string
	income      float64
	credit      int
	pets        bool
	assistance  bool
}

var applicantSpecs = []applicantSpec{
	{"Grace", "Okafor", 92000, 742, false, false},
	{"Hannah", "Pruitt", 40000, 650, false, false},
	{"Marcus", "Bell", 71000, 615, false, false},
	{"Priya", "Raman", 88000, 781, true, false},
	{"Sean", "Donnelly", 54000, 698, true, true},
	{"Alana", "Whitfield", 67000, 720, false, false},
	{"Victor", "Paz", 36000, 588, true, false},
	{"Noor", "Haddad", 105000, 755, false, false},
	{"Colin", "Mercer", 61000, 634, false, false},
	{"Dana", "Silva", 47000, 704, true, false},
	{"Felix", "Nguyen", 83000, 668, false, false},
	{"Rosa", "Trevino", 58000, 621, false, false},
	{"Omar", "Sheikh", 76000, 690, true, false},
	{"Ivy", "Caldwell", 99000, 712, false, false},
}

func seedApplications(db *gorm.DB, screener *screening.Screener, rng *rand.Rand, sum *Summary) error {
	var vacant []models.Unit
	if err := db.Where("status = ?", models.UnitVacant).Order("id").Find(&vacant).Error; err != nil {
		return err
	}
	if len(vacant) == 0 {
		return nil
	}

	for i, spec := range applicantSpecs {
		unit := vacant[i%len(vacant)]
		unitID := unit.ID
		moveIn := anchor.AddDate(0, 1, rng.Intn(20))
		app := models.RentalApplication{
			FirstName:        spec.first,
			LastName:         spec.last,
			Email:            fmt.Sprintf("%s.%s@example.com", lower(spec.first), lower(spec.last)),
			Phone:            fmt.Sprintf("+1-737-555-%04d", rng.Intn(10000)),
			DesiredUnitID:    &unitID,
			CurrentAddress:   fmt.Sprintf("%d W %dth St, Austin, TX", 100+rng.Intn(9000), 1+rng.Intn(50)),
			Employer:         employers[rng.Intn(len(employers))],
			AnnualIncome:     spec.income,
			CreditScore:      spec.credit,
			HasPets:          spec.pets,
			PetDetails:       petDetails(spec),
			AssistanceAnimal: spec.assistance,
			MoveInDate:       &moveIn,
			SubmittedDate:    anchor.AddDate(0, 0, -rng.Intn(14)),
		}
		if err := screener.Submit(&app); err != nil {
			return err
		}
		sum.Applications++

		if i%3 != 2 { // leave every third application unscreened
			if _, err := screener.Screen(app.ID); err != nil {
				return err
			}
			if i%5 == 0 {
				outcome := "approved"
				if spec.credit <= 620 || spec.income < unit.RentAmount*36 {
					outcome = "rejected"
				}
				if err := screener.Decide(app.ID, outcome, "property manager"); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func petDetails(spec applicantSpec) string {
	if !spec.pets {
		return ""
	}
	if spec.assistance {
		return "Documented assistance animal, letter on file"
	}
	return "One cat, 8 lbs"
}

func seedEmails(mbox *mailbox.Mailbox, rng *rand.Rand, tenants []models.Tenant, sum *Summary) error {
	type emailSpec struct {
		subject string
		body    string
		reply   string
	}
	tenantMail := []emailSpec{
		{"Question about rent due date", "Hi, can you confirm when June rent is considered late? Thanks.", "Rent is due on the 1st; a late fee applies after the 5th."},
		{"Late on this month", "I get paid Friday and will send rent then with the transfer confirmation.", "Thanks for the heads up, please include the confirmation number."},
		{"AC still not fixed", "Following up on my AC request from last week, it is getting hot.", ""},
		{"Lease renewal", "We would like to renew for another year if possible.", "Great to hear, I will send renewal terms this week."},
		{"Parking spot", "Is a second parking spot available for our unit?", ""},
		{"Noise complaint", "The unit above us has been loud after midnight most nights.", ""},
		{"Move out checklist", "Could you send the move out cleaning checklist?", ""},
		{"Autopay setup", "How do I set up autopay through the portal?", ""},
	}
	for i, spec := range tenantMail {
		if len(tenants) == 0 {
			break
		}
		t := tenants[(i*5)%len(tenants)]
		email, err := mbox.Append(mailbox.Inbound{
			From:       t.Email,
			Subject:    spec.subject,
			Body:       spec.body,
			ReceivedAt: anchor.AddDate(0, 0, -rng.Intn(10)),
		})
		if err != nil {
			return err
		}
		sum.Emails++
		if spec.reply != "" {
			if err := mbox.Reply(email.ID, spec.reply); err != nil {
				return err
			}
		} else if i%2 == 0 {
			if err := mbox.MarkRead(email.ID); err != nil {
				return err
			}
		}
	}

	strays := []mailbox.Inbound{
		{From: "quotes@roofingaustin.example.com", Subject: "Quote for Riverside Commons gutter work", Body: "Attached is the quote for the gutter repair discussed."},
		{From: "newsletter@apartmentnews.example.org", Subject: "Q2 Austin rental market report", Body: "Vacancy rates dipped again this quarter."},
	}
	for _, in := range strays {
		in.ReceivedAt = anchor.AddDate(0, 0, -rng.Intn(5))
		if _, err := mbox.Append(in); err != nil {
			return err
		}
		sum.Emails++
	}
	return nil
}

func lower(s string) string {
	b := []byte(s)
	for i := range b {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
