package state

import "rentadm/api"

// Store is the application state container. Build one per process and pass
// it to whatever renders it.
type Store struct {
	Session       *Session
	Buildings     *Buildings
	Rooms         *Rooms
	Tenants       *Tenants
	Contracts     *Contracts
	Invoices      *Invoices
	MeterReadings *MeterReadings
	Incidents     *Incidents
	Settings      *Settings
	Notifications *Notifications
	UserRequests  *UserRequests
	Dashboard     *DashboardView
}

func NewStore(c *api.Client) *Store {
	invoices := NewInvoices(c)
	s := &Store{
		Session:       NewSession(c),
		Buildings:     NewBuildings(c),
		Rooms:         NewRooms(c),
		Tenants:       NewTenants(c),
		Contracts:     NewContracts(c),
		Invoices:      invoices,
		MeterReadings: NewMeterReadings(c, invoices),
		Incidents:     NewIncidents(c),
		Settings:      NewSettings(c),
		Notifications: NewNotifications(c),
		UserRequests:  NewUserRequests(c),
		Dashboard:     NewDashboardView(c),
	}
	s.Session.OnLogout(s.Notifications.Reset)
	s.Session.OnLogout(s.UserRequests.reset)

	previous := c.OnSessionExpired
	c.OnSessionExpired = func() {
		s.Session.Expire()
		if previous != nil {
			previous()
		}
	}
	return s
}
