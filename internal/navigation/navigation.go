// Package navigation maps staff roles to the front-office sections they may
// open. The HTTP layer uses the same table to authorise routes.
package navigation

import "frontoffice/internal/domain"

const (
	SectionDashboard = "dashboard"
	SectionCheckIn   = "checkin"
	SectionCheckOut  = "checkout"
	SectionRooms     = "rooms"
	SectionLiveRooms = "live-rooms"
	SectionRoomMgmt  = "room-mgmt"
	SectionPayments  = "payments"
	SectionGuests    = "guests"
	SectionReports   = "reports"
	SectionSearch    = "search"
	SectionExport    = "export"
	SectionBilling   = "billing"
	SectionAudit     = "audit"
)

var baseSections = []string{SectionDashboard, SectionCheckIn, SectionCheckOut, SectionRooms, SectionLiveRooms}

var roleSections = map[string][]string{
	domain.RoleAdmin:       {SectionRoomMgmt, SectionPayments, SectionGuests, SectionReports, SectionSearch, SectionExport, SectionBilling, SectionAudit},
	domain.RoleBMO:         {SectionRoomMgmt, SectionPayments, SectionGuests, SectionReports, SectionSearch, SectionExport, SectionBilling, SectionAudit},
	domain.RoleFMO:         {SectionRoomMgmt, SectionPayments, SectionGuests, SectionReports, SectionSearch, SectionBilling},
	domain.RoleFrontOffice: {SectionGuests, SectionSearch, SectionBilling},
}

func VisibleSections(role string) []string {
	extra := roleSections[role]
	out := make([]string, 0, len(baseSections)+len(extra))
	out = append(out, baseSections...)
	return append(out, extra...)
}

func CanAccess(role string, section string) bool {
	for _, s := range VisibleSections(role) {
		if s == section {
			return true
		}
	}
	return false
}

func IsKnownRole(role string) bool {
	_, ok := roleSections[role]
	return ok
}
