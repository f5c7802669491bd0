package timesheet

import "strings"

// AbsenceType is the closed set of absence codes carried by a daily entry.
type AbsenceType string

const (
	AbsenceUnspecified  AbsenceType = "absent"
	AbsencePaidLeave    AbsenceType = "paid_leave"
	AbsenceRTT          AbsenceType = "rtt"
	AbsenceSick         AbsenceType = "sick"
	AbsenceUnpaid       AbsenceType = "unpaid"
	AbsenceTraining     AbsenceType = "training"
	AbsenceFamilyEvent  AbsenceType = "family_event"
	AbsenceWorkAccident AbsenceType = "work_accident"
)

var absenceLabels = map[AbsenceType]string{
	AbsenceUnspecified:  "Absent",
	AbsencePaidLeave:    "CP",
	AbsenceRTT:          "RTT",
	AbsenceSick:         "Maladie",
	AbsenceUnpaid:       "Sans solde",
	AbsenceTraining:     "Formation",
	AbsenceFamilyEvent:  "Evenement familial",
	AbsenceWorkAccident: "Accident du travail",
}

func (a AbsenceType) Valid() bool {
	_, ok := absenceLabels[a]
	return ok
}

func (a AbsenceType) Label() string {
	return absenceLabels[a]
}

// Specificity ranks how much an absence code says about the day. A generic
// absence ranks below any concrete reason; nil ranks below both.
func Specificity(a *AbsenceType) int {
	switch {
	case a == nil || *a == "":
		return 0
	case *a == AbsenceUnspecified:
		return 1
	default:
		return 2
	}
}

// leaveTypeToAbsence is the single mapping from leave request types (and
// the legacy codes still found in older requests) to absence codes.
var leaveTypeToAbsence = map[string]AbsenceType{
	"paid_leave":    AbsencePaidLeave,
	"cp":            AbsencePaidLeave,
	"conges_payes":  AbsencePaidLeave,
	"rtt":           AbsenceRTT,
	"sick":          AbsenceSick,
	"sick_leave":    AbsenceSick,
	"maladie":       AbsenceSick,
	"unpaid":        AbsenceUnpaid,
	"unpaid_leave":  AbsenceUnpaid,
	"sans_solde":    AbsenceUnpaid,
	"training":      AbsenceTraining,
	"formation":     AbsenceTraining,
	"family_event":  AbsenceFamilyEvent,
	"work_accident": AbsenceWorkAccident,
	"at":            AbsenceWorkAccident,
}

// AbsenceForLeaveType maps a leave type to its absence code. Unknown types
// map to the generic absence.
func AbsenceForLeaveType(leaveType string) AbsenceType {
	if a, ok := leaveTypeToAbsence[strings.ToLower(strings.TrimSpace(leaveType))]; ok {
		return a
	}
	return AbsenceUnspecified
}

// TravelCode is the travel allowance code of a day.
type TravelCode string

const (
	TravelToComplete   TravelCode = "to_complete"
	TravelZone1        TravelCode = "zone_1"
	TravelZone2        TravelCode = "zone_2"
	TravelZone3        TravelCode = "zone_3"
	TravelZone4        TravelCode = "zone_4"
	TravelZone5        TravelCode = "zone_5"
	TravelPersonal     TravelCode = "personal_travel"
	TravelLongDistance TravelCode = "long_distance"
)

// TravelCodes lists every code in export column order.
var TravelCodes = []TravelCode{
	TravelZone1, TravelZone2, TravelZone3, TravelZone4, TravelZone5,
	TravelPersonal, TravelLongDistance, TravelToComplete,
}

var travelLabels = map[TravelCode]string{
	TravelToComplete:   "A completer",
	TravelZone1:        "Zone 1",
	TravelZone2:        "Zone 2",
	TravelZone3:        "Zone 3",
	TravelZone4:        "Zone 4",
	TravelZone5:        "Zone 5",
	TravelPersonal:     "Trajet personnel",
	TravelLongDistance: "Grand deplacement",
}

func (t TravelCode) Valid() bool {
	_, ok := travelLabels[t]
	return ok
}

func (t TravelCode) Label() string {
	return travelLabels[t]
}

// IsPlaceholder reports the "to complete" code a lead leaves before the
// zone is known.
func (t TravelCode) IsPlaceholder() bool {
	return t == TravelToComplete
}

// MealKind is the meal allowance of a day.
type MealKind string

const (
	MealNone       MealKind = "none"
	MealBasket     MealKind = "basket"
	MealRestaurant MealKind = "restaurant"
)

func (m MealKind) Valid() bool {
	return m == MealNone || m == MealBasket || m == MealRestaurant
}

func (m MealKind) Granted() bool {
	return m == MealBasket || m == MealRestaurant
}
