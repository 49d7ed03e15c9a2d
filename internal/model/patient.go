package model

// FixedConsultationFee is the flat per-visit fee in rupees. Rows with a
// missing or malformed fee fall back to it, and the dashboard revenue
// figures multiply patient counts by it regardless of stored fees.
const FixedConsultationFee = 300

// DoctorNotAssigned is the placeholder used when a row carries no doctor.
const DoctorNotAssigned = "Not Assigned"

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// ParseGender normalizes a sheet value; anything unrecognized is Other.
func ParseGender(s string) Gender {
	switch Gender(s) {
	case GenderMale, GenderFemale, GenderOther:
		return Gender(s)
	default:
		return GenderOther
	}
}

type VisitStatus string

const (
	VisitStatusVisited    VisitStatus = "Visited"
	VisitStatusNotVisited VisitStatus = "Not Visited"
)

// ParseVisitStatus normalizes a sheet value, falling back to def when the
// value is missing or unrecognized. The default differs between the
// current row (Not Visited) and history rows (Visited); that asymmetry is
// inherited contract, not an accident.
func ParseVisitStatus(s string, def VisitStatus) VisitStatus {
	switch VisitStatus(s) {
	case VisitStatusVisited, VisitStatusNotVisited:
		return VisitStatus(s)
	default:
		return def
	}
}

type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "Paid"
	PaymentStatusNotPaid PaymentStatus = "Not Paid"
)

// ParsePaymentStatus normalizes a sheet value, falling back to def when
// missing or unrecognized. Same asymmetric defaults as visit status.
func ParsePaymentStatus(s string, def PaymentStatus) PaymentStatus {
	switch PaymentStatus(s) {
	case PaymentStatusPaid, PaymentStatusNotPaid:
		return PaymentStatus(s)
	default:
		return def
	}
}

// Visit is one historical encounter. Immutable once built from a sheet row.
type Visit struct {
	Timestamp       string        `json:"timestamp"`
	DoctorName      string        `json:"doctor_name"`
	DoctorNotes     string        `json:"doctor_notes"`
	VisitStatus     VisitStatus   `json:"visit_status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	ConsultationFee int           `json:"consultation_fee"`
}

// Patient is the canonical record for one WhatsApp number. The latest
// sheet row is flattened onto the top-level fields; every older row lives
// in History, newest first.
type Patient struct {
	ID                    string        `json:"id"`
	Name                  string        `json:"name"`
	Gender                Gender        `json:"gender"`
	WhatsAppNumber        string        `json:"whatsapp_number"`
	DOB                   string        `json:"dob"`
	Address               string        `json:"address"`
	Timestamp             string        `json:"timestamp"`
	InitialConsultingFees string        `json:"initial_consulting_fees"`
	DoctorName            string        `json:"doctor_name"`
	VisitStatus           VisitStatus   `json:"visit_status"`
	VisitDate             string        `json:"visit_date"`
	ConsultationFee       int           `json:"consultation_fee"`
	PaymentStatus         PaymentStatus `json:"payment_status"`
	DoctorNotes           string        `json:"doctor_notes"`
	NextVisitDate         string        `json:"next_visit_date"`
	InternalMessage       string        `json:"internal_message"`
	History               []Visit       `json:"history"`
}

// PatientUpdateRequest carries the clinical fields the profile editor may
// change. Demographic and sheet-sourced fields are not editable.
type PatientUpdateRequest struct {
	VisitStatus     VisitStatus   `json:"visit_status" binding:"required,oneof='Visited' 'Not Visited'"`
	PaymentStatus   PaymentStatus `json:"payment_status" binding:"required,oneof='Paid' 'Not Paid'"`
	VisitDate       string        `json:"visit_date"`
	NextVisitDate   string        `json:"next_visit_date"`
	DoctorNotes     string        `json:"doctor_notes"`
	InternalMessage string        `json:"internal_message"`
}

// DashboardStats are pure reductions over a visible patient set.
type DashboardStats struct {
	TotalThisMonth      int `json:"total_this_month"`
	VisitedCount        int `json:"visited_count"`
	NotVisitedCount     int `json:"not_visited_count"`
	FeesPaid            int `json:"fees_paid"`
	FeesPending         int `json:"fees_pending"`
	TotalUniquePatients int `json:"total_unique_patients"`
}
