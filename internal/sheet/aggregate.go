package sheet

import (
	"sort"
	"time"

	"github.com/docmanage/opd-api/internal/model"
)

// UnknownPatientKey is the bucket for rows without any phone value.
// Callers should treat it as a degenerate group, not a real patient.
const UnknownPatientKey = "unknown"

// timestampLayouts covers the formats the form backend has been seen to
// emit: ISO 8601 and the US-style stamps Google Forms writes.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006",
	"2006-01-02",
}

// BuildPatients groups parsed rows by WhatsApp number and collapses each
// group into one Patient: the most recent submission becomes the current
// state, every older submission becomes a history Visit (newest first).
// Ordering across patients is unspecified.
func BuildPatients(rows []Row) []model.Patient {
	grouped := make(map[string][]Row)
	for _, row := range rows {
		phone := pick(row, "whatsapp number", "whats_app_number")
		if phone == "" {
			phone = UnknownPatientKey
		}
		grouped[phone] = append(grouped[phone], row)
	}

	patients := make([]model.Patient, 0, len(grouped))
	for phone, group := range grouped {
		patients = append(patients, buildPatient(phone, group))
	}
	return patients
}

func buildPatient(phone string, group []Row) model.Patient {
	// Newest first; rows whose timestamp cannot be parsed sort as
	// extremely old, i.e. to the end.
	sort.SliceStable(group, func(i, j int) bool {
		return parseTimestamp(group[i]["timestamp"]).After(parseTimestamp(group[j]["timestamp"]))
	})

	latest := group[0]

	history := make([]model.Visit, 0, len(group)-1)
	for _, row := range group[1:] {
		history = append(history, model.Visit{
			Timestamp:       row["timestamp"],
			DoctorName:      pickDefault(row, model.DoctorNotAssigned, "select doctor name", "doctor name"),
			DoctorNotes:     row["doctor notes"],
			VisitStatus:     model.ParseVisitStatus(row["visit status"], model.VisitStatusVisited),
			PaymentStatus:   model.ParsePaymentStatus(row["payment status"], model.PaymentStatusPaid),
			ConsultationFee: parseFee(row["consultation fee"]),
		})
	}

	return model.Patient{
		ID:                    phone,
		Timestamp:             latest["timestamp"],
		Name:                  pickDefault(latest, "Unknown", "name"),
		Gender:                model.ParseGender(latest["gender"]),
		WhatsAppNumber:        phone,
		DOB:                   pick(latest, "date of birth", "dob"),
		Address:               latest["address"],
		InitialConsultingFees: latest["consulting fees"],
		DoctorName:            pickDefault(latest, model.DoctorNotAssigned, "select doctor name", "doctor name"),
		VisitStatus:           model.ParseVisitStatus(latest["visit status"], model.VisitStatusNotVisited),
		VisitDate:             latest["visit date"],
		ConsultationFee:       parseFee(latest["consultation fee"]),
		PaymentStatus:         model.ParsePaymentStatus(latest["payment status"], model.PaymentStatusNotPaid),
		DoctorNotes:           latest["doctor notes"],
		NextVisitDate:         latest["next visit date"],
		InternalMessage:       latest["internal message"],
		History:               history,
	}
}

// pick returns the first non-empty value among the given headers.
func pick(row Row, headers ...string) string {
	for _, h := range headers {
		if v := row[h]; v != "" {
			return v
		}
	}
	return ""
}

func pickDefault(row Row, def string, headers ...string) string {
	if v := pick(row, headers...); v != "" {
		return v
	}
	return def
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseFee reads the leading decimal digits of the value, matching how
// the sheet's numeric cells are exported ("300", "300.00"). A missing,
// malformed or non-positive fee falls back to the fixed fee.
func parseFee(s string) int {
	n := 0
	ok := false
	for _, ch := range s {
		if ch < '0' || ch > '9' {
			break
		}
		n = n*10 + int(ch-'0')
		ok = true
	}
	if !ok || n <= 0 {
		return model.FixedConsultationFee
	}
	return n
}
