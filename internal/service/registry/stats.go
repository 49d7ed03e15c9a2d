package registry

import "github.com/docmanage/opd-api/internal/model"

// ComputeStats reduces a visible patient set to the dashboard figures.
// The fee totals multiply patient counts by the fixed consultation fee
// rather than summing stored fees; the billing screen has always worked
// on the flat rate.
func ComputeStats(patients []model.Patient) model.DashboardStats {
	stats := model.DashboardStats{
		TotalThisMonth:      len(patients),
		TotalUniquePatients: len(patients),
	}

	paid := 0
	unpaid := 0
	for _, p := range patients {
		switch p.VisitStatus {
		case model.VisitStatusVisited:
			stats.VisitedCount++
		case model.VisitStatusNotVisited:
			stats.NotVisitedCount++
		}
		switch p.PaymentStatus {
		case model.PaymentStatusPaid:
			paid++
		case model.PaymentStatusNotPaid:
			unpaid++
		}
	}

	stats.FeesPaid = paid * model.FixedConsultationFee
	stats.FeesPending = unpaid * model.FixedConsultationFee
	return stats
}
