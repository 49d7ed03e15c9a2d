package registry

import (
	"strings"

	"github.com/docmanage/opd-api/internal/model"
)

// Visible returns the subset of patients the actor may see. Admins see
// the entire set. Doctors see a patient when its assigned-doctor field,
// trimmed and case-folded, equals either the doctor's registration ID or
// their display name; the sheet is filled in both ways. No actor, or a
// role outside the two defined ones, sees nothing.
func Visible(patients []model.Patient, actor *model.AuthUser) []model.Patient {
	if actor == nil {
		return []model.Patient{}
	}

	switch actor.Role {
	case model.RoleAdmin:
		return patients
	case model.RoleDoctor:
		doctorID := strings.ToLower(actor.ID)
		doctorName := strings.ToLower(actor.Name)

		visible := make([]model.Patient, 0, len(patients))
		for _, p := range patients {
			assigned := strings.ToLower(strings.TrimSpace(p.DoctorName))
			if assigned == doctorID || assigned == doctorName {
				visible = append(visible, p)
			}
		}
		return visible
	default:
		return []model.Patient{}
	}
}
