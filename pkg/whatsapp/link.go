// Package whatsapp builds wa.me deep links for patient follow-ups.
package whatsapp

import (
	"fmt"
	"net/url"
)

const baseURL = "https://wa.me"

// FollowUpLink returns the templated link the front desk opens to send a
// follow-up: the greeting plus the record's internal message, URL-escaped.
func FollowUpLink(phone, patientName, message string) string {
	text := fmt.Sprintf("Hello %s, %s", patientName, message)
	return fmt.Sprintf("%s/%s?text=%s", baseURL, phone, url.QueryEscape(text))
}
