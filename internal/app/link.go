package app

import (
	"fmt"
	"net/url"
)

const fromName = "Developer Portal"

// invitationLink builds the acceptance URL for an invitation.
func invitationLink(apiEndpoint, vendor, email, code string) string {
	return fmt.Sprintf("%s/vendors/%s/invitations/%s/%s",
		apiEndpoint,
		url.PathEscape(vendor),
		url.PathEscape(email),
		url.PathEscape(code),
	)
}
