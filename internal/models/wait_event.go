package models

// Wait-event kinds: moments where a caller entered a waiting state and an
// out-of-band reviewer needs to act. Delivery (email/SMS) is someone else's
// problem; we only record that the wait began.
const (
	WaitVerificationSubmitted = "verification_submitted"
	WaitBindRequested         = "bind_requested"
	WaitBindDetailsSubmitted  = "bind_details_submitted"
)
