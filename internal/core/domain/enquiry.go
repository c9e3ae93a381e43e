package domain

// EnquiryStatus tracks a public lead through follow-up
type EnquiryStatus string

const (
	EnquiryPending EnquiryStatus = "pending"
	EnquiryDone    EnquiryStatus = "done"
)

// Valid reports whether s is a known enquiry status
func (s EnquiryStatus) Valid() bool {
	return s == EnquiryPending || s == EnquiryDone
}
