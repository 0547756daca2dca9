package domain

import "time"

// DefaultInquiryType is used when the form does not name one.
const DefaultInquiryType = "General Inquiry"

// Inquiry is a validated travel-inquiry form submission. It only lives for the
// duration of one request.
type Inquiry struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Question    string `json:"question,omitempty"`
	InquiryType string `json:"inquiry_type"`
}

// Correlation ties the support notice and the user confirmation of one
// submission together. It is shown in both emails and never stored.
type Correlation struct {
	InquiryID  string
	Timestamp  string
	ReceivedAt time.Time
}
