package util

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"lavishtravels/internal/domain"
)

const (
	// InquiryIDLength is the number of characters kept from the random UUID.
	InquiryIDLength = 8
	// TimestampLayout renders receipt time in the emails, always in UTC.
	TimestampLayout = "January 02, 2006 at 03:04 PM UTC"
)

// NewInquiryID returns a short uppercase token taken from a random UUID.
func NewInquiryID() string {
	return strings.ToUpper(uuid.NewString()[:InquiryIDLength])
}

// FormatTimestamp renders t in UTC using TimestampLayout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// NewCorrelation generates the correlation metadata for a request received at now.
func NewCorrelation(now time.Time) domain.Correlation {
	return domain.Correlation{
		InquiryID:  NewInquiryID(),
		Timestamp:  FormatTimestamp(now),
		ReceivedAt: now,
	}
}
