package logger

import (
	"time"

	"go.uber.org/zap"
)

// Field is a structured log field.
type Field = zap.Field

// Component tags the emitting component (inquiry, notification, email, http).
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// RequestID carries the goa request id.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// InquiryID carries the correlation id shared by both emails of one submission.
func InquiryID(v string) zap.Field {
	return zap.String("inquiry_id", v)
}

// Email carries a recipient or submitter address.
func Email(v string) zap.Field {
	return zap.String("email", v)
}

func Method(v string) zap.Field {
	return zap.String("method", v)
}

func Path(v string) zap.Field {
	return zap.String("path", v)
}

func Status(v int) zap.Field {
	return zap.Int("status", v)
}

func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

func Err(err error) zap.Field {
	return zap.Error(err)
}

func String(key, v string) zap.Field {
	return zap.String(key, v)
}

func Int(key string, v int) zap.Field {
	return zap.Int(key, v)
}

func Bool(key string, v bool) zap.Field {
	return zap.Bool(key, v)
}
