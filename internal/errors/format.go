package errors

import "log/slog"

// LogAttrs describes err for a structured log record. Plain errors only
// carry their message.
func LogAttrs(err error) []slog.Attr {
	if err == nil {
		return nil
	}

	ve, ok := as(err)
	if !ok {
		return []slog.Attr{slog.String("error", err.Error())}
	}

	attrs := []slog.Attr{
		slog.String("error_code", ve.Code),
		slog.String("error", ve.Message),
		slog.String("category", string(ve.Category)),
		slog.String("severity", string(ve.Severity)),
		slog.Bool("retryable", ve.Retryable),
	}
	if ve.Cause != nil {
		attrs = append(attrs, slog.String("cause", ve.Cause.Error()))
	}
	return attrs
}
