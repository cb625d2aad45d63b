package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// SchoolID records the tenant identifier under the key "school_id".
func SchoolID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("school_id", id)
}

// Slug records a tenant slug under the key "slug".
func Slug(slug string) slog.Attr {
	if slug == "" {
		return slog.Attr{}
	}
	return slog.String("slug", slug)
}
