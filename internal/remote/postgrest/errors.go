package postgrest

import "errors"

var ErrNotConfigured = errors.New("supabase url and publishable key are required")
