package config

import "errors"

var ErrSupabaseNotConfigured = errors.New("SUPABASE_URL and SUPABASE_PUBLISHABLE_KEY are required")
