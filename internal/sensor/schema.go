package sensor

import _ "embed"

// Schema creates the reading store; every statement is idempotent so it is
// applied unconditionally at startup.
//
//go:embed schema.sql
var Schema string
