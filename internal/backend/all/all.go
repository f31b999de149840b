// Package all registers all built-in startsvc backends.
//
// Import for side effects:
//
//	import _ "github.com/mbrock/startsvc/internal/backend/all"
package all

import (
	_ "github.com/mbrock/startsvc/internal/backend/posix"
	_ "github.com/mbrock/startsvc/internal/backend/systemd"
)
