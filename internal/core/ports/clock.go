package ports

import "time"

// Clock supplies the current time to commands and jobs.
type Clock interface {
	Now() time.Time
}
