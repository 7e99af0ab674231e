package notify

import "context"

// Channel delivers one payload to one recipient. Implementations must return
// a failure outcome for invalid or blocked recipients instead of panicking;
// duplicate sends after a crash-restart are acceptable.
type Channel interface {
	Send(ctx context.Context, to, message string) error
}

// Channels routes deliveries by the subscriber's chosen channel name.
type Channels map[string]Channel
