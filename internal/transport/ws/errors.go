package ws

import "errors"

var (
	// ErrFeedShutdown is the close reason when the server tears the feed down.
	ErrFeedShutdown = errors.New("item feed shutdown")
	// ErrSlowConsumer is the close reason for sessions whose send buffer
	// stayed full during a broadcast.
	ErrSlowConsumer = errors.New("item feed consumer too slow")
)
