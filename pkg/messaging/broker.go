package messaging

import "context"

// Broker is the pub/sub surface used for dispatch nudges: the signup and
// schedule-rule triggers publish on the process-queue channel, and the
// dispatcher publishes its own continuation signal there after a full batch.
type Broker interface {
	Publish(ctx context.Context, channel string, message interface{}) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
	Close() error
}

// ChannelProcessQueue carries "run the dispatch worker now" signals.
const ChannelProcessQueue = "queue.process"
