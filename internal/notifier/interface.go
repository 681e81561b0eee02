package notifier

import "context"

type NotifierInterface interface {
	// Ping verifies the bot credentials are usable.
	Ping(ctx context.Context) error
	// EnqueueMessage queues a message for ordered delivery to the alert
	// chat. It never blocks the caller.
	EnqueueMessage(text string)
	// ListenCommands consumes bot commands from the alert chat and replies
	// with whatever handle returns. Blocks until ctx is done.
	ListenCommands(ctx context.Context, handle func(command string) string)
	// Stop drains the queue and shuts the sender down.
	Stop()
}
