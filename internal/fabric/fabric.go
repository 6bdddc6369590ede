// Package fabric implements the in-process stand-in for the abstract
// multi-producer/multi-consumer broadcast transport spec.md §1 treats
// as an external collaborator. There is no real networking here: every
// node sees every broadcast, delivered FIFO per (sender, receiver) pair
// with no ordering guarantee across senders (spec.md §5).
package fabric

import (
	"go.uber.org/zap"

	"github.com/batcoinnet/batcoin/internal/protocol"
)

// inboxSize bounds each node's inbound queue. A full inbox is not an
// error (spec.md §5, "Failure model"): the broadcast is dropped for
// that one recipient and logged, not retried.
const inboxSize = 256

// Fabric holds one buffered inbox channel per participating node and
// broadcasts by enqueuing a copy onto every inbox but the sender's own.
type Fabric struct {
	logger  *zap.Logger
	inboxes map[int]chan protocol.Message
}

// New creates a Fabric with one inbox per id in nodeIDs.
func New(nodeIDs []int, logger *zap.Logger) *Fabric {
	f := &Fabric{
		logger:  logger,
		inboxes: make(map[int]chan protocol.Message, len(nodeIDs)),
	}
	for _, id := range nodeIDs {
		f.inboxes[id] = make(chan protocol.Message, inboxSize)
	}
	return f
}

// Inbox returns the receive-only inbox channel for id.
func (f *Fabric) Inbox(id int) <-chan protocol.Message {
	return f.inboxes[id]
}

// Broadcast enqueues msg onto every node's inbox except sender's own.
// A full inbox is skipped and logged rather than blocking the
// broadcaster — queue-full is explicitly non-fatal (spec.md §5).
func (f *Fabric) Broadcast(sender int, msg protocol.Message) {
	for id, inbox := range f.inboxes {
		if id == sender {
			continue
		}
		select {
		case inbox <- msg:
		default:
			f.logger.Warn("dropped broadcast on full inbox",
				zap.Int("sender", sender), zap.Int("receiver", id))
		}
	}
}

// Drain empties id's inbox without processing it, used when a node
// exits its event loop (spec.md §4.6 step 3).
func (f *Fabric) Drain(id int) {
	inbox := f.inboxes[id]
	for {
		select {
		case <-inbox:
		default:
			return
		}
	}
}
