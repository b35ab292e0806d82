// Package fabric implements the subscription/broadcast fan-out fabric
// (spec §4.5): a process-wide set-id -> live-connection-address mapping
// guarded by a reader-writer lock, delivering at-most-once-per-recipient
// broadcast events. Grounded on the teacher's internal/ws/hub.go, which
// keeps an equivalent per-room subscriber map under a single sync.RWMutex
// and a best-effort per-connection send.
package fabric

import (
	"log/slog"
	"sync"

	"equion/internal/apperr"
	"equion/internal/storage"
)

// Sender delivers a serialized event frame to one live connection. Senders
// are best-effort: a failed or blocked send must not abort the fan-out
// (spec §4.5 "dropping a recipient's send does not abort the fan-out").
type Sender interface {
	Send(payload []byte)
}

// Fabric is the subscription map plus the registry of live senders.
type Fabric struct {
	mu      sync.RWMutex
	subs    map[string][]string // set id -> ordered subscriber addrs
	senders map[string]Sender   // addr -> live connection sender
	log     *slog.Logger
}

// New constructs an empty Fabric. A nil logger discards subscribe/
// unsubscribe debug logging (spec §4.12's original_source-derived
// supplement: "subscribe/unsubscribe success is logged at Debug level
// naming the user and set").
func New(logger *slog.Logger) *Fabric {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Fabric{
		subs:    make(map[string][]string),
		senders: make(map[string]Sender),
		log:     logger,
	}
}

// Register associates addr with the live connection that can receive
// broadcasts for it. Called once per connection when it comes up.
func (f *Fabric) Register(addr string, sender Sender) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.senders[addr] = sender
}

// Unregister removes addr's sender. Called when a connection closes, before
// Disconnect clears its subscriptions.
func (f *Fabric) Unregister(addr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.senders, addr)
}

// Subscribe validates set membership and appends addr to the set's
// subscriber list if not already present (spec §4.5 "subscribe").
func (f *Fabric) Subscribe(tx storage.Tx, uid, setID, addr string) error {
	if _, err := tx.GetMembership(uid, setID); err != nil {
		return apperr.ErrNotAMember
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.subs[setID]
	for _, a := range list {
		if a == addr {
			return apperr.ErrAlreadySubscribed
		}
	}
	f.subs[setID] = append(list, addr)
	f.log.Debug("subscribed", "user", uid, "set", setID)
	return nil
}

// Unsubscribe validates set membership and removes addr from the set's
// subscriber list (spec §4.5 "unsubscribe").
func (f *Fabric) Unsubscribe(tx storage.Tx, uid, setID, addr string) error {
	if _, err := tx.GetMembership(uid, setID); err != nil {
		return apperr.ErrNotAMember
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	list := f.subs[setID]
	for i, a := range list {
		if a == addr {
			list[i] = list[len(list)-1]
			list = list[:len(list)-1]
			if len(list) == 0 {
				delete(f.subs, setID)
			} else {
				f.subs[setID] = list
			}
			f.log.Debug("unsubscribed", "user", uid, "set", setID)
			return nil
		}
	}
	return apperr.ErrNotSubscribed
}

// Disconnect removes addr from every set's subscriber list (spec §4.5
// "disconnect"). Voice-presence teardown is driven by the caller, which
// owns the voice registry.
func (f *Fabric) Disconnect(addr string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for setID, list := range f.subs {
		for i, a := range list {
			if a == addr {
				list[i] = list[len(list)-1]
				list = list[:len(list)-1]
				if len(list) == 0 {
					delete(f.subs, setID)
				} else {
					f.subs[setID] = list
				}
				break
			}
		}
	}
}

// Broadcast enqueues payload onto every address currently subscribed to
// setID (spec §4.5 "broadcast").
func (f *Fabric) Broadcast(setID string, payload []byte) {
	f.mu.RLock()
	addrs := append([]string(nil), f.subs[setID]...)
	senders := make([]Sender, 0, len(addrs))
	for _, a := range addrs {
		if s, ok := f.senders[a]; ok {
			senders = append(senders, s)
		}
	}
	f.mu.RUnlock()

	for _, s := range senders {
		s.Send(payload)
	}
}

// Send delivers payload directly to addr, bypassing set subscription (used
// for request/response frames on the live channel, not broadcast events).
func (f *Fabric) Send(addr string, payload []byte) {
	f.mu.RLock()
	s, ok := f.senders[addr]
	f.mu.RUnlock()
	if ok {
		s.Send(payload)
	}
}
