// Package voice implements the voice-chat presence registry (spec §4.6):
// who is online, and which voice channel (a Set id) they currently occupy.
// Grounded on the teacher's internal/ws/hub.go voice-lifecycle maps, which
// use the same upsert/remove-by-uid, swap-remove-from-channel shape guarded
// by a single sync.RWMutex.
package voice

import (
	"sync"

	"equion/internal/apperr"
	"equion/internal/models"
)

// record is one user's online presence.
type record struct {
	uid       string
	peerID    string
	addr      string
	channelID *string
}

// Registry holds the two in-memory, lock-guarded tables spec §4.6 names.
type Registry struct {
	mu        sync.RWMutex
	online    map[string]*record   // uid -> record
	channels  map[string][]string  // channel (set) id -> ordered uids
	addrToUID map[string]string    // live-connection addr -> uid
}

// New constructs an empty Registry.
func New() *Registry {
	return &Registry{
		online:    make(map[string]*record),
		channels:  make(map[string][]string),
		addrToUID: make(map[string]string),
	}
}

// Connect upserts uid's online record (spec §4.6 "connect").
func (r *Registry) Connect(uid, peerID, addr string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.online[uid]
	if !ok {
		rec = &record{uid: uid}
		r.online[uid] = rec
	}
	rec.peerID = peerID
	rec.addr = addr
	r.addrToUID[addr] = uid
}

// Disconnect removes uid's online record and reports the channel it was in,
// if any, so the caller can drive the leave-then-broadcast sequence (spec
// §4.5 "disconnect").
func (r *Registry) Disconnect(uid string) (channelID string, wasInChannel bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.online[uid]
	if !ok {
		return "", false
	}
	delete(r.addrToUID, rec.addr)
	delete(r.online, uid)

	if rec.channelID == nil {
		return "", false
	}
	channelID = *rec.channelID
	r.removeFromChannelLocked(channelID, uid)
	return channelID, true
}

// UIDForAddr resolves a live-connection address to its online uid, if any.
func (r *Registry) UIDForAddr(addr string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	uid, ok := r.addrToUID[addr]
	return uid, ok
}

// IsOnline reports whether uid currently has a presence record.
func (r *Registry) IsOnline(uid string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.online[uid]
	return ok
}

// ConnectToChannel joins uid to channelID (spec §4.6 "connect_to_channel").
// The user must already be online; re-joining the same channel fails with
// User already in voice channel. If uid was already in a different channel,
// prevChannelID reports it (spec §4.6: switching channels is a
// client-orchestrated leave-then-join performed in one call) so the caller
// can broadcast the leave event for that channel too.
func (r *Registry) ConnectToChannel(uid, channelID string) (peerID, prevChannelID string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.online[uid]
	if !ok {
		return "", "", apperr.ErrInvalidToken
	}
	if rec.channelID != nil && *rec.channelID == channelID {
		return "", "", apperr.ErrAlreadyInVoice
	}
	if rec.channelID != nil {
		prevChannelID = *rec.channelID
		r.removeFromChannelLocked(prevChannelID, uid)
	}

	cid := channelID
	rec.channelID = &cid
	r.channels[channelID] = append(r.channels[channelID], uid)
	return rec.peerID, prevChannelID, nil
}

// LeaveChannel clears uid's channel membership (spec §4.6 "leave_channel").
func (r *Registry) LeaveChannel(uid string) (channelID string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, present := r.online[uid]
	if !present || rec.channelID == nil {
		return "", false
	}
	channelID = *rec.channelID
	rec.channelID = nil
	r.removeFromChannelLocked(channelID, uid)
	return channelID, true
}

// removeFromChannelLocked swap-removes uid from channelID's list. Caller
// must hold r.mu.
func (r *Registry) removeFromChannelLocked(channelID, uid string) {
	list := r.channels[channelID]
	for i, u := range list {
		if u == uid {
			list[i] = list[len(list)-1]
			list = list[:len(list)-1]
			break
		}
	}
	if len(list) == 0 {
		delete(r.channels, channelID)
	} else {
		r.channels[channelID] = list
	}
}

// ChannelMembers returns the voice members of channelID (spec §4.3 "Read
// set(s)" — "voice members … tagged with their voice peer id").
func (r *Registry) ChannelMembers(channelID string) []models.VoiceMember {
	r.mu.RLock()
	defer r.mu.RUnlock()

	uids := r.channels[channelID]
	out := make([]models.VoiceMember, 0, len(uids))
	for _, uid := range uids {
		rec, ok := r.online[uid]
		if !ok {
			continue
		}
		out = append(out, models.VoiceMember{UID: uid, PeerID: rec.peerID})
	}
	return out
}

// OnlineCount reports the number of users currently online (spec §6
// "Status endpoint": "a short HTML body containing the live online-user
// count").
func (r *Registry) OnlineCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.online)
}

// PeerID returns uid's current peer id, if online.
func (r *Registry) PeerID(uid string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.online[uid]
	if !ok {
		return "", false
	}
	return rec.peerID, true
}
