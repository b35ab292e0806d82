package service

import (
	"context"

	"equion/internal/fabric"
	"equion/internal/models"
	"equion/internal/storage"
	"equion/internal/voice"
)

// Voice is the voice-presence service: the streaming-only commands layered
// over the in-memory voice.Registry (spec §4.1 streaming commands, §4.6).
type Voice struct {
	Store  storage.Store
	Fabric *fabric.Fabric
	Voice  *voice.Registry
}

// NewVoice constructs a Voice service.
func NewVoice(store storage.Store, f *fabric.Fabric, v *voice.Registry) *Voice {
	return &Voice{Store: store, Fabric: f, Voice: v}
}

// userSets resolves the caller and the set ids they belong to, inside one
// transaction (used to fan out online/offline transitions, spec §4.5).
func (v *Voice) userSets(ctx context.Context, token string) (*models.User, []string, error) {
	var user *models.User
	var setIDs []string
	err := v.Store.WithTx(ctx, func(tx storage.Tx) error {
		caller, err := ResolveToken(tx, token)
		if err != nil {
			return err
		}
		ids, err := tx.GetSetIDsForUser(caller.ID)
		if err != nil {
			return err
		}
		user = caller
		setIDs = ids
		return nil
	})
	return user, setIDs, err
}

func (v *Voice) broadcastOnlineStatus(setIDs []string, user models.User, online bool) {
	user.Online = online
	for _, setID := range setIDs {
		v.Fabric.Broadcast(setID, fabric.UserEvent(setID, user, false))
	}
}

// ConnectUserVoice registers uid as online with peerID at addr, then fans
// out the online-status update to the caller's sets (spec §4.6 "connect";
// spec §4.5 "the same update-user event is reused").
func (v *Voice) ConnectUserVoice(ctx context.Context, token, peerID, addr string) (string, error) {
	user, setIDs, err := v.userSets(ctx, token)
	if err != nil {
		return "", err
	}
	v.Voice.Connect(user.ID, peerID, addr)
	v.broadcastOnlineStatus(setIDs, *user, true)
	return user.ID, nil
}

// DisconnectUserVoice clears uid's online presence (spec §4.6 "disconnect"),
// leaving any voice channel first and broadcasting both transitions.
func (v *Voice) DisconnectUserVoice(ctx context.Context, token string) error {
	user, setIDs, err := v.userSets(ctx, token)
	if err != nil {
		return err
	}

	channelID, wasInChannel := v.Voice.Disconnect(user.ID)
	if wasInChannel {
		v.Fabric.Broadcast(channelID, fabric.VoiceEvent(channelID, user.ID, "", true))
	}
	v.broadcastOnlineStatus(setIDs, *user, false)
	return nil
}

// ConnectToVoiceChannel joins uid to channelID (a set id), broadcasting a
// leave event to any previous channel before the join (spec §4.6: "Switching
// channels is a client-orchestrated leave-then-join; the connect-to-channel
// handler performs both steps in one call, broadcasting leave then join
// events").
func (v *Voice) ConnectToVoiceChannel(ctx context.Context, token, channelID string) error {
	user, _, err := v.userSets(ctx, token)
	if err != nil {
		return err
	}

	peerID, prevChannelID, err := v.Voice.ConnectToChannel(user.ID, channelID)
	if err != nil {
		return err
	}

	if prevChannelID != "" && prevChannelID != channelID {
		v.Fabric.Broadcast(prevChannelID, fabric.VoiceEvent(prevChannelID, user.ID, peerID, true))
	}
	v.Fabric.Broadcast(channelID, fabric.VoiceEvent(channelID, user.ID, peerID, false))
	return nil
}

// LeaveVoiceChannel removes uid from its current voice channel and
// broadcasts the departure (spec §4.6 "leave_channel").
func (v *Voice) LeaveVoiceChannel(ctx context.Context, token string) error {
	user, _, err := v.userSets(ctx, token)
	if err != nil {
		return err
	}

	channelID, ok := v.Voice.LeaveChannel(user.ID)
	if !ok {
		return nil
	}
	v.Fabric.Broadcast(channelID, fabric.VoiceEvent(channelID, user.ID, "", true))
	return nil
}

// HandleDisconnect runs the full disconnect sequence for a dropped live
// connection (spec §4.5 "disconnect", §5 "Cancellation and timeouts"):
// unsubscribe addr from every set, leave any voice channel with broadcast,
// then clear the voice presence record with broadcast.
func (v *Voice) HandleDisconnect(ctx context.Context, addr string) {
	v.Fabric.Disconnect(addr)

	uid, ok := v.Voice.UIDForAddr(addr)
	if !ok {
		return
	}

	channelID, wasInChannel := v.Voice.Disconnect(uid)
	if wasInChannel {
		v.Fabric.Broadcast(channelID, fabric.VoiceEvent(channelID, uid, "", true))
	}

	err := v.Store.WithTx(ctx, func(tx storage.Tx) error {
		user, err := tx.GetUserByID(uid)
		if err != nil {
			return err
		}
		setIDs, err := tx.GetSetIDsForUser(uid)
		if err != nil {
			return err
		}
		v.broadcastOnlineStatus(setIDs, *user, false)
		return nil
	})
	_ = err // best-effort: a dropped connection's teardown never fails the caller
}
