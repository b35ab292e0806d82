package fabric

import (
	"encoding/json"

	"equion/internal/models"
)

// event is the envelope every broadcast frame shares: a discriminator plus
// an entity-shaped body (spec §4.5 event table).
type event struct {
	Event string `json:"event"`
	body
}

// body is embedded so each field is optional per event kind and omitted
// when unused, matching the per-row shapes in spec §4.5's table.
type body struct {
	Set     string          `json:"set,omitempty"`
	Subset  any             `json:"subset,omitempty"`
	Message *models.Message `json:"message,omitempty"`
	User    any             `json:"user,omitempty"`
	UID     string          `json:"uid,omitempty"`
	Deleted *bool           `json:"deleted,omitempty"`
}

type subsetBody struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type voiceUserBody struct {
	UID    string `json:"uid"`
	PeerID string `json:"peerId"`
}

func marshalEvent(e event) []byte {
	b, err := json.Marshal(e)
	if err != nil {
		// Event shapes are fixed Go structs; a marshal failure here means a
		// programming error, not a runtime condition to recover from.
		panic(err)
	}
	return b
}

func boolPtr(b bool) *bool { return &b }

// SubsetEvent builds a v1/subset frame (spec §4.5: set, subset {id,name},
// deleted). Emitted by createSubset/updateSubset.
func SubsetEvent(setID string, subset models.Subset, deleted bool) []byte {
	return marshalEvent(event{
		Event: "v1/subset",
		body: body{
			Set:     setID,
			Subset:  subsetBody{ID: subset.ID, Name: subset.Name},
			Deleted: boolPtr(deleted),
		},
	})
}

// MessageEvent builds a v1/message frame (spec §4.5: set, subset, message,
// deleted). Emitted by sendMessage/updateMessage/deleteMessage.
func MessageEvent(setID, subsetID string, msg models.Message, deleted bool) []byte {
	return marshalEvent(event{
		Event: "v1/message",
		body: body{
			Set:     setID,
			Subset:  subsetID,
			Message: &msg,
			Deleted: boolPtr(deleted),
		},
	})
}

// UserEvent builds a v1/user frame (spec §4.5: set, user, deleted). Emitted
// by joinSet/leaveSet, updateUser fan-out, and voice online/offline
// transitions (spec §4.5 "the same update-user event is reused").
func UserEvent(setID string, user models.User, deleted bool) []byte {
	return marshalEvent(event{
		Event: "v1/user",
		body: body{
			Set:     setID,
			User:    user,
			Deleted: boolPtr(deleted),
		},
	})
}

// VoiceEvent builds a v1/voice frame (spec §4.5: set, user {user, peerId},
// deleted). Emitted by connectToVoiceChannel/leaveVoiceChannel/disconnect.
func VoiceEvent(setID, uid, peerID string, deleted bool) []byte {
	return marshalEvent(event{
		Event: "v1/voice",
		body: body{
			Set:     setID,
			User:    voiceUserBody{UID: uid, PeerID: peerID},
			Deleted: boolPtr(deleted),
		},
	})
}

// TypingEvent builds a v1/typing frame (spec §4.5: subset, uid). Emitted by
// the typing notification handler.
func TypingEvent(subsetID, uid string) []byte {
	return marshalEvent(event{
		Event: "v1/typing",
		body: body{
			Subset: subsetID,
			UID:    uid,
		},
	})
}

// PongFrame builds the v1/pong response to a streaming ping.
func PongFrame() []byte {
	return marshalEvent(event{Event: "v1/pong"})
}
