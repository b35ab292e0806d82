// Package models defines the entities of the Equion data model (spec §3).
package models

import "time"

// User is an account holder. Password hashes and the active session token
// are never serialized to clients.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	DisplayName  string     `json:"displayName"`
	Email        string     `json:"email"`
	Image        *string    `json:"image,omitempty"`
	Bio          *string    `json:"bio,omitempty"`
	Token        *string    `json:"-"`
	CreatedAt    time.Time  `json:"-"`
	Online       bool       `json:"online"`
}

// Set is a membership group (the "server"/"guild" analog).
type Set struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	CreatedAt time.Time `json:"-"`

	Subsets      []Subset       `json:"subsets,omitempty"`
	Members      []Member       `json:"members,omitempty"`
	VoiceMembers []VoiceMember  `json:"voiceMembers,omitempty"`
}

// Subset is a channel within a Set.
type Subset struct {
	ID        string    `json:"id"`
	SetID     string    `json:"set"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"-"`
}

// Membership is the (user, set) relation with an admin flag.
type Membership struct {
	ID        string
	UserID    string
	SetID     string
	Admin     bool
	CreatedAt time.Time
}

// Member is a Set's user-facing membership projection, hydrated with
// display fields and a live online flag (spec §4.3 "Read set(s)").
type Member struct {
	UID         string  `json:"uid"`
	Username    string  `json:"username"`
	DisplayName string  `json:"displayName"`
	Image       *string `json:"image,omitempty"`
	Admin       bool    `json:"admin"`
	Online      bool    `json:"online"`
}

// VoiceMember is a Member currently present in a Set's voice channel.
type VoiceMember struct {
	UID    string `json:"uid"`
	PeerID string `json:"peerId"`
}

// Invite grants the right to join a Set via a short code.
type Invite struct {
	ID        string
	SetID     string
	Code      string
	CreatedAt time.Time
	ExpiresAt *time.Time
	Uses      int
}

// Message is a single chat entry in a Subset.
type Message struct {
	ID         string    `json:"id"`
	SubsetID   string    `json:"subset"`
	AuthorID   string    `json:"authorId"`
	Content    string    `json:"content"`
	SendTime   time.Time `json:"sendTime"`
	Attachment *File     `json:"attachment,omitempty"`
}

// File is an uploaded blob (message attachment or profile image).
type File struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Content  []byte `json:"-"`
	OwnerID  string `json:"owner"`
	MimeType string `json:"mimeType,omitempty"`
}
