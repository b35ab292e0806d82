package service

import (
	"equion/internal/fabric"
	"equion/internal/storage"
	"equion/internal/storage/memory"
	"equion/internal/voice"
)

// testApp bundles a fresh in-memory store and the full service set for one
// test case, mirroring the teacher's openTestDB-per-test pattern.
type testApp struct {
	store    storage.Store
	fabric   *fabric.Fabric
	voiceReg *voice.Registry
	users    *Users
	sets     *Sets
	messages *Messages
	files    *Files
	voice    *Voice
}

func newTestApp() *testApp {
	store := memory.New()
	f := fabric.New(nil)
	v := voice.New()
	users := NewUsers(store, f, v, 16)
	return &testApp{
		store:    store,
		fabric:   f,
		voiceReg: v,
		users:    users,
		sets:     NewSets(store, f, v, users),
		messages: NewMessages(store, f),
		files:    NewFiles(store, f, v),
		voice:    NewVoice(store, f, v),
	}
}

// recordingSender captures every payload sent to it, standing in for a live
// connection in fabric tests.
type recordingSender struct {
	received [][]byte
}

func (r *recordingSender) Send(payload []byte) {
	r.received = append(r.received, payload)
}
