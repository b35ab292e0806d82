package fabric

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"equion/internal/models"
	"equion/internal/storage"
	"equion/internal/storage/memory"
)

type capturingSender struct {
	payloads [][]byte
}

func (c *capturingSender) Send(payload []byte) {
	c.payloads = append(c.payloads, payload)
}

func seedMembership(t *testing.T, store storage.Store, uid, setID string) {
	t.Helper()
	err := store.WithTx(context.Background(), func(tx storage.Tx) error {
		if err := tx.CreateUser(models.User{ID: uid, Username: uid, CreatedAt: time.Now()}); err != nil {
			return err
		}
		if err := tx.CreateSet(models.Set{ID: setID, Name: "Alpha", Icon: "α", CreatedAt: time.Now()}); err != nil {
			return err
		}
		return tx.CreateMembership(models.Membership{ID: "mem_1", UserID: uid, SetID: setID, CreatedAt: time.Now()})
	})
	if err != nil {
		t.Fatalf("seedMembership() error = %v", err)
	}
}

func TestSubscribeRejectsNonMember(t *testing.T) {
	store := memory.New()
	f := New(nil)

	err := store.WithTx(context.Background(), func(tx storage.Tx) error {
		return f.Subscribe(tx, "usr_1", "set_1", "addr_1")
	})
	if err == nil {
		t.Fatal("expected Subscribe to reject a non-member")
	}
}

func TestSubscribeTwiceFromSameAddrFails(t *testing.T) {
	store := memory.New()
	f := New(nil)
	seedMembership(t, store, "usr_1", "set_1")

	call := func() error {
		var err error
		_ = store.WithTx(context.Background(), func(tx storage.Tx) error {
			err = f.Subscribe(tx, "usr_1", "set_1", "addr_1")
			return nil
		})
		return err
	}

	if err := call(); err != nil {
		t.Fatalf("first Subscribe() error = %v", err)
	}
	if err := call(); err == nil {
		t.Fatal("expected second Subscribe from the same addr to fail with Already subscribed")
	}
}

func TestUnsubscribeAbsentAddrFails(t *testing.T) {
	store := memory.New()
	f := New(nil)
	seedMembership(t, store, "usr_1", "set_1")

	err := store.WithTx(context.Background(), func(tx storage.Tx) error {
		return f.Unsubscribe(tx, "usr_1", "set_1", "addr_1")
	})
	if err == nil {
		t.Fatal("expected Unsubscribe of an absent addr to fail with Not subscribed")
	}
}

func TestBroadcastDeliversToEverySubscriberAtMostOnce(t *testing.T) {
	store := memory.New()
	f := New(nil)
	seedMembership(t, store, "usr_1", "set_1")

	sender := &capturingSender{}
	f.Register("addr_1", sender)
	err := store.WithTx(context.Background(), func(tx storage.Tx) error {
		return f.Subscribe(tx, "usr_1", "set_1", "addr_1")
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	f.Broadcast("set_1", []byte(`{"event":"v1/typing"}`))
	f.Broadcast("set_1", []byte(`{"event":"v1/typing"}`))

	if len(sender.payloads) != 2 {
		t.Fatalf("expected two deliveries for two broadcasts, got %d", len(sender.payloads))
	}
}

func TestBroadcastSkipsDroppedSenderWithoutAborting(t *testing.T) {
	store := memory.New()
	f := New(nil)
	seedMembership(t, store, "usr_1", "set_1")
	seedMembership(t, store, "usr_2", "set_1")

	sender2 := &capturingSender{}
	f.Register("addr_2", sender2)
	// addr_1 is subscribed but never registered with a sender: simulates a
	// connection that subscribed then dropped without a clean unsubscribe.
	err := store.WithTx(context.Background(), func(tx storage.Tx) error {
		if err := f.Subscribe(tx, "usr_1", "set_1", "addr_1"); err != nil {
			return err
		}
		return f.Subscribe(tx, "usr_2", "set_1", "addr_2")
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	f.Broadcast("set_1", []byte(`{"event":"v1/typing"}`))

	if len(sender2.payloads) != 1 {
		t.Fatalf("expected addr_2 to still receive the broadcast, got %d deliveries", len(sender2.payloads))
	}
}

func TestSubscribeAndUnsubscribeLogAtDebugLevel(t *testing.T) {
	store := memory.New()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	f := New(logger)
	seedMembership(t, store, "usr_1", "set_1")

	err := store.WithTx(context.Background(), func(tx storage.Tx) error {
		return f.Subscribe(tx, "usr_1", "set_1", "addr_1")
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	err = store.WithTx(context.Background(), func(tx storage.Tx) error {
		return f.Unsubscribe(tx, "usr_1", "set_1", "addr_1")
	})
	if err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "subscribed") || !strings.Contains(out, "user=usr_1") || !strings.Contains(out, "set=set_1") {
		t.Fatalf("expected a debug subscribe log line naming the user and set, got %q", out)
	}
	if !strings.Contains(out, "unsubscribed") {
		t.Fatalf("expected a debug unsubscribe log line, got %q", out)
	}
}

func TestDisconnectRemovesAddrFromEverySet(t *testing.T) {
	store := memory.New()
	f := New(nil)
	seedMembership(t, store, "usr_1", "set_1")

	err := store.WithTx(context.Background(), func(tx storage.Tx) error {
		return f.Subscribe(tx, "usr_1", "set_1", "addr_1")
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	f.Disconnect("addr_1")

	err = store.WithTx(context.Background(), func(tx storage.Tx) error {
		return f.Unsubscribe(tx, "usr_1", "set_1", "addr_1")
	})
	if err == nil {
		t.Fatal("expected addr_1 to already be gone after Disconnect")
	}
}
