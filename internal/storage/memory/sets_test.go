package memory

import (
	"context"
	"testing"
	"time"

	"equion/internal/models"
	"equion/internal/storage"
)

func TestCreateSetThenGetSetRoundTrip(t *testing.T) {
	s := New()
	err := s.WithTx(context.Background(), func(tx storage.Tx) error {
		return tx.CreateSet(models.Set{ID: "set_1", Name: "Alpha", Icon: "α"})
	})
	if err != nil {
		t.Fatalf("CreateSet() error = %v", err)
	}

	err = s.WithTx(context.Background(), func(tx storage.Tx) error {
		got, err := tx.GetSet("set_1")
		if err != nil {
			return err
		}
		if got.Name != "Alpha" || got.Icon != "α" {
			t.Fatalf("GetSet() = %+v", got)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("GetSet() error = %v", err)
	}
}

func TestGetSetsForUserOrdersByMembershipCreatedAt(t *testing.T) {
	s := New()
	base := time.Now()
	err := s.WithTx(context.Background(), func(tx storage.Tx) error {
		if err := tx.CreateSet(models.Set{ID: "set_1", Name: "First"}); err != nil {
			return err
		}
		if err := tx.CreateSet(models.Set{ID: "set_2", Name: "Second"}); err != nil {
			return err
		}
		if err := tx.CreateMembership(models.Membership{ID: "mem_2", UserID: "usr_1", SetID: "set_2", CreatedAt: base}); err != nil {
			return err
		}
		return tx.CreateMembership(models.Membership{ID: "mem_1", UserID: "usr_1", SetID: "set_1", CreatedAt: base.Add(-time.Minute)})
	})
	if err != nil {
		t.Fatalf("seeding error = %v", err)
	}

	var out []models.Set
	err = s.WithTx(context.Background(), func(tx storage.Tx) error {
		sets, err := tx.GetSetsForUser("usr_1")
		out = sets
		return err
	})
	if err != nil {
		t.Fatalf("GetSetsForUser() error = %v", err)
	}
	if len(out) != 2 || out[0].ID != "set_1" || out[1].ID != "set_2" {
		t.Fatalf("expected set_1 then set_2 by membership time, got %+v", out)
	}
}

func TestDeleteSetThenGetSetReturnsNotFound(t *testing.T) {
	s := New()
	err := s.WithTx(context.Background(), func(tx storage.Tx) error {
		return tx.CreateSet(models.Set{ID: "set_1", Name: "Alpha"})
	})
	if err != nil {
		t.Fatalf("CreateSet() error = %v", err)
	}

	err = s.WithTx(context.Background(), func(tx storage.Tx) error {
		return tx.DeleteSet("set_1")
	})
	if err != nil {
		t.Fatalf("DeleteSet() error = %v", err)
	}

	err = s.WithTx(context.Background(), func(tx storage.Tx) error {
		_, err := tx.GetSet("set_1")
		return err
	})
	if err != storage.ErrNotFound {
		t.Fatalf("GetSet() after delete error = %v, want storage.ErrNotFound", err)
	}
}

func TestCreateMembershipRejectsDuplicateUserSetPair(t *testing.T) {
	s := New()
	err := s.WithTx(context.Background(), func(tx storage.Tx) error {
		return tx.CreateMembership(models.Membership{ID: "mem_1", UserID: "usr_1", SetID: "set_1"})
	})
	if err != nil {
		t.Fatalf("first CreateMembership() error = %v", err)
	}

	err = s.WithTx(context.Background(), func(tx storage.Tx) error {
		return tx.CreateMembership(models.Membership{ID: "mem_2", UserID: "usr_1", SetID: "set_1"})
	})
	if err != storage.ErrDuplicate {
		t.Fatalf("second CreateMembership() error = %v, want storage.ErrDuplicate", err)
	}
}

func TestGetMembersForSetHydratesUserFieldsAndSortsByDisplayName(t *testing.T) {
	s := New()
	err := s.WithTx(context.Background(), func(tx storage.Tx) error {
		if err := tx.CreateUser(models.User{ID: "usr_1", Username: "bob", DisplayName: "Bob"}); err != nil {
			return err
		}
		if err := tx.CreateUser(models.User{ID: "usr_2", Username: "alice", DisplayName: "Alice"}); err != nil {
			return err
		}
		if err := tx.CreateMembership(models.Membership{ID: "mem_1", UserID: "usr_1", SetID: "set_1", Admin: true}); err != nil {
			return err
		}
		return tx.CreateMembership(models.Membership{ID: "mem_2", UserID: "usr_2", SetID: "set_1"})
	})
	if err != nil {
		t.Fatalf("seeding error = %v", err)
	}

	var out []models.Member
	err = s.WithTx(context.Background(), func(tx storage.Tx) error {
		members, err := tx.GetMembersForSet("set_1")
		out = members
		return err
	})
	if err != nil {
		t.Fatalf("GetMembersForSet() error = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 members, got %d", len(out))
	}
	if out[0].DisplayName != "Alice" || out[1].DisplayName != "Bob" {
		t.Fatalf("expected Alice before Bob, got %+v", out)
	}
	if !out[1].Admin {
		t.Fatalf("expected Bob to be admin")
	}
}

func TestDeleteMembershipThenGetMembershipReturnsNotFound(t *testing.T) {
	s := New()
	err := s.WithTx(context.Background(), func(tx storage.Tx) error {
		return tx.CreateMembership(models.Membership{ID: "mem_1", UserID: "usr_1", SetID: "set_1"})
	})
	if err != nil {
		t.Fatalf("CreateMembership() error = %v", err)
	}

	err = s.WithTx(context.Background(), func(tx storage.Tx) error {
		return tx.DeleteMembership("usr_1", "set_1")
	})
	if err != nil {
		t.Fatalf("DeleteMembership() error = %v", err)
	}

	err = s.WithTx(context.Background(), func(tx storage.Tx) error {
		_, err := tx.GetMembership("usr_1", "set_1")
		return err
	})
	if err != storage.ErrNotFound {
		t.Fatalf("GetMembership() after delete error = %v, want storage.ErrNotFound", err)
	}
}

func TestGetSubsetsForSetOrdersByCreatedAt(t *testing.T) {
	s := New()
	base := time.Now()
	err := s.WithTx(context.Background(), func(tx storage.Tx) error {
		if err := tx.CreateSubset(models.Subset{ID: "sbs_2", SetID: "set_1", Name: "Second", CreatedAt: base.Add(time.Minute)}); err != nil {
			return err
		}
		return tx.CreateSubset(models.Subset{ID: "sbs_1", SetID: "set_1", Name: "First", CreatedAt: base})
	})
	if err != nil {
		t.Fatalf("seeding error = %v", err)
	}

	var out []models.Subset
	err = s.WithTx(context.Background(), func(tx storage.Tx) error {
		subsets, err := tx.GetSubsetsForSet("set_1")
		out = subsets
		return err
	})
	if err != nil {
		t.Fatalf("GetSubsetsForSet() error = %v", err)
	}
	if len(out) != 2 || out[0].ID != "sbs_1" || out[1].ID != "sbs_2" {
		t.Fatalf("expected sbs_1 then sbs_2, got %+v", out)
	}
}
