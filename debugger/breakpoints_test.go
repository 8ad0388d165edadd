package debugger

import "testing"

func TestBreakpointManager_Add(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.Add(0x400000, false)
	if bp == nil {
		t.Fatal("Add returned nil")
	}
	if bp.ID != 1 {
		t.Errorf("Expected ID 1, got %d", bp.ID)
	}
	if bp.Address != 0x400000 {
		t.Errorf("Expected address 0x400000, got 0x%08X", bp.Address)
	}
	if !bp.Enabled {
		t.Error("breakpoint should be enabled by default")
	}
	if bp.HitCount != 0 {
		t.Errorf("initial hit count should be 0, got %d", bp.HitCount)
	}
}

func TestBreakpointManager_AddMultiple(t *testing.T) {
	bm := NewBreakpointManager()

	bp1 := bm.Add(0x400000, false)
	bp2 := bm.Add(0x400004, false)
	if bp1.ID == bp2.ID {
		t.Error("breakpoint IDs should be unique")
	}
	if len(bm.All()) != 2 {
		t.Errorf("expected 2 breakpoints, got %d", len(bm.All()))
	}
}

func TestBreakpointManager_AddDuplicateUpdatesExisting(t *testing.T) {
	bm := NewBreakpointManager()

	bp1 := bm.Add(0x400000, false)
	bp2 := bm.Add(0x400000, true)
	if bp1.ID != bp2.ID {
		t.Error("duplicate address should update the existing breakpoint")
	}
	if !bp2.Temporary {
		t.Error("expected Temporary to be updated to true")
	}
}

func TestBreakpointManager_Delete(t *testing.T) {
	bm := NewBreakpointManager()
	bp := bm.Add(0x400000, false)

	if err := bm.Delete(bp.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if bm.At(0x400000) != nil {
		t.Error("breakpoint should be gone after Delete")
	}
	if err := bm.Delete(bp.ID); err == nil {
		t.Error("expected error deleting an already-deleted breakpoint")
	}
}

func TestBreakpointManager_SetEnabled(t *testing.T) {
	bm := NewBreakpointManager()
	bp := bm.Add(0x400000, false)

	if err := bm.SetEnabled(bp.ID, false); err != nil {
		t.Fatalf("SetEnabled failed: %v", err)
	}
	if bm.At(0x400000).Enabled {
		t.Error("expected breakpoint to be disabled")
	}
}

func TestBreakpointManager_HitIgnoresDisabled(t *testing.T) {
	bm := NewBreakpointManager()
	bp := bm.Add(0x400000, false)
	if err := bm.SetEnabled(bp.ID, false); err != nil {
		t.Fatalf("SetEnabled failed: %v", err)
	}

	if hit := bm.Hit(0x400000); hit != nil {
		t.Error("disabled breakpoint should not register a hit")
	}
}

func TestBreakpointManager_HitRemovesTemporary(t *testing.T) {
	bm := NewBreakpointManager()
	bm.Add(0x400000, true)

	hit := bm.Hit(0x400000)
	if hit == nil {
		t.Fatal("expected a hit")
	}
	if hit.HitCount != 1 {
		t.Errorf("expected hit count 1, got %d", hit.HitCount)
	}
	if bm.At(0x400000) != nil {
		t.Error("temporary breakpoint should be removed after its hit")
	}
}
