package memory

import "testing"

func TestFormatFillsFreeList(t *testing.T) {
	d := NewDevice(256, true)
	if got, want := d.FreeFrameCount(), 4; got != want {
		t.Fatalf("FreeFrameCount() = %d, want %d", got, want)
	}
	if got, want := d.FrameCount(), 4; got != want {
		t.Fatalf("FrameCount() = %d, want %d", got, want)
	}
}

func TestGetPutFreeFrameConservation(t *testing.T) {
	d := NewDevice(128, true)
	total := d.FrameCount()

	var taken []int
	for {
		fpn, err := d.GetFreeFrame()
		if err != nil {
			break
		}
		taken = append(taken, fpn)
	}
	if len(taken) != total {
		t.Fatalf("took %d frames, want %d", len(taken), total)
	}
	if _, err := d.GetFreeFrame(); err != ErrNoFreeFrame {
		t.Fatalf("GetFreeFrame on empty list: err = %v, want ErrNoFreeFrame", err)
	}

	for _, fpn := range taken {
		d.PutFreeFrame(fpn)
	}
	if got := d.FreeFrameCount(); got != total {
		t.Fatalf("FreeFrameCount() after returning all = %d, want %d", got, total)
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	d := NewDevice(64, true)
	if err := d.Write(10, 0x55); err != nil {
		t.Fatalf("Write: %v", err)
	}
	b, err := d.Read(10)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if b != 0x55 {
		t.Fatalf("Read(10) = %#x, want 0x55", b)
	}
}

func TestOutOfRangeAccessFails(t *testing.T) {
	d := NewDevice(64, true)
	if _, err := d.Read(64); err == nil {
		t.Fatal("Read(64) on a 64-byte device should fail")
	}
	if err := d.Write(-1, 1); err == nil {
		t.Fatal("Write(-1, ...) should fail")
	}
}

// TestSequentialCursorRehomes pins the reference MEMPHY_mv_csr quirk: the
// sequential-mode cursor always re-homes to the requested address before
// stepping, rather than continuing from wherever the previous access left
// it (SPEC_FULL.md §4, original_source supplement).
func TestSequentialCursorRehomes(t *testing.T) {
	d := NewDevice(64, false)

	if _, err := d.Read(40); err != nil {
		t.Fatalf("Read(40): %v", err)
	}
	if d.cursor != 40 {
		t.Fatalf("cursor after Read(40) = %d, want 40", d.cursor)
	}

	// A "backwards" access re-homes the cursor to the new address instead
	// of continuing forward from 40.
	if _, err := d.Read(5); err != nil {
		t.Fatalf("Read(5): %v", err)
	}
	if d.cursor != 5 {
		t.Fatalf("cursor after Read(5) = %d, want 5 (re-homed, not continued)", d.cursor)
	}
}
