package interp

import (
	"testing"

	"github.com/holtzmann/mipsgo/image"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These exercise the segment boundary behavior at the edges of the
// data/heap/stack region and the MMIO block, mirroring the stack-bounds
// style of validation the VM layer this package is modelled on uses.

func newTestMemory() *Memory {
	return NewMemory(image.DataBase, image.StackTop, image.MMIOBase, image.MMIOBase+0xF)
}

func TestMemory_WriteReadWithinDataRegion(t *testing.T) {
	m := newTestMemory()

	tests := []struct {
		name string
		addr uint32
	}{
		{"data base (minimum)", image.DataBase},
		{"mid region", image.DataBase + (image.StackTop-image.DataBase)/2},
		{"stack top (maximum)", image.StackTop},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, m.WriteByte(tt.addr, 0xAB))
			v, err := m.ReadByte(tt.addr)
			assert.NoError(t, err, "valid address should not fault")
			assert.Equal(t, byte(0xAB), v)
		})
	}
}

func TestMemory_SegFaultBelowDataBase(t *testing.T) {
	m := newTestMemory()
	_, err := m.ReadByte(image.DataBase - 1)
	require.Error(t, err)
	var segf *SegFault
	assert.ErrorAs(t, err, &segf)
}

func TestMemory_SegFaultAboveStackTop(t *testing.T) {
	m := newTestMemory()
	err := m.WriteByte(image.StackTop+1, 1)
	require.Error(t, err)
	var segf *SegFault
	assert.ErrorAs(t, err, &segf)
}

func TestMemory_MMIORegionIsLegalButDisjoint(t *testing.T) {
	m := newTestMemory()
	require.NoError(t, m.WriteByte(image.MMIOBase, 0x01))
	_, err := m.ReadByte(image.MMIOBase - 1)
	assert.Error(t, err, "one byte below the MMIO block stays a fault")
}

func TestMemory_UnalignedWordAccessFaults(t *testing.T) {
	m := newTestMemory()
	_, err := m.ReadWord(image.DataBase + 1)
	require.Error(t, err)
	var ae *AlignmentError
	assert.ErrorAs(t, err, &ae)
}

func TestMemory_UninitializedReadIsZero(t *testing.T) {
	m := newTestMemory()
	v, err := m.ReadByte(image.DataBase + 4096*3)
	require.NoError(t, err)
	assert.Equal(t, byte(0), v, "never-written bytes read back as zero")
}

func TestMemory_SignedByteRoundTrip(t *testing.T) {
	m := newTestMemory()
	require.NoError(t, m.WriteByte(image.DataBase, 0xFF))
	v, err := m.ReadByte(image.DataBase)
	require.NoError(t, err)
	assert.Equal(t, byte(0xFF), v)
	assert.Equal(t, int8(-1), int8(v))
}
