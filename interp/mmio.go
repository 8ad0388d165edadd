package interp

import "github.com/holtzmann/mipsgo/image"

// mmioRegs holds the live state of the four memory-mapped I/O registers.
// XmitCtrl.Ready is always 1 in this model, so it needs no stored state.
type mmioRegs struct {
	recvReady bool
	recvData  byte
}

func (it *Interpreter) isMMIO(addr uint32) bool {
	return addr >= image.MMIOBase && addr <= image.MMIOBase+0xF
}

// pollMMIO runs once before each fetch in MMIO mode: if istream has a
// byte available and RECV_CTRL.Ready is clear, it is pulled into
// RECV_DATA and Ready is set.
func (it *Interpreter) pollMMIO() {
	if it.mmio.recvReady {
		return
	}
	var buf [1]byte
	n, _ := it.IStream.Read(buf[:])
	if n > 0 {
		it.mmio.recvData = buf[0]
		it.mmio.recvReady = true
	}
}

func (it *Interpreter) mmioLoadWord(addr uint32) (uint32, error) {
	switch addr {
	case image.RecvCtrl:
		return boolToUint32(it.mmio.recvReady), nil
	case image.RecvData:
		v := uint32(it.mmio.recvData)
		it.mmio.recvReady = false // a load of RECV_DATA clears Ready
		return v, nil
	case image.XmitCtrl:
		return 1, nil
	case image.XmitData:
		return 0, nil
	default:
		return 0, &SegFault{Addr: addr, Op: "read"}
	}
}

func (it *Interpreter) mmioStoreWord(addr uint32, v uint32) error {
	if addr == image.XmitData {
		_, err := it.OStream.Write([]byte{byte(v)})
		return err
	}
	if addr == image.RecvCtrl || addr == image.RecvData || addr == image.XmitCtrl {
		return nil // read-only from the program's perspective
	}
	return &SegFault{Addr: addr, Op: "write"}
}

func (it *Interpreter) mmioStoreByte(addr uint32, v byte) error {
	return it.mmioStoreWord(addr-addr%4, uint32(v))
}

func boolToUint32(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
