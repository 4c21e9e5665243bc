package vt

// EventType discriminates decoder events.
type EventType uint8

const (
	// EventPrint carries a printable rune for the current cursor cell.
	EventPrint EventType = iota
	// EventExecute carries a C0 control byte.
	EventExecute
	// EventCSI is a complete control-sequence-introducer command.
	EventCSI
	// EventESC is a non-CSI escape dispatch (ESC plus a final byte).
	EventESC
	// EventOSC is a complete operating-system-command string.
	EventOSC
	// EventHook opens a device-control string.
	EventHook
	// EventPut carries one byte of a device-control string body.
	EventPut
	// EventUnhook closes a device-control string.
	EventUnhook
)

// Params is a CSI parameter list: semicolon-delimited groups of
// colon-delimited subparameters. An empty list, or a list whose only group
// is the single value 0, is the grammar's encoding of "use the default".
type Params [][]uint16

// Param returns the first subparameter of group i, or def when the group is
// absent or empty.
func (p Params) Param(i int, def int) int {
	if i < 0 || i >= len(p) || len(p[i]) == 0 {
		return def
	}
	return int(p[i][0])
}

// Event is one decoded unit of the escape-sequence protocol. The decoder is
// grammar-only; all terminal semantics live in the Screen's dispatch.
type Event struct {
	Type EventType

	Rune rune // EventPrint
	Byte byte // EventExecute, EventPut

	// CSI / ESC / Hook payload.
	Params        Params
	Intermediates []byte
	Final         byte

	// OSC payload.
	Osc            [][]byte
	BellTerminated bool
}
