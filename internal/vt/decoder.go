package vt

import "unicode/utf8"

// Decoder grammar limits. Oversized input is clamped, never rejected: the
// byte stream comes from an arbitrary child process and must not be able to
// wedge the decoder.
const (
	maxParams    = 32
	maxParam     = 65535
	maxInterm    = 2
	maxOscBytes  = 4096
	maxOscParams = 16
)

type decoderState uint8

const (
	stateGround decoderState = iota
	stateEscape
	stateEscapeIntermediate
	stateCSIEntry
	stateCSIParam
	stateCSIIntermediate
	stateCSIIgnore
	stateOSCString
	stateDCSEntry
	stateDCSParam
	stateDCSIntermediate
	stateDCSPassthrough
	stateDCSIgnore
	stateSOSPMAPCString
)

// Decoder is a streaming tokenizer for the terminal control-sequence
// grammar: printable text, C0 controls, CSI commands with parameter lists,
// and OSC/DCS strings. It emits typed Events and holds no screen semantics.
//
// All state survives between Advance calls, so a read that ends mid-sequence
// (or mid-rune) resumes cleanly on the next drain.
type Decoder struct {
	state decoderState

	// CSI / DCS accumulators.
	params    Params
	group     []uint16
	value     uint16
	hasValue  bool
	collected bool // any digit or separator seen for the current sequence
	interm    []byte

	// OSC accumulator.
	oscBuf   []byte
	oscLen   int
	oscParts [][]byte

	// Pending multi-byte UTF-8 character.
	utf8Buf  [utf8.UTFMax]byte
	utf8Len  int
	utf8Need int

	events []Event
}

// NewDecoder returns a decoder in the ground state.
func NewDecoder() *Decoder {
	return &Decoder{
		params: make(Params, 0, maxParams),
		group:  make([]uint16, 0, 4),
		interm: make([]byte, 0, maxInterm),
		events: make([]Event, 0, 64),
	}
}

// Advance consumes data and returns the events it completes, in order. The
// returned slice is reused by the next call; consume it before advancing
// again.
func (d *Decoder) Advance(data []byte) []Event {
	d.events = d.events[:0]
	for _, b := range data {
		d.step(b)
	}
	return d.events
}

func (d *Decoder) emit(ev Event) {
	d.events = append(d.events, ev)
}

func (d *Decoder) step(b byte) {
	// A pending multi-byte rune is only ever collected in ground state.
	if d.utf8Need > 0 {
		d.stepUTF8(b)
		return
	}

	switch d.state {
	case stateGround:
		d.stepGround(b)
	case stateEscape:
		d.stepEscape(b)
	case stateEscapeIntermediate:
		d.stepEscapeIntermediate(b)
	case stateCSIEntry, stateCSIParam:
		d.stepCSI(b)
	case stateCSIIntermediate:
		d.stepCSIIntermediate(b)
	case stateCSIIgnore:
		d.stepCSIIgnore(b)
	case stateOSCString:
		d.stepOSC(b)
	case stateDCSEntry, stateDCSParam:
		d.stepDCS(b)
	case stateDCSIntermediate:
		d.stepDCSIntermediate(b)
	case stateDCSPassthrough:
		d.stepDCSPassthrough(b)
	case stateDCSIgnore:
		d.stepDCSIgnore(b)
	case stateSOSPMAPCString:
		d.stepSOSPMAPC(b)
	}
}

func (d *Decoder) stepUTF8(b byte) {
	if b&0xC0 != 0x80 {
		// Broken continuation: drop the partial rune and reprocess the byte.
		d.utf8Len, d.utf8Need = 0, 0
		d.step(b)
		return
	}
	d.utf8Buf[d.utf8Len] = b
	d.utf8Len++
	d.utf8Need--
	if d.utf8Need > 0 {
		return
	}
	r, _ := utf8.DecodeRune(d.utf8Buf[:d.utf8Len])
	d.utf8Len = 0
	d.emit(Event{Type: EventPrint, Rune: r})
}

func (d *Decoder) stepGround(b byte) {
	switch {
	case b == 0x1B:
		d.state = stateEscape
	case b < 0x20:
		d.emit(Event{Type: EventExecute, Byte: b})
	case b == 0x7F:
		// DEL is ignored in ground state.
	case b < 0x80:
		d.emit(Event{Type: EventPrint, Rune: rune(b)})
	default:
		d.startUTF8(b)
	}
}

func (d *Decoder) startUTF8(b byte) {
	switch {
	case b&0xE0 == 0xC0:
		d.utf8Need = 1
	case b&0xF0 == 0xE0:
		d.utf8Need = 2
	case b&0xF8 == 0xF0:
		d.utf8Need = 3
	default:
		// Stray continuation or invalid lead byte; drop it.
		return
	}
	d.utf8Buf[0] = b
	d.utf8Len = 1
}

func (d *Decoder) stepEscape(b byte) {
	switch {
	case b == '[':
		d.clearSequence()
		d.state = stateCSIEntry
	case b == ']':
		d.clearOSC()
		d.state = stateOSCString
	case b == 'P':
		d.clearSequence()
		d.state = stateDCSEntry
	case b == 'X' || b == '^' || b == '_':
		d.state = stateSOSPMAPCString
	case b >= 0x20 && b <= 0x2F:
		d.clearSequence()
		d.collectIntermediate(b)
		d.state = stateEscapeIntermediate
	case b >= 0x30 && b <= 0x7E:
		d.emit(Event{Type: EventESC, Final: b})
		d.state = stateGround
	case b == 0x18 || b == 0x1A: // CAN, SUB
		d.state = stateGround
	case b < 0x20:
		d.emit(Event{Type: EventExecute, Byte: b})
	default:
		d.state = stateGround
	}
}

func (d *Decoder) stepEscapeIntermediate(b byte) {
	switch {
	case b >= 0x20 && b <= 0x2F:
		d.collectIntermediate(b)
	case b >= 0x30 && b <= 0x7E:
		d.emit(Event{Type: EventESC, Intermediates: d.intermCopy(), Final: b})
		d.state = stateGround
	case b == 0x1B:
		d.state = stateEscape
	case b == 0x18 || b == 0x1A:
		d.state = stateGround
	case b < 0x20:
		d.emit(Event{Type: EventExecute, Byte: b})
	default:
		d.state = stateGround
	}
}

func (d *Decoder) stepCSI(b byte) {
	switch {
	case b >= '0' && b <= '9':
		v := uint32(d.value)*10 + uint32(b-'0')
		if v > maxParam {
			v = maxParam
		}
		d.value = uint16(v)
		d.hasValue = true
		d.collected = true
		d.state = stateCSIParam
	case b == ':':
		d.pushSubparam()
		d.state = stateCSIParam
	case b == ';':
		d.pushGroup()
		d.state = stateCSIParam
	case b >= 0x3C && b <= 0x3F: // private markers < = > ?
		if d.state == stateCSIEntry {
			d.collectIntermediate(b)
		} else {
			d.state = stateCSIIgnore
		}
	case b >= 0x20 && b <= 0x2F:
		d.collectIntermediate(b)
		d.state = stateCSIIntermediate
	case b >= 0x40 && b <= 0x7E:
		d.dispatchCSI(b)
	case b == 0x1B:
		d.state = stateEscape
	case b == 0x18 || b == 0x1A:
		d.state = stateGround
	case b < 0x20:
		// C0 controls execute from inside a sequence without aborting it.
		d.emit(Event{Type: EventExecute, Byte: b})
	default:
		d.state = stateCSIIgnore
	}
}

func (d *Decoder) stepCSIIntermediate(b byte) {
	switch {
	case b >= 0x20 && b <= 0x2F:
		d.collectIntermediate(b)
	case b >= 0x40 && b <= 0x7E:
		d.dispatchCSI(b)
	case b == 0x1B:
		d.state = stateEscape
	case b == 0x18 || b == 0x1A:
		d.state = stateGround
	case b < 0x20:
		d.emit(Event{Type: EventExecute, Byte: b})
	default:
		d.state = stateCSIIgnore
	}
}

func (d *Decoder) stepCSIIgnore(b byte) {
	switch {
	case b >= 0x40 && b <= 0x7E:
		d.state = stateGround
	case b == 0x1B:
		d.state = stateEscape
	case b == 0x18 || b == 0x1A:
		d.state = stateGround
	case b < 0x20:
		d.emit(Event{Type: EventExecute, Byte: b})
	}
}

func (d *Decoder) stepOSC(b byte) {
	switch {
	case b == 0x07: // BEL terminator
		d.emit(Event{Type: EventOSC, Osc: d.finishOSC(), BellTerminated: true})
		d.state = stateGround
	case b == 0x1B:
		// ESC here is almost always the start of ST (ESC \). Dispatch the
		// string now; the trailing backslash falls through as a harmless
		// EscDispatch.
		d.emit(Event{Type: EventOSC, Osc: d.finishOSC()})
		d.state = stateEscape
	case b == ';':
		d.pushOSCPart()
	case b >= 0x20 || b == 0x09:
		if d.oscLen < maxOscBytes {
			d.oscBuf = append(d.oscBuf, b)
			d.oscLen++
		}
	default:
		// Other control bytes inside an OSC string are dropped.
	}
}

func (d *Decoder) stepDCS(b byte) {
	switch {
	case b >= '0' && b <= '9':
		v := uint32(d.value)*10 + uint32(b-'0')
		if v > maxParam {
			v = maxParam
		}
		d.value = uint16(v)
		d.hasValue = true
		d.collected = true
		d.state = stateDCSParam
	case b == ':':
		d.pushSubparam()
		d.state = stateDCSParam
	case b == ';':
		d.pushGroup()
		d.state = stateDCSParam
	case b >= 0x3C && b <= 0x3F:
		if d.state == stateDCSEntry {
			d.collectIntermediate(b)
		} else {
			d.state = stateDCSIgnore
		}
	case b >= 0x20 && b <= 0x2F:
		d.collectIntermediate(b)
		d.state = stateDCSIntermediate
	case b >= 0x40 && b <= 0x7E:
		d.hookDCS(b)
	case b == 0x1B:
		d.state = stateEscape
	case b == 0x18 || b == 0x1A:
		d.state = stateGround
	}
}

func (d *Decoder) stepDCSIntermediate(b byte) {
	switch {
	case b >= 0x20 && b <= 0x2F:
		d.collectIntermediate(b)
	case b >= 0x40 && b <= 0x7E:
		d.hookDCS(b)
	case b == 0x1B:
		d.state = stateEscape
	case b == 0x18 || b == 0x1A:
		d.state = stateGround
	default:
		d.state = stateDCSIgnore
	}
}

func (d *Decoder) stepDCSPassthrough(b byte) {
	switch {
	case b == 0x1B:
		d.emit(Event{Type: EventUnhook})
		d.state = stateEscape
	case b == 0x18 || b == 0x1A:
		d.emit(Event{Type: EventUnhook})
		d.state = stateGround
	case b == 0x07:
		// Nonstandard BEL terminator; some emitters use it anyway.
		d.emit(Event{Type: EventUnhook})
		d.state = stateGround
	default:
		d.emit(Event{Type: EventPut, Byte: b})
	}
}

func (d *Decoder) stepDCSIgnore(b byte) {
	switch b {
	case 0x1B:
		d.state = stateEscape
	case 0x18, 0x1A:
		d.state = stateGround
	}
}

func (d *Decoder) stepSOSPMAPC(b byte) {
	switch b {
	case 0x1B:
		d.state = stateEscape
	case 0x18, 0x1A, 0x07:
		d.state = stateGround
	}
}

func (d *Decoder) dispatchCSI(final byte) {
	d.finishParams()
	d.emit(Event{
		Type:          EventCSI,
		Params:        d.paramsCopy(),
		Intermediates: d.intermCopy(),
		Final:         final,
	})
	d.state = stateGround
}

func (d *Decoder) hookDCS(final byte) {
	d.finishParams()
	d.emit(Event{
		Type:          EventHook,
		Params:        d.paramsCopy(),
		Intermediates: d.intermCopy(),
		Final:         final,
	})
	d.state = stateDCSPassthrough
}

func (d *Decoder) clearSequence() {
	d.params = d.params[:0]
	d.group = d.group[:0]
	d.value = 0
	d.hasValue = false
	d.collected = false
	d.interm = d.interm[:0]
}

func (d *Decoder) clearOSC() {
	d.oscBuf = d.oscBuf[:0]
	d.oscLen = 0
	d.oscParts = d.oscParts[:0]
}

func (d *Decoder) collectIntermediate(b byte) {
	if len(d.interm) < maxInterm {
		d.interm = append(d.interm, b)
	}
}

// pushSubparam closes the current value as a subparameter of the current
// group. An empty slot counts as 0.
func (d *Decoder) pushSubparam() {
	d.collected = true
	d.group = append(d.group, d.value)
	d.value = 0
	d.hasValue = false
}

// pushGroup closes the current group. Parameter groups beyond the cap are
// dropped silently.
func (d *Decoder) pushGroup() {
	d.collected = true
	d.group = append(d.group, d.value)
	if len(d.params) < maxParams {
		grp := make([]uint16, len(d.group))
		copy(grp, d.group)
		d.params = append(d.params, grp)
	}
	d.group = d.group[:0]
	d.value = 0
	d.hasValue = false
}

// finishParams flushes the trailing group, if the sequence carried any
// parameter bytes at all. A bare final byte yields an empty list.
func (d *Decoder) finishParams() {
	if !d.collected {
		return
	}
	d.pushGroup()
}

func (d *Decoder) paramsCopy() Params {
	if len(d.params) == 0 {
		return nil
	}
	out := make(Params, len(d.params))
	copy(out, d.params)
	return out
}

func (d *Decoder) intermCopy() []byte {
	if len(d.interm) == 0 {
		return nil
	}
	out := make([]byte, len(d.interm))
	copy(out, d.interm)
	return out
}

func (d *Decoder) pushOSCPart() {
	if len(d.oscParts) < maxOscParams {
		part := make([]byte, len(d.oscBuf))
		copy(part, d.oscBuf)
		d.oscParts = append(d.oscParts, part)
	}
	d.oscBuf = d.oscBuf[:0]
}

func (d *Decoder) finishOSC() [][]byte {
	d.pushOSCPart()
	out := make([][]byte, len(d.oscParts))
	copy(out, d.oscParts)
	d.clearOSC()
	return out
}
