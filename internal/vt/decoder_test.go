package vt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// collect copies the events out of Advance, which reuses its result slice.
func collect(d *Decoder, chunks ...string) []Event {
	var out []Event
	for _, c := range chunks {
		out = append(out, append([]Event(nil), d.Advance([]byte(c))...)...)
	}
	return out
}

func TestDecoderPlainText(t *testing.T) {
	evs := collect(NewDecoder(), "hi")

	require.Len(t, evs, 2)
	require.Equal(t, EventPrint, evs[0].Type)
	require.Equal(t, 'h', evs[0].Rune)
	require.Equal(t, 'i', evs[1].Rune)
}

func TestDecoderControlBytes(t *testing.T) {
	evs := collect(NewDecoder(), "a\r\nb")

	require.Len(t, evs, 4)
	require.Equal(t, EventExecute, evs[1].Type)
	require.Equal(t, byte('\r'), evs[1].Byte)
	require.Equal(t, EventExecute, evs[2].Type)
	require.Equal(t, byte('\n'), evs[2].Byte)
}

func TestDecoderCSIParams(t *testing.T) {
	evs := collect(NewDecoder(), "\x1b[1;31;4m")

	require.Len(t, evs, 1)
	require.Equal(t, EventCSI, evs[0].Type)
	require.Equal(t, byte('m'), evs[0].Final)
	require.Equal(t, Params{{1}, {31}, {4}}, evs[0].Params)
}

func TestDecoderCSISubparams(t *testing.T) {
	evs := collect(NewDecoder(), "\x1b[38:2:10:20:30;1m")

	require.Len(t, evs, 1)
	require.Equal(t, Params{{38, 2, 10, 20, 30}, {1}}, evs[0].Params)
}

func TestDecoderBareFinalHasNoParams(t *testing.T) {
	evs := collect(NewDecoder(), "\x1b[m")

	require.Len(t, evs, 1)
	require.Equal(t, EventCSI, evs[0].Type)
	require.Empty(t, evs[0].Params)
}

func TestDecoderEmptyParamSlots(t *testing.T) {
	// ESC[;5H carries an empty first slot, which decodes as 0.
	evs := collect(NewDecoder(), "\x1b[;5H")

	require.Len(t, evs, 1)
	require.Equal(t, Params{{0}, {5}}, evs[0].Params)
}

func TestDecoderSplitFeedMidCSI(t *testing.T) {
	// A read boundary in the middle of a sequence must not change the result.
	evs := collect(NewDecoder(), "\x1b[3", "1;", "4m")

	require.Len(t, evs, 1)
	require.Equal(t, EventCSI, evs[0].Type)
	require.Equal(t, Params{{31}, {4}}, evs[0].Params)
}

func TestDecoderSplitFeedMidUTF8(t *testing.T) {
	// "é" is 0xC3 0xA9; feed the bytes one call apart.
	evs := collect(NewDecoder(), "\xc3", "\xa9")

	require.Len(t, evs, 1)
	require.Equal(t, EventPrint, evs[0].Type)
	require.Equal(t, 'é', evs[0].Rune)
}

func TestDecoderMultibyteRunes(t *testing.T) {
	evs := collect(NewDecoder(), "日本")

	require.Len(t, evs, 2)
	require.Equal(t, '日', evs[0].Rune)
	require.Equal(t, '本', evs[1].Rune)
}

func TestDecoderControlInsideCSI(t *testing.T) {
	// C0 bytes execute from inside a sequence without aborting it.
	evs := collect(NewDecoder(), "\x1b[3\n1m")

	require.Len(t, evs, 2)
	require.Equal(t, EventExecute, evs[0].Type)
	require.Equal(t, byte('\n'), evs[0].Byte)
	require.Equal(t, EventCSI, evs[1].Type)
	require.Equal(t, Params{{31}}, evs[1].Params)
}

func TestDecoderCANAbortsSequence(t *testing.T) {
	evs := collect(NewDecoder(), "\x1b[31\x18A")

	require.Len(t, evs, 1)
	require.Equal(t, EventPrint, evs[0].Type)
	require.Equal(t, 'A', evs[0].Rune)
}

func TestDecoderPrivateMarker(t *testing.T) {
	evs := collect(NewDecoder(), "\x1b[?25l")

	require.Len(t, evs, 1)
	require.Equal(t, EventCSI, evs[0].Type)
	require.Equal(t, []byte{'?'}, evs[0].Intermediates)
	require.Equal(t, byte('l'), evs[0].Final)
	require.Equal(t, Params{{25}}, evs[0].Params)
}

func TestDecoderParamValueClamped(t *testing.T) {
	evs := collect(NewDecoder(), "\x1b[99999999m")

	require.Len(t, evs, 1)
	require.Equal(t, Params{{65535}}, evs[0].Params)
}

func TestDecoderOSCBellTerminated(t *testing.T) {
	evs := collect(NewDecoder(), "\x1b]0;window title\x07")

	require.Len(t, evs, 1)
	require.Equal(t, EventOSC, evs[0].Type)
	require.True(t, evs[0].BellTerminated)
	require.Equal(t, [][]byte{[]byte("0"), []byte("window title")}, evs[0].Osc)
}

func TestDecoderOSCStringTerminated(t *testing.T) {
	evs := collect(NewDecoder(), "\x1b]2;x\x1b\\")

	require.Len(t, evs, 2)
	require.Equal(t, EventOSC, evs[0].Type)
	require.False(t, evs[0].BellTerminated)
	require.Equal(t, [][]byte{[]byte("2"), []byte("x")}, evs[0].Osc)
	// The trailing backslash of ST falls through as an escape dispatch.
	require.Equal(t, EventESC, evs[1].Type)
	require.Equal(t, byte('\\'), evs[1].Final)
}

func TestDecoderDCSHookPutUnhook(t *testing.T) {
	evs := collect(NewDecoder(), "\x1bP1;2qab\x1b\\")

	require.GreaterOrEqual(t, len(evs), 4)
	require.Equal(t, EventHook, evs[0].Type)
	require.Equal(t, byte('q'), evs[0].Final)
	require.Equal(t, Params{{1}, {2}}, evs[0].Params)
	require.Equal(t, EventPut, evs[1].Type)
	require.Equal(t, byte('a'), evs[1].Byte)
	require.Equal(t, EventPut, evs[2].Type)
	require.Equal(t, byte('b'), evs[2].Byte)
	require.Equal(t, EventUnhook, evs[3].Type)
}

func TestDecoderEscDispatch(t *testing.T) {
	evs := collect(NewDecoder(), "\x1bc")

	require.Len(t, evs, 1)
	require.Equal(t, EventESC, evs[0].Type)
	require.Equal(t, byte('c'), evs[0].Final)
}

func TestDecoderOrderIsPreserved(t *testing.T) {
	evs := collect(NewDecoder(), "A\x1b[31mB\nC")

	types := make([]EventType, len(evs))
	for i, ev := range evs {
		types[i] = ev.Type
	}
	require.Equal(t, []EventType{EventPrint, EventCSI, EventPrint, EventExecute, EventPrint}, types)
}

func TestDecoderOversizedOSCIsClamped(t *testing.T) {
	payload := make([]byte, maxOscBytes*2)
	for i := range payload {
		payload[i] = 'x'
	}
	d := NewDecoder()
	d.Advance([]byte("\x1b]0;"))
	d.Advance(payload)
	evs := collect(d, "\x07")

	require.Len(t, evs, 1)
	require.Equal(t, EventOSC, evs[0].Type)
	require.Len(t, evs[0].Osc, 2)
	require.LessOrEqual(t, len(evs[0].Osc[1]), maxOscBytes)
}
