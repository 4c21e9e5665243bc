// Package animation runs an arbitrary external command inside a captured
// pseudo-terminal and replays its screen output behind the login form.
package animation

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"

	"github.com/pink10000/rintty/internal/logging"
	"github.com/pink10000/rintty/internal/vt"
)

const readChunk = 4096

// Animation supervises one background command: the child process, the
// master side of its pseudo-terminal, the protocol decoder and the screen
// model. It is the exclusive owner of all four; nothing else may read the
// master, signal the child, or mutate the screen.
type Animation struct {
	cmd      *exec.Cmd
	master   *os.File
	masterFd int
	dec      *vt.Decoder
	screen   *vt.Screen
	logger   logging.Logger
	buf      [readChunk]byte
	closed   bool
}

// New allocates a pseudo-terminal sized to cols×rows, spawns command with
// the slave side as its stdio and controlling terminal, and puts the master
// side in non-blocking mode.
//
// Construction failure is not fatal to the login screen: any error here is
// logged and New returns nil, which callers must treat as "no animation".
func New(logger logging.Logger, command string, args []string, cols, rows int) *Animation {
	if logger == nil {
		logger = logging.NoOp{}
	}
	if command == "" || cols <= 0 || rows <= 0 {
		return nil
	}

	master, slave, err := pty.Open()
	if err != nil {
		logger.Warn("animation: pty allocation failed", logging.Field("err", err))
		return nil
	}

	// The child reads its dimensions from the slave side; fix them before it
	// starts so it never draws for the wrong geometry.
	ws := &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)}
	if err := pty.Setsize(slave, ws); err != nil {
		logger.Warn("animation: winsize failed", logging.Field("err", err))
		_ = master.Close()
		_ = slave.Close()
		return nil
	}

	cmd := exec.Command(command, args...)
	cmd.Stdin = slave
	cmd.Stdout = slave
	cmd.Stderr = slave
	// New session with the slave as controlling terminal, so the child is
	// insulated from the login screen's own terminal signals and receives
	// its own correctly.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true, Setctty: true}

	if err := cmd.Start(); err != nil {
		logger.Warn("animation: spawn failed",
			logging.Field("command", command), logging.Field("err", err))
		_ = master.Close()
		_ = slave.Close()
		return nil
	}
	_ = slave.Close()

	// Fd() must be captured once: it pins the descriptor out of the runtime
	// poller, and the non-blocking flag is set directly on it.
	fd := int(master.Fd())
	if err := unix.SetNonblock(fd, true); err != nil {
		logger.Warn("animation: nonblock failed", logging.Field("err", err))
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
		_ = master.Close()
		return nil
	}

	screen := vt.NewScreen(cols, rows)
	screen.SetLogger(logging.Printf{L: logger})

	logger.Info("animation: started",
		logging.Field("command", command),
		logging.Field("pid", cmd.Process.Pid),
		logging.Field("cols", cols), logging.Field("rows", rows))

	return &Animation{
		cmd:      cmd,
		master:   master,
		masterFd: fd,
		dec:      vt.NewDecoder(),
		screen:   screen,
		logger:   logger,
	}
}

// Update drains every byte currently available from the master descriptor
// into the decoder and reports whether anything was consumed, so the caller
// can skip redraws on idle ticks.
//
// "Would block" on the first read is the steady state between ticks, not an
// error. End-of-stream or a real read error ends the drain silently: the
// screen freezes on its last rendered state.
func (a *Animation) Update() bool {
	if a == nil || a.closed {
		return false
	}
	consumed := false
	for {
		n, err := unix.Read(a.masterFd, a.buf[:])
		if n > 0 {
			consumed = true
			for _, ev := range a.dec.Advance(a.buf[:n]) {
				a.screen.Apply(ev)
			}
		}
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			if err != unix.EAGAIN {
				a.logger.Debug("animation: read ended", logging.Field("err", err))
			}
			return consumed
		}
		if n == 0 { // end of stream: the child closed its side
			return consumed
		}
	}
}

// Render blits the captured screen into dst, clipped to the smaller of the
// two surfaces.
func (a *Animation) Render(dst *vt.Buffer) {
	if a == nil {
		return
	}
	a.screen.Blit(dst)
}

// Screen exposes the captured screen model, read-only by convention.
func (a *Animation) Screen() *vt.Screen {
	if a == nil {
		return nil
	}
	return a.screen
}

// Close terminates and reaps the child and releases the master descriptor.
// It must run on every exit path of the owning scope; an orphaned animation
// would keep burning CPU long after the login session ended. Safe to call
// more than once and on nil.
func (a *Animation) Close() {
	if a == nil || a.closed {
		return
	}
	a.closed = true
	if a.cmd.Process != nil {
		_ = a.cmd.Process.Kill()
		_, _ = a.cmd.Process.Wait()
	}
	_ = a.master.Close()
	a.logger.Debug("animation: closed")
}
