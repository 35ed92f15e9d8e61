package main

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/intuitionamiga/minikernel/internal/kernel"
)

// console reads raw stdin a byte at a time and assembles it into lines,
// the same non-blocking-read-plus-translate-CR/DEL shape as the teacher's
// TerminalHost, but driving a small command REPL (spawn/ps/mutexes/quit)
// instead of routing bytes into an emulated MMIO device.
type console struct {
	k            *kernel.Kernel
	fd           int
	oldTermState *term.State
	nonblockSet  bool
	stopCh       chan struct{}
	done         chan struct{}
	stopped      sync.Once
}

func newConsole(k *kernel.Kernel) *console {
	return &console{k: k, stopCh: make(chan struct{}), done: make(chan struct{})}
}

func (c *console) start() {
	c.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(c.fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "console: failed to set raw mode: %v\n", err)
		close(c.done)
		return
	}
	c.oldTermState = oldState

	if err := syscall.SetNonblock(c.fd, true); err != nil {
		fmt.Fprintf(os.Stderr, "console: failed to set nonblocking stdin: %v\n", err)
		_ = term.Restore(c.fd, c.oldTermState)
		c.oldTermState = nil
		close(c.done)
		return
	}
	c.nonblockSet = true

	go c.readLoop()
}

func (c *console) stop() {
	c.stopped.Do(func() { close(c.stopCh) })
	<-c.done
	if c.nonblockSet {
		_ = syscall.SetNonblock(c.fd, false)
		c.nonblockSet = false
	}
	if c.oldTermState != nil {
		_ = term.Restore(c.fd, c.oldTermState)
		c.oldTermState = nil
	}
}

func (c *console) readLoop() {
	defer close(c.done)
	buf := make([]byte, 1)
	var line []byte

	fmt.Print("minikernel> \r\n")
	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		n, err := syscall.Read(c.fd, buf)
		if n > 0 {
			b := buf[0]
			if b == '\r' || b == '\n' {
				c.runCommand(string(line))
				line = line[:0]
				fmt.Print("minikernel> \r\n")
				continue
			}
			if b == 0x7F || b == 0x08 {
				if len(line) > 0 {
					line = line[:len(line)-1]
				}
				continue
			}
			line = append(line, b)
		}
		if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		if err != nil {
			return
		}
		if n == 0 {
			time.Sleep(5 * time.Millisecond)
		}
	}
}

func (c *console) runCommand(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "spawn":
		if len(fields) != 2 {
			fmt.Print("usage: spawn <program>\r\n")
			return
		}
		pid := c.k.CreateProcess(fields[1])
		if pid < 0 {
			fmt.Print("crear_proceso failed\r\n")
			return
		}
		fmt.Printf("spawned pid %d\r\n", pid)
	case "ps":
		procs, _ := c.k.Snapshot()
		for _, p := range procs {
			fmt.Printf("%4d %-12s %-10s %s\r\n", p.ID, p.Name, p.State, p.WaitReason)
		}
	case "mutexes":
		_, mutexes := c.k.Snapshot()
		for _, m := range mutexes {
			fmt.Printf("%-16s kind=%d depth=%d owner=%d open=%d waiters=%d\r\n",
				m.Name, m.Kind, m.LockDepth, m.OwnerID, m.OpenCount, m.Waiters)
		}
	case "quit":
		close(c.stopCh)
	default:
		fmt.Printf("unknown command %q\r\n", fields[0])
	}
}
