// Command minikernel boots the kernel core over the simulated HAL, starts
// its clock and control socket, and optionally drops into an interactive
// console. Flag handling and the stderr-then-exit(1) error convention
// follow the teacher's cmd/ie32to64/main.go.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/intuitionamiga/minikernel/internal/ctlsock"
	"github.com/intuitionamiga/minikernel/internal/hal/sim"
	"github.com/intuitionamiga/minikernel/internal/kernel"
)

func main() {
	maxProc := flag.Int("max-proc", 64, "process table capacity")
	numMut := flag.Int("num-mut", 32, "global mutex table capacity")
	numMutProc := flag.Int("num-mut-proc", 8, "per-process mutex descriptor slots")
	tick := flag.Uint("tick", 100, "clock ticks per simulated second")
	sockPath := flag.String("sock", "/tmp/minikernel.sock", "control socket path")
	interactive := flag.Bool("interactive", true, "start the interactive console")
	flag.Parse()

	cfg := kernel.DefaultConfig()
	cfg.MaxProc = *maxProc
	cfg.NumMut = *numMut
	cfg.NumMutProc = *numMutProc
	cfg.Tick = uint32(*tick)

	h := sim.New()
	k := kernel.New(h, cfg, kernel.NewStdLogger())
	registerDemoPrograms(k)

	srv, err := ctlsock.Listen(k, *sockPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "minikernel: %v\n", err)
		os.Exit(1)
	}
	srv.Start()
	defer srv.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	period := time.Second / time.Duration(cfg.Tick)

	errCh := make(chan error, 1)
	go func() {
		errCh <- k.Run(ctx, func(gctx context.Context) error {
			return k.ClockLoop(gctx, period)
		})
	}()

	var c *console
	if *interactive {
		c = newConsole(k)
		c.start()
	}

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(os.Stderr, "minikernel: %v\n", err)
			os.Exit(1)
		}
	}

	if c != nil {
		c.stop()
	}
}
