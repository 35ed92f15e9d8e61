package main

import (
	"fmt"

	"github.com/intuitionamiga/minikernel/internal/kernel"
)

// registerDemoPrograms binds a handful of sample programs a spawned process
// can run. A real loader would read these out of an image file (out of
// scope here, per the HAL image primitive's own scope note); this registry
// stands in for it.
func registerDemoPrograms(k *kernel.Kernel) {
	k.RegisterProgram("hello", func(s *kernel.Syscalls) {
		s.Escribir([]byte(fmt.Sprintf("hello from pid %d\n", s.ObtenerIDPr())))
	})

	k.RegisterProgram("sleeper", func(s *kernel.Syscalls) {
		s.Escribir([]byte(fmt.Sprintf("pid %d sleeping 1s\n", s.ObtenerIDPr())))
		s.Dormir(1)
		s.Escribir([]byte(fmt.Sprintf("pid %d woke up\n", s.ObtenerIDPr())))
	})
}
