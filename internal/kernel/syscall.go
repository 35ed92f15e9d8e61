package kernel

import "github.com/intuitionamiga/minikernel/internal/hal"

// Request is a decoded syscall invocation. Numeric arguments travel in Regs
// (mirroring the real register-passing convention of §6); name and Buf
// carry the two string-shaped arguments (crear_proceso/crear_mutex/
// abrir_mutex's name, escribir's buffer) since this kernel has no modeled
// user address space to read pointer+length pairs out of — the HAL's
// memory/image primitives are explicitly out of scope (§1).
type Request struct {
	Index int32
	Regs  hal.Registers
	Name  string
	Buf   []byte
}

// Dispatch implements the syscall dispatcher (§4.6): it bounds-checks Index
// against NServicios, invokes the matching handler against p, and returns
// the value that would be written into register 0. Out-of-range indices
// return -1 without touching any handler.
func (k *Kernel) Dispatch(p *PCB, req Request) int32 {
	if req.Index < 0 || req.Index >= NServicios {
		return -1
	}

	s := &Syscalls{k: k, p: p}

	switch req.Index {
	case SysCrearProceso:
		return s.CrearProceso(req.Name)
	case SysTerminarProceso:
		s.TerminarProceso()
		return 0 // unreachable: TerminarProceso never returns
	case SysEscribir:
		return s.Escribir(req.Buf)
	case SysObtenerIDPr:
		return s.ObtenerIDPr()
	case SysDormir:
		return s.Dormir(req.Regs[1])
	case SysCrearMutex:
		return s.CrearMutex(req.Name, req.Regs[1])
	case SysAbrirMutex:
		return s.AbrirMutex(req.Name)
	case SysLock:
		return s.Lock(req.Regs[1])
	case SysUnlock:
		return s.Unlock(req.Regs[1])
	case SysCerrarMutex:
		return s.CerrarMutex(req.Regs[1])
	default:
		return -1
	}
}
