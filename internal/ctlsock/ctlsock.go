// Package ctlsock is a Unix-domain-socket introspection and submission
// protocol for a running kernel, adapted from the teacher's single-instance
// IPC server (runtime_ipc.go): bind a socket, accept one connection per
// request, decode a small JSON envelope, reply with another one. Unlike the
// teacher's server, the kernel side here never needs single-instance
// locking, so the stale-socket-recovery dance is dropped.
package ctlsock

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/intuitionamiga/minikernel/internal/kernel"
)

const maxRequestSize = 4096

// request is the wire shape of one call. Cmd selects the handler; Name is
// only meaningful for "spawn".
type request struct {
	Cmd  string `json:"cmd"`
	Name string `json:"name,omitempty"`
}

type response struct {
	Status    string             `json:"status"`
	Message   string             `json:"message,omitempty"`
	PID       int32              `json:"pid,omitempty"`
	Processes []kernel.ProcessInfo `json:"processes,omitempty"`
	Mutexes   []kernel.MutexInfo   `json:"mutexes,omitempty"`
}

// Server listens on a Unix socket and serves read-only introspection plus
// process submission against one Kernel.
type Server struct {
	k        *kernel.Kernel
	listener net.Listener
	sockPath string
	done     chan struct{}
}

// Listen binds sockPath, removing a stale socket file first if present
// (this process is assumed to be the only kernel instance using it).
func Listen(k *kernel.Kernel, sockPath string) (*Server, error) {
	if _, err := os.Stat(sockPath); err == nil {
		os.Remove(sockPath)
	}
	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		return nil, fmt.Errorf("ctlsock: bind failed: %w", err)
	}
	return &Server{k: k, listener: ln, sockPath: sockPath, done: make(chan struct{})}, nil
}

// Start begins accepting connections in the background.
func (s *Server) Start() {
	go s.acceptLoop()
}

// Stop closes the listener, waits for the accept loop to exit, and removes
// the socket file.
func (s *Server) Stop() {
	s.listener.Close()
	<-s.done
	os.Remove(s.sockPath)
}

func (s *Server) acceptLoop() {
	defer close(s.done)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	buf := make([]byte, maxRequestSize)
	n, err := conn.Read(buf)
	if err != nil || n == 0 {
		return
	}

	var req request
	if err := json.Unmarshal(buf[:n], &req); err != nil {
		s.reply(conn, response{Status: "err", Message: "invalid json"})
		return
	}

	switch req.Cmd {
	case "ps":
		procs, _ := s.k.Snapshot()
		s.reply(conn, response{Status: "ok", Processes: procs})
	case "mutexes":
		_, mutexes := s.k.Snapshot()
		s.reply(conn, response{Status: "ok", Mutexes: mutexes})
	case "spawn":
		if req.Name == "" {
			s.reply(conn, response{Status: "err", Message: "missing name"})
			return
		}
		pid := s.k.CreateProcess(req.Name)
		if pid < 0 {
			s.reply(conn, response{Status: "err", Message: "crear_proceso failed"})
			return
		}
		s.reply(conn, response{Status: "ok", PID: pid})
	default:
		s.reply(conn, response{Status: "err", Message: "unknown command"})
	}
}

func (s *Server) reply(conn net.Conn, resp response) {
	data, _ := json.Marshal(resp)
	conn.Write(data)
}
