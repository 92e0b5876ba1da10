// Package sshfront is the optional SSH front-end (spec §9, C14): it
// lets a remote client attach to the same render/input pipeline over
// an SSH session instead of (or alongside) the local TTY. No repo in
// the reference corpus runs an SSH server, so this is an out-of-pack,
// standard-ecosystem choice: golang.org/x/crypto/ssh, the only
// plausible library for an SSH transport.
package sshfront

import (
	"fmt"
	"net"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/crypto/ssh"

	"github.com/tvid/tvid/internal/geometry"
)

// Session is one attached SSH client: an io.ReadWriteCloser over its
// channel, plus the pty-req/window-change geometry it reported.
type Session struct {
	channel ssh.Channel
	Geo     *geometry.State

	mu     sync.Mutex
	closed bool
}

func (s *Session) Read(p []byte) (int, error)  { return s.channel.Read(p) }
func (s *Session) Write(p []byte) (int, error) { return s.channel.Write(p) }

func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.channel.Close()
}

// Server accepts SSH connections on a listener and hands each
// interactive session to onSession. It authenticates with no
// credential check (any public key or password is accepted) since
// tvid's threat model is "share a terminal on a private network", not
// public multi-tenant hosting.
type Server struct {
	Addr      string
	HostKey   ssh.Signer
	Log       *log.Logger
	OnSession func(*Session)

	listener net.Listener
}

func New(addr string, hostKey ssh.Signer, logger *log.Logger, onSession func(*Session)) *Server {
	return &Server{Addr: addr, HostKey: hostKey, Log: logger, OnSession: onSession}
}

func (srv *Server) config() *ssh.ServerConfig {
	cfg := &ssh.ServerConfig{
		NoClientAuth: true,
	}
	cfg.AddHostKey(srv.HostKey)
	return cfg
}

// Serve listens and blocks, spawning one goroutine per accepted
// connection until the listener is closed.
func (srv *Server) Serve() error {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("sshfront: listen: %w", err)
	}
	srv.listener = ln

	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go srv.handleConn(conn)
	}
}

func (srv *Server) Close() error {
	if srv.listener == nil {
		return nil
	}
	return srv.listener.Close()
}

func (srv *Server) handleConn(conn net.Conn) {
	sconn, chans, reqs, err := ssh.NewServerConn(conn, srv.config())
	if err != nil {
		if srv.Log != nil {
			srv.Log.Warn("sshfront: handshake failed", "err", err)
		}
		return
	}
	defer sconn.Close()
	go ssh.DiscardRequests(reqs)

	for newChan := range chans {
		if newChan.ChannelType() != "session" {
			newChan.Reject(ssh.UnknownChannelType, "unsupported channel type")
			continue
		}
		channel, requests, err := newChan.Accept()
		if err != nil {
			continue
		}
		go srv.handleSession(channel, requests)
	}
}

func (srv *Server) handleSession(channel ssh.Channel, requests <-chan *ssh.Request) {
	sess := &Session{channel: channel, Geo: geometry.New()}
	go func() {
		for req := range requests {
			switch req.Type {
			case "pty-req":
				cols, rows, xpix, ypix, ok := parsePtyReq(req.Payload)
				if ok {
					sess.Geo.SetTermSize(geometry.CellSize{X: cols, Y: rows}, geometry.CellSize{X: xpix, Y: ypix})
				}
				req.Reply(true, nil)
			case "window-change":
				cols, rows, xpix, ypix, ok := parseWindowChange(req.Payload)
				if ok {
					sess.Geo.SetTermSize(geometry.CellSize{X: cols, Y: rows}, geometry.CellSize{X: xpix, Y: ypix})
				}
			case "shell":
				req.Reply(true, nil)
			default:
				if req.WantReply {
					req.Reply(false, nil)
				}
			}
		}
	}()

	if srv.OnSession != nil {
		srv.OnSession(sess)
	}
}

// parsePtyReq decodes the SSH2 pty-req payload: a length-prefixed term
// string followed by four uint32s (cols, rows, xpixel, ypixel), then a
// modelist this decoder doesn't need.
func parsePtyReq(payload []byte) (cols, rows, xpix, ypix int, ok bool) {
	if len(payload) < 4 {
		return 0, 0, 0, 0, false
	}
	strLen := int(be32(payload))
	off := 4 + strLen
	return readFourUint32(payload, off)
}

// parseWindowChange decodes the SSH2 window-change payload: four
// uint32s directly, no leading string.
func parseWindowChange(payload []byte) (cols, rows, xpix, ypix int, ok bool) {
	return readFourUint32(payload, 0)
}

func readFourUint32(b []byte, off int) (cols, rows, xpix, ypix int, ok bool) {
	if off < 0 || off+16 > len(b) {
		return 0, 0, 0, 0, false
	}
	cols = int(be32(b[off : off+4]))
	rows = int(be32(b[off+4 : off+8]))
	xpix = int(be32(b[off+8 : off+12]))
	ypix = int(be32(b[off+12 : off+16]))
	return cols, rows, xpix, ypix, true
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
