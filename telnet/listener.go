/*
 * vtape - Remote console listener.
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

package telnet

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	command "github.com/rcornwell/vtape/command/command"
	config "github.com/rcornwell/vtape/config/configparser"
)

type Server struct {
	wg       sync.WaitGroup
	listener net.Listener
	shutdown chan struct{}
	runner   command.Runner
	mu       sync.Mutex
	conns    map[net.Conn]struct{}
}

var (
	serversMu sync.Mutex
	servers   []*Server
)

// register console option on initialize.
func init() {
	config.RegisterOption("CONSOLE", setPort)
}

// Start a remote console on the given port or address.
func setPort(_ int, port string, _ []config.Option) error {
	address := port
	if !strings.Contains(address, ":") {
		address = ":" + address
	}
	s, err := NewServer(address, command.BusRunner{})
	if err != nil {
		return err
	}
	s.Start()
	serversMu.Lock()
	servers = append(servers, s)
	serversMu.Unlock()
	return nil
}

// Open new listener.
func NewServer(address string, runner command.Runner) (*Server, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on address %s: %w", address, err)
	}

	return &Server{
		listener: listener,
		shutdown: make(chan struct{}),
		runner:   runner,
		conns:    map[net.Conn]struct{}{},
	}, nil
}

// Address server listens on.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Begin accepting connections.
func (s *Server) Start() {
	slog.Info("console server started", "address", s.listener.Addr().String())
	s.wg.Add(1)
	go s.acceptConnections()
}

// Accept a connection.
func (s *Server) acceptConnections() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return
			}
			slog.Warn("console accept failed", "error", err)
			continue
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()
		slog.Info("console connection", "remote", conn.RemoteAddr().String())

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			handleClient(conn, s.runner)
			s.mu.Lock()
			delete(s.conns, conn)
			s.mu.Unlock()
		}()
	}
}

// Stop server and drop its connections.
func (s *Server) Stop() {
	close(s.shutdown)
	s.listener.Close()
	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		slog.Warn("timed out waiting for console connections to finish")
	}
}

// Stop all configured servers.
func Stop() {
	serversMu.Lock()
	defer serversMu.Unlock()
	for _, s := range servers {
		s.Stop()
	}
	servers = nil
}
