package singleinstance

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"screenshots/src/logutil"
)

const (
	residentHost = "127.0.0.1"
	pingRequest  = "PING\n"
	pongResponse = "PONG\n"
	successLine  = "SUCCESS\n"
	errorPrefix  = "ERROR "
)

// tcpServer implements Server over TCP loopback.
type tcpServer struct {
	mu       sync.Mutex
	lis      net.Listener
	incoming chan *tcpConn
	port     int
	closed   bool
}

func newTcpServer() *tcpServer { return &tcpServer{incoming: make(chan *tcpConn, 8)} }

// Start binds only the start port of the configured range; an occupied port
// means another resident owns the session.
func (s *tcpServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lis != nil {
		return nil
	}
	start, _ := getPortRange()
	addr := fmt.Sprintf("%s:%d", residentHost, start)
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	s.lis = lis
	s.port = start
	logutil.WithComponent("singleinstance").Info().Str("addr", addr).Msg("listening")
	go s.acceptLoop(ctx, lis)
	return nil
}

func (s *tcpServer) Port() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

func (s *tcpServer) acceptLoop(ctx context.Context, lis net.Listener) {
	log := logutil.WithComponent("singleinstance")
	for {
		c, err := lis.Accept()
		if err != nil {
			return
		}
		remote := c.RemoteAddr().String()
		_ = c.SetDeadline(time.Now().Add(3 * time.Second))
		br := bufio.NewReader(c)
		bw := bufio.NewWriter(c)
		line, _ := br.ReadString('\n')

		if line == pingRequest {
			log.Debug().Str("remote", remote).Msg("PING -> PONG")
			_, _ = bw.WriteString(pongResponse)
			_ = bw.Flush()
			_ = c.Close()
			continue
		}

		cmd := strings.TrimSpace(line)
		if cmd != CommandCapture {
			log.Warn().Str("remote", remote).Str("command", logutil.Truncate(cmd, 32)).Msg("unknown request")
			_, _ = bw.WriteString(errorPrefix + "unknown command\n")
			_ = bw.Flush()
			_ = c.Close()
			continue
		}

		_ = c.SetDeadline(time.Time{})
		log.Info().Str("remote", remote).Str("command", cmd).Msg("delegated request")
		select {
		case s.incoming <- &tcpConn{c: c, r: Request{Command: cmd}, w: bw}:
		case <-ctx.Done():
			_ = c.Close()
			return
		}
	}
}

func (s *tcpServer) Next(ctx context.Context) (Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case tc, ok := <-s.incoming:
		if !ok {
			return nil, net.ErrClosed
		}
		return tc, nil
	}
}

func (s *tcpServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.lis != nil {
		_ = s.lis.Close()
		s.lis = nil
	}
	return nil
}

type tcpConn struct {
	c net.Conn
	r Request
	w *bufio.Writer
}

func (tc *tcpConn) Request() Request { return tc.r }

func (tc *tcpConn) RespondSuccess() error {
	if _, err := tc.w.WriteString(successLine); err != nil {
		return err
	}
	return tc.w.Flush()
}

func (tc *tcpConn) RespondError(msg string) error {
	msg = strings.ReplaceAll(msg, "\n", " ")
	if _, err := tc.w.WriteString(errorPrefix + msg + "\n"); err != nil {
		return err
	}
	return tc.w.Flush()
}

func (tc *tcpConn) Close() error { return tc.c.Close() }
