// Package server implements an OSC dispatcher on top of a caller-supplied
// connection: pattern-matched method dispatch, type coercion, a
// time-ordered schedule queue for bundled events, and introspection
// replies.
package server

import (
	"context"
	"net"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Listener reads OSC packets off a net.PacketConn and feeds them to a
// Dispatcher. Parsing and dispatch run in a configurable number of
// worker goroutines, so a handler may be invoked concurrently with
// itself or with other handlers for a different packet; the dispatcher
// itself assumes none of that concurrency touches its own state
// (spec.md's single-threaded cooperative core), so Workers is usually
// left at 1 unless every registered Handler is independently safe for
// concurrent use.
type Listener struct {
	conn       net.PacketConn
	dispatcher *Dispatcher
	workers    int
	log        *logrus.Logger
}

// NewListener builds a Listener that reads from conn and dispatches
// through d, running workers dispatch goroutines.
func NewListener(conn net.PacketConn, d *Dispatcher, workers int) *Listener {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Listener{
		conn:       conn,
		dispatcher: d,
		workers:    workers,
		log:        log,
	}
}

// Handle registers a handler for the literal path pattern: messages
// sent to that path invoke h, with the claim-or-pass semantics
// described on Handler. A path containing pattern metacharacters is
// rejected by Methods.Add, and nothing is registered.
func (l *Listener) Handle(pattern string, h Handler) {
	l.dispatcher.AddMethod(pattern, "", h, nil)
}

type inbound struct {
	data []byte
	addr string
}

// Serve starts reading OSC packets and dispatching them to registered
// handlers. It blocks until ctx is cancelled or the underlying
// connection returns an error, and also drains the schedule queue on
// its own cadence so bundled events due in the future still fire even
// when no new packet arrives to trigger a drain.
func (l *Listener) Serve(ctx context.Context) error {
	recv := make(chan inbound, 100)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		buf := make([]byte, 1<<16) // ~max UDP packet size.
		for {
			n, addr, err := l.conn.ReadFrom(buf)
			if n > 0 {
				cp := append([]byte(nil), buf[:n]...)
				select {
				case recv <- inbound{data: cp, addr: addr.String()}:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			if err != nil {
				return err
			}
		}
	})

	g.Go(func() error {
		return l.drainScheduled(gctx)
	})

	for range l.workers {
		g.Go(func() error {
			for {
				var pkt inbound
				select {
				case <-gctx.Done():
					return gctx.Err()
				case pkt = <-recv:
				}
				if err := l.dispatcher.DispatchData(pkt.data, pkt.addr); err != nil {
					l.log.WithFields(logrus.Fields{"addr": pkt.addr, "err": err}).
						Error("error dispatching packet")
				}
			}
		})
	}

	return g.Wait()
}

// drainScheduled periodically calls DispatchData with an empty buffer,
// which is enough to flush any scheduled bundle elements whose timetag
// has arrived (DispatchData always drains the queue before looking at
// its data argument). It sleeps for NextEventDelay between attempts,
// so an empty queue costs one wakeup every 100 seconds.
func (l *Listener) drainScheduled(ctx context.Context) error {
	for {
		delay := time.Duration(l.dispatcher.NextEventDelay() * float64(time.Second))
		if delay <= 0 {
			delay = time.Millisecond
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
			if err := l.dispatcher.DispatchData(nil, ""); err != nil {
				l.log.WithField("err", err).Error("error dispatching scheduled event")
			}
		}
	}
}

// connSender adapts a net.PacketConn into the Sender interface
// dispatch.go uses to emit introspection replies.
type connSender struct {
	conn    net.PacketConn
	network string
}

// NewUDPSender wraps conn so a Dispatcher can send introspection
// replies back to the address a request arrived from.
func NewUDPSender(conn net.PacketConn) Sender {
	return connSender{conn: conn, network: "udp"}
}

func (s connSender) Send(dest string, data []byte) error {
	if dest == "" {
		return nil
	}
	addr, err := net.ResolveUDPAddr(s.network, dest)
	if err != nil {
		return err
	}
	_, err = s.conn.WriteTo(data, addr)
	return err
}
