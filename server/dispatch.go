package server

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nebularoute/osc"
)

// Sender is the dispatcher's outbound sink, used only to emit
// introspection replies. The real implementation wraps whatever
// net.PacketConn/net.Conn the Listener is using; tests can supply a
// stub that records what was sent.
type Sender interface {
	Send(dest string, data []byte) error
}

// Dispatcher holds a method table, a schedule queue for bundled events
// that are due in the future, and everything needed to honour
// spec.md's introspection-reply behaviour. It is not safe for
// concurrent use without external synchronisation: dispatch is
// single-threaded cooperative, matching the core's concurrency model.
type Dispatcher struct {
	Methods  Methods
	Schedule Schedule

	// Sender, when non-nil, is used to emit "#reply" introspection
	// messages. Protocol gates whether those replies are sent at all:
	// spec.md §4.8/§4.10 only emits them over UDP.
	Sender   Sender
	Protocol string

	Log     *logrus.Logger
	Metrics *Metrics
}

// NewDispatcher builds a Dispatcher for the given transport protocol
// ("udp", "tcp", or "unix"). sender may be nil if introspection
// replies are not needed (e.g. in tests).
func NewDispatcher(protocol string, sender Sender) *Dispatcher {
	d := &Dispatcher{
		Sender:   sender,
		Protocol: protocol,
		Log:      logrus.StandardLogger(),
	}
	d.Metrics = NewMetrics(nil, &d.Schedule)
	return d
}

// AddMethod registers h on path/typespec. See Methods.Add.
func (d *Dispatcher) AddMethod(path, typespec string, h Handler, user any) bool {
	return d.Methods.Add(path, typespec, h, user)
}

// DelMethod removes registrations matching path/typespec. See Methods.Del.
func (d *Dispatcher) DelMethod(path, typespec string) {
	d.Methods.Del(path, typespec)
}

// EventsPending reports whether the schedule queue holds any entry not
// yet dispatched. Named after liblo's lop_server_events_pending; kept
// because callers sizing a select/poll loop find it convenient even
// though NextEventDelay alone would suffice.
func (d *Dispatcher) EventsPending() bool {
	return d.Schedule.Pending()
}

// NextEventDelay is Schedule.NextEventDelay, exposed on the
// dispatcher so callers don't need to reach into its Schedule field.
func (d *Dispatcher) NextEventDelay() float64 {
	return d.Schedule.NextEventDelay()
}

// DispatchData is the packet-level entry point: it first flushes any
// due scheduled events, then parses and dispatches data, which arrived
// from source (used only to address introspection replies). A bundle
// recurses into its elements, including nested bundles; a bare message
// dispatches (or schedules) directly.
func (d *Dispatcher) DispatchData(data []byte, source string) error {
	d.Schedule.DispatchQueued(func(path string, msg *osc.Message) {
		d.dispatchMethod(path, msg)
	})
	if len(data) == 0 {
		return nil
	}

	pkt, err := osc.ParsePacket(data)
	if err != nil {
		d.logError(err, "")
		return err
	}
	return d.dispatchPacket(pkt, source)
}

func (d *Dispatcher) dispatchPacket(pkt *osc.Packet, source string) error {
	if pkt.Message != nil {
		msg := pkt.Message
		msg.Source = source
		d.scheduleOrDispatch(msg.Pattern, msg)
		return nil
	}

	rb := pkt.Bundle
	for _, raw := range rb.RawElements {
		elem, err := osc.ParsePacket(raw)
		if err != nil {
			d.logError(err, "")
			return err
		}
		if elem.Message != nil {
			elem.Message.Timetag = rb.Timetag
			elem.Message.Source = source
			d.scheduleOrDispatch(elem.Message.Pattern, elem.Message)
			continue
		}
		// A nested bundle is a well-formed packet in its own right,
		// carrying its own timetag; recurse rather than flattening it
		// into the parent (liblo's server.c never actually recurses
		// here, a latent bug this implementation fixes).
		if err := d.dispatchPacket(elem, source); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) scheduleOrDispatch(path string, msg *osc.Message) {
	if msg.Timetag.Before(osc.Now()) {
		d.dispatchMethod(path, msg)
		return
	}
	d.Schedule.Insert(msg.Timetag, path, msg)
	if d.Metrics != nil {
		d.Metrics.scheduled.Inc()
	}
}

// dispatchMethod runs the method-table dispatch algorithm for a single
// (path, message) pair, grounded on liblo's dispatch_method.
func (d *Dispatcher) dispatchMethod(path string, msg *osc.Message) {
	types := strings.TrimPrefix(msg.ArgTypes(), ",")
	pattern := HasMeta(path)

	var incoming Pattern
	if pattern {
		p, err := ParsePattern(path)
		if err != nil {
			d.logError(err, path)
			return
		}
		incoming = p
	}

	claimed := false
	for _, r := range d.Methods.regs {
		matched := r.path == nil || *r.path == path || (pattern && incoming.Match(*r.path))
		if !matched {
			continue
		}

		effectivePath := path
		if r.path != nil {
			effectivePath = *r.path
		}

		var ok bool
		switch {
		case r.typespec == nil || *r.typespec == types:
			ok = r.handler(effectivePath, types, msg, r.user)
		case osc.CanCoerceSpec(*r.typespec, types):
			coerced, err := coerceMessage(msg, *r.typespec)
			if err != nil {
				d.logError(err, path)
				continue
			}
			ok = r.handler(effectivePath, *r.typespec, coerced, r.user)
		default:
			continue
		}

		if ok {
			if d.Metrics != nil {
				d.Metrics.dispatched.Inc()
			}
			claimed = true
			if !pattern {
				break
			}
		}
	}

	if !claimed {
		d.replyIntrospection(path, msg, types)
	}
}

// coerceMessage builds a new *osc.Message whose Arguments have been
// coerced to target, a typespec already known (via CanCoerceSpec) to
// be compatible with msg's own.
func coerceMessage(msg *osc.Message, target string) (*osc.Message, error) {
	args := make([]osc.Argument, len(msg.Arguments))
	for i, a := range msg.Arguments {
		c, err := osc.Coerce(rune(target[i]), a)
		if err != nil {
			return nil, err
		}
		args[i] = c
	}
	return &osc.Message{
		Pattern:   msg.Pattern,
		Arguments: args,
		Timetag:   msg.Timetag,
		Source:    msg.Source,
	}, nil
}

// replyIntrospection builds and sends a "#reply" message when a
// UDP request's path ends in "/" and no handler claimed it.
func (d *Dispatcher) replyIntrospection(path string, msg *osc.Message, types string) {
	if d.Protocol != "udp" || d.Sender == nil {
		return
	}
	if !strings.HasSuffix(path, "/") {
		return
	}

	reply := &osc.Message{}
	if types == "i" && len(msg.Arguments) == 1 {
		if id, ok := msg.Arguments[0].(*osc.Int32); ok {
			reply.AddInt32(int32(*id))
		}
	}
	reply.AddString(path)

	seen := make(map[string]bool)
	for _, r := range d.Methods.regs {
		if r.path == nil || !strings.HasPrefix(*r.path, path) {
			continue
		}
		suffix := (*r.path)[len(path):]
		if idx := strings.IndexByte(suffix, '/'); idx >= 0 {
			suffix = suffix[:idx]
		}
		if seen[suffix] {
			continue
		}
		seen[suffix] = true
		reply.AddString(suffix)
	}

	buf := reply.AppendAt("#reply", nil)
	if err := d.Sender.Send(msg.Source, buf); err != nil {
		d.logError(err, path)
		return
	}
	if d.Metrics != nil {
		d.Metrics.replies.Inc()
	}
}

func (d *Dispatcher) logError(err error, path string) {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	fields := logrus.Fields{"err": err}
	if path != "" {
		fields["path"] = path
	}
	if oe, ok := err.(*osc.Error); ok {
		fields["err_code"] = oe.Code.String()
	}
	log.WithFields(fields).Error("dispatch failed")
}
