package eventloop

import (
	"context"
	"errors"
	"time"

	"screenshots/src/hotkey"
	"screenshots/src/logutil"
	"screenshots/src/messages"
	"screenshots/src/singleinstance"
)

// DefaultStartTimeout bounds how long one StartCapture may hold the loop,
// mostly spent waiting for the surface to come up.
const DefaultStartTimeout = 15 * time.Second

// Controller is the part of the session controller the loop drives.
type Controller interface {
	StartCapture(ctx context.Context) error
	EndCapture()
	Handle(ctx context.Context, msg messages.Message)
	Active() bool
}

var errBusy = errors.New("busy, a capture is already open")

// Loop is the single goroutine that calls into the controller. Hotkey, tray,
// run-once delegation and surface outcomes are all funnelled through it.
type Loop struct {
	ctrl           Controller
	srv            singleinstance.Server
	triggerCh      chan string
	inbound        chan messages.Message
	startTimeout   time.Duration
	defaultTooltip string
	tooltip        func(string)
	exitWhenIdle   bool
}

// New creates a loop. srv may be nil to run without run-once delegation.
func New(ctrl Controller, srv singleinstance.Server) *Loop {
	return &Loop{
		ctrl:           ctrl,
		srv:            srv,
		triggerCh:      make(chan string, 4),
		inbound:        make(chan messages.Message, 32),
		startTimeout:   DefaultStartTimeout,
		defaultTooltip: "Screenshots",
	}
}

// SetTooltipFunc installs the function used to reflect state in the tray.
func (l *Loop) SetTooltipFunc(f func(string)) { l.tooltip = f }

// SetStartTimeout overrides DefaultStartTimeout.
func (l *Loop) SetStartTimeout(d time.Duration) {
	if d > 0 {
		l.startTimeout = d
	}
}

func (l *Loop) setTooltip(active bool) {
	if l.tooltip == nil {
		return
	}
	if active {
		l.tooltip(l.defaultTooltip + ": capturing")
	} else {
		l.tooltip(l.defaultTooltip)
	}
}

// SetExitWhenIdle makes Run return once a capture has been attempted and no
// session is open any more. Used by standalone run-once.
func (l *Loop) SetExitWhenIdle(exit bool) { l.exitWhenIdle = exit }

// StartHotkey registers a global hotkey that triggers a capture.
func (l *Loop) StartHotkey(ctx context.Context, combo string) error {
	if combo == "" {
		return nil
	}
	return hotkey.Listen(ctx, combo, func() { l.Trigger("hotkey") })
}

// Trigger asks the loop to start a capture. Requests arriving while the
// queue is full are dropped.
func (l *Loop) Trigger(source string) {
	select {
	case l.triggerCh <- source:
	default:
		logutil.WithComponent("eventloop").Debug().Str("source", source).Msg("trigger dropped, queue full")
	}
}

// Post hands an inbound surface message to the loop. It never blocks so the
// surface reader can keep resolving prompts while the loop is busy.
func (l *Loop) Post(msg messages.Message) {
	select {
	case l.inbound <- msg:
	default:
		logutil.WithComponent("eventloop").Warn().Str("type", msg.Type()).Msg("surface message dropped, queue full")
	}
}

// Run processes events until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	log := logutil.WithComponent("eventloop")

	var reqCh chan singleinstance.Conn
	if l.srv != nil {
		if err := l.srv.Start(ctx); err != nil {
			return err
		}
		log.Info().Int("port", l.srv.Port()).Msg("resident listening")
		reqCh = make(chan singleinstance.Conn, 4)
		go func() {
			defer close(reqCh)
			for {
				conn, err := l.srv.Next(ctx)
				if err != nil {
					return
				}
				reqCh <- conn
			}
		}()
		defer l.srv.Close()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case source := <-l.triggerCh:
			err := l.capture(ctx, source)
			if err != nil && !errors.Is(err, errBusy) {
				log.Error().Err(err).Str("source", source).Msg("capture failed")
			}
			if l.exitWhenIdle && !l.ctrl.Active() {
				return err
			}
		case conn, ok := <-reqCh:
			if !ok {
				reqCh = nil
				continue
			}
			l.handleConn(ctx, conn)
		case msg := <-l.inbound:
			l.ctrl.Handle(ctx, msg)
			active := l.ctrl.Active()
			l.setTooltip(active)
			if l.exitWhenIdle && !active {
				return nil
			}
		}
	}
}

func (l *Loop) capture(ctx context.Context, source string) error {
	if l.ctrl.Active() {
		logutil.WithComponent("eventloop").Debug().Str("source", source).Msg("capture already open")
		return errBusy
	}
	startCtx, cancel := context.WithTimeout(ctx, l.startTimeout)
	defer cancel()
	err := l.ctrl.StartCapture(startCtx)
	l.setTooltip(l.ctrl.Active())
	return err
}

func (l *Loop) handleConn(ctx context.Context, conn singleinstance.Conn) {
	defer conn.Close()
	log := logutil.WithComponent("eventloop")

	err := l.capture(ctx, "run-once")
	if err != nil {
		log.Warn().Err(err).Msg("delegated capture failed")
		if rerr := conn.RespondError(err.Error()); rerr != nil {
			log.Debug().Err(rerr).Msg("respond to run-once client")
		}
		return
	}
	if rerr := conn.RespondSuccess(); rerr != nil {
		log.Debug().Err(rerr).Msg("respond to run-once client")
	}
}
