//go:build unix

package lifecycle

import (
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// OSSignals maps job-control signals to lifecycle events: SIGCONT (the
// process was resumed) emits Visible then Focus, SIGTSTP emits Hidden.
//
// Catching SIGTSTP disables its default stop action, so after emitting
// Hidden the process stops itself with SIGSTOP. Ctrl-Z still suspends the
// daemon and the matching SIGCONT arrives on resume.
type OSSignals struct {
	sigs   chan os.Signal
	out    chan Event
	done   chan struct{}
	logger *slog.Logger
	once   sync.Once
	wg     sync.WaitGroup
}

// NewOSSignals starts listening for job-control signals.
func NewOSSignals(logger *slog.Logger) (*OSSignals, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &OSSignals{
		sigs:   make(chan os.Signal, 4),
		out:    make(chan Event, DefaultBusBuffer),
		done:   make(chan struct{}),
		logger: logger,
	}
	signal.Notify(s.sigs, syscall.SIGCONT, syscall.SIGTSTP)

	s.wg.Add(1)
	go s.loop()
	return s, nil
}

func (s *OSSignals) loop() {
	defer s.wg.Done()
	defer close(s.out)

	for {
		select {
		case sig := <-s.sigs:
			s.logger.Debug("lifecycle signal received", "signal", sig.String())
			if sig == syscall.SIGTSTP {
				s.suspend()
				continue
			}
			for _, ev := range eventsForSignal(sig) {
				select {
				case s.out <- ev:
				case <-s.done:
					return
				}
			}
		case <-s.done:
			return
		}
	}
}

// suspend emits Hidden without blocking and then stops the process. A full
// buffer drops the event rather than delaying the stop.
func (s *OSSignals) suspend() {
	for _, ev := range eventsForSignal(syscall.SIGTSTP) {
		select {
		case s.out <- ev:
		default:
			s.logger.Debug("lifecycle event dropped before suspend", "kind", ev.Kind.String())
		}
	}
	if err := syscall.Kill(os.Getpid(), syscall.SIGSTOP); err != nil {
		s.logger.Warn("suspend on SIGTSTP failed", "error", err)
	}
}

func eventsForSignal(sig os.Signal) []Event {
	switch sig {
	case syscall.SIGCONT:
		return []Event{{Kind: KindVisible}, {Kind: KindFocus}}
	case syscall.SIGTSTP:
		return []Event{{Kind: KindHidden}}
	}
	return nil
}

// Events implements Source.
func (s *OSSignals) Events() <-chan Event {
	return s.out
}

// Close stops listening.
func (s *OSSignals) Close() error {
	s.once.Do(func() {
		signal.Stop(s.sigs)
		close(s.done)
		s.wg.Wait()
	})
	return nil
}
