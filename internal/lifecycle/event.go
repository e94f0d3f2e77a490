package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrClosed is returned when publishing to a closed source.
var ErrClosed = errors.New("lifecycle: source closed")

// Kind is the type of lifecycle signal.
type Kind int

const (
	KindVisible Kind = iota + 1
	KindHidden
	KindFocus
	KindStorageMutation
)

// String returns the wire name of the kind.
func (k Kind) String() string {
	switch k {
	case KindVisible:
		return "visible"
	case KindHidden:
		return "hidden"
	case KindFocus:
		return "focus"
	case KindStorageMutation:
		return "storage"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind parses a wire name produced by Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "visible":
		return KindVisible, nil
	case "hidden":
		return KindHidden, nil
	case "focus":
		return KindFocus, nil
	case "storage":
		return KindStorageMutation, nil
	}
	return 0, fmt.Errorf("unknown lifecycle event %q", s)
}

// Event is one lifecycle signal.
type Event struct {
	Kind Kind

	// Key is the mutated storage key. Set only for KindStorageMutation.
	Key string
}

// Source emits lifecycle events.
type Source interface {
	// Events returns the delivery channel. It may be closed when the
	// source stops; consumers should also stop on their own context.
	Events() <-chan Event

	// Close stops the source.
	Close() error
}

// Merge fans the events of several sources into one Source. Closing the
// merged source closes every input.
func Merge(ctx context.Context, sources ...Source) Source {
	ctx, cancel := context.WithCancel(ctx)
	m := &merged{
		sources: sources,
		out:     make(chan Event),
		cancel:  cancel,
	}

	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case ev, ok := <-src.Events():
					if !ok {
						return
					}
					select {
					case m.out <- ev:
					case <-ctx.Done():
						return
					}
				}
			}
		}(src)
	}

	go func() {
		wg.Wait()
		close(m.out)
	}()
	return m
}

type merged struct {
	sources []Source
	out     chan Event
	cancel  context.CancelFunc
	once    sync.Once
}

func (m *merged) Events() <-chan Event { return m.out }

func (m *merged) Close() error {
	var errs []error
	m.once.Do(func() {
		m.cancel()
		for _, src := range m.sources {
			if err := src.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
