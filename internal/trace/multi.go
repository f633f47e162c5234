package trace

import "errors"

// Multi fans events out to several tracers. Its level is the most verbose
// level among them; each tracer still filters by its own level.
type Multi []Tracer

func (m Multi) Emit(ev *Event) {
	for _, t := range m {
		// Each tracer assigns its own sequence number.
		cp := *ev
		t.Emit(&cp)
	}
}

func (m Multi) Flush() error {
	var errs []error
	for _, t := range m {
		errs = append(errs, t.Flush())
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, t := range m {
		errs = append(errs, t.Close())
	}
	return errors.Join(errs...)
}

func (m Multi) Level() Level {
	level := LevelOff
	for _, t := range m {
		level = max(level, t.Level())
	}
	return level
}
