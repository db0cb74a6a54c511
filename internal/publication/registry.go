package publication

import "log/slog"

// KeyArchive is the registry key of the publication's open package.
const KeyArchive = "zip"

// Releaser is implemented by attachments that hold open resources.
type Releaser interface {
	Close() error
}

type attachment struct {
	name  string
	value any
}

// Attach stores value under key, replacing any previous value for the key.
func (p *Publication) Attach(key string, value any) {
	for i := range p.internal {
		if p.internal[i].name == key {
			p.internal[i].value = value
			return
		}
	}
	p.internal = append(p.internal, attachment{name: key, value: value})
}

// Lookup returns the value attached under key.
func (p *Publication) Lookup(key string) (any, bool) {
	for _, a := range p.internal {
		if a.name == key {
			return a.value, true
		}
	}
	return nil, false
}

// Detach removes key from the registry and returns its value.
func (p *Publication) Detach(key string) (any, bool) {
	for i, a := range p.internal {
		if a.name == key {
			p.internal = append(p.internal[:i], p.internal[i+1:]...)
			return a.value, true
		}
	}
	return nil, false
}

// Keys returns the registry keys in attachment order.
func (p *Publication) Keys() []string {
	out := make([]string, 0, len(p.internal))
	for _, a := range p.internal {
		out = append(out, a.name)
	}
	return out
}

// Teardown releases the attached archive. The publication only borrows the
// archive, so nothing is released until Teardown is called. Later calls are
// no-ops.
func (p *Publication) Teardown() {
	v, ok := p.Detach(KeyArchive)
	if !ok {
		return
	}
	r, ok := v.(Releaser)
	if !ok {
		p.log().Warn("attached archive cannot be released", slog.String("key", KeyArchive))
		return
	}
	if err := r.Close(); err != nil {
		p.log().Warn("release archive", slog.String("error", err.Error()))
		return
	}
	p.log().Debug("publication torn down")
}
