package forcefield

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/san-kum/phantomgo/internal/geom"
)

// Element is a named field in a scene.
type Element struct {
	Name    string
	Field   Field
	Enabled bool
}

type snapshot struct {
	elems   []Element
	damping bool
}

// Scene is a set of fields edited by the application and evaluated by the
// servo loop. Edits copy the element list and publish it atomically, so
// Force never waits on a writer.
type Scene struct {
	mu   sync.Mutex // serializes writers
	snap atomic.Pointer[snapshot]
}

func NewScene() *Scene {
	s := &Scene{}
	s.snap.Store(&snapshot{damping: true})
	return s
}

// update applies fn to a private copy of the current snapshot and
// publishes the result.
func (s *Scene) update(fn func(*snapshot) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.snap.Load()
	next := &snapshot{elems: slices.Clone(cur.elems), damping: cur.damping}
	if err := fn(next); err != nil {
		return err
	}
	s.snap.Store(next)
	return nil
}

// Add appends an enabled field. Names must be unique.
func (s *Scene) Add(name string, f Field) error {
	if v, ok := f.(interface{ Validate() error }); ok {
		if err := v.Validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return s.update(func(sn *snapshot) error {
		if slices.IndexFunc(sn.elems, func(e Element) bool { return e.Name == name }) >= 0 {
			return fmt.Errorf("%w: duplicate field %q", ErrInvalidParameter, name)
		}
		sn.elems = append(sn.elems, Element{Name: name, Field: f, Enabled: true})
		return nil
	})
}

func (s *Scene) edit(name string, fn func(*Element)) error {
	return s.update(func(sn *snapshot) error {
		i := slices.IndexFunc(sn.elems, func(e Element) bool { return e.Name == name })
		if i < 0 {
			return fmt.Errorf("%w: no field %q", ErrInvalidParameter, name)
		}
		fn(&sn.elems[i])
		return nil
	})
}

func (s *Scene) Remove(name string) error {
	return s.update(func(sn *snapshot) error {
		n := len(sn.elems)
		sn.elems = slices.DeleteFunc(sn.elems, func(e Element) bool { return e.Name == name })
		if len(sn.elems) == n {
			return fmt.Errorf("%w: no field %q", ErrInvalidParameter, name)
		}
		return nil
	})
}

// Replace swaps the field behind name, keeping its enabled state.
func (s *Scene) Replace(name string, f Field) error {
	return s.edit(name, func(e *Element) { e.Field = f })
}

func (s *Scene) SetEnabled(name string, on bool) error {
	return s.edit(name, func(e *Element) { e.Enabled = on })
}

// SetDamping turns the velocity-dependent terms of every field on or off.
func (s *Scene) SetDamping(on bool) {
	_ = s.update(func(sn *snapshot) error {
		sn.damping = on
		return nil
	})
}

func (s *Scene) Damping() bool { return s.snap.Load().damping }

// Elements returns a copy of the current elements in insertion order.
func (s *Scene) Elements() []Element {
	return slices.Clone(s.snap.Load().elems)
}

func (s *Scene) Len() int { return len(s.snap.Load().elems) }

// Force sums the enabled fields at pos and returns the deepest penetration
// among them. With damping off the fields see a zero velocity.
func (s *Scene) Force(pos, vel geom.Vec3) (geom.Vec3, float64) {
	sn := s.snap.Load()
	if !sn.damping {
		vel = geom.Zero
	}

	var total geom.Vec3
	var depth float64
	for i := range sn.elems {
		e := &sn.elems[i]
		if !e.Enabled {
			continue
		}
		total = total.Add(e.Field.Force(pos, vel))
		if p, ok := e.Field.(Penetrator); ok {
			depth = max(depth, p.Penetration(pos))
		}
	}
	return total, depth
}
