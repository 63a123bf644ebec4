package forcefield

import (
	"errors"
	"sync"
	"testing"

	"github.com/san-kum/phantomgo/internal/geom"
)

func TestScene_SumsEnabledFields(t *testing.T) {
	s := NewScene()
	if err := s.Add("left", NewRigidSphere(geom.V(-20, 0, 0), 30)); err != nil {
		t.Fatal(err)
	}
	if err := s.Add("right", NewRigidSphere(geom.V(20, 0, 0), 30)); err != nil {
		t.Fatal(err)
	}

	// equal and opposite pushes
	f, depth := s.Force(geom.Zero, geom.Zero)
	if !near(f, geom.Zero) {
		t.Errorf("expected balanced force, got %v", f)
	}
	if depth != 10 {
		t.Errorf("expected penetration 10, got %v", depth)
	}

	if err := s.SetEnabled("left", false); err != nil {
		t.Fatal(err)
	}
	f, _ = s.Force(geom.Zero, geom.Zero)
	if !near(f, geom.V(-3, 0, 0)) {
		t.Errorf("expected (-3,0,0), got %v", f)
	}
}

func TestScene_Errors(t *testing.T) {
	s := NewScene()
	s.Add("orb", NewRigidSphere(geom.Zero, 10))

	if err := s.Add("orb", NewRigidSphere(geom.Zero, 5)); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("duplicate name: expected ErrInvalidParameter, got %v", err)
	}
	if err := s.Add("bad", RigidSphere{Radius: -1}); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("invalid field: expected ErrInvalidParameter, got %v", err)
	}
	if err := s.SetEnabled("missing", true); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("unknown name: expected ErrInvalidParameter, got %v", err)
	}
	if err := s.Remove("missing"); err == nil {
		t.Error("expected error removing unknown field")
	}
	if s.Len() != 1 {
		t.Errorf("failed edits must not change the scene, len %d", s.Len())
	}
}

func TestScene_Damping(t *testing.T) {
	s := NewScene()
	orb := NewRigidSphere(geom.Zero, 30)
	orb.ForceLimit = 0
	orb.Damping = 0.01
	s.Add("orb", orb)

	vel := geom.V(0, 100, 0)
	f, _ := s.Force(geom.V(0, 10, 0), vel)
	if !near(f, geom.V(0, -1, 0)) {
		t.Errorf("expected viscous (0,-1,0), got %v", f)
	}

	s.SetDamping(false)
	if s.Damping() {
		t.Fatal("damping should be off")
	}
	f, _ = s.Force(geom.V(0, 10, 0), vel)
	if f != geom.Zero {
		t.Errorf("expected zero with damping off, got %v", f)
	}
}

func TestScene_ReplaceAndRemove(t *testing.T) {
	s := NewScene()
	s.Add("orb", NewRigidSphere(geom.Zero, 10))
	s.SetEnabled("orb", false)

	if err := s.Replace("orb", NewRigidSphere(geom.Zero, 40)); err != nil {
		t.Fatal(err)
	}
	elems := s.Elements()
	if len(elems) != 1 || elems[0].Enabled {
		t.Fatalf("replace should keep the enabled state, got %+v", elems)
	}
	if r := elems[0].Field.(RigidSphere).Radius; r != 40 {
		t.Errorf("expected radius 40, got %v", r)
	}

	if err := s.Remove("orb"); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 {
		t.Errorf("expected empty scene, got %d", s.Len())
	}
}

func TestScene_ConcurrentReaders(t *testing.T) {
	s := NewScene()
	s.Add("orb", NewRigidSphere(geom.Zero, 30))

	var wg sync.WaitGroup
	stop := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				f, _ := s.Force(geom.V(0, 0, 10), geom.Zero)
				if f.Length() > 3.0+eps {
					t.Errorf("force above limit: %v", f)
					return
				}
			}
		}
	}()

	for i := 0; i < 200; i++ {
		s.SetEnabled("orb", i%2 == 0)
		s.SetDamping(i%3 == 0)
	}
	close(stop)
	wg.Wait()
}
