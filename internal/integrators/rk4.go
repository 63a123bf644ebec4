package integrators

import "github.com/san-kum/phantomgo/internal/dynamo"

// RK4 is the classic fourth order Runge-Kutta scheme. Its stage buffers
// are reused between steps, so one RK4 must not be shared by goroutines.
type RK4 struct {
	k   [4]dynamo.State
	tmp dynamo.State
}

func NewRK4() *RK4 { return &RK4{} }

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) grow(n int) {
	if len(r.tmp) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.tmp = make(dynamo.State, n)
}

// stage sets tmp = x + h*k.
func (r *RK4) stage(x, k dynamo.State, h float64) dynamo.State {
	for i := range x {
		r.tmp[i] = x[i] + h*k[i]
	}
	return r.tmp
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) {
	r.grow(len(x))
	k1, k2, k3, k4 := r.k[0], r.k[1], r.k[2], r.k[3]
	half := dt / 2

	sys.Derive(x, u, t, k1)
	sys.Derive(r.stage(x, k1, half), u, t+half, k2)
	sys.Derive(r.stage(x, k2, half), u, t+half, k3)
	sys.Derive(r.stage(x, k3, dt), u, t+dt, k4)

	for i := range x {
		x[i] += dt / 6 * (k1[i] + 2*k2[i] + 2*k3[i] + k4[i])
	}
}
