package simdevice

import (
	"github.com/san-kum/phantomgo/internal/hd"
)

const hdapiVersion = "3.4.0"

func isStringParam(p hd.Param) bool {
	switch p {
	case hd.Version, hd.DeviceModelType, hd.DeviceDriverVersion, hd.DeviceVendor,
		hd.DeviceSerialNumber, hd.DeviceFirmwareVer:
		return true
	}
	return false
}

// values writes the numeric value of p into buf and returns how many
// elements it has. Caller holds mu.
func (d *Device) values(p hd.Param, buf *[16]float64) (int, bool) {
	vec := func(x, y, z float64) (int, bool) {
		buf[0], buf[1], buf[2] = x, y, z
		return 3, true
	}
	scalar := func(v float64) (int, bool) {
		buf[0] = v
		return 1, true
	}

	switch p {
	case hd.CurrentPosition:
		pos := d.position()
		return vec(pos.X, pos.Y, pos.Z)
	case hd.LastPosition:
		return vec(d.last.pos.X, d.last.pos.Y, d.last.pos.Z)
	case hd.CurrentVelocity:
		vel := d.velocity()
		return vec(vel.X, vel.Y, vel.Z)
	case hd.LastVelocity:
		return vec(d.last.vel.X, d.last.vel.Y, d.last.vel.Z)
	case hd.CurrentGimbalAngles:
		return vec(d.gimbal.X, d.gimbal.Y, d.gimbal.Z)
	case hd.LastGimbalAngles:
		return vec(d.last.gimbal.X, d.last.gimbal.Y, d.last.gimbal.Z)
	case hd.CurrentForce:
		return vec(d.force.X, d.force.Y, d.force.Z)
	case hd.LastForce:
		return vec(d.last.force.X, d.last.force.Y, d.last.force.Z)
	case hd.CurrentTransform:
		copy(buf[:], d.transform[:])
		return 16, true
	case hd.LastTransform:
		copy(buf[:], d.last.transform[:])
		return 16, true
	case hd.CurrentButtons:
		return scalar(float64(d.buttons))
	case hd.LastButtons:
		return scalar(float64(d.last.buttons))
	case hd.CurrentSafetySwitch, hd.CurrentInkwellSwitch:
		return scalar(0)
	case hd.MaxWorkspaceDims:
		d.opts.WorkspaceMin.CopyTo(buf[0:3])
		d.opts.WorkspaceMax.CopyTo(buf[3:6])
		return 6, true
	case hd.UsableWorkspaceDims:
		d.opts.UsableMin.CopyTo(buf[0:3])
		d.opts.UsableMax.CopyTo(buf[3:6])
		return 6, true
	case hd.TabletopOffset:
		return scalar(float64(d.opts.TabletopOffset))
	case hd.NominalMaxForce, hd.NominalMaxContinuous:
		return scalar(d.opts.NominalMaxForce)
	case hd.UpdateRate:
		return scalar(float64(d.rate))
	case hd.InstantaneousUpdateRate:
		return scalar(d.instRate)
	case hd.InputDOF:
		return scalar(6)
	case hd.OutputDOF:
		return scalar(3)
	}
	return 0, false
}

// lookup fetches p for a typed getter and pushes the error on failure.
// Caller holds mu.
func (d *Device) lookup(p hd.Param, dstLen int, buf *[16]float64) (int, bool) {
	if !d.ready() {
		return 0, false
	}
	n, ok := d.values(p, buf)
	if !ok {
		if isStringParam(p) {
			d.push(hd.InvalidInputType)
		} else {
			d.push(hd.InvalidEnum)
		}
		return 0, false
	}
	if dstLen < n {
		d.push(hd.InvalidValue)
		return 0, false
	}
	return n, true
}

func (d *Device) GetDoublev(p hd.Param, dst []float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var buf [16]float64
	if n, ok := d.lookup(p, len(dst), &buf); ok {
		copy(dst, buf[:n])
	}
}

func (d *Device) GetIntegerv(p hd.Param, dst []int32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var buf [16]float64
	n, ok := d.lookup(p, len(dst), &buf)
	for i := 0; ok && i < n; i++ {
		dst[i] = int32(buf[i])
	}
}

func (d *Device) GetFloatv(p hd.Param, dst []float32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var buf [16]float64
	n, ok := d.lookup(p, len(dst), &buf)
	for i := 0; ok && i < n; i++ {
		dst[i] = float32(buf[i])
	}
}

func (d *Device) GetString(p hd.Param) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready() {
		return ""
	}
	switch p {
	case hd.Version:
		return hdapiVersion
	case hd.DeviceModelType:
		return d.opts.Model
	case hd.DeviceDriverVersion:
		return d.opts.DriverVersion
	case hd.DeviceVendor:
		return d.opts.Vendor
	case hd.DeviceSerialNumber:
		return d.opts.Serial
	case hd.DeviceFirmwareVer:
		return "sim"
	}
	d.push(hd.InvalidEnum)
	return ""
}

// SetDoublev accepts CurrentForce. The force takes effect when the
// enclosing frame ends.
func (d *Device) SetDoublev(p hd.Param, v []float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ready() {
		return
	}
	if p != hd.CurrentForce {
		d.push(hd.InvalidEnum)
		return
	}
	if len(v) < 3 {
		d.push(hd.InvalidValue)
		return
	}
	d.pending.X, d.pending.Y, d.pending.Z = v[0], v[1], v[2]
}
