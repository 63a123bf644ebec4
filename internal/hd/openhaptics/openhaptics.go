//go:build openhaptics && cgo

package openhaptics

/*
#cgo linux LDFLAGS: -lHD
#cgo windows LDFLAGS: -lhd
#include <stdint.h>
#include <stdlib.h>
#include <HD/hd.h>

HDSchedulerHandle phantomScheduleAsync(uintptr_t h, HDushort prio);
void phantomScheduleSync(uintptr_t h, HDushort prio);
*/
import "C"

import (
	"runtime/cgo"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/san-kum/phantomgo/internal/hd"
)

type callback struct {
	fn         hd.SchedulerCallback
	handle     cgo.Handle
	sched      hd.SchedulerHandle
	registered bool
	finished   atomic.Bool
	release    sync.Once
}

func (c *callback) free() { c.release.Do(c.handle.Delete) }

// Runtime forwards every call to libHD.
type Runtime struct {
	mu        sync.Mutex
	callbacks map[hd.SchedulerHandle]*callback
}

// libHD keeps one scheduler per process, so there is one binding too.
var binding = &Runtime{callbacks: make(map[hd.SchedulerHandle]*callback)}

func Available() bool { return true }

func New() (hd.Runtime, error) {
	return binding, nil
}

//export goServoCallback
func goServoCallback(h C.uintptr_t) C.HDCallbackCode {
	c := cgo.Handle(h).Value().(*callback)
	res := c.fn()
	if res == hd.Done {
		c.finished.Store(true)
		binding.mu.Lock()
		if c.registered {
			delete(binding.callbacks, c.sched)
		}
		binding.mu.Unlock()
		c.free()
	}
	return C.HDCallbackCode(res)
}

func goString(s C.HDstring) string {
	return C.GoString((*C.char)(unsafe.Pointer(s)))
}

func (r *Runtime) InitDevice(name string) hd.DeviceHandle {
	if name == hd.DefaultDevice {
		return hd.DeviceHandle(C.hdInitDevice(nil))
	}
	cs := C.CString(name)
	defer C.free(unsafe.Pointer(cs))
	return hd.DeviceHandle(C.hdInitDevice(C.HDstring(cs)))
}

func (r *Runtime) DisableDevice(h hd.DeviceHandle) { C.hdDisableDevice(C.HHD(h)) }
func (r *Runtime) BeginFrame(h hd.DeviceHandle)    { C.hdBeginFrame(C.HHD(h)) }
func (r *Runtime) EndFrame(h hd.DeviceHandle)      { C.hdEndFrame(C.HHD(h)) }

func (r *Runtime) Enable(c hd.Capability)  { C.hdEnable(C.HDenum(c)) }
func (r *Runtime) Disable(c hd.Capability) { C.hdDisable(C.HDenum(c)) }

func (r *Runtime) IsEnabled(c hd.Capability) bool {
	return C.hdIsEnabled(C.HDenum(c)) != 0
}

func (r *Runtime) GetError() hd.ErrorInfo {
	info := C.hdGetError()
	return hd.ErrorInfo{
		Code:         hd.ErrorCode(info.errorCode),
		InternalCode: int(info.internalErrorCode),
		Device:       hd.DeviceHandle(info.hHD),
	}
}

func (r *Runtime) ErrorString(code hd.ErrorCode) string {
	return goString(C.hdGetErrorString(C.HDerror(code)))
}

// The Get calls write as many values as the parameter has; dst must be
// large enough for it.
func (r *Runtime) GetDoublev(p hd.Param, dst []float64) {
	if len(dst) == 0 {
		return
	}
	C.hdGetDoublev(C.HDenum(p), (*C.HDdouble)(unsafe.Pointer(&dst[0])))
}

func (r *Runtime) GetIntegerv(p hd.Param, dst []int32) {
	if len(dst) == 0 {
		return
	}
	C.hdGetIntegerv(C.HDenum(p), (*C.HDint)(unsafe.Pointer(&dst[0])))
}

func (r *Runtime) GetFloatv(p hd.Param, dst []float32) {
	if len(dst) == 0 {
		return
	}
	C.hdGetFloatv(C.HDenum(p), (*C.HDfloat)(unsafe.Pointer(&dst[0])))
}

func (r *Runtime) GetString(p hd.Param) string {
	return goString(C.hdGetString(C.HDenum(p)))
}

func (r *Runtime) SetDoublev(p hd.Param, v []float64) {
	if len(v) == 0 {
		return
	}
	C.hdSetDoublev(C.HDenum(p), (*C.HDdouble)(unsafe.Pointer(&v[0])))
}

func (r *Runtime) StartScheduler() { C.hdStartScheduler() }
func (r *Runtime) StopScheduler()  { C.hdStopScheduler() }

func (r *Runtime) SetSchedulerRate(hz uint32) {
	C.hdSetSchedulerRate(C.HDulong(hz))
}

func (r *Runtime) SchedulerTimeStamp() float64 {
	return float64(C.hdGetSchedulerTimeStamp())
}

func (r *Runtime) ScheduleAsynchronous(cb hd.SchedulerCallback, prio hd.Priority) hd.SchedulerHandle {
	c := &callback{fn: cb}
	c.handle = cgo.NewHandle(c)
	sh := hd.SchedulerHandle(C.phantomScheduleAsync(C.uintptr_t(c.handle), C.HDushort(prio)))

	r.mu.Lock()
	// The first tick may already have returned Done.
	if !c.finished.Load() {
		c.sched = sh
		c.registered = true
		r.callbacks[sh] = c
	}
	r.mu.Unlock()
	return sh
}

func (r *Runtime) ScheduleSynchronous(cb hd.SchedulerCallback, prio hd.Priority) {
	c := &callback{fn: cb}
	c.handle = cgo.NewHandle(c)
	C.phantomScheduleSync(C.uintptr_t(c.handle), C.HDushort(prio))
	c.free()
}

func (r *Runtime) Unschedule(h hd.SchedulerHandle) {
	r.mu.Lock()
	c, ok := r.callbacks[h]
	delete(r.callbacks, h)
	r.mu.Unlock()
	if !ok {
		return
	}
	C.hdUnschedule(C.HDSchedulerHandle(h))
	c.free()
}

func (r *Runtime) WaitForCompletion(h hd.SchedulerHandle, mode hd.WaitCode) bool {
	return C.hdWaitForCompletion(C.HDSchedulerHandle(h), C.HDWaitCode(mode)) != 0
}
