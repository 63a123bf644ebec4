package hd

// DeviceHandle identifies an initialized device.
type DeviceHandle uint32

// InvalidHandle is returned by InitDevice on failure.
const InvalidHandle DeviceHandle = 0xFFFFFFFF

// DefaultDevice selects the device configured as default by the driver.
const DefaultDevice = ""

// SchedulerHandle identifies a scheduled callback.
type SchedulerHandle uint64

// SchedulerCallback runs on the servo thread. Any state it needs is
// captured by the closure.
type SchedulerCallback func() CallbackResult

// ErrorInfo is one entry of the runtime's error stack.
type ErrorInfo struct {
	Code         ErrorCode
	InternalCode int
	Device       DeviceHandle
}

func (e ErrorInfo) IsError() bool { return e.Code != Success }

// Runtime is the native device API.
//
// Parameter reads and writes address the current device, which is the
// most recently initialized one. Calls report failure only through
// GetError. The error stack is shared by every caller; callers on
// several goroutines must pair each call with its GetError themselves.
type Runtime interface {
	InitDevice(name string) DeviceHandle
	DisableDevice(h DeviceHandle)
	BeginFrame(h DeviceHandle)
	EndFrame(h DeviceHandle)

	Enable(c Capability)
	Disable(c Capability)
	IsEnabled(c Capability) bool

	// GetError pops the most recent error, or returns a Success entry.
	GetError() ErrorInfo
	ErrorString(code ErrorCode) string

	GetDoublev(p Param, dst []float64)
	GetIntegerv(p Param, dst []int32)
	GetFloatv(p Param, dst []float32)
	GetString(p Param) string
	SetDoublev(p Param, v []float64)

	StartScheduler()
	StopScheduler()
	SetSchedulerRate(hz uint32)
	// SchedulerTimeStamp is the time in seconds since the current tick began.
	SchedulerTimeStamp() float64

	ScheduleAsynchronous(cb SchedulerCallback, prio Priority) SchedulerHandle
	// ScheduleSynchronous blocks until cb has run once on the servo thread.
	ScheduleSynchronous(cb SchedulerCallback, prio Priority)
	// Unschedule removes a callback. No invocation of it starts after
	// Unschedule returns.
	Unschedule(h SchedulerHandle)
	WaitForCompletion(h SchedulerHandle, mode WaitCode) bool
}
