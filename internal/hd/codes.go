package hd

import "fmt"

// ErrorCode is a native error code. Success is zero.
type ErrorCode uint32

const (
	Success ErrorCode = 0x0000

	// Function errors
	InvalidEnum      ErrorCode = 0x0100
	InvalidValue     ErrorCode = 0x0101
	InvalidOperation ErrorCode = 0x0102
	InvalidInputType ErrorCode = 0x0103
	BadHandle        ErrorCode = 0x0104

	// Force errors
	WarmMotors              ErrorCode = 0x0200
	ExceededMaxForce        ErrorCode = 0x0201
	ExceededMaxForceImpulse ErrorCode = 0x0202
	ExceededMaxVelocity     ErrorCode = 0x0203
	ForceError              ErrorCode = 0x0204

	// Device errors
	DeviceFault            ErrorCode = 0x0300
	DeviceAlreadyInitiated ErrorCode = 0x0301
	CommError              ErrorCode = 0x0302
	CommConfigError        ErrorCode = 0x0303
	TimerError             ErrorCode = 0x0304

	// Frame errors
	IllegalBegin ErrorCode = 0x0400
	IllegalEnd   ErrorCode = 0x0401
	FrameError   ErrorCode = 0x0402

	// Scheduler errors
	InvalidPriority ErrorCode = 0x0500
	SchedulerFull   ErrorCode = 0x0501

	InvalidLicense ErrorCode = 0x0600
)

var errorNames = map[ErrorCode]string{
	Success:                 "HD_SUCCESS",
	InvalidEnum:             "HD_INVALID_ENUM",
	InvalidValue:            "HD_INVALID_VALUE",
	InvalidOperation:        "HD_INVALID_OPERATION",
	InvalidInputType:        "HD_INVALID_INPUT_TYPE",
	BadHandle:               "HD_BAD_HANDLE",
	WarmMotors:              "HD_WARM_MOTORS",
	ExceededMaxForce:        "HD_EXCEEDED_MAX_FORCE",
	ExceededMaxForceImpulse: "HD_EXCEEDED_MAX_FORCE_IMPULSE",
	ExceededMaxVelocity:     "HD_EXCEEDED_MAX_VELOCITY",
	ForceError:              "HD_FORCE_ERROR",
	DeviceFault:             "HD_DEVICE_FAULT",
	DeviceAlreadyInitiated:  "HD_DEVICE_ALREADY_INITIATED",
	CommError:               "HD_COMM_ERROR",
	CommConfigError:         "HD_COMM_CONFIG_ERROR",
	TimerError:              "HD_TIMER_ERROR",
	IllegalBegin:            "HD_ILLEGAL_BEGIN",
	IllegalEnd:              "HD_ILLEGAL_END",
	FrameError:              "HD_FRAME_ERROR",
	InvalidPriority:         "HD_INVALID_PRIORITY",
	SchedulerFull:           "HD_SCHEDULER_FULL",
	InvalidLicense:          "HD_INVALID_LICENSE",
}

func (c ErrorCode) String() string {
	if name, ok := errorNames[c]; ok {
		return name
	}
	return fmt.Sprintf("HD_ERROR(0x%04x)", uint32(c))
}

// Param names a typed device parameter for the Get/Set calls.
type Param uint32

const (
	CurrentButtons       Param = 0x2000
	CurrentSafetySwitch  Param = 0x2001
	CurrentInkwellSwitch Param = 0x2002
	CurrentPosition      Param = 0x2050
	CurrentVelocity      Param = 0x2051
	CurrentTransform     Param = 0x2052
	CurrentAngularVel    Param = 0x2053
	CurrentJointAngles   Param = 0x2100
	CurrentGimbalAngles  Param = 0x2150

	LastButtons      Param = 0x2200
	LastPosition     Param = 0x2250
	LastVelocity     Param = 0x2251
	LastTransform    Param = 0x2252
	LastGimbalAngles Param = 0x2350

	Version             Param = 0x2500
	DeviceModelType     Param = 0x2501
	DeviceDriverVersion Param = 0x2502
	DeviceVendor        Param = 0x2503
	DeviceSerialNumber  Param = 0x2504
	DeviceFirmwareVer   Param = 0x2505
	MaxWorkspaceDims    Param = 0x2550
	UsableWorkspaceDims Param = 0x2551
	TabletopOffset      Param = 0x2552
	InputDOF            Param = 0x2553
	OutputDOF           Param = 0x2554

	UpdateRate              Param = 0x2600
	InstantaneousUpdateRate Param = 0x2601
	NominalMaxStiffness     Param = 0x2602
	NominalMaxForce         Param = 0x2603
	NominalMaxContinuous    Param = 0x2604
	NominalMaxDamping       Param = 0x2609

	CurrentForce Param = 0x2700
	LastForce    Param = 0x2800
)

// Capability is a switchable device feature for Enable/Disable.
type Capability uint32

const (
	ForceOutput      Capability = 0x4000
	MaxForceClamping Capability = 0x4001
	ForceRamping     Capability = 0x4002
	SoftwareForceLim Capability = 0x4003
	OneFrameLimit    Capability = 0x4004
)

// Priority orders asynchronous callbacks within one tick. Higher runs first.
type Priority uint16

const (
	MinPriority     Priority = 0
	MaxPriority     Priority = 0xffff
	DefaultPriority Priority = (MaxPriority + MinPriority) / 2
)

// CallbackResult tells the scheduler whether to keep a callback.
type CallbackResult int

const (
	Done     CallbackResult = 0
	Continue CallbackResult = 1
)

// WaitCode selects the behaviour of WaitForCompletion.
type WaitCode int

const (
	WaitCheckStatus WaitCode = 0
	WaitInfinite    WaitCode = 1
)

// Button bits as reported by CurrentButtons.
const (
	Button1 = 1 << iota
	Button2
	Button3
	Button4
)
