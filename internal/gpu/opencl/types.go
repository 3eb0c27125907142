package opencl

import "fmt"

// PlatformID identifies one OpenCL platform as returned by ListPlatforms,
// in enumeration order.
type PlatformID int

// DeviceID identifies one device within a platform, in enumeration order.
type DeviceID int

// Platform describes one enumerated OpenCL platform and its devices.
type Platform struct {
	ID      PlatformID
	Name    string
	Version string
	Profile string
	Devices []DeviceInfo
}

// DeviceInfo describes one enumerated device within a Platform.
type DeviceInfo struct {
	ID   DeviceID
	Name string
}

func (p Platform) String() string {
	return fmt.Sprintf("%d: %s, %s (%s), %d device(s)", p.ID, p.Name, p.Version, p.Profile, len(p.Devices))
}
