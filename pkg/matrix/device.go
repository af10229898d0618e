package matrix

// DeviceMatrix is the stamping surface seen by devices. Indices are 1-based,
// 0 is ground and must not be passed.
type DeviceMatrix interface {
	AddComplexElement(i, j int, real, imag float64)
	AddComplexRHS(i int, real, imag float64)
}
