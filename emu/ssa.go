package emu

// SSARegisters is a monotonically-growing VirtualStorage backing: every
// Allocate call appends a new, initially-empty slot and never reuses one.
// It models a single-assignment physical register file of unbounded size.
type SSARegisters struct {
	data []*uint32
}

var _ VirtualStorage = (*SSARegisters)(nil)

// NewSSARegisters creates an empty SSA register arena.
func NewSSARegisters() *SSARegisters {
	return &SSARegisters{}
}

// Resolve returns the value at index i, or false if it has not been
// written yet.
func (s *SSARegisters) Resolve(i int) (uint32, bool) {
	if i < 0 || i >= len(s.data) || s.data[i] == nil {
		return 0, false
	}
	return *s.data[i], true
}

// Allocate appends a new empty slot and returns its index. It never fails.
func (s *SSARegisters) Allocate() (int, bool) {
	s.data = append(s.data, nil)
	return len(s.data) - 1, true
}

// Write stores v at index i. Writing twice to the same index is a
// programmer error in an SSA arena; this implementation simply overwrites.
func (s *SSARegisters) Write(i int, v uint32) {
	val := v
	s.data[i] = &val
}

// Free marks index i as empty again. Freed slots in an SSA arena are not
// reallocated by Allocate.
func (s *SSARegisters) Free(i int) {
	s.data[i] = nil
}
