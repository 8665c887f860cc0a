package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/rvmodel/insts"
)

// ErrUnsupportedOperation reports execution of a decode-only stub when
// the emulator is configured for strict fidelity.
var ErrUnsupportedOperation = errors.New("unsupported operation")

// executeSystem handles the fence/ecall/ebreak/CSR group. No privileged
// state is modeled, so these execute as no-ops by default. In strict
// mode callers that require real semantics get an error instead.
func (e *Emulator) executeSystem(inst *insts.Instruction) error {
	if e.strictSystem {
		return fmt.Errorf("%w: system instruction 0x%08X at pc=0x%X",
			ErrUnsupportedOperation, inst.Raw, e.state.PC.Unsigned())
	}
	return nil
}
