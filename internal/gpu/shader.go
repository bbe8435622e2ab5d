//go:build !nogpu

package gpu

import (
	_ "embed"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/gamma.wgsl
var gammaShaderSource string

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// compileShaderToSPIRV compiles WGSL source to SPIR-V words.
func compileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	if len(spirvBytes) < 4 || len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("invalid SPIR-V length %d", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	if spirvCode[0] != spirvMagic {
		return nil, fmt.Errorf("invalid SPIR-V magic 0x%08X", spirvCode[0])
	}
	return spirvCode, nil
}

// gammaShaderModuleSource returns the shader source for the HAL. SPIR-V from
// naga is preferred; the WGSL text is used when naga cannot compile it.
func gammaShaderModuleSource() hal.ShaderSource {
	spirv, err := compileShaderToSPIRV(gammaShaderSource)
	if err != nil {
		slogger().Debug("gamma-gpu: naga compile failed, passing WGSL to backend", "err", err)
		return hal.ShaderSource{WGSL: gammaShaderSource}
	}
	return hal.ShaderSource{SPIRV: spirv}
}
