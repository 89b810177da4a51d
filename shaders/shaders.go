package shaders

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
)

//go:embed velocity.wgsl
var VelocityWGSL string

//go:embed position.wgsl
var PositionWGSL string

//go:embed particles.wgsl
var ParticlesWGSL string

// Source pairs a shader name with its WGSL text.
type Source struct {
	Name string
	Code string
}

func All() []Source {
	return []Source{
		{Name: "velocity", Code: VelocityWGSL},
		{Name: "position", Code: PositionWGSL},
		{Name: "particles", Code: ParticlesWGSL},
	}
}

// Validate compiles every embedded shader to SPIR-V with naga so WGSL errors surface
// before a device is created.
func Validate() error {
	for _, src := range All() {
		if _, err := naga.Compile(src.Code); err != nil {
			return fmt.Errorf("shader %s: %w", src.Name, err)
		}
	}
	return nil
}
