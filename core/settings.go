package core

type TexelFormat uint8

const (
	FormatRGB TexelFormat = iota
	FormatRGBA
)

type TexelType uint8

const (
	TypeFloat TexelType = iota
	TypeUnsignedByte
)

type WrapMode uint8

const (
	WrapRepeat WrapMode = iota
	WrapClampToEdge
)

type FilterMode uint8

const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// TargetSettings configures the render-target pair owned by a composer.
type TargetSettings struct {
	Format        TexelFormat
	Type          TexelType
	WrapS         WrapMode
	WrapT         WrapMode
	MinFilter     FilterMode
	MagFilter     FilterMode
	StencilBuffer bool
}

// VelocityTargetSettings mirrors the velocity composer setup: RGB float, repeat, nearest.
func VelocityTargetSettings() TargetSettings {
	return TargetSettings{
		Format:    FormatRGB,
		Type:      TypeFloat,
		WrapS:     WrapRepeat,
		WrapT:     WrapRepeat,
		MinFilter: FilterNearest,
		MagFilter: FilterNearest,
	}
}

// PositionTargetSettings is the same as velocity but with an alpha channel.
func PositionTargetSettings() TargetSettings {
	s := VelocityTargetSettings()
	s.Format = FormatRGBA
	return s
}
