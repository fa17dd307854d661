package param

// Builder assembles a Parameter before it is registered.
type Builder struct {
	param *Parameter
}

// New starts a parameter with id and name. Unless changed, the domain is
// [DefaultFloor, DefaultCeiling], the value starts at the ceiling and the
// host may automate it.
func New(id uint32, name string) *Builder {
	return &Builder{
		param: &Parameter{
			ID:           id,
			Name:         name,
			ShortName:    name,
			Min:          DefaultFloor,
			Max:          DefaultCeiling,
			DefaultValue: DefaultCeiling,
			Flags:        CanAutomate,
		},
	}
}

// ShortName sets the abbreviation hosts show in narrow columns.
func (b *Builder) ShortName(name string) *Builder {
	b.param.ShortName = name
	return b
}

// Range sets the clamp domain. Reversed bounds are swapped by Build.
func (b *Builder) Range(min, max float64) *Builder {
	b.param.Min = min
	b.param.Max = max
	return b
}

// Default sets the initial value; Build clamps it into the domain.
func (b *Builder) Default(value float64) *Builder {
	b.param.DefaultValue = value
	return b
}

// Unit sets the display unit label.
func (b *Builder) Unit(unit string) *Builder {
	b.param.Unit = unit
	return b
}

// Percent shows the value as a percentage with a "%" unit label.
func (b *Builder) Percent() *Builder {
	return b.Unit("%").Formatter(PercentFormatter, PercentParser)
}

// Flags replaces the parameter flags.
func (b *Builder) Flags(flags uint32) *Builder {
	b.param.Flags = flags
	return b
}

// ReadOnly marks a display-only value the host must not automate.
func (b *Builder) ReadOnly() *Builder {
	b.param.Flags |= IsReadOnly
	b.param.Flags &^= CanAutomate
	return b
}

// Formatter sets custom value formatting and parsing
func (b *Builder) Formatter(format func(float64) string, parse func(string) (float64, error)) *Builder {
	b.param.formatFunc = format
	b.param.parseFunc = parse
	return b
}

// Build returns the parameter holding its clamped default value.
func (b *Builder) Build() *Parameter {
	if b.param.Max < b.param.Min {
		b.param.Min, b.param.Max = b.param.Max, b.param.Min
	}
	b.param.SetValue(b.param.DefaultValue)
	return b.param
}
