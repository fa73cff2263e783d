package ui

// ColorReset returns the reset code of the active theme.
func ColorReset() string { return GetCurrentTheme().Reset }

// ColorRed returns the error color.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorGreen returns the success color.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorYellow returns the warning color.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorBlue returns the primary color.
func ColorBlue() string { return GetCurrentTheme().Primary }

// ColorMagenta returns the info color.
func ColorMagenta() string { return GetCurrentTheme().Info }

// ColorCyan returns the secondary color.
func ColorCyan() string { return GetCurrentTheme().Secondary }

// ColorBold returns the bold code.
func ColorBold() string { return GetCurrentTheme().Bold }

// ColorUnderline returns the underline code.
func ColorUnderline() string { return GetCurrentTheme().Underline }

// Paint wraps s in code and a reset. It returns s unchanged when code is
// empty, so output stays clean under NoColorTheme.
func Paint(code, s string) string {
	if code == "" {
		return s
	}
	return code + s + GetCurrentTheme().Reset
}

// Colors adapts the active theme to the small color interfaces consumed by
// other packages, such as apperrors.ColorProvider.
type Colors struct{}

func (Colors) Yellow() string { return ColorYellow() }
func (Colors) Red() string    { return ColorRed() }
func (Colors) Green() string  { return ColorGreen() }
func (Colors) Reset() string  { return ColorReset() }
