package brand

// Connected brand color system.

const (
	Blue      = "#369AC4" // main brand color, backgrounds, CTAs
	Purple    = "#26034C" // headlines, high-impact, gradient start
	LightGray = "#E6E6E6" // backgrounds, cards
	Black     = "#000000" // text, icons

	LightBlue = "#9DB4D8" // soft backgrounds, secondary accents
	Gray      = "#6E6E6E" // body text, captions
	DarkNavy  = "#061835" // premium feel, dark backgrounds
	White     = "#FFFFFF" // clean backgrounds
)

const (
	GradientHorizontal = "linear-gradient(90deg, #26034C 0%, #369AC4 100%)"
	GradientVertical   = "linear-gradient(180deg, #26034C 0%, #369AC4 100%)"
)

// Typography is the brand font family.
const Typography = "Raleway"
