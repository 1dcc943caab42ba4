package brand

// Aesthetic is a named visual style used to steer image generation.
type Aesthetic struct {
	ID               string
	Label            string
	Description      string
	Icon             string
	Characteristics  []string
	ColorApplication string
	BestFor          []string
}

var aesthetics = []Aesthetic{
	{
		ID:          "colorful",
		Label:       "Colorful",
		Description: "Vibrant, bold colors, high energy, eye-catching",
		Icon:        "🎨",
		Characteristics: []string{
			"Bold use of the full brand palette",
			"Multiple colors in harmony",
			"Bright backgrounds (brand blue or gradient)",
			"High contrast between elements",
			"Dynamic layouts with playful icons",
		},
		ColorApplication: "Background: #369AC4 (blue) or gradient. White text containers with colored accents.",
		BestFor:          []string{"Engagement posts", "Celebrations", "Hiring announcements", "Young demographics"},
	},
	{
		ID:          "vintage",
		Label:       "Vintage",
		Description: "Textured, layered, retro-modern with grain effects",
		Icon:        "📷",
		Characteristics: []string{
			"Layered elements and textures",
			"Subtle grain or paper textures",
			"Muted, slightly desaturated brand colors",
			"Retro typography treatments",
			"Ripped paper edges, stamps, collage elements",
		},
		ColorApplication: "Softer brand colors, cream instead of white, #061835 as anchor.",
		BestFor:          []string{"Storytelling", "Day in the life", "Trust/experience messaging", "Seasoned professionals"},
	},
	{
		ID:          "modern",
		Label:       "Modern",
		Description: "Clean lines, geometric, contemporary and sleek",
		Icon:        "✨",
		Characteristics: []string{
			"Sharp, clean lines",
			"Geometric shapes and layouts",
			"Minimal texture (flat design)",
			"Bold typography with breathing room",
			"Asymmetric but balanced compositions",
		},
		ColorApplication: "Clean color blocking, white space as element, 2-3 colors max.",
		BestFor:          []string{"Professional job postings", "Company announcements", "LinkedIn content", "B2B messaging"},
	},
	{
		ID:          "professional",
		Label:       "Professional",
		Description: "Polished, corporate-friendly, trustworthy",
		Icon:        "💼",
		Characteristics: []string{
			"Conservative layouts with clear hierarchy",
			"Structured grids",
			"Formal but friendly tone",
			"Icons over illustrations",
			"Consistent, predictable patterns",
		},
		ColorApplication: "#061835 (navy) for authority, white backgrounds, gray for supporting text.",
		BestFor:          []string{"Facility-facing content", "Compliance/policy", "Benefits info", "Formal announcements"},
	},
	{
		ID:          "minimalistic",
		Label:       "Minimalistic",
		Description: "Whitespace, focused, simple and clean",
		Icon:        "◻️",
		Characteristics: []string{
			"Maximum white/negative space",
			"Single focal point",
			"Very limited elements",
			"Typography-forward design",
			"No unnecessary decoration",
		},
		ColorApplication: "White or light gray background, one accent color, black text.",
		BestFor:          []string{"Quote posts", "Simple announcements", "Instagram stories", "Bold statements"},
	},
}

// Aesthetics returns the catalog in display order.
func Aesthetics() []Aesthetic {
	out := make([]Aesthetic, 0, len(aesthetics))
	for _, a := range aesthetics {
		out = append(out, cloneAesthetic(a))
	}
	return out
}

// GetAesthetic looks up an aesthetic by its identifier.
func GetAesthetic(id string) (Aesthetic, bool) {
	for _, a := range aesthetics {
		if a.ID == id {
			return cloneAesthetic(a), true
		}
	}
	return Aesthetic{}, false
}

func cloneAesthetic(a Aesthetic) Aesthetic {
	a.Characteristics = append([]string(nil), a.Characteristics...)
	a.BestFor = append([]string(nil), a.BestFor...)
	return a
}
