// Package prompt turns brand catalog data and run-time selections into the
// instruction text sent to the generative providers. All builders are pure:
// the same inputs always produce the same text.
package prompt

import (
	"fmt"
	"strings"

	"maya-studio/internal/brand"
)

// ImageParams are the inputs to BuildImagePrompt. ContentType carries the
// display label adopted in the Describe step; Aesthetic is a catalog
// identifier. Revision and PreviousPrompt must both be set for the revision
// tail to apply; Inspiration applies only when no revision is requested.
type ImageParams struct {
	ContentType    string
	Aesthetic      string
	Inspiration    string
	Revision       string
	PreviousPrompt string
}

// BuildImagePrompt assembles the image-generation prompt: brand guidelines,
// looked-up content type and aesthetic detail, fixed requirements, and at most
// one tail (revision wins over inspiration).
func BuildImagePrompt(p ImageParams) string {
	aesthetic, hasAesthetic := brand.GetAesthetic(p.Aesthetic)
	contentType, hasContentType := brand.GetContentTypeByLabel(p.ContentType)

	var b strings.Builder
	b.Grow(2048)

	b.WriteString(`Create a professional social media marketing image for a healthcare staffing company called "Connected".`)
	b.WriteString("\n\nBRAND GUIDELINES:\n")
	b.WriteString("- Primary Blue: " + brand.Blue + "\n")
	b.WriteString("- Primary Purple: " + brand.Purple + "\n")
	b.WriteString("- Brand Gradient: " + brand.GradientHorizontal + "\n")
	b.WriteString("- Typography: " + brand.Typography + " font family\n")
	b.WriteString(`- Logo: "CONNECTED" wordmark with molecular node icon as the O`)
	b.WriteString("\n\nCONTENT TYPE: " + p.ContentType + "\n")
	if hasContentType {
		b.WriteString("- Purpose: " + contentType.Purpose + "\n")
		b.WriteString("- Format: " + contentType.Format + "\n")
		b.WriteString("- Visual Notes: " + contentType.VisualNotes + "\n")
	}

	styleLabel := p.Aesthetic
	if hasAesthetic {
		styleLabel = aesthetic.Label
	}
	b.WriteString("\nAESTHETIC STYLE: " + styleLabel + "\n")
	if hasAesthetic {
		b.WriteString("- Characteristics: " + strings.Join(aesthetic.Characteristics, ", ") + "\n")
		b.WriteString("- Color Application: " + aesthetic.ColorApplication + "\n")
		b.WriteString("- Best For: " + strings.Join(aesthetic.BestFor, ", ") + "\n")
	}

	b.WriteString("\nREQUIREMENTS:\n")
	for _, line := range []string{
		"Professional healthcare/staffing industry appropriate",
		"Clean, modern design suitable for Instagram and LinkedIn",
		"Include space for Connected branding",
		"Mobile-friendly, readable at small sizes",
		"No text overlay needed (will be added separately)",
		"High contrast, visually striking",
	} {
		b.WriteString("- " + line + "\n")
	}

	switch {
	case p.Revision != "" && p.PreviousPrompt != "":
		b.WriteString("\nREVISION REQUEST: Adjust the " + p.Revision + " of the previous design.\n")
		b.WriteString("Previous design description: " + p.PreviousPrompt + "\n\n")
		b.WriteString("Focus on improving the " + p.Revision + " while maintaining the overall brand consistency.")
	case p.Inspiration != "":
		b.WriteString("\nINSPIRATION: " + p.Inspiration + "\n")
		b.WriteString("Capture the energy and style of this inspiration while staying true to Connected's brand guidelines.")
	}

	return strings.TrimSpace(b.String())
}

// CaptionParams are the inputs to BuildCaptionPrompt.
type CaptionParams struct {
	ContentType      string
	Aesthetic        string
	ImageDescription string
}

// Tones is the mandated caption tone order. A caption generation call produces
// exactly one caption per tone, in this order.
var Tones = []string{"professional", "conversational", "urgent", "playful"}

// BuildCaptionPrompt produces the instruction asking for exactly four captions,
// one per tone, with a machine-readable JSON output shape.
func BuildCaptionPrompt(p CaptionParams) string {
	var b strings.Builder
	b.Grow(1536)

	fmt.Fprintf(&b, "You are Maya, the Creative Director at Connected, a healthcare staffing company. Generate 4 social media captions for a %s post with a %s aesthetic.\n", p.ContentType, p.Aesthetic)

	b.WriteString("\nABOUT CONNECTED:\n")
	b.WriteString("- Healthcare staffing company placing travel nurses, allied health professionals, educators, and government contractors nationwide\n")
	b.WriteString("- Serves healthcare, educational services, and government services sectors\n")
	b.WriteString("- Brand voice: confident, creative, collaborative, professional but approachable\n")

	if p.ImageDescription != "" {
		b.WriteString("\nIMAGE DESCRIPTION: " + p.ImageDescription + "\n")
	}

	b.WriteString("\nGenerate exactly 4 captions, one for each tone:\n")
	b.WriteString("\n1. PROFESSIONAL\n- LinkedIn-friendly, industry terminology\n- Minimal or no emojis\n- Focus on career growth and professional opportunities\n")
	b.WriteString("\n2. CONVERSATIONAL\n- Friendly, uses \"you/your\" language\n- Light use of emojis (1-2)\n- Relatable, warm tone\n")
	b.WriteString("\n3. URGENT/ACTION\n- CTA-driven, creates FOMO\n- Specific details if possible\n- Clear call to action\n")
	b.WriteString("\n4. PLAYFUL\n- POV statements or relatable humor\n- More emojis welcome\n- Trending social media style\n")

	b.WriteString("\nFor each caption, include:\n")
	b.WriteString("- The caption text (2-3 sentences)\n")
	b.WriteString("- 3-5 relevant hashtags\n")
	b.WriteString("- Best platform fit (LinkedIn, Instagram, Facebook, TikTok)\n")

	b.WriteString("\nFormat your response as JSON:\n")
	b.WriteString(`{
  "captions": [
    {
      "tone": "professional",
      "text": "...",
      "hashtags": "#...",
      "platform": "LinkedIn"
    },
    ...
  ]
}`)

	return b.String()
}

// BuildInspirationAnalysisPrompt returns the fixed instruction for analyzing an
// inspiration image against the brand palette.
func BuildInspirationAnalysisPrompt() string {
	var b strings.Builder

	b.WriteString("Analyze this inspiration image for a healthcare staffing company's marketing content.\n")
	b.WriteString("\nIdentify:\n")
	for i, line := range []string{
		"Color treatment and palette",
		"Typography style",
		"Composition and layout",
		"Overall energy/mood",
		"Key design elements that work well",
	} {
		fmt.Fprintf(&b, "%d. %s\n", i+1, line)
	}
	fmt.Fprintf(&b, "\nProvide specific observations that can be translated into Connected's brand (using their blue %s and purple %s).\n", brand.Blue, brand.Purple)
	b.WriteString("\nKeep the analysis concise and actionable for image generation.")

	return b.String()
}
