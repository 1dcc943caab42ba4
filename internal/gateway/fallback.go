package gateway

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"maya-studio/internal/prompt"
)

// Caption is one social-media caption. A full set holds exactly one caption
// per tone, in the order professional, conversational, urgent, playful.
type Caption struct {
	Tone     string `json:"tone"`
	Text     string `json:"text"`
	Hashtags string `json:"hashtags"`
	Platform string `json:"platform"`
}

// PlaceholderImageURL is the deterministic stand-in used when the image
// provider is unconfigured or fails.
func PlaceholderImageURL(contentType string) string {
	return "https://placehold.co/1080x1080/369AC4/FFFFFF?text=" + url.QueryEscape(contentType)
}

// FallbackCaptions is the canned four-tone set used when live caption
// generation is unavailable. The professional caption specializes for nursing
// content types.
func FallbackCaptions(contentType string) []Caption {
	profession := "healthcare"
	if strings.Contains(strings.ToLower(contentType), "nurse") {
		profession = "nursing"
	}

	return []Caption{
		{
			Tone:     "professional",
			Text:     fmt.Sprintf("Ready to take your career nationwide? Connected places %s professionals in top organizations across all 50 states - with competitive pay, full benefits, and a dedicated team in your corner.", profession),
			Hashtags: "#CareerGrowth #HealthcareStaffing #ConnectedCareers #TravelHealthcare",
			Platform: "LinkedIn",
		},
		{
			Tone:     "conversational",
			Text:     "New city. New adventure. Same passion for what you do. That's the traveling professional life - and we're here to make it happen for you.",
			Hashtags: "#TravelCareers #NewOpportunities #Connected #HealthcareJobs",
			Platform: "Instagram",
		},
		{
			Tone:     "urgent",
			Text:     "15+ positions open NOW with weekly pay. Don't wait - these fill fast! Link in bio to apply today and start your next adventure.",
			Hashtags: "#HiringNow #ApplyToday #JobAlert #HealthcareJobs #WeeklyPay",
			Platform: "Instagram, Facebook",
		},
		{
			Tone:     "playful",
			Text:     "POV: You just landed your dream assignment and your recruiter already has your housing sorted. This could be you. Seriously.",
			Hashtags: "#WorkLifeBalance #DreamJob #LivingMyBestLife #TravelNurse #ConnectedLife",
			Platform: "Instagram, TikTok",
		},
	}
}

type captionEnvelope struct {
	Captions []Caption `json:"captions"`
}

// parseCaptions extracts the caption JSON object from a completion and
// validates it against the four-tone schema: exactly four captions with
// non-empty text, tones in the mandated order.
func parseCaptions(completion string) ([]Caption, error) {
	start := strings.IndexByte(completion, '{')
	end := strings.LastIndexByte(completion, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in completion")
	}

	var envelope captionEnvelope
	if err := json.Unmarshal([]byte(completion[start:end+1]), &envelope); err != nil {
		return nil, fmt.Errorf("decode captions: %w", err)
	}

	if len(envelope.Captions) != len(prompt.Tones) {
		return nil, fmt.Errorf("expected %d captions, got %d", len(prompt.Tones), len(envelope.Captions))
	}
	for i, c := range envelope.Captions {
		if !strings.EqualFold(strings.TrimSpace(c.Tone), prompt.Tones[i]) {
			return nil, fmt.Errorf("caption %d: expected tone %q, got %q", i, prompt.Tones[i], c.Tone)
		}
		if strings.TrimSpace(c.Text) == "" {
			return nil, fmt.Errorf("caption %d: empty text", i)
		}
		envelope.Captions[i].Tone = prompt.Tones[i]
	}

	return envelope.Captions, nil
}
