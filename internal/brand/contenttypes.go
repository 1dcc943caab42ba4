package brand

// ContentType is a named category of marketing post.
type ContentType struct {
	ID          string
	Label       string
	Purpose     string
	Format      string
	Frequency   string
	Platforms   []string
	VisualNotes string
}

var contentTypes = []ContentType{
	{
		ID:          "educational-carousel",
		Label:       "Educational Carousel",
		Purpose:     "Inform/Teach",
		Format:      "Multi-slide",
		Frequency:   "2-3x/week",
		Platforms:   []string{"Instagram", "LinkedIn", "Facebook"},
		VisualNotes: "Bold headline cover, one point per slide, swipe CTA, logo prominent on final slide.",
	},
	{
		ID:          "benefits-value-props",
		Label:       "Benefits/Value Props",
		Purpose:     "Persuade",
		Format:      "Grid/List",
		Frequency:   "1-2x/week",
		Platforms:   []string{"Instagram", "LinkedIn", "Facebook", "Job boards"},
		VisualNotes: "Icon grids (2x3 or 3x2), checkmark bullets, illustrated icons, blue background.",
	},
	{
		ID:          "job-spotlight",
		Label:       "Job Opportunity Spotlight",
		Purpose:     "Convert",
		Format:      "Single/Video",
		Frequency:   "As needed",
		Platforms:   []string{"Instagram", "LinkedIn", "Indeed", "Facebook Jobs"},
		VisualNotes: "Phone mockup or bold statement, job title prominent, 3-4 key benefits, Apply CTA.",
	},
	{
		ID:          "weekly-hot-jobs",
		Label:       "Weekly Hot Jobs",
		Purpose:     "Convert",
		Format:      "Single/Carousel",
		Frequency:   "Weekly",
		Platforms:   []string{"Instagram", "LinkedIn", "Facebook"},
		VisualNotes: "Ranked list format, fire/heat elements, blue or gradient background, warm accents.",
	},
	{
		ID:          "motivational",
		Label:       "Motivational/Mindset",
		Purpose:     "Engage",
		Format:      "Single image",
		Frequency:   "2-3x/week",
		Platforms:   []string{"Instagram", "LinkedIn", "Facebook"},
		VisualNotes: "Comparison layouts, chart illustrations, bold central message, pastel or blue backgrounds.",
	},
	{
		ID:          "engagement",
		Label:       "Engagement/Interactive",
		Purpose:     "Interact",
		Format:      "Poll-style",
		Frequency:   "1-2x/week",
		Platforms:   []string{"Instagram Stories", "LinkedIn polls", "Facebook"},
		VisualNotes: "Toggle switches, this-or-that layouts, blue with flowing shapes, UI elements.",
	},
	{
		ID:          "quiz-game",
		Label:       "Quiz/Game Content",
		Purpose:     "Entertain",
		Format:      "Video",
		Frequency:   "1x/week",
		Platforms:   []string{"Instagram Reels", "TikTok", "Facebook Reels", "YouTube Shorts"},
		VisualNotes: "Animated text, timers, countdown elements, celebration animations.",
	},
	{
		ID:          "recruitment-cta",
		Label:       "Recruitment CTA",
		Purpose:     "Convert",
		Format:      "Single/Closer",
		Frequency:   "Ongoing",
		Platforms:   []string{"All platforms"},
		VisualNotes: "Bold action headline, clear next step, contact info, urgent but professional.",
	},
	{
		ID:          "current-events",
		Label:       "Current Events/Holidays",
		Purpose:     "Relevance",
		Format:      "Single/Carousel",
		Frequency:   "Calendar-based",
		Platforms:   []string{"Instagram", "LinkedIn", "Facebook"},
		VisualNotes: "Theme-appropriate colors, role photos, appreciation messaging, tie to Connected opportunities.",
	},
}

// keywordEntry order matters: detection tests entries top to bottom and the
// first match wins.
type keywordEntry struct {
	ID       string
	Keywords []string
}

var contentTypeKeywords = []keywordEntry{
	{ID: "educational-carousel", Keywords: []string{"teach", "explain", "how to", "steps", "guide", "learn", "tips", "carousel", "swipe"}},
	{ID: "benefits-value-props", Keywords: []string{"benefits", "perks", "why", "value", "offer", "what we provide"}},
	{ID: "job-spotlight", Keywords: []string{"job", "position", "role", "hiring", "opportunity", "contract", "opening"}},
	{ID: "weekly-hot-jobs", Keywords: []string{"hot jobs", "this week", "top jobs", "featured positions", "weekly"}},
	{ID: "motivational", Keywords: []string{"motivation", "inspire", "quote", "mindset", "growth", "monday motivation"}},
	{ID: "engagement", Keywords: []string{"poll", "question", "interactive", "vote", "this or that", "what do you"}},
	{ID: "quiz-game", Keywords: []string{"quiz", "game", "trivia", "guess", "challenge", "test your"}},
	{ID: "recruitment-cta", Keywords: []string{"apply", "connect", "reach out", "call to action", "join us"}},
	{ID: "current-events", Keywords: []string{"holiday", "awareness", "celebration", "day", "week", "month", "thank you"}},
}

// ContentTypes returns the catalog in declaration order.
func ContentTypes() []ContentType {
	out := make([]ContentType, 0, len(contentTypes))
	for _, ct := range contentTypes {
		out = append(out, cloneContentType(ct))
	}
	return out
}

// GetContentType looks up a content type by its identifier.
func GetContentType(id string) (ContentType, bool) {
	for _, ct := range contentTypes {
		if ct.ID == id {
			return cloneContentType(ct), true
		}
	}
	return ContentType{}, false
}

// GetContentTypeByLabel resolves a display label (as stored in session state)
// back to its catalog entry.
func GetContentTypeByLabel(label string) (ContentType, bool) {
	return GetContentType(slugify(label))
}

func cloneContentType(ct ContentType) ContentType {
	ct.Platforms = append([]string(nil), ct.Platforms...)
	return ct
}
