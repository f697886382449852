package domain

// TraceResult is the structured provenance analysis of a single article.
// It is always fully populated: extraction failures fall back to
// DefaultTraceResult so downstream rendering never needs a null check.
type TraceResult struct {
	Summary      string          `json:"summary"`
	Credibility  Credibility     `json:"credibility"`
	Origin       Origin          `json:"origin"`
	Spread       Spread          `json:"spread"`
	KeyPlayers   []KeyPlayer     `json:"keyPlayers"`
	Timeline     []TimelineEvent `json:"timeline"`
	Distortion   Distortion      `json:"distortion"`
	RelatedLinks []RelatedLink   `json:"relatedLinks"`
}

// Credibility scores how trustworthy the traced item looks.
type Credibility struct {
	Score  int    `json:"score"` // 0-10
	Level  string `json:"level"`
	Reason string `json:"reason"`
}

// Origin describes where and when the item first appeared.
type Origin struct {
	Source string `json:"source"`
	Time   string `json:"time"`
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

// Spread describes how the item propagated.
type Spread struct {
	Path   []string `json:"path"`
	Speed  string   `json:"speed"`
	Scope  string   `json:"scope"`
	Detail string   `json:"detail"`
}

// KeyPlayer is an account or outlet that drove the spread.
type KeyPlayer struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	Influence string `json:"influence"`
}

// TimelineEvent is one step of the propagation timeline.
type TimelineEvent struct {
	Time  string `json:"time"`
	Event string `json:"event"`
}

// Distortion flags whether the story mutated while spreading.
type Distortion struct {
	HasDistortion bool     `json:"hasDistortion"`
	Level         string   `json:"level"`
	Examples      []string `json:"examples"`
}

// RelatedLink points at coverage of the same story.
type RelatedLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// DefaultTraceResult builds the neutral fallback object served whenever
// extraction is impossible: mid-range score, "Unknown" levels, empty lists.
func DefaultTraceResult(source, message string) TraceResult {
	if source == "" {
		source = "Unknown"
	}
	if message == "" {
		message = "Unable to trace this news source"
	}
	return TraceResult{
		Summary: message,
		Credibility: Credibility{
			Score:  5,
			Level:  "Unknown",
			Reason: "Insufficient data for analysis",
		},
		Origin: Origin{
			Source: source,
			Time:   "Unknown",
			Type:   "Unknown",
			Detail: "Could not determine origin",
		},
		Spread: Spread{
			Path:   []string{},
			Speed:  "Unknown",
			Scope:  "Unknown",
			Detail: "No spread data available",
		},
		KeyPlayers: []KeyPlayer{},
		Timeline:   []TimelineEvent{},
		Distortion: Distortion{
			HasDistortion: false,
			Level:         "None",
			Examples:      []string{},
		},
		RelatedLinks: []RelatedLink{},
	}
}
