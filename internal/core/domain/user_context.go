package domain

// ViewerContext describes the user an ad slot is being filled for. The HTTP
// layer builds it from the identity provider and the request body.
type ViewerContext struct {
	UserID         string   `json:"user_id"`
	NetWorthTier   string   `json:"net_worth_tier"`
	InfluenceScore float64  `json:"influence_score"`
	Interests      []string `json:"interests"`
	Industry       string   `json:"industry"`
	Country        string   `json:"country"`
	City           string   `json:"city"`
	Platform       string   `json:"platform"`
	DeviceType     string   `json:"device_type"`
}

// PlacementRequest asks the auction to fill one slot.
type PlacementRequest struct {
	Viewer    ViewerContext `json:"viewer"`
	Placement string        `json:"placement"`
}
