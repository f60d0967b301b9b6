package events

// ClickRecorded is the queue payload for a redirect click. Nullable fields
// are encoded as JSON null, never omitted.
type ClickRecorded struct {
	LinkID    string  `json:"linkId"`
	ClickedAt string  `json:"clickedAt"`
	Referrer  *string `json:"referrer"`
	UserAgent *string `json:"userAgent"`
	IPHash    string  `json:"ipHash"`
	Country   *string `json:"country"`
}
