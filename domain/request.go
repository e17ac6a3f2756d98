package domain

// RequestType distinguishes item requests from service requests.
type RequestType string

const (
	RequestItem    RequestType = "Item"
	RequestService RequestType = "Service"
)

// Request is something a resident has asked staff for.
type Request struct {
	ID        string      `json:"id"`
	Type      RequestType `json:"type"`
	Text      string      `json:"text"`
	Timestamp int64       `json:"timestamp"`
	Completed bool        `json:"completed"`
}
