package model

// WebSocket message types
const (
	WSMessageTypeSnapshot     = "snapshot"
	WSMessageTypeComplete     = "complete"
	WSMessageTypeError        = "error"
	WSMessageTypeNotification = "notification"
	WSMessageTypeList         = "list"
	WSMessageTypePing         = "ping"
	WSMessageTypePong         = "pong"
)

// Lists a WSListMessage can carry
const (
	ListKits  = "kits"
	ListFiles = "files"
)

type WSMessage struct {
	Type string `json:"type"`
}

// WSSnapshotMessage carries one poll result. Seq increases with every
// applied poll, so a view can ignore anything older than what it shows.
type WSSnapshotMessage struct {
	Type   string `json:"type"`
	JobID  string `json:"jobId"`
	Flow   string `json:"flow"`
	State  string `json:"state"`
	Seq    uint64 `json:"seq"`
	Status any    `json:"status,omitempty"`
}

type WSCompleteMessage struct {
	Type   string `json:"type"`
	JobID  string `json:"jobId"`
	Flow   string `json:"flow"`
	Result any    `json:"result"`
}

type WSErrorMessage struct {
	Type  string  `json:"type"`
	JobID string  `json:"jobId"`
	Error WSError `json:"error"`
}

type WSError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type WSNotificationMessage struct {
	Type         string       `json:"type"`
	Notification Notification `json:"notification"`
}

// WSListMessage replaces a list the user's views show, sent after a job
// changed it.
type WSListMessage struct {
	Type  string `json:"type"`
	List  string `json:"list"`
	Items any    `json:"items"`
}
