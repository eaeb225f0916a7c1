package models

// FollowupSession is a server-issued set of clarifying questions together
// with the user's answers, aligned by index.
type FollowupSession struct {
	ID        string   `yaml:"session_id" json:"sessionId"`
	UserID    string   `yaml:"user_id" json:"user_id"`
	Questions []string `yaml:"questions" json:"questions"`
	Answers   []string `yaml:"answers" json:"answers"`
	Index     int      `yaml:"index" json:"index"`
}

// FollowupStart is the backend's answer to POST /followups/start.
type FollowupStart struct {
	Success   bool     `json:"success"`
	SessionID string   `json:"sessionId"`
	Questions []string `json:"questions"`
	Message   string   `json:"message,omitempty"`
}

// Ack is a bare success/message response.
type Ack struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
