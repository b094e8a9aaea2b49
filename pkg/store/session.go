package store

import "time"

// Turn is a single question/answer exchange within a session.
type Turn struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// Session represents the active conversational session state in memory.
// It is exclusively owned by the session store; callers only ever see
// snapshots of its turns.
type Session struct {
	ID             string `json:"id"`
	Turns          []Turn `json:"turns"`
	WebSearchCount int    `json:"web_search_count"`
}
