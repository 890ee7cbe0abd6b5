package entity

import "time"

// TransitionHistory is one row of the audit trail the embedding service
// keeps for each document transition
type TransitionHistory struct {
	ID            int64     `json:"id"`
	DocumentID    int64     `json:"document_id"`
	ActorID       string    `json:"actor_id"`
	PreviousStage string    `json:"previous_stage"`
	NewStage      string    `json:"new_stage"`
	Trigger       string    `json:"trigger"`
	Note          string    `json:"note"`
	Timestamp     time.Time `json:"timestamp"`
}
