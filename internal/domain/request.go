package domain

// CreateBattleRequest is the client request to start a new battle.
type CreateBattleRequest struct {
	ParticipantA string `json:"participant_a"`
	ParticipantB string `json:"participant_b"`
	Rounds       int    `json:"rounds"`
}

// CreateBattleResponse carries the id of a freshly created battle.
type CreateBattleResponse struct {
	ID string `json:"id"`
}

// BattleSnapshot is the read-only wire view of a battle's current state.
type BattleSnapshot struct {
	ID           string  `json:"id"`
	ParticipantA string  `json:"participant_a"`
	ParticipantB string  `json:"participant_b"`
	CurrentRound int     `json:"current_round"`
	TotalRounds  int     `json:"total_rounds"`
	Verses       []Verse `json:"verses"`
	Complete     bool    `json:"complete"`
}
