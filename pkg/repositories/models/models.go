package models

// MatchRow is a row of the matches table. Record holds the match document,
// zstd compressed by the SQL repositories.
type MatchRow struct {
	ID        string `json:"id"`
	Record    []byte `json:"record"`
	UpdatedAt int64  `json:"updated_at"`
}

// IndexRow is a row of the match_index table. Position orders the index.
type IndexRow struct {
	ID       string `json:"id"`
	Position int64  `json:"position"`
	Mode     string `json:"mode"`
	Name     string `json:"name"`
}
