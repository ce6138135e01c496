package models

// CompetitorEntry is one line of the day's race card: a racer's name and the
// boat number fixed by the starting-position draw. Entries are ephemeral,
// sourced externally per race.
type CompetitorEntry struct {
	BoatNumber int    `json:"lane" validate:"required,min=1,max=6"` // snapshot files keep the historical "lane" key
	Name       string `json:"name" validate:"required"`
}
