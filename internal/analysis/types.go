package analysis

// TrackReport is the full statistics for one track.
type TrackReport struct {
	ID            string        `yaml:"id"`
	Name          string        `yaml:"name"`
	Artists       string        `yaml:"artists,omitempty"`
	Album         string        `yaml:"album,omitempty"`
	Aliases       []string      `yaml:"aliases,omitempty"`
	Plays         int64         `yaml:"plays"`
	Units         int64         `yaml:"units"`
	Certification string        `yaml:"certification"`
	UnitsToNext   int64         `yaml:"units_to_next"`
	Chart         ChartStats    `yaml:"chart"`
	Entries       []EntryReport `yaml:"entries,omitempty"`
}

type ChartStats struct {
	Peak                  string `yaml:"peak"`
	WeeksCharted          int    `yaml:"weeks_charted"`
	WeeksTop10            int    `yaml:"weeks_top_10"`
	WeeksNumberOne        int    `yaml:"weeks_number_one"`
	LongestStreak         int    `yaml:"longest_streak"`
	LongestStreakWithGaps int    `yaml:"longest_streak_with_gaps"`
	Points                int64  `yaml:"points"`
}

type EntryReport struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
	Rank  int    `yaml:"rank"`
	Plays int64  `yaml:"plays"`
	Score int64  `yaml:"score"`
	Move  string `yaml:"move"`
}

// CollectionReport summarises an album from its members and its own run on
// the album chart.
type CollectionReport struct {
	ID              string        `yaml:"id"`
	Title           string        `yaml:"title"`
	Artists         string        `yaml:"artists,omitempty"`
	Plays           int64         `yaml:"plays"`
	Units           int64         `yaml:"units"`
	Certification   string        `yaml:"certification"`
	Members         int           `yaml:"members"`
	ChartingMembers int           `yaml:"charting_members"`
	Top10Hits       int           `yaml:"top_10_hits"`
	TopMemberPeak   int           `yaml:"top_member_peak"`
	Peak            string        `yaml:"peak"`
	WeeksCharted    int           `yaml:"weeks_charted"`
	WeeksNumberOne  int           `yaml:"weeks_number_one"`
	Entries         []EntryReport `yaml:"entries,omitempty"`
}
