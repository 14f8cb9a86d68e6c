package domain

import "time"

// OutputMeta identifies the run that produced an output file.
type OutputMeta struct {
	RunID   string
	Mission Mission
}

// RunSummary describes a completed gridding run.
type RunSummary struct {
	RunID      string `json:"run_id"`
	Mission    string `json:"mission"`
	OutputPath string `json:"output_path"`
	OutputURI  string `json:"output_uri,omitempty"`

	Tiles          map[TileStatus]int `json:"tiles"`
	FamilyFallback int                `json:"family_fallbacks"`

	RawRecords      int `json:"raw_records"`
	QCRecords       int `json:"qc_records"`
	HoursTotal      int `json:"hours_total"`
	HoursSkipped    int `json:"hours_skipped"`
	Collocated      int `json:"collocated_records"`
	OutputRecords   int `json:"output_records"`
	GridWaterPoints int `json:"grid_water_points"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// LogArgs flattens the summary into slog key/value pairs.
func (s RunSummary) LogArgs() []any {
	return []any{
		"run_id", s.RunID,
		"mission", s.Mission,
		"output", s.OutputPath,
		"tiles_ok", s.Tiles[TileOK],
		"tiles_absent", s.Tiles[TileAbsent],
		"tiles_short", s.Tiles[TileShort],
		"tiles_malformed", s.Tiles[TileMalformed],
		"raw_records", s.RawRecords,
		"qc_records", s.QCRecords,
		"hours", s.HoursTotal,
		"hours_skipped", s.HoursSkipped,
		"collocated", s.Collocated,
		"output_records", s.OutputRecords,
		"duration", s.FinishedAt.Sub(s.StartedAt),
	}
}

// Progress is a point-in-time view of a running pipeline.
type Progress struct {
	RunID      string `json:"run_id"`
	Mission    string `json:"mission"`
	Stage      string `json:"stage"`
	TilesRead  int    `json:"tiles_read"`
	TilesTotal int    `json:"tiles_total"`
	Records    int    `json:"records"`
}
