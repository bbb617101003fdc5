// Package nav owns the navigation field: a walkable-cell grid derived from
// the terrain heightfield and obstacle volumes, guarded by a reader/writer
// lock so path queries on worker goroutines never observe a partial rebuild.
package nav

// Settings describes the navigation build envelope. Values are captured by
// value at query submission, so a rebuild mid-flight never changes what an
// already-running query was asked to do.
type Settings struct {
	CellWidth                     float64 `yaml:"cell_width" json:"cellWidth"`
	CellHeight                    float64 `yaml:"cell_height" json:"cellHeight"`
	TileWidth                     float64 `yaml:"tile_width" json:"tileWidth"`
	WorldHalfExtents              float64 `yaml:"world_half_extents" json:"worldHalfExtents"`
	WorldBottomBound              float64 `yaml:"world_bottom_bound" json:"worldBottomBound"`
	MaxWalkableSlopeDegrees       float64 `yaml:"max_walkable_slope_degrees" json:"maxWalkableSlopeDegrees"`
	WalkableHeight                float64 `yaml:"walkable_height" json:"walkableHeight"`
	WalkableRadius                float64 `yaml:"walkable_radius" json:"walkableRadius"`
	StepHeight                    float64 `yaml:"step_height" json:"stepHeight"`
	MinRegionArea                 float64 `yaml:"min_region_area" json:"minRegionArea"`
	MergeRegionArea               float64 `yaml:"merge_region_area" json:"mergeRegionArea"`
	MaxContourSimplificationError float64 `yaml:"max_contour_simplification_error" json:"maxContourSimplificationError"`
	MaxEdgeLength                 float64 `yaml:"max_edge_length" json:"maxEdgeLength"`
	MaxTileGenerationTasks        int     `yaml:"max_tile_generation_tasks" json:"maxTileGenerationTasks"`
}

// DefaultSettings returns the shipped navigation envelope.
func DefaultSettings() Settings {
	return Settings{
		CellWidth:                     0.25,
		CellHeight:                    0.1,
		TileWidth:                     100,
		WorldHalfExtents:              250,
		WorldBottomBound:              -100,
		MaxWalkableSlopeDegrees:       40,
		WalkableHeight:                20,
		WalkableRadius:                1,
		StepHeight:                    3,
		MinRegionArea:                 100,
		MergeRegionArea:               500,
		MaxContourSimplificationError: 1.1,
		MaxEdgeLength:                 80,
		MaxTileGenerationTasks:        9,
	}
}

// Normalized fills zero-valued fields with defaults and clamps the rest to
// sane ranges. Level files specify only what they override.
func (s Settings) Normalized() Settings {
	def := DefaultSettings()
	if s.CellWidth <= 0 {
		s.CellWidth = def.CellWidth
	}
	if s.CellHeight <= 0 {
		s.CellHeight = def.CellHeight
	}
	if s.TileWidth <= 0 {
		s.TileWidth = def.TileWidth
	}
	if s.WorldHalfExtents <= 0 {
		s.WorldHalfExtents = def.WorldHalfExtents
	}
	if s.WorldBottomBound == 0 {
		s.WorldBottomBound = def.WorldBottomBound
	}
	if s.MaxWalkableSlopeDegrees <= 0 || s.MaxWalkableSlopeDegrees >= 90 {
		s.MaxWalkableSlopeDegrees = def.MaxWalkableSlopeDegrees
	}
	if s.WalkableHeight <= 0 {
		s.WalkableHeight = def.WalkableHeight
	}
	if s.WalkableRadius < 0 {
		s.WalkableRadius = def.WalkableRadius
	}
	if s.StepHeight <= 0 {
		s.StepHeight = def.StepHeight
	}
	if s.MinRegionArea <= 0 {
		s.MinRegionArea = def.MinRegionArea
	}
	if s.MergeRegionArea <= 0 {
		s.MergeRegionArea = def.MergeRegionArea
	}
	if s.MaxContourSimplificationError <= 0 {
		s.MaxContourSimplificationError = def.MaxContourSimplificationError
	}
	if s.MaxEdgeLength <= 0 {
		s.MaxEdgeLength = def.MaxEdgeLength
	}
	if s.MaxTileGenerationTasks <= 0 {
		s.MaxTileGenerationTasks = def.MaxTileGenerationTasks
	}
	return s
}
