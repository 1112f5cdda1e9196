package ioadmin

type SaveConfigRequest struct {
	ImportPath     *string `json:"import_path"`
	ImportSchedule *string `json:"import_schedule"`
	ExportPath     *string `json:"export_path"`
	ExportSchedule *string `json:"export_schedule"`

	// ExportSeriesIDs is "all" or an array of serie ids.
	ExportSeriesIDs any `json:"export_series_ids"`
}

type ExportNowRequest struct {
	ExportPathOverride string `json:"export_path_override"`

	// SeriesIDsToExport is "all" or an array of serie ids.
	SeriesIDsToExport any `json:"series_ids_to_export"`
}

type ImportNowRequest struct {
	ImportPathOverride string `json:"import_path_override"`
}
