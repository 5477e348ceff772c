package settings

// settingsFile mirrors ServerSettings with pointer fields so the merge
// can tell "absent from the file" apart from a zero value. Unknown keys
// in the file are not represented here and are dropped on the next Save.
type settingsFile struct {
	Version  *string `json:"version"`
	Server   *struct {
		Port *int    `json:"port"`
		Host *string `json:"host"`
	} `json:"server"`
	Database *struct {
		Path *string `json:"path"`
	} `json:"database"`
	Session *struct {
		TimeoutMinutes *int `json:"timeout_minutes"`
	} `json:"session"`
}

// mergeOverDefaults fills every field absent from the parsed file with
// the corresponding default. The merge is per field, not per group: a
// file that sets only server.port still inherits server.host. It builds
// a new document and leaves the defaults untouched.
func (f settingsFile) mergeOverDefaults(base ServerSettings) ServerSettings {
	merged := base
	if f.Version != nil {
		merged.Version = *f.Version
	}
	if f.Server != nil {
		if f.Server.Port != nil {
			merged.Server.Port = *f.Server.Port
		}
		if f.Server.Host != nil {
			merged.Server.Host = *f.Server.Host
		}
	}
	if f.Database != nil {
		if f.Database.Path != nil {
			merged.Database.Path = *f.Database.Path
		}
	}
	if f.Session != nil {
		if f.Session.TimeoutMinutes != nil {
			merged.Session.TimeoutMinutes = *f.Session.TimeoutMinutes
		}
	}
	return merged
}
