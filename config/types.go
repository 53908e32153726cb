package config

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0"`
}

// StoreConfig locates the static schedule reference store (SQLite)
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ProtoConfig locates the locally cached GTFS-Realtime schema files
type ProtoConfig struct {
	Dir string `yaml:"dir"`
}

// Station is one stop the dashboard watches. Feed names the realtime feed
// the stop belongs to; StopID is the identifier used by that feed.
type Station struct {
	StopID string `yaml:"stopId" validate:"required"`
	Label  string `yaml:"label"`
	Feed   string `yaml:"feed" validate:"required"`
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server   ServerConfig `yaml:"server"`
	Store    StoreConfig  `yaml:"store"`
	Proto    ProtoConfig  `yaml:"proto"`
	Stations []Station    `yaml:"stations"`
}

// StationsForFeed returns the watched stations belonging to one feed.
func (c *AppConfig) StationsForFeed(feedKey string) []Station {
	var out []Station
	for _, s := range c.Stations {
		if s.Feed == feedKey {
			out = append(out, s)
		}
	}
	return out
}
