package driven

// ConfigStore holds raw settings under dotted keys such as
// "chunking.size". Typed getters return the zero value for missing or
// mistyped keys; SettingsService turns the raw values into
// domain.AppSettings.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetFloat(key string) float64

	// Set stores a value and persists it.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path is the backing file, or "" for stores without one.
	Path() string
}
