package file

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	maxImageSize     = 4096
	maxMaxIterations = 100000
)

// Settings drive how pages and images are rendered
type Settings struct {
	Title         string `mapstructure:"title"`
	ImageSize     int    `mapstructure:"image_size"`
	MaxIterations int    `mapstructure:"max_iterations"`
}

// DefaultSettings are used when no settings file is given
func DefaultSettings() Settings {
	return Settings{
		Title:         "Peekaboo",
		ImageSize:     512,
		MaxIterations: 500,
	}
}

// SettingsService serves the settings file, reloading it when it changes
type SettingsService struct {
	viper    *viper.Viper
	settings Settings
	mux      *sync.RWMutex
	logger   *logrus.Logger
}

// NewSettingsService reads and watches the given settings file. An empty file
// name serves the default settings.
func NewSettingsService(file string, logger *logrus.Logger) (*SettingsService, error) {
	ss, err := readSettingsService(file, logger)
	if err != nil {
		return nil, err
	}

	if ss.viper != nil {
		ss.viper.WatchConfig()
		ss.viper.OnConfigChange(func(e fsnotify.Event) {
			ss.logger.WithField("file", e.Name).Info("settings file changed")
			if err := ss.loadSettings(); err != nil {
				ss.logger.WithError(err).Error("keeping previous settings")
			}
		})
	}

	return ss, nil
}

func readSettingsService(file string, logger *logrus.Logger) (*SettingsService, error) {
	ss := &SettingsService{
		settings: DefaultSettings(),
		mux:      &sync.RWMutex{},
		logger:   logger,
	}
	if file == "" {
		return ss, nil
	}

	v := viper.New()
	defaults := DefaultSettings()
	v.SetDefault("title", defaults.Title)
	v.SetDefault("image_size", defaults.ImageSize)
	v.SetDefault("max_iterations", defaults.MaxIterations)
	v.SetConfigFile(file)

	err := v.ReadInConfig()
	if err != nil {
		return nil, errors.Wrap(err, "error reading in settings file")
	}

	ss.viper = v
	err = ss.loadSettings()
	if err != nil {
		return nil, errors.Wrap(err, "error loading settings")
	}

	return ss, nil
}

// Current returns a copy of the settings in use
func (ss *SettingsService) Current() Settings {
	ss.mux.RLock()
	defer ss.mux.RUnlock()

	return ss.settings
}

func (ss *SettingsService) loadSettings() error {
	var settings Settings
	err := ss.viper.Unmarshal(&settings)
	if err != nil {
		return errors.Wrap(err, "error on settings unmarshal")
	}

	err = validateSettings(settings)
	if err != nil {
		return errors.Wrap(err, "settings file is invalid")
	}

	ss.mux.Lock()
	defer ss.mux.Unlock()
	ss.settings = settings

	return nil
}

func validateSettings(s Settings) error {
	if s.Title == "" {
		return errors.Errorf("empty title")
	}

	if s.ImageSize < 1 || s.ImageSize > maxImageSize {
		return errors.Errorf("invalid image size (%d)", s.ImageSize)
	}

	if s.MaxIterations < 1 || s.MaxIterations > maxMaxIterations {
		return errors.Errorf("invalid max iterations (%d)", s.MaxIterations)
	}

	return nil
}
