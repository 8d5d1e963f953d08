package file

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSettingsService(t *testing.T) {
	testCases := []struct {
		desc    string
		file    string
		want    Settings
		wantErr bool
	}{
		{
			desc: "No file serves defaults",
			file: "",
			want: DefaultSettings(),
		},
		{
			desc: "Complete file",
			file: "testdata/settings.yaml",
			want: Settings{Title: "Peekaboo test", ImageSize: 64, MaxIterations: 100},
		},
		{
			desc: "Missing fields use defaults",
			file: "testdata/partial.yaml",
			want: Settings{Title: "Partial", ImageSize: 512, MaxIterations: 500},
		},
		{
			desc:    "Invalid settings",
			file:    "testdata/invalid.yaml",
			wantErr: true,
		},
		{
			desc:    "Missing file",
			file:    "testdata/missing.yaml",
			wantErr: true,
		},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			ss, err := NewSettingsService(tC.file, newNullLogger())

			if tC.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tC.want, ss.Current())
		})
	}
}

func TestSettingsService_Reload(t *testing.T) {
	file := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, ioutil.WriteFile(file, []byte("title: Before\n"), 0644))

	ss, err := readSettingsService(file, newNullLogger())
	require.NoError(t, err)
	assert.Equal(t, "Before", ss.Current().Title)

	// invalid changes keep the previous settings
	require.NoError(t, ioutil.WriteFile(file, []byte("title: Broken\nimage_size: 0\n"), 0644))
	require.NoError(t, ss.viper.ReadInConfig())
	assert.Error(t, ss.loadSettings())
	assert.Equal(t, "Before", ss.Current().Title)

	require.NoError(t, ioutil.WriteFile(file, []byte("title: After\nmax_iterations: 42\n"), 0644))
	require.NoError(t, ss.viper.ReadInConfig())
	require.NoError(t, ss.loadSettings())
	assert.Equal(t, Settings{Title: "After", ImageSize: 512, MaxIterations: 42}, ss.Current())
}

func TestValidateSettings(t *testing.T) {
	testCases := []struct {
		desc     string
		settings Settings
		wantErr  bool
	}{
		{desc: "defaults", settings: DefaultSettings()},
		{desc: "empty title", settings: Settings{ImageSize: 1, MaxIterations: 1}, wantErr: true},
		{desc: "zero image size", settings: Settings{Title: "t", MaxIterations: 1}, wantErr: true},
		{desc: "huge image size", settings: Settings{Title: "t", ImageSize: maxImageSize + 1, MaxIterations: 1}, wantErr: true},
		{desc: "zero iterations", settings: Settings{Title: "t", ImageSize: 1}, wantErr: true},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			err := validateSettings(tC.settings)
			assert.Equal(t, tC.wantErr, err != nil, "got %v", err)
		})
	}
}

func newNullLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Out = ioutil.Discard

	return logger
}
