package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
	tempDir string
	origDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) SetupTest() {
	var err error
	s.origDir, err = os.Getwd()
	require.NoError(s.T(), err)

	// Run in a scratch directory so no stray shpattr.yaml is picked up.
	s.tempDir = s.T().TempDir()
	require.NoError(s.T(), os.Chdir(s.tempDir))
}

func (s *ConfigTestSuite) TearDownTest() {
	if s.origDir != "" {
		os.Chdir(s.origDir)
	}
}

func (s *ConfigTestSuite) TestDefaults() {
	cfg, err := Load("")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), cfg)

	assert.Equal(s.T(), ".", cfg.WorkingDir)
	assert.False(s.T(), cfg.Verbose)
	assert.Empty(s.T(), cfg.LogFile)
	assert.Equal(s.T(), "localhost", cfg.Database.Host)
	assert.Equal(s.T(), "1521", cfg.Database.Port)
	assert.Equal(s.T(), "XE", cfg.Database.Service)
}

func (s *ConfigTestSuite) TestExplicitFile() {
	path := filepath.Join(s.tempDir, "custom.yaml")
	content := `
working_dir: /srv/gis
verbose: true
log_file: /var/log/shpattr.log
database:
  host: db.example.com
  port: "1522"
  service: GISPDB
  username: gis
  wallet_location: /etc/oracle/wallet
`
	require.NoError(s.T(), os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), "/srv/gis", cfg.WorkingDir)
	assert.True(s.T(), cfg.Verbose)
	assert.Equal(s.T(), "/var/log/shpattr.log", cfg.LogFile)
	assert.Equal(s.T(), "db.example.com", cfg.Database.Host)
	assert.Equal(s.T(), "1522", cfg.Database.Port)
	assert.Equal(s.T(), "GISPDB", cfg.Database.Service)
	assert.Equal(s.T(), "gis", cfg.Database.Username)
	assert.Equal(s.T(), "/etc/oracle/wallet", cfg.Database.WalletLocation)
}

func (s *ConfigTestSuite) TestDiscoveredFile() {
	content := "working_dir: data\n"
	require.NoError(s.T(), os.WriteFile(filepath.Join(s.tempDir, "shpattr.yaml"), []byte(content), 0o644))

	cfg, err := Load("")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "data", cfg.WorkingDir)
	// Unset keys keep their defaults.
	assert.Equal(s.T(), "localhost", cfg.Database.Host)
}

func (s *ConfigTestSuite) TestMissingExplicitFile() {
	_, err := Load(filepath.Join(s.tempDir, "nope.yaml"))
	assert.Error(s.T(), err)
}
