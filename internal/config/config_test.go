package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "k3J9x!qTz7LmW2vR8pYc4NbH6sDf1GaE"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(envJWTSecret, testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultServerPort, cfg.Server.Port)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, BlobMemory, cfg.Blob.Driver)
	assert.Equal(t, defaultPublicBaseURL, cfg.App.PublicBaseURL)
	assert.Equal(t, defaultSessionTTL, cfg.App.SessionTTL)
	assert.False(t, cfg.App.SeedDemoData)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(envJWTSecret, testSecret)
	t.Setenv(envStoreDriver, "SQLite")
	t.Setenv(envSQLitePath, "/tmp/ck.db")
	t.Setenv(envPaymentDelay, "250ms")
	t.Setenv(envJWTExpiry, "30")
	t.Setenv(envPublicBaseURL, "https://clientkit.app/")
	t.Setenv(envSeedDemoData, "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, "/tmp/ck.db", cfg.Store.SQLitePath)
	assert.Equal(t, 250*time.Millisecond, cfg.App.PaymentDelay)
	assert.Equal(t, 30*time.Minute, cfg.JWT.ExpiryDuration)
	assert.Equal(t, "https://clientkit.app", cfg.App.PublicBaseURL)
	assert.True(t, cfg.App.SeedDemoData)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "missing jwt secret",
			env:  map[string]string{},
			want: envJWTSecret,
		},
		{
			name: "short jwt secret",
			env:  map[string]string{envJWTSecret: "short"},
			want: "at least",
		},
		{
			name: "unknown store driver",
			env:  map[string]string{envJWTSecret: testSecret, envStoreDriver: "etcd"},
			want: "STORE_DRIVER",
		},
		{
			name: "postgres without password",
			env:  map[string]string{envJWTSecret: testSecret, envStoreDriver: StorePostgres},
			want: envDBPassword,
		},
		{
			name: "s3 without bucket",
			env:  map[string]string{envJWTSecret: testSecret, envBlobDriver: BlobS3},
			want: envS3Bucket,
		},
		{
			name: "bad log format",
			env:  map[string]string{envJWTSecret: testSecret, envLogFormat: "xml"},
			want: "LOG_FORMAT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(envJWTSecret, "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	assert.True(t, hasMinimumEntropy(testSecret))
	assert.False(t, hasMinimumEntropy("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"))
}
