package s3

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"clientkit/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(&config.AWSConfig{
		Region:          "eu-west-1",
		AccessKeyID:     "AKIAEXAMPLE",
		SecretAccessKey: "secret",
	}, "clientkit-uploads", 15*time.Minute)
	require.NoError(t, err)
	return c
}

func TestDownloadURL_PresignsOffline(t *testing.T) {
	c := newTestClient(t)

	raw, err := c.DownloadURL(context.Background(), "submissions/s1/f1/brief.pdf")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(u.Path, "/submissions/s1/f1/brief.pdf"))
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
}

func TestDownloadURL_Cached(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	first, err := c.DownloadURL(ctx, "k")
	require.NoError(t, err)
	second, err := c.DownloadURL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSweepURLs_KeepsFreshEntries(t *testing.T) {
	c := newTestClient(t)

	_, err := c.DownloadURL(context.Background(), "k")
	require.NoError(t, err)

	assert.Equal(t, 0, c.SweepURLs())
	_, ok := c.urls.Get("k")
	assert.True(t, ok)
}
