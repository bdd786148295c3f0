package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFTPURL(t *testing.T) {
	host, path, err := parseFTPURL("ftp://data.example.gov/pub/facilities.csv")
	require.NoError(t, err)
	assert.Equal(t, "data.example.gov:21", host)
	assert.Equal(t, "/pub/facilities.csv", path)
}

func TestParseFTPURL_ExplicitPort(t *testing.T) {
	host, _, err := parseFTPURL("ftp://data.example.gov:2121/pub/facilities.csv")
	require.NoError(t, err)
	assert.Equal(t, "data.example.gov:2121", host)
}

func TestParseFTPURL_WrongScheme(t *testing.T) {
	_, _, err := parseFTPURL("https://example.gov/facilities.csv")
	assert.Error(t, err)
}

func TestParseFTPURL_EmptyPath(t *testing.T) {
	_, _, err := parseFTPURL("ftp://example.gov")
	assert.Error(t, err)
}
