package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectJSON(t *testing.T, input string) ([]map[string]any, error) {
	t.Helper()
	var items []map[string]any
	err := StreamJSONArray(context.Background(), strings.NewReader(input), func(m map[string]any) error {
		items = append(items, m)
		return nil
	})
	return items, err
}

func TestStreamJSONArray(t *testing.T) {
	items, err := collectJSON(t, `[{"name_facility":"Serenity House"},{"name_facility":"Hope Center"}]`)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Serenity House", items[0]["name_facility"])
	assert.Equal(t, "Hope Center", items[1]["name_facility"])
}

func TestStreamJSONArray_Empty(t *testing.T) {
	items, err := collectJSON(t, "[]")
	assert.NoError(t, err)
	assert.Empty(t, items)
}

func TestStreamJSONArray_NotAnArray(t *testing.T) {
	_, err := collectJSON(t, `{"rows":[]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected '['")
}

func TestStreamJSONArray_MalformedElement(t *testing.T) {
	items, err := collectJSON(t, `[{"a":1},{bad}]`)
	assert.Len(t, items, 1)
	assert.Error(t, err)
}

func TestStreamJSONArray_EmitErrorStopsStream(t *testing.T) {
	stop := eris.New("enough")
	var n int
	err := StreamJSONArray(context.Background(), strings.NewReader(`[{"a":1},{"a":2},{"a":3}]`),
		func(map[string]any) error {
			n++
			if n == 2 {
				return stop
			}
			return nil
		})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, n)
}

func TestStreamJSONArray_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := StreamJSONArray(ctx, strings.NewReader(`[{"a":1}]`), func(map[string]any) error {
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
}
