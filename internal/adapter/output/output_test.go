package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/platepix/internal/catalog"
	"github.com/jmylchreest/platepix/internal/widget"
)

func testEntries() []widget.Entry {
	day := time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)
	return []widget.Entry{
		{
			ID:      "01JA0000000000000000000000",
			Set:     catalog.SetMotivations,
			Title:   "Today's motivation",
			ItemID:  7,
			TextKey: "motivation.small_swaps",
			Text:    "Small swaps add up to big changes.",
			ThemeID: "ocean",
			Day:     day,
		},
		{
			Set:     catalog.SetReminders,
			Title:   "Reminder",
			ItemID:  2,
			TextKey: "reminder.rate_dinner",
			Text:    "How was dinner? Give it a rating.",
			ThemeID: "ocean",
			Day:     day,
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("waybar")
	require.NoError(t, err)
	assert.Equal(t, FormatWaybar, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestPlainFormatter_Default(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(DefaultFormatterOptions()).Format(&buf, testEntries()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Today's motivation: Small swaps add up to big changes.", lines[0])
	assert.Equal(t, "Reminder: How was dinner? Give it a rating.", lines[1])
}

func TestPlainFormatter_NoTitle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(FormatterOptions{}).Format(&buf, testEntries()[:1]))
	assert.Equal(t, "Small swaps add up to big changes.\n", buf.String())
}

func TestPlainFormatter_Template(t *testing.T) {
	opts := FormatterOptions{Template: "{{.Set}}#{{.ItemID}} {{date .Day}}"}
	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(opts).Format(&buf, testEntries()))
	assert.Equal(t, "motivations#7 2026-10-15\nreminders#2 2026-10-15\n", buf.String())
}

func TestPlainFormatter_InvalidTemplateFallsBack(t *testing.T) {
	opts := FormatterOptions{Template: "{{.Broken"}
	var buf bytes.Buffer
	require.NoError(t, NewPlainFormatter(opts).Format(&buf, testEntries()[:1]))
	assert.Equal(t, "Small swaps add up to big changes.\n", buf.String())
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(DefaultFormatterOptions()).Format(&buf, testEntries()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "motivations", decoded[0]["set"])
	assert.Equal(t, float64(7), decoded[0]["item_id"])
	assert.Equal(t, "motivation.small_swaps", decoded[0]["text_key"])
}

func TestWaybarFormatter(t *testing.T) {
	opts := FormatterOptions{RefreshAt: time.Now().Add(3 * time.Hour)}
	var buf bytes.Buffer
	require.NoError(t, NewWaybarFormatter(opts).Format(&buf, testEntries()))

	var status WaybarStatus
	require.NoError(t, json.Unmarshal(buf.Bytes(), &status))
	assert.Equal(t, "Small swaps add up to big changes.", status.Text)
	assert.Equal(t, "motivations", status.Alt)
	assert.Equal(t, "ocean", status.Class)
	assert.Contains(t, status.Tooltip, "Reminder: How was dinner?")
	assert.Contains(t, status.Tooltip, "Next refresh")
}

func TestWaybarFormatter_Empty(t *testing.T) {
	status := NewWaybarFormatter(FormatterOptions{}).Status(nil)
	assert.Equal(t, "empty", status.Class)
	assert.Empty(t, status.Text)
}

func TestWaybarFormatter_Placeholder(t *testing.T) {
	entries := []widget.Entry{{Title: "Today's motivation", Text: "…", Placeholder: true}}
	status := NewWaybarFormatter(FormatterOptions{}).Status(entries)
	assert.Equal(t, "placeholder", status.Class)
	assert.NotContains(t, status.Tooltip, "Next refresh")
}

func TestCardFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatCard, FormatterOptions{Width: 60}).Format(&buf, testEntries()))
	assert.Contains(t, buf.String(), "Today's motivation")
	assert.Contains(t, buf.String(), "Reminder")
}
