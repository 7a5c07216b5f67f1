package notifications

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed_SeveritiesAndOrder(t *testing.T) {
	feed := NewFeed(10, discardLogger())

	feed.Success("Email Sent", "ok")
	feed.Error("Email Failed", "boom")
	feed.Warning("Email Setup Required", "configure it")
	feed.Info("Email Queued", "later")

	toasts := feed.Recent()
	require.Len(t, toasts, 4)

	assert.Equal(t, SeveritySuccess, toasts[0].Severity)
	assert.Equal(t, SeverityError, toasts[1].Severity)
	assert.Equal(t, SeverityWarning, toasts[2].Severity)
	assert.Equal(t, SeverityInfo, toasts[3].Severity)
	assert.Equal(t, "Email Sent", toasts[0].Title)
	assert.Equal(t, "later", toasts[3].Message)
	assert.False(t, toasts[0].CreatedAt.IsZero())
}

func TestFeed_BoundedRingDropsOldest(t *testing.T) {
	feed := NewFeed(3, discardLogger())

	for i := 0; i < 5; i++ {
		feed.Info("n", fmt.Sprintf("%d", i))
	}

	toasts := feed.Recent()
	require.Len(t, toasts, 3)
	assert.Equal(t, "2", toasts[0].Message)
	assert.Equal(t, "4", toasts[2].Message)
}

func TestFeed_RecentReturnsCopy(t *testing.T) {
	feed := NewFeed(5, discardLogger())
	feed.Info("a", "b")

	toasts := feed.Recent()
	toasts[0].Title = "mutated"

	assert.Equal(t, "a", feed.Recent()[0].Title)
}
