package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"testing"
	"unicode/utf16"

	"releasewatch/internal/model"
	"releasewatch/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	chatID int64
	text   string
	err    error
	calls  int
}

func (f *fakeSender) SendMessage(chatID int64, text string) error {
	f.calls++
	f.chatID = chatID
	f.text = text
	return f.err
}

func TestChannelPublisher_Publish(t *testing.T) {
	sender := &fakeSender{}
	publisher := NewChannelPublisher(sender, 42)

	err := publisher.Publish(context.Background(), "Новые релизы", `Radiohead выпустили "OK <Computer>"`)
	require.NoError(t, err)

	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, int64(42), sender.chatID)
	assert.Equal(t, "<b>Новые релизы</b>\n\nRadiohead выпустили &#34;OK &lt;Computer&gt;&#34;", sender.text)
}

func TestChannelPublisher_PublishError(t *testing.T) {
	sender := &fakeSender{err: errors.New("chat not found")}
	publisher := NewChannelPublisher(sender, 42)

	err := publisher.Publish(context.Background(), "subject", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
	assert.Equal(t, 1, sender.calls)
}

func TestChannelPublisher_PublishCancelled(t *testing.T) {
	sender := &fakeSender{}
	publisher := NewChannelPublisher(sender, 42)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := publisher.Publish(ctx, "subject", "body")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sender.calls)
}

func TestFormatNotification_EmptyBody(t *testing.T) {
	assert.Equal(t, "<b>A &amp; B</b>", FormatNotification("A & B", "  "))
}

func TestChannelPublisher_LargeDigestFitsMessageLimit(t *testing.T) {
	digest := make([]model.ChangeRecord, 0, 80)
	for i := 1; i <= 80; i++ {
		digest = append(digest, model.ChangeRecord{
			ArtistID:   fmt.Sprintf("id-%d", i),
			ArtistName: fmt.Sprintf("Artist & Friends %d", i),
			Kind:       model.ReleaseKindSingle,
			Snapshot: model.ReleaseSnapshot{
				Kind:        model.ReleaseKindSingle,
				Name:        fmt.Sprintf("<Single> \"%d\" with a rather long release title", i),
				ReleaseDate: "2024-03-01",
			},
		})
	}

	sender := &fakeSender{}
	publisher := NewChannelPublisher(sender, 42)

	subject, body := service.ComposeDigest(digest)
	require.NoError(t, publisher.Publish(context.Background(), subject, body))

	assert.Equal(t, 1, sender.calls)
	visible := html.UnescapeString(sender.text)
	assert.LessOrEqual(t, len(utf16.Encode([]rune(visible))), 4096)
	assert.Contains(t, visible, "…и ещё ")
}
