package handlers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"releasewatch/internal/model"
	"releasewatch/internal/service"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type sentMessage struct {
	chatID   int64
	text     string
	keyboard *tgbotapi.InlineKeyboardMarkup
}

type fakeBot struct {
	mu       sync.Mutex
	sent     []sentMessage
	edited   []string
	answered []string
}

func (f *fakeBot) SendMessage(chatID int64, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func (f *fakeBot) SendMessageWithKeyboard(chatID int64, text string, markup tgbotapi.InlineKeyboardMarkup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text, keyboard: &markup})
	return nil
}

func (f *fakeBot) EditMessage(_ int64, _ int, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edited = append(f.edited, text)
	return nil
}

func (f *fakeBot) AnswerCallbackQuery(_ string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answered = append(f.answered, text)
	return nil
}

func (f *fakeBot) last() sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

type fakeArtists struct {
	artists    []model.MonitoredArtist
	candidates []model.Candidate
	searchErr  error
	addErr     error
	listErr    error
	refreshed  int
}

func (f *fakeArtists) List(context.Context) ([]model.MonitoredArtist, error) {
	return f.artists, f.listErr
}

func (f *fakeArtists) Search(context.Context, string) ([]model.Candidate, error) {
	return f.candidates, f.searchErr
}

func (f *fakeArtists) Add(_ context.Context, artist model.MonitoredArtist) error {
	if f.addErr != nil {
		return f.addErr
	}
	f.artists = append(f.artists, artist)
	return nil
}

func (f *fakeArtists) Remove(_ context.Context, artistID string) (model.MonitoredArtist, error) {
	for i, artist := range f.artists {
		if artist.ID == artistID {
			f.artists = append(f.artists[:i], f.artists[i+1:]...)
			return artist, nil
		}
	}
	return model.MonitoredArtist{}, model.ErrArtistNotFound
}

func (f *fakeArtists) Refresh() { f.refreshed++ }

type fakeTrigger struct {
	report *service.RunReport
	err    error
}

func (f *fakeTrigger) RunNow(context.Context) (*service.RunReport, error) {
	return f.report, f.err
}

const chatID int64 = 42

func command(text string) *tgbotapi.Message {
	length := len(text)
	for i, r := range text {
		if r == ' ' {
			length = i
			break
		}
	}
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: 1, UserName: "owner"},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

func callback(data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: 1, UserName: "owner"},
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}
}

func newTestHandlers(artists *fakeArtists, trigger *fakeTrigger) (*Handlers, *fakeBot) {
	bot := &fakeBot{}
	return New(artists, trigger, bot, "owner", zap.NewNop()), bot
}

func TestHandlers_Artists(t *testing.T) {
	h, bot := newTestHandlers(&fakeArtists{artists: []model.MonitoredArtist{
		{ID: "id-1", Name: "Radiohead"},
		{ID: "id-2", Name: "Simon & Garfunkel"},
	}}, &fakeTrigger{})

	require.NoError(t, h.Artists(context.Background(), command("/artists")))
	text := bot.last().text
	assert.Contains(t, text, "Отслеживаемые артисты (2)")
	assert.Contains(t, text, "2. Simon &amp; Garfunkel")
}

func TestHandlers_ArtistsEmpty(t *testing.T) {
	h, bot := newTestHandlers(&fakeArtists{}, &fakeTrigger{})

	require.NoError(t, h.Artists(context.Background(), command("/artists")))
	assert.Contains(t, bot.last().text, "Список артистов пуст")
}

func TestHandlers_ArtistsStoreFailure(t *testing.T) {
	storeErr := errors.New("connection refused")
	h, bot := newTestHandlers(&fakeArtists{listErr: storeErr}, &fakeTrigger{})

	err := h.Artists(context.Background(), command("/artists"))
	assert.ErrorIs(t, err, storeErr)
	assert.Contains(t, bot.last().text, "Произошла ошибка")
}

func TestHandlers_AddFlow(t *testing.T) {
	artists := &fakeArtists{candidates: []model.Candidate{
		{ID: "id-1", Name: "Radiohead", Genres: []string{"Art Rock"}},
		{ID: "id-2", Name: "Radiohead Tribute"},
	}}
	h, bot := newTestHandlers(artists, &fakeTrigger{})
	ctx := context.Background()

	require.NoError(t, h.Add(ctx, command("/add Radiohead")))
	msg := bot.last()
	require.NotNil(t, msg.keyboard)
	assert.Len(t, msg.keyboard.InlineKeyboard, 3)
	assert.Contains(t, msg.text, "<b>Radiohead</b>")

	require.NoError(t, h.CallbackQuery(ctx, callback("add:id-1")))
	require.Len(t, artists.artists, 1)
	assert.Equal(t, "Radiohead", artists.artists[0].Name)
	assert.Contains(t, bot.edited[0], "Добавлен артист")

	// Повторное нажатие: кандидаты уже использованы
	require.NoError(t, h.CallbackQuery(ctx, callback("add:id-1")))
	assert.Len(t, artists.artists, 1)
	assert.Contains(t, bot.answered[len(bot.answered)-1], "устарел")
}

func TestHandlers_AddUsage(t *testing.T) {
	h, bot := newTestHandlers(&fakeArtists{}, &fakeTrigger{})

	require.NoError(t, h.Add(context.Background(), command("/add")))
	assert.Contains(t, bot.last().text, "Использование")
}

func TestHandlers_AddErrors(t *testing.T) {
	tests := []struct {
		name      string
		artists   *fakeArtists
		wantText  string
		wantError bool
	}{
		{
			name:     "no candidates",
			artists:  &fakeArtists{searchErr: model.ErrNoCandidates},
			wantText: "ничего не найдено",
		},
		{
			name:      "auth expired",
			artists:   &fakeArtists{searchErr: model.ErrAuthExpired},
			wantText:  "авторизоваться",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, bot := newTestHandlers(tt.artists, &fakeTrigger{})

			err := h.Add(context.Background(), command("/add nobody"))
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, bot.last().text, tt.wantText)
		})
	}
}

func TestHandlers_AddDuplicate(t *testing.T) {
	artists := &fakeArtists{
		candidates: []model.Candidate{{ID: "id-1", Name: "Radiohead"}},
		addErr:     model.ErrArtistAlreadyMonitored,
	}
	h, bot := newTestHandlers(artists, &fakeTrigger{})
	ctx := context.Background()

	require.NoError(t, h.Add(ctx, command("/add Radiohead")))
	require.NoError(t, h.CallbackQuery(ctx, callback("add:id-1")))
	assert.Contains(t, bot.last().text, "уже отслеживается")
}

func TestHandlers_RemoveFlow(t *testing.T) {
	artists := &fakeArtists{artists: []model.MonitoredArtist{{ID: "id-1", Name: "Björk"}}}
	h, bot := newTestHandlers(artists, &fakeTrigger{})
	ctx := context.Background()

	require.NoError(t, h.Remove(ctx, command("/remove")))
	require.NotNil(t, bot.last().keyboard)

	require.NoError(t, h.CallbackQuery(ctx, callback("rm:id-1")))
	assert.Empty(t, artists.artists)
	assert.Contains(t, bot.edited[0], "Удален артист: <b>Björk</b>")

	require.NoError(t, h.CallbackQuery(ctx, callback("rm:id-1")))
	assert.Contains(t, bot.last().text, "не найден")
}

func TestHandlers_Cancel(t *testing.T) {
	artists := &fakeArtists{candidates: []model.Candidate{{ID: "id-1", Name: "Radiohead"}}}
	h, bot := newTestHandlers(artists, &fakeTrigger{})
	ctx := context.Background()

	require.NoError(t, h.Add(ctx, command("/add Radiohead")))
	require.NoError(t, h.CallbackQuery(ctx, callback("cancel")))
	assert.Equal(t, "Отменено", bot.edited[0])

	require.NoError(t, h.CallbackQuery(ctx, callback("add:id-1")))
	assert.Empty(t, artists.artists)
}

func TestHandlers_Refresh(t *testing.T) {
	artists := &fakeArtists{artists: []model.MonitoredArtist{{ID: "id-1", Name: "Björk"}}}
	h, bot := newTestHandlers(artists, &fakeTrigger{})

	require.NoError(t, h.Refresh(context.Background(), command("/refresh")))
	assert.Equal(t, 1, artists.refreshed)
	assert.Contains(t, bot.last().text, "1 артистов")
}

func TestHandlers_Check(t *testing.T) {
	started := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	trigger := &fakeTrigger{report: &service.RunReport{
		StartedAt:  started,
		FinishedAt: started.Add(1500 * time.Millisecond),
		Results: []service.EntityResult{
			{Status: service.FetchOK},
			{Status: service.FetchFailed},
		},
		Digest: []model.ChangeRecord{{ArtistID: "id-1"}},
	}}
	h, bot := newTestHandlers(&fakeArtists{}, trigger)

	require.NoError(t, h.Check(context.Background(), command("/check")))
	h.Wait()

	text := bot.last().text
	assert.Contains(t, text, "Артистов: 2")
	assert.Contains(t, text, "Новых релизов: 1")
	assert.Contains(t, text, "Пропущено из-за ошибок: 1")
	assert.Contains(t, text, "1.5s")
}

func TestHandlers_CheckInProgress(t *testing.T) {
	h, bot := newTestHandlers(&fakeArtists{}, &fakeTrigger{err: service.ErrRunInProgress})

	require.NoError(t, h.Check(context.Background(), command("/check")))
	h.Wait()

	assert.Contains(t, bot.last().text, "уже выполняется")
}

func TestHandlers_RegisterBotCommands(t *testing.T) {
	h, _ := newTestHandlers(&fakeArtists{}, &fakeTrigger{})

	var names []string
	for _, c := range h.RegisterBotCommands() {
		names = append(names, c.Command)
	}
	assert.Equal(t, []string{"start", "help", "artists", "add", "remove", "refresh", "check"}, names)
}
