package bot

import (
	"Facely/core"
	"Facely/lib/sl"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
)

// APIError is a request the Telegram Bot API answered with ok=false.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %s (code %d)", e.Method, e.Description, e.Code)
}

// Transport implements core.Transport and core.Cosmetic on top of the Telegram Bot API.
type Transport struct {
	api *tgbotapi.BotAPI
	log *slog.Logger
}

var (
	_ core.Transport = (*Transport)(nil)
	_ core.Cosmetic  = (*Transport)(nil)
)

func NewTransport(api *tgbotapi.BotAPI, log *slog.Logger) *Transport {
	return &Transport{
		api: api,
		log: log.With(sl.Module("transport")),
	}
}

func (t *Transport) SendText(_ context.Context, chatId int64, text string, markup core.Markup) (int, error) {
	msg := tgbotapi.NewMessage(chatId, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if kb := replyMarkup(markup); kb != nil {
		msg.ReplyMarkup = kb
	}
	sent, err := t.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("sending message: %w", err)
	}
	return sent.MessageID, nil
}

// SendMediaGroup delivers images as one album. A single image goes out as a plain photo,
// Telegram albums need at least two items.
func (t *Transport) SendMediaGroup(ctx context.Context, chatId int64, images [][]byte) error {
	switch len(images) {
	case 0:
		return nil
	case 1:
		photo := tgbotapi.NewPhotoUpload(chatId, tgbotapi.FileBytes{Name: "face.jpg", Bytes: images[0]})
		if _, err := t.api.Send(photo); err != nil {
			return fmt.Errorf("sending photo: %w", err)
		}
		return nil
	}

	media := make([]interface{}, len(images))
	for i := range images {
		media[i] = tgbotapi.NewInputMediaPhoto(fmt.Sprintf("attach://face%d", i))
	}
	mediaJSON, err := json.Marshal(media)
	if err != nil {
		return fmt.Errorf("encoding media: %w", err)
	}

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if err = mw.WriteField("chat_id", strconv.FormatInt(chatId, 10)); err != nil {
		return fmt.Errorf("writing chat_id: %w", err)
	}
	if err = mw.WriteField("media", string(mediaJSON)); err != nil {
		return fmt.Errorf("writing media: %w", err)
	}
	for i, img := range images {
		name := fmt.Sprintf("face%d", i)
		part, err := mw.CreateFormFile(name, name+".jpg")
		if err != nil {
			return fmt.Errorf("creating %s: %w", name, err)
		}
		if _, err = part.Write(img); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	if err = mw.Close(); err != nil {
		return fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf(tgbotapi.APIEndpoint, t.api.Token, "sendMediaGroup"), body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := t.api.Client.Do(req)
	if err != nil {
		return fmt.Errorf("sending media group: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			t.log.Warn("closing body", sl.Err(err))
		}
	}(resp.Body)

	var apiResp tgbotapi.APIResponse
	if err = json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
	}
	if !apiResp.Ok {
		return &APIError{Method: "sendMediaGroup", Code: apiResp.ErrorCode, Description: apiResp.Description}
	}
	return nil
}

func (t *Transport) EditText(_ context.Context, chatId int64, messageId int, text string) {
	edit := tgbotapi.NewEditMessageText(chatId, messageId, text)
	if _, err := t.api.Send(edit); err != nil {
		t.log.With(sl.Chat(chatId), slog.Int("message", messageId)).Warn("editing message", sl.Err(err))
	}
}

func (t *Transport) DeleteMessage(_ context.Context, chatId int64, messageId int) {
	if messageId <= 0 {
		return
	}
	params := url.Values{}
	params.Add("chat_id", strconv.FormatInt(chatId, 10))
	params.Add("message_id", strconv.Itoa(messageId))
	if _, err := t.api.MakeRequest("deleteMessage", params); err != nil {
		t.log.With(sl.Chat(chatId), slog.Int("message", messageId)).Debug("deleting message", sl.Err(err))
	}
}
