package bot

import (
	"Facely/core"
	"Facely/holder"
	"Facely/lib/sl"
	"Facely/relay"
	"Facely/storage"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Runner executes one batch relay run.
type Runner interface {
	Run(ctx context.Context, req relay.GenerationRequest) (relay.Report, error)
}

// Incoming is a text message from a chat, stripped of transport details.
type Incoming struct {
	ChatId    int64
	MessageId int
	UserName  string
	Text      string
	// Command is the bot command without the slash, empty for plain text
	Command string
}

// Handler maps chat messages to menu replies, quantity prompts and relay runs.
type Handler struct {
	conf      *core.Config
	transport core.Transport
	cosmetic  core.Cosmetic
	relay     Runner
	prompts   *holder.PromptManager
	guard     *holder.RunGuard
	runs      storage.RunStorage
	log       *slog.Logger
}

func NewHandler(
	conf *core.Config,
	transport core.Transport,
	cosmetic core.Cosmetic,
	relay Runner,
	prompts *holder.PromptManager,
	guard *holder.RunGuard,
	runs storage.RunStorage,
	log *slog.Logger,
) *Handler {
	return &Handler{
		conf:      conf,
		transport: transport,
		cosmetic:  cosmetic,
		relay:     relay,
		prompts:   prompts,
		guard:     guard,
		runs:      runs,
		log:       log.With(sl.Module("handler")),
	}
}

func (h *Handler) Handle(ctx context.Context, in Incoming) {
	if h.guard.Busy(in.ChatId) {
		h.reply(ctx, in.ChatId, busyText, core.MarkupNone)
		return
	}

	switch in.Command {
	case "":
	case "start":
		h.prompts.Clear(in.ChatId)
		h.reply(ctx, in.ChatId, greetingText, core.MarkupMainMenu)
		return
	case "help":
		h.reply(ctx, in.ChatId, helpText, core.MarkupNone)
		return
	case "stats":
		h.sendStats(ctx, in.ChatId)
		return
	default:
		h.prompts.Clear(in.ChatId)
		h.reply(ctx, in.ChatId, mainPageText, core.MarkupMainMenu)
		return
	}

	text := strings.ToLower(strings.TrimSpace(in.Text))
	switch text {
	case strings.ToLower(btnSingle):
		h.menuAction(ctx, in)
		h.startRun(ctx, in, 1)
		// the button press itself is noise once the face is delivered
		h.cosmetic.DeleteMessage(ctx, in.ChatId, in.MessageId)
		return
	case strings.ToLower(btnNine):
		h.menuAction(ctx, in)
		h.startRun(ctx, in, 9)
		return
	case strings.ToLower(btnCustom):
		h.menuAction(ctx, in)
		h.askQuantity(ctx, in.ChatId)
		return
	}

	if h.prompts.Pending(in.ChatId) {
		h.answerQuantity(ctx, in, text)
		return
	}

	h.cosmetic.DeleteMessage(ctx, in.ChatId, in.MessageId-1)
	h.reply(ctx, in.ChatId, mainPageText, core.MarkupMainMenu)
}

// menuAction cancels an open quantity prompt and removes the previous bot message.
func (h *Handler) menuAction(ctx context.Context, in Incoming) {
	h.prompts.Clear(in.ChatId)
	h.cosmetic.DeleteMessage(ctx, in.ChatId, in.MessageId-1)
}

func (h *Handler) askQuantity(ctx context.Context, chatId int64) {
	h.prompts.Await(chatId)
	h.reply(ctx, chatId, fmt.Sprintf(askFormat, h.conf.Images.Max), core.MarkupQuantity)
}

func (h *Handler) answerQuantity(ctx context.Context, in Incoming, text string) {
	if text == strings.ToLower(btnBack) {
		h.prompts.Clear(in.ChatId)
		h.reply(ctx, in.ChatId, backText, core.MarkupMainMenu)
		return
	}

	n, err := ParseQuantity(in.Text, 1, h.conf.Images.Max)
	if err != nil {
		h.log.With(sl.Chat(in.ChatId)).Debug("rejected quantity", sl.Err(err))
		h.prompts.Await(in.ChatId)
		h.reply(ctx, in.ChatId, fmt.Sprintf(retryFormat, h.conf.Images.Max), core.MarkupQuantity)
		return
	}

	h.prompts.Clear(in.ChatId)
	h.startRun(ctx, in, n)
}

func (h *Handler) startRun(ctx context.Context, in Incoming, count int) {
	release, err := h.guard.Acquire(in.ChatId)
	if err != nil {
		text := busyText
		if errors.Is(err, core.ErrTooManyRuns) {
			text = overloadedText
		}
		h.log.With(sl.Chat(in.ChatId)).Warn("run refused", sl.Err(err))
		h.reply(ctx, in.ChatId, text, core.MarkupMainMenu)
		return
	}
	defer release()

	record := &storage.RunRecord{
		ChatId:    in.ChatId,
		Requested: count,
		StartedAt: time.Now(),
	}

	report, err := h.relay.Run(ctx, relay.GenerationRequest{
		ChatId:    in.ChatId,
		Count:     count,
		GroupSize: h.conf.Images.GroupSize,
	})

	record.Delivered = report.Delivered
	record.Batches = len(report.Batches)
	record.FinishedAt = time.Now()
	record.Status = storage.RunCompleted
	if err != nil {
		record.Status = storage.RunFailed
		record.Error = err.Error()
	}
	if err = h.runs.SaveRun(record); err != nil {
		h.log.With(sl.Chat(in.ChatId)).Error("saving run", sl.Err(err))
	}
}

func (h *Handler) sendStats(ctx context.Context, chatId int64) {
	stats, err := h.runs.ChatStats(chatId)
	if err != nil {
		h.log.With(sl.Chat(chatId)).Error("getting stats", sl.Err(err))
		h.reply(ctx, chatId, errorResponse, core.MarkupMainMenu)
		return
	}
	if stats.Runs == 0 {
		h.reply(ctx, chatId, noStatsText, core.MarkupMainMenu)
		return
	}
	h.reply(ctx, chatId, fmt.Sprintf(statsFormat, stats.Runs, stats.Failed, stats.Images), core.MarkupMainMenu)
}

func (h *Handler) reply(ctx context.Context, chatId int64, text string, markup core.Markup) {
	if _, err := h.transport.SendText(ctx, chatId, text, markup); err != nil {
		h.log.With(sl.Chat(chatId)).Error("sending message", sl.Err(err))
	}
}
