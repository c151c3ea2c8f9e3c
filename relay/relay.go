// Package relay fetches generated images one by one and delivers them to a chat in groups.
package relay

import (
	"Facely/core"
	"Facely/lib/sl"
	"context"
	"errors"
	"fmt"
	"log/slog"
)

const (
	progressFormat = "Generating %d/%d. Please don't send messages until it finishes."
	DoneText       = "Done! Choose the next command"
	FailureText    = "Sorry, something went wrong while generating faces. Please try again later."
)

// GenerationRequest is one user request for Count images delivered in groups of GroupSize.
type GenerationRequest struct {
	ChatId    int64
	Count     int
	GroupSize int
}

// FetchedImage is one upstream payload together with its temporary storage handle.
type FetchedImage struct {
	Content []byte
	Handle  core.Handle
}

// Progress is the completed/total count shown in the progress message.
type Progress struct {
	Completed int
	Total     int
}

// Text renders the progress message body.
func (p Progress) Text() string {
	return fmt.Sprintf(progressFormat, p.Completed, p.Total)
}

// Report describes what a run managed to do before it finished or failed.
type Report struct {
	Requested int
	Fetched   int
	Delivered int
	// Batches holds the size of every delivered batch in delivery order.
	Batches []int
}

type Relay struct {
	transport core.Transport
	cosmetic  core.Cosmetic
	source    core.ImageSource
	store     core.TempStorage
	log       *slog.Logger
}

func New(transport core.Transport, cosmetic core.Cosmetic, source core.ImageSource, store core.TempStorage, log *slog.Logger) *Relay {
	return &Relay{
		transport: transport,
		cosmetic:  cosmetic,
		source:    source,
		store:     store,
		log:       log.With(sl.Module("relay")),
	}
}

// Run fetches req.Count images sequentially and delivers them in batches of at most req.GroupSize.
// A fetch or delivery error aborts the run; every temporary handle is released before Run returns.
func (r *Relay) Run(ctx context.Context, req GenerationRequest) (Report, error) {
	report := Report{Requested: req.Count}
	if req.Count < 1 || req.GroupSize < 1 {
		return report, fmt.Errorf("invalid request: count %d, group size %d", req.Count, req.GroupSize)
	}
	log := r.log.With(sl.Chat(req.ChatId), slog.Int("count", req.Count))

	// handles not yet released
	var pending []core.Handle
	defer func() {
		r.release(log, pending)
	}()
	abort := func(progressId int, err error) error {
		r.release(log, pending)
		pending = nil
		return r.fail(ctx, log, req.ChatId, progressId, err)
	}

	progress := Progress{Total: req.Count}
	progressId, err := r.transport.SendText(ctx, req.ChatId, progress.Text(), core.MarkupNone)
	if err != nil {
		return report, abort(0, fmt.Errorf("sending progress: %w", err))
	}

	batch := make([]FetchedImage, 0, req.GroupSize)
	for i := 1; i <= req.Count; i++ {
		img, err := r.fetch(ctx, i)
		if err != nil {
			return report, abort(progressId, err)
		}
		pending = append(pending, img.Handle)
		batch = append(batch, img)
		report.Fetched = i

		progress.Completed = i
		r.cosmetic.EditText(ctx, req.ChatId, progressId, progress.Text())

		if len(batch) == req.GroupSize || i == req.Count {
			if err = r.deliver(ctx, req.ChatId, len(report.Batches)+1, batch); err != nil {
				return report, abort(progressId, err)
			}
			report.Batches = append(report.Batches, len(batch))
			report.Delivered += len(batch)

			r.release(log, pending)
			pending = nil
			batch = batch[:0]
		}
	}

	r.cosmetic.DeleteMessage(ctx, req.ChatId, progressId)
	if _, err = r.transport.SendText(ctx, req.ChatId, DoneText, core.MarkupMainMenu); err != nil {
		log.Warn("sending completion message", sl.Err(err))
	}

	log.With(
		slog.Int("delivered", report.Delivered),
		slog.Int("batches", len(report.Batches)),
	).Info("run completed")
	return report, nil
}

func (r *Relay) fetch(ctx context.Context, attempt int) (FetchedImage, error) {
	data, err := r.source.Fetch(ctx)
	if err != nil {
		var fetchErr *core.UpstreamFetchError
		if errors.As(err, &fetchErr) {
			fetchErr.Attempt = attempt
			return FetchedImage{}, fetchErr
		}
		return FetchedImage{}, &core.UpstreamFetchError{Attempt: attempt, Err: err}
	}

	h, err := r.store.Put(data)
	if err != nil {
		return FetchedImage{}, &core.UpstreamFetchError{Attempt: attempt, Err: fmt.Errorf("storing image: %w", err)}
	}
	return FetchedImage{Content: data, Handle: h}, nil
}

func (r *Relay) deliver(ctx context.Context, chatId int64, n int, batch []FetchedImage) error {
	images := make([][]byte, len(batch))
	for i, img := range batch {
		images[i] = img.Content
	}
	if err := r.transport.SendMediaGroup(ctx, chatId, images); err != nil {
		return &core.DeliveryError{Batch: n, Size: len(batch), Err: err}
	}
	return nil
}

func (r *Relay) fail(ctx context.Context, log *slog.Logger, chatId int64, progressId int, err error) error {
	log.Error("run aborted", sl.Err(err))
	if progressId != 0 {
		r.cosmetic.DeleteMessage(ctx, chatId, progressId)
	}
	if _, sendErr := r.transport.SendText(ctx, chatId, FailureText, core.MarkupMainMenu); sendErr != nil {
		log.Warn("sending failure message", sl.Err(sendErr))
	}
	return err
}

func (r *Relay) release(log *slog.Logger, handles []core.Handle) {
	for _, h := range handles {
		if err := r.store.Release(h); err != nil {
			log.Warn("releasing temp image", slog.String("handle", string(h)), sl.Err(err))
		}
	}
}

// Batches returns the batch sizes a successful run of count images delivers.
func Batches(count, groupSize int) []int {
	if count < 1 || groupSize < 1 {
		return nil
	}
	sizes := make([]int, 0, (count+groupSize-1)/groupSize)
	for count > 0 {
		n := min(count, groupSize)
		sizes = append(sizes, n)
		count -= n
	}
	return sizes
}
