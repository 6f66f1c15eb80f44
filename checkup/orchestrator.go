package checkup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/verdant-app/verdant-server/models"
	"github.com/verdant-app/verdant-server/utils"
)

// Collaborators the orchestrator suspends on. Wired to the real
// implementations in main, to scripted fakes in tests.
type (
	FetchFunc   func(ctx context.Context, url string, maxDim int) (*utils.NormalizedImage, error)
	AnalyzeFunc func(ctx context.Context, prompt string, images [][]byte) (string, error)
	PrefsFunc   func(ctx context.Context, userID string) (*models.User, error)
	ArchiveFunc func(ctx context.Context, checkupID string, jpeg []byte) (string, error)
	NotifyFunc  func(ctx context.Context, userID, checkupID string)
)

// Stable messages persisted when a store write fails mid-pipeline. The
// driver error goes to the log, never onto the record.
var (
	errProgressWrite = errors.New("Failed to save checkup progress")
	errResultWrite   = errors.New("Failed to save checkup results")
)

// Orchestrator drives one checkup from submission to a terminal state,
// persisting every stage transition so the poll endpoint can observe
// progress. A single orchestrator goroutine is the only writer for its
// record.
type Orchestrator struct {
	Store     Store
	Fetch     FetchFunc
	Analyze   AnalyzeFunc
	LoadPrefs PrefsFunc
	Budget    time.Duration

	// Optional best-effort collaborators.
	Archive ArchiveFunc
	Notify  NotifyFunc
}

// Run executes the full checkup pipeline. It is spawned on its own
// goroutine after the 202 response is sent and never reports errors to a
// caller: failures become a terminal write on the record, discovered by
// polling. The whole run is bounded by the deadline budget; after an abort
// the error write gets its own fresh context, best-effort.
func (o *Orchestrator) Run(rec *models.Checkup) {
	id := rec.ID.Hex()
	ctx, stop := NewDeadline(context.Background(), o.Budget)
	defer stop()

	if err := o.run(ctx, rec); err != nil {
		msg := err.Error()
		if IsAborted(err) {
			msg = "Analysis timed out"
		}
		log.Printf("[Checkup %s] failed: %v", id, err)

		writeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		uerr := o.Store.Update(writeCtx, id, map[string]interface{}{
			"status":   models.StatusError,
			"progress": models.Progress{Stage: models.StageError, Percent: 0, Message: msg},
			"error":    msg,
		})
		if uerr != nil {
			log.Printf("[Checkup %s] could not persist error state: %v", id, uerr)
		}
		return
	}

	if o.Notify != nil {
		notifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		o.Notify(notifyCtx, rec.UserID, id)
	}
}

func (o *Orchestrator) run(ctx context.Context, rec *models.Checkup) error {
	id := rec.ID.Hex()

	if err := o.setProgress(ctx, id, models.StageInitializing, 0, "Starting checkup"); err != nil {
		return err
	}
	if err := o.setProgress(ctx, id, models.StageImageProcessing, 20, "Processing plant image"); err != nil {
		return err
	}

	// Both fetches in flight together; the previous image is an optional
	// comparison input and must not fail the checkup.
	var (
		current, previous *utils.NormalizedImage
		curErr, prevErr   error
		wg                sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		current, curErr = o.Fetch(ctx, rec.ImageURL, utils.CheckupImageDim)
	}()
	if rec.PreviousImageURL != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			previous, prevErr = o.Fetch(ctx, rec.PreviousImageURL, utils.CheckupImageDim)
		}()
	}
	wg.Wait()

	if curErr != nil {
		if IsAborted(curErr) {
			return curErr
		}
		log.Printf("[Checkup %s] image fetch failed: %v", id, curErr)
		return errors.New("Failed to process plant image")
	}
	if prevErr != nil {
		log.Printf("[Checkup %s] previous image skipped: %v", id, prevErr)
		previous = nil
	}

	now := time.Now()
	next := o.nextCheckup(ctx, now, rec.UserID)

	if err := o.setProgress(ctx, id, models.StagePlantAnalysis, 40, "Analyzing plant"); err != nil {
		return err
	}
	if err := o.setProgress(ctx, id, models.StageHealthAssessment, 60, "Assessing plant health"); err != nil {
		return err
	}

	prompt := BuildCheckupPrompt(now, next, previous != nil)
	images := [][]byte{current.Data}
	if previous != nil {
		images = append(images, previous.Data)
	}

	raw, err := o.Analyze(ctx, prompt, images)
	if err != nil {
		if IsAborted(err) {
			return err
		}
		return fmt.Errorf("plant analysis failed: %v", err)
	}

	result, growth, err := ParseCheckupResult(raw, next, previous != nil)
	if err != nil {
		return fmt.Errorf("plant analysis failed: %v", err)
	}

	items := make([]models.ActionItem, 0, len(result.TodoItems))
	for _, task := range result.TodoItems {
		items = append(items, models.ActionItem{
			ID:        uuid.NewString(),
			Task:      task,
			Completed: false,
			Comments:  []string{},
			CreatedAt: now,
		})
	}

	fields := map[string]interface{}{
		"status":         models.StatusComplete,
		"progress":       models.Progress{Stage: models.StageComplete, Percent: 100, Message: "Checkup complete"},
		"checkup_result": result,
		"action_items":   items,
	}
	if growth != nil {
		fields["growth_analysis"] = growth
	}

	// Archive before the terminal write so the record is immutable once
	// complete. Best-effort: a failure only loses the stored copy.
	if o.Archive != nil {
		if key, aerr := o.Archive(ctx, id, current.Data); aerr != nil {
			log.Printf("[Checkup %s] image archive skipped: %v", id, aerr)
		} else {
			fields["archived_image_key"] = key
		}
	}

	if err := o.Store.Update(ctx, id, fields); err != nil {
		if IsAborted(err) {
			return err
		}
		log.Printf("[Checkup %s] result write failed: %v", id, err)
		return errResultWrite
	}
	return nil
}

func (o *Orchestrator) nextCheckup(ctx context.Context, now time.Time, userID string) time.Time {
	if o.LoadPrefs == nil {
		return FallbackNextCheckup(now)
	}
	user, err := o.LoadPrefs(ctx, userID)
	if err != nil || user == nil {
		log.Printf("[Checkup] preference read failed for user %s, using fallback schedule: %v", userID, err)
		return FallbackNextCheckup(now)
	}
	return NextCheckupDate(now, user)
}

func (o *Orchestrator) setProgress(ctx context.Context, id, stage string, percent int, message string) error {
	err := o.Store.Update(ctx, id, map[string]interface{}{
		"progress": models.Progress{Stage: stage, Percent: percent, Message: message},
	})
	if err == nil {
		return nil
	}
	if IsAborted(err) {
		return err
	}
	log.Printf("[Checkup %s] progress write failed: %v", id, err)
	return errProgressWrite
}
