package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/pdftranslator/internal/client/alert"
	"github.com/dmitrijs2005/pdftranslator/internal/client/client"
	"github.com/dmitrijs2005/pdftranslator/internal/client/models"
	"github.com/dmitrijs2005/pdftranslator/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/pdftranslator/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pages int

func (p pages) PageCount([]byte) (int, error) { return int(p), nil }

var pdfBytes = []byte("%PDF-1.7\n% test document\n")

func newTestPipeline(t *testing.T, api *fakeAPI, n int) (*Pipeline, *alert.Channel) {
	t.Helper()
	alerts := newAlerts()
	prefs := metadata.NewSQLiteRepository(setupDB(t))
	p := NewPipeline(api, prefs, alerts, nil, PipelineOptions{
		Counter:       pages(n),
		RangeDebounce: 30 * time.Millisecond,
	})
	t.Cleanup(p.Close)
	return p, alerts
}

func TestPipeline_OpenExtractsDefaultWindowOnce(t *testing.T) {
	api := newFakeAPI()
	api.ExtractFn = func(_ client.Document, r models.PageRange) (client.ExtractResult, error) {
		return client.ExtractResult{ExtractedText: "hello " + r.String(), NumTokens: 12}, nil
	}
	p, alerts := newTestPipeline(t, api, 50)

	_, err := p.OpenReader("book.pdf", pdfBytes)
	require.NoError(t, err)

	assert.Equal(t, []models.PageRange{{Start: 1, End: 2}}, api.ranges())

	snap := p.Snapshot()
	assert.True(t, snap.Loaded)
	assert.Equal(t, 50, snap.PageCount)
	assert.Equal(t, "hello 1-2", snap.ExtractedText)
	assert.Equal(t, 12, snap.NumTokens)
	assert.Equal(t, 8192, snap.TokenBudget)
	assert.Equal(t, alert.KindSuccess, lastAlert(t, alerts).Kind)
}

func TestPipeline_RangeChangesCollapse(t *testing.T) {
	api := newFakeAPI()
	api.ExtractFn = func(_ client.Document, r models.PageRange) (client.ExtractResult, error) {
		return client.ExtractResult{ExtractedText: r.String(), NumTokens: r.Pages()}, nil
	}
	p, _ := newTestPipeline(t, api, 50)
	_, err := p.OpenReader("book.pdf", pdfBytes)
	require.NoError(t, err)

	require.NoError(t, p.SetRange(1, 3))
	require.NoError(t, p.SetRange(1, 4))
	require.NoError(t, p.SetRange(2, 5))

	assert.Eventually(t, func() bool { return len(api.ranges()) == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)

	assert.Equal(t, []models.PageRange{{Start: 1, End: 2}, {Start: 2, End: 5}}, api.ranges())
	assert.Equal(t, "2-5", p.Snapshot().ExtractedText)
}

func TestPipeline_ExtractFailureKeepsText(t *testing.T) {
	api := newFakeAPI()
	fail := false
	api.ExtractFn = func(client.Document, models.PageRange) (client.ExtractResult, error) {
		if fail {
			return client.ExtractResult{}, &client.RequestError{Status: 500, Message: "No text found in the PDF"}
		}
		return client.ExtractResult{ExtractedText: "kept", NumTokens: 3}, nil
	}
	p, alerts := newTestPipeline(t, api, 4)
	_, err := p.OpenReader("book.pdf", pdfBytes)
	require.NoError(t, err)

	fail = true
	err = p.Extract(context.Background())
	require.ErrorIs(t, err, common.ErrExtraction)

	snap := p.Snapshot()
	assert.Equal(t, "kept", snap.ExtractedText)
	assert.Equal(t, 3, snap.NumTokens)

	a := lastAlert(t, alerts)
	assert.Equal(t, alert.KindError, a.Kind)
	assert.Equal(t, "No text found in the PDF", a.Message)
}

func TestPipeline_ExtractOverBudgetWarns(t *testing.T) {
	api := newFakeAPI()
	api.ExtractFn = func(client.Document, models.PageRange) (client.ExtractResult, error) {
		return client.ExtractResult{ExtractedText: "long", NumTokens: 9000}, nil
	}
	p, alerts := newTestPipeline(t, api, 4)
	_, err := p.OpenReader("book.pdf", pdfBytes)
	require.NoError(t, err)

	a := lastAlert(t, alerts)
	assert.Equal(t, alert.KindError, a.Kind)
	assert.Equal(t, "Extracted tokens exceed half of the maximum allowed (8192). Translation not allowed.", a.Message)
}

func TestPipeline_TestTranslationBudgetGate(t *testing.T) {
	tests := []struct {
		name      string
		numTokens int
		wantErr   error
		wantCalls int
	}{
		{"under budget", 100, nil, 1},
		{"exactly at budget", 8192, nil, 1},
		{"over budget", 8193, common.ErrTokenBudgetExceeded, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			api.ExtractFn = func(client.Document, models.PageRange) (client.ExtractResult, error) {
				return client.ExtractResult{ExtractedText: "x", NumTokens: tt.numTokens}, nil
			}
			api.TestFn = func(_ client.Document, _ models.PageRange, sys, usr string) (client.TestTranslationResult, error) {
				return client.TestTranslationResult{Translation: "y", CompletionTokens: 5, PromptTokens: 7}, nil
			}
			p, _ := newTestPipeline(t, api, 4)
			_, err := p.OpenReader("book.pdf", pdfBytes)
			require.NoError(t, err)

			res, err := p.TestTranslation(context.Background())
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "y", res.Translation)
				snap := p.Snapshot()
				assert.Equal(t, 5, snap.CompletionTokens)
				assert.Equal(t, 7, snap.PromptTokens)
			}
			assert.Equal(t, tt.wantCalls, api.count("TestTranslation"))
		})
	}
}

func TestPipeline_TestTranslationConfigurableRatio(t *testing.T) {
	api := newFakeAPI()
	api.ExtractFn = func(client.Document, models.PageRange) (client.ExtractResult, error) {
		return client.ExtractResult{NumTokens: 9000}, nil
	}
	p := NewPipeline(api, metadata.NewSQLiteRepository(setupDB(t)), newAlerts(), nil, PipelineOptions{
		Counter:          pages(2),
		MaxTokens:        16384,
		TokenBudgetRatio: 0.75,
	})
	defer p.Close()

	_, err := p.OpenReader("book.pdf", pdfBytes)
	require.NoError(t, err)

	_, err = p.TestTranslation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, api.count("TestTranslation"))
}

func TestPipeline_TestTranslationPreconditions(t *testing.T) {
	api := newFakeAPI()
	p, _ := newTestPipeline(t, api, 4)
	ctx := context.Background()

	_, err := p.TestTranslation(ctx)
	require.ErrorIs(t, err, common.ErrNoFile)

	_, err = p.OpenReader("book.pdf", pdfBytes)
	require.NoError(t, err)
	require.NoError(t, p.SetSystemPrompt(ctx, ""))

	_, err = p.TestTranslation(ctx)
	require.ErrorIs(t, err, common.ErrPromptsRequired)
	assert.Zero(t, api.count("TestTranslation"))
}

func TestPipeline_TestTranslationFailureKeepsText(t *testing.T) {
	api := newFakeAPI()
	calls := 0
	api.TestFn = func(client.Document, models.PageRange, string, string) (client.TestTranslationResult, error) {
		calls++
		if calls == 1 {
			return client.TestTranslationResult{Translation: "first"}, nil
		}
		return client.TestTranslationResult{}, errors.New("boom")
	}
	p, alerts := newTestPipeline(t, api, 4)
	_, err := p.OpenReader("book.pdf", pdfBytes)
	require.NoError(t, err)

	_, err = p.TestTranslation(context.Background())
	require.NoError(t, err)
	_, err = p.TestTranslation(context.Background())
	require.ErrorIs(t, err, common.ErrTranslation)

	assert.Equal(t, "first", p.Snapshot().TranslatedText)
	assert.Equal(t, "Test translation failed", lastAlert(t, alerts).Message)
}

func TestPipeline_SubmitUpload(t *testing.T) {
	api := newFakeAPI()
	var got client.UploadRequest
	api.UploadFn = func(req client.UploadRequest, progress func(int)) (string, error) {
		got = req
		for _, pct := range []int{0, 40, 100} {
			progress(pct)
		}
		return "File uploaded successfully", nil
	}
	p, _ := newTestPipeline(t, api, 10)
	ctx := context.Background()

	_, err := p.OpenReader("book.pdf", pdfBytes)
	require.NoError(t, err)
	require.NoError(t, p.SetRange(3, 5))
	require.NoError(t, p.SetUserPrompt(ctx, "into Latvian"))

	var seen []int
	_, err = p.SubmitUpload(ctx, func(pct int) { seen = append(seen, pct) })
	require.NoError(t, err)

	assert.Equal(t, models.PageRange{Start: 3, End: 5}, got.Range)
	assert.Equal(t, 10, got.PageCount)
	assert.Equal(t, DefaultSystemPrompt, got.SystemPrompt)
	assert.Equal(t, "into Latvian", got.UserPrompt)
	assert.Equal(t, []int{0, 40, 100}, seen)

	snap := p.Snapshot()
	assert.Equal(t, 100, snap.UploadProgress)
	assert.False(t, snap.Uploading)
}

func TestPipeline_InitiateTwiceShowsBackendMessage(t *testing.T) {
	api := newFakeAPI()
	initiated := map[int64]bool{}
	api.InitFn = func(id int64) (string, error) {
		if initiated[id] {
			return "", &client.AlreadyInitiatedError{Message: "There are already translation records for this file"}
		}
		initiated[id] = true
		return "Translation initiated successfully with 4 records", nil
	}
	p, alerts := newTestPipeline(t, api, 1)
	ctx := context.Background()

	_, err := p.InitiateTranslation(ctx, 3)
	require.NoError(t, err)

	_, err = p.InitiateTranslation(ctx, 3)
	require.ErrorIs(t, err, common.ErrAlreadyInitiated)

	a := lastAlert(t, alerts)
	assert.Equal(t, alert.KindError, a.Kind)
	assert.Equal(t, "There are already translation records for this file", a.Message)
}

func TestPipeline_ClearKeepsDocument(t *testing.T) {
	api := newFakeAPI()
	api.ExtractFn = func(client.Document, models.PageRange) (client.ExtractResult, error) {
		return client.ExtractResult{ExtractedText: "t", NumTokens: 3}, nil
	}
	p, _ := newTestPipeline(t, api, 10)
	_, err := p.OpenReader("book.pdf", pdfBytes)
	require.NoError(t, err)

	p.Clear()

	snap := p.Snapshot()
	assert.Empty(t, snap.ExtractedText)
	assert.Zero(t, snap.NumTokens)
	assert.True(t, snap.Loaded)
	assert.Equal(t, "book.pdf", snap.File)
	assert.Equal(t, models.PageRange{Start: 1, End: 2}, snap.Range)
}

func TestPipeline_PromptsPersist(t *testing.T) {
	db := setupDB(t)
	prefs := metadata.NewSQLiteRepository(db)
	ctx := context.Background()

	p := NewPipeline(newFakeAPI(), prefs, newAlerts(), nil, PipelineOptions{Counter: pages(1)})
	assert.Equal(t, DefaultSystemPrompt, p.Snapshot().SystemPrompt)
	require.NoError(t, p.ApplyPreset(ctx, models.Prompt{SystemMessage: "sys", UserMessage: "usr"}))

	again := NewPipeline(newFakeAPI(), prefs, newAlerts(), nil, PipelineOptions{Counter: pages(1)})
	require.NoError(t, again.LoadPrompts(ctx))
	snap := again.Snapshot()
	assert.Equal(t, "sys", snap.SystemPrompt)
	assert.Equal(t, "usr", snap.UserPrompt)
}

func TestPipeline_OpenRejectsNonPDF(t *testing.T) {
	p, alerts := newTestPipeline(t, newFakeAPI(), 1)

	_, err := p.OpenReader("notes.txt", []byte("plain text"))
	require.ErrorIs(t, err, common.ErrInvalidFileType)
	assert.False(t, p.Snapshot().Loaded)
	assert.Equal(t, alert.KindError, lastAlert(t, alerts).Kind)
}
