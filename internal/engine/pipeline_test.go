package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/transitstack/exosift/internal/models"
)

type fakeModelClient struct {
	ready       error
	submitCalls int
	readyCalls  int
	predictions []models.Prediction
	submitErr   error
}

func (f *fakeModelClient) CheckReady(ctx context.Context) error {
	f.readyCalls++
	return f.ready
}

func (f *fakeModelClient) Submit(ctx context.Context, records []models.Record) ([]models.Prediction, error) {
	f.submitCalls++
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	if f.predictions != nil {
		return f.predictions, nil
	}
	// Echo a positive prediction per record, order preserved.
	out := make([]models.Prediction, 0, len(records))
	for i := range records {
		out = append(out, models.Prediction{
			Row:                      records[i].Row,
			IsExoplanet:              true,
			Confidence:               0.9,
			ExoplanetProbability:     0.9,
			FalsePositiveProbability: 0.1,
			Record:                   &records[i],
		})
	}
	return out, nil
}

func batchCSV(rows ...string) string {
	var b strings.Builder
	b.WriteString(strings.Join(models.FeatureOrder, ","))
	b.WriteString(",koi_disposition\n")
	for _, row := range rows {
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

// Feature order: nt,ss,co,ec,period,impact,duration,depth,prad,teq,insol,snr,steff,slogg,srad,kepmag + truth.
const (
	strongRow = "-1,-1,-1,-1,10,0.3,3,0.5,1.2,300,1,15,5700,4.4,0.9,13.5,1"
	weakRow   = "1,1,0,0,0,2,0,0,0,0,0,0,5000,4.5,1,14,0"
)

func TestRunHeuristicPath(t *testing.T) {
	pipeline := NewPipeline(nil, nil, nil, nil)

	result, err := pipeline.Run(context.Background(), batchCSV(strongRow, weakRow), ModeAuto)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Summary.Source != models.SourceHeuristic {
		t.Fatalf("expected heuristic source, got %s", result.Summary.Source)
	}
	if result.Summary.Total != 2 {
		t.Fatalf("expected 2 predictions, got %d", result.Summary.Total)
	}
	if !result.Predictions[0].IsExoplanet || result.Predictions[1].IsExoplanet {
		t.Fatalf("unexpected labels: %+v", result.Predictions)
	}
	for i, p := range result.Predictions {
		if p.Row != i {
			t.Fatalf("prediction order broken at %d: row %d", i, p.Row)
		}
	}
	if result.Summary.Evaluation == nil {
		t.Fatalf("expected evaluation with ground truth present")
	}
	if result.Summary.Evaluation.Accuracy != 1 {
		t.Fatalf("expected perfect accuracy, got %v", result.Summary.Evaluation.Accuracy)
	}
}

func TestRunServicePath(t *testing.T) {
	client := &fakeModelClient{}
	pipeline := NewPipeline(nil, client, nil, nil)

	result, err := pipeline.Run(context.Background(), batchCSV(strongRow, weakRow), ModeService)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Summary.Source != models.SourceService {
		t.Fatalf("expected service source, got %s", result.Summary.Source)
	}
	if client.readyCalls != 1 || client.submitCalls != 1 {
		t.Fatalf("expected one probe and one submit, got %d/%d", client.readyCalls, client.submitCalls)
	}
	for i, p := range result.Predictions {
		if p.Row != i {
			t.Fatalf("prediction order broken at %d: row %d", i, p.Row)
		}
	}
}

func TestRunServiceNotReadyIsFatal(t *testing.T) {
	client := &fakeModelClient{ready: &models.ServiceUnavailableError{Reason: "no model loaded"}}
	pipeline := NewPipeline(nil, client, nil, nil)

	_, err := pipeline.Run(context.Background(), batchCSV(strongRow), ModeService)

	var unavailable *models.ServiceUnavailableError
	if !errors.As(err, &unavailable) {
		t.Fatalf("expected ServiceUnavailableError, got %v", err)
	}
	if client.submitCalls != 0 {
		t.Fatalf("no submission should happen when the service is not ready")
	}
}

func TestRunAutoFallsBackBeforeSubmission(t *testing.T) {
	client := &fakeModelClient{ready: &models.ServiceUnavailableError{Reason: "down"}}
	pipeline := NewPipeline(nil, client, nil, nil)

	result, err := pipeline.Run(context.Background(), batchCSV(strongRow, weakRow), ModeAuto)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Summary.Source != models.SourceHeuristic {
		t.Fatalf("expected heuristic fallback, got %s", result.Summary.Source)
	}
	if client.submitCalls != 0 {
		t.Fatalf("fallback must be selected before submission, submit called %d times", client.submitCalls)
	}
}

func TestRunValidatesBeforeClassification(t *testing.T) {
	client := &fakeModelClient{}
	pipeline := NewPipeline(nil, client, nil, nil)

	// Header without koi_teq.
	header := strings.ReplaceAll(strings.Join(models.FeatureOrder, ","), "koi_teq,", "")
	raw := header + "\n" + strings.TrimSuffix(strings.Repeat("1,", 15), ",") + "\n"

	_, err := pipeline.Run(context.Background(), raw, ModeService)

	var missing *models.MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
	if len(missing.Columns) != 1 || missing.Columns[0] != "koi_teq" {
		t.Fatalf("unexpected missing columns: %v", missing.Columns)
	}
	if client.readyCalls != 0 || client.submitCalls != 0 {
		t.Fatalf("validation must run before any classification step")
	}
}

func TestRunServiceResponseErrorSurfaced(t *testing.T) {
	client := &fakeModelClient{submitErr: &models.ServiceResponseError{Message: "model exploded"}}
	pipeline := NewPipeline(nil, client, nil, nil)

	_, err := pipeline.Run(context.Background(), batchCSV(strongRow), ModeService)

	var svcErr *models.ServiceResponseError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected ServiceResponseError, got %v", err)
	}
	if svcErr.Message != "model exploded" {
		t.Fatalf("service message must be carried verbatim, got %q", svcErr.Message)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModeAuto {
		t.Fatalf("empty mode should default to auto, got %s/%v", m, err)
	}
	if _, err := ParseMode("psychic"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}
