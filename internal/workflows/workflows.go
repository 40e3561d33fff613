package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"studyforge/internal/activities"
)

const QueryGetJobStatus = "GetJobStatus"

// ProcessDocumentWorkflow runs the parse, analyze, generate, persist pipeline
// for one uploaded document. It is the single writer of the job's status
// record; progress only moves forward, and a failure at any stage keeps the
// progress reached so far.
func ProcessDocumentWorkflow(ctx workflow.Context, input ProcessDocumentInput) (JobStatus, error) {
	status := JobStatus{
		JobID:      input.JobID,
		DocumentID: input.DocumentID,
		Status:     StatusProcessing,
		Progress:   ProgressCreated,
		Message:    "queued for processing",
		CreatedAt:  workflow.Now(ctx),
		UpdatedAt:  workflow.Now(ctx),
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetJobStatus, func() (JobStatus, error) {
		return status, nil
	}); err != nil {
		return status, err
	}

	advance := func(progress int, message string) {
		if progress > status.Progress {
			status.Progress = progress
		}
		status.Message = message
		status.UpdatedAt = workflow.Now(ctx)
	}

	// External-call retry discipline lives inside the activities; Temporal's
	// own retry stays at a single attempt so failures classify exactly once.
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	fail := func(stage string, err error) (JobStatus, error) {
		status.Status = StatusFailed
		status.Message = "failed while " + stage + ": " + err.Error()
		status.UpdatedAt = workflow.Now(ctx)
		_ = workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{
			DocumentID: input.DocumentID,
			Status:     StatusFailed,
			FailReason: status.Message,
		}).Get(ctx, nil)
		return status, err
	}

	advance(ProgressParsing, "parsing document")
	_ = workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{
		DocumentID: input.DocumentID,
		Status:     StatusProcessing,
	}).Get(ctx, nil)

	var parsed activities.ParseDocumentOutput
	if err := workflow.ExecuteActivity(ctx, "ParseDocumentActivity", activities.ParseDocumentInput{
		DocumentID: input.DocumentID,
		FilePath:   input.FilePath,
	}).Get(ctx, &parsed); err != nil {
		return fail("parsing document", err)
	}
	advance(ProgressParsed, "document parsed")

	var analyzed activities.AnalyzeContentOutput
	if err := workflow.ExecuteActivity(ctx, "AnalyzeContentActivity", activities.AnalyzeContentInput{
		Document: parsed.Document,
	}).Get(ctx, &analyzed); err != nil {
		return fail("analyzing content", err)
	}
	advance(ProgressAnalyzed, "content analyzed")

	var generated activities.GenerateStudyGuideOutput
	if err := workflow.ExecuteActivity(ctx, "GenerateStudyGuideActivity", activities.GenerateStudyGuideInput{
		Document:    parsed.Document,
		Analysis:    analyzed.Analysis,
		DetailLevel: input.DetailLevel,
	}).Get(ctx, &generated); err != nil {
		return fail("generating study guide", err)
	}
	advance(ProgressGenerated, "study guide generated")

	var persisted activities.PersistStudyGuideOutput
	if err := workflow.ExecuteActivity(ctx, "PersistStudyGuideActivity", activities.PersistStudyGuideInput{
		DocumentID:    input.DocumentID,
		Guide:         generated.Guide,
		Concepts:      analyzed.Analysis.Concepts,
		Relationships: analyzed.Analysis.Relationships,
	}).Get(ctx, &persisted); err != nil {
		return fail("persisting study guide", err)
	}

	_ = workflow.ExecuteActivity(ctx, "UpdateDocumentStatusActivity", activities.UpdateDocumentStatusInput{
		DocumentID: input.DocumentID,
		Status:     StatusCompleted,
	}).Get(ctx, nil)

	status.Status = StatusCompleted
	status.StudyGuideID = persisted.StudyGuideID
	advance(ProgressPersisted, "study guide ready")
	return status, nil
}
