package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.ParseDocumentActivity)
	w.RegisterActivity(a.AnalyzeContentActivity)
	w.RegisterActivity(a.GenerateStudyGuideActivity)
	w.RegisterActivity(a.PersistStudyGuideActivity)
	w.RegisterActivity(a.UpdateDocumentStatusActivity)
}
