package publish

import "context"

// Publisher uploads a local artifact and returns a URL identifying it in
// the destination store. originalFilename is the user-supplied name of
// the source document, used only to shape the published key; it is not
// re-validated here. Publish may return an empty url with a nil error to
// mean "not published" without failing the caller's task.
type Publisher interface {
	Publish(ctx context.Context, artifactPath, originalFilename, taskID string) (url string, err error)
}
