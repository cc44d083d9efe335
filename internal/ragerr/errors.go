// Package ragerr defines the error taxonomy shared by the offline pipeline
// and the retrieval runtime. Sentinel values are checked with errors.Is;
// call sites that need the underlying detail wrap with fmt.Errorf("...: %w").
package ragerr

import "errors"

var (
	// ErrIndexCorrupt marks a malformed embeddings file or a dimension
	// mismatch discovered at load time. Fatal: the runtime cannot proceed.
	ErrIndexCorrupt = errors.New("ragerr: index corrupt")

	// ErrDimensionMismatch marks a query vector whose length does not match
	// the index's embedding dimension.
	ErrDimensionMismatch = errors.New("ragerr: dimension mismatch")

	// ErrInvalidArgument marks a bad topK, an invalid routing mode override,
	// or an empty/oversize chat message.
	ErrInvalidArgument = errors.New("ragerr: invalid argument")

	// ErrEmbedderUnavailable marks the Embedder collaborator as not ready.
	ErrEmbedderUnavailable = errors.New("ragerr: embedder unavailable")

	// ErrGeneratorUnavailable marks the Generator collaborator as not ready.
	ErrGeneratorUnavailable = errors.New("ragerr: generator unavailable")

	// ErrUnknownShareLink marks a share-host URL the Fetcher could not
	// resolve to a direct download URL.
	ErrUnknownShareLink = errors.New("ragerr: unknown share link")

	// ErrDownloadFailed marks a per-document download failure. Offline-only;
	// recorded on the Document and does not abort the batch.
	ErrDownloadFailed = errors.New("ragerr: download failed")

	// ErrExtractionFailed marks a document that produced no usable text.
	ErrExtractionFailed = errors.New("ragerr: extraction failed")

	// ErrCancelled marks a query aborted via the caller's context.
	ErrCancelled = errors.New("ragerr: cancelled")
)

// BilingualNotice renders a short bilingual sentence for user-visible
// no-results and error modes, per the spec's requirement that the UI layer
// get something meaningful without knowing the failure detail.
func BilingualNotice(uk, en string) string {
	return uk + " / " + en
}

var (
	// NoResultsNotice is returned by RAGPipeline when retrieval finds no
	// candidate chunks at all.
	NoResultsNotice = BilingualNotice(
		"На жаль, не знайдено релевантних документів за вашим запитом.",
		"Sorry, no relevant documents were found for your query.",
	)

	// GenericFailureNotice is returned by RAGPipeline when any collaborator
	// call fails mid-query.
	GenericFailureNotice = BilingualNotice(
		"Вибачте, сталася помилка під час обробки запиту.",
		"Sorry, something went wrong while processing your request.",
	)
)
