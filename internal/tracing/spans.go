package tracing

// Span names for build phases.
const (
	SpanBuild      = "build"
	SpanRegister   = "build.register"
	SpanResolve    = "build.resolve"
	SpanInvalidate = "build.invalidate"
	SpanRebuild    = "build.rebuild"
)

// Span attribute keys.
const (
	AttrBuildID     = "build.id"
	AttrDocuments   = "build.documents"
	AttrDocument    = "document.id"
	AttrSignatures  = "registry.signatures"
	AttrEntries     = "registry.entries"
	AttrDuplicates  = "registry.duplicates"
	AttrEvicted     = "registry.evicted"
	AttrReferences  = "resolve.references"
	AttrUnresolved  = "resolve.unresolved"
	AttrErrorReason = "error.message"
)
