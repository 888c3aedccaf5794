// Package xref drives a documentation build over the dm namespace.
//
// A build follows a strict two-phase protocol. Register parses every
// declaration of every document (in parallel) and stores the results in the
// registry one at a time in document order. Resolve then looks up every
// cross-reference. Resolve refuses to run until Register has completed at
// least once, so forward references are never reported as unresolved.
package xref

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/zjrosen/dmdoc/internal/cachemanager"
	"github.com/zjrosen/dmdoc/internal/docsource"
	"github.com/zjrosen/dmdoc/internal/domain/dm"
	"github.com/zjrosen/dmdoc/internal/flags"
	"github.com/zjrosen/dmdoc/internal/log"
	"github.com/zjrosen/dmdoc/internal/pubsub"
	"github.com/zjrosen/dmdoc/internal/tracing"
)

// ErrPhaseOrder is returned when references are resolved before any
// registration pass has completed.
var ErrPhaseOrder = errors.New("resolve called before registration completed")

// DefaultWorkers is the default number of parallel signature parsers.
const DefaultWorkers = 4

// DefaultCacheTTL is how long a memoised lookup stays valid.
const DefaultCacheTTL = 10 * time.Minute

// Options configures a Builder.
type Options struct {
	Workers   int           // parallel parse workers (default: 4)
	AddParens bool          // append "()" to titles of fix-parens roles
	CacheTTL  time.Duration // resolution cache expiry (default: 10m)

	// Flags selects strict duplicates and the resolution cache. Nil means defaults.
	Flags *flags.Registry

	// Tracer records build spans. Nil disables tracing.
	Tracer trace.Tracer
}

type cachedLookup struct {
	Entry dm.SymbolEntry
	Found bool
}

// Builder owns the registry for one build and everything derived from it.
type Builder struct {
	mu         sync.Mutex
	registry   *dm.Registry
	docs       map[dm.DocID]*docsource.Document
	docOrder   []dm.DocID
	registered bool
	buildID    string

	workers   int
	addParens bool
	cacheTTL  time.Duration
	cache     cachemanager.CacheManager[string, cachedLookup]
	tracer    trace.Tracer
	broker    *pubsub.Broker[Notice]
}

// New creates a Builder with an empty registry.
func New(opts Options) *Builder {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = DefaultCacheTTL
	}
	if opts.Flags == nil {
		opts.Flags = flags.New(nil)
	}
	if opts.Tracer == nil {
		opts.Tracer = tracing.NoopTracer()
	}

	var regOpts []dm.RegistryOption
	if opts.Flags.Enabled(flags.FlagStrictDuplicates) {
		regOpts = append(regOpts, dm.WithStrictDuplicates())
	}

	b := &Builder{
		registry:  dm.NewRegistry(regOpts...),
		docs:      make(map[dm.DocID]*docsource.Document),
		buildID:   uuid.NewString(),
		workers:   opts.Workers,
		addParens: opts.AddParens,
		cacheTTL:  opts.CacheTTL,
		tracer:    opts.Tracer,
		broker:    pubsub.NewBroker[Notice](),
	}
	if opts.Flags.Enabled(flags.FlagResolveCache) {
		b.cache = cachemanager.NewInMemoryCacheManager[string, cachedLookup]("resolve", opts.CacheTTL, 2*opts.CacheTTL)
	}
	return b
}

// Registry exposes the registry for read access.
func (b *Builder) Registry() dm.RegistryProvider {
	return b.registry
}

// BuildID returns the identifier of the current build.
func (b *Builder) BuildID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buildID
}

// Documents returns the IDs of every document the builder knows, in
// registration order.
func (b *Builder) Documents() []dm.DocID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]dm.DocID(nil), b.docOrder...)
}

// Subscribe returns a channel of build notices.
func (b *Builder) Subscribe(ctx context.Context) <-chan pubsub.Event[Notice] {
	return b.broker.Subscribe(ctx)
}

// Close releases the event broker.
func (b *Builder) Close() {
	b.broker.Close()
}

// Build runs both phases over docs with a fresh build ID.
func (b *Builder) Build(ctx context.Context, docs []*docsource.Document) (*Report, error) {
	b.mu.Lock()
	b.buildID = uuid.NewString()
	b.mu.Unlock()

	ctx, span := b.tracer.Start(ctx, tracing.SpanBuild, trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	report, err := b.Register(ctx, docs)
	if err != nil {
		endSpan(span, err)
		return nil, err
	}
	resolved, err := b.Resolve(ctx)
	if err != nil {
		endSpan(span, err)
		return nil, err
	}
	report.merge(resolved)

	span.SetAttributes(attribute.String(tracing.AttrBuildID, report.BuildID))
	endSpan(span, nil)
	log.Info(log.CatBuild, "Build finished",
		"build", report.BuildID,
		"documents", report.Documents,
		"entries", report.Entries,
		"strict", b.registry.Strict(),
		"unresolved", len(report.Unresolved))
	return report, nil
}

// Register is phase one: parse every declaration of docs and store it.
//
// Parsing runs on up to Options.Workers goroutines. Registration is
// serialized and follows the order of docs, then declaration order within
// each document, so the last declaration of a colliding path always wins.
// Per-signature problems are collected in the report; only cancellation of
// ctx aborts the pass.
func (b *Builder) Register(ctx context.Context, docs []*docsource.Document) (*Report, error) {
	ctx, span := b.tracer.Start(ctx, tracing.SpanRegister, trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	parsed, err := b.parseAll(ctx, docs)
	if err != nil {
		endSpan(span, err)
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	report := &Report{BuildID: b.buildID, Documents: len(docs)}
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			endSpan(span, err)
			return nil, err
		}
		b.trackDocument(doc)
		for j, decl := range doc.Declarations {
			b.registerOne(doc.ID, decl, parsed[i][j], report)
		}
	}
	b.registered = true
	b.flushCache(ctx)

	report.Entries = b.registry.Len()
	span.SetAttributes(
		attribute.String(tracing.AttrBuildID, report.BuildID),
		attribute.Int(tracing.AttrDocuments, report.Documents),
		attribute.Int(tracing.AttrSignatures, report.Signatures),
		attribute.Int(tracing.AttrEntries, report.Entries),
		attribute.Int(tracing.AttrDuplicates, len(report.Duplicates)+len(report.Rejected)),
	)
	endSpan(span, nil)
	return report, nil
}

func (b *Builder) parseAll(ctx context.Context, docs []*docsource.Document) ([][]dm.Signature, error) {
	parsed := make([][]dm.Signature, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sigs := make([]dm.Signature, len(doc.Declarations))
			for j, decl := range doc.Declarations {
				sigs[j] = dm.ParseSignature(decl.Signature, decl.Container)
			}
			parsed[i] = sigs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("parsing signatures: %w", err)
	}
	return parsed, nil
}

func (b *Builder) trackDocument(doc *docsource.Document) {
	if _, known := b.docs[doc.ID]; !known {
		b.docOrder = append(b.docOrder, doc.ID)
	}
	b.docs[doc.ID] = doc
}

// registerOne stores a single parsed signature. Callers hold b.mu.
func (b *Builder) registerOne(doc dm.DocID, decl docsource.Declaration, sig dm.Signature, report *Report) {
	report.Signatures++

	if sig.Malformed {
		m := &MalformedSignature{Document: doc, Line: decl.Line, Text: sig.Text, FullName: sig.FullName}
		report.Malformed = append(report.Malformed, m)
		log.Warn(log.CatParse, "Malformed signature", "doc", doc, "line", decl.Line, "text", sig.Text)
	}
	if !sig.Registrable() {
		return
	}

	entry, warning, err := b.registry.Register(dm.Declaration{
		Path:     sig.FullName,
		Kind:     decl.Kind,
		Document: doc,
		Line:     decl.Line,
	})

	var rejected *dm.DuplicateDefinitionWarning
	switch {
	case errors.As(err, &rejected):
		report.Rejected = append(report.Rejected, rejected)
		log.Warn(log.CatRegistry, "Duplicate rejected",
			"path", rejected.Existing.FullName,
			"existing", rejected.Existing.Location(),
			"new", rejected.New.Location())
		b.broker.Publish(pubsub.DuplicateEvent, Notice{
			BuildID:   b.buildID,
			Document:  doc,
			Line:      decl.Line,
			Path:      rejected.Existing.FullName,
			Kind:      decl.Kind,
			Duplicate: rejected,
			Rejected:  true,
		})
		return
	case err != nil:
		report.Invalid = append(report.Invalid, fmt.Errorf("%s:%d: %w", doc, decl.Line, err))
		log.Warn(log.CatRegistry, "Signature not registered", "doc", doc, "line", decl.Line, "error", err)
		return
	}

	if warning != nil {
		report.Duplicates = append(report.Duplicates, warning)
		log.Warn(log.CatRegistry, "Duplicate object description",
			"path", entry.FullName,
			"existing", warning.Existing.Location(),
			"new", warning.New.Location())
		b.broker.Publish(pubsub.DuplicateEvent, Notice{
			BuildID:   b.buildID,
			Document:  doc,
			Line:      decl.Line,
			Path:      entry.FullName,
			Kind:      entry.Kind,
			Duplicate: warning,
		})
	}

	log.Debug(log.CatRegistry, "Registered", "path", entry.FullName, "kind", entry.Kind, "doc", doc)
	b.broker.Publish(pubsub.RegisteredEvent, Notice{
		BuildID:  b.buildID,
		Document: doc,
		Line:     decl.Line,
		Path:     entry.FullName,
		Kind:     entry.Kind,
	})
}

// Resolve is phase two: resolve every reference of every known document.
func (b *Builder) Resolve(ctx context.Context) (*Report, error) {
	ctx, span := b.tracer.Start(ctx, tracing.SpanResolve, trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.registered {
		endSpan(span, ErrPhaseOrder)
		return nil, ErrPhaseOrder
	}

	report := &Report{BuildID: b.buildID, Documents: len(b.docOrder), Entries: b.registry.Len()}
	for _, id := range b.docOrder {
		if err := ctx.Err(); err != nil {
			endSpan(span, err)
			return nil, err
		}
		for _, ref := range b.docs[id].References {
			b.resolveOne(ctx, id, ref, report)
		}
	}

	span.SetAttributes(
		attribute.String(tracing.AttrBuildID, report.BuildID),
		attribute.Int(tracing.AttrReferences, report.References),
		attribute.Int(tracing.AttrUnresolved, len(report.Unresolved)),
	)
	endSpan(span, nil)
	return report, nil
}

func (b *Builder) resolveOne(ctx context.Context, doc dm.DocID, ref docsource.Reference, report *Report) {
	report.References++

	link := dm.ProcessLink(ref.Role, ref.Text, b.addParens)
	entry, found := b.lookup(ctx, ref.Container, link.Target, link.Order(), ref.Role.Kind)

	res := Resolution{
		Document:  doc,
		Line:      ref.Line,
		Role:      ref.Role.Name,
		Title:     link.Title,
		Target:    link.Target,
		Container: ref.Container.String(),
		Order:     link.Order(),
		Entry:     entry,
		Found:     found,
	}
	if ref.Container.IsZero() {
		res.Container = ""
	}
	report.Resolutions = append(report.Resolutions, res)

	notice := Notice{
		BuildID:   b.buildID,
		Document:  doc,
		Line:      ref.Line,
		Target:    link.Target,
		Container: res.Container,
		Kind:      ref.Role.Kind,
	}
	if found {
		notice.Path = entry.FullName
		b.broker.Publish(pubsub.ResolvedEvent, notice)
		return
	}

	unresolved := &UnresolvedReference{
		Document:  doc,
		Line:      ref.Line,
		Role:      ref.Role.Name,
		Target:    link.Target,
		Container: res.Container,
	}
	report.Unresolved = append(report.Unresolved, unresolved)
	log.Warn(log.CatResolve, "Unresolved reference",
		"doc", doc, "line", ref.Line, "role", ref.Role.Name, "target", link.Target)
	b.broker.Publish(pubsub.UnresolvedEvent, notice)
}

// Lookup resolves a single target against the registry. It is subject to the
// same phase ordering as Resolve.
func (b *Builder) Lookup(ctx context.Context, container dm.Path, target string, order dm.SearchOrder, hints ...dm.Kind) (dm.SymbolEntry, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.registered {
		return dm.SymbolEntry{}, false, ErrPhaseOrder
	}
	entry, found := b.lookup(ctx, container, target, order, hints...)
	return entry, found, nil
}

// lookup consults the resolution cache before the registry. Callers hold b.mu.
func (b *Builder) lookup(ctx context.Context, container dm.Path, target string, order dm.SearchOrder, hints ...dm.Kind) (dm.SymbolEntry, bool) {
	if b.cache == nil {
		return dm.Resolve(b.registry, container, target, order, hints...)
	}

	key := cacheKey(container, target, order, hints)
	if hit, ok := b.cache.Get(ctx, key); ok {
		return hit.Entry, hit.Found
	}
	entry, found := dm.Resolve(b.registry, container, target, order, hints...)
	b.cache.Set(ctx, key, cachedLookup{Entry: entry, Found: found}, b.cacheTTL)
	return entry, found
}

func cacheKey(container dm.Path, target string, order dm.SearchOrder, hints []dm.Kind) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(int(order)))
	sb.WriteByte('|')
	if !container.IsZero() {
		sb.WriteString(container.String())
	}
	sb.WriteByte('|')
	sb.WriteString(target)
	sb.WriteByte('|')
	for i, k := range hints {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(k)))
	}
	return sb.String()
}

// flushCache drops every memoised lookup. Callers hold b.mu.
func (b *Builder) flushCache(ctx context.Context) {
	if b.cache != nil {
		b.cache.Flush(ctx)
	}
}

// Invalidate is the document lifecycle hook: it purges every entry owned by
// doc and forgets its references. It returns the number of evicted entries.
func (b *Builder) Invalidate(ctx context.Context, doc dm.DocID) int {
	ctx, span := b.tracer.Start(ctx, tracing.SpanInvalidate, trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	b.mu.Lock()
	defer b.mu.Unlock()

	evicted := b.invalidate(ctx, doc)
	span.SetAttributes(
		attribute.String(tracing.AttrDocument, string(doc)),
		attribute.Int(tracing.AttrEvicted, evicted),
	)
	endSpan(span, nil)
	return evicted
}

// invalidate does the work of Invalidate. Callers hold b.mu.
func (b *Builder) invalidate(ctx context.Context, doc dm.DocID) int {
	evicted := b.registry.RemoveByDocument(doc)
	if _, known := b.docs[doc]; known {
		delete(b.docs, doc)
		kept := b.docOrder[:0]
		for _, id := range b.docOrder {
			if id != doc {
				kept = append(kept, id)
			}
		}
		b.docOrder = kept
	}
	b.flushCache(ctx)

	log.Debug(log.CatRegistry, "Invalidated document", "doc", doc, "evicted", evicted)
	b.broker.Publish(pubsub.EvictedEvent, Notice{BuildID: b.buildID, Document: doc, Evicted: evicted})
	return evicted
}

// Rebuild applies an incremental change set: removed documents are purged,
// changed documents are purged and registered again, then every reference
// of every remaining document is resolved.
func (b *Builder) Rebuild(ctx context.Context, changed []*docsource.Document, removed []dm.DocID) (*Report, error) {
	ctx, span := b.tracer.Start(ctx, tracing.SpanRebuild, trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	b.mu.Lock()
	b.buildID = uuid.NewString()
	for _, id := range removed {
		b.invalidate(ctx, id)
	}
	for _, doc := range changed {
		b.invalidate(ctx, doc.ID)
	}
	b.mu.Unlock()

	report, err := b.Register(ctx, changed)
	if err != nil {
		endSpan(span, err)
		return nil, err
	}
	resolved, err := b.Resolve(ctx)
	if err != nil {
		endSpan(span, err)
		return nil, err
	}
	report.merge(resolved)
	report.Documents = resolved.Documents

	span.SetAttributes(
		attribute.String(tracing.AttrBuildID, report.BuildID),
		attribute.Int(tracing.AttrDocuments, len(changed)+len(removed)),
	)
	endSpan(span, nil)
	log.Info(log.CatBuild, "Rebuild finished",
		"build", report.BuildID,
		"changed", len(changed),
		"removed", len(removed),
		"unresolved", len(report.Unresolved))
	return report, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(tracing.AttrErrorReason, err.Error()))
		return
	}
	span.SetStatus(codes.Ok, "")
}
