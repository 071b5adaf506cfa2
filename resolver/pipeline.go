package resolver

import (
	"go.uber.org/zap"

	"github.com/pathresolve/pathresolve/descriptor"
	"github.com/pathresolve/pathresolve/fsx"
)

// maxPipelineDepth additionally bounds absolute recursion depth, on top of
// the (hook, request) dedup guard, per specification §5's recommendation.
const maxPipelineDepth = 256

// Query is the driver's per-call state, passed to every Handler. It bundles
// the resolver's static configuration with the mutable Context for this
// one resolve call.
type Query struct {
	resolver *Resolver
	rctx     *Context
}

func (q *Query) Options() *Options           { return &q.resolver.options }
func (q *Query) FS() *fsx.Cached             { return q.resolver.fs }
func (q *Query) Descriptors() *descriptor.Cache { return q.resolver.descriptors }
func (q *Query) Logger() *zap.Logger         { return q.rctx.logger() }
func (q *Query) ResolveContext() *Context    { return q.rctx }

// doResolve forwards req to the named hook, recording an attempt for
// diagnostics and enforcing the (hook, request) recursion guard
// (specification §4.1 step 4).
func (q *Query) doResolve(hookName string, req Request, message string) (*Result, error) {
	marker, visited := q.rctx.push(hookName, req)
	if visited {
		q.rctx.attempts = append(q.rctx.attempts, Attempt{Hook: hookName, Request: stringifyRequest(req), Message: "skipped: already visited " + marker})
		return nil, nil
	}
	defer q.rctx.pop()

	if len(q.rctx.stack) > maxPipelineDepth {
		q.rctx.attempts = append(q.rctx.attempts, Attempt{Hook: hookName, Request: stringifyRequest(req), Message: "aborted: max pipeline depth exceeded"})
		return nil, nil
	}

	q.rctx.attempts = append(q.rctx.attempts, Attempt{Hook: hookName, Request: stringifyRequest(req), Message: message})
	q.Logger().Debug("resolve hop", zap.String("hook", hookName), zap.String("request", stringifyRequest(req)), zap.String("message", message))

	hook, err := q.resolver.registry.GetHook(hookName)
	if err != nil {
		return nil, err
	}

	for _, h := range hook.handlers {
		res, err := h.fn(q, req)
		if err != nil {
			return nil, &Error{Kind: KindPluginError, Message: "plugin " + h.plugin + " on hook " + hookName + " failed", Wrapped: err}
		}
		if res != nil {
			return res, nil
		}
	}
	return nil, nil
}

// resolve runs one top-level resolve call.
func (res *Resolver) resolve(rctx *Context, lookupPath, request string) (Result, error) {
	q := &Query{resolver: res, rctx: rctx}

	requestPath, query, fragment := parseRequest(request)

	req := Request{
		Path:        lookupPath,
		RequestPath: requestPath,
		Query:       query,
		Fragment:    fragment,
		Module:      classifyModule(requestPath),
		Directory:   requestPath == "" || hasTrailingSlash(requestPath),
		Context:     rctx.CallerContext,
	}

	result, err := q.doResolve(HookResolve, req, "resolve")
	if err != nil {
		return Result{}, err
	}
	if result == nil {
		res.options.Logger.Warn("resolve failed", zap.String("path", lookupPath), zap.String("request", request), zap.Int("attempts", len(rctx.attempts)))
		return Result{Status: StatusNotFound, Attempts: rctx.attempts}, nil
	}
	return *result, nil
}
